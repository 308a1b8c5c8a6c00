package scanner

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrBinary is returned for files that look like binary data.
var ErrBinary = errors.New("binary content")

// binarySniffLen is how much of a file is checked for NUL bytes.
const binarySniffLen = 8000

// Source is a content file decoded to UTF-8.
type Source struct {
	Path    string
	Text    string
	Hash    string // sha256 of the raw bytes, hex
	ModTime time.Time
}

// ReadSource memory-maps path and decodes it to UTF-8. A byte order mark
// selects UTF-16 or UTF-8 decoding; invalid sequences become U+FFFD. Files
// that cannot be mapped are read with os.ReadFile instead.
func ReadSource(path string, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("open source %q: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return Source{}, fmt.Errorf("stat source %q: %w", path, err)
	}

	src := Source{Path: path, ModTime: stat.ModTime()}
	if stat.Size() == 0 {
		src.Hash = HashBytes(nil)
		return src, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		logger.Warn("mmap failed, using fallback", "file", path, "size", stat.Size(), "error", err)
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return Source{}, fmt.Errorf("read source %q: %w", path, readErr)
		}
		return decodeInto(src, raw)
	}
	defer func() {
		if err := data.Unmap(); err != nil {
			logger.Warn("unmap failed", "file", path, "error", err)
		}
	}()

	// decodeInto copies out of the mapping before Unmap runs.
	return decodeInto(src, data)
}

func decodeInto(src Source, raw []byte) (Source, error) {
	text, err := Decode(raw)
	if err != nil {
		return Source{}, fmt.Errorf("decode source %q: %w", src.Path, err)
	}
	src.Text = text
	src.Hash = HashBytes(raw)
	return src, nil
}

// Decode converts raw file bytes to a UTF-8 string.
func Decode(raw []byte) (string, error) {
	hasBOM := bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(raw, []byte{0xFF, 0xFE})

	if !hasBOM {
		sniff := raw
		if len(sniff) > binarySniffLen {
			sniff = sniff[:binarySniffLen]
		}
		if bytes.IndexByte(sniff, 0) >= 0 {
			return "", ErrBinary
		}
		if utf8.Valid(raw) {
			return string(raw), nil
		}
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", err
	}
	return string(bytes.ToValidUTF8(out, []byte("\uFFFD"))), nil
}

// HashBytes returns the hex sha256 of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashString returns the hex sha256 of s.
func HashString(s string) string {
	return HashBytes([]byte(s))
}
