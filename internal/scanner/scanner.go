// Package scanner extracts candidate utility tokens from arbitrary text
// and locates the content files a build feeds into the engine.
//
// Scan is a permissive byte-level lexer: it needs no grammar for the host
// language and never fails. Malformed spans (an unclosed bracket, a quote
// inside an arbitrary value) are dropped while the rest of the input is
// still scanned.
package scanner

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxTokenLen bounds a single candidate. Longer runs are minified blobs,
// base64 payloads and the like.
const maxTokenLen = 256

// Token is a candidate utility string and where it was first seen.
type Token struct {
	Value  string
	Source string
	Offset int // byte offset of the first occurrence
}

// Scan returns the distinct candidate tokens in content, sorted by value.
// Identical content always yields an identical result.
func Scan(content, sourceID string) []Token {
	seen := make(map[string]int)
	n := len(content)

	for i := 0; i < n; {
		if !isStartChar(content[i]) {
			i++
			continue
		}

		end, ok := spanEnd(content, i)
		if !ok {
			i = end
			continue
		}

		if value, keep := candidate(content, i, end); keep {
			if _, dup := seen[value]; !dup {
				seen[value] = i
			}
		}
		i = end
	}

	tokens := make([]Token, 0, len(seen))
	for value, offset := range seen {
		tokens = append(tokens, Token{Value: value, Source: sourceID, Offset: offset})
	}
	sort.Slice(tokens, func(a, b int) bool { return tokens[a].Value < tokens[b].Value })
	return tokens
}

// Values returns just the token strings, preserving order.
func Values(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Value
	}
	return out
}

// spanEnd finds the end of the span starting at start. ok is false when a
// bracket is left open or a delimiter appears inside one; end is then the
// position scanning resumes from.
func spanEnd(content string, start int) (end int, ok bool) {
	depth := 0
	j := start
	for ; j < len(content); j++ {
		c := content[j]
		if depth > 0 {
			switch {
			case c == '[':
				depth++
			case c == ']':
				depth--
			case !isBracketChar(c):
				return j, false
			}
			continue
		}
		if c == '[' {
			depth++
			continue
		}
		if !isTokenChar(c) {
			break
		}
	}
	if depth > 0 {
		return j, false
	}
	return j, true
}

// candidate applies the markup and prose filters to content[start:end].
func candidate(content string, start, end int) (string, bool) {
	if start > 0 && content[start-1] == '<' {
		return "", false // element name
	}
	if start > 1 && content[start-2:start] == "</" {
		return "", false
	}
	if end < len(content) && content[end] == '=' {
		return "", false // attribute name
	}

	value := strings.TrimRight(content[start:end], ".,:/")
	if value == "" || len(value) > maxTokenLen || !hasLetter(value) {
		return "", false
	}
	if !isASCII(value) {
		if !utf8.ValidString(value) {
			return "", false
		}
		value = norm.NFC.String(value)
	}
	return value, true
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isStartChar(c byte) bool {
	return isAlnum(c) || c == '-' || c == '!' || c == '['
}

func isTokenChar(c byte) bool {
	if isAlnum(c) {
		return true
	}
	switch c {
	case '-', '_', ':', '/', '.', '%', '!':
		return true
	}
	return false
}

// isBracketChar reports whether c may appear inside an arbitrary value.
func isBracketChar(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v', '"', '\'', '`', '<', '>':
		return false
	}
	return true
}

func hasLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Position converts a byte offset into a 1-based line and column plus the
// text of that line, for diagnostics.
func Position(content string, offset int) (line, col int, text string) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	lineStart := strings.LastIndexByte(content[:offset], '\n') + 1
	lineEnd := strings.IndexByte(content[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(content)
	} else {
		lineEnd += offset
	}
	line = strings.Count(content[:lineStart], "\n") + 1
	col = offset - lineStart + 1
	text = strings.TrimRight(content[lineStart:lineEnd], "\r")
	return line, col, text
}
