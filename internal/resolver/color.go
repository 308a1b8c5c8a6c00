package resolver

import (
	"strconv"
	"strings"
)

// withAlpha applies an opacity (0..1) to a color. Hex colors become rgb()
// with an alpha channel; anything else is mixed with transparent.
func withAlpha(color string, alpha float64) string {
	a := formatFloat(alpha)
	if r, g, b, ok := parseHex(color); ok {
		return "rgb(" + strconv.Itoa(r) + " " + strconv.Itoa(g) + " " + strconv.Itoa(b) + " / " + a + ")"
	}
	return "color-mix(in srgb, " + color + " " + formatFloat(alpha*100) + "%, transparent)"
}

// parseAlpha reads an opacity modifier: a plain number 0..100 on the
// percentage scale ("50") or an arbitrary value ("[.35]", "[35%]").
func parseAlpha(modifier string, themeValue func(string) (string, bool)) (float64, bool) {
	if strings.HasPrefix(modifier, "[") {
		value, _, ok := decodeArbitrary(modifier)
		if !ok {
			return 0, false
		}
		if pct, found := strings.CutSuffix(value, "%"); found {
			f, err := strconv.ParseFloat(pct, 64)
			if err != nil || f < 0 || f > 100 {
				return 0, false
			}
			return f / 100, true
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return 0, false
		}
		return f, true
	}

	if v, ok := themeValue(modifier); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil && f >= 0 && f <= 1 {
			return f, true
		}
	}
	f, err := strconv.ParseFloat(modifier, 64)
	if err != nil || f < 0 || f > 100 {
		return 0, false
	}
	return f / 100, true
}

// parseHex decodes #rgb, #rgba, #rrggbb and #rrggbbaa. Alpha digits are
// accepted but dropped; the modifier replaces them.
func parseHex(s string) (r, g, b int, ok bool) {
	if !strings.HasPrefix(s, "#") || !isHex(s[1:]) {
		return 0, 0, 0, false
	}
	h := s[1:]
	switch len(h) {
	case 3, 4:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6, 8:
		h = h[:6]
	default:
		return 0, 0, 0, false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff), true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
