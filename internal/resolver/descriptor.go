package resolver

import "strings"

// Descriptor is the structural decomposition of a token.
type Descriptor struct {
	Raw       string   // the token as scanned
	Variants  []string // in the order written
	Base      string   // utility part with markers and prefix removed
	Important bool
	Negative  bool
}

// Parse splits a token into variants and base utility. It reports false for
// tokens that cannot be a utility at all: empty segments, a missing prefix,
// unbalanced brackets.
func Parse(token, separator, prefix string) (Descriptor, bool) {
	if separator == "" {
		separator = ":"
	}
	segments, ok := splitOutsideBrackets(token, separator)
	if !ok {
		return Descriptor{}, false
	}
	for _, s := range segments {
		if s == "" {
			return Descriptor{}, false
		}
	}

	d := Descriptor{Raw: token, Variants: segments[:len(segments)-1]}
	base := segments[len(segments)-1]

	switch {
	case strings.HasPrefix(base, "!"):
		d.Important = true
		base = base[1:]
	case strings.HasSuffix(base, "!"):
		d.Important = true
		base = base[:len(base)-1]
	}
	if strings.HasPrefix(base, "-") {
		d.Negative = true
		base = base[1:]
	}
	if prefix != "" {
		if !strings.HasPrefix(base, prefix) {
			return Descriptor{}, false
		}
		base = base[len(prefix):]
	}
	if base == "" || base[0] == '-' || strings.ContainsRune(base, '!') {
		return Descriptor{}, false
	}

	d.Base = base
	return d, true
}

// splitOutsideBrackets splits s on sep, ignoring separators inside [...]
// and (...).
func splitOutsideBrackets(s, sep string) ([]string, bool) {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
			continue
		case ']', ')':
			depth--
			if depth < 0 {
				return nil, false
			}
			continue
		}
		if depth == 0 && strings.HasPrefix(s[i:], sep) {
			parts = append(parts, s[start:i])
			i += len(sep) - 1
			start = i + 1
		}
	}
	if depth != 0 {
		return nil, false
	}
	return append(parts, s[start:]), true
}

// dashSplits returns the candidate (name, value) pairs for base, longest
// name first. The whole base is the first candidate with an empty value.
// Dashes inside brackets never split.
func dashSplits(base string) [][2]string {
	splits := [][2]string{{base, ""}}
	depth := 0
	var cuts []int
	for i := 0; i < len(base); i++ {
		switch base[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '-':
			if depth == 0 && i > 0 && i < len(base)-1 {
				cuts = append(cuts, i)
			}
		}
	}
	for k := len(cuts) - 1; k >= 0; k-- {
		i := cuts[k]
		splits = append(splits, [2]string{base[:i], base[i+1:]})
	}
	return splits
}

// structuralChars mark a token as an attempted utility rather than prose.
const structuralChars = "-:[]/!"

// LooksLikeUtility reports whether an unresolvable token deserves a
// diagnostic. Plain words ("the", "div") are silently ignored.
func LooksLikeUtility(token string) bool {
	return strings.ContainsAny(token, structuralChars)
}
