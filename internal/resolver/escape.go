package resolver

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EscapeClass escapes a class name for use after "." in a selector,
// following the CSS identifier serialization rules: "md:hover:x" becomes
// "md\:hover\:x" and a leading digit becomes a code-point escape ("\32 xl").
func EscapeClass(class string) string {
	if class == "-" {
		return `\-`
	}

	var b strings.Builder
	b.Grow(len(class) + 8)
	for i, r := range class {
		switch {
		case r == 0:
			b.WriteRune(utf8.RuneError)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\%x `, r)
		case r >= '0' && r <= '9' && (i == 0 || (i == 1 && class[0] == '-')):
			fmt.Fprintf(&b, `\%x `, r)
		case r >= 0x80, r == '-', r == '_',
			r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
