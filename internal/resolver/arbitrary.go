package resolver

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Value kinds used to disambiguate arbitrary values.
const (
	kindAny    = ""
	kindLength = "length"
	kindColor  = "color"
)

var knownHints = map[string]bool{
	kindLength:   true,
	kindColor:    true,
	"percentage": true,
	"number":     true,
	"url":        true,
	"image":      true,
	"any":        true,
}

// decodeArbitrary unwraps "[...]" into its CSS value and optional type
// hint. Underscores become spaces unless escaped with a backslash.
func decodeArbitrary(s string) (value, hint string, ok bool) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return "", "", false
	}
	inner := s[1 : len(s)-1]
	if i := strings.IndexByte(inner, ':'); i > 0 && knownHints[inner[:i]] {
		hint, inner = inner[:i], inner[i+1:]
	}
	if hint == "any" {
		hint = kindAny
	}

	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\\' && i+1 < len(inner) && inner[i+1] == '_':
			b.WriteByte('_')
			i++
		case c == '_':
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	value = strings.TrimSpace(b.String())
	if !validValue(value) {
		return "", "", false
	}
	return spaceMathOperators(value), hint, true
}

var mathFunctions = map[string]bool{"calc": true, "min": true, "max": true, "clamp": true}

// spaceMathOperators puts spaces around binary + and - inside math
// functions, which CSS requires: "calc(100%-2rem)" becomes
// "calc(100% - 2rem)". Signs, exponents, quoted strings and the arguments of
// other functions such as var() are left alone.
func spaceMathOperators(value string) string {
	if !strings.ContainsAny(value, "+-") {
		return value
	}

	var b strings.Builder
	b.Grow(len(value) + 8)
	var math []bool
	var quote byte
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case quote != 0:
			if c == '\\' && i+1 < len(value) {
				b.WriteByte(c)
				i++
				c = value[i]
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			name := strings.ToLower(strings.TrimLeft(identBefore(value[:i]), "-"))
			inMath := len(math) > 0 && math[len(math)-1]
			math = append(math, mathFunctions[name] || (name == "" && inMath))
		case c == ')':
			if len(math) > 0 {
				math = math[:len(math)-1]
			}
		case (c == '+' || c == '-') && len(math) > 0 && math[len(math)-1] && binaryOperator(value, i):
			b.WriteString(" ")
			b.WriteByte(c)
			b.WriteString(" ")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// identBefore returns the function name ending at the end of s.
func identBefore(s string) string {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if c == '-' || c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			i--
			continue
		}
		break
	}
	return s[i:]
}

// binaryOperator reports whether the sign at value[i] joins two operands
// without surrounding whitespace.
func binaryOperator(value string, i int) bool {
	if i == 0 || i+1 >= len(value) {
		return false
	}
	prev, next := value[i-1], value[i+1]
	if !(isDigit(next) || next == '.' || next == '(' || isLetter(next)) {
		return false
	}
	switch {
	case isDigit(prev), prev == '%', prev == ')':
		return true
	case isLetter(prev):
		j := i - 1
		for j > 0 && isLetter(value[j-1]) {
			j--
		}
		if j == 0 || !isDigit(value[j-1]) {
			// keyword such as min-content
			return false
		}
		// 1e-3
		return !(i-j == 1 && (prev == 'e' || prev == 'E') && isDigit(next))
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

// validValue runs value through the CSS lexer and rejects anything that
// could escape a declaration: braces, semicolons, bad strings or urls,
// HTML comment markers and unbalanced groupings.
func validValue(value string) bool {
	if value == "" {
		return false
	}
	lexer := css.NewLexer(parse.NewInputString(value))
	parens, brackets := 0, 0
	for {
		tt, _ := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return lexer.Err() == io.EOF && parens == 0 && brackets == 0
		case css.LeftBraceToken, css.RightBraceToken, css.SemicolonToken,
			css.BadStringToken, css.BadURLToken, css.CDOToken, css.CDCToken:
			return false
		case css.FunctionToken, css.LeftParenthesisToken:
			parens++
		case css.RightParenthesisToken:
			parens--
			if parens < 0 {
				return false
			}
		case css.LeftBracketToken:
			brackets++
		case css.RightBracketToken:
			brackets--
			if brackets < 0 {
				return false
			}
		}
	}
}

// firstToken returns the first non-whitespace token of value.
func firstToken(value string) (css.TokenType, string) {
	lexer := css.NewLexer(parse.NewInputString(value))
	for {
		tt, data := lexer.Next()
		if tt == css.WhitespaceToken || tt == css.CommentToken {
			continue
		}
		return tt, string(data)
	}
}

var colorFunctions = map[string]bool{
	"rgb(": true, "rgba(": true, "hsl(": true, "hsla(": true, "hwb(": true,
	"lab(": true, "lch(": true, "oklab(": true, "oklch(": true,
	"color(": true, "color-mix(": true, "light-dark(": true,
}

var namedColors = map[string]bool{
	"transparent": true, "currentcolor": true, "black": true, "white": true,
	"red": true, "green": true, "blue": true, "yellow": true, "orange": true,
	"purple": true, "pink": true, "gray": true, "grey": true, "silver": true,
	"maroon": true, "navy": true, "teal": true, "olive": true, "lime": true,
	"aqua": true, "fuchsia": true, "rebeccapurple": true,
}

// isColor reports whether value starts like a CSS color.
func isColor(value string) bool {
	tt, data := firstToken(value)
	switch tt {
	case css.HashToken:
		n := len(data) - 1
		return (n == 3 || n == 4 || n == 6 || n == 8) && isHex(data[1:])
	case css.FunctionToken:
		return colorFunctions[strings.ToLower(data)]
	case css.IdentToken:
		return namedColors[strings.ToLower(data)]
	}
	return false
}

var lengthUnits = map[string]bool{
	"px": true, "em": true, "rem": true, "ex": true, "ch": true, "lh": true, "rlh": true,
	"vw": true, "vh": true, "vmin": true, "vmax": true, "svh": true, "lvh": true, "dvh": true,
	"svw": true, "lvw": true, "dvw": true, "cqw": true, "cqh": true,
	"cm": true, "mm": true, "in": true, "pt": true, "pc": true, "q": true,
}

var lengthFunctions = map[string]bool{
	"calc(": true, "min(": true, "max(": true, "clamp(": true, "var(": true, "theme(": true,
}

// isLength reports whether value starts like a CSS length or percentage.
// Unhinted var() references count as lengths.
func isLength(value string) bool {
	tt, data := firstToken(value)
	switch tt {
	case css.DimensionToken:
		unit := strings.TrimLeft(data, "+-.0123456789eE")
		return lengthUnits[strings.ToLower(unit)]
	case css.PercentageToken:
		return true
	case css.NumberToken:
		return strings.Trim(data, "+-.0") == ""
	case css.FunctionToken:
		return lengthFunctions[strings.ToLower(data)]
	}
	return false
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// acceptsKind reports whether an arbitrary value with hint may be used by a
// generator expecting kind.
func acceptsKind(kind, hint, value string) bool {
	switch {
	case hint != "":
		return kind == kindAny || hint == kind
	case kind == kindLength:
		return isLength(value)
	case kind == kindColor:
		return isColor(value)
	default:
		return true
	}
}

// parseArbitraryProperty splits "[prop:value]" into a declaration.
func parseArbitraryProperty(base string) (prop, value string, ok bool) {
	if len(base) < 2 || base[0] != '[' || base[len(base)-1] != ']' {
		return "", "", false
	}
	inner := base[1 : len(base)-1]
	i := strings.IndexByte(inner, ':')
	if i <= 0 {
		return "", "", false
	}
	prop = inner[:i]
	if !isPropertyName(prop) {
		return "", "", false
	}
	value, _, ok = decodeArbitrary("[" + inner[i+1:] + "]")
	if !ok {
		return "", "", false
	}
	return prop, value, true
}

func isPropertyName(s string) bool {
	if s == "" || s[0] >= '0' && s[0] <= '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c == '-' || c >= '0' && c <= '9') {
			return false
		}
	}
	return strings.Trim(s, "-") != ""
}
