package resolver

import (
	"strings"

	"github.com/yacobolo/utilcss/internal/theme"
)

// Rule is a resolved utility: the class it came from, the selector context
// its variants produced and its declarations.
type Rule struct {
	Class        string   // full class name as written, used for the selector
	Template     string   // selector template; theme.Placeholder stands for the class
	Containers   []string // at-rule preludes, outermost first
	Declarations []theme.Declaration
	Depth        int    // number of variants applied
	Rank         uint64 // bitmask of the applied variants' cascade ranks
}

// Selector returns the CSS selector the rule is emitted under, with the
// class escaped.
func (r *Rule) Selector() string {
	return strings.ReplaceAll(r.Template, theme.Placeholder, "."+EscapeClass(r.Class))
}

// Signature identifies a rule by selector context and declarations. It is
// the rule's CSS with every block closed, so equal signatures produce
// identical CSS and different rules never share one.
func (r *Rule) Signature() string {
	var b strings.Builder
	for _, c := range r.Containers {
		b.WriteString(c)
		b.WriteByte('{')
	}
	b.WriteString(r.Selector())
	b.WriteByte('{')
	for _, d := range r.Declarations {
		b.WriteString(d.Property)
		b.WriteByte(':')
		b.WriteString(d.Value)
		b.WriteByte(';')
	}
	b.WriteByte('}')
	for range r.Containers {
		b.WriteByte('}')
	}
	return b.String()
}

// rankBit maps a variant rank onto the rank mask. Ranks past 63 share the
// top bit.
func rankBit(rank int) uint64 {
	if rank > 63 {
		rank = 63
	}
	if rank < 0 {
		rank = 0
	}
	return 1 << uint(rank)
}
