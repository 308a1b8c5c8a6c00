package emitter

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// minifyPrelude drops the whitespace an at-rule prelude does not need:
// "@media (min-width: 768px)" becomes "@media (min-width:768px)". Other
// whitespace runs collapse to one space.
func minifyPrelude(prelude string) string {
	type tok struct {
		tt   css.TokenType
		data string
	}
	var toks []tok
	lexer := css.NewLexer(parse.NewInputString(prelude))
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		toks = append(toks, tok{tt, string(data)})
	}

	var b strings.Builder
	for i, t := range toks {
		if t.tt != css.WhitespaceToken {
			b.WriteString(t.data)
			continue
		}
		if i == 0 || i == len(toks)-1 {
			continue
		}
		switch toks[i-1].tt {
		case css.ColonToken, css.CommaToken, css.LeftParenthesisToken, css.FunctionToken:
			continue
		}
		switch toks[i+1].tt {
		case css.ColonToken, css.CommaToken, css.RightParenthesisToken:
			continue
		}
		b.WriteByte(' ')
	}
	return b.String()
}
