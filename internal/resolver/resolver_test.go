package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/utilcss/internal/theme"
)

func newResolver(t *testing.T, topts theme.Options, opts Options) *Resolver {
	t.Helper()
	th, err := theme.New(nil, topts)
	require.NoError(t, err)
	r, err := New(th, opts)
	require.NoError(t, err)
	return r
}

func d(prop, value string) theme.Declaration {
	return theme.Declaration{Property: prop, Value: value}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		variants  []string
		base      string
		important bool
		negative  bool
		ok        bool
	}{
		{"plain", "p-4", nil, "p-4", false, false, true},
		{"variants", "md:hover:bg-blue-600", []string{"md", "hover"}, "bg-blue-600", false, false, true},
		{"colon inside brackets", "[mask-type:luminance]", nil, "[mask-type:luminance]", false, false, true},
		{"leading important", "!font-bold", nil, "font-bold", true, false, true},
		{"trailing important", "sm:text-lg!", []string{"sm"}, "text-lg", true, false, true},
		{"negative", "-mt-2", nil, "mt-2", false, true, true},
		{"important negative", "!-mt-2", nil, "mt-2", true, true, true},
		{"empty variant", "hover::p-4", nil, "", false, false, false},
		{"leading separator", ":p-4", nil, "", false, false, false},
		{"trailing separator", "p-4:", nil, "", false, false, false},
		{"unbalanced", "w-[10px", nil, "", false, false, false},
		{"double dash", "--p-4", nil, "", false, false, false},
		{"bare marker", "!", nil, "", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.token, ":", "")
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			if len(tt.variants) == 0 {
				assert.Empty(t, got.Variants)
			} else {
				assert.Equal(t, tt.variants, got.Variants)
			}
			assert.Equal(t, tt.base, got.Base)
			assert.Equal(t, tt.important, got.Important)
			assert.Equal(t, tt.negative, got.Negative)
			assert.Equal(t, tt.token, got.Raw)
		})
	}
}

func TestParseCustomSeparatorAndPrefix(t *testing.T) {
	got, ok := Parse("md__-tw-mt-2", "__", "tw-")
	require.True(t, ok)
	assert.Equal(t, []string{"md"}, got.Variants)
	assert.Equal(t, "mt-2", got.Base)
	assert.True(t, got.Negative)

	_, ok = Parse("mt-2", ":", "tw-")
	assert.False(t, ok)
}

func TestResolveDeclarations(t *testing.T) {
	r := newResolver(t, theme.Options{}, Options{})

	tests := []struct {
		token string
		want  []theme.Declaration
	}{
		{"p-4", []theme.Declaration{d("padding", "1rem")}},
		{"text-red-500", []theme.Declaration{d("color", "#ef4444")}},
		{"px-2", []theme.Declaration{d("padding-left", "0.5rem"), d("padding-right", "0.5rem")}},
		{"p-px", []theme.Declaration{d("padding", "1px")}},
		{"p-0.5", []theme.Declaration{d("padding", "0.125rem")}},
		{"m-auto", []theme.Declaration{d("margin", "auto")}},
		{"-mt-2", []theme.Declaration{d("margin-top", "-0.5rem")}},
		{"w-1/2", []theme.Declaration{d("width", "50%")}},
		{"w-full", []theme.Declaration{d("width", "100%")}},
		{"max-w-prose", []theme.Declaration{d("max-width", "65ch")}},
		{"text-sm", []theme.Declaration{d("font-size", "0.875rem"), d("line-height", "1.25rem")}},
		{"text-center", []theme.Declaration{d("text-align", "center")}},
		{"font-bold", []theme.Declaration{d("font-weight", "700")}},
		{"font-mono", []theme.Declaration{d("font-family", "ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, monospace")}},
		{"flex", []theme.Declaration{d("display", "flex")}},
		{"flex-col", []theme.Declaration{d("flex-direction", "column")}},
		{"flex-1", []theme.Declaration{d("flex", "1 1 0%")}},
		{"hidden", []theme.Declaration{d("display", "none")}},
		{"justify-between", []theme.Declaration{d("justify-content", "space-between")}},
		{"items-center", []theme.Declaration{d("align-items", "center")}},
		{"gap-x-4", []theme.Declaration{d("column-gap", "1rem")}},
		{"grid-cols-3", []theme.Declaration{d("grid-template-columns", "repeat(3, minmax(0, 1fr))")}},
		{"col-span-2", []theme.Declaration{d("grid-column", "span 2 / span 2")}},
		{"col-span-full", []theme.Declaration{d("grid-column", "1 / -1")}},
		{"border", []theme.Declaration{d("border-width", "1px")}},
		{"border-2", []theme.Declaration{d("border-width", "2px")}},
		{"border-x-4", []theme.Declaration{d("border-left-width", "4px"), d("border-right-width", "4px")}},
		{"border-red-500", []theme.Declaration{d("border-color", "#ef4444")}},
		{"border-dashed", []theme.Declaration{d("border-style", "dashed")}},
		{"rounded", []theme.Declaration{d("border-radius", "0.25rem")}},
		{"rounded-lg", []theme.Declaration{d("border-radius", "0.5rem")}},
		{"shadow-none", []theme.Declaration{d("box-shadow", "none")}},
		{"opacity-50", []theme.Declaration{d("opacity", "0.5")}},
		{"z-10", []theme.Declaration{d("z-index", "10")}},
		{"-z-10", []theme.Declaration{d("z-index", "-10")}},
		{"overflow-x-auto", []theme.Declaration{d("overflow-x", "auto")}},
		{"cursor-pointer", []theme.Declaration{d("cursor", "pointer")}},
		{"duration-300", []theme.Declaration{d("transition-duration", "300ms")}},
		{"rotate-45", []theme.Declaration{d("transform", "rotate(45deg)")}},
		{"-rotate-45", []theme.Declaration{d("transform", "rotate(-45deg)")}},
		{"translate-x-1/2", []theme.Declaration{d("transform", "translateX(50%)")}},
		{"scale-50", []theme.Declaration{d("transform", "scale(.5)")}},
		{"bg-white", []theme.Declaration{d("background-color", "#fff")}},
		{"bg-blue-500/50", []theme.Declaration{d("background-color", "rgb(59 130 246 / 0.5)")}},
		{"bg-red-500/[.25]", []theme.Declaration{d("background-color", "rgb(239 68 68 / 0.25)")}},
		{"text-current/50", []theme.Declaration{d("color", "color-mix(in srgb, currentColor 50%, transparent)")}},
		{"w-[10px]", []theme.Declaration{d("width", "10px")}},
		{"w-[calc(100%_-_1rem)]", []theme.Declaration{d("width", "calc(100% - 1rem)")}},
		{"w-[calc(100%-2rem)]", []theme.Declaration{d("width", "calc(100% - 2rem)")}},
		{"grid-cols-[200px_minmax(0,1fr)]", []theme.Declaration{d("grid-template-columns", "200px minmax(0,1fr)")}},
		{"text-[22px]", []theme.Declaration{d("font-size", "22px")}},
		{"text-[#bada55]", []theme.Declaration{d("color", "#bada55")}},
		{"text-[color:var(--brand)]", []theme.Declaration{d("color", "var(--brand)")}},
		{"text-[length:var(--size)]", []theme.Declaration{d("font-size", "var(--size)")}},
		{"border-[3px]", []theme.Declaration{d("border-width", "3px")}},
		{"border-[rgb(0_0_0)]", []theme.Declaration{d("border-color", "rgb(0 0 0)")}},
		{"bg-[#00f]/[.5]", []theme.Declaration{d("background-color", "rgb(0 0 255 / 0.5)")}},
		{"font-[650]", []theme.Declaration{d("font-weight", "650")}},
		{"-m-[4px]", []theme.Declaration{d("margin", "-4px")}},
		{"[mask-type:luminance]", []theme.Declaration{d("mask-type", "luminance")}},
		{"[--gutter:2rem]", []theme.Declaration{d("--gutter", "2rem")}},
		{"!font-bold", []theme.Declaration{d("font-weight", "700 !important")}},
		{"text-lg!", []theme.Declaration{d("font-size", "1.125rem !important"), d("line-height", "1.75rem !important")}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			rule, ok := r.Resolve(tt.token)
			require.True(t, ok, "token %q should resolve", tt.token)
			assert.Equal(t, tt.want, rule.Declarations)
			assert.Equal(t, tt.token, rule.Class)
		})
	}
}

func TestSpaceMathOperators(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"calc(100%-2rem)", "calc(100% - 2rem)"},
		{"calc(100% - 2rem)", "calc(100% - 2rem)"},
		{"calc(2rem+1px)", "calc(2rem + 1px)"},
		{"min(10px+5%,2rem)", "min(10px + 5%,2rem)"},
		{"clamp(1rem,2vw-1px,3rem)", "clamp(1rem,2vw - 1px,3rem)"},
		{"calc((1px+2px)*3)", "calc((1px + 2px)*3)"},
		{"calc(-1px*2)", "calc(-1px*2)"},
		{"calc(1px*-2)", "calc(1px*-2)"},
		{"calc(1e-3*1px)", "calc(1e-3*1px)"},
		{"calc(100%-var(--gap-x))", "calc(100% - var(--gap-x))"},
		{"calc(100%-min(2rem,5vw))", "calc(100% - min(2rem,5vw))"},
		{"max(min-content,10px)", "max(min-content,10px)"},
		{"translate(-50%,-50%)", "translate(-50%,-50%)"},
		{"-4px", "-4px"},
		{`calc(1px+2px) "a-1"`, `calc(1px + 2px) "a-1"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, spaceMathOperators(tt.in))
		})
	}
}

func TestResolveRejects(t *testing.T) {
	r := newResolver(t, theme.Options{}, Options{})

	tokens := []string{
		"foo-bar-123",
		"p-99",
		"-p-4",
		"w-[]",
		"w-[10px;color:red]",
		"w-[a{b}]",
		"w-[calc(1px]",
		"text-[22]",
		"bg-blue-500/200",
		"bg-[10px]",
		"wat:p-4",
		"hover:",
		"[notaproperty]",
		"[Color:red]",
		"-[mask-type:luminance]",
		"flex!-1",
		"p",
		"text-red",
		"rotate-[45deg]/50",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			rule, ok := r.Resolve(token)
			assert.False(t, ok)
			assert.Nil(t, rule)
		})
	}
}

func TestResolveVariants(t *testing.T) {
	r := newResolver(t, theme.Options{}, Options{})

	tests := []struct {
		token      string
		template   string
		containers []string
		depth      int
	}{
		{"p-4", "&", nil, 0},
		{"hover:p-4", "&:hover", nil, 1},
		{"md:hover:bg-blue-600", "&:hover", []string{"@media (min-width: 768px)"}, 2},
		{"hover:focus:underline", "&:focus:hover", nil, 2},
		{"hover:hover:p-4", "&:hover:hover", nil, 2},
		{"group-hover:focus:p-4", ".group:hover &:focus", nil, 2},
		{"placeholder:text-gray-400", "&::placeholder", nil, 1},
		{"sm:md:p-4", "&", []string{"@media (min-width: 640px)", "@media (min-width: 768px)"}, 2},
		{"dark:md:bg-black", "&", []string{"@media (prefers-color-scheme: dark)", "@media (min-width: 768px)"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			rule, ok := r.Resolve(tt.token)
			require.True(t, ok)
			assert.Equal(t, tt.template, rule.Template)
			if tt.containers == nil {
				assert.Empty(t, rule.Containers)
			} else {
				assert.Equal(t, tt.containers, rule.Containers)
			}
			assert.Equal(t, tt.depth, rule.Depth)
		})
	}
}

func TestVariantRankOrdersBreakpoints(t *testing.T) {
	r := newResolver(t, theme.Options{}, Options{})

	sm, ok := r.Resolve("sm:p-4")
	require.True(t, ok)
	md, ok := r.Resolve("md:p-4")
	require.True(t, ok)
	hover, ok := r.Resolve("hover:p-4")
	require.True(t, ok)

	assert.Less(t, hover.Rank, sm.Rank)
	assert.Less(t, sm.Rank, md.Rank)
}

func TestSignature(t *testing.T) {
	r := newResolver(t, theme.Options{}, Options{})

	rule, ok := r.Resolve("p-4")
	require.True(t, ok)
	assert.Equal(t, ".p-4{padding:1rem;}", rule.Signature())

	rule, ok = r.Resolve("md:hover:bg-blue-600")
	require.True(t, ok)
	assert.Equal(t, `@media (min-width: 768px){.md\:hover\:bg-blue-600:hover{background-color:#2563eb;}}`, rule.Signature())
	assert.Equal(t, `.md\:hover\:bg-blue-600:hover`, rule.Selector())
}

func TestSignatureClosesContainers(t *testing.T) {
	decls := []theme.Declaration{d("color", "red")}
	nested := &Rule{
		Class:        "x",
		Template:     theme.Placeholder,
		Containers:   []string{"@media print", "@supports (display: grid)"},
		Declarations: decls,
	}
	outer := &Rule{
		Class:        "x",
		Template:     theme.Placeholder,
		Containers:   []string{"@media print"},
		Declarations: decls,
	}

	assert.Equal(t, "@media print{@supports (display: grid){.x{color:red;}}}", nested.Signature())
	assert.Equal(t, "@media print{.x{color:red;}}", outer.Signature())
	assert.NotEqual(t, nested.Signature(), outer.Signature())
}

func TestSignatureUsesEscapedSelector(t *testing.T) {
	decls := []theme.Declaration{d("color", "red")}
	a := &Rule{Class: "a:b", Template: theme.Placeholder, Declarations: decls}
	b := &Rule{Class: "a", Template: theme.Placeholder + ":b", Declarations: decls}

	assert.Equal(t, `.a\:b{color:red;}`, a.Signature())
	assert.Equal(t, ".a:b{color:red;}", b.Signature())
	assert.NotEqual(t, a.Signature(), b.Signature())
}

func TestThemeExtension(t *testing.T) {
	r := newResolver(t, theme.Options{
		Extend: []theme.Tree{{"spacing": theme.Tree{"7": "1.75rem"}}},
	}, Options{})

	rule, ok := r.Resolve("p-7")
	require.True(t, ok)
	assert.Equal(t, []theme.Declaration{d("padding", "1.75rem")}, rule.Declarations)

	rule, ok = r.Resolve("p-4")
	require.True(t, ok)
	assert.Equal(t, []theme.Declaration{d("padding", "1rem")}, rule.Declarations)
}

func TestPrefixAndGlobalImportant(t *testing.T) {
	r := newResolver(t, theme.Options{}, Options{Prefix: "tw-", Important: true})

	rule, ok := r.Resolve("tw-p-4")
	require.True(t, ok)
	assert.Equal(t, []theme.Declaration{d("padding", "1rem !important")}, rule.Declarations)

	rule, ok = r.Resolve("md:-tw-mt-2")
	require.True(t, ok)
	assert.Equal(t, []theme.Declaration{d("margin-top", "-0.5rem !important")}, rule.Declarations)

	_, ok = r.Resolve("p-4")
	assert.False(t, ok)
}

func TestPluginUtilitiesAndVariants(t *testing.T) {
	plugin, err := theme.NewStaticPlugin("forms", nil,
		map[string]string{"hocus": "&:hover, &:focus", "supports-grid": "@supports (display: grid)"},
		map[string]map[string]string{
			"btn":  {"padding": "0.5rem 1rem", "border-radius": "0.25rem"},
			"flex": {"display": "grid"},
		},
	)
	require.NoError(t, err)

	r := newResolver(t, theme.Options{Plugins: []theme.Plugin{plugin}}, Options{})

	rule, ok := r.Resolve("hocus:btn")
	require.True(t, ok)
	assert.Equal(t, "&:hover, &:focus", rule.Template)
	assert.Equal(t, []theme.Declaration{d("border-radius", "0.25rem"), d("padding", "0.5rem 1rem")}, rule.Declarations)

	rule, ok = r.Resolve("supports-grid:p-4")
	require.True(t, ok)
	assert.Equal(t, []string{"@supports (display: grid)"}, rule.Containers)

	rule, ok = r.Resolve("flex")
	require.True(t, ok)
	assert.Equal(t, []theme.Declaration{d("display", "grid")}, rule.Declarations, "plugin utilities take precedence")
}

func TestResolveIsMemoizedAndStable(t *testing.T) {
	r := newResolver(t, theme.Options{}, Options{MemoSize: 2})

	first, ok := r.Resolve("md:p-4")
	require.True(t, ok)
	again, ok := r.Resolve("md:p-4")
	require.True(t, ok)
	assert.Same(t, first, again)

	for _, tok := range []string{"m-1", "m-2", "m-3"} {
		_, ok := r.Resolve(tok)
		require.True(t, ok)
	}
	r.Purge()

	evicted, ok := r.Resolve("md:p-4")
	require.True(t, ok)
	assert.Equal(t, first, evicted)
}

func TestLooksLikeUtility(t *testing.T) {
	assert.True(t, LooksLikeUtility("foo-bar-123"))
	assert.True(t, LooksLikeUtility("hover:wat"))
	assert.True(t, LooksLikeUtility("[x]"))
	assert.False(t, LooksLikeUtility("the"))
	assert.False(t, LooksLikeUtility("div"))
}

func TestDiagnosable(t *testing.T) {
	r := newResolver(t, theme.Options{}, Options{})

	tests := []struct {
		token string
		want  bool
	}{
		{"foo-bar-123", true},
		{"text-nope", true},
		{"hover:wat", true},
		{"md:foo", true},
		{"w-[calc(1px]", true},
		{"[notaproperty]", true},
		{"p-99", true},
		{"accounts:login", false},
		{"'accounts:login'", false},
		{"e-mail", false},
		{"!important", false},
		{"important!", false},
		{"-", false},
		{"the", false},
		{"hover:", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Diagnosable(tt.token))
		})
	}
}

func TestDiagnosableWithPrefix(t *testing.T) {
	r := newResolver(t, theme.Options{}, Options{Prefix: "tw-"})

	assert.True(t, r.Diagnosable("tw-foo-1"))
	assert.True(t, r.Diagnosable("tw-text-nope"))
	assert.False(t, r.Diagnosable("e-mail"))
}

func TestEscapeClass(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"p-4", "p-4"},
		{"md:hover:bg-blue-600", `md\:hover\:bg-blue-600`},
		{"w-1/2", `w-1\/2`},
		{"2xl:flex", `\32 xl\:flex`},
		{"-mt-2", "-mt-2"},
		{"-2", `-\32 `},
		{"-", `\-`},
		{"w-[calc(100%-2rem)]", `w-\[calc\(100\%-2rem\)\]`},
		{"!p-4", `\!p-4`},
		{"p-0.5", `p-0\.5`},
		{"café", "café"},
		{"a\tb", `a\9 b`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeClass(tt.in))
		})
	}
}
