package resolver

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yacobolo/utilcss/internal/theme"
)

type decl = theme.Declaration

// static defines a fixed utility from property/value pairs.
func static(name string, pairs ...string) theme.UtilityDef {
	def := theme.UtilityDef{Name: name}
	for i := 0; i+1 < len(pairs); i += 2 {
		def.Static = append(def.Static, decl{Property: pairs[i], Value: pairs[i+1]})
	}
	return def
}

// enum defines prefix-<key> utilities setting prop to values[key].
func enum(prefix, prop string, values map[string]string) []theme.UtilityDef {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	defs := make([]theme.UtilityDef, 0, len(keys))
	for _, k := range keys {
		defs = append(defs, static(prefix+"-"+k, prop, values[k]))
	}
	return defs
}

// same maps each name onto itself.
func same(names ...string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[n] = n
	}
	return m
}

func generated(name string, fn theme.UtilityFunc) theme.UtilityDef {
	return theme.UtilityDef{Name: name, Generate: fn}
}

func declsFor(props []string, value string) []theme.Declaration {
	out := make([]theme.Declaration, len(props))
	for i, p := range props {
		out[i] = decl{Property: p, Value: value}
	}
	return out
}

// themeValue resolves a candidate against category, or takes the arbitrary
// value when it fits kind.
func themeValue(t *theme.Theme, category string, c theme.Candidate, kind string) (string, bool) {
	if c.Modifier != "" {
		return "", false
	}
	if c.Arbitrary {
		if !acceptsKind(kind, c.Hint, c.Value) {
			return "", false
		}
		return c.Value, true
	}
	v, ok := t.Lookup(category, c.Value)
	if !ok {
		return "", false
	}
	return v.Leaf()
}

// negate flips the sign of a length-like value.
func negate(v string) (string, bool) {
	switch {
	case v == "":
		return "", false
	case v[0] == '-':
		return v[1:], true
	case v[0] >= '0' && v[0] <= '9', v[0] == '.':
		return "-" + v, true
	case strings.HasPrefix(v, "calc("), strings.HasPrefix(v, "var("),
		strings.HasPrefix(v, "min("), strings.HasPrefix(v, "max("), strings.HasPrefix(v, "clamp("):
		return "calc(" + v + " * -1)", true
	}
	return "", false
}

// themed resolves the candidate in category and sets every prop to it.
func themed(category, kind string, negatable bool, props ...string) theme.UtilityFunc {
	return func(t *theme.Theme, c theme.Candidate) ([]theme.Declaration, bool) {
		v, ok := themeValue(t, category, c, kind)
		if !ok {
			return nil, false
		}
		if c.Negative {
			if !negatable {
				return nil, false
			}
			if v, ok = negate(v); !ok {
				return nil, false
			}
		}
		return declsFor(props, v), true
	}
}

// wrapped is themed with the value placed inside a CSS function, as
// transforms need.
func wrapped(category, fn string, negatable bool, prop string) theme.UtilityFunc {
	inner := themed(category, kindAny, negatable, prop)
	return func(t *theme.Theme, c theme.Candidate) ([]theme.Declaration, bool) {
		out, ok := inner(t, c)
		if !ok {
			return nil, false
		}
		out[0].Value = fn + "(" + out[0].Value + ")"
		return out, true
	}
}

// colored resolves a color with an optional opacity modifier.
func colored(category string, props ...string) theme.UtilityFunc {
	return func(t *theme.Theme, c theme.Candidate) ([]theme.Declaration, bool) {
		if c.Negative {
			return nil, false
		}

		opacity := func(key string) (string, bool) {
			v, ok := t.Lookup("opacity", key)
			if !ok {
				return "", false
			}
			return v.Leaf()
		}

		if c.Arbitrary {
			if !acceptsKind(kindColor, c.Hint, c.Value) {
				return nil, false
			}
			color := c.Value
			if c.Modifier != "" {
				alpha, ok := parseAlpha(c.Modifier, opacity)
				if !ok {
					return nil, false
				}
				color = withAlpha(color, alpha)
			}
			return declsFor(props, color), true
		}

		if v, ok := t.Lookup(category, c.Value); ok {
			if color, ok := v.Leaf(); ok {
				return declsFor(props, color), true
			}
		}

		base, modifier, ok := c.SplitModifier()
		if !ok {
			return nil, false
		}
		v, ok := t.Lookup(category, base)
		if !ok {
			return nil, false
		}
		color, ok := v.Leaf()
		if !ok {
			return nil, false
		}
		alpha, ok := parseAlpha(modifier, opacity)
		if !ok {
			return nil, false
		}
		return declsFor(props, withAlpha(color, alpha)), true
	}
}

func fontSize(t *theme.Theme, c theme.Candidate) ([]theme.Declaration, bool) {
	if c.Negative || c.Modifier != "" {
		return nil, false
	}
	if c.Arbitrary {
		if !acceptsKind(kindLength, c.Hint, c.Value) {
			return nil, false
		}
		return []theme.Declaration{{Property: "font-size", Value: c.Value}}, true
	}
	v, ok := t.Lookup("fontSize", c.Value)
	if !ok {
		return nil, false
	}
	list, ok := v.List()
	if !ok || len(list) == 0 {
		return nil, false
	}
	out := []theme.Declaration{{Property: "font-size", Value: list[0]}}
	if len(list) > 1 {
		out = append(out, decl{Property: "line-height", Value: list[1]})
	}
	return out, true
}

func fontWeight(t *theme.Theme, c theme.Candidate) ([]theme.Declaration, bool) {
	if c.Negative || c.Modifier != "" {
		return nil, false
	}
	if c.Arbitrary {
		if c.Hint != "" && c.Hint != "number" {
			return nil, false
		}
		if _, err := strconv.Atoi(c.Value); err != nil {
			return nil, false
		}
		return []theme.Declaration{{Property: "font-weight", Value: c.Value}}, true
	}
	v, ok := t.Lookup("fontWeight", c.Value)
	if !ok {
		return nil, false
	}
	w, ok := v.Leaf()
	if !ok {
		return nil, false
	}
	return []theme.Declaration{{Property: "font-weight", Value: w}}, true
}

func fontFamily(t *theme.Theme, c theme.Candidate) ([]theme.Declaration, bool) {
	if c.Negative || c.Modifier != "" {
		return nil, false
	}
	if c.Arbitrary {
		return []theme.Declaration{{Property: "font-family", Value: c.Value}}, true
	}
	v, ok := t.Lookup("fontFamily", c.Value)
	if !ok {
		return nil, false
	}
	list, ok := v.List()
	if !ok || len(list) == 0 {
		return nil, false
	}
	return []theme.Declaration{{Property: "font-family", Value: strings.Join(list, ", ")}}, true
}

// span generates grid-column spans: "col-span-3", "col-span-full".
func span(prop string) theme.UtilityFunc {
	return func(_ *theme.Theme, c theme.Candidate) ([]theme.Declaration, bool) {
		if c.Negative || c.Modifier != "" {
			return nil, false
		}
		switch {
		case c.Arbitrary:
			return []theme.Declaration{{Property: prop, Value: c.Value}}, true
		case c.Value == "full":
			return []theme.Declaration{{Property: prop, Value: "1 / -1"}}, true
		}
		n, err := strconv.Atoi(c.Value)
		if err != nil || n < 1 || n > 12 || strconv.Itoa(n) != c.Value {
			return nil, false
		}
		return []theme.Declaration{{Property: prop, Value: "span " + c.Value + " / span " + c.Value}}, true
	}
}

// builtinUtilities is the core utility table. Several definitions may share
// a name; they are tried in order, so "text" tries a font size before a
// color.
func builtinUtilities() []theme.UtilityDef {
	var defs []theme.UtilityDef
	add := func(d ...theme.UtilityDef) { defs = append(defs, d...) }

	// Layout
	for _, d := range []string{"block", "inline-block", "inline", "flex", "inline-flex", "grid", "inline-grid", "contents", "table", "flow-root"} {
		add(static(d, "display", d))
	}
	add(static("hidden", "display", "none"))
	for _, p := range []string{"static", "fixed", "absolute", "relative", "sticky"} {
		add(static(p, "position", p))
	}
	add(
		static("visible", "visibility", "visible"),
		static("invisible", "visibility", "hidden"),
		static("sr-only",
			"position", "absolute", "width", "1px", "height", "1px", "padding", "0",
			"margin", "-1px", "overflow", "hidden", "clip", "rect(0, 0, 0, 0)",
			"white-space", "nowrap", "border-width", "0"),
	)
	overflow := same("auto", "hidden", "clip", "visible", "scroll")
	add(enum("overflow", "overflow", overflow)...)
	add(enum("overflow-x", "overflow-x", overflow)...)
	add(enum("overflow-y", "overflow-y", overflow)...)
	add(generated("z", themed("zIndex", kindAny, true, "z-index")))

	// Inset
	add(
		generated("inset", themed("inset", kindAny, true, "inset")),
		generated("inset-x", themed("inset", kindAny, true, "left", "right")),
		generated("inset-y", themed("inset", kindAny, true, "top", "bottom")),
		generated("top", themed("inset", kindAny, true, "top")),
		generated("right", themed("inset", kindAny, true, "right")),
		generated("bottom", themed("inset", kindAny, true, "bottom")),
		generated("left", themed("inset", kindAny, true, "left")),
	)

	// Flexbox and grid
	add(enum("flex", "flex-direction", map[string]string{
		"row": "row", "row-reverse": "row-reverse", "col": "column", "col-reverse": "column-reverse",
	})...)
	add(enum("flex", "flex-wrap", same("wrap", "wrap-reverse", "nowrap"))...)
	add(enum("flex", "flex", map[string]string{
		"1": "1 1 0%", "auto": "1 1 auto", "initial": "0 1 auto", "none": "none",
	})...)
	add(
		static("grow", "flex-grow", "1"),
		static("grow-0", "flex-grow", "0"),
		static("shrink", "flex-shrink", "1"),
		static("shrink-0", "flex-shrink", "0"),
		generated("basis", themed("flexBasis", kindAny, false, "flex-basis")),
		generated("order", themed("order", kindAny, true, "order")),
		generated("grid-cols", themed("gridTemplateColumns", kindAny, false, "grid-template-columns")),
		generated("col-span", span("grid-column")),
		generated("gap", themed("gap", kindAny, false, "gap")),
		generated("gap-x", themed("gap", kindAny, false, "column-gap")),
		generated("gap-y", themed("gap", kindAny, false, "row-gap")),
	)
	add(enum("justify", "justify-content", map[string]string{
		"start": "flex-start", "end": "flex-end", "center": "center",
		"between": "space-between", "around": "space-around", "evenly": "space-evenly",
	})...)
	add(enum("items", "align-items", map[string]string{
		"start": "flex-start", "end": "flex-end", "center": "center",
		"baseline": "baseline", "stretch": "stretch",
	})...)
	add(enum("self", "align-self", map[string]string{
		"auto": "auto", "start": "flex-start", "end": "flex-end",
		"center": "center", "stretch": "stretch",
	})...)

	// Spacing
	spacing := []struct {
		name     string
		category string
		negative bool
		props    []string
	}{
		{"p", "padding", false, []string{"padding"}},
		{"px", "padding", false, []string{"padding-left", "padding-right"}},
		{"py", "padding", false, []string{"padding-top", "padding-bottom"}},
		{"pt", "padding", false, []string{"padding-top"}},
		{"pr", "padding", false, []string{"padding-right"}},
		{"pb", "padding", false, []string{"padding-bottom"}},
		{"pl", "padding", false, []string{"padding-left"}},
		{"m", "margin", true, []string{"margin"}},
		{"mx", "margin", true, []string{"margin-left", "margin-right"}},
		{"my", "margin", true, []string{"margin-top", "margin-bottom"}},
		{"mt", "margin", true, []string{"margin-top"}},
		{"mr", "margin", true, []string{"margin-right"}},
		{"mb", "margin", true, []string{"margin-bottom"}},
		{"ml", "margin", true, []string{"margin-left"}},
	}
	for _, s := range spacing {
		add(generated(s.name, themed(s.category, kindAny, s.negative, s.props...)))
	}

	// Sizing
	add(
		generated("w", themed("width", kindAny, false, "width")),
		generated("h", themed("height", kindAny, false, "height")),
		generated("size", themed("size", kindAny, false, "width", "height")),
		generated("min-w", themed("minWidth", kindAny, false, "min-width")),
		generated("max-w", themed("maxWidth", kindAny, false, "max-width")),
		generated("min-h", themed("minHeight", kindAny, false, "min-height")),
		generated("max-h", themed("maxHeight", kindAny, false, "max-height")),
	)

	// Typography
	add(
		generated("text", fontSize),
		generated("text", colored("textColor", "color")),
		generated("font", fontWeight),
		generated("font", fontFamily),
		generated("leading", themed("lineHeight", kindAny, false, "line-height")),
		generated("tracking", themed("letterSpacing", kindAny, true, "letter-spacing")),
		static("italic", "font-style", "italic"),
		static("not-italic", "font-style", "normal"),
		static("underline", "text-decoration-line", "underline"),
		static("line-through", "text-decoration-line", "line-through"),
		static("no-underline", "text-decoration-line", "none"),
		static("uppercase", "text-transform", "uppercase"),
		static("lowercase", "text-transform", "lowercase"),
		static("capitalize", "text-transform", "capitalize"),
		static("normal-case", "text-transform", "none"),
		static("truncate", "overflow", "hidden", "text-overflow", "ellipsis", "white-space", "nowrap"),
	)
	add(enum("text", "text-align", same("left", "center", "right", "justify", "start", "end"))...)
	add(enum("whitespace", "white-space", same("normal", "nowrap", "pre", "pre-line", "pre-wrap"))...)

	// Backgrounds, borders, effects
	add(
		generated("bg", colored("backgroundColor", "background-color")),
		generated("fill", colored("fill", "fill")),
		generated("stroke", colored("stroke", "stroke")),
		generated("border", themed("borderWidth", kindLength, false, "border-width")),
		generated("border", colored("borderColor", "border-color")),
		generated("border-x", themed("borderWidth", kindLength, false, "border-left-width", "border-right-width")),
		generated("border-y", themed("borderWidth", kindLength, false, "border-top-width", "border-bottom-width")),
		generated("border-t", themed("borderWidth", kindLength, false, "border-top-width")),
		generated("border-r", themed("borderWidth", kindLength, false, "border-right-width")),
		generated("border-b", themed("borderWidth", kindLength, false, "border-bottom-width")),
		generated("border-l", themed("borderWidth", kindLength, false, "border-left-width")),
		generated("rounded", themed("borderRadius", kindAny, false, "border-radius")),
		generated("rounded-t", themed("borderRadius", kindAny, false, "border-top-left-radius", "border-top-right-radius")),
		generated("rounded-r", themed("borderRadius", kindAny, false, "border-top-right-radius", "border-bottom-right-radius")),
		generated("rounded-b", themed("borderRadius", kindAny, false, "border-bottom-right-radius", "border-bottom-left-radius")),
		generated("rounded-l", themed("borderRadius", kindAny, false, "border-top-left-radius", "border-bottom-left-radius")),
		generated("opacity", themed("opacity", kindAny, false, "opacity")),
		generated("shadow", themed("boxShadow", kindAny, false, "box-shadow")),
	)
	add(enum("border", "border-style", same("solid", "dashed", "dotted", "double", "none"))...)

	// Interactivity
	add(enum("cursor", "cursor", same("auto", "default", "pointer", "wait", "text", "move", "not-allowed", "grab"))...)
	add(
		static("select-none", "user-select", "none"),
		static("select-all", "user-select", "all"),
		static("pointer-events-none", "pointer-events", "none"),
		static("pointer-events-auto", "pointer-events", "auto"),
	)

	// Transitions and transforms
	timing := "cubic-bezier(0.4, 0, 0.2, 1)"
	add(
		static("transition",
			"transition-property", "color, background-color, border-color, text-decoration-color, fill, stroke, opacity, box-shadow, transform, filter",
			"transition-timing-function", timing,
			"transition-duration", "150ms"),
		static("transition-colors",
			"transition-property", "color, background-color, border-color, text-decoration-color, fill, stroke",
			"transition-timing-function", timing,
			"transition-duration", "150ms"),
		static("transition-opacity",
			"transition-property", "opacity",
			"transition-timing-function", timing,
			"transition-duration", "150ms"),
		static("transition-transform",
			"transition-property", "transform",
			"transition-timing-function", timing,
			"transition-duration", "150ms"),
		static("transition-none", "transition-property", "none"),
		generated("duration", themed("transitionDuration", kindAny, false, "transition-duration")),
		generated("translate-x", wrapped("translate", "translateX", true, "transform")),
		generated("translate-y", wrapped("translate", "translateY", true, "transform")),
		generated("rotate", wrapped("rotate", "rotate", true, "transform")),
		generated("scale", wrapped("scale", "scale", false, "transform")),
	)

	return defs
}
