package theme

// Defaults returns a freshly built default token tree. Every call returns a
// new tree so engines never share mutable theme state.
func Defaults() Tree {
	return Tree{
		"screens": Tree{
			"sm":  "640px",
			"md":  "768px",
			"lg":  "1024px",
			"xl":  "1280px",
			"2xl": "1536px",
		},
		"spacing":       defaultSpacing(),
		"colors":        defaultColors(),
		"fontSize":      defaultFontSize(),
		"fontWeight":    defaultFontWeight(),
		"fontFamily":    defaultFontFamily(),
		"lineHeight":    defaultLineHeight(),
		"letterSpacing": defaultLetterSpacing(),
		"borderWidth": Tree{
			"DEFAULT": "1px",
			"0":       "0px",
			"2":       "2px",
			"4":       "4px",
			"8":       "8px",
		},
		"borderRadius": Tree{
			"none":    "0px",
			"sm":      "0.125rem",
			"DEFAULT": "0.25rem",
			"md":      "0.375rem",
			"lg":      "0.5rem",
			"xl":      "0.75rem",
			"2xl":     "1rem",
			"3xl":     "1.5rem",
			"full":    "9999px",
		},
		"boxShadow": Tree{
			"sm":      "0 1px 2px 0 rgb(0 0 0 / 0.05)",
			"DEFAULT": "0 1px 3px 0 rgb(0 0 0 / 0.1), 0 1px 2px -1px rgb(0 0 0 / 0.1)",
			"md":      "0 4px 6px -1px rgb(0 0 0 / 0.1), 0 2px 4px -2px rgb(0 0 0 / 0.1)",
			"lg":      "0 10px 15px -3px rgb(0 0 0 / 0.1), 0 4px 6px -4px rgb(0 0 0 / 0.1)",
			"xl":      "0 20px 25px -5px rgb(0 0 0 / 0.1), 0 8px 10px -6px rgb(0 0 0 / 0.1)",
			"2xl":     "0 25px 50px -12px rgb(0 0 0 / 0.25)",
			"inner":   "inset 0 2px 4px 0 rgb(0 0 0 / 0.05)",
			"none":    "none",
		},
		"opacity": Tree{
			"0": "0", "5": "0.05", "10": "0.1", "15": "0.15", "20": "0.2", "25": "0.25",
			"30": "0.3", "35": "0.35", "40": "0.4", "45": "0.45", "50": "0.5", "55": "0.55",
			"60": "0.6", "65": "0.65", "70": "0.7", "75": "0.75", "80": "0.8", "85": "0.85",
			"90": "0.9", "95": "0.95", "100": "1",
		},
		"zIndex": Tree{
			"0": "0", "10": "10", "20": "20", "30": "30", "40": "40", "50": "50", "auto": "auto",
		},
		"order": Tree{
			"first": "-9999", "last": "9999", "none": "0",
			"1": "1", "2": "2", "3": "3", "4": "4", "5": "5", "6": "6",
			"7": "7", "8": "8", "9": "9", "10": "10", "11": "11", "12": "12",
		},
		"gridTemplateColumns": defaultGridColumns(),
		"transitionDuration": Tree{
			"DEFAULT": "150ms",
			"0":       "0s", "75": "75ms", "100": "100ms", "150": "150ms", "200": "200ms",
			"300": "300ms", "500": "500ms", "700": "700ms", "1000": "1000ms",
		},
		"rotate": Tree{
			"0": "0deg", "1": "1deg", "2": "2deg", "3": "3deg", "6": "6deg",
			"12": "12deg", "45": "45deg", "90": "90deg", "180": "180deg",
		},
		"scale": Tree{
			"0": "0", "50": ".5", "75": ".75", "90": ".9", "95": ".95",
			"100": "1", "105": "1.05", "110": "1.1", "125": "1.25", "150": "1.5",
		},
		"margin": Tree{"auto": "auto"},
		"inset": mergedTree(fractions(), Tree{"auto": "auto", "full": "100%"}),
		"translate": mergedTree(fractions(), Tree{"full": "100%"}),
		"width": mergedTree(fractions(), Tree{
			"auto":   "auto",
			"full":   "100%",
			"screen": "100vw",
			"min":    "min-content",
			"max":    "max-content",
			"fit":    "fit-content",
		}),
		"height": mergedTree(fractions(), Tree{
			"auto":   "auto",
			"full":   "100%",
			"screen": "100vh",
			"min":    "min-content",
			"max":    "max-content",
			"fit":    "fit-content",
		}),
		"size": mergedTree(fractions(), Tree{"auto": "auto", "full": "100%"}),
		"minWidth": Tree{
			"0": "0px", "full": "100%", "min": "min-content", "max": "max-content", "fit": "fit-content",
		},
		"minHeight": Tree{
			"0": "0px", "full": "100%", "screen": "100vh", "min": "min-content", "max": "max-content", "fit": "fit-content",
		},
		"maxWidth": Tree{
			"none": "none", "0": "0rem", "xs": "20rem", "sm": "24rem", "md": "28rem", "lg": "32rem",
			"xl": "36rem", "2xl": "42rem", "3xl": "48rem", "4xl": "56rem", "5xl": "64rem",
			"6xl": "72rem", "7xl": "80rem", "full": "100%", "min": "min-content",
			"max": "max-content", "fit": "fit-content", "prose": "65ch",
		},
		"maxHeight": Tree{
			"none": "none", "full": "100%", "screen": "100vh", "min": "min-content", "max": "max-content", "fit": "fit-content",
		},
		"flexBasis": mergedTree(fractions(), Tree{"auto": "auto", "full": "100%"}),
	}
}

func defaultSpacing() Tree {
	return Tree{
		"px": "1px", "0": "0px", "0.5": "0.125rem", "1": "0.25rem", "1.5": "0.375rem",
		"2": "0.5rem", "2.5": "0.625rem", "3": "0.75rem", "3.5": "0.875rem", "4": "1rem",
		"5": "1.25rem", "6": "1.5rem", "7": "1.75rem", "8": "2rem", "9": "2.25rem",
		"10": "2.5rem", "11": "2.75rem", "12": "3rem", "14": "3.5rem", "16": "4rem",
		"20": "5rem", "24": "6rem", "28": "7rem", "32": "8rem", "36": "9rem", "40": "10rem",
		"44": "11rem", "48": "12rem", "52": "13rem", "56": "14rem", "60": "15rem",
		"64": "16rem", "72": "18rem", "80": "20rem", "96": "24rem",
	}
}

func fractions() Tree {
	return Tree{
		"1/2": "50%", "1/3": "33.333333%", "2/3": "66.666667%", "1/4": "25%",
		"2/4": "50%", "3/4": "75%", "1/5": "20%", "2/5": "40%", "3/5": "60%",
		"4/5": "80%", "1/6": "16.666667%", "5/6": "83.333333%",
	}
}

func mergedTree(trees ...Tree) Tree {
	out := Tree{}
	for _, t := range trees {
		Merge(out, t)
	}
	return out
}

func defaultFontSize() Tree {
	return Tree{
		"xs":   []any{"0.75rem", "1rem"},
		"sm":   []any{"0.875rem", "1.25rem"},
		"base": []any{"1rem", "1.5rem"},
		"lg":   []any{"1.125rem", "1.75rem"},
		"xl":   []any{"1.25rem", "1.75rem"},
		"2xl":  []any{"1.5rem", "2rem"},
		"3xl":  []any{"1.875rem", "2.25rem"},
		"4xl":  []any{"2.25rem", "2.5rem"},
		"5xl":  []any{"3rem", "1"},
		"6xl":  []any{"3.75rem", "1"},
		"7xl":  []any{"4.5rem", "1"},
		"8xl":  []any{"6rem", "1"},
		"9xl":  []any{"8rem", "1"},
	}
}

func defaultFontWeight() Tree {
	return Tree{
		"thin": "100", "extralight": "200", "light": "300", "normal": "400", "medium": "500",
		"semibold": "600", "bold": "700", "extrabold": "800", "black": "900",
	}
}

func defaultFontFamily() Tree {
	return Tree{
		"sans":  []any{"ui-sans-serif", "system-ui", "sans-serif"},
		"serif": []any{"ui-serif", "Georgia", "Cambria", `"Times New Roman"`, "Times", "serif"},
		"mono":  []any{"ui-monospace", "SFMono-Regular", "Menlo", "Monaco", "Consolas", "monospace"},
	}
}

func defaultLineHeight() Tree {
	return Tree{
		"none": "1", "tight": "1.25", "snug": "1.375", "normal": "1.5", "relaxed": "1.625", "loose": "2",
		"3": ".75rem", "4": "1rem", "5": "1.25rem", "6": "1.5rem", "7": "1.75rem",
		"8": "2rem", "9": "2.25rem", "10": "2.5rem",
	}
}

func defaultLetterSpacing() Tree {
	return Tree{
		"tighter": "-0.05em", "tight": "-0.025em", "normal": "0em",
		"wide": "0.025em", "wider": "0.05em", "widest": "0.1em",
	}
}

func defaultGridColumns() Tree {
	cols := Tree{"none": "none", "subgrid": "subgrid"}
	for _, n := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"} {
		cols[n] = "repeat(" + n + ", minmax(0, 1fr))"
	}
	return cols
}

func defaultColors() Tree {
	return Tree{
		"inherit":     "inherit",
		"current":     "currentColor",
		"transparent": "transparent",
		"black":       "#000",
		"white":       "#fff",
		"slate": palette(
			"#f8fafc", "#f1f5f9", "#e2e8f0", "#cbd5e1", "#94a3b8", "#64748b",
			"#475569", "#334155", "#1e293b", "#0f172a", "#020617",
		),
		"gray": palette(
			"#f9fafb", "#f3f4f6", "#e5e7eb", "#d1d5db", "#9ca3af", "#6b7280",
			"#4b5563", "#374151", "#1f2937", "#111827", "#030712",
		),
		"red": palette(
			"#fef2f2", "#fee2e2", "#fecaca", "#fca5a5", "#f87171", "#ef4444",
			"#dc2626", "#b91c1c", "#991b1b", "#7f1d1d", "#450a0a",
		),
		"orange": palette(
			"#fff7ed", "#ffedd5", "#fed7aa", "#fdba74", "#fb923c", "#f97316",
			"#ea580c", "#c2410c", "#9a3412", "#7c2d12", "#431407",
		),
		"yellow": palette(
			"#fefce8", "#fef9c3", "#fef08a", "#fde047", "#facc15", "#eab308",
			"#ca8a04", "#a16207", "#854d0e", "#713f12", "#422006",
		),
		"green": palette(
			"#f0fdf4", "#dcfce7", "#bbf7d0", "#86efac", "#4ade80", "#22c55e",
			"#16a34a", "#15803d", "#166534", "#14532d", "#052e16",
		),
		"blue": palette(
			"#eff6ff", "#dbeafe", "#bfdbfe", "#93c5fd", "#60a5fa", "#3b82f6",
			"#2563eb", "#1d4ed8", "#1e40af", "#1e3a8a", "#172554",
		),
		"indigo": palette(
			"#eef2ff", "#e0e7ff", "#c7d2fe", "#a5b4fc", "#818cf8", "#6366f1",
			"#4f46e5", "#4338ca", "#3730a3", "#312e81", "#1e1b4b",
		),
		"purple": palette(
			"#faf5ff", "#f3e8ff", "#e9d5ff", "#d8b4fe", "#c084fc", "#a855f7",
			"#9333ea", "#7e22ce", "#6b21a8", "#581c87", "#3b0764",
		),
		"pink": palette(
			"#fdf2f8", "#fce7f3", "#fbcfe8", "#f9a8d4", "#f472b6", "#ec4899",
			"#db2777", "#be185d", "#9d174d", "#831843", "#500724",
		),
	}
}

var shades = []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900", "950"}

// palette maps the 11 standard shades onto hex values in order
func palette(hex ...string) Tree {
	t := make(Tree, len(hex))
	for i, h := range hex {
		t[shades[i]] = h
	}
	return t
}
