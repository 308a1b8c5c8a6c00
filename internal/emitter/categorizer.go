package emitter

import "strings"

// Category groups CSS properties for ordering. Lower values are emitted
// first among rules of equal depth and rank.
type Category int

// Canonical category order.
const (
	CategoryLayout Category = iota
	CategoryBox
	CategoryFlexGrid
	CategoryTypography
	CategoryVisual
	CategoryEffects
	CategoryInteractivity
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryLayout:
		return "layout"
	case CategoryBox:
		return "box"
	case CategoryFlexGrid:
		return "flex-grid"
	case CategoryTypography:
		return "typography"
	case CategoryVisual:
		return "visual"
	case CategoryEffects:
		return "effects"
	case CategoryInteractivity:
		return "interactivity"
	default:
		return "other"
	}
}

// propertyCategories maps CSS property names to categories
var propertyCategories = map[string]Category{
	// Layout
	"display":    CategoryLayout,
	"position":   CategoryLayout,
	"visibility": CategoryLayout,
	"inset":      CategoryLayout,
	"top":        CategoryLayout,
	"right":      CategoryLayout,
	"bottom":     CategoryLayout,
	"left":       CategoryLayout,
	"z-index":    CategoryLayout,
	"overflow":   CategoryLayout,
	"overflow-x": CategoryLayout,
	"overflow-y": CategoryLayout,
	"float":      CategoryLayout,
	"clear":      CategoryLayout,
	"clip":       CategoryLayout,

	// Box
	"box-sizing":   CategoryBox,
	"width":        CategoryBox,
	"height":       CategoryBox,
	"min-width":    CategoryBox,
	"min-height":   CategoryBox,
	"max-width":    CategoryBox,
	"max-height":   CategoryBox,
	"aspect-ratio": CategoryBox,
	"padding":      CategoryBox,
	"margin":       CategoryBox,

	// Flex and grid
	"flex":                  CategoryFlexGrid,
	"flex-direction":        CategoryFlexGrid,
	"flex-wrap":             CategoryFlexGrid,
	"flex-grow":             CategoryFlexGrid,
	"flex-shrink":           CategoryFlexGrid,
	"flex-basis":            CategoryFlexGrid,
	"order":                 CategoryFlexGrid,
	"grid-template-columns": CategoryFlexGrid,
	"grid-column":           CategoryFlexGrid,
	"gap":                   CategoryFlexGrid,
	"row-gap":               CategoryFlexGrid,
	"column-gap":            CategoryFlexGrid,
	"justify-content":       CategoryFlexGrid,
	"align-items":           CategoryFlexGrid,
	"align-self":            CategoryFlexGrid,
	"align-content":         CategoryFlexGrid,

	// Typography
	"font-family":          CategoryTypography,
	"font-size":            CategoryTypography,
	"font-weight":          CategoryTypography,
	"font-style":           CategoryTypography,
	"line-height":          CategoryTypography,
	"letter-spacing":       CategoryTypography,
	"text-align":           CategoryTypography,
	"text-decoration":      CategoryTypography,
	"text-decoration-line": CategoryTypography,
	"text-transform":       CategoryTypography,
	"text-overflow":        CategoryTypography,
	"white-space":          CategoryTypography,
	"word-break":           CategoryTypography,
	"color":                CategoryTypography,

	// Visual
	"background":       CategoryVisual,
	"background-color": CategoryVisual,
	"background-image": CategoryVisual,
	"border":           CategoryVisual,
	"border-color":     CategoryVisual,
	"border-style":     CategoryVisual,
	"border-width":     CategoryVisual,
	"border-radius":    CategoryVisual,
	"outline":          CategoryVisual,
	"fill":             CategoryVisual,
	"stroke":           CategoryVisual,
	"opacity":          CategoryVisual,
	"box-shadow":       CategoryVisual,

	// Effects
	"transition":                 CategoryEffects,
	"transition-property":        CategoryEffects,
	"transition-duration":        CategoryEffects,
	"transition-timing-function": CategoryEffects,
	"transition-delay":           CategoryEffects,
	"transform":                  CategoryEffects,
	"translate":                  CategoryEffects,
	"rotate":                     CategoryEffects,
	"scale":                      CategoryEffects,
	"animation":                  CategoryEffects,
	"filter":                     CategoryEffects,
	"backdrop-filter":            CategoryEffects,
	"mask":                       CategoryEffects,

	// Interactivity
	"cursor":          CategoryInteractivity,
	"user-select":     CategoryInteractivity,
	"pointer-events":  CategoryInteractivity,
	"resize":          CategoryInteractivity,
	"scroll-behavior": CategoryInteractivity,
}

// categorizeProperty determines the category of a CSS property
func categorizeProperty(name string) Category {
	name = strings.ToLower(name)

	// Custom properties carry no layout meaning of their own
	if strings.HasPrefix(name, "--") {
		return CategoryOther
	}

	// Vendor prefixes sort with the unprefixed property
	for _, p := range []string{"-webkit-", "-moz-", "-ms-", "-o-"} {
		if strings.HasPrefix(name, p) {
			name = strings.TrimPrefix(name, p)
			break
		}
	}

	if cat, exists := propertyCategories[name]; exists {
		return cat
	}

	switch {
	case strings.HasPrefix(name, "padding-"), strings.HasPrefix(name, "margin-"),
		strings.HasPrefix(name, "min-"), strings.HasPrefix(name, "max-"):
		return CategoryBox
	case strings.HasPrefix(name, "inset-"):
		return CategoryLayout
	case strings.HasPrefix(name, "flex-"), strings.HasPrefix(name, "grid-"),
		strings.HasPrefix(name, "justify-"), strings.HasPrefix(name, "align-"),
		strings.HasPrefix(name, "place-"):
		return CategoryFlexGrid
	case strings.HasPrefix(name, "font-"), strings.HasPrefix(name, "text-"):
		return CategoryTypography
	case strings.HasPrefix(name, "border-"), strings.HasPrefix(name, "background-"),
		strings.HasPrefix(name, "outline-"):
		return CategoryVisual
	case strings.HasPrefix(name, "transition-"), strings.HasPrefix(name, "animation-"),
		strings.HasPrefix(name, "transform-"), strings.HasPrefix(name, "mask-"):
		return CategoryEffects
	}
	return CategoryOther
}
