// Package utilcss generates utility CSS from the class names found in
// content files.
//
// The engine scans source text for candidate tokens, resolves each token
// against a theme into a CSS rule and keeps the rule set reference counted
// by source, so edits and deletions update the stylesheet incrementally.
//
// # Usage
//
//	engine, err := utilcss.Configure(utilcss.Config{
//		Content: []string{"templates/**/*.html"},
//		Theme: utilcss.ThemeConfig{
//			Extend: []map[string]any{{"spacing": map[string]any{"7": "1.75rem"}}},
//		},
//	})
//	html := `<div class="p-7 md:hover:bg-blue-600">`
//	res, err := engine.OnSourceChanged(ctx, "templates/index.html", &html)
//	fmt.Print(res.CSS)
//
// Passing a nil text removes the source. Unknown utilities never fail a
// call; they come back as Diagnostics.
//
// # CLI Tool
//
// Install with:
//
//	go install github.com/yacobolo/utilcss/cmd/utilcss@latest
//
// and run `utilcss init` followed by `utilcss build` or `utilcss watch`.
package utilcss
