package theme

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Tree is a nested design-token tree. Leaves are strings (numbers are
// accepted and stringified), arrays are []any and nested objects are Trees.
type Tree map[string]any

// normalize converts decoded configuration values (map[any]any from YAML,
// map[string]any from JSON/TOML, numeric leaves) into the canonical shape.
func normalize(v any) any {
	switch val := v.(type) {
	case Tree:
		out := make(Tree, len(val))
		for k, child := range val {
			out[k] = normalize(child)
		}
		return out
	case map[string]any:
		out := make(Tree, len(val))
		for k, child := range val {
			out[k] = normalize(child)
		}
		return out
	case map[any]any:
		out := make(Tree, len(val))
		for k, child := range val {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalize(child)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return nil
	default:
		return fmt.Sprint(val)
	}
}

// Normalize returns a deep copy of m in canonical tree form.
func Normalize(m map[string]any) Tree {
	if m == nil {
		return Tree{}
	}
	return normalize(m).(Tree)
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	return normalize(t).(Tree)
}

// Merge deep-merges src into dst. Keys in src replace keys in dst, nested
// objects merge recursively and arrays replace wholesale.
func Merge(dst, src Tree) {
	for k, sv := range src {
		srcTree, srcIsTree := sv.(Tree)
		dstTree, dstIsTree := dst[k].(Tree)
		if srcIsTree && dstIsTree {
			Merge(dstTree, srcTree)
			continue
		}
		dst[k] = normalize(sv)
	}
}

// Keys returns the tree's keys sorted.
func (t Tree) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lookupDashed resolves key against node treating dashes as possible nesting
// boundaries: "red-500" matches node["red-500"] or node["red"]["500"].
// Exact keys win over nested ones; longer prefixes are tried first.
func lookupDashed(node Tree, key string) (any, bool) {
	if v, ok := node[key]; ok {
		return v, true
	}
	for i := len(key) - 1; i > 0; i-- {
		if key[i] != '-' {
			continue
		}
		child, ok := node[key[:i]].(Tree)
		if !ok {
			continue
		}
		if v, ok := lookupDashed(child, key[i+1:]); ok {
			return v, true
		}
	}
	return nil, false
}

// lookupDotted resolves a dotted reference path. Keys may themselves contain
// dots ("spacing.0.5"), so the longest matching key wins at each level.
func lookupDotted(node Tree, path string) (any, bool) {
	if v, ok := node[path]; ok {
		return v, true
	}
	for i := len(path) - 1; i > 0; i-- {
		if path[i] != '.' {
			continue
		}
		child, ok := node[path[:i]].(Tree)
		if !ok {
			continue
		}
		if v, ok := lookupDotted(child, path[i+1:]); ok {
			return v, true
		}
	}
	return nil, false
}

const referencePrefix = "theme("

// resolveReferences replaces theme(path) leaves with the value found at path.
// References may chain; cycles and dangling paths are configuration errors.
func resolveReferences(root Tree) error {
	var walk func(node any, at string, visiting map[string]bool) (any, error)

	deref := func(ref, at string, visiting map[string]bool) (any, error) {
		if visiting[ref] {
			return nil, &ConfigError{Path: at, Msg: fmt.Sprintf("circular theme reference %q", ref)}
		}
		target, ok := lookupDotted(root, ref)
		if !ok {
			return nil, &ConfigError{Path: at, Msg: fmt.Sprintf("theme reference %q does not exist", ref)}
		}
		visiting[ref] = true
		defer delete(visiting, ref)
		resolved, err := walk(target, ref, visiting)
		if err != nil {
			return nil, err
		}
		return normalize(resolved), nil
	}

	walk = func(node any, at string, visiting map[string]bool) (any, error) {
		switch val := node.(type) {
		case string:
			ref, ok := parseReference(val)
			if !ok {
				return val, nil
			}
			return deref(ref, at, visiting)
		case Tree:
			for _, k := range val.Keys() {
				resolved, err := walk(val[k], joinPath(at, k), visiting)
				if err != nil {
					return nil, err
				}
				val[k] = resolved
			}
			return val, nil
		case []any:
			for i, child := range val {
				resolved, err := walk(child, fmt.Sprintf("%s[%d]", at, i), visiting)
				if err != nil {
					return nil, err
				}
				val[i] = resolved
			}
			return val, nil
		default:
			return val, nil
		}
	}

	_, err := walk(root, "", map[string]bool{})
	return err
}

// parseReference extracts the path from a "theme(path)" leaf.
func parseReference(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, referencePrefix) || !strings.HasSuffix(s, ")") {
		return "", false
	}
	ref := strings.TrimSpace(s[len(referencePrefix) : len(s)-1])
	ref = strings.Trim(ref, `"'`)
	return ref, ref != ""
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
