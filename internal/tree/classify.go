package tree

// Kind classifies a state-tree node for traversal.
type Kind int

const (
	// KindObject is a plain record (map[string]any). The only node shape
	// the diffing and path machinery recurses into key-by-key.
	KindObject Kind = iota + 1

	// KindArray is a plain sequence ([]any). Traversed by index, never
	// merged element-wise.
	KindArray

	// KindLeaf is everything else. Opaque: copied by reference, compared
	// by identity, never traversed. This covers time.Time, *regexp.Regexp,
	// error values, channels, funcs, typed maps/slices (map[string]int,
	// []byte, ...), structs, and any user-defined type.
	KindLeaf
)

// Classify returns the traversal kind for a value.
//
// The classification is intentionally positive: only the two untyped
// container shapes recurse. A new opaque type can never be mis-traversed
// by omission from a skip-list, because there is no skip-list - anything
// not literally map[string]any or []any is a leaf.
func Classify(v any) Kind {
	switch v.(type) {
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	default:
		return KindLeaf
	}
}

// IsPlainObject reports whether v is a plain record node.
func IsPlainObject(v any) bool {
	return Classify(v) == KindObject
}
