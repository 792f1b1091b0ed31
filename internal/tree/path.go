package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a nested slot in a state tree as an ordered key sequence.
// Segments index objects by key; a segment that parses as a non-negative
// integer also indexes arrays.
type Path []string

// String renders the path in dot notation.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Child returns a new path extended by the given segments.
// The receiver is never mutated; callers may keep aliases safely.
func (p Path) Child(segments ...string) Path {
	out := make(Path, 0, len(p)+len(segments))
	out = append(out, p...)
	out = append(out, segments...)
	return out
}

// ParsePath normalizes the accepted selector path forms into a Path:
//
//   - nil          -> empty path (the whole tree)
//   - string       -> split on "." ("a.b.c")
//   - []string     -> copied as-is
//   - Path         -> copied as-is
//
// Normalization happens once, at construction time; nothing re-parses
// paths per state change.
func ParsePath(spec any) (Path, error) {
	switch v := spec.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return Path(strings.Split(v, ".")), nil
	case []string:
		out := make(Path, len(v))
		copy(out, v)
		return out, nil
	case Path:
		out := make(Path, len(v))
		copy(out, v)
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported path form %T (want string, []string, or tree.Path)", spec)
	}
}

// Get resolves path against state. The second return is false when any
// segment is absent (or addresses into a leaf), mirroring "undefined" from
// the selection contract; the first return is nil in that case.
func Get(state any, path Path) (any, bool) {
	node := state
	for _, seg := range path {
		switch n := node.(type) {
		case map[string]any:
			child, ok := n[seg]
			if !ok {
				return nil, false
			}
			node = child
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(n) {
				return nil, false
			}
			node = n[idx]
		default:
			return nil, false
		}
	}
	return node, true
}

// Set returns a state tree equal to state except that path now holds value.
//
// Only the spine of the path is re-allocated; every sibling branch keeps
// its original reference (structural sharing). If the slot already holds
// the identical value (SameRef), the input state is returned unchanged -
// no allocation happens anywhere in the tree.
//
// Missing intermediate nodes are created as objects. Writing through a
// leaf replaces the leaf with a fresh object, since leaves are opaque and
// must not be traversed.
func Set(state any, path Path, value any) any {
	if len(path) == 0 {
		return value
	}

	seg := path[0]
	switch node := state.(type) {
	case map[string]any:
		child, existed := node[seg]
		next := Set(child, path[1:], value)
		if existed && SameRef(child, next) {
			return state
		}
		out := make(map[string]any, len(node)+1)
		for k, v := range node {
			out[k] = v
		}
		out[seg] = next
		return out

	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(node) {
			// Out-of-range array writes degrade to object creation, same
			// as writing through a leaf.
			return map[string]any{seg: Set(nil, path[1:], value)}
		}
		next := Set(node[idx], path[1:], value)
		if SameRef(node[idx], next) {
			return state
		}
		out := make([]any, len(node))
		copy(out, node)
		out[idx] = next
		return out

	default:
		return map[string]any{seg: Set(nil, path[1:], value)}
	}
}
