package tree

import "reflect"

// SameRef reports whether a and b are the same value by identity.
//
// This is the referential-equality check used for memoization, for
// distinct-until-changed selection streams, and for deciding whether a
// reducer "changed" its slice:
//
//   - maps, slices, funcs, channels: same underlying pointer (for slices,
//     also the same length - two slices over one array with different
//     lengths are different values)
//   - pointers: same address
//   - nil: only equal to nil
//   - comparable scalars (string, int, bool, ...): ==
//   - non-comparable values of other kinds: never equal
//
// SameRef never panics, unlike == on interfaces holding maps or slices.
func SameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		if ra.IsNil() || rb.IsNil() {
			return ra.IsNil() && rb.IsNil()
		}
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	case reflect.Pointer:
		return ra.Pointer() == rb.Pointer()
	default:
		if !ra.Type().Comparable() {
			return false
		}
		return a == b
	}
}
