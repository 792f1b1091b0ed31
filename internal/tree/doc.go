// Package tree defines the state-tree value model shared by the store and
// the reducer composition engine.
//
// A state tree is arbitrary plain data. Only two node shapes are ever
// traversed: objects (map[string]any) and arrays ([]any). Every other value
// (time.Time, *regexp.Regexp, errors, channels, funcs, typed maps and
// slices, structs, byte slices) is an opaque leaf: it is copied by
// reference and never recursed into. Treating leaves as nested records
// corrupts them, so the classification lives in one auditable function
// (Classify) rather than scattered type switches.
//
// Identity, not equality: all change detection in this module is based on
// SameRef, which answers "is this the same value the producer handed out",
// never "do these values look alike". Reducers rely on this to keep
// unchanged subtrees referentially stable across state versions
// (structural sharing).
package tree
