// Package canonjson renders values as deterministic JSON for golden-file
// comparison and content hashing of state snapshots.
//
// Determinism rules, following RFC 8785:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes).
//  2. No HTML escaping (< > & appear literally).
//  3. Strings NFC normalized.
//  4. Integral floats render without a fraction part.
//
// Unlike a hashing-only canonical form, null and numbers are permitted:
// state trees legitimately contain both.
package canonjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Marshal renders v as canonical JSON. v is first normalized through a
// standard JSON round trip, so any json.Marshal-able value works,
// including structs with tags.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonjson: normalize value: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("canonjson: reparse value: %w", err)
	}

	var buf bytes.Buffer
	if err := render(&buf, tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is Marshal followed by standard JSON re-indentation.
// Key order and string normalization are preserved; only whitespace is
// added. Golden files use this form for reviewable diffs.
func MarshalIndent(v any) ([]byte, error) {
	compact, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("canonjson: indent: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func render(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case float64:
		return renderNumber(buf, val)
	case string:
		return renderString(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := render(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		buf.WriteByte('{')
		for i, k := range sortedKeys(val) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := renderString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := render(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("canonjson: unsupported type %T after normalization", v)
	}
	return nil
}

func renderNumber(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("canonjson: non-finite number %v", f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

// renderString writes a JSON string with NFC normalization and without
// HTML escaping. Only control characters, backslash, and quote are
// escaped.
func renderString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return fmt.Errorf("canonjson: encode string: %w", err)
	}
	out := tmp.Bytes()
	// json.Encoder appends a newline.
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	buf.Write(out)
	return nil
}

// sortedKeys returns map keys in UTF-16 code unit order. Go's native
// string comparison orders by UTF-8 bytes, which diverges above the BMP.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
