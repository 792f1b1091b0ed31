package tree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for sub-reducer registration identity. The version suffix
// allows the hash scheme to change without colliding with old values.
const domainSubReducer = "strata/subreducer/v1"

// SubReducerHash computes the content hash that identifies a sub-reducer
// registration: the same reducer token registered at the same path always
// produces the same hash, which is what makes re-registration idempotent.
//
// Format: SHA256(domain || 0x00 || seg1 || 0x00 || ... || 0x00 || token).
// The null separators prevent boundary ambiguity between segments and the
// token. Path segments are NFC-normalized so visually identical paths hash
// identically regardless of their Unicode composition.
func SubReducerHash(path Path, token string) string {
	h := sha256.New()
	h.Write([]byte(domainSubReducer))
	h.Write([]byte{0x00})
	for _, seg := range path {
		h.Write([]byte(norm.NFC.String(seg)))
		h.Write([]byte{0x00})
	}
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// FuncToken derives a stable registration token from a function value.
// Two references to the same function produce the same token for the
// lifetime of the process, which is exactly the idempotency window a
// registration needs. The token has no meaning across processes.
func FuncToken(fn any) string {
	if fn == nil {
		return "nil"
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Sprintf("%T", fn)
	}
	return fmt.Sprintf("fn:%x", v.Pointer())
}
