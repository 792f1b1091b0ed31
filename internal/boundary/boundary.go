// Package boundary implements the two state-transfer edges of the
// container: a serialization codec for moving a state tree across a
// process boundary, and a stash for carrying state across an in-process
// reload.
//
// Design rule for both edges: malformed persisted state is recovered
// locally by falling back to a supplied default, never surfaced as an
// error to the caller. State at the edge is untrusted; the running
// application must not fail because of it.
package boundary

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Codec moves a state tree across a process boundary as bytes.
type Codec interface {
	Serialize(state any) ([]byte, error)
	Deserialize(raw []byte) (any, error)
}

// JSONCodec is the default Codec: standard JSON encoding. Round-tripping
// through it normalizes the tree into map[string]any / []any / float64
// leaves, which is exactly the shape reducers work with.
type JSONCodec struct{}

func (JSONCodec) Serialize(state any) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("boundary: serialize state: %w", err)
	}
	return data, nil
}

func (JSONCodec) Deserialize(raw []byte) (any, error) {
	var state any
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("boundary: deserialize state: %w", err)
	}
	return state, nil
}

// DeserializeOr decodes raw with the codec and returns fallback when
// decoding fails. It never returns an error; the failure is logged at
// warn level and the caller proceeds with the fallback.
func DeserializeOr(codec Codec, raw []byte, fallback any, logger *slog.Logger) any {
	if codec == nil {
		codec = JSONCodec{}
	}
	state, err := codec.Deserialize(raw)
	if err != nil {
		if logger != nil {
			logger.Warn("persisted state rejected, using fallback", "error", err)
		}
		return fallback
	}
	return state
}

// Stash holds state across an in-process reload, keyed by slot name.
// Restore consumes: a saved value is valid exactly once. A reload that
// restores and then crashes before saving again starts fresh, which is
// the safe direction for a hot-swap boundary.
type Stash struct {
	mu    sync.Mutex
	slots map[string]any
}

// NewStash creates an empty stash.
func NewStash() *Stash {
	return &Stash{slots: make(map[string]any)}
}

// Save stores state under key, replacing any previous value.
func (s *Stash) Save(key string, state any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = state
}

// Restore removes and returns the value saved under key. The second
// return is false when nothing was saved or the value was already
// consumed.
func (s *Stash) Restore(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.slots[key]
	if !ok {
		return nil, false
	}
	delete(s.slots, key)
	return state, true
}

// RestoreOr restores key, falling back when nothing is stashed.
func (s *Stash) RestoreOr(key string, fallback any) any {
	if state, ok := s.Restore(key); ok {
		return state
	}
	return fallback
}

// Len reports the number of stashed slots.
func (s *Stash) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

var defaultStash = NewStash()

// Default returns the process-wide stash.
func Default() *Stash {
	return defaultStash
}

// Reset discards the process-wide stash contents. Test isolation hook.
func Reset() {
	defaultStash.mu.Lock()
	defer defaultStash.mu.Unlock()
	defaultStash.slots = make(map[string]any)
}
