package effects

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces activation tokens for log correlation.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 activation tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens sort
// by activation time, which helps when reading interleaved effect logs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined activation tokens for testing.
//
// This enables deterministic test execution: tests provide a known
// sequence of tokens and can assert exact log or trace output.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal
// mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
// Once the sequence is exhausted, Generate falls back to "activation-N"
// with N continuing to increment.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx < len(g.tokens) {
		token := g.tokens[g.idx]
		g.idx++
		return token
	}
	g.idx++
	return "activation-" + strconv.Itoa(g.idx)
}
