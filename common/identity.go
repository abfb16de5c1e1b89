package common

import (
	"math/rand"
	"sync"
)

// IdentityPool is an immutable candidate list rotated via random selection.
// The rand source is guarded internally, so a single pool can serve
// concurrent requests without contention on rotation state.
type IdentityPool struct {
	candidates []string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewIdentityPool copies candidates so later config mutations cannot leak in.
func NewIdentityPool(candidates []string, rng *rand.Rand) *IdentityPool {
	cp := make([]string, len(candidates))
	copy(cp, candidates)
	return &IdentityPool{candidates: cp, rng: rng}
}

// Pick returns a random candidate, or "" when the pool is empty.
func (p *IdentityPool) Pick() string {
	if len(p.candidates) == 0 {
		return ""
	}
	p.mu.Lock()
	i := p.rng.Intn(len(p.candidates))
	p.mu.Unlock()
	return p.candidates[i]
}

// Shuffled returns the candidates in a fresh random order. The receiver's
// slice is left untouched.
func (p *IdentityPool) Shuffled() []string {
	out := make([]string, len(p.candidates))
	copy(out, p.candidates)
	p.mu.Lock()
	p.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	p.mu.Unlock()
	return out
}

// Empty reports whether the pool has no candidates.
func (p *IdentityPool) Empty() bool {
	return len(p.candidates) == 0
}
