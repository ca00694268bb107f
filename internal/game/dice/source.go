package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource is a deterministic PCG-backed Source for replays and tests.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source; equal seeds yield equal sequences.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a deterministic int in [0, n).
//
// Precondition: n > 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Fixed replays vals in order and then repeats the last value. Each value is
// reduced modulo n. It is intended for scripted scenarios.
type Fixed struct {
	mu   sync.Mutex
	vals []int
	pos  int
}

// NewFixed returns a Source that yields vals in order.
//
// Precondition: len(vals) > 0.
func NewFixed(vals ...int) *Fixed {
	return &Fixed{vals: vals}
}

// Intn returns the next scripted value modulo n.
func (f *Fixed) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.vals[f.pos]
	if f.pos < len(f.vals)-1 {
		f.pos++
	}
	return ((v % n) + n) % n
}
