package testutil

import "sync"

// SequenceSource is a scripted ir.RandomSource for tests.
//
// Float64 returns the scripted floats in order and then Fallback forever.
// IntN returns the scripted ints (reduced modulo n) in order and then 0.
// Calls are counted so tests can assert how much randomness a rule consumed.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceSource struct {
	mu       sync.Mutex
	floats   []float64
	ints     []int
	fallback float64

	floatCalls int
	intCalls   int
}

// NewSequenceSource creates a source that replays floats.
// Once they are used up Float64 returns 0, the value that makes every
// probabilistic attempt succeed.
func NewSequenceSource(floats ...float64) *SequenceSource {
	return &SequenceSource{floats: floats}
}

// NewConstantSource creates a source whose Float64 always returns f.
// A value close to 1 makes every attempt fail; 0 makes every attempt succeed.
func NewConstantSource(f float64) *SequenceSource {
	return &SequenceSource{fallback: f}
}

// WithInts scripts the values returned by IntN.
func (s *SequenceSource) WithInts(ints ...int) *SequenceSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints = ints
	return s
}

// WithFallback sets the value Float64 returns after the script runs out.
func (s *SequenceSource) WithFallback(f float64) *SequenceSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = f
	return s
}

// Float64 implements ir.RandomSource.
func (s *SequenceSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.floatCalls
	s.floatCalls++
	if i < len(s.floats) {
		return s.floats[i]
	}
	return s.fallback
}

// IntN implements ir.RandomSource.
func (s *SequenceSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.intCalls
	s.intCalls++
	if n <= 0 || i >= len(s.ints) {
		return 0
	}
	v := s.ints[i] % n
	if v < 0 {
		v += n
	}
	return v
}

// FloatCalls returns how many times Float64 has been called.
func (s *SequenceSource) FloatCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.floatCalls
}

// IntCalls returns how many times IntN has been called.
func (s *SequenceSource) IntCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intCalls
}
