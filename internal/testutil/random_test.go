package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceSource_ReplaysThenFallsBack(t *testing.T) {
	src := NewSequenceSource(0.25, 0.75).WithFallback(0.5)

	assert.Equal(t, 0.25, src.Float64())
	assert.Equal(t, 0.75, src.Float64())
	assert.Equal(t, 0.5, src.Float64())
	assert.Equal(t, 0.5, src.Float64())
	assert.Equal(t, 4, src.FloatCalls())
}

func TestSequenceSource_DefaultFallbackIsZero(t *testing.T) {
	src := NewSequenceSource()
	assert.Equal(t, 0.0, src.Float64())
}

func TestSequenceSource_IntNReducesModulo(t *testing.T) {
	src := NewSequenceSource().WithInts(5, -1, 2)

	assert.Equal(t, 1, src.IntN(2))
	assert.Equal(t, 2, src.IntN(3))
	assert.Equal(t, 2, src.IntN(4))
	assert.Equal(t, 0, src.IntN(4), "exhausted script returns 0")
	assert.Equal(t, 4, src.IntCalls())
}

func TestConstantSource(t *testing.T) {
	src := NewConstantSource(0.99)
	for range 10 {
		assert.Equal(t, 0.99, src.Float64())
	}
}

func TestSequenceSource_ThreadSafe(t *testing.T) {
	src := NewConstantSource(0.1)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				src.Float64()
				src.IntN(3)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, src.FloatCalls())
	assert.Equal(t, 1000, src.IntCalls())
}
