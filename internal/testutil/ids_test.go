package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator_Sequence(t *testing.T) {
	gen := NewFixedIDGenerator("scenario")
	assert.Equal(t, "scenario-0001", gen.Generate())
	assert.Equal(t, "scenario-0002", gen.Generate())
}

func TestFixedIDGenerator_DefaultPrefix(t *testing.T) {
	gen := NewFixedIDGenerator("")
	assert.Equal(t, "run-0001", gen.Generate())
}

func TestFixedIDGenerator_Reproducible(t *testing.T) {
	a := NewFixedIDGenerator("x")
	b := NewFixedIDGenerator("x")
	for range 5 {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}
