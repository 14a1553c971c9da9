package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotDigest_Deterministic(t *testing.T) {
	build := func() Snapshot {
		s := NewSnapshot(7, 2, 10)
		s.Put(0, 3, CellView{ID: 1, Class: ClassETC, AssignedBoothLane: 0})
		s.Put(1, 9, CellView{ID: 2, Class: ClassManual, IsTeleporting: true, AssignedBoothLane: 1})
		return s
	}

	d1, err := SnapshotDigest(build())
	require.NoError(t, err)
	d2, err := SnapshotDigest(build())
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64, "hex-encoded SHA-256")
}

func TestSnapshotDigest_SensitiveToPlacement(t *testing.T) {
	a := NewSnapshot(1, 2, 10)
	a.Put(0, 3, CellView{ID: 1, Class: ClassETC})

	b := NewSnapshot(1, 2, 10)
	b.Put(1, 3, CellView{ID: 1, Class: ClassETC})

	assert.NotEqual(t, MustSnapshotDigest(a), MustSnapshotDigest(b))
}

func TestSnapshotDigest_SensitiveToTick(t *testing.T) {
	a := NewSnapshot(1, 1, 5)
	b := NewSnapshot(2, 1, 5)
	assert.NotEqual(t, MustSnapshotDigest(a), MustSnapshotDigest(b))
}

func TestConfigHash_DefaultsResolvedFirst(t *testing.T) {
	implicit := Config{Lanes: 3, Booths: 6, Lambda: 0.6, Accel: 0.9, Mu: 15, PMin: 0.1}
	explicit := implicit
	explicit.Sigma = Float(DefaultSigma)
	explicit.Alpha = Float(DefaultAlpha)
	explicit.ETCRatio = Float(DefaultETCRatio)
	explicit.LaneChangeCooldown = Int(DefaultLaneChangeCooldown)
	explicit.ServiceMode = ServiceFixed

	h1, err := ConfigHash(implicit)
	require.NoError(t, err)
	h2, err := ConfigHash(explicit)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	explicit.Sigma = Float(0.5)
	h3, err := ConfigHash(explicit)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
