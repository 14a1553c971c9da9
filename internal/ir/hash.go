package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests.
// Version suffix enables future algorithm migration.
const (
	DomainSnapshot = "tollsim/snapshot/v1"
	DomainConfig   = "tollsim/config/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotDigest computes a content digest of a committed grid.
// Two engines driven by the same config, layout and random sequence produce
// identical digests at every tick boundary.
func SnapshotDigest(s Snapshot) (string, error) {
	cells := []any{}
	for _, v := range s.Vehicles() {
		cells = append(cells, map[string]any{
			"lane":     v.Lane,
			"pos":      v.Position,
			"id":       int64(v.ID),
			"class":    string(v.Class),
			"teleport": v.IsTeleporting,
			"booth":    v.AssignedBoothLane,
		})
	}
	doc := map[string]any{
		"tick":  s.Tick,
		"lanes": s.Lanes,
		"cols":  s.Cols,
		"cells": cells,
	}

	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("SnapshotDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// ConfigHash computes a digest of the resolved parameters.
// Defaults are applied first, so a Config with nil optional fields hashes
// equal to one that spells the defaults out.
func ConfigHash(cfg Config) (string, error) {
	p := cfg.Resolve()
	doc := map[string]any{
		"lanes":                p.Lanes,
		"booths":               p.Booths,
		"lambda":               FormatFloat(p.Lambda),
		"accel":                FormatFloat(p.Accel),
		"mu":                   FormatFloat(p.Mu),
		"service_mode":         string(p.ServiceMode),
		"adaptive":             p.Adaptive,
		"a_min":                FormatFloat(p.AMin),
		"a_max":                FormatFloat(p.AMax),
		"d0":                   FormatFloat(p.D0),
		"beta":                 FormatFloat(p.Beta),
		"lane_change_cooldown": p.LaneChangeCooldown,
		"sigma":                FormatFloat(p.Sigma),
		"alpha":                FormatFloat(p.Alpha),
		"p_min":                FormatFloat(p.PMin),
		"etc_ratio":            FormatFloat(p.ETCRatio),
	}

	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("ConfigHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// MustSnapshotDigest is like SnapshotDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSnapshotDigest(s Snapshot) string {
	d, err := SnapshotDigest(s)
	if err != nil {
		panic(err)
	}
	return d
}
