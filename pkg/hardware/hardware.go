// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package hardware describes the resources of the accelerator targeted by tiling: number of
// parallel execution units, scratchpad capacity, cache-line (alignment) and vector register sizes.
//
// Besides the raw resources, a Profile carries the hardware-calibrated thresholds used by the tiling
// heuristics. Their values are tuned per hardware generation, and are not meant to be portable: zero
// values are replaced by defaults in WithDefaults.
package hardware

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Profile of the target hardware, treated as read-only input by tiling.
type Profile struct {
	// Name of the profile, for diagnostics only.
	Name string

	// NumUnits is the number of parallel execution units (cores) available to one operator.
	NumUnits int

	// ScratchpadBytes is the capacity of the fast on-core memory available to one unit.
	ScratchpadBytes int

	// CacheLineBytes is the data-transfer alignment unit.
	CacheLineBytes int

	// VectorBytes is the width of one vector register.
	VectorBytes int

	// MinResidentBroadcastBytes is the minimum byte size of a broadcast innermost axis for which
	// expanding it in the scratchpad is worthwhile.
	MinResidentBroadcastBytes int

	// SmallInnermostBytes is the byte size under which a carried innermost axis is considered
	// small. Defaults to CacheLineBytes.
	SmallInnermostBytes int

	// SmallSecondLastGate is the number of elements of the second-to-last axis under which a small
	// innermost axis favors strided multi-dimensional transfers.
	SmallSecondLastGate int

	// MaxTensorElements is the absolute maximum number of elements resident per iteration, to
	// avoid index overflows for narrow element types.
	MaxTensorElements int

	// MaxTransferDims is the maximum number of dimensions a "full" multi-dimensional transfer
	// handles. A regular one handles one less.
	MaxTransferDims int

	// SyncWorkspaceBytes is the size of the auxiliary workspace used for cross-unit synchronization.
	// It doesn't depend on the shapes.
	SyncWorkspaceBytes int
}

// Default values of the calibrated thresholds.
const (
	DefaultMinResidentBroadcastBytes = 32
	DefaultSmallSecondLastGate       = 64
	DefaultMaxTensorElements         = 1 << 17
	DefaultMaxTransferDims           = 5
	DefaultSyncWorkspaceBytes        = 16 * 1024 * 1024
)

// WithDefaults returns a copy of the profile with the zero thresholds replaced by their defaults.
// The hardware resources themselves are never defaulted.
func (p Profile) WithDefaults() Profile {
	if p.MinResidentBroadcastBytes == 0 {
		p.MinResidentBroadcastBytes = DefaultMinResidentBroadcastBytes
	}
	if p.SmallInnermostBytes == 0 {
		p.SmallInnermostBytes = p.CacheLineBytes
	}
	if p.SmallSecondLastGate == 0 {
		p.SmallSecondLastGate = DefaultSmallSecondLastGate
	}
	if p.MaxTensorElements == 0 {
		p.MaxTensorElements = DefaultMaxTensorElements
	}
	if p.MaxTransferDims == 0 {
		p.MaxTransferDims = DefaultMaxTransferDims
	}
	if p.SyncWorkspaceBytes == 0 {
		p.SyncWorkspaceBytes = DefaultSyncWorkspaceBytes
	}
	return p
}

// Validate returns an error if any of the hardware resources or thresholds is not strictly positive.
func (p Profile) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"units", p.NumUnits},
		{"scratchpad", p.ScratchpadBytes},
		{"cache_line", p.CacheLineBytes},
		{"vector", p.VectorBytes},
		{"min_resident_broadcast", p.MinResidentBroadcastBytes},
		{"small_innermost", p.SmallInnermostBytes},
		{"small_second_last", p.SmallSecondLastGate},
		{"max_tensor_elements", p.MaxTensorElements},
		{"max_transfer_dims", p.MaxTransferDims},
		{"sync_workspace", p.SyncWorkspaceBytes},
	}
	for _, field := range fields {
		if field.value <= 0 {
			return errors.Errorf("hardware profile %q: %s must be > 0, got %d", p.Name, field.name, field.value)
		}
	}
	if p.MaxTransferDims < 2 {
		return errors.Errorf("hardware profile %q: max_transfer_dims must be >= 2, got %d", p.Name, p.MaxTransferDims)
	}
	return nil
}

// String implements fmt.Stringer.
func (p Profile) String() string {
	return fmt.Sprintf("%s{units=%d, scratchpad=%s, cache_line=%dB, vector=%dB}",
		p.Name, p.NumUnits, humanize.IBytes(uint64(max(p.ScratchpadBytes, 0))), p.CacheLineBytes, p.VectorBytes)
}

// presets of well known configurations, keyed by their lower-case name.
var presets = map[string]Profile{
	"default": {
		Name:            "default",
		NumUnits:        64,
		ScratchpadBytes: 245760,
		CacheLineBytes:  32,
		VectorBytes:     256,
	},
	"small": {
		Name:            "small",
		NumUnits:        8,
		ScratchpadBytes: 64 * 1024,
		CacheLineBytes:  32,
		VectorBytes:     128,
	},
	"large": {
		Name:            "large",
		NumUnits:        48,
		ScratchpadBytes: 192 * 1024,
		CacheLineBytes:  32,
		VectorBytes:     256,
	},
}

// Default returns the "default" preset with thresholds filled in.
func Default() Profile {
	return presets["default"].WithDefaults()
}

// Names returns the sorted names of the presets, plus "host".
func Names() []string {
	names := make([]string, 0, len(presets)+1)
	for name := range presets {
		names = append(names, name)
	}
	names = append(names, HostProfileName)
	slices.Sort(names)
	return names
}

// Lookup returns the profile with the given name. Its thresholds are left unset, so that they
// follow settings overrides (see ParseSettings): call WithDefaults once the profile is final.
// The name "host" returns the profile of the machine running the program, see Host.
func Lookup(name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == HostProfileName {
		return Host(), nil
	}
	p, found := presets[name]
	if !found {
		return Profile{}, errors.Errorf("unknown hardware profile %q, known profiles are %q", name, Names())
	}
	return p, nil
}
