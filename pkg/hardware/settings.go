// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/tiling/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// settingFields maps a setting key to the profile field it sets, and whether it's a byte size
// (parsed with humanize, so "240KiB" is accepted).
var settingFields = map[string]struct {
	field   func(p *Profile) *int
	isBytes bool
}{
	"units":                  {func(p *Profile) *int { return &p.NumUnits }, false},
	"scratchpad":             {func(p *Profile) *int { return &p.ScratchpadBytes }, true},
	"cache_line":             {func(p *Profile) *int { return &p.CacheLineBytes }, true},
	"vector":                 {func(p *Profile) *int { return &p.VectorBytes }, true},
	"min_resident_broadcast": {func(p *Profile) *int { return &p.MinResidentBroadcastBytes }, true},
	"small_innermost":        {func(p *Profile) *int { return &p.SmallInnermostBytes }, true},
	"small_second_last":      {func(p *Profile) *int { return &p.SmallSecondLastGate }, false},
	"max_tensor_elements":    {func(p *Profile) *int { return &p.MaxTensorElements }, false},
	"max_transfer_dims":      {func(p *Profile) *int { return &p.MaxTransferDims }, false},
	"sync_workspace":         {func(p *Profile) *int { return &p.SyncWorkspaceBytes }, true},
}

// ParseSettings overrides fields of the profile with a list of settings separated by ";".
// Each setting has the form "<key>=<value>", e.g.: "units=48;scratchpad=192KiB".
//
// A setting of the form "file:<path>" reads settings from the file, one or more per line; lines
// starting with "#" are comments.
//
// It returns the modified profile: the original is not changed.
func ParseSettings(p Profile, settings string) (Profile, error) {
	var err error
	for _, setting := range strings.Split(settings, ";") {
		p, err = parseSetting(p, strings.TrimSpace(setting))
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func parseSetting(p Profile, setting string) (Profile, error) {
	if setting == "" {
		return p, nil
	}
	if strings.HasPrefix(setting, "file:") {
		filePath := strings.TrimPrefix(setting, "file:")
		lines, err := fsutil.ReadSettingsLines(filePath)
		if err != nil {
			return p, errors.WithMessage(err, "hardware settings")
		}
		for _, line := range lines {
			p, err = ParseSettings(p, line)
			if err != nil {
				return p, errors.WithMessagef(err, "in file %q", filePath)
			}
		}
		return p, nil
	}

	parts := strings.Split(setting, "=")
	if len(parts) != 2 {
		return p, errors.Errorf("can't parse hardware setting %q: each setting requires the format \"<key>=<value>\"",
			setting)
	}
	key, valueStr := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if key == "name" {
		p.Name = valueStr
		return p, nil
	}
	desc, found := settingFields[key]
	if !found {
		return p, errors.Errorf("unknown hardware setting %q in %q", key, setting)
	}
	var value int
	if desc.isBytes {
		numBytes, err := humanize.ParseBytes(valueStr)
		if err != nil {
			return p, errors.Wrapf(err, "failed to parse byte size for hardware setting %q", setting)
		}
		if numBytes > math.MaxInt {
			return p, errors.Errorf("byte size %s of hardware setting %q overflows", humanize.Bytes(numBytes), setting)
		}
		value = int(numBytes)
	} else {
		v, err := strconv.Atoi(strings.ReplaceAll(valueStr, "_", ""))
		if err != nil {
			return p, errors.Wrapf(err, "failed to parse value for hardware setting %q", setting)
		}
		value = v
	}
	*desc.field(&p) = value
	return p, nil
}
