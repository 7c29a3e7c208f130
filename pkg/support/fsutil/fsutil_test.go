// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"os"
	"os/user"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceTildeInDir(t *testing.T) {
	usr, err := user.Current()
	require.NoError(t, err)

	got, err := ReplaceTildeInDir("~/tiling/hw.txt")
	require.NoError(t, err)
	assert.Equal(t, path.Join(usr.HomeDir, "tiling/hw.txt"), got)

	got, err = ReplaceTildeInDir("/tmp/hw.txt")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hw.txt", got)

	_, err = ReplaceTildeInDir("~user-that-does-not-exist/hw.txt")
	require.Error(t, err)
}

func TestReadSettingsLines(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "settings.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("# Comment\n units=4 \n\nvector=64;cache_line=32\n"), 0o644))
	lines, err := ReadSettingsLines(filePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"units=4", "vector=64;cache_line=32"}, lines)

	_, err = ReadSettingsLines(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
