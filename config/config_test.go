// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pbasm.toml")
	toml := `
[rom]
min_rom_encoding = 300
min_ram_encoding = 2000
code_start = 32768

[output]
hex_path = "custom.hex"
`
	require.NoError(t, os.WriteFile(path, []byte(toml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 300, cfg.ROM.MinROMEncoding)
	require.Equal(t, 2000, cfg.ROM.MinRAMEncoding)
	require.Equal(t, 32768, cfg.ROM.CodeStart)
	require.Equal(t, "custom.hex", cfg.Output.HexPath)
}

func TestFindAndLoadWalksUpToRootWithoutError(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := FindAndLoad(nested)
	require.NoError(t, err)
	require.Equal(t, Default().Output.HexPath, cfg.Output.HexPath)
}

func TestFindAndLoadFindsAncestorConfig(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "pbasm.toml"),
		[]byte("[output]\nhex_path = \"root.hex\"\n"),
		0o644,
	))

	cfg, err := FindAndLoad(nested)
	require.NoError(t, err)
	require.Equal(t, "root.hex", cfg.Output.HexPath)
}
