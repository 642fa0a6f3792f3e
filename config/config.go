// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package config loads pbasm.toml, the assembler driver's optional
// configuration file. It is grounded on chazu-maggie/manifest's
// BurntSushi/toml loader, adapted from a project manifest to a flat set of
// VM-build tunables: nothing in this module needs dependency or source-tree
// bookkeeping, only the ROM/RAM boundary overrides and default paths a
// front-end targeting a non-default PicoBit VM build would want without
// repeating them on every CLI invocation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the optional, flat tuning surface for the pbasm driver. Flags
// passed on the command line always override a value loaded here, matching
// ozanh-ugo/cmd/ugo/main.go's override order between defaults and explicit
// flags.
type Config struct {
	ROM    ROMConfig `toml:"rom"`
	Output Output    `toml:"output"`
}

// ROMConfig overrides the address constants direct.go otherwise hard-codes,
// for VM builds whose ROM/RAM layout differs from the default.
type ROMConfig struct {
	MinROMEncoding int `toml:"min_rom_encoding"`
	MinRAMEncoding int `toml:"min_ram_encoding"`
	CodeStart      int `toml:"code_start"`
}

// Output configures the driver's default file placement.
type Output struct {
	HexPath string `toml:"hex_path"`
}

// Default returns the configuration pbasm uses when no pbasm.toml is found,
// matching the constants in direct.go.
func Default() Config {
	return Config{
		ROM: ROMConfig{
			MinROMEncoding: 261,
			MinRAMEncoding: 1280,
			CodeStart:      0x8000,
		},
		Output: Output{
			HexPath: "a.hex",
		},
	}
}

// Load reads and parses path. A missing file is not an error: Load returns
// Default() so an absent pbasm.toml is simply "use the built-in build".
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// FindAndLoad walks up from startDir looking for pbasm.toml, the way
// chazu-maggie's FindAndLoad walks up for maggie.toml. It returns Default()
// with no error if none is found anywhere up to the filesystem root.
func FindAndLoad(startDir string) (Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Default(), err
	}

	for {
		path := filepath.Join(dir, "pbasm.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
