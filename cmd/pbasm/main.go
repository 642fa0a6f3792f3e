// Copyright (c) 2024 The pbasm Authors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/picobit/pbasm"
	"github.com/picobit/pbasm/config"
	"github.com/picobit/pbasm/primitive"
)

var log = logrus.New()

func parseFlags(flagset *flag.FlagSet, args []string) (
	inputPath, outputPath, configPath string, verbose bool, err error,
) {
	flagset.StringVar(&outputPath, "o", "", "Output Intel HEX file path (overrides pbasm.toml)")
	flagset.StringVar(&configPath, "config", "", "Path to pbasm.toml (default: search upward from cwd)")
	flagset.BoolVar(&verbose, "v", false, "Verbose logging")

	flagset.Usage = func() {
		_, _ = fmt.Fprint(flagset.Output(),
			"Usage: pbasm [flags] <program.json>\n\n",
			"Reads a JSON instruction-stream program and writes an Intel HEX file.\n",
			"Use - to read the program from stdin\n\n",
			"\nFlags:\n",
		)
		flagset.PrintDefaults()
	}

	if err = flagset.Parse(args); err != nil {
		return
	}

	if flagset.NArg() != 1 {
		err = fmt.Errorf("expected exactly one program file argument")
		return
	}
	inputPath = flagset.Arg(0)
	return
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func run(args []string) error {
	inputPath, outputPath, configPath, verbose, err := parseFlags(flag.CommandLine, args)
	if err != nil {
		return err
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	var cfg config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = cfg.Output.HexPath
	}

	log.WithField("path", inputPath).Debug("reading program")
	data, err := readInput(inputPath)
	if err != nil {
		return fmt.Errorf("pbasm: %w", err)
	}

	program, err := decodeProgram(data)
	if err != nil {
		return fmt.Errorf("pbasm: %w", err)
	}
	log.WithField("instructions", len(program)).Debug("decoded program")

	stats := pbasm.NewStats()
	log.Debug("assembling")
	hexPath, err := pbasm.Assemble(program, outputPath, pbasm.Options{
		Primitives: primitive.Default(),
		Stats:      stats,
		Layout: pbasm.Layout{
			MinROMEncoding: cfg.ROM.MinROMEncoding,
			MinRAMEncoding: cfg.ROM.MinRAMEncoding,
			CodeStart:      cfg.ROM.CodeStart,
		},
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"hex":    hexPath,
		"counts": stats.Counts(),
	}).Info("assembled")
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
