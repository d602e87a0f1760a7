// braillecon
// Copyright (c) 2026 The braillecon Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of braillecon.
//
// braillecon is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// braillecon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with braillecon.  If not, see <http://www.gnu.org/licenses/>.

// braillecon mirrors console output onto a serial braille display and
// lets the user browse the screen with navigation keys.
//
// This binary reads console output from stdin and maps it onto a
// single-row console; OS integrations replace stdinConsole and the
// stdin pump with the host VT and keyboard event subsystems.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/braillecon/braillecon/pkg/braille"
	"github.com/braillecon/braillecon/pkg/config"
	"github.com/braillecon/braillecon/pkg/console"
	"github.com/braillecon/braillecon/pkg/device"
	"github.com/braillecon/braillecon/pkg/helpers"
	"github.com/braillecon/braillecon/pkg/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// stdinConsole is the minimal console collaborator for the standalone
// binary: one active row, no lock-key reporting.
type stdinConsole struct{}

func (stdinConsole) Cursor() (x, y int) { return 0, 0 }

func (stdinConsole) Size() (cols, rows int) { return 80, 1 }

func (stdinConsole) ActiveRow() int { return 0 }

func (stdinConsole) Refresh(x, y, w, h int) {
	log.Debug().Ints("region", []int{x, y, w, h}).Msg("refresh requested")
}

func (stdinConsole) LockState(console.Lock) (on, ok bool) { return false, false }

// cliFlags holds the parsed command line options.
type cliFlags struct {
	configDir  string
	devicePath string
	foreground bool
	sound      bool
}

func parseFlags(args []string) (cliFlags, error) {
	var flags cliFlags
	fs := flag.NewFlagSet("braillecon", flag.ContinueOnError)
	fs.StringVar(
		&flags.configDir,
		"config",
		"",
		"path to config directory",
	)
	fs.StringVar(
		&flags.devicePath,
		"device",
		"",
		"serial port of the braille display",
	)
	fs.BoolVar(
		&flags.foreground,
		"foreground",
		false,
		"log to stderr in addition to the log file",
	)
	fs.BoolVar(
		&flags.sound,
		"sound",
		false,
		"enable audible feedback",
	)
	if err := fs.Parse(args); err != nil {
		return cliFlags{}, fmt.Errorf("failed to parse flags: %w", err)
	}
	return flags, nil
}

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	dir := flags.configDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to find config directory: %w", err)
		}
		dir = filepath.Join(base, "braillecon")
	}

	var logWriters []io.Writer
	if flags.foreground {
		logWriters = []io.Writer{os.Stderr}
	}
	if err := helpers.InitLogging(filepath.Join(dir, "logs"), logWriters); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if flags.sound {
		cfg.SetSoundEnabled(true)
	}
	if flags.devicePath != "" {
		cfg.SetDevicePath(flags.devicePath)
	}

	path := cfg.DevicePath()
	if path == "" {
		return errors.New("no braille display device configured (use -device)")
	}

	svc := service.New(cfg, stdinConsole{})
	dev := device.New(path)
	if err := svc.Attach(dev, nil); err != nil {
		return fmt.Errorf("failed to attach display: %w", err)
	}
	defer func() {
		if err := svc.Detach(dev); err != nil {
			log.Warn().Err(err).Msg("failed to detach display")
		}
	}()

	log.Info().Str("device", path).Msg("braillecon started")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	readErr := make(chan error, 1)
	go func() {
		readErr <- pumpStdin(svc)
	}()

	select {
	case sig := <-sigs:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		return nil
	case err := <-readErr:
		if err != nil {
			return fmt.Errorf("stdin read failed: %w", err)
		}
		return nil
	}
}

// pumpStdin feeds console output from stdin into the engine until EOF.
func pumpStdin(svc *service.Service) error {
	reader := bufio.NewReader(os.Stdin)
	for {
		c, _, err := reader.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read rune: %w", err)
		}
		svc.Post(braille.CharacterWrite{Rune: c, Row: 0})
	}
}
