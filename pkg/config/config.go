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

// Package config manages the braillecon TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/braillecon/braillecon/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	SchemaVersion = 1
	CfgEnv        = "BRAILLECON_CFG"
	CfgFile       = "config.toml"

	ParityNone = "none"
	ParityOdd  = "odd"
	ParityEven = "even"
)

type Values struct {
	Device       Device  `toml:"device,omitempty"`
	Display      Display `toml:"display,omitempty"`
	Sound        Sound   `toml:"sound"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

// Device holds the serial line settings for the braille display.
type Device struct {
	Path     string `toml:"path,omitempty"`
	Parity   string `toml:"parity,omitempty"`
	BaudRate int    `toml:"baud_rate,omitempty"`
	DataBits int    `toml:"data_bits,omitempty"`
	StopBits int    `toml:"stop_bits,omitempty"`
}

type Display struct {
	Width int `toml:"width,omitempty"`
}

type Sound struct {
	Enabled bool `toml:"enabled"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Device: Device{
		BaudRate: 57600,
		DataBits: 8,
		Parity:   ParityNone,
		StopBits: 1,
	},
	Display: Display{
		Width: 40,
	},
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file from configDir, creating it with defaults
// if it doesn't exist. The BRAILLECON_CFG env var overrides the file path.
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if _, err := os.Stat(c.cfgPath); err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	c.vals = newVals

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}

func (c *Instance) SoundEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Sound.Enabled
}

func (c *Instance) SetSoundEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Sound.Enabled = enabled
}

func (c *Instance) DevicePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Device.Path
}

func (c *Instance) SetDevicePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Device.Path = path
}

// Width returns the number of cells on the braille display line.
func (c *Instance) Width() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Display.Width <= 0 {
		return BaseDefaults.Display.Width
	}
	return c.vals.Display.Width
}

// SerialMode converts the device settings to a serial.Mode, falling back
// to defaults for unset fields.
func (c *Instance) SerialMode() (*serial.Mode, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dev := c.vals.Device
	if dev.BaudRate <= 0 {
		dev.BaudRate = BaseDefaults.Device.BaudRate
	}
	if dev.DataBits <= 0 {
		dev.DataBits = BaseDefaults.Device.DataBits
	}
	if dev.Parity == "" {
		dev.Parity = BaseDefaults.Device.Parity
	}

	var parity serial.Parity
	switch dev.Parity {
	case ParityNone:
		parity = serial.NoParity
	case ParityOdd:
		parity = serial.OddParity
	case ParityEven:
		parity = serial.EvenParity
	default:
		return nil, fmt.Errorf("unknown parity setting: %q", dev.Parity)
	}

	var stopBits serial.StopBits
	switch dev.StopBits {
	case 0, 1:
		stopBits = serial.OneStopBit
	case 2:
		stopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unknown stop bits setting: %d", dev.StopBits)
	}

	return &serial.Mode{
		BaudRate: dev.BaudRate,
		DataBits: dev.DataBits,
		Parity:   parity,
		StopBits: stopBits,
	}, nil
}
