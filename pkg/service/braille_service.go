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

// Package service composes the engine, the display device, the tone
// player and the host console, and owns device registration.
package service

import (
	"errors"
	"fmt"

	"github.com/braillecon/braillecon/pkg/braille"
	"github.com/braillecon/braillecon/pkg/config"
	"github.com/braillecon/braillecon/pkg/console"
	"github.com/braillecon/braillecon/pkg/device"
	"github.com/braillecon/braillecon/pkg/helpers/syncutil"
	"github.com/braillecon/braillecon/pkg/tones"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

var (
	// ErrAlreadyAttached is returned when a device registration is
	// attempted while another device is active. The first device stays
	// active.
	ErrAlreadyAttached = errors.New("a braille display is already attached")
	// ErrDetachMismatch is returned when detach is requested for a
	// device that is not the currently active one. No state changes.
	ErrDetachMismatch = errors.New("device is not the attached display")
)

// Service routes host events to the engine and enforces that at most
// one braille display is attached at a time.
type Service struct {
	cfg     *config.Instance
	console console.Console
	player  tones.Player
	active  *device.Device
	disp    *braille.Dispatcher
	mu      syncutil.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithPlayer overrides the tone player, bypassing the sound config flag.
func WithPlayer(p tones.Player) Option {
	return func(s *Service) { s.player = p }
}

// New builds a Service. The tone player is chosen from the sound config
// flag unless overridden.
func New(cfg *config.Instance, c console.Console, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		console: c,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.player == nil {
		if cfg.SoundEnabled() {
			s.player = tones.NewMalgoPlayer()
		} else {
			s.player = tones.NopPlayer{}
		}
	}
	return s
}

// Attach opens dev and makes it the active display. A nil mode applies
// the configured serial settings (57600 8N1 by default). Registration
// is atomic: on transport setup failure nothing is installed and the
// error is returned.
func (s *Service) Attach(dev *device.Device, mode *serial.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return ErrAlreadyAttached
	}

	if mode == nil {
		m, err := s.cfg.SerialMode()
		if err != nil {
			return fmt.Errorf("invalid transport configuration: %w", err)
		}
		mode = m
	}

	if err := dev.Open(mode); err != nil {
		return fmt.Errorf("transport setup failed: %w", err)
	}

	s.active = dev
	s.disp = braille.NewDispatcher(s.cfg.Width(), s.console, s.player, dev)
	s.disp.Reset()

	log.Info().Str("device", dev.Path()).Msg("braille display attached")
	return nil
}

// Detach releases dev if it is the active display and closes it.
func (s *Service) Detach(dev *device.Device) error {
	s.mu.Lock()
	if s.active != dev {
		s.mu.Unlock()
		return ErrDetachMismatch
	}
	s.active = nil
	s.disp = nil
	s.mu.Unlock()

	if err := dev.Close(); err != nil {
		return fmt.Errorf("failed to close device: %w", err)
	}

	log.Info().Str("device", dev.Path()).Msg("braille display detached")
	return nil
}

// Active returns the attached display, or nil.
func (s *Service) Active() *device.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Post delivers one host event to the engine, handling it to completion
// before returning. It reports whether the event was consumed; the host
// must apply its default key handling to unconsumed key events. Events
// posted while no display is attached are not consumed.
func (s *Service) Post(ev braille.Event) bool {
	s.mu.Lock()
	disp := s.disp
	s.mu.Unlock()

	if disp == nil {
		return false
	}
	return disp.Handle(ev)
}
