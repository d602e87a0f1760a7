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

// Package device opens and writes to the braille display's serial port.
package device

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/braillecon/braillecon/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// ErrNotOpen is returned by writes on a device that is not attached.
var ErrNotOpen = errors.New("device not open")

const healthCheckInterval = 5 * time.Second

// Port is the subset of a serial port the device needs (for mocking in
// tests).
type Port interface {
	Write(p []byte) (n int, err error)
	Close() error
}

// PortFactory creates a serial port connection.
type PortFactory func(path string, mode *serial.Mode) (Port, error)

// DefaultPortFactory is the default factory that opens real serial ports.
func DefaultPortFactory(path string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return port, nil
}

// PortLister enumerates the serial port paths currently present on the
// system. Used by the health check to notice unplugged devices.
type PortLister func() ([]string, error)

// DefaultPortLister lists real serial ports.
func DefaultPortLister() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// DefaultMode is the transport configuration applied when the caller
// supplies none: 57600 baud, 8 data bits, no parity, one stop bit.
func DefaultMode() *serial.Mode {
	return &serial.Mode{
		BaudRate: 57600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Device is a braille display attached over a serial line. Frames are
// written fire-and-forget; the display never talks back, so liveness is
// tracked by write errors and a background port-presence check.
type Device struct {
	factory      PortFactory
	lister       PortLister
	clock        clockwork.Clock
	port         Port
	healthCancel context.CancelFunc
	healthDone   chan struct{}
	path         string
	mu           syncutil.RWMutex
	connected    bool
}

// Option configures a Device.
type Option func(*Device)

// WithPortFactory overrides how the serial port is opened.
func WithPortFactory(f PortFactory) Option {
	return func(d *Device) { d.factory = f }
}

// WithPortLister overrides how present ports are enumerated.
func WithPortLister(l PortLister) Option {
	return func(d *Device) { d.lister = l }
}

// WithClock overrides the health check clock.
func WithClock(c clockwork.Clock) Option {
	return func(d *Device) { d.clock = c }
}

// New returns an unopened device for the serial port at path.
func New(path string, opts ...Option) *Device {
	d := &Device{
		path:    path,
		factory: DefaultPortFactory,
		lister:  DefaultPortLister,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open configures and opens the serial port. A nil mode applies
// DefaultMode. Open is atomic: on failure the device is left unattached.
func (d *Device) Open(mode *serial.Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.port != nil {
		return errors.New("device already open")
	}

	if mode == nil {
		mode = DefaultMode()
	}

	port, err := d.factory(d.path, mode)
	if err != nil {
		return fmt.Errorf("failed to configure transport: %w", err)
	}

	d.port = port
	d.connected = true

	ctx, cancel := context.WithCancel(context.Background())
	d.healthCancel = cancel
	d.healthDone = make(chan struct{})
	go d.healthCheckLoop(ctx, d.healthDone)

	log.Info().Str("device", d.path).Int("baud", mode.BaudRate).
		Msg("braille display connected")

	return nil
}

// Close stops the health check and closes the port. Closing a device
// that was never opened is a no-op.
func (d *Device) Close() error {
	d.mu.Lock()

	if d.healthCancel != nil {
		d.healthCancel()
		d.healthCancel = nil
	}
	done := d.healthDone
	d.healthDone = nil

	hadPort := d.port != nil
	if hadPort {
		_ = d.port.Close()
		d.port = nil
	}
	d.connected = false
	d.mu.Unlock()

	if done != nil {
		<-done
	}

	if hadPort {
		log.Info().Str("device", d.path).Msg("braille display disconnected")
	}
	return nil
}

// WriteFrame writes one frame to the display. Fire-and-forget: no
// acknowledgement is read and failed writes are not retried, but a
// write error that indicates disconnection marks the device as such.
func (d *Device) WriteFrame(frame []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.port == nil {
		return ErrNotOpen
	}

	_, err := d.port.Write(frame)
	if err != nil {
		if isDisconnectionError(err) {
			d.connected = false
			log.Info().Str("device", d.path).Err(err).
				Msg("braille display disconnected - write error")
		}
		return fmt.Errorf("failed to write to port: %w", err)
	}

	return nil
}

// Connected returns the cached connection status; no hardware probing.
func (d *Device) Connected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected && d.port != nil
}

// Path returns the serial port path.
func (d *Device) Path() string {
	return d.path
}

func (d *Device) Info() string {
	if d.Connected() {
		return "braille display (" + d.path + ")"
	}
	return "braille display (disconnected)"
}

// healthCheckLoop periodically checks that the port path is still
// present on the system. The display protocol is one-way, so probing
// with a write would put garbage on the line; enumeration is the only
// safe liveness signal.
func (d *Device) healthCheckLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := d.clock.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	log.Debug().Str("device", d.path).Msg("health check started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("device", d.path).Msg("health check stopped")
			return
		case <-ticker.Chan():
			d.checkPortPresent()
		}
	}
}

func (d *Device) checkPortPresent() {
	ports, err := d.lister()
	if err != nil {
		log.Debug().Err(err).Msg("failed to list serial ports for health check")
		return
	}

	present := slices.Contains(ports, d.path)

	d.mu.Lock()
	if d.connected && !present {
		d.connected = false
		log.Info().Str("device", d.path).
			Msg("braille display disconnected - port no longer present")
	}
	d.mu.Unlock()
}

// isDisconnectionError checks if an error indicates device disconnection.
func isDisconnectionError(err error) bool {
	if err == nil {
		return false
	}

	var portErr serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
			return true
		default:
			return false
		}
	}

	// Fallback to string matching for OS-level errors that aren't wrapped
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "device not configured") ||
		strings.Contains(errStr, "input/output error") ||
		strings.Contains(errStr, "no such device") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "device disconnected")
}
