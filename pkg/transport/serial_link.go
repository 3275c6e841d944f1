package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

// ErrLinkDisabled is returned when reading or writing a powered-down link
var ErrLinkDisabled = errors.New("link is disabled")

// SerialConfig configures a serial link to the radio module
type SerialConfig struct {
	Device       string        // e.g. "/dev/serial0"
	BaudRate     int           // default 115200
	PollInterval time.Duration // read poll window, default 50ms
	SettleDelay  time.Duration // wait after power-up before opening the port, default 100ms
	Power        PowerPin      // power-enable line, nil = permanently powered
}

// SerialLink implements Link over a local UART using go.bug.st/serial.
// Enable drives the power pin high and (re)opens the port with the
// configured UART settings; Disable closes the port and drops the pin.
type SerialLink struct {
	cfg SerialConfig

	mu      sync.Mutex
	port    serial.Port
	enabled bool

	stats struct {
		bytesSent     atomic.Uint64
		bytesReceived atomic.Uint64
		writeErrors   atomic.Uint64
		readErrors    atomic.Uint64
		enables       atomic.Uint64
		disables      atomic.Uint64
	}
}

// NewSerialLink creates a serial link. The link starts disabled (module
// powered off); call Enable before the first exchange.
func NewSerialLink(config SerialConfig) (*SerialLink, error) {
	if config.Device == "" {
		return nil, fmt.Errorf("device is required")
	}

	// Set defaults
	if config.BaudRate == 0 {
		config.BaudRate = 115200
	}
	if config.PollInterval == 0 {
		config.PollInterval = 50 * time.Millisecond
	}
	if config.SettleDelay == 0 {
		config.SettleDelay = 100 * time.Millisecond
	}
	if config.Power == nil {
		config.Power = NoPin{}
	}

	return &SerialLink{cfg: config}, nil
}

// Enable implements Link.Enable
func (s *SerialLink) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.enabled {
		return nil
	}

	if err := s.cfg.Power.Set(true); err != nil {
		return fmt.Errorf("power on: %w", err)
	}
	time.Sleep(s.cfg.SettleDelay)

	port, err := serial.Open(s.cfg.Device, &serial.Mode{BaudRate: s.cfg.BaudRate})
	if err != nil {
		s.cfg.Power.Set(false)
		return fmt.Errorf("open %s: %w", s.cfg.Device, err)
	}

	// Bounded poll reads; stale bytes from before power-up are dropped
	if err := port.SetReadTimeout(s.cfg.PollInterval); err != nil {
		port.Close()
		s.cfg.Power.Set(false)
		return fmt.Errorf("set read timeout: %w", err)
	}
	port.ResetInputBuffer()

	s.port = port
	s.enabled = true
	s.stats.enables.Add(1)
	return nil
}

// Disable implements Link.Disable
func (s *SerialLink) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil
	}

	err := s.port.Close()
	s.port = nil
	s.enabled = false

	if perr := s.cfg.Power.Set(false); perr != nil && err == nil {
		err = perr
	}
	s.stats.disables.Add(1)
	return err
}

// Read implements Link.Read
func (s *SerialLink) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	port := s.port
	enabled := s.enabled
	s.mu.Unlock()

	if !enabled {
		return nil, ErrLinkDisabled
	}

	buf := make([]byte, 256)
	n, err := port.Read(buf)
	if err != nil {
		s.stats.readErrors.Add(1)
		return nil, fmt.Errorf("read %s: %w", s.cfg.Device, err)
	}
	if n == 0 {
		// Poll window elapsed without data
		return nil, nil
	}

	s.stats.bytesReceived.Add(uint64(n))
	return buf[:n], nil
}

// Write implements Link.Write
func (s *SerialLink) Write(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	port := s.port
	enabled := s.enabled
	s.mu.Unlock()

	if !enabled {
		return ErrLinkDisabled
	}

	if _, err := port.Write(data); err != nil {
		s.stats.writeErrors.Add(1)
		return fmt.Errorf("write %s: %w", s.cfg.Device, err)
	}

	s.stats.bytesSent.Add(uint64(len(data)))
	return nil
}

// Close implements Link.Close
func (s *SerialLink) Close() error {
	err := s.Disable()
	if cerr := s.cfg.Power.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Statistics implements Link.Statistics
func (s *SerialLink) Statistics() Stats {
	return Stats{
		BytesSent:     s.stats.bytesSent.Load(),
		BytesReceived: s.stats.bytesReceived.Load(),
		WriteErrors:   s.stats.writeErrors.Load(),
		ReadErrors:    s.stats.readErrors.Load(),
		Enables:       s.stats.enables.Load(),
		Disables:      s.stats.disables.Load(),
	}
}
