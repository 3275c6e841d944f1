package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// TCPConfig configures a TCP link
type TCPConfig struct {
	Address        string        // "host:port" of the serial bridge
	ConnectTimeout time.Duration // default 10s
	PollInterval   time.Duration // read poll window, default 50ms
	WriteTimeout   time.Duration // default 10s
}

// TCPLink implements Link over a TCP connection to a serial-over-network
// bridge (ser2net or similar), used on development benches where the radio
// module's UART is not attached to the host directly. Enable dials the
// bridge; Disable drops the connection, which bridges typically translate
// into releasing the port.
type TCPLink struct {
	cfg TCPConfig

	connLock sync.RWMutex
	conn     net.Conn

	stats struct {
		bytesSent     atomic.Uint64
		bytesReceived atomic.Uint64
		writeErrors   atomic.Uint64
		readErrors    atomic.Uint64
		enables       atomic.Uint64
		disables      atomic.Uint64
	}
}

// NewTCPLink creates a TCP link. The link starts disconnected; call Enable
// before the first exchange.
func NewTCPLink(config TCPConfig) (*TCPLink, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}

	// Set defaults
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = 50 * time.Millisecond
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 10 * time.Second
	}

	return &TCPLink{cfg: config}, nil
}

// Enable implements Link.Enable
func (t *TCPLink) Enable() error {
	t.connLock.Lock()
	defer t.connLock.Unlock()

	if t.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("tcp", t.cfg.Address, t.cfg.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", t.cfg.Address, err)
	}

	t.conn = conn
	t.stats.enables.Add(1)
	return nil
}

// Disable implements Link.Disable
func (t *TCPLink) Disable() error {
	t.connLock.Lock()
	defer t.connLock.Unlock()

	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	t.stats.disables.Add(1)
	return err
}

// Read implements Link.Read
func (t *TCPLink) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	t.connLock.RLock()
	conn := t.conn
	t.connLock.RUnlock()

	if conn == nil {
		return nil, ErrLinkDisabled
	}

	// The read deadline bounds the poll window
	conn.SetReadDeadline(time.Now().Add(t.cfg.PollInterval))

	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			// Poll window elapsed without data
			return nil, nil
		}
		t.stats.readErrors.Add(1)
		return nil, fmt.Errorf("read %s: %w", t.cfg.Address, err)
	}

	t.stats.bytesReceived.Add(uint64(n))
	return buf[:n], nil
}

// Write implements Link.Write
func (t *TCPLink) Write(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.connLock.RLock()
	conn := t.conn
	t.connLock.RUnlock()

	if conn == nil {
		return ErrLinkDisabled
	}

	conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout))

	if _, err := conn.Write(data); err != nil {
		t.stats.writeErrors.Add(1)
		return fmt.Errorf("write %s: %w", t.cfg.Address, err)
	}

	t.stats.bytesSent.Add(uint64(len(data)))
	return nil
}

// Close implements Link.Close
func (t *TCPLink) Close() error {
	return t.Disable()
}

// Statistics implements Link.Statistics
func (t *TCPLink) Statistics() Stats {
	return Stats{
		BytesSent:     t.stats.bytesSent.Load(),
		BytesReceived: t.stats.bytesReceived.Load(),
		WriteErrors:   t.stats.writeErrors.Load(),
		ReadErrors:    t.stats.readErrors.Load(),
		Enables:       t.stats.enables.Load(),
		Disables:      t.stats.disables.Load(),
	}
}
