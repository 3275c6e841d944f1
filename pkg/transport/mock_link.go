package transport

import (
	"context"
	"sync"
	"time"
)

// MockLink is an in-memory Link for tests and examples. Reads pop queued
// chunks one per poll, writes are captured, and an optional responder
// function scripts the module's replies to written commands.
type MockLink struct {
	mu        sync.Mutex
	enabled   bool
	closed    bool
	inbound   [][]byte
	writes    [][]byte
	responder func(written []byte) [][]byte
	onEnable  [][]byte
	poll      time.Duration
	stats     Stats
}

// NewMockLink creates a mock link with a 1ms poll window
func NewMockLink() *MockLink {
	return &MockLink{poll: time.Millisecond}
}

// QueueRead queues chunks to be returned by subsequent Read polls, one
// chunk per poll
func (m *MockLink) QueueRead(chunks ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbound = append(m.inbound, chunks...)
}

// SetResponder scripts the module: every Write is passed to fn and the
// returned chunks are queued for reading. A nil return queues nothing.
func (m *MockLink) SetResponder(fn func(written []byte) [][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = fn
}

// SetBootBanner queues the given chunks on every Enable, mimicking the
// module's unsolicited output after power-up
func (m *MockLink) SetBootBanner(chunks ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnable = chunks
}

// Writes returns a copy of all captured writes in order
func (m *MockLink) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// Enabled reports whether the link is currently enabled
func (m *MockLink) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Enable implements Link.Enable
func (m *MockLink) Enable() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enabled {
		return nil
	}
	m.enabled = true
	m.stats.Enables++
	for _, c := range m.onEnable {
		m.inbound = append(m.inbound, append([]byte(nil), c...))
	}
	return nil
}

// Disable implements Link.Disable
func (m *MockLink) Disable() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return nil
	}
	m.enabled = false
	m.stats.Disables++
	return nil
}

// Read implements Link.Read
func (m *MockLink) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return nil, ErrLinkDisabled
	}
	if len(m.inbound) > 0 {
		chunk := m.inbound[0]
		m.inbound = m.inbound[1:]
		m.stats.BytesReceived += uint64(len(chunk))
		m.mu.Unlock()
		return chunk, nil
	}
	poll := m.poll
	m.mu.Unlock()

	// Poll window elapsed without data
	time.Sleep(poll)
	return nil, nil
}

// Write implements Link.Write
func (m *MockLink) Write(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return ErrLinkDisabled
	}
	m.writes = append(m.writes, append([]byte(nil), data...))
	m.stats.BytesSent += uint64(len(data))
	responder := m.responder
	m.mu.Unlock()

	if responder != nil {
		replies := responder(data)
		m.mu.Lock()
		for _, c := range replies {
			m.inbound = append(m.inbound, append([]byte(nil), c...))
		}
		m.mu.Unlock()
	}
	return nil
}

// Close implements Link.Close
func (m *MockLink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
	m.closed = true
	return nil
}

// Statistics implements Link.Statistics
func (m *MockLink) Statistics() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
