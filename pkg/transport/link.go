package transport

import "context"

// Link represents the physical byte channel to the companion radio module.
// Implementations pair a raw half-duplex byte stream with a power-enable
// control, so the command layer can shut the module down between bursts of
// activity and bring it back up on demand.
type Link interface {
	// Enable powers the module on and (re)configures the channel.
	// Calling Enable on an enabled link is a no-op.
	Enable() error

	// Disable powers the module off and releases the channel.
	// Calling Disable on a disabled link is a no-op.
	Disable() error

	// Read polls for received bytes. It blocks for at most one poll
	// window and returns whatever arrived in that time, which may be
	// nothing (a nil or empty slice with a nil error). The command layer
	// relies on this bounded-poll behavior to interleave validator checks
	// and timeout accounting between reads.
	Read(ctx context.Context) ([]byte, error)

	// Write writes bytes to the module
	Write(ctx context.Context, data []byte) error

	// Close disables the link and releases all resources
	Close() error

	// Statistics returns transport-level statistics
	Statistics() Stats
}

// Stats provides transport-level statistics
type Stats struct {
	BytesSent     uint64 // Total bytes sent
	BytesReceived uint64 // Total bytes received
	WriteErrors   uint64 // Number of write errors
	ReadErrors    uint64 // Number of read errors
	Enables       uint64 // Number of power-up cycles
	Disables      uint64 // Number of power-down cycles
}
