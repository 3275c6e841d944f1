package transport

// PowerPin drives the radio module's power-enable line
type PowerPin interface {
	// Set drives the line high (true) or low (false)
	Set(high bool) error

	// Close releases the line
	Close() error
}

// NoPin is a PowerPin for modules that are permanently powered
type NoPin struct{}

// Set does nothing
func (NoPin) Set(high bool) error { return nil }

// Close does nothing
func (NoPin) Close() error { return nil }
