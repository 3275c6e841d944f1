package msg

import "sync"

// Counters holds the per-type 8-bit message counters receivers use to
// detect gaps and reordering. Each counter starts so that the first
// increment yields 0 and wraps 255 back to 0. Counters are volatile:
// they live for device uptime only.
//
// Mutation happens only inside the encoders; the mutex makes the
// read-modify-write safe if rounds are ever driven from more than one
// goroutine.
type Counters struct {
	mu     sync.Mutex
	counts [6]uint8
}

// NewCounters creates counters primed so the first message of each type
// carries counter value 0
func NewCounters() *Counters {
	c := &Counters{}
	for i := range c.counts {
		c.counts[i] = 0xFF
	}
	return c
}

// Current returns the counter most recently assigned to the given type.
// Auth continuation pages reuse this value instead of incrementing.
func (c *Counters) Current(t Type) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[counterIndex(t)]
}

// next increments the counter for the given type and returns the new value
func (c *Counters) next(t Type) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := counterIndex(t)
	c.counts[i]++ // uint8 arithmetic wraps 255 -> 0
	return c.counts[i]
}

// counterIndex maps a message type to its counter slot
func counterIndex(t Type) int {
	if t > TypeOperatorID {
		panic("msg: no counter for type " + t.String())
	}
	return int(t)
}
