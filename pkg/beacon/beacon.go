package beacon

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/godfreynolan/remoteid/pkg/atcmd"
	"github.com/godfreynolan/remoteid/pkg/internal/logger"
	"github.com/godfreynolan/remoteid/pkg/msg"
	"github.com/godfreynolan/remoteid/pkg/radio"
	"github.com/godfreynolan/remoteid/pkg/types"
)

// Stats counts scheduler activity
type Stats struct {
	Rounds        uint64 // rounds completed without an encoder error
	FramesSent    uint64 // set-advertisement-data exchanges that settled
	FrameTimeouts uint64 // of those, how many settled by timeout
}

// Beacon is the advertisement scheduler: it turns each fresh location fix
// into one full round of Remote ID messages and pushes them, one at a
// time, through the radio link. The caller invokes BroadcastRound once per
// fix, typically every few seconds, and each frame replaces the module's
// single active advertisement payload.
type Beacon struct {
	radio    *radio.RadioLink
	counters *msg.Counters
	cfg      Config
	log      logger.Logger

	stats struct {
		rounds        atomic.Uint64
		framesSent    atomic.Uint64
		frameTimeouts atomic.Uint64
	}
}

// New creates a beacon on an initialized (or initializable) radio link
func New(radioLink *radio.RadioLink, config Config, log logger.Logger) (*Beacon, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("beacon config: %w", err)
	}
	if log == nil {
		log = logger.GetDefault()
	}

	return &Beacon{
		radio:    radioLink,
		counters: msg.NewCounters(),
		cfg:      config,
		log:      log,
	}, nil
}

// Initialize brings the radio module into advertiser mode. It must succeed
// before the first round; a failure here is fatal, not continue-anyway.
func (b *Beacon) Initialize(ctx context.Context) error {
	return b.radio.Initialize(ctx)
}

// Counters exposes the per-type message counters, mainly for diagnostics
func (b *Beacon) Counters() *msg.Counters {
	return b.counters
}

// Statistics returns a snapshot of scheduler statistics
func (b *Beacon) Statistics() Stats {
	return Stats{
		Rounds:        b.stats.rounds.Load(),
		FramesSent:    b.stats.framesSent.Load(),
		FrameTimeouts: b.stats.frameTimeouts.Load(),
	}
}

// BroadcastRound encodes and transmits one full round for the given fix:
// two Basic ID variants, the Location vector, the three Auth pages, Self
// ID, System and Operator ID - nine frames in that fixed order. Each frame
// is encoded only after the previous frame's exchange has settled, and a
// timed-out exchange does not stop the round. An encoder error aborts the
// remainder and is returned.
func (b *Beacon) BroadcastRound(ctx context.Context, fix types.LocationFix) error {
	id := b.cfg.Identity
	op := b.cfg.Operator

	f, err := msg.EncodeBasicID(b.counters, types.IDTypeSerialNumber, id.UAType, id.SerialNumber)
	if err != nil {
		return fmt.Errorf("basic ID (serial): %w", err)
	}
	if err := b.send(ctx, f); err != nil {
		return err
	}

	f, err = msg.EncodeBasicID(b.counters, types.IDTypeCAARegistrationID, id.UAType, id.RegistrationID)
	if err != nil {
		return fmt.Errorf("basic ID (registration): %w", err)
	}
	if err := b.send(ctx, f); err != nil {
		return err
	}

	if err := b.send(ctx, msg.EncodeLocation(b.counters, fix)); err != nil {
		return err
	}

	for page := 0; page <= 2; page++ {
		f, err = msg.EncodeAuthPage(b.counters, b.cfg.AuthType, page, b.cfg.AuthData, fix.TimestampUTC)
		if err != nil {
			return fmt.Errorf("auth page %d: %w", page, err)
		}
		if err := b.send(ctx, f); err != nil {
			return err
		}
	}

	f, err = msg.EncodeSelfID(b.counters, types.DescriptionTypeText, op.SelfIDText)
	if err != nil {
		return fmt.Errorf("self ID: %w", err)
	}
	if err := b.send(ctx, f); err != nil {
		return err
	}

	if err := b.send(ctx, msg.EncodeSystem(b.counters, op, fix.TimestampUTC)); err != nil {
		return err
	}

	f, err = msg.EncodeOperatorID(b.counters, types.OperatorIDTypeCAA, op.OperatorID)
	if err != nil {
		return fmt.Errorf("operator ID: %w", err)
	}
	if err := b.send(ctx, f); err != nil {
		return err
	}

	b.stats.rounds.Add(1)
	return nil
}

// Run broadcasts a round for every fix arriving on the channel until the
// context is cancelled or the channel closes. Encoder errors are logged
// and the loop moves on to the next fix.
func (b *Beacon) Run(ctx context.Context, fixes <-chan types.LocationFix) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fix, ok := <-fixes:
			if !ok {
				return nil
			}
			if err := b.BroadcastRound(ctx, fix); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				b.log.Error("beacon: round aborted: %v", err)
			}
		}
	}
}

// Close powers the radio module down
func (b *Beacon) Close() error {
	return b.radio.Deinitialize()
}

// send pushes one frame through the set-advertisement-data exchange and
// waits for it to settle. A timeout is logged and tolerated; only
// transport faults propagate.
func (b *Beacon) send(ctx context.Context, f msg.Frame) error {
	res, err := b.radio.SetAdvertisingData(ctx, f.Payload)
	if err != nil {
		return fmt.Errorf("send %s: %w", f.Type, err)
	}

	b.stats.framesSent.Add(1)
	if res.Outcome == atcmd.OutcomeTimedOut {
		b.stats.frameTimeouts.Add(1)
		b.log.Warn("beacon: %s frame not acknowledged in %v, continuing",
			f.Type, res.Elapsed.Round(time.Millisecond))
	} else {
		b.log.Debug("beacon: %s frame sent, counter %d", f.Type, b.counters.Current(f.Type))
	}
	return nil
}
