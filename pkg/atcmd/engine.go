package atcmd

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godfreynolan/remoteid/pkg/internal/logger"
	"github.com/godfreynolan/remoteid/pkg/transport"
)

// Outcome tells how an exchange settled
type Outcome int

const (
	// OutcomeCompleted means the validator recognized the reply
	OutcomeCompleted Outcome = iota
	// OutcomeTimedOut means the timeout elapsed first. This is not an
	// error: the caller gets the partial data and decides whether the
	// next exchange is worth attempting.
	OutcomeTimedOut
)

// String returns string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "Completed"
	case OutcomeTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Validator decides whether the data received so far completes the
// exchange. It is called once per poll with the accumulated data (or, in
// streaming mode, the retained tail plus the newest chunk) and the time
// elapsed since the exchange started.
type Validator func(data []byte, elapsed time.Duration) bool

// Exchange describes one command/response round trip with the module
type Exchange struct {
	// Command is written (with the line terminator appended) when
	// SendCommand is true. With SendCommand false the engine only
	// listens, which is how unsolicited output like the boot banner
	// is awaited.
	Command     string
	SendCommand bool

	// Validator recognizes completion. A nil validator never completes,
	// so the exchange runs until Timeout.
	Validator Validator

	// Timeout bounds the wait. When it elapses the exchange resolves
	// with OutcomeTimedOut instead of failing.
	Timeout time.Duration

	// OnData, when set, switches the exchange to streaming mode: each
	// newly received chunk is handed to OnData instead of being
	// accumulated, and the validator sees only the chunk appended to a
	// short retained tail. The tail keeps a completion marker visible
	// even when it is split across two polls.
	OnData func(chunk []byte)
}

// Result is the settled outcome of an exchange
type Result struct {
	Outcome Outcome
	Data    []byte // accumulated reply, or the retained tail in streaming mode
	Elapsed time.Duration
}

// String returns a diagnostic description of the result
func (r Result) String() string {
	return fmt.Sprintf("Result{%s after %v, %d bytes: %q}",
		r.Outcome, r.Elapsed.Round(time.Millisecond), len(r.Data), r.Data)
}

// Config configures an Engine
type Config struct {
	// IdleTimeout powers the link down after this much inactivity.
	// Zero disables idle power management.
	IdleTimeout time.Duration

	// Terminator is appended to every command, default "\r\n"
	Terminator string

	// TailSize is the number of bytes retained between streaming polls,
	// default 8
	TailSize int
}

// Stats counts engine activity
type Stats struct {
	Exchanges     uint64 // exchanges started
	Completed     uint64 // settled via validator
	TimedOut      uint64 // settled via timeout
	CommandErrors uint64 // completed replies that contained an error marker
}

// Engine drives the command/response protocol with the companion radio
// module over a Link. The link is half duplex and the module handles one
// command at a time, so the engine admits exactly one exchange at a time;
// a second caller blocks until the first settles.
type Engine struct {
	link transport.Link
	cfg  Config
	log  logger.Logger

	// Serializes exchanges: the single-slot invariant
	mu sync.Mutex

	idleMu    sync.Mutex
	idleTimer *time.Timer

	stats struct {
		exchanges     atomic.Uint64
		completed     atomic.Uint64
		timedOut      atomic.Uint64
		commandErrors atomic.Uint64
	}
}

// NewEngine creates an engine on the given link
func NewEngine(link transport.Link, config Config, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetDefault()
	}
	if config.Terminator == "" {
		config.Terminator = "\r\n"
	}
	if config.TailSize == 0 {
		config.TailSize = 8
	}

	return &Engine{
		link: link,
		cfg:  config,
		log:  log,
	}
}

// Run executes one exchange and blocks until it settles. A timeout settles
// the exchange with OutcomeTimedOut and a nil error; the error return is
// reserved for transport faults and context cancellation.
func (e *Engine) Run(ctx context.Context, ex Exchange) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.suspendIdle()
	defer e.armIdle()

	if err := e.link.Enable(); err != nil {
		return Result{}, fmt.Errorf("enable link: %w", err)
	}

	e.stats.exchanges.Add(1)

	if ex.SendCommand {
		e.log.Debug("atcmd: >> %s", ex.Command)
		if err := e.link.Write(ctx, []byte(ex.Command+e.cfg.Terminator)); err != nil {
			return Result{}, fmt.Errorf("write command: %w", err)
		}
	}

	start := time.Now()
	var accumulated []byte
	var tail []byte

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		chunk, err := e.link.Read(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("read reply: %w", err)
		}

		elapsed := time.Since(start)
		window := accumulated

		if len(chunk) > 0 {
			if ex.OnData != nil {
				ex.OnData(chunk)
				window = append(append([]byte(nil), tail...), chunk...)
				tail = keepTail(window, e.cfg.TailSize)
			} else {
				accumulated = append(accumulated, chunk...)
				window = accumulated
			}
		} else if ex.OnData != nil {
			window = tail
		}

		if ex.Validator != nil && ex.Validator(window, elapsed) {
			e.stats.completed.Add(1)
			if IsCommandError(window) {
				e.stats.commandErrors.Add(1)
			}
			res := Result{Outcome: OutcomeCompleted, Data: window, Elapsed: elapsed}
			e.log.Debug("atcmd: << %s", res)
			return res, nil
		}

		if elapsed >= ex.Timeout {
			e.stats.timedOut.Add(1)
			res := Result{Outcome: OutcomeTimedOut, Data: window, Elapsed: elapsed}
			e.log.Warn("atcmd: exchange timed out: %s", res)
			return res, nil
		}
	}
}

// Close stops idle power management and closes the link
func (e *Engine) Close() error {
	e.idleMu.Lock()
	if e.idleTimer != nil {
		e.idleTimer.Stop()
		e.idleTimer = nil
	}
	e.idleMu.Unlock()

	return e.link.Close()
}

// Statistics returns a snapshot of engine statistics
func (e *Engine) Statistics() Stats {
	return Stats{
		Exchanges:     e.stats.exchanges.Load(),
		Completed:     e.stats.completed.Load(),
		TimedOut:      e.stats.timedOut.Load(),
		CommandErrors: e.stats.commandErrors.Load(),
	}
}

// suspendIdle cancels the pending idle power-down, if any
func (e *Engine) suspendIdle() {
	e.idleMu.Lock()
	defer e.idleMu.Unlock()
	if e.idleTimer != nil {
		e.idleTimer.Stop()
	}
}

// armIdle schedules the link to power down after the idle timeout
func (e *Engine) armIdle() {
	if e.cfg.IdleTimeout <= 0 {
		return
	}

	e.idleMu.Lock()
	defer e.idleMu.Unlock()

	if e.idleTimer != nil {
		e.idleTimer.Stop()
	}
	e.idleTimer = time.AfterFunc(e.cfg.IdleTimeout, func() {
		// Skip the power-down if an exchange is in flight; it will
		// re-arm the timer when it settles.
		if !e.mu.TryLock() {
			return
		}
		defer e.mu.Unlock()

		if err := e.link.Disable(); err != nil {
			e.log.Error("atcmd: idle power-down failed: %v", err)
			return
		}
		e.log.Debug("atcmd: link idle, powered down")
	})
}

// keepTail returns the last n bytes of data (or all of it when shorter)
func keepTail(data []byte, n int) []byte {
	if len(data) <= n {
		return append([]byte(nil), data...)
	}
	return append([]byte(nil), data[len(data)-n:]...)
}
