package radio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/godfreynolan/remoteid/pkg/atcmd"
	"github.com/godfreynolan/remoteid/pkg/internal/logger"
	"github.com/godfreynolan/remoteid/pkg/transport"
)

var (
	// ErrInitFailed marks initialization sequence failures. Unlike an
	// exchange timeout during broadcasting, a failed init step is fatal:
	// the caller must not start advertising.
	ErrInitFailed = errors.New("radio initialization failed")

	// ErrNotInitialized is returned when advertising data is set before
	// a successful Initialize
	ErrNotInitialized = errors.New("radio link is not initialized")
)

// InitError describes which initialization step failed and what the module
// said, if anything
type InitError struct {
	Step   string
	State  InitState
	Result atcmd.Result
}

// Error implements error
func (e *InitError) Error() string {
	return fmt.Sprintf("init step %q failed in state %s: %s", e.Step, e.State, e.Result)
}

// Unwrap lets errors.Is match ErrInitFailed
func (e *InitError) Unwrap() error {
	return ErrInitFailed
}

// Config configures a RadioLink
type Config struct {
	BannerTimeout   time.Duration // wait for the unsolicited ready banner, default 10s
	AckTimeout      time.Duration // wait for a command's OK, default 2s
	PowerCycleDelay time.Duration // settle time between power off and on, default 500ms
}

// RadioLink owns the companion BLE module's lifecycle: power state, the
// initialization sequence that brings it into advertiser mode, and the
// set-advertisement-data operation used by the scheduler.
type RadioLink struct {
	engine *atcmd.Engine
	link   transport.Link
	cfg    Config
	log    logger.Logger

	mu          sync.Mutex
	poweredOn   bool
	initialized bool
	state       InitState
}

// initStep is one serially executed exchange of the init sequence
type initStep struct {
	name     string
	state    InitState // state reached when the step succeeds
	exchange atcmd.Exchange
}

// NewRadioLink creates a radio link. The module starts powered off.
func NewRadioLink(engine *atcmd.Engine, link transport.Link, config Config, log logger.Logger) *RadioLink {
	if log == nil {
		log = logger.GetDefault()
	}
	if config.BannerTimeout == 0 {
		config.BannerTimeout = defaultBannerTimeout
	}
	if config.AckTimeout == 0 {
		config.AckTimeout = defaultAckTimeout
	}
	if config.PowerCycleDelay == 0 {
		config.PowerCycleDelay = defaultCycleDelay
	}

	return &RadioLink{
		engine: engine,
		link:   link,
		cfg:    config,
		log:    log,
		state:  StatePoweredOff,
	}
}

// State returns the current initialization state
func (r *RadioLink) State() InitState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// IsInitialized reports whether the module is advertising-ready
func (r *RadioLink) IsInitialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

// Initialize power-cycles the module and brings it into BLE advertiser
// mode. Steps run strictly one after another; the first failing step
// aborts the sequence with an error wrapping ErrInitFailed. Once the link
// is initialized further calls return immediately.
func (r *RadioLink) Initialize(ctx context.Context) error {
	r.mu.Lock()
	if r.initialized {
		r.mu.Unlock()
		return nil
	}
	wasOn := r.poweredOn
	r.mu.Unlock()

	// Power-cycle so the module boots from a known state
	if wasOn {
		r.log.Info("radio: power-cycling module")
		if err := r.link.Disable(); err != nil {
			return fmt.Errorf("power off: %w", err)
		}
		time.Sleep(r.cfg.PowerCycleDelay)
	}
	if err := r.link.Enable(); err != nil {
		return fmt.Errorf("power on: %w", err)
	}
	r.setPowered(true)

	steps := []initStep{
		{
			name:  "await boot banner",
			state: StateAwaitBanner,
			exchange: atcmd.Exchange{
				Validator: atcmd.ExpectBanner(readyBanner),
				Timeout:   r.cfg.BannerTimeout,
			},
		},
		{
			name:  "factory restore",
			state: StateRestored,
			exchange: atcmd.Exchange{
				Command:     cmdRestore,
				SendCommand: true,
				Validator:   atcmd.ExpectOK(),
				Timeout:     r.cfg.AckTimeout,
			},
		},
		{
			name:  "await restore banner",
			state: StateAwaitBanner2,
			exchange: atcmd.Exchange{
				Validator: atcmd.ExpectBanner(readyBanner),
				Timeout:   r.cfg.BannerTimeout,
			},
		},
		{
			name:  "disable networking role",
			state: StateModeSet,
			exchange: atcmd.Exchange{
				Command:     cmdDisableWiFi,
				SendCommand: true,
				Validator:   atcmd.ExpectOK(),
				Timeout:     r.cfg.AckTimeout,
			},
		},
		{
			name:  "set BLE peripheral role",
			state: StateBLERoleSet,
			exchange: atcmd.Exchange{
				Command:     cmdBLEServer,
				SendCommand: true,
				Validator:   atcmd.ExpectOK(),
				Timeout:     r.cfg.AckTimeout,
			},
		},
		{
			name:  "set advertisement parameters",
			state: StateAdvParamsSet,
			exchange: atcmd.Exchange{
				Command:     cmdAdvParams,
				SendCommand: true,
				Validator:   atcmd.ExpectOK(),
				Timeout:     r.cfg.AckTimeout,
			},
		},
		{
			name:  "start advertising",
			state: StateAdvertising,
			exchange: atcmd.Exchange{
				Command:     cmdAdvStart,
				SendCommand: true,
				Validator:   atcmd.ExpectOK(),
				Timeout:     r.cfg.AckTimeout,
			},
		},
	}

	for _, step := range steps {
		res, err := r.engine.Run(ctx, step.exchange)
		if err != nil {
			r.setState(StateFailed)
			return fmt.Errorf("init step %q: %w", step.name, err)
		}

		// Init is the one place where a timeout is fatal rather than
		// continue-anyway: an uninitialized module must not be handed
		// advertisement data.
		if res.Outcome != atcmd.OutcomeCompleted || atcmd.IsCommandError(res.Data) {
			r.setState(StateFailed)
			return &InitError{Step: step.name, State: step.state, Result: res}
		}

		r.setState(step.state)
		r.log.Debug("radio: init step %q done, state %s", step.name, step.state)
	}

	r.mu.Lock()
	r.initialized = true
	r.mu.Unlock()
	r.log.Info("radio: module initialized, advertising")
	return nil
}

// SetAdvertisingData replaces the module's active advertisement payload
// with the given hex string. A timed-out exchange is reported in the
// result, not as an error.
func (r *RadioLink) SetAdvertisingData(ctx context.Context, hexPayload string) (atcmd.Result, error) {
	r.mu.Lock()
	ok := r.initialized && r.poweredOn
	r.mu.Unlock()
	if !ok {
		return atcmd.Result{}, ErrNotInitialized
	}

	return r.engine.Run(ctx, atcmd.Exchange{
		Command:     fmt.Sprintf(cmdSetAdvData, hexPayload),
		SendCommand: true,
		Validator:   atcmd.ExpectOK(),
		Timeout:     r.cfg.AckTimeout,
	})
}

// Deinitialize powers the module off; the next Initialize runs the full
// sequence again
func (r *RadioLink) Deinitialize() error {
	err := r.link.Disable()

	r.mu.Lock()
	r.poweredOn = false
	r.initialized = false
	r.state = StatePoweredOff
	r.mu.Unlock()

	return err
}

func (r *RadioLink) setPowered(on bool) {
	r.mu.Lock()
	r.poweredOn = on
	r.mu.Unlock()
}

func (r *RadioLink) setState(s InitState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}
