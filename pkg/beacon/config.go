package beacon

import (
	"fmt"

	"github.com/godfreynolan/remoteid/pkg/types"
)

// Config carries the static identity and operator parameters broadcast by
// every round, supplied by configuration management and treated as fixed
// for the lifetime of the process.
type Config struct {
	Identity types.Identity
	Operator types.Operator

	// AuthData is the opaque authentication payload carried by the
	// three-page Auth message. Its content (signing, format) is the
	// caller's business; max 63 bytes.
	AuthData []byte
	AuthType uint8
}

// Validate rejects configurations that can never broadcast. Field length
// limits are deliberately not duplicated here: the encoders enforce them
// and the scheduler surfaces the violation to the caller.
func (c *Config) Validate() error {
	if c.Identity.SerialNumber == "" {
		return fmt.Errorf("identity serial number is required")
	}
	return nil
}
