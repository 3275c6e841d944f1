package radio

// InitState tracks progress through the initialization sequence
type InitState int

const (
	StatePoweredOff InitState = iota
	StateAwaitBanner
	StateRestored
	StateAwaitBanner2
	StateModeSet
	StateBLERoleSet
	StateAdvParamsSet
	StateAdvertising
	StateFailed
)

// String returns string representation of InitState
func (s InitState) String() string {
	switch s {
	case StatePoweredOff:
		return "PoweredOff"
	case StateAwaitBanner:
		return "AwaitBanner"
	case StateRestored:
		return "Restored"
	case StateAwaitBanner2:
		return "AwaitBanner2"
	case StateModeSet:
		return "ModeSet"
	case StateBLERoleSet:
		return "BLERoleSet"
	case StateAdvParamsSet:
		return "AdvParamsSet"
	case StateAdvertising:
		return "Advertising"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
