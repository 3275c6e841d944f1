package types

import "time"

// LocationFix is one snapshot of the tracked asset's position and motion,
// as delivered by the external location provider. It is read-only input:
// nothing in this module retains or mutates a fix after encoding it.
type LocationFix struct {
	TimestampUTC time.Time

	// Position
	Latitude  float64 // degrees, WGS84
	Longitude float64 // degrees, WGS84
	AltitudeM float64 // geodetic altitude, metres

	// Kinematics
	GroundSpeedMS     float64 // metres per second over ground
	VerticalSpeedMS   float64 // metres per second, positive up
	HeadingMotionDeg  float64 // track over ground, degrees clockwise from north
	HeadingVehicleDeg float64 // vehicle nose heading; not carried by the Location message

	// Estimated accuracies
	HorizAccM  float64 // metres
	VertAccM   float64 // metres
	SpeedAccMS float64 // metres per second
}
