package types

// UAType classifies the unmanned aircraft carrying the beacon (ASTM F3411 UA types)
type UAType uint8

const (
	UATypeNone              UAType = 0
	UATypeAeroplane         UAType = 1
	UATypeHelicopter        UAType = 2
	UATypeGyroplane         UAType = 3
	UATypeHybridLift        UAType = 4
	UATypeOrnithopter       UAType = 5
	UATypeGlider            UAType = 6
	UATypeKite              UAType = 7
	UATypeFreeBalloon       UAType = 8
	UATypeCaptiveBalloon    UAType = 9
	UATypeAirship           UAType = 10
	UATypeFreeFallParachute UAType = 11
	UATypeRocket            UAType = 12
	UATypeTetheredPowered   UAType = 13
	UATypeGroundObstacle    UAType = 14
	UATypeOther             UAType = 15
)

// IDType identifies which kind of identifier a Basic ID message carries
type IDType uint8

const (
	IDTypeNone              IDType = 0
	IDTypeSerialNumber      IDType = 1
	IDTypeCAARegistrationID IDType = 2
	IDTypeUTMAssignedUUID   IDType = 3
	IDTypeSpecificSessionID IDType = 4
)

// DescriptionType classifies a Self ID free text field
type DescriptionType uint8

const (
	DescriptionTypeText           DescriptionType = 0
	DescriptionTypeEmergency      DescriptionType = 1
	DescriptionTypeExtendedStatus DescriptionType = 2
)

// OperatorIDType classifies an Operator ID identifier. Only the CAA issued
// operator ID is defined by the standard today.
type OperatorIDType uint8

// OperatorIDTypeCAA is the CAA issued operator identifier
const OperatorIDTypeCAA OperatorIDType = 0

// Identity carries the identifiers broadcast by the two Basic ID variants.
// Supplied by configuration management and treated as fixed for the
// lifetime of the process.
type Identity struct {
	SerialNumber   string // ANSI/CTA-2063-A serial number, max 20 bytes
	RegistrationID string // CAA registration, max 20 bytes
	UAType         UAType
}

// Operator carries the fixed operator and operating-area parameters used by
// the Self ID, System and Operator ID messages.
type Operator struct {
	OperatorID string // CAA operator ID, max 20 bytes
	SelfIDText string // free text description, max 23 bytes

	// Operator (remote pilot) location
	Latitude  float64
	Longitude float64
	AltitudeM float64

	// Operating area
	AreaCount    uint16  // number of aircraft in the area, 1 for a single asset
	AreaRadiusM  float64 // metres
	AreaCeilingM float64 // metres
	AreaFloorM   float64 // metres

	// EU class marking
	CategoryEU uint8
	ClassEU    uint8
}
