package msg

import (
	"math"
	"time"
)

// Numeric scaling rules from the F3411 field layouts. Every helper here is
// pure; the encoders compose them into message bodies.

// remoteIDEpoch is 2019-01-01T00:00:00Z, the zero point of all 32-bit
// timestamp fields
var remoteIDEpoch = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

// epochSeconds returns seconds since the Remote ID epoch
func epochSeconds(t time.Time) uint32 {
	d := t.Sub(remoteIDEpoch)
	if d < 0 {
		return 0
	}
	return uint32(d / time.Second)
}

// tenthsAfterHour packs the Location message's sub-hour timestamp:
// minutes*600 + seconds*10 + tenths of a second
func tenthsAfterHour(t time.Time) uint16 {
	t = t.UTC()
	return uint16(t.Minute()*600 + t.Second()*10 + t.Nanosecond()/1e8)
}

// latLonUnits scales degrees to the signed 1e-7 degree wire unit
func latLonUnits(deg float64) int32 {
	return int32(math.Round(deg * 1e7))
}

const (
	// altitudeInvalid encodes "unknown", the bias point of -1000m
	altitudeInvalid uint16 = 0

	altitudeMinM = -1000.0
	altitudeMaxM = float64(math.MaxUint16)/2 - 1000
)

// encodeAltitude biases an altitude-like value into a non-negative range
// and doubles it for 0.5m resolution. Values outside the representable
// range encode as unknown.
func encodeAltitude(m float64) uint16 {
	if m < altitudeMinM || m > altitudeMaxM {
		return altitudeInvalid
	}
	return uint16(math.Round((m + 1000) * 2))
}

// decodeAltitude inverts encodeAltitude
func decodeAltitude(v uint16) float64 {
	return float64(v)/2 - 1000
}

const (
	// speedLowMax is the top of the 0.25 m/s regime
	speedLowMax = 63.75
	// speedHighMax is the top of the 0.75 m/s regime; anything faster
	// saturates
	speedHighMax = speedLowMax + 254*0.75
	// speedSaturated is the maximum encodable high-regime value
	speedSaturated uint8 = 254
)

// encodeSpeed packs ground speed into the dual-regime field. The returned
// flag selects the 0.75 m/s regime.
func encodeSpeed(ms float64) (uint8, bool) {
	switch {
	case ms < 0:
		return 0, false
	case ms <= speedLowMax:
		return uint8(math.Round(ms * 4)), false
	case ms < speedHighMax:
		return uint8(math.Round((ms - speedLowMax) / 0.75)), true
	default:
		return speedSaturated, true
	}
}

// encodeVerticalSpeed packs climb rate at 0.5 m/s resolution, clamped to
// the +-62 m/s the field can carry
func encodeVerticalSpeed(ms float64) int8 {
	v := math.Round(ms * 2)
	if v > 124 {
		v = 124
	} else if v < -124 {
		v = -124
	}
	return int8(v)
}

// encodeDirection folds the track direction into the 0..179 wire range.
// The returned flag means "add 180 degrees back".
func encodeDirection(deg float64) (uint8, bool) {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	r := math.Round(deg)
	if r >= 360 {
		r -= 360
	}
	if r >= 180 {
		return uint8(r - 180), true
	}
	return uint8(r), false
}

// accBucket is one row of a monotonic accuracy table: the value qualifies
// for the code if it is within the bound
type accBucket struct {
	boundM float64
	code   uint8
}

// Accuracy tables, tightest bucket first. A value exactly on a bound
// selects the tighter bucket. Code 0 means unknown or worse than the
// loosest bound.
var (
	horizAccBuckets = []accBucket{
		{1, 12}, {3, 11}, {10, 10}, {30, 9}, {92.6, 8}, {185.2, 7},
		{555.6, 6}, {926, 5}, {1852, 4}, {3704, 3}, {7408, 2}, {18520, 1},
	}
	vertAccBuckets = []accBucket{
		{1, 6}, {3, 5}, {10, 4}, {25, 3}, {45, 2}, {150, 1},
	}
	speedAccBuckets = []accBucket{
		{0.3, 4}, {1, 3}, {3, 2}, {10, 1},
	}
)

// bucketCode scans a table from tightest to loosest bound
func bucketCode(table []accBucket, value float64) uint8 {
	if value <= 0 {
		return 0
	}
	for _, b := range table {
		if value <= b.boundM {
			return b.code
		}
	}
	return 0
}

// horizAccuracyCode classifies horizontal accuracy in metres
func horizAccuracyCode(m float64) uint8 {
	return bucketCode(horizAccBuckets, m)
}

// vertAccuracyCode classifies vertical accuracy in metres
func vertAccuracyCode(m float64) uint8 {
	return bucketCode(vertAccBuckets, m)
}

// speedAccuracyCode classifies speed accuracy in metres per second
func speedAccuracyCode(ms float64) uint8 {
	return bucketCode(speedAccBuckets, ms)
}
