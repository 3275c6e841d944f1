package msg

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeAltitudeRoundTrip(t *testing.T) {
	for _, alt := range []float64{-1000, -999.5, -123.25, 0, 0.3, 100, 2200.7, altitudeMaxM} {
		got := decodeAltitude(encodeAltitude(alt))
		assert.InDeltaf(t, alt, got, 0.5, "altitude %v did not survive the round trip", alt)
	}
}

func TestEncodeAltitudeOutOfRange(t *testing.T) {
	assert.Equal(t, altitudeInvalid, encodeAltitude(-1000.1))
	assert.Equal(t, altitudeInvalid, encodeAltitude(altitudeMaxM+1))
}

func TestEncodeSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		wantCode uint8
		wantMult bool
	}{
		{"stationary", 0, 0, false},
		{"walking pace", 1.5, 6, false},
		{"low regime rounding", 10.3, 41, false},
		{"top of low regime", 63.75, 255, false},
		{"just past the breakpoint", 63.76, 0, true},
		{"high regime", 100, 48, true},
		{"top of high regime", 254.25, 254, true},
		{"beyond the cap saturates", 300, 254, true},
		{"negative clamps to zero", -1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, mult := encodeSpeed(tt.speed)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMult, mult)
		})
	}
}

func TestEncodeDirection(t *testing.T) {
	tests := []struct {
		name     string
		deg      float64
		wantCode uint8
		wantEast bool
	}{
		{"north", 0, 0, false},
		{"just west of south", 179, 179, false},
		{"south folds", 180, 0, true},
		{"west folds", 270, 90, true},
		{"wraps at 360", 359.6, 0, false},
		{"negative normalizes", -90, 90, true},
		{"multiple turns", 720 + 45, 45, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, east := encodeDirection(tt.deg)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantEast, east)
		})
	}
}

func TestEncodeVerticalSpeed(t *testing.T) {
	assert.Equal(t, int8(0), encodeVerticalSpeed(0))
	assert.Equal(t, int8(24), encodeVerticalSpeed(12))
	assert.Equal(t, int8(-24), encodeVerticalSpeed(-12))
	assert.Equal(t, int8(124), encodeVerticalSpeed(1000))
	assert.Equal(t, int8(-124), encodeVerticalSpeed(-1000))
}

func TestAccuracyBuckets(t *testing.T) {
	// A value exactly on a bound selects the tighter bucket
	assert.Equal(t, uint8(12), horizAccuracyCode(1.0))
	assert.Equal(t, uint8(12), horizAccuracyCode(0.5))
	assert.Equal(t, uint8(11), horizAccuracyCode(1.01))
	assert.Equal(t, uint8(11), horizAccuracyCode(3.0))
	assert.Equal(t, uint8(8), horizAccuracyCode(92.6))
	assert.Equal(t, uint8(1), horizAccuracyCode(18520))
	assert.Equal(t, uint8(0), horizAccuracyCode(18521))
	assert.Equal(t, uint8(0), horizAccuracyCode(0))

	assert.Equal(t, uint8(6), vertAccuracyCode(1.0))
	assert.Equal(t, uint8(3), vertAccuracyCode(25))
	assert.Equal(t, uint8(1), vertAccuracyCode(150))
	assert.Equal(t, uint8(0), vertAccuracyCode(151))

	assert.Equal(t, uint8(4), speedAccuracyCode(0.3))
	assert.Equal(t, uint8(2), speedAccuracyCode(3))
	assert.Equal(t, uint8(1), speedAccuracyCode(10))
	assert.Equal(t, uint8(0), speedAccuracyCode(10.5))
}

func TestTenthsAfterHour(t *testing.T) {
	ts := time.Date(2024, time.June, 1, 10, 5, 6, 700*int(time.Millisecond), time.UTC)
	assert.Equal(t, uint16(5*600+6*10+7), tenthsAfterHour(ts))

	topOfHour := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, uint16(0), tenthsAfterHour(topOfHour))
}

func TestEpochSeconds(t *testing.T) {
	assert.Equal(t, uint32(0), epochSeconds(remoteIDEpoch))
	assert.Equal(t, uint32(10), epochSeconds(remoteIDEpoch.Add(10*time.Second)))

	// Pre-epoch timestamps clamp to zero rather than wrapping
	assert.Equal(t, uint32(0), epochSeconds(remoteIDEpoch.Add(-time.Hour)))
}

func TestLatLonUnits(t *testing.T) {
	assert.Equal(t, int32(524730000), latLonUnits(52.473))
	assert.Equal(t, int32(134020000), latLonUnits(13.402))
	assert.Equal(t, int32(-1800000000), latLonUnits(-180))
	assert.Equal(t, int32(math.Round(0.00000015*1e7)), latLonUnits(0.00000015))
}
