package beacon

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godfreynolan/remoteid/pkg/atcmd"
	"github.com/godfreynolan/remoteid/pkg/msg"
	"github.com/godfreynolan/remoteid/pkg/radio"
	"github.com/godfreynolan/remoteid/pkg/transport"
	"github.com/godfreynolan/remoteid/pkg/types"
)

func testFix() types.LocationFix {
	return types.LocationFix{
		TimestampUTC:     time.Date(2024, time.June, 1, 10, 5, 6, 700*int(time.Millisecond), time.UTC),
		Latitude:         52.473,
		Longitude:        13.402,
		AltitudeM:        100.0,
		GroundSpeedMS:    12.0,
		HeadingMotionDeg: 270.0,
		HorizAccM:        2.0,
	}
}

func testBeaconConfig() Config {
	return Config{
		Identity: types.Identity{
			SerialNumber:   "INTCJ123-4567-890",
			RegistrationID: "FA12345897",
			UAType:         types.UATypeHelicopter,
		},
		Operator: types.Operator{
			OperatorID:   "FIN87astrdge12k8",
			SelfIDText:   "survey flight",
			Latitude:     52.4,
			Longitude:    13.3,
			AltitudeM:    35.0,
			AreaCount:    1,
			AreaRadiusM:  250,
			AreaCeilingM: 120,
		},
		AuthData: []byte("sample auth payload"),
		AuthType: 1,
	}
}

// newTestBeacon wires the full stack over a scripted mock link and brings
// the radio into advertiser mode
func newTestBeacon(t *testing.T, cfg Config, responder func([]byte) [][]byte) (*Beacon, *transport.MockLink) {
	t.Helper()

	link := transport.NewMockLink()
	link.SetBootBanner([]byte("ready\r\n"))
	link.SetResponder(responder)

	engine := atcmd.NewEngine(link, atcmd.Config{}, nil)
	radioCfg := radio.Config{
		BannerTimeout:   200 * time.Millisecond,
		AckTimeout:      100 * time.Millisecond,
		PowerCycleDelay: time.Millisecond,
	}
	r := radio.NewRadioLink(engine, link, radioCfg, nil)

	b, err := New(r, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, b.Initialize(context.Background()))
	return b, link
}

// okModule acknowledges everything; AT+RESTORE also reboots into a banner
func okModule(written []byte) [][]byte {
	if strings.HasPrefix(string(written), "AT+RESTORE") {
		return [][]byte{[]byte("\r\nOK\r\n"), []byte("ready\r\n")}
	}
	return [][]byte{[]byte("\r\nOK\r\n")}
}

// advDataWrites filters the captured writes down to set-advertisement-data
// commands and returns their decoded payloads
func advDataWrites(t *testing.T, link *transport.MockLink) [][]byte {
	t.Helper()

	var payloads [][]byte
	for _, w := range link.Writes() {
		line := strings.TrimSuffix(string(w), "\r\n")
		if !strings.HasPrefix(line, `AT+BLEADVDATA="`) {
			continue
		}
		hexStr := strings.TrimSuffix(strings.TrimPrefix(line, `AT+BLEADVDATA="`), `"`)
		raw, err := hex.DecodeString(hexStr)
		require.NoError(t, err)
		payloads = append(payloads, raw)
	}
	return payloads
}

func TestBroadcastRound(t *testing.T) {
	b, link := newTestBeacon(t, testBeaconConfig(), okModule)

	require.NoError(t, b.BroadcastRound(context.Background(), testFix()))

	payloads := advDataWrites(t, link)
	require.Len(t, payloads, 9, "one round is exactly nine frames")

	// Fixed round order by type nibble: BasicID twice, Location, three
	// Auth pages, SelfID, System, OperatorID
	wantTypes := []msg.Type{
		msg.TypeBasicID, msg.TypeBasicID, msg.TypeLocation,
		msg.TypeAuth, msg.TypeAuth, msg.TypeAuth,
		msg.TypeSelfID, msg.TypeSystem, msg.TypeOperatorID,
	}
	for i, raw := range payloads {
		require.Lenf(t, raw, 31, "frame %d", i)
		assert.Equalf(t, wantTypes[i], msg.Type(raw[6]>>4), "frame %d type", i)
	}

	// Auth continuation pages carry ascending page numbers under one
	// counter value
	for page := 0; page <= 2; page++ {
		raw := payloads[3+page]
		assert.Equal(t, uint8(0), raw[5])
		assert.Equal(t, byte(1<<4|page), raw[7])
	}

	stats := b.Statistics()
	assert.Equal(t, uint64(1), stats.Rounds)
	assert.Equal(t, uint64(9), stats.FramesSent)
	assert.Equal(t, uint64(0), stats.FrameTimeouts)
}

func TestBroadcastRoundCountersAdvance(t *testing.T) {
	b, _ := newTestBeacon(t, testBeaconConfig(), okModule)

	require.NoError(t, b.BroadcastRound(context.Background(), testFix()))
	require.NoError(t, b.BroadcastRound(context.Background(), testFix()))

	c := b.Counters()
	// Two Basic ID variants per round
	assert.Equal(t, uint8(3), c.Current(msg.TypeBasicID))
	assert.Equal(t, uint8(1), c.Current(msg.TypeLocation))
	assert.Equal(t, uint8(1), c.Current(msg.TypeAuth))
	assert.Equal(t, uint8(1), c.Current(msg.TypeSelfID))
	assert.Equal(t, uint8(1), c.Current(msg.TypeSystem))
	assert.Equal(t, uint8(1), c.Current(msg.TypeOperatorID))
}

func TestBroadcastRoundContinuesAfterTimeout(t *testing.T) {
	advSeen := 0
	b, link := newTestBeacon(t, testBeaconConfig(), func(written []byte) [][]byte {
		if strings.HasPrefix(string(written), `AT+BLEADVDATA=`) {
			advSeen++
			if advSeen == 3 {
				return nil // the Location frame gets no reply
			}
		}
		return okModule(written)
	})

	require.NoError(t, b.BroadcastRound(context.Background(), testFix()))

	// The timed-out frame does not stop the round
	assert.Len(t, advDataWrites(t, link), 9)

	stats := b.Statistics()
	assert.Equal(t, uint64(1), stats.Rounds)
	assert.Equal(t, uint64(9), stats.FramesSent)
	assert.Equal(t, uint64(1), stats.FrameTimeouts)
}

func TestBroadcastRoundAbortsOnEncoderError(t *testing.T) {
	cfg := testBeaconConfig()
	cfg.Operator.SelfIDText = "this description is way too long" // over 23 bytes

	b, link := newTestBeacon(t, cfg, okModule)

	err := b.BroadcastRound(context.Background(), testFix())
	require.ErrorIs(t, err, msg.ErrLengthViolation)

	// Everything before the failing Self ID frame went out, nothing after
	assert.Len(t, advDataWrites(t, link), 6)

	stats := b.Statistics()
	assert.Equal(t, uint64(0), stats.Rounds, "an aborted round does not count")
	assert.Equal(t, uint64(6), stats.FramesSent)

	// The Self ID counter was never consumed
	assert.Equal(t, uint8(0xFF), b.Counters().Current(msg.TypeSelfID))
}

func TestRunBroadcastsPerFix(t *testing.T) {
	b, link := newTestBeacon(t, testBeaconConfig(), okModule)

	fixes := make(chan types.LocationFix, 2)
	fixes <- testFix()
	fixes <- testFix()
	close(fixes)

	require.NoError(t, b.Run(context.Background(), fixes))
	assert.Len(t, advDataWrites(t, link), 18)
	assert.Equal(t, uint64(2), b.Statistics().Rounds)
}

func TestRunStopsOnCancel(t *testing.T) {
	b, _ := newTestBeacon(t, testBeaconConfig(), okModule)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Run(ctx, make(chan types.LocationFix))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsEmptySerial(t *testing.T) {
	cfg := testBeaconConfig()
	cfg.Identity.SerialNumber = ""

	_, err := New(nil, cfg, nil)
	require.Error(t, err)
}

func TestClosePowersDown(t *testing.T) {
	b, link := newTestBeacon(t, testBeaconConfig(), okModule)

	require.NoError(t, b.Close())
	assert.False(t, link.Enabled())
}
