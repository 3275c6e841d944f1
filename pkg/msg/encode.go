package msg

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/godfreynolan/remoteid/pkg/types"
)

// Location message constants
const (
	statusAirborne = 2 // operational status nibble
	tsAccuracy     = 1 // timestamp accuracy nibble, 0.1s
)

// System message flags: operator location is the takeoff point,
// classification region EU
const systemFlags = 1 << 2

// assemble wraps a 24-byte message body into the full advertisement
// payload: fixed prefix, counter byte, then the type/version header byte
func assemble(t Type, counter uint8, body []byte) Frame {
	buf := make([]byte, 0, len(adPrefix)+2+bodyLen)
	buf = append(buf, adPrefix...)
	buf = append(buf, counter, byte(t)<<4|protocolVersion)
	buf = append(buf, body...)
	return Frame{Type: t, Payload: hex.EncodeToString(buf)}
}

// EncodeBasicID encodes a Basic ID message carrying one identifier of the
// given kind. The identifier is null-padded to its fixed 20-byte field; a
// longer identifier is a length violation and leaves the counter untouched.
func EncodeBasicID(c *Counters, idType types.IDType, uaType types.UAType, id string) (Frame, error) {
	if len(id) > maxIDLen {
		return Frame{}, &LengthError{Field: "UAS ID", Limit: maxIDLen, Got: len(id)}
	}

	body := make([]byte, bodyLen)
	body[0] = byte(idType)<<4 | byte(uaType)&0x0F
	copy(body[1:1+maxIDLen], id)

	return assemble(TypeBasicID, c.next(TypeBasicID), body), nil
}

// EncodeLocation encodes the Location/Vector message from a fix. Pressure
// altitude and height above takeoff are not measured by this system and
// encode as unknown; the geodetic altitude carries the fix altitude.
func EncodeLocation(c *Counters, fix types.LocationFix) Frame {
	track, east := encodeDirection(fix.HeadingMotionDeg)
	speed, mult := encodeSpeed(fix.GroundSpeedMS)

	flags := byte(statusAirborne) << 4
	if east {
		flags |= 1 << 1
	}
	if mult {
		flags |= 1
	}

	body := make([]byte, bodyLen)
	body[0] = flags
	body[1] = track
	body[2] = speed
	body[3] = byte(encodeVerticalSpeed(fix.VerticalSpeedMS))
	binary.LittleEndian.PutUint32(body[4:8], uint32(latLonUnits(fix.Latitude)))
	binary.LittleEndian.PutUint32(body[8:12], uint32(latLonUnits(fix.Longitude)))
	binary.LittleEndian.PutUint16(body[12:14], altitudeInvalid)
	binary.LittleEndian.PutUint16(body[14:16], encodeAltitude(fix.AltitudeM))
	binary.LittleEndian.PutUint16(body[16:18], altitudeInvalid)
	body[18] = vertAccuracyCode(fix.VertAccM)<<4 | horizAccuracyCode(fix.HorizAccM)
	body[19] = speedAccuracyCode(fix.SpeedAccMS) // baro accuracy unknown in the high nibble
	binary.LittleEndian.PutUint16(body[20:22], tenthsAfterHour(fix.TimestampUTC))
	body[22] = tsAccuracy

	return assemble(TypeLocation, c.next(TypeLocation), body)
}

// EncodeAuthPage encodes one page of the fixed three-page Authentication
// message. data is the complete opaque authentication payload; the page's
// slice of it is selected here. Page 0 increments the Auth counter,
// continuation pages reuse its value so receivers see one message.
func EncodeAuthPage(c *Counters, authType uint8, page int, data []byte, ts time.Time) (Frame, error) {
	if page < 0 || page > authLastPage {
		return Frame{}, fmt.Errorf("auth page %d out of range 0..%d", page, authLastPage)
	}
	if len(data) > maxAuthDataLen {
		return Frame{}, &LengthError{Field: "auth data", Limit: maxAuthDataLen, Got: len(data)}
	}

	body := make([]byte, bodyLen)
	body[0] = authType<<4 | uint8(page)&0x0F

	var counter uint8
	if page == 0 {
		counter = c.next(TypeAuth)
		body[1] = authLastPage
		body[2] = uint8(len(data))
		binary.LittleEndian.PutUint32(body[3:7], epochSeconds(ts))
		copy(body[7:], authPageSlice(data, 0))
	} else {
		counter = c.Current(TypeAuth)
		copy(body[1:], authPageSlice(data, page))
	}

	return assemble(TypeAuth, counter, body), nil
}

// EncodeAuthPages encodes all three pages at once
func EncodeAuthPages(c *Counters, authType uint8, data []byte, ts time.Time) ([]Frame, error) {
	frames := make([]Frame, 0, authLastPage+1)
	for page := 0; page <= authLastPage; page++ {
		f, err := EncodeAuthPage(c, authType, page, data, ts)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// authPageSlice returns the portion of the auth payload carried by a page
func authPageSlice(data []byte, page int) []byte {
	var start, size int
	if page == 0 {
		start, size = 0, authPage0Data
	} else {
		start = authPage0Data + (page-1)*authPageData
		size = authPageData
	}
	if start >= len(data) {
		return nil
	}
	end := start + size
	if end > len(data) {
		end = len(data)
	}
	return data[start:end]
}

// EncodeSelfID encodes the Self ID free text message, null-padded to its
// fixed 23-byte field
func EncodeSelfID(c *Counters, descType types.DescriptionType, text string) (Frame, error) {
	if len(text) > maxSelfIDLen {
		return Frame{}, &LengthError{Field: "self ID text", Limit: maxSelfIDLen, Got: len(text)}
	}

	body := make([]byte, bodyLen)
	body[0] = byte(descType)
	copy(body[1:], text)

	return assemble(TypeSelfID, c.next(TypeSelfID), body), nil
}

// EncodeSystem encodes the System message from the fixed operator and
// operating-area parameters
func EncodeSystem(c *Counters, op types.Operator, now time.Time) Frame {
	body := make([]byte, bodyLen)
	body[0] = systemFlags
	binary.LittleEndian.PutUint32(body[1:5], uint32(latLonUnits(op.Latitude)))
	binary.LittleEndian.PutUint32(body[5:9], uint32(latLonUnits(op.Longitude)))
	binary.LittleEndian.PutUint16(body[9:11], op.AreaCount)
	body[11] = areaRadiusUnits(op.AreaRadiusM)
	binary.LittleEndian.PutUint16(body[12:14], encodeAltitude(op.AreaCeilingM))
	binary.LittleEndian.PutUint16(body[14:16], encodeAltitude(op.AreaFloorM))
	body[16] = op.CategoryEU<<4 | op.ClassEU&0x0F
	binary.LittleEndian.PutUint16(body[17:19], encodeAltitude(op.AltitudeM))
	binary.LittleEndian.PutUint32(body[19:23], epochSeconds(now))

	return assemble(TypeSystem, c.next(TypeSystem), body)
}

// EncodeOperatorID encodes the Operator ID message, null-padded to its
// fixed 20-byte field
func EncodeOperatorID(c *Counters, idType types.OperatorIDType, id string) (Frame, error) {
	if len(id) > maxIDLen {
		return Frame{}, &LengthError{Field: "operator ID", Limit: maxIDLen, Got: len(id)}
	}

	body := make([]byte, bodyLen)
	body[0] = byte(idType)
	copy(body[1:1+maxIDLen], id)

	return assemble(TypeOperatorID, c.next(TypeOperatorID), body), nil
}

// areaRadiusUnits scales the operating-area radius to its 10m wire unit
func areaRadiusUnits(m float64) uint8 {
	v := math.Round(m / 10)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
