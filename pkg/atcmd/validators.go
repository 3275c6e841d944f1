package atcmd

import (
	"bytes"
	"time"
)

// Reply markers used by the companion module's command protocol
var (
	markerOK     = []byte("OK\r\n")
	markerError  = []byte("ERROR")
	markerError2 = []byte("Error")
)

// Contains builds a validator that completes once the data contains any of
// the given markers. In streaming mode the retained tail keeps a marker
// split across polls visible.
func Contains(markers ...string) Validator {
	bs := make([][]byte, len(markers))
	for i, m := range markers {
		bs[i] = []byte(m)
	}
	return func(data []byte, _ time.Duration) bool {
		for _, m := range bs {
			if bytes.Contains(data, m) {
				return true
			}
		}
		return false
	}
}

// ExpectOK completes on the module's final result line, either OK or an
// error marker. Use IsCommandError on the result data to tell them apart.
func ExpectOK() Validator {
	return Contains(string(markerOK), string(markerError), string(markerError2))
}

// ExpectBanner completes on the module's unsolicited ready banner
func ExpectBanner(banner string) Validator {
	return Contains(banner)
}

// IsCommandError reports whether a completed reply carried an error marker
func IsCommandError(data []byte) bool {
	return bytes.Contains(data, markerError) || bytes.Contains(data, markerError2)
}
