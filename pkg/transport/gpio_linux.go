//go:build linux

package transport

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// GPIO character device handle ioctls (uapi/linux/gpio.h, v1 handle API)
const (
	gpioHandleRequestOutput = 0x02

	// _IOWR(0xB4, 0x03, struct gpiohandle_request), sizeof = 364
	gpioGetLineHandleIoctl = 0xc16cb403
	// _IOWR(0xB4, 0x09, struct gpiohandle_data), sizeof = 64
	gpioHandleSetLineValuesIoctl = 0xc040b409
)

// gpiohandle_request from uapi/linux/gpio.h
type gpioHandleRequest struct {
	LineOffsets   [64]uint32
	Flags         uint32
	DefaultValues [64]uint8
	ConsumerLabel [32]byte
	Lines         uint32
	Fd            int32
}

// gpiohandle_data from uapi/linux/gpio.h
type gpioHandleData struct {
	Values [64]uint8
}

// GPIOPin is a PowerPin on a Linux GPIO character device line, requested as
// an output and held for the lifetime of the pin.
type GPIOPin struct {
	lineFd int
}

// NewGPIOPin requests the given line of a GPIO chip (e.g. "/dev/gpiochip0")
// as an output, initially driven low.
func NewGPIOPin(chip string, line uint32) (*GPIOPin, error) {
	chipFd, err := unix.Open(chip, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", chip, err)
	}
	defer unix.Close(chipFd)

	req := gpioHandleRequest{
		Flags: gpioHandleRequestOutput,
		Lines: 1,
	}
	req.LineOffsets[0] = line
	copy(req.ConsumerLabel[:], "remoteid-power")

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(chipFd),
		gpioGetLineHandleIoctl, uintptr(unsafe.Pointer(&req))); errno != 0 {
		return nil, fmt.Errorf("request line %d on %s: %w", line, chip, errno)
	}

	return &GPIOPin{lineFd: int(req.Fd)}, nil
}

// Set drives the line high or low
func (p *GPIOPin) Set(high bool) error {
	var data gpioHandleData
	if high {
		data.Values[0] = 1
	}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(p.lineFd),
		gpioHandleSetLineValuesIoctl, uintptr(unsafe.Pointer(&data))); errno != 0 {
		return fmt.Errorf("set line value: %w", errno)
	}
	return nil
}

// Close releases the line handle
func (p *GPIOPin) Close() error {
	return unix.Close(p.lineFd)
}
