// internal/lpuart/errors.go
package lpuart

import "errors"

var (
	// ErrInvalid is returned for a malformed argument (e.g. a nil ioctl buffer).
	ErrInvalid = errors.New("lpuart: invalid argument")

	// ErrNotTTY is returned for ioctl commands the driver does not implement.
	ErrNotTTY = errors.New("lpuart: inappropriate ioctl for device")

	// ErrBadFormat is returned when the line format cannot be programmed.
	ErrBadFormat = errors.New("lpuart: unsupported line format")

	// ErrBaudUnreachable is returned when no divisor pair hits the baud within tolerance.
	ErrBaudUnreachable = errors.New("lpuart: baud rate unreachable")
)
