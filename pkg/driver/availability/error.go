// Package availability holds errors reported when a capture device can't be
// used.
package availability

import (
	"errors"
	"fmt"
	"syscall"
)

// Error is a reason a device is unavailable. Errors are compared by identity.
type Error struct {
	reason string
}

var (
	ErrUnimplemented = NewError("not implemented")
	ErrBusy          = NewError("device or resource busy")
	ErrNoDevice      = NewError("no such device")
)

func NewError(reason string) error {
	return &Error{reason: reason}
}

func (e *Error) Error() string {
	return e.reason
}

// IsError reports whether err is, or wraps, an availability error.
func IsError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}

// Classify tags a system error returned while opening a device with the
// availability error it stands for. err stays in the chain. Errors with no
// matching availability error are returned unchanged.
func Classify(err error) error {
	var reason error
	switch {
	case err == nil || IsError(err):
		return err
	case errors.Is(err, syscall.EBUSY):
		reason = ErrBusy
	case errors.Is(err, syscall.ENODEV), errors.Is(err, syscall.ENOENT), errors.Is(err, syscall.ENXIO):
		reason = ErrNoDevice
	case errors.Is(err, syscall.ENOTTY), errors.Is(err, syscall.EINVAL):
		reason = ErrUnimplemented
	default:
		return err
	}
	return fmt.Errorf("%w: %w", reason, err)
}
