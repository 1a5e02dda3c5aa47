package availability

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
)

func TestIsError(t *testing.T) {
	wrapped := fmt.Errorf("bind: %w", ErrNoDevice)
	if !IsError(wrapped) {
		t.Error("a wrapped availability error must be detected")
	}
	if !errors.Is(wrapped, ErrNoDevice) {
		t.Error("errors.Is must see through the wrapper")
	}
	if IsError(errors.New("no such device")) {
		t.Error("a plain error with the same text is not an availability error")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		err      error
		expected error
	}{
		"busy":      {&os.PathError{Op: "open", Path: "/dev/video0", Err: syscall.EBUSY}, ErrBusy},
		"unplugged": {&os.PathError{Op: "open", Path: "/dev/video0", Err: syscall.ENODEV}, ErrNoDevice},
		"missing":   {&os.PathError{Op: "open", Path: "/dev/video9", Err: syscall.ENOENT}, ErrNoDevice},
		"not v4l2":  {syscall.ENOTTY, ErrUnimplemented},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := Classify(c.err)
			if !errors.Is(err, c.expected) {
				t.Errorf("expected %v in %v", c.expected, err)
			}
			if !errors.Is(err, c.err) {
				t.Errorf("the system error must stay in the chain, got %v", err)
			}
		})
	}

	other := errors.New("permission denied")
	if err := Classify(other); err != other {
		t.Errorf("unexpected wrapping of %v: %v", other, err)
	}
	if err := Classify(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := Classify(ErrBusy); err != ErrBusy {
		t.Errorf("an availability error must not be wrapped again, got %v", err)
	}
}
