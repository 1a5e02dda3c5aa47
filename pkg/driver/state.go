package driver

import "fmt"

// State represents driver's state
type State string

const (
	// StateClosed means that the driver has not been opened. In this state,
	// the supported frame formats and sizes are still unknown.
	StateClosed State = "closed"
	// StateOpened means that the driver is already opened and its properties
	// may be queried.
	StateOpened State = "opened"
	// StateRunning means that the driver is producing frames. The caller
	// who started the driver may start reading from it.
	StateRunning State = "running"
)

// Update updates current state, s, to next. If f fails to execute,
// s will stay unchanged. Otherwise, s will be updated to next
func (s *State) Update(next State, f func() error) error {
	var check func() error
	switch next {
	case StateOpened:
		check = s.toOpened
	case StateClosed:
		check = s.toClosed
	case StateRunning:
		check = s.toRunning
	default:
		return fmt.Errorf("invalid state: %q", next)
	}

	if err := check(); err != nil {
		return err
	}

	err := f()
	if err == nil {
		*s = next
	}
	return err
}

func (s *State) toOpened() error {
	if *s != StateClosed {
		return fmt.Errorf("invalid state: driver is already opened")
	}
	return nil
}

func (s *State) toClosed() error {
	if *s == StateClosed {
		return fmt.Errorf("invalid state: driver is already closed")
	}
	return nil
}

func (s *State) toRunning() error {
	if *s == StateClosed {
		return fmt.Errorf("invalid state: driver is closed")
	}

	if *s == StateRunning {
		return fmt.Errorf("invalid state: driver is already running")
	}

	return nil
}
