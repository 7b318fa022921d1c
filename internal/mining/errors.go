package mining

import (
	"errors"
	"fmt"

	"orevein/internal/energy"
)

var (
	ErrAlreadyActive   = errors.New("session_already_active")
	ErrNoActiveSession = errors.New("no_active_session")
	ErrLevelTooLow     = errors.New("auto_mine_locked")
	ErrSceneLocked     = errors.New("scene_locked")
)

// ShortfallError reports a start attempt that could not afford a single
// cycle. It unwraps to energy.ErrInsufficient so callers can match it with
// errors.Is.
type ShortfallError struct {
	Required int64
	Actual   int64
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("insufficient_energy: need %d, have %d", e.Required, e.Actual)
}

func (e *ShortfallError) Unwrap() error { return energy.ErrInsufficient }
