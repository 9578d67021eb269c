// Package process terminates browser process trees left behind by the
// renderer.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID is returned for PIDs that would target the caller's own
// process group or no process at all.
var ErrInvalidPID = errors.New("invalid pid")

// KillProcessGroup kills pid and all of its children.
func KillProcessGroup(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killTree(pid)
}
