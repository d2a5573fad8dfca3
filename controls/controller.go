// Package controls turns key events and driver scripts into vehicle control
// snapshots.
package controls

import (
	"fmt"
	"strings"

	"github.com/milk9111/arcadecar/vehicle"
)

type Action int

const (
	ActionForward Action = iota
	ActionBackward
	ActionLeft
	ActionRight
)

var actionNames = [...]string{
	ActionForward:  "forward",
	ActionBackward: "backward",
	ActionLeft:     "left",
	ActionRight:    "right",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction accepts the action names used in the controls.keys config map.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("controls: unknown action %q", s)
}

// Controller holds the four control booleans. Pressing a held action or
// releasing a released one does nothing, so repeated key-down events from a
// held key never re-fire.
type Controller struct {
	state vehicle.ControlState
}

func (c *Controller) flag(a Action) *bool {
	switch a {
	case ActionForward:
		return &c.state.Forward
	case ActionBackward:
		return &c.state.Backward
	case ActionLeft:
		return &c.state.Left
	case ActionRight:
		return &c.state.Right
	}
	return nil
}

// Press asserts a, reporting whether it changed.
func (c *Controller) Press(a Action) bool {
	f := c.flag(a)
	if f == nil || *f {
		return false
	}
	*f = true
	return true
}

// Release clears a, reporting whether it changed.
func (c *Controller) Release(a Action) bool {
	f := c.flag(a)
	if f == nil || !*f {
		return false
	}
	*f = false
	return true
}

// Snapshot returns the current controls by value.
func (c *Controller) Snapshot() vehicle.ControlState {
	return c.state
}

func (c *Controller) Reset() {
	c.state = vehicle.ControlState{}
}
