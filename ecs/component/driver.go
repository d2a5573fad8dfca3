package component

import "github.com/milk9111/arcadecar/controls"

type DriverKind int

const (
	DriverKeyboard DriverKind = iota
	DriverScript
)

// Driver selects where an entity's controls come from.
type Driver struct {
	Kind     DriverKind
	Keyboard *controls.Keyboard
	Script   *controls.ScriptDriver
	// ScriptName is kept so the tuning system can reload the script.
	ScriptName string
}

var DriverComponent = NewComponent[Driver]()
