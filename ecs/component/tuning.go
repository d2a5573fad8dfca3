package component

import "image/color"

// Tuning records which prefab a vehicle was built from so it can be rebuilt
// when the file changes.
type Tuning struct {
	Prefab string
	Color  color.Color
	// Revision counts rebuilds.
	Revision int
}

var TuningComponent = NewComponent[Tuning]()
