package component

import "github.com/milk9111/arcadecar/physics"

// PhysicsBody stores the rigid body and the config it was built from.
type PhysicsBody struct {
	Body   *physics.Body
	Config physics.BodyConfig
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
