// Package physics provides the native drop engine.
//
// [World] implements [dynamo.Engine] for circular bodies falling onto one
// horizontal ground. Positions and velocities advance through a pluggable
// [dynamo.Integrator]:
//
//	integ, _ := integrators.Get("symplectic")
//	w := physics.NewWorld(integ)
//	w.Configure(dynamo.Vec2{Y: 981})
//	w.SetGround(dynamo.Ground{Y: 550, Elasticity: 0.1})
//
// A contact clamps the body onto the ground and reflects its vertical
// velocity scaled by the product of body and ground elasticity. The
// contact handler runs after the step has moved every body, so changes it
// makes to the world take effect from the next step.
//
// The chipmunk subpackage offers the same contract backed by Chipmunk2D.
package physics
