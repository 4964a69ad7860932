// Package dynamo provides the core primitives shared by the simulation.
//
//   - [Vec2]: screen-space vector (+Y down)
//   - [Body]: dynamic circular body with a first-class Fragmented flag
//   - [Params]: user parameters validated once per session
//   - [Engine]: rigid-body world capability (native or Chipmunk backed)
//   - [Renderer]: draw-call sink used by the live views
//
// # Example
//
//	world := physics.NewWorld(integrators.NewSymplecticEuler())
//	s := sim.New(world, sim.DefaultConfig())
//	if err := s.Start(params); err != nil {
//	    // errors.Is(err, dynamo.ErrValidation)
//	}
//	for running, _ := s.Frame(); running; running, _ = s.Frame() {
//	}
//
// # Thread Safety
//
// Engines and sessions are NOT thread-safe. Run independent sessions in
// parallel with experiment.Ensemble, each owning its own engine.
package dynamo
