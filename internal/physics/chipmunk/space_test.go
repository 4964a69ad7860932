package chipmunk

import (
	"math"
	"testing"

	"github.com/san-kum/dropsim/internal/dynamo"
)

const dt = 1.0 / 60.0

func newTestSpace() *Space {
	s := New()
	s.Configure(dynamo.Vec2{Y: 981})
	s.SetGround(dynamo.Ground{Y: 550, Elasticity: 0.1})
	return s
}

func TestSpaceFreeFall(t *testing.T) {
	s := newTestSpace()
	h := s.AddBody(dynamo.Body{Mass: 4, Radius: 2, Elasticity: 0.5, Position: dynamo.Vec2{X: 400, Y: 100}, Velocity: dynamo.Vec2{X: 10}})

	s.Step(dt)

	b, ok := s.Body(h)
	if !ok {
		t.Fatal("body missing after step")
	}
	if math.Abs(b.Velocity.Y-981*dt) > 1e-6 {
		t.Errorf("vy = %.6f, want %.6f", b.Velocity.Y, 981*dt)
	}
	if b.Position.X <= 400 || b.Position.Y <= 100 {
		t.Errorf("body did not move: %+v", b.Position)
	}
	if b.Mass != 4 || b.Radius != 2 {
		t.Errorf("record fields lost: %+v", b)
	}
}

func TestSpaceGroundContact(t *testing.T) {
	s := newTestSpace()
	h := s.AddBody(dynamo.Body{Mass: 25, Radius: 5, Elasticity: 0.5, Position: dynamo.Vec2{X: 400, Y: 500}})

	contacts := 0
	s.OnGroundContact(func(e dynamo.Engine, got dynamo.Handle) {
		if got != h {
			t.Errorf("contact for unexpected handle %d", got)
		}
		contacts++
	})

	for i := 0; i < 120 && contacts == 0; i++ {
		s.Step(dt)
	}

	if contacts != 1 {
		t.Fatalf("expected exactly one contact in the impact step, got %d", contacts)
	}
	b, _ := s.Body(h)
	if b.Position.Y+b.Radius < 549 {
		t.Errorf("contact reported while above ground: y=%.3f", b.Position.Y)
	}
}

func TestSpaceFragmentInDispatch(t *testing.T) {
	s := newTestSpace()
	parent := s.AddBody(dynamo.Body{Mass: 25, Radius: 5, Elasticity: 0.5, Position: dynamo.Vec2{X: 400, Y: 540}})

	var children []dynamo.Handle
	s.OnGroundContact(func(e dynamo.Engine, h dynamo.Handle) {
		if !e.MarkFragmented(h) {
			return
		}
		b, _ := e.Body(h)
		e.RemoveBody(h)
		for _, dx := range []float64{-10, 10} {
			children = append(children, e.AddBody(dynamo.Body{
				Mass: b.Mass / 2, Radius: b.Radius / 2, Elasticity: b.Elasticity,
				Position: b.Position.Add(dynamo.Vec2{X: dx}), Velocity: b.Velocity,
			}))
		}
	})

	for i := 0; i < 60 && len(children) == 0; i++ {
		s.Step(dt)
	}

	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if _, ok := s.Body(parent); ok {
		t.Error("parent still present after fragmentation")
	}
	refs := s.Bodies()
	if len(refs) != 2 || refs[0].Handle != children[0] || refs[1].Handle != children[1] {
		t.Errorf("unexpected bodies after split: %v", refs)
	}
}

func TestSpaceRemoveIdempotent(t *testing.T) {
	s := newTestSpace()
	h := s.AddBody(dynamo.Body{Mass: 1, Radius: 1, Position: dynamo.Vec2{Y: 100}})

	s.RemoveBody(h)
	s.RemoveBody(h)

	if len(s.Bodies()) != 0 {
		t.Error("expected empty space")
	}
	if s.MarkFragmented(h) {
		t.Error("mark on removed body should fail")
	}
}

func TestSpaceMarkFragmented(t *testing.T) {
	s := newTestSpace()
	h := s.AddBody(dynamo.Body{Mass: 1, Radius: 1, Position: dynamo.Vec2{Y: 100}})

	if !s.MarkFragmented(h) || s.MarkFragmented(h) {
		t.Error("expected check-and-set semantics")
	}
	b, _ := s.Body(h)
	if !b.Fragmented {
		t.Error("flag not reflected in snapshot")
	}
}
