// Package chipmunk adapts the Chipmunk2D port github.com/jakecoffman/cp to
// the dynamo.Engine contract.
package chipmunk

import (
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/dropsim/internal/dynamo"
)

const (
	ballType   cp.CollisionType = 1
	groundType cp.CollisionType = 2

	// half-length of the ground segment; wide enough to act as infinite
	groundExtent = 1e6
)

type entry struct {
	handle dynamo.Handle
	rec    dynamo.Body
	body   *cp.Body
	shape  *cp.Shape
}

// Space drives a cp.Space. Ground contacts are reported from the post-solve
// callback through a post-step callback keyed by the body, so each body is
// dispatched at most once per step and only after the space has unlocked.
type Space struct {
	space     *cp.Space
	ground    *cp.Shape
	entries   map[dynamo.Handle]*entry
	byBody    map[*cp.Body]*entry
	next      dynamo.Handle
	onContact dynamo.ContactHandler
}

func New() *Space {
	s := &Space{
		space:   cp.NewSpace(),
		entries: make(map[dynamo.Handle]*entry),
		byBody:  make(map[*cp.Body]*entry),
	}
	handler := s.space.NewCollisionHandler(ballType, groundType)
	handler.PostSolveFunc = s.postSolve
	return s
}

func (s *Space) Configure(gravity dynamo.Vec2) {
	s.space.SetGravity(vec(gravity))
}

func (s *Space) SetGround(g dynamo.Ground) {
	if s.ground != nil {
		s.space.RemoveShape(s.ground)
	}
	shape := cp.NewSegment(s.space.StaticBody, cp.Vector{X: -groundExtent, Y: g.Y}, cp.Vector{X: groundExtent, Y: g.Y}, 0)
	shape.SetElasticity(g.Elasticity)
	shape.SetFriction(0)
	shape.SetCollisionType(groundType)
	s.ground = s.space.AddShape(shape)
}

func (s *Space) OnGroundContact(fn dynamo.ContactHandler) { s.onContact = fn }

func (s *Space) AddBody(b dynamo.Body) dynamo.Handle {
	body := cp.NewBody(b.Mass, cp.MomentForCircle(b.Mass, 0, b.Radius, cp.Vector{}))
	body.SetPosition(vec(b.Position))
	body.SetVelocityVector(vec(b.Velocity))

	shape := cp.NewCircle(body, b.Radius, cp.Vector{})
	shape.SetElasticity(b.Elasticity)
	shape.SetCollisionType(ballType)

	s.space.AddBody(body)
	s.space.AddShape(shape)

	s.next++
	e := &entry{handle: s.next, rec: b, body: body, shape: shape}
	s.entries[e.handle] = e
	s.byBody[body] = e
	return e.handle
}

func (s *Space) RemoveBody(h dynamo.Handle) {
	e, ok := s.entries[h]
	if !ok {
		return
	}
	delete(s.entries, h)
	delete(s.byBody, e.body)
	s.space.RemoveShape(e.shape)
	s.space.RemoveBody(e.body)
}

func (s *Space) Body(h dynamo.Handle) (dynamo.Body, bool) {
	e, ok := s.entries[h]
	if !ok {
		return dynamo.Body{}, false
	}
	return e.snapshot(), true
}

func (s *Space) MarkFragmented(h dynamo.Handle) bool {
	e, ok := s.entries[h]
	if !ok || e.rec.Fragmented {
		return false
	}
	e.rec.Fragmented = true
	return true
}

func (s *Space) Len() int { return len(s.entries) }

func (s *Space) Bodies() []dynamo.BodyRef {
	refs := make([]dynamo.BodyRef, 0, len(s.entries))
	for h, e := range s.entries {
		refs = append(refs, dynamo.BodyRef{Handle: h, Body: e.snapshot()})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Handle < refs[j].Handle })
	return refs
}

func (s *Space) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.space.Step(dt)
}

func (s *Space) postSolve(arb *cp.Arbiter, space *cp.Space, _ interface{}) {
	if s.onContact == nil {
		return
	}
	ball, _ := arb.Bodies()
	space.AddPostStepCallback(s.dispatch, ball, nil)
}

func (s *Space) dispatch(_ *cp.Space, key interface{}, _ interface{}) {
	e, ok := s.byBody[key.(*cp.Body)]
	if !ok {
		return
	}
	s.onContact(s, e.handle)
}

func (e *entry) snapshot() dynamo.Body {
	b := e.rec
	p, v := e.body.Position(), e.body.Velocity()
	b.Position = dynamo.Vec2{X: p.X, Y: p.Y}
	b.Velocity = dynamo.Vec2{X: v.X, Y: v.Y}
	return b
}

func vec(v dynamo.Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}
