package physics

import (
	"github.com/san-kum/dropsim/internal/dynamo"
)

type entry struct {
	handle  dynamo.Handle
	body    dynamo.Body
	removed bool
}

// World is the native engine: fixed-step integration of circular bodies
// against a single horizontal ground.
//
// While Step runs the world is locked. Bodies added by the contact handler
// are queued and join the integration on the next step; removed bodies are
// skipped immediately and compacted once the step returns.
type World struct {
	integ     dynamo.Integrator
	gravity   dynamo.Vec2
	ground    *dynamo.Ground
	bodies    []*entry
	pending   []*entry
	index     map[dynamo.Handle]*entry
	next      dynamo.Handle
	locked    bool
	onContact dynamo.ContactHandler
}

func NewWorld(integ dynamo.Integrator) *World {
	return &World{
		integ:  integ,
		bodies: make([]*entry, 0),
		index:  make(map[dynamo.Handle]*entry),
	}
}

func (w *World) Configure(gravity dynamo.Vec2) { w.gravity = gravity }

func (w *World) Gravity() dynamo.Vec2 { return w.gravity }

func (w *World) SetGround(g dynamo.Ground) {
	ground := g
	w.ground = &ground
}

func (w *World) OnGroundContact(fn dynamo.ContactHandler) { w.onContact = fn }

func (w *World) AddBody(b dynamo.Body) dynamo.Handle {
	w.next++
	e := &entry{handle: w.next, body: b}
	w.index[e.handle] = e
	if w.locked {
		w.pending = append(w.pending, e)
	} else {
		w.bodies = append(w.bodies, e)
	}
	return e.handle
}

func (w *World) RemoveBody(h dynamo.Handle) {
	e, ok := w.index[h]
	if !ok {
		return
	}
	delete(w.index, h)
	e.removed = true
	if !w.locked {
		w.flush()
	}
}

func (w *World) Body(h dynamo.Handle) (dynamo.Body, bool) {
	e, ok := w.index[h]
	if !ok {
		return dynamo.Body{}, false
	}
	return e.body, true
}

func (w *World) MarkFragmented(h dynamo.Handle) bool {
	e, ok := w.index[h]
	if !ok || e.body.Fragmented {
		return false
	}
	e.body.Fragmented = true
	return true
}

func (w *World) Len() int { return len(w.index) }

func (w *World) Bodies() []dynamo.BodyRef {
	refs := make([]dynamo.BodyRef, 0, len(w.index))
	for _, list := range [][]*entry{w.bodies, w.pending} {
		for _, e := range list {
			if !e.removed {
				refs = append(refs, dynamo.BodyRef{Handle: e.handle, Body: e.body})
			}
		}
	}
	return refs
}

func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	w.locked = true
	gravity := w.gravity
	accel := func(pos, vel dynamo.Vec2) dynamo.Vec2 { return gravity }

	var contacts []dynamo.Handle
	for _, e := range w.bodies {
		if e.removed {
			continue
		}
		b := &e.body
		b.Position, b.Velocity = w.integ.Step(accel, b.Position, b.Velocity, dt)
		if w.resolveGround(b) {
			contacts = append(contacts, e.handle)
		}
	}

	if w.onContact != nil {
		for _, h := range contacts {
			// an earlier handler in this step may have removed it
			if _, ok := w.index[h]; ok {
				w.onContact(w, h)
			}
		}
	}

	w.locked = false
	w.flush()
}

// resolveGround clamps a body that reached the ground and reflects its
// vertical velocity. It reports whether the body is in contact.
func (w *World) resolveGround(b *dynamo.Body) bool {
	if w.ground == nil {
		return false
	}
	limit := w.ground.Y - b.Radius
	if b.Position.Y < limit {
		return false
	}
	b.Position.Y = limit
	if b.Velocity.Y > 0 {
		b.Velocity.Y = -b.Elasticity * w.ground.Elasticity * b.Velocity.Y
	}
	return true
}

func (w *World) flush() {
	live := w.bodies[:0]
	for _, e := range w.bodies {
		if !e.removed {
			live = append(live, e)
		}
	}
	for _, e := range w.pending {
		if !e.removed {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(w.bodies); i++ {
		w.bodies[i] = nil
	}
	w.bodies = live
	w.pending = w.pending[:0]
}
