/*
Package archon provides an archetype-based Entity-Component-System storage
engine for data-oriented simulation.

archon keeps entities that share the same set of component types packed into
the same contiguous storage table ("archetype"), so systems can iterate dense
per-component columns instead of chasing pointers. Structural changes (adding
or removing a component) migrate a single row from one archetype to another;
everything else is a cache hit.

Core Concepts:

  - Entity: a generational (id, generation) handle. ABA-safe: a stale handle
    to a despawned-and-reused id is detectably dead.
  - Component: a plain data type, registered once per World via Register.
  - Archetype: the storage table for all entities sharing one component mask.
  - World: owns every archetype, the entity location table, and the query
    cache. Nothing is package-global; create a fresh World per simulation.
  - Tags: sparse, name-keyed entity sets independent of the component mask.
  - EventQueue[T]: a double-buffered, per-type mailbox for frame-coherent
    event visibility.
  - CommandBuffer: defers structural mutations (spawn/despawn/add/remove)
    so systems can enqueue changes mid-iteration instead of invalidating
    column views.

Basic Usage:

	import "github.com/TheBitDrifter/mask"

	w := archon.CreateWorld()

	position := archon.Register[Position](w)
	velocity := archon.Register[Velocity](w)

	e, _ := archon.Spawn(w, position.Of(Position{X: 1, Y: 2}), velocity.Of(Velocity{X: 3, Y: 4}))

	both := position.Mask()
	both.Mark(velocity.Bit())

	var none mask.Mask
	for _, idx := range archon.GetMatchingArchetypes(w, both, none) {
		pos := archon.Column[Position](w, idx, position.Bit())
		vel := archon.Column[Velocity](w, idx, velocity.Bit())
		for i := range pos {
			pos[i].X += vel[i].X
			pos[i].Y += vel[i].Y
		}
	}

	_ = e

archon is a library: no persistence, no process-wide state, no implicit
parallelism. Hosts write systems; archon moves the data.
*/
package archon
