package archon

import "testing"

// TestDeferredDespawn checks that queuing a despawn defers
// its effect until ApplyCommands, leaving EntityCount and sibling liveness
// untouched until then.
func TestDeferredDespawn(t *testing.T) {
	w := CreateWorld()
	position := Register[Position](w)

	e1, _ := Spawn(w, position.Of(Position{X: 1, Y: 1}))
	e2, _ := Spawn(w, position.Of(Position{X: 2, Y: 2}))
	e3, _ := Spawn(w, position.Of(Position{X: 3, Y: 3}))

	buf := CreateCommandBuffer(w)
	buf.QueueDespawn(e2)

	if got := w.EntityCount(); got != 3 {
		t.Fatalf("EntityCount before apply = %d, want 3", got)
	}

	if err := ApplyCommands(buf); err != nil {
		t.Fatalf("ApplyCommands: %v", err)
	}

	if got := w.EntityCount(); got != 2 {
		t.Errorf("EntityCount after apply = %d, want 2", got)
	}
	if IsAlive(w, e2) {
		t.Error("IsAlive(e2) = true, want false")
	}
	if !IsAlive(w, e1) || !IsAlive(w, e3) {
		t.Error("siblings were not left alive")
	}
}

// TestDeferredSpawnAndStructuralMutation exercises QueueSpawn,
// QueueAddComponents, and QueueRemoveComponents replaying in insertion
// order.
func TestDeferredSpawnAndStructuralMutation(t *testing.T) {
	w := CreateWorld()
	position := Register[Position](w)
	velocity := Register[Velocity](w)

	e, _ := Spawn(w, position.Of(Position{X: 1, Y: 1}))

	buf := CreateCommandBuffer(w)
	buf.QueueSpawn(position.Of(Position{X: 9, Y: 9}))
	buf.QueueAddComponents(e, velocity.Mask())

	countBefore := w.EntityCount()
	if err := ApplyCommands(buf); err != nil {
		t.Fatalf("ApplyCommands: %v", err)
	}
	if got := w.EntityCount(); got != countBefore+1 {
		t.Errorf("EntityCount after apply = %d, want %d", got, countBefore+1)
	}
	if !velocity.Has(w, e) {
		t.Error("Has(Velocity) = false after deferred AddComponents")
	}
	pos, ok := position.Get(w, e)
	if !ok || *pos != (Position{X: 1, Y: 1}) {
		t.Errorf("Position after deferred add = %v, %v, want {1 1}, true", pos, ok)
	}

	buf2 := CreateCommandBuffer(w)
	buf2.QueueRemoveComponents(e, velocity.Mask())
	if err := ApplyCommands(buf2); err != nil {
		t.Fatalf("ApplyCommands: %v", err)
	}
	if velocity.Has(w, e) {
		t.Error("Has(Velocity) = true after deferred RemoveComponents")
	}
}

// TestApplyCommandsClearsBuffer ensures a buffer is empty (and thus
// idempotent to re-apply) once ApplyCommands returns.
func TestApplyCommandsClearsBuffer(t *testing.T) {
	w := CreateWorld()
	position := Register[Position](w)
	e, _ := Spawn(w, position.Of(Position{}))

	buf := CreateCommandBuffer(w)
	buf.QueueDespawn(e)
	ApplyCommands(buf)

	countBefore := w.EntityCount()
	if err := ApplyCommands(buf); err != nil {
		t.Fatalf("second ApplyCommands: %v", err)
	}
	if got := w.EntityCount(); got != countBefore {
		t.Errorf("EntityCount changed on re-apply of cleared buffer: %d -> %d", countBefore, got)
	}
}

// TestClearCommandBufferDiscardsWithoutApplying covers ClearCommandBuffer.
func TestClearCommandBufferDiscardsWithoutApplying(t *testing.T) {
	w := CreateWorld()
	position := Register[Position](w)
	e, _ := Spawn(w, position.Of(Position{}))

	buf := CreateCommandBuffer(w)
	buf.QueueDespawn(e)
	ClearCommandBuffer(buf)
	ApplyCommands(buf)

	if !IsAlive(w, e) {
		t.Error("entity despawned despite ClearCommandBuffer before apply")
	}
}

// TestDeferredEquivalence checks that applying a
// sequence of commands through a buffer yields the same final liveness as
// applying the equivalent operations immediately.
func TestDeferredEquivalence(t *testing.T) {
	immediate := CreateWorld()
	posImm := Register[Position](immediate)
	e1, _ := Spawn(immediate, posImm.Of(Position{X: 1}))
	e2, _ := Spawn(immediate, posImm.Of(Position{X: 2}))
	Despawn(immediate, e1)
	e3, _ := Spawn(immediate, posImm.Of(Position{X: 3}))

	deferred := CreateWorld()
	posDef := Register[Position](deferred)
	d1, _ := Spawn(deferred, posDef.Of(Position{X: 1}))
	d2, _ := Spawn(deferred, posDef.Of(Position{X: 2}))
	buf := CreateCommandBuffer(deferred)
	buf.QueueDespawn(d1)
	buf.QueueSpawn(posDef.Of(Position{X: 3}))
	ApplyCommands(buf)

	if immediate.EntityCount() != deferred.EntityCount() {
		t.Errorf("entity counts differ: immediate=%d deferred=%d", immediate.EntityCount(), deferred.EntityCount())
	}
	if IsAlive(immediate, e1) != false || IsAlive(deferred, d1) != false {
		t.Error("despawned entity still alive in one of the worlds")
	}
	if !IsAlive(immediate, e2) || !IsAlive(deferred, d2) {
		t.Error("surviving entity was not left alive in one of the worlds")
	}
	_ = e3
}
