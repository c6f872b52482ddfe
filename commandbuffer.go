package archon

import (
	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// zeroWrite writes nothing, used for bulk add-by-mask commands that carry
// no per-component value: bulk adds are zero-initialized, like
// SpawnWithMask.
func zeroWrite(table.Table, int) {}

// command is one recorded structural mutation. Apply replays it against a
// live World.
type command interface {
	apply(w *World)
}

type spawnCommand struct {
	values []ComponentValue
}

func (c spawnCommand) apply(w *World) {
	_, _ = Spawn(w, c.values...)
}

type despawnCommand struct {
	entity Entity
}

func (c despawnCommand) apply(w *World) {
	Despawn(w, c.entity)
}

type addComponentsCommand struct {
	entity Entity
	mask   mask.Mask
}

func (c addComponentsCommand) apply(w *World) {
	for bit := uint32(0); bit < uint32(w.typeCount); bit++ {
		var bm mask.Mask
		bm.Mark(bit)
		if !c.mask.ContainsAll(bm) {
			continue
		}
		elem, ok := w.elementTypeAt(bit)
		if !ok {
			continue
		}
		w.AddComponent(c.entity, ComponentValue{
			bit:   bit,
			elem:  elem,
			write: zeroWrite,
		})
	}
}

type removeComponentsCommand struct {
	entity Entity
	mask   mask.Mask
}

func (c removeComponentsCommand) apply(w *World) {
	for bit := uint32(0); bit < uint32(w.typeCount); bit++ {
		var bm mask.Mask
		bm.Mark(bit)
		if !c.mask.ContainsAll(bm) {
			continue
		}
		w.RemoveComponent(c.entity, bit)
	}
}

// CommandBuffer records structural mutations against a world snapshot and
// replays them atomically, in insertion order, so systems can enqueue
// changes during iteration instead of invalidating column views and
// archetype indices mid-loop.
type CommandBuffer struct {
	world    *World
	commands []command
}

// CreateCommandBuffer starts a fresh, empty buffer recording against w.
func CreateCommandBuffer(w *World) *CommandBuffer {
	return &CommandBuffer{world: w}
}

// DestroyCommandBuffer releases a buffer's references. It must not be used
// afterward.
func DestroyCommandBuffer(b *CommandBuffer) {
	b.world = nil
	b.commands = nil
}

// ClearCommandBuffer discards every recorded command without applying them.
func ClearCommandBuffer(b *CommandBuffer) {
	b.commands = b.commands[:0]
}

// QueueSpawn records a deferred Spawn. The component values are copied into
// the command at record time -- the caller's own memory is never retained.
func (b *CommandBuffer) QueueSpawn(values ...ComponentValue) {
	b.commands = append(b.commands, spawnCommand{values: append([]ComponentValue{}, values...)})
}

// QueueDespawn records a deferred Despawn.
func (b *CommandBuffer) QueueDespawn(e Entity) {
	b.commands = append(b.commands, despawnCommand{entity: e})
}

// QueueAddComponents records a deferred bulk add: every bit set in m is
// attached to e, zero-initialized, as one single-component migration per
// bit at apply time. A dead entity or an already-present bit is silently
// skipped, never aborting the rest of the bits.
func (b *CommandBuffer) QueueAddComponents(e Entity, m mask.Mask) {
	b.commands = append(b.commands, addComponentsCommand{entity: e, mask: m})
}

// QueueRemoveComponents records a deferred bulk remove, mirroring
// QueueAddComponents.
func (b *CommandBuffer) QueueRemoveComponents(e Entity, m mask.Mask) {
	b.commands = append(b.commands, removeComponentsCommand{entity: e, mask: m})
}

// ApplyCommands replays every recorded command in insertion order against
// the buffer's world, then clears the buffer.
func ApplyCommands(b *CommandBuffer) error {
	for _, c := range b.commands {
		c.apply(b.world)
	}
	b.commands = b.commands[:0]
	return nil
}
