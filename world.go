package archon

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// World is the registry root: it owns every archetype, the entity location
// table, the type registry, and the query cache. Nothing in archon is
// package-global; every simulation creates its own World and tears it down
// when done.
type World struct {
	schema     table.Schema
	entryIndex table.EntryIndex

	store archetypeStore

	locations []location
	free      []uint32

	typesByBit [MaxComponents]table.ElementType
	typeCount  int
	registered map[reflect.Type]any

	queryCache map[queryKey][]int
}

// CreateWorld allocates a fresh, empty World.
func CreateWorld() *World {
	w := &World{
		schema:     table.Factory.NewSchema(),
		entryIndex: table.Factory.NewEntryIndex(),
		registered: make(map[reflect.Type]any),
		queryCache: make(map[queryKey][]int),
	}
	w.store.byMask = make(map[mask.Mask]int)
	w.locations = make([]location, 0, Config.initialEntityCapacity)
	return w
}

// DestroyWorld releases every reference a World holds. The World must not be
// used afterward.
func DestroyWorld(w *World) {
	*w = World{}
}

// ComponentType is the handle returned by Register[T]; it is the sole way to
// read, write, or mutate a T on an entity, sidestepping Go's lack of generic
// methods.
type ComponentType[T any] struct {
	elem     table.ElementType
	bit      uint32
	accessor table.Accessor[T]
}

// Bit returns the mask bit assigned to T in this World.
func (c ComponentType[T]) Bit() uint32 { return c.bit }

// Mask returns a single-bit mask.Mask selecting just this component.
func (c ComponentType[T]) Mask() mask.Mask {
	var m mask.Mask
	m.Mark(c.bit)
	return m
}

// ComponentValue pairs a component's identity with a closure that writes a
// caller-supplied value into a specific archetype row. Spawn and AddComponent
// consume these; the value itself is captured by the closure at the moment
// Of is called, so the caller's own copy is never retained.
type ComponentValue struct {
	bit   uint32
	elem  table.ElementType
	write func(tbl table.Table, row int)
}

// Of packages v for use with Spawn/SpawnBatch/AddComponent.
func (c ComponentType[T]) Of(v T) ComponentValue {
	accessor := c.accessor
	return ComponentValue{
		bit:  c.bit,
		elem: c.elem,
		write: func(tbl table.Table, row int) {
			*accessor.Get(row, tbl) = v
		},
	}
}

// Register interns T against w, returning the same ComponentType[T] on every
// call for the same T. The first registration assigns the next free mask
// bit; the 65th distinct type is a fatal contract violation.
func Register[T any](w *World) ComponentType[T] {
	var zero T
	rt := reflect.TypeOf(zero)
	if cached, ok := w.registered[rt]; ok {
		return cached.(ComponentType[T])
	}
	if w.typeCount >= MaxComponents {
		panic(barkAddTrace(ComponentCapacityError{}))
	}

	elem := table.FactoryNewElementType[T]()
	w.schema.Register(elem)

	bit := uint32(w.typeCount)
	w.typeCount++
	w.typesByBit[bit] = elem

	ct := ComponentType[T]{
		elem:     elem,
		bit:      bit,
		accessor: table.FactoryNewAccessor[T](elem),
	}
	w.registered[rt] = ct
	return ct
}

// Get returns a pointer to e's T and true, or (nil, false) if e is dead,
// unregistered, or lacks T.
func (c ComponentType[T]) Get(w *World, e Entity) (*T, bool) {
	loc, ok := w.resolve(e)
	if !ok {
		return nil, false
	}
	rec := w.store.list[loc.archetypeIdx]
	if !rec.hasBit(c.bit) {
		return nil, false
	}
	row := loc.physicalEntry.Index()
	return c.accessor.Get(row, rec.table), true
}

// GetUnchecked returns a pointer to e's T without verifying liveness or
// presence. The caller asserts both preconditions hold.
func (c ComponentType[T]) GetUnchecked(w *World, e Entity) *T {
	loc := &w.locations[e.id]
	rec := w.store.list[loc.archetypeIdx]
	row := loc.physicalEntry.Index()
	return c.accessor.Get(row, rec.table)
}

// Set overwrites e's T in place, returning false if e is dead or lacks T.
func (c ComponentType[T]) Set(w *World, e Entity, v T) bool {
	ptr, ok := c.Get(w, e)
	if !ok {
		return false
	}
	*ptr = v
	return true
}

// Has reports whether e carries a live T.
func (c ComponentType[T]) Has(w *World, e Entity) bool {
	_, ok := c.Get(w, e)
	return ok
}

// Add attaches T to e, migrating its row to the archetype reached by adding
// this bit (or overwriting in place if e already has T).
func (c ComponentType[T]) Add(w *World, e Entity, v T) bool {
	return w.AddComponent(e, c.Of(v))
}

// Remove detaches T from e, migrating its row to the archetype reached by
// removing this bit (or despawning e if that leaves an empty mask).
func (c ComponentType[T]) Remove(w *World, e Entity) bool {
	return w.RemoveComponent(e, c.bit)
}

// HasComponents reports whether e carries every bit set in m.
func HasComponents(w *World, e Entity, m mask.Mask) bool {
	loc, ok := w.resolve(e)
	if !ok {
		return false
	}
	return w.store.list[loc.archetypeIdx].mask.ContainsAll(m)
}

// ComponentMask returns e's full component mask and whether e is alive.
func ComponentMask(w *World, e Entity) (mask.Mask, bool) {
	loc, ok := w.resolve(e)
	if !ok {
		var zero mask.Mask
		return zero, false
	}
	return w.store.list[loc.archetypeIdx].mask, true
}

// maskAndComponents folds a list of ComponentValues into a deduplicated mask
// plus parallel components/bits slices, in first-seen order.
func maskAndComponents(w *World, values []ComponentValue) (mask.Mask, []Component, []uint32) {
	var m mask.Mask
	comps := make([]Component, 0, len(values))
	bits := make([]uint32, 0, len(values))
	seen := [MaxComponents]bool{}
	for _, v := range values {
		if seen[v.bit] {
			continue
		}
		seen[v.bit] = true
		m.Mark(v.bit)
		comps = append(comps, v.elem.(Component))
		bits = append(bits, v.bit)
	}
	return m, comps, bits
}

// Spawn creates a single entity carrying the given component values. The
// values are not checked against w's type registry. With no values (the
// resulting mask is empty), Spawn returns the zero Entity without touching
// any state; see Entity for when that value resolves as live.
func Spawn(w *World, values ...ComponentValue) (Entity, error) {
	m, comps, bits := maskAndComponents(w, values)
	if m.IsEmpty() {
		return Entity{}, nil
	}
	rec, idx, err := w.findOrCreateArchetype(m, comps, bits)
	if err != nil {
		return Entity{}, err
	}
	entries, err := rec.table.NewEntries(1)
	if err != nil {
		return Entity{}, err
	}
	entry := entries[0]
	row := entry.Index()
	for _, v := range values {
		v.write(rec.table, row)
	}
	e := w.allocate()
	w.locations[e.id] = location{archetypeIdx: idx, physicalEntry: entry, generation: e.generation, alive: true}
	*entityColumnAccessor.Get(row, rec.table) = e
	return e, nil
}

// SpawnBatch creates n entities, each carrying a copy of the same component
// values.
func SpawnBatch(w *World, n int, values ...ComponentValue) ([]Entity, error) {
	m, comps, bits := maskAndComponents(w, values)
	if m.IsEmpty() || n <= 0 {
		return nil, nil
	}
	rec, idx, err := w.findOrCreateArchetype(m, comps, bits)
	if err != nil {
		return nil, err
	}
	entries, err := rec.table.NewEntries(n)
	if err != nil {
		return nil, err
	}
	w.ReserveEntities(n)
	out := make([]Entity, n)
	for i, entry := range entries {
		row := entry.Index()
		for _, v := range values {
			v.write(rec.table, row)
		}
		e := w.allocate()
		w.locations[e.id] = location{archetypeIdx: idx, physicalEntry: entry, generation: e.generation, alive: true}
		*entityColumnAccessor.Get(row, rec.table) = e
		out[i] = e
	}
	return out, nil
}

// SpawnWithMask creates n entities with zero-initialized components matching
// m, for callers who will populate columns directly afterward.
func SpawnWithMask(w *World, m mask.Mask, n int) ([]Entity, error) {
	if m.IsEmpty() || n <= 0 {
		return nil, nil
	}
	comps, bits := w.componentsForMask(m)
	rec, idx, err := w.findOrCreateArchetype(m, comps, bits)
	if err != nil {
		return nil, err
	}
	entries, err := rec.table.NewEntries(n)
	if err != nil {
		return nil, err
	}
	w.ReserveEntities(n)
	out := make([]Entity, n)
	for i, entry := range entries {
		row := entry.Index()
		e := w.allocate()
		w.locations[e.id] = location{archetypeIdx: idx, physicalEntry: entry, generation: e.generation, alive: true}
		*entityColumnAccessor.Get(row, rec.table) = e
		out[i] = e
	}
	return out, nil
}

// SpawnBatchWithInit creates n zero-initialized entities matching m, then
// invokes init once per row index so the caller can populate columns via
// Column/ColumnUnchecked.
func SpawnBatchWithInit(w *World, m mask.Mask, n int, init func(row int)) ([]Entity, error) {
	entities, err := SpawnWithMask(w, m, n)
	if err != nil || len(entities) == 0 {
		return entities, err
	}
	for i := range entities {
		loc := &w.locations[entities[i].id]
		init(loc.physicalEntry.Index())
	}
	return entities, nil
}

// componentsForMask rebuilds the (components, bits) pair for every bit set
// in m, using the World's type registry.
func (w *World) componentsForMask(m mask.Mask) ([]Component, []uint32) {
	comps := make([]Component, 0)
	bits := make([]uint32, 0)
	for bit := uint32(0); bit < uint32(w.typeCount); bit++ {
		var bm mask.Mask
		bm.Mark(bit)
		if m.ContainsAll(bm) {
			comps = append(comps, w.typesByBit[bit].(Component))
			bits = append(bits, bit)
		}
	}
	return comps, bits
}

// elementTypeAt returns the registered table.ElementType for bit, or false
// if bit is beyond the number of types registered so far.
func (w *World) elementTypeAt(bit uint32) (table.ElementType, bool) {
	if bit >= uint32(w.typeCount) {
		return nil, false
	}
	return w.typesByBit[bit], true
}

// Despawn removes e from storage and frees its id for reuse, returning false
// if e was already dead.
func Despawn(w *World, e Entity) bool {
	loc, ok := w.resolve(e)
	if !ok {
		return false
	}
	rec := w.store.list[loc.archetypeIdx]
	if _, err := rec.table.DeleteEntries(loc.physicalEntry.Index()); err != nil {
		return false
	}
	w.release(e)
	return true
}

// DespawnBatch despawns every live entity in entities, skipping any already
// dead, and returns how many were actually removed.
func DespawnBatch(w *World, entities ...Entity) int {
	n := 0
	for _, e := range entities {
		if Despawn(w, e) {
			n++
		}
	}
	return n
}

// AddComponent attaches cv to e, overwriting in place if e already has that
// bit, otherwise migrating the row to the archetype reached by adding it.
func (w *World) AddComponent(e Entity, cv ComponentValue) bool {
	loc, ok := w.resolve(e)
	if !ok {
		return false
	}
	rec := w.store.list[loc.archetypeIdx]
	var bm mask.Mask
	bm.Mark(cv.bit)
	if rec.mask.ContainsAll(bm) {
		row := loc.physicalEntry.Index()
		cv.write(rec.table, row)
		return true
	}

	target, targetIdx, err := w.transitionTarget(loc.archetypeIdx, cv.bit, true, cv.elem.(Component))
	if err != nil {
		return false
	}
	oldRow := loc.physicalEntry.Index()
	if err := rec.table.TransferEntries(target.table, oldRow); err != nil {
		return false
	}
	loc.archetypeIdx = targetIdx
	newRow := loc.physicalEntry.Index()
	cv.write(target.table, newRow)
	return true
}

// RemoveComponent detaches the component at bit from e. If that would leave
// an empty mask, e is despawned instead: an empty-mask archetype is not
// representable.
func (w *World) RemoveComponent(e Entity, bit uint32) bool {
	loc, ok := w.resolve(e)
	if !ok {
		return false
	}
	rec := w.store.list[loc.archetypeIdx]
	var bm mask.Mask
	bm.Mark(bit)
	if !rec.mask.ContainsAll(bm) {
		return false
	}

	newMask := rec.mask
	newMask.Unmark(bit)
	if newMask.IsEmpty() {
		return Despawn(w, e)
	}

	target, targetIdx, err := w.transitionTarget(loc.archetypeIdx, bit, false, nil)
	if err != nil {
		return false
	}
	oldRow := loc.physicalEntry.Index()
	if err := rec.table.TransferEntries(target.table, oldRow); err != nil {
		return false
	}
	loc.archetypeIdx = targetIdx
	return true
}
