package archon

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// tableEntry is the physical row handle handed out by the backing
// table.Table/table.EntryIndex machinery. It stays valid (and current) across
// TransferEntries/DeleteEntries, which is why location never needs to
// re-fetch it after a structural mutation.
type tableEntry = table.Entry

// entityColumnType is a hidden column present in every archetype's table,
// carrying the owning Entity value at each row. Because it is a real column
// like any other, table.Table's own swap-remove and TransferEntries keep it
// in lockstep with every structural mutation for free -- archon never
// hand-maintains a parallel entities slice.
var entityColumnType = table.FactoryNewElementType[Entity]()
var entityColumnAccessor = table.FactoryNewAccessor[Entity](entityColumnType)
var entityGoType = reflect.TypeOf(Entity{})

// archetypeRecord is the storage for one distinct component mask: a table of
// columns (one per component, plus the hidden entity column) and the
// memoized add/remove transition graph.
type archetypeRecord struct {
	mask       mask.Mask
	table      table.Table
	components []Component
	bits       []uint32

	// bitToRow memoizes each component bit's row-group index inside
	// table.Rows(), or -1 if not yet resolved / absent. Resolution matches
	// the column's element type against the bit's registered type, so the
	// table is free to order its rows however it likes.
	bitToRow [MaxComponents]int

	// entityRow memoizes the hidden Entity column's row-group index, -1
	// until first resolved.
	entityRow int

	// addEdges[b] / removeEdges[b] name the archetype index reached by
	// adding/removing bit b, or -1 if not yet resolved.
	addEdges    [MaxComponents]int
	removeEdges [MaxComponents]int
}

// archetypeStore holds every archetype a World has ever created. Indices are
// stable for the World's lifetime: archetypes are never reordered or freed.
type archetypeStore struct {
	byMask map[mask.Mask]int
	list   []*archetypeRecord
}

// findOrCreateArchetype returns the archetype for mask m, creating it (and
// wiring eager transition edges against every existing archetype one bit
// away) if it does not already exist.
func (w *World) findOrCreateArchetype(m mask.Mask, comps []Component, bits []uint32) (*archetypeRecord, int, error) {
	if idx, ok := w.store.byMask[m]; ok {
		return w.store.list[idx], idx, nil
	}

	w.schema.Register(entityColumnType)

	elementTypes := make([]table.ElementType, 0, len(comps)+1)
	elementTypes = append(elementTypes, entityColumnType)
	for _, c := range comps {
		elementTypes = append(elementTypes, c)
	}

	tbl, err := table.NewTableBuilder().
		WithSchema(w.schema).
		WithEntryIndex(w.entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, 0, ArchetypeBuildError{Mask: fmt.Sprintf("%v", m), Err: err}
	}

	rec := &archetypeRecord{
		mask:       m,
		table:      tbl,
		components: append([]Component{}, comps...),
		bits:       append([]uint32{}, bits...),
	}
	rec.entityRow = -1
	for i := range rec.bitToRow {
		rec.bitToRow[i] = -1
	}
	for i := range rec.addEdges {
		rec.addEdges[i] = -1
		rec.removeEdges[i] = -1
	}

	idx := len(w.store.list)
	w.store.list = append(w.store.list, rec)
	w.store.byMask[m] = idx

	for i, other := range w.store.list[:idx] {
		bit, ok := diffByOneBit(other.mask, m)
		if !ok {
			continue
		}
		var bm mask.Mask
		bm.Mark(bit)
		if other.mask.ContainsAll(bm) {
			// other has the bit, the new archetype doesn't: other --remove(bit)--> new
			other.removeEdges[bit] = idx
			rec.addEdges[bit] = i
		} else {
			// the new archetype has the bit, other doesn't: other --add(bit)--> new
			other.addEdges[bit] = idx
			rec.removeEdges[bit] = i
		}
	}

	w.onArchetypeCreated(idx, m)

	return rec, idx, nil
}

// diffByOneBit reports whether masks a and b differ by exactly one bit, and
// which bit that is. It only relies on Mark/ContainsAll, since mask.Mask
// exposes no bitwise-difference primitive directly.
func diffByOneBit(a, b mask.Mask) (uint32, bool) {
	var diffBit uint32
	diffCount := 0
	for bit := uint32(0); bit < MaxComponents; bit++ {
		var bm mask.Mask
		bm.Mark(bit)
		aHas := a.ContainsAll(bm)
		bHas := b.ContainsAll(bm)
		if aHas != bHas {
			diffCount++
			if diffCount > 1 {
				return 0, false
			}
			diffBit = bit
		}
	}
	return diffBit, diffCount == 1
}

// hasBit reports whether bit is part of this archetype's mask.
func (rec *archetypeRecord) hasBit(bit uint32) bool {
	var bm mask.Mask
	bm.Mark(bit)
	return rec.mask.ContainsAll(bm)
}

// rowOfType scans the table's row groups for the one whose element type is
// want, skipping the row at skip. Returns -1 if no row matches.
func rowOfType(tbl table.Table, want reflect.Type, skip int) int {
	for i, row := range tbl.Rows() {
		if i == skip {
			continue
		}
		if reflect.Value(row).Type().Elem() == want {
			return i
		}
	}
	return -1
}

// entityColumnRow resolves (and memoizes) the hidden Entity column's row
// index within table.Rows().
func (rec *archetypeRecord) entityColumnRow() int {
	if rec.entityRow == -1 {
		rec.entityRow = rowOfType(rec.table, entityGoType, -1)
	}
	return rec.entityRow
}

// columnRow resolves (and memoizes) the row index holding the component at
// bit, or -1 if the bit is not part of this archetype's mask.
func (rec *archetypeRecord) columnRow(bit uint32) int {
	if rec.bitToRow[bit] != -1 {
		return rec.bitToRow[bit]
	}
	if !rec.hasBit(bit) {
		return -1
	}
	for i, b := range rec.bits {
		if b == bit {
			rec.bitToRow[bit] = rowOfType(rec.table, rec.components[i].Type(), rec.entityColumnRow())
			break
		}
	}
	return rec.bitToRow[bit]
}

// transitionTarget resolves (and memoizes) the archetype reached from fromIdx
// by adding or removing bit, consulting the edge cache first.
func (w *World) transitionTarget(fromIdx int, bit uint32, add bool, newElem Component) (*archetypeRecord, int, error) {
	from := w.store.list[fromIdx]
	edges := &from.addEdges
	if !add {
		edges = &from.removeEdges
	}
	if idx := edges[bit]; idx != -1 {
		return w.store.list[idx], idx, nil
	}

	var newComps []Component
	var newBits []uint32
	if add {
		newComps = append(append([]Component{}, from.components...), newElem)
		newBits = append(append([]uint32{}, from.bits...), bit)
	} else {
		newComps = make([]Component, 0, len(from.components))
		newBits = make([]uint32, 0, len(from.bits))
		for i, b := range from.bits {
			if b != bit {
				newComps = append(newComps, from.components[i])
				newBits = append(newBits, b)
			}
		}
	}

	newMask := from.mask
	if add {
		newMask.Mark(bit)
	} else {
		newMask.Unmark(bit)
	}

	target, targetIdx, err := w.findOrCreateArchetype(newMask, newComps, newBits)
	if err != nil {
		return nil, 0, err
	}

	edges[bit] = targetIdx
	if add {
		target.removeEdges[bit] = fromIdx
	} else {
		target.addEdges[bit] = fromIdx
	}
	return target, targetIdx, nil
}
