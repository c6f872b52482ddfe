package archon

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// queryKey is the cache key for a (include, exclude) query pair.
type queryKey struct {
	include mask.Mask
	exclude mask.Mask
}

// onArchetypeCreated is called once, right after a new archetype is
// appended to the store, to keep every live cache entry correct without
// invalidating outstanding result slices.
func (w *World) onArchetypeCreated(idx int, m mask.Mask) {
	for key, idxs := range w.queryCache {
		if m.ContainsAll(key.include) && (key.exclude.IsEmpty() || m.ContainsNone(key.exclude)) {
			w.queryCache[key] = append(idxs, idx)
		}
	}
}

// GetMatchingArchetypes resolves (include, exclude) to the archetype indices
// whose mask satisfies both, caching the result for subsequent calls.
func GetMatchingArchetypes(w *World, include mask.Mask, exclude mask.Mask) []int {
	key := queryKey{include: include, exclude: exclude}
	if cached, ok := w.queryCache[key]; ok {
		return cached
	}
	var out []int
	for i, rec := range w.store.list {
		if rec.mask.ContainsAll(include) && (exclude.IsEmpty() || rec.mask.ContainsNone(exclude)) {
			out = append(out, i)
		}
	}
	w.queryCache[key] = out
	return out
}

// QueryCount sums the live row count across every matching archetype.
func QueryCount(w *World, include, exclude mask.Mask) int {
	total := 0
	for _, idx := range GetMatchingArchetypes(w, include, exclude) {
		total += w.store.list[idx].table.Length()
	}
	return total
}

// QueryEntities concatenates the entities of every matching archetype, in
// archetype-creation order.
func QueryEntities(w *World, include, exclude mask.Mask) []Entity {
	var out []Entity
	for _, idx := range GetMatchingArchetypes(w, include, exclude) {
		rec := w.store.list[idx]
		if rec.table.Length() == 0 {
			continue
		}
		out = append(out, entityColumn(rec)...)
	}
	return out
}

// QueryFirst returns the first entity of the first non-empty matching
// archetype.
func QueryFirst(w *World, include, exclude mask.Mask) (Entity, bool) {
	for _, idx := range GetMatchingArchetypes(w, include, exclude) {
		rec := w.store.list[idx]
		if rec.table.Length() > 0 {
			return entityColumn(rec)[0], true
		}
	}
	return Entity{}, false
}

// ForEach invokes fn once per matching entity, in archetype-creation and
// then row order. fn must not perform structural mutation.
func ForEach(w *World, include, exclude mask.Mask, fn func(Entity)) {
	for _, idx := range GetMatchingArchetypes(w, include, exclude) {
		rec := w.store.list[idx]
		if rec.table.Length() == 0 {
			continue
		}
		for _, e := range entityColumn(rec) {
			fn(e)
		}
	}
}

// ForEachTable invokes fn once per matching archetype index, letting the
// caller pull whole columns instead of per-entity values.
func ForEachTable(w *World, include, exclude mask.Mask, fn func(archetypeIdx int)) {
	for _, idx := range GetMatchingArchetypes(w, include, exclude) {
		fn(idx)
	}
}

// columnAt returns the contiguous []T stored at table.Rows() index rowIdx,
// trimmed to the table's live row count. The caller already knows rowIdx
// names a T column (via columnRow or entityColumnRow). table.Row wraps a
// reflect.Value over the underlying []T, so growth/swap-remove on it is
// visible without any copy.
func columnAt[T any](tbl table.Table, rowIdx int) []T {
	var found table.Row
	for i, row := range tbl.Rows() {
		if i == rowIdx {
			found = row
			break
		}
	}
	rv := reflect.Value(found)
	s, _ := rv.Interface().([]T)
	if n := tbl.Length(); n <= len(s) {
		s = s[:n]
	}
	return s
}

// entityColumn returns rec's hidden Entity column.
func entityColumn(rec *archetypeRecord) []Entity {
	return columnAt[Entity](rec.table, rec.entityColumnRow())
}

// columnSlice scans an archetype's physical rows for the one holding T,
// returning it as a live Go slice trimmed to the table's live row count.
// Used only where no bit is known ahead of time (ColumnByType's by-type
// convenience lookup).
func columnSlice[T any](tbl table.Table) []T {
	want := reflect.TypeOf((*T)(nil)).Elem()
	for i, row := range tbl.Rows() {
		if reflect.Value(row).Type().Elem() == want {
			return columnAt[T](tbl, i)
		}
	}
	return nil
}

// Column returns the contiguous []T for component bit in the archetype at
// archIdx, via the memoized bit->row index rather than a per-call linear
// scan. It returns nil if the archetype is out of range, lacks the bit, or
// has zero rows.
func Column[T any](w *World, archIdx int, bit uint32) []T {
	if archIdx < 0 || archIdx >= len(w.store.list) {
		return nil
	}
	rec := w.store.list[archIdx]
	row := rec.columnRow(bit)
	if row == -1 || rec.table.Length() == 0 {
		return nil
	}
	return columnAt[T](rec.table, row)
}

// ColumnUnchecked returns the contiguous []T for bit via the same memoized
// bit->row index Column uses, without verifying the archetype index, the
// bit's presence, or row count. The caller asserts all three preconditions
// hold.
func ColumnUnchecked[T any](w *World, archIdx int, bit uint32) []T {
	rec := w.store.list[archIdx]
	return columnAt[T](rec.table, rec.columnRow(bit))
}

// ColumnByType is the linear-scan convenience variant of Column: it finds
// the column by matching T's reflected type rather than a known bit, for
// callers that have a Go type in hand but no ComponentType[T] bit.
func ColumnByType[T any](w *World, archIdx int) []T {
	if archIdx < 0 || archIdx >= len(w.store.list) {
		return nil
	}
	rec := w.store.list[archIdx]
	if rec.table.Length() == 0 {
		return nil
	}
	return columnSlice[T](rec.table)
}
