package archon

import "github.com/TheBitDrifter/mask"

// QueryBuilder is a fluent façade over the Query Engine: it accumulates
// include/exclude bits and delegates every terminal call straight through to
// GetMatchingArchetypes/QueryCount/etc. It adds no semantics of its own.
type QueryBuilder struct {
	world   *World
	include mask.Mask
	exclude mask.Mask
}

// NewQueryBuilder starts a fresh, empty query against w.
func NewQueryBuilder(w *World) *QueryBuilder {
	return &QueryBuilder{world: w}
}

// With requires bit to be present in every matching archetype.
func (q *QueryBuilder) With(bit uint32) *QueryBuilder {
	q.include.Mark(bit)
	return q
}

// Without excludes archetypes carrying bit.
func (q *QueryBuilder) Without(bit uint32) *QueryBuilder {
	q.exclude.Mark(bit)
	return q
}

// Archetypes resolves the accumulated include/exclude masks to archetype
// indices.
func (q *QueryBuilder) Archetypes() []int {
	return GetMatchingArchetypes(q.world, q.include, q.exclude)
}

// Count returns the total matching entity count.
func (q *QueryBuilder) Count() int {
	return QueryCount(q.world, q.include, q.exclude)
}

// First returns the first matching entity, if any.
func (q *QueryBuilder) First() (Entity, bool) {
	return QueryFirst(q.world, q.include, q.exclude)
}

// Entities collects every matching entity.
func (q *QueryBuilder) Entities() []Entity {
	return QueryEntities(q.world, q.include, q.exclude)
}

// Iter invokes fn once per matching entity.
func (q *QueryBuilder) Iter(fn func(Entity)) {
	ForEach(q.world, q.include, q.exclude, fn)
}

// IterTables invokes fn once per matching archetype index.
func (q *QueryBuilder) IterTables(fn func(archetypeIdx int)) {
	ForEachTable(q.world, q.include, q.exclude, fn)
}
