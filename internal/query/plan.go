// Package query implements the aggregation engine: a typed, ordered query
// plan composed through a builder, executed against any document source that
// can perform equality scans. Stages always run in a fixed order - filters,
// text search, reference joins, computed fields, projection, sort - so plans
// read the same way regardless of the order builder methods were called.
package query

import "github.com/clipstack/backend/internal/store"

// Document is a record flowing through a plan.
type Document = map[string]any

// Plan is an ordered list of stages over a base collection.
type Plan struct {
	Collection string

	match    Document
	exists   []string
	search   *searchStage
	lookups  []Lookup
	computed []computedField
	project  []string
	sort     *sortStage
}

type searchStage struct {
	query  string
	fields []string
}

type sortStage struct {
	field      string
	descending bool
}

type computedOp int

const (
	opCount computedOp = iota
	opFirst
	opContains
)

type computedField struct {
	op        computedOp
	as        string
	fromArray string
	elemField string
	value     any
}

// Lookup joins documents from another collection by reference. LocalField
// may hold a scalar id or an ordered id array; the joined list preserves
// that order. An unknown From collection resolves to an empty list.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Pipeline     *Plan
}

// Builder accumulates stages for a Plan.
type Builder struct {
	plan Plan
}

// NewBuilder starts a plan over the named collection.
func NewBuilder(collection string) *Builder {
	return &Builder{plan: Plan{Collection: collection, match: store.Document{}}}
}

// NewPipeline starts a sub-plan for use inside a Lookup. Sub-plans have no
// base collection; their stages apply to the joined documents.
func NewPipeline() *Builder {
	return &Builder{plan: Plan{match: store.Document{}}}
}

// Match adds an equality predicate on the base collection.
func (b *Builder) Match(field string, value any) *Builder {
	b.plan.match[field] = value
	return b
}

// MatchExists keeps only documents carrying a non-empty value in field.
func (b *Builder) MatchExists(field string) *Builder {
	b.plan.exists = append(b.plan.exists, field)
	return b
}

// Search adds a case-insensitive free-text filter over the given fields,
// applied after equality predicates and before any join.
func (b *Builder) Search(text string, fields ...string) *Builder {
	if text == "" || len(fields) == 0 {
		return b
	}
	b.plan.search = &searchStage{query: text, fields: fields}
	return b
}

// Lookup appends a reference join.
func (b *Builder) Lookup(l Lookup) *Builder {
	b.plan.lookups = append(b.plan.lookups, l)
	return b
}

// AddCount stores the length of the array field fromArray under as.
func (b *Builder) AddCount(as, fromArray string) *Builder {
	b.plan.computed = append(b.plan.computed, computedField{op: opCount, as: as, fromArray: fromArray})
	return b
}

// AddFirst replaces as with the first element of the array field fromArray.
// When the array is empty the field is removed.
func (b *Builder) AddFirst(as, fromArray string) *Builder {
	b.plan.computed = append(b.plan.computed, computedField{op: opFirst, as: as, fromArray: fromArray})
	return b
}

// AddContains stores a boolean under as: whether any element of fromArray
// has elemField equal to value.
func (b *Builder) AddContains(as, fromArray, elemField string, value any) *Builder {
	b.plan.computed = append(b.plan.computed, computedField{
		op: opContains, as: as, fromArray: fromArray, elemField: elemField, value: value,
	})
	return b
}

// Project keeps only the listed fields in the output documents.
func (b *Builder) Project(fields ...string) *Builder {
	b.plan.project = fields
	return b
}

// Sort orders the output by field. The sort is stable and runs last.
func (b *Builder) Sort(field string, descending bool) *Builder {
	if field == "" {
		return b
	}
	b.plan.sort = &sortStage{field: field, descending: descending}
	return b
}

// Plan finalizes the builder.
func (b *Builder) Plan() *Plan {
	return &b.plan
}
