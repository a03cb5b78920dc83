package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clipstack/backend/internal/store"
)

// Scanner is the read surface a plan executes against. Both store
// implementations satisfy it; tests inject the in-memory store.
type Scanner interface {
	Scan(ctx context.Context, collection string, match Document) ([]Document, error)
}

// Execute runs the plan's stages in order and returns the materialized
// documents. Joins are emulated: each lookup scans the foreign collection
// per document, which matches the store model (per-document atomicity,
// no native joins).
func Execute(ctx context.Context, src Scanner, plan *Plan) ([]Document, error) {
	if plan.Collection == "" {
		return nil, fmt.Errorf("query: plan has no base collection")
	}

	docs, err := src.Scan(ctx, plan.Collection, plan.match)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", plan.Collection, err)
	}

	docs = filterExists(docs, plan.exists)
	docs = filterSearch(docs, plan.search)

	if err := applyStages(ctx, src, plan, docs); err != nil {
		return nil, err
	}

	if plan.sort != nil {
		sortDocuments(docs, plan.sort.field, plan.sort.descending)
	}
	return docs, nil
}

// applyStages runs lookups, computed fields, and projection in place. Sub
// pipelines reuse it for joined documents.
func applyStages(ctx context.Context, src Scanner, plan *Plan, docs []Document) error {
	for _, lookup := range plan.lookups {
		for _, doc := range docs {
			joined, err := resolveLookup(ctx, src, lookup, doc)
			if err != nil {
				return err
			}
			doc[lookup.As] = joined
		}
	}

	for _, field := range plan.computed {
		for _, doc := range docs {
			applyComputed(doc, field)
		}
	}

	if len(plan.project) > 0 {
		for _, doc := range docs {
			projectDocument(doc, plan.project)
		}
	}
	return nil
}

// resolveLookup joins foreign documents for one local document. A missing
// local field, an unknown foreign collection, or zero matches all produce
// an empty list, never an error.
func resolveLookup(ctx context.Context, src Scanner, lookup Lookup, doc Document) ([]any, error) {
	joined := make([]any, 0)

	locals, ok := localValues(doc[lookup.LocalField])
	if !ok {
		return joined, nil
	}

	for _, local := range locals {
		matches, err := src.Scan(ctx, lookup.From, Document{lookup.ForeignField: local})
		if err != nil {
			if errors.Is(err, store.ErrUnknownCollection) {
				return make([]any, 0), nil
			}
			return nil, fmt.Errorf("lookup %s: %w", lookup.From, err)
		}
		if lookup.Pipeline != nil {
			if err := applyStages(ctx, src, lookup.Pipeline, matches); err != nil {
				return nil, err
			}
			if lookup.Pipeline.sort != nil {
				sortDocuments(matches, lookup.Pipeline.sort.field, lookup.Pipeline.sort.descending)
			}
		}
		for _, match := range matches {
			joined = append(joined, match)
		}
	}
	return joined, nil
}

// localValues normalizes the local join key: a scalar becomes a single-item
// list, an array is joined element by element in order.
func localValues(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	default:
		return []any{v}, true
	}
}

func applyComputed(doc Document, field computedField) {
	source, _ := doc[field.fromArray].([]any)
	switch field.op {
	case opCount:
		doc[field.as] = len(source)
	case opFirst:
		if len(source) > 0 {
			doc[field.as] = source[0]
		} else {
			delete(doc, field.as)
		}
	case opContains:
		found := false
		for _, elem := range source {
			elemDoc, ok := elem.(Document)
			if !ok {
				continue
			}
			if equalJSONValues(elemDoc[field.elemField], field.value) {
				found = true
				break
			}
		}
		doc[field.as] = found
	}
}

func projectDocument(doc Document, fields []string) {
	keep := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		keep[f] = struct{}{}
	}
	for key := range doc {
		if _, ok := keep[key]; !ok {
			delete(doc, key)
		}
	}
}

func filterExists(docs []Document, fields []string) []Document {
	if len(fields) == 0 {
		return docs
	}
	kept := docs[:0]
	for _, doc := range docs {
		ok := true
		for _, field := range fields {
			value, present := doc[field]
			if !present || value == nil || value == "" {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, doc)
		}
	}
	return kept
}

func filterSearch(docs []Document, search *searchStage) []Document {
	if search == nil {
		return docs
	}
	needle := strings.ToLower(search.query)
	kept := docs[:0]
	for _, doc := range docs {
		for _, field := range search.fields {
			text, ok := doc[field].(string)
			if ok && strings.Contains(strings.ToLower(text), needle) {
				kept = append(kept, doc)
				break
			}
		}
	}
	return kept
}

func equalJSONValues(a, b any) bool {
	if a == b {
		return true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
