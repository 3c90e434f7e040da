// Package pipeline is the shared aggregation layer. Every cross-collection
// read in the API is built from the same six stage constructors and, when
// paginated, executed through Paginate. Resource repositories differ only in
// which collections and fields they feed into these stages.
package pipeline

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Stage is a single aggregation stage.
type Stage = bson.D

// Pipeline is an ordered sequence of stages.
type Pipeline []Stage

// New builds a pipeline from the given stages, skipping nil entries so call
// sites can include conditional stages inline.
func New(stages ...Stage) Pipeline {
	p := make(Pipeline, 0, len(stages))
	for _, s := range stages {
		if s != nil {
			p = append(p, s)
		}
	}
	return p
}

// Append returns the pipeline with more stages attached.
func (p Pipeline) Append(stages ...Stage) Pipeline {
	for _, s := range stages {
		if s != nil {
			p = append(p, s)
		}
	}
	return p
}

// Build converts the pipeline into the driver's representation.
func (p Pipeline) Build() mongo.Pipeline {
	out := make(mongo.Pipeline, len(p))
	for i, s := range p {
		out[i] = bson.D(s)
	}
	return out
}

// Filter restricts to documents matching the predicate ($match).
func Filter(pred bson.M) Stage {
	return Stage{{Key: "$match", Value: pred}}
}

// Join attaches documents from another collection by foreign key ($lookup).
// An optional sub-pipeline reduces the joined shape, which is how owner
// summaries are projected inside video, comment and like joins.
func Join(from, localField, foreignField, as string, sub ...Stage) Stage {
	spec := bson.M{
		"from":         from,
		"localField":   localField,
		"foreignField": foreignField,
		"as":           as,
	}
	if len(sub) > 0 {
		nested := make([]bson.D, len(sub))
		for i, s := range sub {
			nested[i] = bson.D(s)
		}
		spec["pipeline"] = nested
	}
	return Stage{{Key: "$lookup", Value: spec}}
}

// Flatten converts a joined single-element array into an embedded object
// ($unwind). A zero-cardinality join drops the document, so a dangling
// reference surfaces as an empty result rather than a half-joined row.
func Flatten(field string) Stage {
	return Stage{{Key: "$unwind", Value: "$" + field}}
}

// Derive computes fields from the already-joined shape ($addFields).
func Derive(fields bson.M) Stage {
	return Stage{{Key: "$addFields", Value: fields}}
}

// Reshape whitelist-projects the final field set ($project). Sensitive fields
// stay out by never being named here.
func Reshape(fields bson.M) Stage {
	return Stage{{Key: "$project", Value: fields}}
}

// Sort orders by a single key ($sort).
func Sort(field string, dir SortDirection) Stage {
	return Stage{{Key: "$sort", Value: bson.D{{Key: field, Value: int(dir)}}}}
}

type SortDirection int

const (
	Ascending  SortDirection = 1
	Descending SortDirection = -1
)

const defaultSortField = "createdAt"

// ParseSort resolves caller-supplied sort parameters against a whitelist of
// sortable fields. Unknown fields fall back to createdAt so raw query input
// never reaches the pipeline, and the direction defaults to descending.
func ParseSort(sortBy, sortType string, allowed ...string) Stage {
	field := defaultSortField
	for _, a := range allowed {
		if sortBy == a {
			field = sortBy
			break
		}
	}
	dir := Descending
	if sortType == "asc" {
		dir = Ascending
	}
	return Sort(field, dir)
}

// Size derives the length of a joined array field.
func Size(field string) bson.M {
	return bson.M{"$size": "$" + field}
}

// First derives the first element of a joined array, the projection-friendly
// alternative to Flatten when the document must survive an empty join.
func First(field string) bson.M {
	return bson.M{"$first": "$" + field}
}

// MemberOf derives a boolean: whether value appears in the array field.
func MemberOf(value any, field string) bson.M {
	return bson.M{
		"$cond": bson.M{
			"if":   bson.M{"$in": []any{value, "$" + field}},
			"then": true,
			"else": false,
		},
	}
}
