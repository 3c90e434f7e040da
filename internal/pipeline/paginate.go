package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	// windowCap bounds page and limit individually so the $skip product
	// (page-1)*limit always fits in int64.
	windowCap = 1 << 31
)

// Options is a 1-based page window.
type Options struct {
	Page  int64
	Limit int64
}

// ParseOptions coerces raw query parameters into a usable window. Missing or
// non-numeric values fall back to page=1, limit=10; zeros and negatives are
// floored to the defaults as well, and absurdly large values are capped.
func ParseOptions(page, limit string) Options {
	opts := Options{Page: defaultPage, Limit: defaultLimit}
	if n, err := strconv.ParseInt(page, 10, 64); err == nil && n >= 1 {
		opts.Page = min(n, windowCap)
	}
	if n, err := strconv.ParseInt(limit, 10, 64); err == nil && n >= 1 {
		opts.Limit = min(n, windowCap)
	}
	return opts
}

// Page is one window of pipeline results plus total-count metadata.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Page        int64 `json:"page"`
	Limit       int64 `json:"limit"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int64 `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Paginate runs the pipeline twice: once with $count for the total, once with
// $skip/$limit for the window. The two reads are not transactional, so counts
// can drift from items under concurrent writes; callers accept that.
func Paginate[T any](ctx context.Context, coll *mongo.Collection, p Pipeline, opts Options) (*Page[T], error) {
	total, err := countPipeline(ctx, coll, p)
	if err != nil {
		return nil, fmt.Errorf("paginate count: %w", err)
	}

	windowed := p.Append(
		Stage{{Key: "$skip", Value: (opts.Page - 1) * opts.Limit}},
		Stage{{Key: "$limit", Value: opts.Limit}},
	)

	cursor, err := coll.Aggregate(ctx, windowed.Build())
	if err != nil {
		return nil, fmt.Errorf("paginate aggregate: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]T, 0, opts.Limit)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("paginate decode: %w", err)
	}

	return newPage(items, total, opts), nil
}

func countPipeline(ctx context.Context, coll *mongo.Collection, p Pipeline) (int64, error) {
	counted := p.Append(Stage{{Key: "$count", Value: "total"}})

	cursor, err := coll.Aggregate(ctx, counted.Build())
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

func newPage[T any](items []T, total int64, opts Options) *Page[T] {
	totalPages := total / opts.Limit
	if total%opts.Limit != 0 {
		totalPages++
	}
	return &Page[T]{
		Items:       items,
		Page:        opts.Page,
		Limit:       opts.Limit,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNextPage: opts.Page < totalPages,
		HasPrevPage: opts.Page > 1,
	}
}
