package storage

import (
	"strings"
	"time"
)

// QueryOption configures a Runs query.
type QueryOption func(*query)

type query struct {
	target string
	since  time.Time
	limit  int
}

// WithTarget restricts results to runs of the named target.
func WithTarget(target string) QueryOption {
	return func(q *query) {
		q.target = target
	}
}

// WithSince restricts results to runs created at or after t.
func WithSince(t time.Time) QueryOption {
	return func(q *query) {
		q.since = t
	}
}

// WithLimit caps the number of returned runs. Zero or negative means no limit.
func WithLimit(n int) QueryOption {
	return func(q *query) {
		q.limit = n
	}
}

func newQuery(opts ...QueryOption) *query {
	q := &query{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *query) build(base string) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if q.target != "" {
		conds = append(conds, "r.target = ?")
		args = append(args, q.target)
	}
	if !q.since.IsZero() {
		conds = append(conds, "r.created_at >= ?")
		args = append(args, q.since.UTC())
	}

	var sb strings.Builder
	sb.WriteString(base)
	if len(conds) > 0 {
		sb.WriteString("\nWHERE\n    ")
		sb.WriteString(strings.Join(conds, "\n    AND "))
	}
	sb.WriteString("\nORDER BY r.created_at DESC, r.id DESC")
	if q.limit > 0 {
		sb.WriteString("\nLIMIT ?")
		args = append(args, q.limit)
	}
	return sb.String(), args
}
