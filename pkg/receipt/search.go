package receipt

import (
	"strings"
	"time"
)

// SearchFilter is the repository-level filter set. Zero values mean the
// filter is absent; amount bounds arrive already encoded at storage scale so
// the store compares them numerically against the decimal column.
type SearchFilter struct {
	Query     string
	StoreName string
	DateFrom  *time.Time
	DateTo    *time.Time
	MinAmount string
	MaxAmount string
}

// predicateBuilder accumulates an ordered list of SQL clauses and one flat
// argument list. Clauses are combined with AND; only the free-text query
// contributes an OR group. Every value goes through the argument list, never
// into the SQL text.
type predicateBuilder struct {
	conds []string
	args  []interface{}
}

func (b *predicateBuilder) and(cond string, args ...interface{}) {
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
}

func (b *predicateBuilder) orGroup(conds []string, args ...interface{}) {
	b.conds = append(b.conds, "("+strings.Join(conds, " OR ")+")")
	b.args = append(b.args, args...)
}

func (b *predicateBuilder) empty() bool {
	return len(b.conds) == 0
}

func (b *predicateBuilder) sql() string {
	return strings.Join(b.conds, " AND ")
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// buildSearchPredicate translates the sparse filter set into clauses. The
// second return value reports whether the item table must be joined; only the
// free-text query looks at item names. LOWER(...) LIKE is used instead of
// ILIKE so the same SQL runs on PostgreSQL and the SQLite test store.
func buildSearchPredicate(filter SearchFilter) (*predicateBuilder, bool) {
	b := &predicateBuilder{}
	joinItems := false

	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		b.orGroup([]string{
			"LOWER(receipts.store_name) LIKE ?",
			"LOWER(receipt_items.name) LIKE ?",
		}, pattern, pattern)
		joinItems = true
	}
	if filter.StoreName != "" {
		b.and("LOWER(receipts.store_name) LIKE ?", likePattern(filter.StoreName))
	}
	if filter.DateFrom != nil {
		b.and("receipts.receipt_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		b.and("receipts.receipt_date <= ?", *filter.DateTo)
	}
	if filter.MinAmount != "" {
		b.and("receipts.total_amount >= ?", filter.MinAmount)
	}
	if filter.MaxAmount != "" {
		b.and("receipts.total_amount <= ?", filter.MaxAmount)
	}

	return b, joinItems
}
