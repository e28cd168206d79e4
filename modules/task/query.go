package task

import (
	domain "github.com/example/taskboard/domain/task"
)

// PageSize is the fixed number of tasks per listing page, on both the
// JSON API and the rendered web list.
const PageSize = 10

// OrderKey selects the sort order of a task listing. A leading '-'
// means descending.
type OrderKey string

const (
	OrderCreatedAt     OrderKey = "created_at"
	OrderCreatedAtDesc OrderKey = "-created_at"
	OrderUpdatedAt     OrderKey = "updated_at"
	OrderUpdatedAtDesc OrderKey = "-updated_at"
	OrderDueDate       OrderKey = "due_date"
	OrderDueDateDesc   OrderKey = "-due_date"
)

// DefaultOrder sorts newest first.
const DefaultOrder = OrderCreatedAtDesc

var orderClauses = map[OrderKey]string{
	OrderCreatedAt:     "created_at ASC",
	OrderCreatedAtDesc: "created_at DESC",
	OrderUpdatedAt:     "updated_at ASC",
	OrderUpdatedAtDesc: "updated_at DESC",
	OrderDueDate:       "due_date ASC",
	OrderDueDateDesc:   "due_date DESC",
}

// NormalizeOrdering maps a raw ordering parameter onto the whitelist.
// Unknown or empty values fall back to DefaultOrder; they are never an
// error. Both gateways use this same rule.
func NormalizeOrdering(raw string) OrderKey {
	key := OrderKey(raw)
	if _, ok := orderClauses[key]; ok {
		return key
	}
	return DefaultOrder
}

// Clause returns the SQL ORDER BY fragment for the key.
func (k OrderKey) Clause() string {
	if clause, ok := orderClauses[k]; ok {
		return clause
	}
	return orderClauses[DefaultOrder]
}

// Query describes a task listing request. OwnerID is mandatory: every
// listing is scoped to a single owner.
type Query struct {
	OwnerID  string
	Search   string
	Ordering OrderKey
	Page     int
}

// Page is one bounded slice of a listing result. Page numbers are
// 1-based; a page beyond the end carries an empty Items slice with the
// true TotalCount.
type Page struct {
	Items      []domain.Task
	PageNumber int
	PageSize   int
	TotalCount int64
}

// TotalPages returns the number of pages the listing spans.
func (p *Page) TotalPages() int {
	if p.TotalCount == 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// HasNext reports whether a later page exists.
func (p *Page) HasNext() bool {
	return p.PageNumber < p.TotalPages()
}

// HasPrevious reports whether an earlier non-empty page exists.
func (p *Page) HasPrevious() bool {
	return p.PageNumber > 1 && p.TotalCount > 0
}
