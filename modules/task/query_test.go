package task

import "testing"

func TestNormalizeOrdering(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want OrderKey
	}{
		{name: "created ascending", raw: "created_at", want: OrderCreatedAt},
		{name: "created descending", raw: "-created_at", want: OrderCreatedAtDesc},
		{name: "updated ascending", raw: "updated_at", want: OrderUpdatedAt},
		{name: "updated descending", raw: "-updated_at", want: OrderUpdatedAtDesc},
		{name: "due date ascending", raw: "due_date", want: OrderDueDate},
		{name: "due date descending", raw: "-due_date", want: OrderDueDateDesc},
		{name: "empty falls back", raw: "", want: DefaultOrder},
		{name: "unknown column falls back", raw: "owner_id", want: DefaultOrder},
		{name: "injection attempt falls back", raw: "title; DROP TABLE tasks", want: DefaultOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeOrdering(tt.raw); got != tt.want {
				t.Errorf("NormalizeOrdering(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestOrderKeyClause(t *testing.T) {
	if got := OrderDueDateDesc.Clause(); got != "due_date DESC" {
		t.Errorf("Clause() = %q", got)
	}
	if got := OrderKey("bogus").Clause(); got != "created_at DESC" {
		t.Errorf("unknown key Clause() = %q, want default", got)
	}
}

func TestPageHelpers(t *testing.T) {
	tests := []struct {
		name        string
		page        Page
		totalPages  int
		hasNext     bool
		hasPrevious bool
	}{
		{
			name:       "empty listing",
			page:       Page{PageNumber: 1, PageSize: 10, TotalCount: 0},
			totalPages: 0, hasNext: false, hasPrevious: false,
		},
		{
			name:       "single partial page",
			page:       Page{PageNumber: 1, PageSize: 10, TotalCount: 7},
			totalPages: 1, hasNext: false, hasPrevious: false,
		},
		{
			name:       "exact page boundary",
			page:       Page{PageNumber: 2, PageSize: 10, TotalCount: 20},
			totalPages: 2, hasNext: false, hasPrevious: true,
		},
		{
			name:       "middle page",
			page:       Page{PageNumber: 2, PageSize: 10, TotalCount: 25},
			totalPages: 3, hasNext: true, hasPrevious: true,
		},
		{
			name:       "page past the end",
			page:       Page{PageNumber: 99, PageSize: 10, TotalCount: 25},
			totalPages: 3, hasNext: false, hasPrevious: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.TotalPages(); got != tt.totalPages {
				t.Errorf("TotalPages() = %d, want %d", got, tt.totalPages)
			}
			if got := tt.page.HasNext(); got != tt.hasNext {
				t.Errorf("HasNext() = %v, want %v", got, tt.hasNext)
			}
			if got := tt.page.HasPrevious(); got != tt.hasPrevious {
				t.Errorf("HasPrevious() = %v, want %v", got, tt.hasPrevious)
			}
		})
	}
}
