package web

import (
	"errors"
	"testing"
	"time"

	"github.com/example/taskboard/modules/task"
)

func TestFormFromView(t *testing.T) {
	due := time.Date(2026, 9, 15, 18, 30, 0, 0, time.UTC)

	view := &task.TaskView{
		Title:       "Water plants",
		Description: "Balcony first",
		DueDate:     &due,
		Completed:   true,
	}

	form := formFromView(view)
	if form.Title != "Water plants" {
		t.Errorf("Title = %q", form.Title)
	}
	if form.DueDateValue != "2026-09-15T18:30" {
		t.Errorf("DueDateValue = %q, want datetime-local format", form.DueDateValue)
	}
	if !form.Completed {
		t.Error("expected Completed carried over")
	}

	t.Run("no due date", func(t *testing.T) {
		form := formFromView(&task.TaskView{Title: "Undated"})
		if form.DueDateValue != "" {
			t.Errorf("DueDateValue = %q, want empty", form.DueDateValue)
		}
		if form.DueDate != nil {
			t.Error("expected nil DueDate")
		}
	})
}

func TestAuthErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "duplicate username",
			err:  errors.New("service call failed: user with this username already exists"),
			want: "User with this username already exists.",
		},
		{
			name: "weak password",
			err:  errors.New("password must be at least 8 characters"),
			want: "Password must be at least 8 characters.",
		},
		{
			name: "unknown error is not leaked",
			err:  errors.New("dial tcp: connection refused"),
			want: "Registration failed. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authErrorMessage(tt.err); got != tt.want {
				t.Errorf("authErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListURL(t *testing.T) {
	tests := []struct {
		name     string
		search   string
		ordering string
		page     int
		want     string
	}{
		{name: "page only", page: 2, want: "/tasks/?page=2"},
		{name: "with search", search: "milk", page: 1, want: "/tasks/?page=1&search=milk"},
		{
			name: "with search and ordering", search: "milk", ordering: "due_date", page: 3,
			want: "/tasks/?ordering=due_date&page=3&search=milk",
		},
		{name: "search is escaped", search: "a&b", page: 1, want: "/tasks/?page=1&search=a%26b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listURL(tt.search, tt.ordering, tt.page); got != tt.want {
				t.Errorf("listURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
