package task

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TaskPayload carries the writable task fields through validation.
type TaskPayload struct {
	Title       string
	Description string
	DueDate     *time.Time
	Completed   bool
}

// FieldError is a validation failure attributed to a single field.
type FieldError struct {
	Field   string
	Message string
}

// Rule is a pure validation check over a payload. It returns nil when
// the payload passes.
type Rule func(p *TaskPayload) *FieldError

// ValidationError aggregates field-level failures for one payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// Validate applies rules in order and collects every failure. A nil
// return means the payload is valid.
func Validate(p *TaskPayload, rules ...Rule) *ValidationError {
	fields := make(map[string]string)
	for _, rule := range rules {
		if ferr := rule(p); ferr != nil {
			if _, seen := fields[ferr.Field]; !seen {
				fields[ferr.Field] = ferr.Message
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// RequireTitle rejects empty or whitespace-only titles.
func RequireTitle(p *TaskPayload) *FieldError {
	if strings.TrimSpace(p.Title) == "" {
		return &FieldError{Field: "title", Message: "Title cannot be empty."}
	}
	return nil
}

// DueDateNotPast rejects due dates earlier than the start of the
// current UTC day. Applied on the API path only; the web forms accept
// past due dates.
func DueDateNotPast(p *TaskPayload) *FieldError {
	if p.DueDate == nil {
		return nil
	}
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if p.DueDate.Before(startOfDay) {
		return &FieldError{Field: "due_date", Message: "Due date cannot be in the past."}
	}
	return nil
}

// rulesFor selects the rule chain for a mutation. Strict mode adds the
// due-date check the JSON API enforces.
func rulesFor(strictDueDate bool) []Rule {
	rules := []Rule{RequireTitle}
	if strictDueDate {
		rules = append(rules, DueDateNotPast)
	}
	return rules
}
