package api

import (
	"encoding/json"
	"time"
)

// TaskJSON is the task representation exposed by the JSON API. The
// owner is implicit in the credential and never serialized.
type TaskJSON struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskListEnvelope is the paginated listing response: total count,
// next/previous page links and the page's results.
type TaskListEnvelope struct {
	Count    int64      `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []TaskJSON `json:"results"`
}

// CreateTaskBody is the request body for creating a task.
type CreateTaskBody struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed"`
}

// UpdateTaskBody is the request body for a partial task update. Absent
// fields are left unchanged. An explicit `"due_date": null` clears the
// due date, so presence of the key is tracked separately from its
// value.
type UpdateTaskBody struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	DueDateSet  bool       `json:"-"`
	Completed   *bool      `json:"completed"`
}

func (b *UpdateTaskBody) UnmarshalJSON(data []byte) error {
	type plain UpdateTaskBody
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, decoded.DueDateSet = keys["due_date"]

	*b = UpdateTaskBody(decoded)
	return nil
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse represents an authentication token response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserResponse represents a user response.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries field-keyed validation messages.
type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}
