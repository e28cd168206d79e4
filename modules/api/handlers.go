package api

import (
	"encoding/json"
	"log"
	"net/url"
	"strconv"
	"strings"

	domain "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the JSON API.
type Handlers struct {
	authContainer mono.ServiceContainer
	taskPort      task.TaskPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authContainer mono.ServiceContainer, taskPort task.TaskPort) *Handlers {
	return &Handlers{
		authContainer: authContainer,
		taskPort:      taskPort,
	}
}

// ListTasks handles GET /tasks/ with optional search, ordering and page
// parameters. Results are always scoped to the caller.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	search := c.Query("search")
	ordering := c.Query("ordering")

	resp, err := h.taskPort.ListTasks(c.UserContext(), task.ListTasksRequest{
		OwnerID:  claims.UserID,
		Search:   search,
		Ordering: ordering,
		Page:     page,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}

	envelope := TaskListEnvelope{
		Count:    resp.TotalCount,
		Next:     pageLink(resp, search, ordering, resp.PageNumber+1),
		Previous: pageLink(resp, search, ordering, resp.PageNumber-1),
		Results:  make([]TaskJSON, 0, len(resp.Tasks)),
	}
	for i := range resp.Tasks {
		envelope.Results = append(envelope.Results, toTaskJSON(&resp.Tasks[i]))
	}

	return c.Status(fiber.StatusOK).JSON(envelope)
}

// CreateTask handles POST /tasks/create/. The API path enforces the
// full validation chain, including the past-due-date rule.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.taskPort.CreateTask(c.UserContext(), task.CreateTaskRequest{
		OwnerID:       claims.UserID,
		Title:         body.Title,
		Description:   body.Description,
		DueDate:       body.DueDate,
		Completed:     body.Completed,
		StrictDueDate: true,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}
	if len(resp.Errors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{Errors: resp.Errors})
	}

	created := toTaskJSON(resp.Task)
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateTask handles PUT /tasks/:id/. Partial bodies are allowed;
// absent fields stay unchanged. Updating someone else's task is a 403,
// never disguised as a 404.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.taskPort.UpdateTask(c.UserContext(), task.UpdateTaskRequest{
		CallerID:      claims.UserID,
		TaskID:        c.Params("id"),
		Title:         body.Title,
		Description:   body.Description,
		DueDate:       body.DueDate,
		ClearDueDate:  body.DueDateSet && body.DueDate == nil,
		Completed:     body.Completed,
		Partial:       true,
		StrictDueDate: true,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}
	if len(resp.Errors) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{Errors: resp.Errors})
	}

	updated := toTaskJSON(resp.Task)
	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteTask handles DELETE /tasks/:id/. A second delete of the same
// task returns 404.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	err := h.taskPort.DeleteTask(c.UserContext(), task.DeleteTaskRequest{
		CallerID: claims.UserID,
		TaskID:   c.Params("id"),
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	authReq := auth.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	var resp auth.RegisterResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"register",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(UserResponse{
		ID:        resp.ID,
		Username:  resp.Username,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	})
}

// Login handles user login and returns a token pair.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	authReq := auth.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	}
	var resp auth.LoginResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"login",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return h.handleAuthError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// Refresh handles token refresh.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	authReq := auth.RefreshRequest{
		RefreshToken: req.RefreshToken,
	}
	var resp auth.RefreshResponse

	if err := helper.CallRequestReplyService(
		c.UserContext(),
		h.authContainer,
		"refresh-token",
		json.Marshal,
		json.Unmarshal,
		&authReq,
		&resp,
	); err != nil {
		return unauthorized(c, "Invalid or expired refresh token")
	}

	return c.Status(fiber.StatusOK).JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// handleTaskError maps task service errors to HTTP responses. Errors
// cross the service container as strings, so matching follows the
// known sentinel messages.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case strings.Contains(errStr, "permission"):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to access this task",
		})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// handleAuthError maps auth service errors to HTTP responses.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "invalid username or password"):
		return unauthorized(c, "Invalid username or password")
	case strings.Contains(errStr, "already exists"),
		strings.Contains(errStr, "username must be"),
		strings.Contains(errStr, "invalid email format"),
		strings.Contains(errStr, "password must be"):
		return badRequest(c, strings.TrimPrefix(errStr, "service call failed: "))
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}

func toTaskJSON(t *task.TaskView) TaskJSON {
	return TaskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// pageLink builds the next/previous link for the listing envelope, or
// nil when the target page is out of range.
func pageLink(resp *task.ListTasksResponse, search, ordering string, target int) *string {
	totalPages := int((resp.TotalCount + int64(resp.PageSize) - 1) / int64(resp.PageSize))
	if target < 1 || target > totalPages {
		return nil
	}

	values := url.Values{}
	values.Set("page", strconv.Itoa(target))
	if search != "" {
		values.Set("search", search)
	}
	if ordering != "" {
		values.Set("ordering", ordering)
	}
	link := "/tasks/?" + values.Encode()
	return &link
}
