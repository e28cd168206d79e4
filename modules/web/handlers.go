package web

import (
	"encoding/json"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/notification"
	"github.com/example/taskboard/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
	// dueDateLayout is the format produced by datetime-local inputs.
	dueDateLayout = "2006-01-02T15:04"
)

// Handlers contains HTTP handlers for the web UI.
type Handlers struct {
	store         *session.Store
	authContainer mono.ServiceContainer
	authPort      auth.AuthPort
	taskPort      task.TaskPort
	activityPort  notification.ActivityPort
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *session.Store, authContainer mono.ServiceContainer, authPort auth.AuthPort, taskPort task.TaskPort, activityPort notification.ActivityPort) *Handlers {
	return &Handlers{
		store:         store,
		authContainer: authContainer,
		authPort:      authPort,
		taskPort:      taskPort,
		activityPort:  activityPort,
	}
}

// RequireLogin redirects unauthenticated requests to the login page.
func (h *Handlers) RequireLogin(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/login/", fiber.StatusSeeOther)
	}

	userID, _ := sess.Get("user_id").(string)
	if userID == "" {
		return c.Redirect("/login/", fiber.StatusSeeOther)
	}

	username, _ := sess.Get("username").(string)
	c.Locals(UserContextKey, &domain.Claims{
		UserID:   userID,
		Username: username,
	})
	return c.Next()
}

// Home renders the landing page, with recent activity for a logged-in
// user.
func (h *Handlers) Home(c *fiber.Ctx) error {
	data := fiber.Map{
		"Title": "Taskboard",
		"CSRF":  c.Locals("csrf_token"),
	}

	if sess, err := h.store.Get(c); err == nil {
		if userID, _ := sess.Get("user_id").(string); userID != "" {
			data["Username"], _ = sess.Get("username").(string)
			if h.activityPort != nil {
				if entries, err := h.activityPort.RecentActivity(c.UserContext(), userID, 10); err == nil {
					data["Activity"] = entries
				}
			}
		}
	}

	return c.Render("views/home", data)
}

// RegisterPage renders the registration form.
func (h *Handlers) RegisterPage(c *fiber.Ctx) error {
	return c.Render("views/register", fiber.Map{
		"Title": "Register",
		"CSRF":  c.Locals("csrf_token"),
	})
}

// RegisterSubmit creates an account and logs the new user in
// immediately, like the registration flow of the JSON API followed by
// a session login.
func (h *Handlers) RegisterSubmit(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password1 := c.FormValue("password1")
	password2 := c.FormValue("password2")

	renderError := func(message string) error {
		return c.Render("views/register", fiber.Map{
			"Title":    "Register",
			"CSRF":     c.Locals("csrf_token"),
			"Error":    message,
			"Username": username,
			"Email":    email,
		})
	}

	if password1 != password2 {
		return renderError("The two password fields didn't match.")
	}

	req := auth.RegisterRequest{Username: username, Email: email, Password: password1}
	var resp auth.RegisterResponse
	if err := helper.CallRequestReplyService(
		c.UserContext(), h.authContainer, "register",
		json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return renderError(authErrorMessage(err))
	}

	if err := h.startSession(c, resp.ID, resp.Username); err != nil {
		log.Printf("[web] Failed to start session: %v", err)
		return c.Redirect("/login/", fiber.StatusSeeOther)
	}
	h.setFlash(c, "success", "Welcome! Your account was created.")
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	return c.Render("views/login", fiber.Map{
		"Title": "Log in",
		"CSRF":  c.Locals("csrf_token"),
	})
}

// LoginSubmit checks credentials and starts a session.
func (h *Handlers) LoginSubmit(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	claims, err := h.authPort.Authenticate(c.UserContext(), username, password)
	if err != nil {
		return c.Render("views/login", fiber.Map{
			"Title":    "Log in",
			"CSRF":     c.Locals("csrf_token"),
			"Error":    "Invalid username or password.",
			"Username": username,
		})
	}

	if err := h.startSession(c, claims.UserID, claims.Username); err != nil {
		log.Printf("[web] Failed to start session: %v", err)
		return c.Redirect("/login/", fiber.StatusSeeOther)
	}
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}

// Logout destroys the session.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sess, err := h.store.Get(c); err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("[web] Failed to destroy session: %v", err)
		}
	}
	return c.Redirect("/login/", fiber.StatusSeeOther)
}

// TasksList renders the caller's tasks with search, ordering and
// pagination.
func (h *Handlers) TasksList(c *fiber.Ctx) error {
	claims := c.Locals(UserContextKey).(*domain.Claims)

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
		log.Printf("[web] Failed to list tasks: %v", err)
		return fiber.ErrInternalServerError
	}

	totalPages := int((resp.TotalCount + int64(resp.PageSize) - 1) / int64(resp.PageSize))
	data := fiber.Map{
		"Title":      "My Tasks",
		"Username":   claims.Username,
		"CSRF":       c.Locals("csrf_token"),
		"Tasks":      resp.Tasks,
		"Search":     search,
		"Ordering":   string(task.NormalizeOrdering(ordering)),
		"PageNumber": resp.PageNumber,
		"TotalPages": totalPages,
		"TotalCount": resp.TotalCount,
	}
	if resp.PageNumber < totalPages {
		data["NextURL"] = listURL(search, ordering, resp.PageNumber+1)
	}
	if resp.PageNumber > 1 && resp.PageNumber <= totalPages {
		data["PrevURL"] = listURL(search, ordering, resp.PageNumber-1)
	}
	if level, message := h.popFlash(c); message != "" {
		data["FlashLevel"] = level
		data["FlashMessage"] = message
	}

	return c.Render("views/tasks_list", data)
}

// TaskCreatePage renders an empty task form.
func (h *Handlers) TaskCreatePage(c *fiber.Ctx) error {
	claims := c.Locals(UserContextKey).(*domain.Claims)
	return c.Render("views/task_form", fiber.Map{
		"Title":    "Create Task",
		"Username": claims.Username,
		"CSRF":     c.Locals("csrf_token"),
		"Action":   "/tasks/new/",
	})
}

// TaskCreateSubmit creates a task for the current user. The web form
// accepts past due dates; only the JSON API rejects them.
func (h *Handlers) TaskCreateSubmit(c *fiber.Ctx) error {
	claims := c.Locals(UserContextKey).(*domain.Claims)
	form := parseTaskForm(c)

	resp, err := h.taskPort.CreateTask(c.UserContext(), task.CreateTaskRequest{
		OwnerID:     claims.UserID,
		Title:       form.Title,
		Description: form.Description,
		DueDate:     form.DueDate,
		Completed:   form.Completed,
	})
	if err != nil {
		log.Printf("[web] Failed to create task: %v", err)
		return fiber.ErrInternalServerError
	}
	if len(resp.Errors) > 0 {
		return c.Render("views/task_form", fiber.Map{
			"Title":    "Create Task",
			"Username": claims.Username,
			"CSRF":     c.Locals("csrf_token"),
			"Action":   "/tasks/new/",
			"Form":     form,
			"Errors":   resp.Errors,
		})
	}

	h.setFlash(c, "success", "Task created.")
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}

// TaskEditPage renders the edit form for one of the caller's tasks.
// A task that is absent or not the caller's renders the same 404 page,
// so the web surface never reveals whether a foreign task exists.
func (h *Handlers) TaskEditPage(c *fiber.Ctx) error {
	claims := c.Locals(UserContextKey).(*domain.Claims)

	view, err := h.taskPort.GetTask(c.UserContext(), task.GetTaskRequest{
		CallerID: claims.UserID,
		TaskID:   c.Params("id"),
	})
	if err != nil {
		return h.renderTaskError(c, err)
	}

	return c.Render("views/task_form", fiber.Map{
		"Title":    "Edit Task",
		"Username": claims.Username,
		"CSRF":     c.Locals("csrf_token"),
		"Action":   "/tasks/" + view.ID + "/edit/",
		"Form":     formFromView(view),
	})
}

// TaskEditSubmit applies a full update to the caller's task.
func (h *Handlers) TaskEditSubmit(c *fiber.Ctx) error {
	claims := c.Locals(UserContextKey).(*domain.Claims)
	form := parseTaskForm(c)
	id := c.Params("id")

	resp, err := h.taskPort.UpdateTask(c.UserContext(), task.UpdateTaskRequest{
		CallerID:    claims.UserID,
		TaskID:      id,
		Title:       &form.Title,
		Description: &form.Description,
		DueDate:     form.DueDate,
		Completed:   &form.Completed,
		Partial:     false,
	})
	if err != nil {
		return h.renderTaskError(c, err)
	}
	if len(resp.Errors) > 0 {
		return c.Render("views/task_form", fiber.Map{
			"Title":    "Edit Task",
			"Username": claims.Username,
			"CSRF":     c.Locals("csrf_token"),
			"Action":   "/tasks/" + id + "/edit/",
			"Form":     form,
			"Errors":   resp.Errors,
		})
	}

	h.setFlash(c, "success", "Task updated.")
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}

// TaskDeletePage renders the delete confirmation page.
func (h *Handlers) TaskDeletePage(c *fiber.Ctx) error {
	claims := c.Locals(UserContextKey).(*domain.Claims)

	view, err := h.taskPort.GetTask(c.UserContext(), task.GetTaskRequest{
		CallerID: claims.UserID,
		TaskID:   c.Params("id"),
	})
	if err != nil {
		return h.renderTaskError(c, err)
	}

	return c.Render("views/confirm_delete", fiber.Map{
		"Title":    "Delete Task",
		"Username": claims.Username,
		"CSRF":     c.Locals("csrf_token"),
		"Task":     view,
	})
}

// TaskDeleteSubmit removes the caller's task.
func (h *Handlers) TaskDeleteSubmit(c *fiber.Ctx) error {
	claims := c.Locals(UserContextKey).(*domain.Claims)

	err := h.taskPort.DeleteTask(c.UserContext(), task.DeleteTaskRequest{
		CallerID: claims.UserID,
		TaskID:   c.Params("id"),
	})
	if err != nil {
		return h.renderTaskError(c, err)
	}

	h.setFlash(c, "info", "Task deleted.")
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}

// TaskToggle flips a task's completed flag and returns to the list.
func (h *Handlers) TaskToggle(c *fiber.Ctx) error {
	claims := c.Locals(UserContextKey).(*domain.Claims)

	_, err := h.taskPort.ToggleTask(c.UserContext(), task.ToggleTaskRequest{
		CallerID: claims.UserID,
		TaskID:   c.Params("id"),
	})
	if err != nil {
		return h.renderTaskError(c, err)
	}

	h.setFlash(c, "success", "Task status toggled.")
	return c.Redirect("/tasks/", fiber.StatusSeeOther)
}

// renderTaskError maps task service errors to web responses. Ownership
// mismatches collapse into the 404 page here, unlike the JSON API.
func (h *Handlers) renderTaskError(c *fiber.Ctx, err error) error {
	errStr := err.Error()
	if strings.Contains(errStr, "task not found") || strings.Contains(errStr, "permission") {
		return c.Status(fiber.StatusNotFound).Render("views/not_found", fiber.Map{
			"Title": "Not Found",
		})
	}

	log.Printf("[web] Internal error: %v", err)
	return fiber.ErrInternalServerError
}

func (h *Handlers) startSession(c *fiber.Ctx, userID, username string) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set("user_id", userID)
	sess.Set("username", username)
	return sess.Save()
}

// setFlash stores a one-shot message shown on the next rendered list.
func (h *Handlers) setFlash(c *fiber.Ctx, level, message string) {
	sess, err := h.store.Get(c)
	if err != nil {
		return
	}
	sess.Set("flash_level", level)
	sess.Set("flash_message", message)
	if err := sess.Save(); err != nil {
		log.Printf("[web] Failed to save flash: %v", err)
	}
}

// popFlash retrieves and clears the pending flash message.
func (h *Handlers) popFlash(c *fiber.Ctx) (level, message string) {
	sess, err := h.store.Get(c)
	if err != nil {
		return "", ""
	}
	level, _ = sess.Get("flash_level").(string)
	message, _ = sess.Get("flash_message").(string)
	if message != "" {
		sess.Delete("flash_level")
		sess.Delete("flash_message")
		if err := sess.Save(); err != nil {
			log.Printf("[web] Failed to clear flash: %v", err)
		}
	}
	return level, message
}

// taskForm holds raw form values so invalid submissions re-render with
// the user's input intact.
type taskForm struct {
	Title        string
	Description  string
	DueDateValue string
	DueDate      *time.Time
	Completed    bool
}

func parseTaskForm(c *fiber.Ctx) taskForm {
	form := taskForm{
		Title:        strings.TrimSpace(c.FormValue("title")),
		Description:  c.FormValue("description"),
		DueDateValue: c.FormValue("due_date"),
		Completed:    c.FormValue("completed") != "",
	}
	if form.DueDateValue != "" {
		if due, err := time.ParseInLocation(dueDateLayout, form.DueDateValue, time.UTC); err == nil {
			form.DueDate = &due
		}
	}
	return form
}

func formFromView(view *task.TaskView) taskForm {
	form := taskForm{
		Title:       view.Title,
		Description: view.Description,
		DueDate:     view.DueDate,
		Completed:   view.Completed,
	}
	if view.DueDate != nil {
		form.DueDateValue = view.DueDate.UTC().Format(dueDateLayout)
	}
	return form
}

// authErrorMessage turns an auth service error into a form message.
func authErrorMessage(err error) string {
	errStr := err.Error()
	for _, known := range []string{
		"user with this username already exists",
		"username must be 3-150 characters without spaces",
		"invalid email format",
		"password must be at least 8 characters",
		"password must be at most 72 characters",
	} {
		if strings.Contains(errStr, known) {
			// Capitalize for display
			return strings.ToUpper(known[:1]) + known[1:] + "."
		}
	}
	log.Printf("[web] Registration error: %v", err)
	return "Registration failed. Please try again."
}

// listURL builds a task list link preserving search and ordering.
func listURL(search, ordering string, page int) string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	if search != "" {
		values.Set("search", search)
	}
	if ordering != "" {
		values.Set("ordering", ordering)
	}
	return "/tasks/?" + values.Encode()
}
