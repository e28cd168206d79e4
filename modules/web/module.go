package web

import (
	"context"
	"embed"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/notification"
	"github.com/example/taskboard/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
)

//go:embed views/*.html views/layouts/*.html
var viewsFS embed.FS

// WebModule is the server-rendered gateway: session-cookie
// authenticated pages over the same task services the JSON API uses.
type WebModule struct {
	app              *fiber.App
	addr             string
	store            *session.Store
	authAdapter      auth.AuthPort
	authContainer    mono.ServiceContainer
	taskAdapter      task.TaskPort
	notificationPort notification.ActivityPort
}

// Compile-time interface checks.
var _ mono.Module = (*WebModule)(nil)
var _ mono.DependentModule = (*WebModule)(nil)
var _ mono.HealthCheckableModule = (*WebModule)(nil)

// NewModule creates a new WebModule.
func NewModule() *WebModule {
	addr := os.Getenv("WEB_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return &WebModule{addr: addr}
}

// Name returns the module name.
func (m *WebModule) Name() string {
	return "web"
}

// Dependencies returns the list of module dependencies.
func (m *WebModule) Dependencies() []string {
	return []string{"auth", "task", "notification"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *WebModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	case "task":
		m.taskAdapter = task.NewTaskAdapter(container)
	case "notification":
		m.notificationPort = notification.NewActivityAdapter(container)
	}
}

// Start initializes the Fiber HTTP server with views, sessions and
// CSRF protection.
func (m *WebModule) Start(_ context.Context) error {
	if m.authAdapter == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.taskAdapter == nil {
		return fmt.Errorf("task dependency not set")
	}

	engine := html.NewFileSystem(http.FS(viewsFS), ".html")

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Views:                 engine,
		ViewsLayout:           "views/layouts/main",
	})

	m.store = session.New(session.Config{
		KeyLookup:      "cookie:taskboard_session",
		Expiration:     24 * time.Hour,
		CookieHTTPOnly: true,
		CookieSecure:   os.Getenv("SESSION_SECURE") == "true",
		CookieSameSite: "Lax",
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	// All state-changing POSTs carry a csrf_token form field
	m.app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf_token",
		ContextKey:     "csrf_token",
		CookieName:     "taskboard_csrf",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		Session:        m.store,
	}))

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			log.Printf("[web] HTTP server error: %v", err)
		}
	}()

	log.Printf("[web] HTTP server started on %s", m.addr)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *WebModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[web] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *WebModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.addr,
		},
	}
}

// setupRoutes configures all web routes.
func (m *WebModule) setupRoutes() {
	handlers := NewHandlers(m.store, m.authContainer, m.authAdapter, m.taskAdapter, m.notificationPort)

	m.app.Get("/", handlers.Home)
	m.app.Get("/register/", handlers.RegisterPage)
	m.app.Post("/register/", handlers.RegisterSubmit)
	m.app.Get("/login/", handlers.LoginPage)
	m.app.Post("/login/", handlers.LoginSubmit)
	m.app.Post("/logout/", handlers.Logout)

	// Task pages require a logged-in session
	tasks := m.app.Group("/tasks", handlers.RequireLogin)
	tasks.Get("/", handlers.TasksList)
	tasks.Get("/new/", handlers.TaskCreatePage)
	tasks.Post("/new/", handlers.TaskCreateSubmit)
	tasks.Get("/:id/edit/", handlers.TaskEditPage)
	tasks.Post("/:id/edit/", handlers.TaskEditSubmit)
	tasks.Get("/:id/delete/", handlers.TaskDeletePage)
	tasks.Post("/:id/delete/", handlers.TaskDeleteSubmit)
	tasks.Post("/:id/toggle/", handlers.TaskToggle)
}
