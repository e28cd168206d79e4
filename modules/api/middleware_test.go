package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	domain "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/modules/auth"
	"github.com/gofiber/fiber/v2"
)

type mockAuthPort struct {
	claims *domain.Claims
	err    error
}

func (m *mockAuthPort) ValidateToken(_ context.Context, _ string) (*domain.Claims, error) {
	return m.claims, m.err
}

func (m *mockAuthPort) Authenticate(_ context.Context, _, _ string) (*domain.Claims, error) {
	return m.claims, m.err
}

func (m *mockAuthPort) GetUser(_ context.Context, _ string) (*domain.User, error) {
	return nil, m.err
}

func newProtectedApp(port auth.AuthPort) *fiber.App {
	app := fiber.New()
	app.Get("/protected", AuthMiddleware(port), func(c *fiber.Ctx) error {
		claims, ok := c.Locals(UserContextKey).(*domain.Claims)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(claims.Username)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		port       auth.AuthPort
		wantStatus int
	}{
		{
			name:       "missing header",
			header:     "",
			port:       &mockAuthPort{},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "not a bearer scheme",
			header:     "Basic dXNlcjpwYXNz",
			port:       &mockAuthPort{},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "empty token",
			header:     "Bearer ",
			port:       &mockAuthPort{},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			header:     "Bearer expired-token",
			port:       &mockAuthPort{err: errors.New("token validation failed: token has expired")},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "valid token",
			header:     "Bearer good-token",
			port:       &mockAuthPort{claims: &domain.Claims{UserID: "user-1", Username: "alice"}},
			wantStatus: fiber.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(tt.port)

			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
