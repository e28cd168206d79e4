package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/example/taskboard/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewAuthService(NewUserRepository(db), NewPasswordHasher(), NewJWTManager(testJWTConfig()))
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid without email", username: "alice", password: "password123"},
		{name: "valid with email", username: "bob", email: "bob@example.com", password: "password123"},
		{name: "username too short", username: "ab", password: "password123", wantErr: ErrInvalidUsername},
		{name: "username with spaces", username: "bad name", password: "password123", wantErr: ErrInvalidUsername},
		{name: "username too long", username: strings.Repeat("a", 151), password: "password123", wantErr: ErrInvalidUsername},
		{name: "malformed email", username: "carol", email: "not-an-email", password: "password123", wantErr: ErrInvalidEmail},
		{name: "short password", username: "dave", password: "short", wantErr: ErrWeakPassword},
		{name: "oversized password", username: "erin", password: strings.Repeat("x", 73), wantErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Register(ctx, tt.username, tt.email, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if user.Username != tt.username {
				t.Errorf("Username = %q, want %q", user.Username, tt.username)
			}
			if user.PasswordHash == tt.password {
				t.Error("password stored in plain text")
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "", "password123"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	if _, err := svc.Register(ctx, "alice", "", "anotherpassword"); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("correct credentials", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "alice", "password123")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if user.ID != registered.ID {
			t.Errorf("ID = %q, want %q", user.ID, registered.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "alice", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		if _, err := svc.Authenticate(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestLoginAndRefresh(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	pair, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", pair.TokenType)
	}

	claims, err := svc.ValidateToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}

	t.Run("refresh with refresh token", func(t *testing.T) {
		fresh, err := svc.RefreshTokens(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshTokens() error = %v", err)
		}
		if _, err := svc.ValidateToken(ctx, fresh.AccessToken); err != nil {
			t.Errorf("refreshed access token invalid: %v", err)
		}
	})

	t.Run("refresh with access token rejected", func(t *testing.T) {
		if _, err := svc.RefreshTokens(ctx, pair.AccessToken); err == nil {
			t.Error("expected error refreshing with an access token")
		}
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		if _, err := svc.ValidateToken(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
