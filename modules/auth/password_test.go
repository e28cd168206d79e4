package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasherWithCost(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{name: "plain", password: "password123"},
		{name: "symbols", password: "P@ssw0rd!#$%"},
		{name: "unicode", password: "пароль密码123"},
		{name: "max length", password: strings.Repeat("x", 72)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if hash == tt.password {
				t.Error("hash equals the plain password")
			}

			if !hasher.Verify(tt.password, hash) {
				t.Error("Verify() rejected the correct password")
			}
			// bcrypt ignores bytes past 72, so the wrong password must
			// differ within the prefix
			if hasher.Verify("Z"+tt.password[1:], hash) {
				t.Error("Verify() accepted a wrong password")
			}
			if hasher.Verify("", hash) {
				t.Error("Verify() accepted an empty password")
			}
		})
	}
}

func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := NewPasswordHasherWithCost(bcrypt.MinCost)

	first, err := hasher.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := hasher.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password are identical")
	}
	if !hasher.Verify("samepassword", first) || !hasher.Verify("samepassword", second) {
		t.Error("Verify() rejected one of the salted hashes")
	}
}

func TestNewPasswordHasherWithCost_Bounds(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost - 1, bcrypt.MaxCost + 1} {
		hasher := NewPasswordHasherWithCost(cost)
		if hasher.cost != defaultBcryptCost {
			t.Errorf("cost %d accepted, want fallback to %d", cost, defaultBcryptCost)
		}
	}
}
