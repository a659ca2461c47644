package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateTempPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		pw, err := GenerateTempPassword()
		if err != nil {
			t.Fatalf("GenerateTempPassword() error = %v", err)
		}
		if len(pw) != tempPasswordLength {
			t.Fatalf("len = %d, want %d", len(pw), tempPasswordLength)
		}
		for _, c := range pw {
			if !strings.ContainsRune(tempPasswordAlphabet, c) {
				t.Fatalf("password %q contains %q outside the alphabet", pw, c)
			}
		}
		if seen[pw] {
			t.Fatalf("GenerateTempPassword() repeated %q", pw)
		}
		seen[pw] = true
	}
}

func TestResetPassword(t *testing.T) {
	db := testDB(t)
	users := NewUserRepository(db)

	target := seedTestUser(t, db, "pippin", "original-pw", RolePlayer, false)
	oldHash := target.PasswordHash

	temp, err := ResetPassword(context.Background(), users, target)
	if err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if temp == "" {
		t.Fatal("ResetPassword() returned empty temp password")
	}

	got, err := users.GetByID(context.Background(), target.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.MustChangePassword {
		t.Error("ResetPassword() should set must_change_password")
	}
	if got.PasswordHash == oldHash {
		t.Error("ResetPassword() should replace the stored digest")
	}
	if !VerifyPassword(temp, got.PasswordHash) {
		t.Error("temp password should verify against the new digest")
	}
	if VerifyPassword("original-pw", got.PasswordHash) {
		t.Error("old password should no longer verify")
	}

	// The in-memory copy is updated too, so callers can keep using it.
	if !target.MustChangePassword {
		t.Error("ResetPassword() should update the passed-in user")
	}
}

// After a reset, the account is locked to the credential-change path
// until the temporary password is replaced.
func TestResetPassword_ForcesChange(t *testing.T) {
	gate, users, db := newTestGate(t)

	target := seedTestUser(t, db, "merry", "first-password", RolePlayer, false)

	temp, err := ResetPassword(context.Background(), users, target)
	if err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	user, token, err := gate.Login(context.Background(), "merry", temp)
	if err != nil {
		t.Fatalf("Login() with temp password error = %v", err)
	}

	if _, err := gate.Require(context.Background(), token, RequirePlayer); !errors.Is(err, ErrMustChangePassword) {
		t.Fatalf("Require() during MUST_CHANGE error = %v, want ErrMustChangePassword", err)
	}

	newToken, err := gate.ChangePassword(context.Background(), user, "fresh-password", "fresh-password")
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if _, err := gate.Require(context.Background(), newToken, RequirePlayer); err != nil {
		t.Fatalf("Require() after change error = %v, want nil", err)
	}
}
