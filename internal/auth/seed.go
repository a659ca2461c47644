package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// SeedAccount describes one account to ensure exists at startup.
type SeedAccount struct {
	Username           string
	Password           string
	Role               Role
	MustChangePassword bool
}

// UpsertAccount idempotently ensures a well-known account exists.
//
// If the username is absent the account is created. If it exists, the
// role is reconciled, and the stored digest is replaced only when the
// supplied password no longer verifies against it, so a player who has
// already changed away from the seeded password is left alone unless
// the operator changes the seed value.
func UpsertAccount(ctx context.Context, users UserRepository, seed SeedAccount) error {
	username := strings.TrimSpace(seed.Username)
	if username == "" {
		return nil
	}
	if !IsValidUsername(username) {
		return fmt.Errorf("seed account %q: invalid username", username)
	}
	if !IsValidRole(seed.Role) {
		return fmt.Errorf("seed account %q: invalid role %q", username, seed.Role)
	}

	existing, err := users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("looking up seed account %q: %w", username, err)
		}

		hash, hashErr := HashPassword(seed.Password)
		if hashErr != nil {
			return fmt.Errorf("hashing seed password for %q: %w", username, hashErr)
		}

		user := &User{
			Username:           username,
			PasswordHash:       hash,
			Role:               seed.Role,
			MustChangePassword: seed.MustChangePassword,
		}
		if createErr := users.Create(ctx, user); createErr != nil {
			return fmt.Errorf("creating seed account %q: %w", username, createErr)
		}
		return nil
	}

	if existing.Role != seed.Role {
		if err := users.UpdateRole(ctx, existing.ID, seed.Role); err != nil {
			return fmt.Errorf("reconciling role for seed account %q: %w", username, err)
		}
	}

	if seed.Password != "" && !VerifyPassword(seed.Password, existing.PasswordHash) {
		hash, hashErr := HashPassword(seed.Password)
		if hashErr != nil {
			return fmt.Errorf("hashing seed password for %q: %w", username, hashErr)
		}
		if err := users.UpdatePassword(ctx, existing.ID, hash, seed.MustChangePassword); err != nil {
			return fmt.Errorf("reconciling password for seed account %q: %w", username, err)
		}
	}

	return nil
}

// SeedAccounts ensures each configured account exists, logging what was
// done. Seeding is administrative bootstrap, not request-time work; it
// runs once at startup before the server accepts connections.
func SeedAccounts(ctx context.Context, users UserRepository, seeds []SeedAccount, logger *slog.Logger) error {
	for _, seed := range seeds {
		if err := UpsertAccount(ctx, users, seed); err != nil {
			return err
		}
		logger.Info("seed account ensured",
			"username", seed.Username,
			"role", seed.Role,
		)
	}
	return nil
}
