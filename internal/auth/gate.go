package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinPasswordLength is the policy floor for new passwords.
const MinPasswordLength = 8

// Requirement names the role an operation demands. Roles are
// exact-match: RequireMaster does not pass player-only operations and
// vice versa.
type Requirement int

const (
	// RequireAuthenticated admits any valid account.
	RequireAuthenticated Requirement = iota

	// RequirePlayer admits only player accounts.
	RequirePlayer

	// RequireMaster admits only master accounts.
	RequireMaster
)

// satisfiedBy reports whether an account role meets the requirement.
func (q Requirement) satisfiedBy(role Role) bool {
	switch q {
	case RequirePlayer:
		return role == RolePlayer
	case RequireMaster:
		return role == RoleMaster
	default:
		return true
	}
}

// Gate is the single choke point every protected operation passes
// through: token verification, account load, role check, lifecycle
// check. Nothing below the Gate leaks credential detail to callers;
// missing, malformed, expired, and dangling tokens all surface as
// ErrUnauthenticated.
type Gate struct {
	codec  *SessionCodec
	users  UserRepository
	maxAge time.Duration
}

// NewGate creates a Gate over the given codec and account store.
// maxAge is the session validity window applied to every token read.
func NewGate(codec *SessionCodec, users UserRepository, maxAge time.Duration) *Gate {
	return &Gate{
		codec:  codec,
		users:  users,
		maxAge: maxAge,
	}
}

// Authenticate resolves a bearer token into a live account.
//
// It does not apply role or lifecycle checks. It is the entry point
// for the credential-change operation, which must remain reachable
// while the forced-change flag is set. All other operations go through
// Require.
func (g *Gate) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	subjectID, err := g.codec.Read(token, g.maxAge)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := g.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Account deleted after issuance: a dangling token must
			// never resolve to a stale identity.
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("loading account for session: %w", err)
	}

	return user, nil
}

// Require authenticates the token, then applies the role and lifecycle
// checks in order.
//
// Failures: ErrUnauthenticated, then ErrForbidden on a role mismatch,
// then ErrMustChangePassword when the forced-change flag is set. On
// ErrMustChangePassword the account is still returned so the caller
// can route to the credential-change operation.
func (g *Gate) Require(ctx context.Context, token string, req Requirement) (*User, error) {
	user, err := g.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	if !req.satisfiedBy(user.Role) {
		return nil, ErrForbidden
	}

	if user.MustChangePassword {
		return user, ErrMustChangePassword
	}

	return user, nil
}

// OnBehalfOf is the explicit master-acting-for-player capability: it
// authenticates the token as a master account and resolves the target
// player. This is the only cross-account path; it is not an implicit
// role escalation, and the target's lifecycle flag does not block it.
func (g *Gate) OnBehalfOf(ctx context.Context, token, targetID string) (master, target *User, err error) {
	master, err = g.Authenticate(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	if master.Role != RoleMaster {
		return nil, nil, ErrForbidden
	}

	target, err = g.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("loading target account: %w", err)
	}

	if target.Role != RolePlayer {
		// Masters manage players only; other masters are off limits.
		return nil, nil, ErrForbidden
	}

	return master, target, nil
}

// Login verifies a username/password pair and mints a session token.
//
// Unknown usernames and wrong passwords produce the identical
// ErrInvalidCredentials so account existence cannot be probed. The
// returned account may still carry the forced-change flag; callers
// inspect MustChangePassword to route accordingly.
func (g *Gate) Login(ctx context.Context, username, password string) (*User, string, error) {
	user, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("loading account for login: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := g.codec.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issuing session token: %w", err)
	}

	return user, token, nil
}

// ChangePassword applies the credential-change policy, persists the new
// digest, clears the forced-change flag, and reissues the session
// token. A token minted before the change must not retain stale
// semantics longer than necessary, so the caller replaces the client's
// token with the returned one.
func (g *Gate) ChangePassword(ctx context.Context, user *User, newPassword, confirm string) (string, error) {
	newPassword = strings.TrimSpace(newPassword)
	confirm = strings.TrimSpace(confirm)

	if len(newPassword) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if newPassword != confirm {
		return "", ErrPasswordMismatch
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", fmt.Errorf("hashing new password: %w", err)
	}

	if err := g.users.UpdatePassword(ctx, user.ID, hash, false); err != nil {
		return "", fmt.Errorf("storing new password: %w", err)
	}
	user.PasswordHash = hash
	user.MustChangePassword = false

	token, err := g.codec.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("reissuing session token: %w", err)
	}

	return token, nil
}
