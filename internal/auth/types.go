package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 64

// IsValidUsername checks if a username meets format requirements.
// Usernames are case-sensitive and immutable once chosen.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// Role represents an authorisation tier in the system.
//
// Roles are exact-match tags, not a hierarchy: a master does not
// implicitly pass player-only checks. The one sanctioned cross-account
// path is the explicit on-behalf-of capability on the Gate.
type Role string

const (
	// RolePlayer is a campaign participant. Owns exactly one character
	// sheet, provisioned on first access.
	RolePlayer Role = "player"

	// RoleMaster runs the campaign: creates and removes player accounts,
	// resets their passwords, and may read or edit any player's sheet
	// via the on-behalf-of capability.
	RoleMaster Role = "master"
)

// ValidRoles is the set of roles an account may hold.
var ValidRoles = []Role{RolePlayer, RoleMaster}

// IsValidRole returns true if the role is one of the defined roles.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents an account that can authenticate.
type User struct {
	ID                 string    `json:"id"`
	Username           string    `json:"username"`
	PasswordHash       string    `json:"-"` // never serialised
	Role               Role      `json:"role"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Character personality alignments.
const (
	PersonalityHero     = "hero"
	PersonalityAntihero = "antihero"
	PersonalityVillain  = "villain"
)

// Attribute and pool bounds for character sheets.
const (
	AttributeMin = 1
	AttributeMax = 100
	PoolMin      = 0
	PoolMax      = 999
)

// Character sheet defaults applied on first provisioning.
const (
	defaultAttribute  = 50
	defaultHP         = 25
	defaultHeroPoints = 5
	defaultLevel      = "1"
)

// IsValidPersonality returns true for a known personality alignment.
func IsValidPersonality(p string) bool {
	switch p {
	case PersonalityHero, PersonalityAntihero, PersonalityVillain:
		return true
	default:
		return false
	}
}

// Character is a player's sheet. Exactly one per account, created
// lazily on first access and removed with the owning account.
type Character struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Age         string `json:"age"`
	Occupation  string `json:"occupation"`
	Level       string `json:"level"`
	Affiliation string `json:"affiliation"`
	Personality string `json:"personality"`

	Heroism   int `json:"heroism"`
	Agility   int `json:"agility"`
	Intellect int `json:"intellect"`
	Strength  int `json:"strength"`
	Willpower int `json:"willpower"`
	Vigor     int `json:"vigor"`

	HP         int `json:"hp"`
	HeroPoints int `json:"hero_points"`

	Notes         string `json:"notes"`
	InventoryText string `json:"inventory_text"`
	SkillsText    string `json:"skills_text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clamp restricts v to the inclusive range [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrMustChangePassword = errors.New("password change required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrCharacterNotFound  = errors.New("character not found")
)
