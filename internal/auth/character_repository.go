package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CharacterRepository defines the interface for character sheet persistence.
type CharacterRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Character, error)
	GetOrCreate(ctx context.Context, user *User) (*Character, error)
	Update(ctx context.Context, character *Character) error
}

const characterColumns = `id, user_id, name, age, occupation, level, affiliation, personality,
	heroism, agility, intellect, strength, willpower, vigor, hp, hero_points,
	notes, inventory_text, skills_text, created_at, updated_at`

// SQLiteCharacterRepository implements CharacterRepository using SQLite.
type SQLiteCharacterRepository struct {
	db *sql.DB
}

// NewCharacterRepository creates a new SQLite-backed character repository.
func NewCharacterRepository(db *sql.DB) *SQLiteCharacterRepository {
	return &SQLiteCharacterRepository{db: db}
}

// GetByUserID retrieves the character owned by the given account.
func (r *SQLiteCharacterRepository) GetByUserID(ctx context.Context, userID string) (*Character, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+characterColumns+" FROM characters WHERE user_id = ?", userID)
	return scanCharacterFrom(row)
}

// GetOrCreate returns the account's character, provisioning one with
// deterministic defaults on first access.
//
// Concurrent first access is resolved by the UNIQUE(user_id) constraint:
// if the insert loses the race, the winner's row is reloaded and
// returned. Exactly one character ever exists per account.
func (r *SQLiteCharacterRepository) GetOrCreate(ctx context.Context, user *User) (*Character, error) {
	c, err := r.GetByUserID(ctx, user.ID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCharacterNotFound) {
		return nil, err
	}

	c = NewCharacter(user)
	if err := r.insert(ctx, c); err != nil {
		if isUniqueViolation(err) {
			// Another request created the character first; return theirs.
			return r.GetByUserID(ctx, user.ID)
		}
		return nil, err
	}

	return c, nil
}

// NewCharacter builds a fresh sheet with defaults derived from the
// owner's username. No randomness: provisioning is deterministic.
func NewCharacter(user *User) *Character {
	return &Character{
		UserID:      user.ID,
		Name:        strings.ToUpper(user.Username),
		Level:       defaultLevel,
		Personality: PersonalityHero,
		Heroism:     defaultAttribute,
		Agility:     defaultAttribute,
		Intellect:   defaultAttribute,
		Strength:    defaultAttribute,
		Willpower:   defaultAttribute,
		Vigor:       defaultAttribute,
		HP:          defaultHP,
		HeroPoints:  defaultHeroPoints,
	}
}

// insert persists a new character row. The ID is generated if empty.
func (r *SQLiteCharacterRepository) insert(ctx context.Context, c *Character) error {
	if c.ID == "" {
		c.ID = "chr-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	c.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	c.UpdatedAt = c.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO characters (id, user_id, name, age, occupation, level, affiliation, personality,
			heroism, agility, intellect, strength, willpower, vigor, hp, hero_points,
			notes, inventory_text, skills_text, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Age, c.Occupation, c.Level, c.Affiliation, c.Personality,
		c.Heroism, c.Agility, c.Intellect, c.Strength, c.Willpower, c.Vigor, c.HP, c.HeroPoints,
		c.Notes, c.InventoryText, c.SkillsText, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("creating character: %w", err)
	}
	return nil
}

// Update persists a sheet's mutable fields. Attribute and pool values
// are clamped to their bounds before writing.
func (r *SQLiteCharacterRepository) Update(ctx context.Context, c *Character) error {
	c.Heroism = Clamp(c.Heroism, AttributeMin, AttributeMax)
	c.Agility = Clamp(c.Agility, AttributeMin, AttributeMax)
	c.Intellect = Clamp(c.Intellect, AttributeMin, AttributeMax)
	c.Strength = Clamp(c.Strength, AttributeMin, AttributeMax)
	c.Willpower = Clamp(c.Willpower, AttributeMin, AttributeMax)
	c.Vigor = Clamp(c.Vigor, AttributeMin, AttributeMax)
	c.HP = Clamp(c.HP, PoolMin, PoolMax)
	c.HeroPoints = Clamp(c.HeroPoints, PoolMin, PoolMax)

	if !IsValidPersonality(c.Personality) {
		c.Personality = PersonalityHero
	}

	now := time.Now().UTC().Format(time.RFC3339)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE characters SET name = ?, age = ?, occupation = ?, level = ?, affiliation = ?,
			personality = ?, heroism = ?, agility = ?, intellect = ?, strength = ?,
			willpower = ?, vigor = ?, hp = ?, hero_points = ?, notes = ?,
			inventory_text = ?, skills_text = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name, c.Age, c.Occupation, c.Level, c.Affiliation,
		c.Personality, c.Heroism, c.Agility, c.Intellect, c.Strength,
		c.Willpower, c.Vigor, c.HP, c.HeroPoints, c.Notes,
		c.InventoryText, c.SkillsText, now,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating character: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// scanCharacterFrom scans a character from any scanner (Row or Rows).
func scanCharacterFrom(s scanner) (*Character, error) {
	var c Character
	var createdAt, updatedAt string

	err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Age, &c.Occupation, &c.Level,
		&c.Affiliation, &c.Personality,
		&c.Heroism, &c.Agility, &c.Intellect, &c.Strength, &c.Willpower, &c.Vigor,
		&c.HP, &c.HeroPoints,
		&c.Notes, &c.InventoryText, &c.SkillsText, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("scanning character: %w", err)
	}

	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &c, nil
}
