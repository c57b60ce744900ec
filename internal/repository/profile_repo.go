package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"educross/internal/database"
	"educross/internal/models"
)

const profileColumns = "user_id, full_name, nickname, role, section_id, updated_at"

// ProfileRepository handles database operations for user profiles
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row scanner) (*models.Profile, error) {
	p := &models.Profile{}
	var role string
	var sectionID sql.NullInt64
	if err := row.Scan(&p.UserID, &p.FullName, &p.Nickname, &role, &sectionID, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Role = models.Role(role)
	if sectionID.Valid {
		p.SectionID = &sectionID.Int64
	}
	return p, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// CreateProfile inserts the profile for a user
func (r *ProfileRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, full_name, nickname, role, section_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	p.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.FullName, p.Nickname, string(p.Role), nullableID(p.SectionID), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a user's profile
func (r *ProfileRepository) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE user_id = ?"
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// GetProfileByNickname retrieves the profile holding a normalized nickname
func (r *ProfileRepository) GetProfileByNickname(ctx context.Context, nickname string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE nickname = ? AND nickname <> ''"
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, nickname))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// UpdateProfile updates the editable profile fields
func (r *ProfileRepository) UpdateProfile(ctx context.Context, userID int64, fullName, nickname string) error {
	query := `
		UPDATE profiles
		SET full_name = ?, nickname = ?, updated_at = ?
		WHERE user_id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, fullName, nickname, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// SetRole changes the profile's role
func (r *ProfileRepository) SetRole(ctx context.Context, userID int64, role models.Role) error {
	query := "UPDATE profiles SET role = ?, updated_at = ? WHERE user_id = ?"
	if _, err := r.db.ExecContext(ctx, query, string(role), time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

// SetSection moves a profile into a section, or out of any section when
// sectionID is nil
func (r *ProfileRepository) SetSection(ctx context.Context, userID int64, sectionID *int64) error {
	query := "UPDATE profiles SET section_id = ?, updated_at = ? WHERE user_id = ?"
	if _, err := r.db.ExecContext(ctx, query, nullableID(sectionID), time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("failed to update section: %w", err)
	}
	return nil
}

// ListBySection returns the profiles in a section ordered by name
func (r *ProfileRepository) ListBySection(ctx context.Context, sectionID int64) ([]models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE section_id = ? ORDER BY full_name, user_id"
	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
