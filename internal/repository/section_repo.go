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

const sectionColumns = "id, name, join_code, teacher_id, created_at"

// SectionRepository handles database operations for teacher sections
type SectionRepository struct {
	db database.DBTX
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db database.DBTX) *SectionRepository {
	return &SectionRepository{db: db}
}

func scanSection(row scanner) (*models.Section, error) {
	s := &models.Section{}
	if err := row.Scan(&s.ID, &s.Name, &s.JoinCode, &s.TeacherID, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSection inserts a new section
func (r *SectionRepository) CreateSection(ctx context.Context, name, joinCode string, teacherID int64) (*models.Section, error) {
	query := `
		INSERT INTO sections (name, join_code, teacher_id)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, name, joinCode, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}
	return &models.Section{
		ID:        id,
		Name:      name,
		JoinCode:  joinCode,
		TeacherID: teacherID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// GetSection retrieves a section by ID
func (r *SectionRepository) GetSection(ctx context.Context, id int64) (*models.Section, error) {
	return r.getOne(ctx, "SELECT "+sectionColumns+" FROM sections WHERE id = ?", id)
}

// GetSectionByJoinCode retrieves a section by its join code
func (r *SectionRepository) GetSectionByJoinCode(ctx context.Context, code string) (*models.Section, error) {
	return r.getOne(ctx, "SELECT "+sectionColumns+" FROM sections WHERE join_code = ?", code)
}

// JoinCodeExists checks if a join code is already taken
func (r *SectionRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sections WHERE join_code = ?", code).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check join code: %w", err)
	}
	return count > 0, nil
}

// ListByTeacher returns the sections a teacher owns
func (r *SectionRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.Section, error) {
	return r.list(ctx, "SELECT "+sectionColumns+" FROM sections WHERE teacher_id = ? ORDER BY name, id", teacherID)
}

// ListAll returns every section
func (r *SectionRepository) ListAll(ctx context.Context) ([]models.Section, error) {
	return r.list(ctx, "SELECT "+sectionColumns+" FROM sections ORDER BY name, id")
}

// DeleteSection removes a section. Member profiles drop back to no section.
func (r *SectionRepository) DeleteSection(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sections WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}
	return nil
}

func (r *SectionRepository) getOne(ctx context.Context, query string, args ...any) (*models.Section, error) {
	s, err := scanSection(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return s, nil
}

func (r *SectionRepository) list(ctx context.Context, query string, args ...any) ([]models.Section, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, *s)
	}
	return sections, rows.Err()
}
