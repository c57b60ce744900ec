package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"educross/internal/database"
	"educross/internal/questions"
)

// Override is an admin-authored question set stored for one unit
type Override struct {
	SubjectID string        `json:"subject_id"`
	UnitID    string        `json:"unit_id"`
	Set       questions.Set `json:"set"`
	UpdatedBy *int64        `json:"updated_by,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// OverrideRepository stores manual question sets. It satisfies
// questions.OverrideStore.
type OverrideRepository struct {
	db database.DBTX
}

// NewOverrideRepository creates a new override repository
func NewOverrideRepository(db database.DBTX) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// Override returns the manual set for a unit, or nil when none is stored
func (r *OverrideRepository) Override(ctx context.Context, subjectID, unitID string) (*questions.Set, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		"SELECT payload FROM question_overrides WHERE subject_id = ? AND unit_id = ?",
		subjectID, unitID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get override: %w", err)
	}

	var set questions.Set
	if err := json.Unmarshal([]byte(payload), &set); err != nil {
		return nil, fmt.Errorf("failed to decode override %s/%s: %w", subjectID, unitID, err)
	}
	return &set, nil
}

// UpsertOverride stores the manual set for a unit, replacing any previous one
func (r *OverrideRepository) UpsertOverride(ctx context.Context, subjectID, unitID string, set questions.Set, updatedBy int64) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode override: %w", err)
	}

	var by any
	if updatedBy > 0 {
		by = updatedBy
	}
	if _, err := r.db.ExecContext(ctx, r.db.GetDialect().UpsertOverrideQuery(), subjectID, unitID, string(payload), by); err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}
	return nil
}

// DeleteOverride removes the manual set for a unit
func (r *OverrideRepository) DeleteOverride(ctx context.Context, subjectID, unitID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM question_overrides WHERE subject_id = ? AND unit_id = ?", subjectID, unitID)
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}
	return nil
}

// ListOverrides returns every stored override ordered by unit
func (r *OverrideRepository) ListOverrides(ctx context.Context) ([]Override, error) {
	query := `
		SELECT subject_id, unit_id, payload, updated_by, updated_at
		FROM question_overrides
		ORDER BY subject_id, unit_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	var overrides []Override
	for rows.Next() {
		var o Override
		var payload string
		var updatedBy sql.NullInt64
		if err := rows.Scan(&o.SubjectID, &o.UnitID, &payload, &updatedBy, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &o.Set); err != nil {
			return nil, fmt.Errorf("failed to decode override %s/%s: %w", o.SubjectID, o.UnitID, err)
		}
		if updatedBy.Valid {
			o.UpdatedBy = &updatedBy.Int64
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}
