package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"educross/internal/database"
	"educross/internal/models"
)

const scoreColumns = "s.id, s.user_id, s.subject, s.topic, s.game_type, s.score, s.max_score, s.played_at"

// ScoreRepository handles database operations for game scores
type ScoreRepository struct {
	db database.DBTX
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db database.DBTX) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// CreateScore records a finished game
func (r *ScoreRepository) CreateScore(ctx context.Context, score *models.GameScore) error {
	query := `
		INSERT INTO game_scores (user_id, subject, topic, game_type, score, max_score, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if score.PlayedAt.IsZero() {
		score.PlayedAt = time.Now().UTC()
	}
	id, err := r.db.ExecReturningID(ctx, query,
		score.UserID, score.Subject, score.Topic, score.GameType, score.Score, score.MaxScore, score.PlayedAt)
	if err != nil {
		return fmt.Errorf("failed to create score: %w", err)
	}
	score.ID = id
	return nil
}

// GetScoresForUser returns a user's scores, newest first
func (r *ScoreRepository) GetScoresForUser(ctx context.Context, userID int64) ([]models.GameScore, error) {
	query := "SELECT " + scoreColumns + " FROM game_scores s WHERE s.user_id = ? ORDER BY s.played_at DESC, s.id DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []models.GameScore
	for rows.Next() {
		var s models.GameScore
		if err := rows.Scan(&s.ID, &s.UserID, &s.Subject, &s.Topic, &s.GameType, &s.Score, &s.MaxScore, &s.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// GetAllScoresWithProfiles returns the scores of every player that has a
// profile, newest first
func (r *ScoreRepository) GetAllScoresWithProfiles(ctx context.Context) ([]models.ScoreWithProfile, error) {
	return r.withProfiles(ctx, "")
}

// GetScoresForSection returns the scores of the players in a section
func (r *ScoreRepository) GetScoresForSection(ctx context.Context, sectionID int64) ([]models.ScoreWithProfile, error) {
	return r.withProfiles(ctx, "WHERE p.section_id = ?", sectionID)
}

func (r *ScoreRepository) withProfiles(ctx context.Context, where string, args ...any) ([]models.ScoreWithProfile, error) {
	query := `
		SELECT ` + scoreColumns + `, p.full_name, p.nickname, p.section_id
		FROM game_scores s
		JOIN profiles p ON p.user_id = s.user_id
		` + where + `
		ORDER BY s.played_at DESC, s.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []models.ScoreWithProfile
	for rows.Next() {
		var s models.ScoreWithProfile
		var sectionID sql.NullInt64
		err := rows.Scan(
			&s.ID, &s.UserID, &s.Subject, &s.Topic, &s.GameType, &s.Score, &s.MaxScore, &s.PlayedAt,
			&s.FullName, &s.Nickname, &sectionID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		if sectionID.Valid {
			s.SectionID = &sectionID.Int64
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// DeleteScoresForUser removes a user's score history
func (r *ScoreRepository) DeleteScoresForUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM game_scores WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete scores: %w", err)
	}
	return nil
}
