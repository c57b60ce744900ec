package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"educross/internal/database"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData is the complete portable backup
type BackupData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Users      []UserBackup     `json:"users"`
	Sections   []SectionBackup  `json:"sections"`
	Profiles   []ProfileBackup  `json:"profiles"`
	Scores     []ScoreBackup    `json:"scores"`
	Overrides  []OverrideBackup `json:"overrides"`
}

type UserBackup struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"password_hash"`
	OAuthProvider string     `json:"oauth_provider"`
	OAuthSubject  string     `json:"oauth_subject"`
	IsAdmin       bool       `json:"is_admin"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login"`
}

type SectionBackup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"join_code"`
	TeacherID int64     `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ProfileBackup struct {
	UserID    int64     `json:"user_id"`
	FullName  string    `json:"full_name"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	SectionID *int64    `json:"section_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ScoreBackup struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	Subject  string    `json:"subject"`
	Topic    string    `json:"topic"`
	GameType string    `json:"game_type"`
	Score    int       `json:"score"`
	MaxScore int       `json:"max_score"`
	PlayedAt time.Time `json:"played_at"`
}

// OverrideBackup keeps the payload as raw JSON so it round-trips unchanged
type OverrideBackup struct {
	SubjectID string          `json:"subject_id"`
	UnitID    string          `json:"unit_id"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedBy *int64          `json:"updated_by"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *zap.Logger) *BackupService {
	return &BackupService{db: db, logger: logger}
}

// Export reads every table into a BackupData
func (s *BackupService) Export(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{Version: BackupVersion, ExportedAt: time.Now().UTC()}

	steps := []struct {
		name string
		fn   func(context.Context, *BackupData) error
	}{
		{"users", s.exportUsers},
		{"sections", s.exportSections},
		{"profiles", s.exportProfiles},
		{"scores", s.exportScores},
		{"overrides", s.exportOverrides},
	}
	for _, step := range steps {
		if err := step.fn(ctx, backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	s.logger.Info("database exported",
		zap.Int("users", len(backup.Users)),
		zap.Int("sections", len(backup.Sections)),
		zap.Int("profiles", len(backup.Profiles)),
		zap.Int("scores", len(backup.Scores)),
		zap.Int("overrides", len(backup.Overrides)),
	)
	return backup, nil
}

// ExportToWriter writes the backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.Export(ctx)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// ExportFile writes the backup to outputPath
func (s *BackupService) ExportFile(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	return file.Close()
}

// ImportFile restores a backup from inputPath
func (s *BackupService) ImportFile(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a JSON backup in a single transaction. The
// target database is expected to be empty.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}
	return s.Import(ctx, &backup)
}

// Import restores backup in dependency order inside one transaction
func (s *BackupService) Import(ctx context.Context, backup *BackupData) error {
	s.logger.Info("starting database import", zap.Time("exported_at", backup.ExportedAt))

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, u := range backup.Users {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO users (id, email, password_hash, oauth_provider, oauth_subject, is_admin, created_at, last_login)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				u.ID, u.Email, nullIfEmpty(u.PasswordHash), nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject),
				u.IsAdmin, u.CreatedAt, nullTime(u.LastLogin))
			if err != nil {
				return fmt.Errorf("failed to import user %d: %w", u.ID, err)
			}
		}
		for _, sec := range backup.Sections {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO sections (id, name, join_code, teacher_id, created_at) VALUES (?, ?, ?, ?, ?)",
				sec.ID, sec.Name, sec.JoinCode, sec.TeacherID, sec.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to import section %d: %w", sec.ID, err)
			}
		}
		for _, p := range backup.Profiles {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO profiles (user_id, full_name, nickname, role, section_id, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
				p.UserID, p.FullName, p.Nickname, p.Role, nullID(p.SectionID), p.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to import profile %d: %w", p.UserID, err)
			}
		}
		for _, sc := range backup.Scores {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO game_scores (id, user_id, subject, topic, game_type, score, max_score, played_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				sc.ID, sc.UserID, sc.Subject, sc.Topic, sc.GameType, sc.Score, sc.MaxScore, sc.PlayedAt)
			if err != nil {
				return fmt.Errorf("failed to import score %d: %w", sc.ID, err)
			}
		}
		for _, o := range backup.Overrides {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO question_overrides (subject_id, unit_id, payload, updated_by, updated_at) VALUES (?, ?, ?, ?, ?)",
				o.SubjectID, o.UnitID, string(o.Payload), nullID(o.UpdatedBy), o.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to import override %s/%s: %w", o.SubjectID, o.UnitID, err)
			}
		}

		for _, table := range []string{"users", "sections", "game_scores"} {
			if q := tx.GetDialect().ResetSequenceQuery(table); q != "" {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					return fmt.Errorf("failed to reset %s sequence: %w", table, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("database import completed",
		zap.Int("users", len(backup.Users)),
		zap.Int("scores", len(backup.Scores)),
	)
	return nil
}

// DatabaseStats holds row counts for the admin database page
type DatabaseStats struct {
	Users     int `json:"users"`
	Sections  int `json:"sections"`
	Profiles  int `json:"profiles"`
	Scores    int `json:"scores"`
	Overrides int `json:"overrides"`
}

// Stats counts the rows of every backed-up table
func (s *BackupService) Stats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{}
	counts := []struct {
		table string
		dest  *int
	}{
		{"users", &stats.Users},
		{"sections", &stats.Sections},
		{"profiles", &stats.Profiles},
		{"game_scores", &stats.Scores},
		{"question_overrides", &stats.Overrides},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return stats, nil
}

// clearOrder lists tables children first so foreign keys never block
var clearOrder = []string{"question_overrides", "game_scores", "profiles", "sections", "sessions", "users"}

// Clear deletes every account, section, score and override. The bad words
// filter is kept.
func (s *BackupService) Clear(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, table := range clearOrder {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
		}
		s.logger.Warn("database cleared")
		return nil
	})
}

func (s *BackupService) exportUsers(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, COALESCE(password_hash, ''), COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
			is_admin, created_at, last_login
		FROM users ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		var lastLogin sql.NullTime
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.OAuthProvider, &u.OAuthSubject, &u.IsAdmin, &u.CreatedAt, &lastLogin); err != nil {
			return err
		}
		if lastLogin.Valid {
			u.LastLogin = &lastLogin.Time
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportSections(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, join_code, teacher_id, created_at FROM sections ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sec SectionBackup
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.JoinCode, &sec.TeacherID, &sec.CreatedAt); err != nil {
			return err
		}
		backup.Sections = append(backup.Sections, sec)
	}
	return rows.Err()
}

func (s *BackupService) exportProfiles(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id, full_name, nickname, role, section_id, updated_at FROM profiles ORDER BY user_id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProfileBackup
		var sectionID sql.NullInt64
		if err := rows.Scan(&p.UserID, &p.FullName, &p.Nickname, &p.Role, &sectionID, &p.UpdatedAt); err != nil {
			return err
		}
		if sectionID.Valid {
			p.SectionID = &sectionID.Int64
		}
		backup.Profiles = append(backup.Profiles, p)
	}
	return rows.Err()
}

func (s *BackupService) exportScores(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, subject, topic, game_type, score, max_score, played_at
		FROM game_scores ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sc ScoreBackup
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.Subject, &sc.Topic, &sc.GameType, &sc.Score, &sc.MaxScore, &sc.PlayedAt); err != nil {
			return err
		}
		backup.Scores = append(backup.Scores, sc)
	}
	return rows.Err()
}

func (s *BackupService) exportOverrides(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, unit_id, payload, updated_by, updated_at
		FROM question_overrides ORDER BY subject_id, unit_id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var o OverrideBackup
		var payload string
		var updatedBy sql.NullInt64
		if err := rows.Scan(&o.SubjectID, &o.UnitID, &payload, &updatedBy, &o.UpdatedAt); err != nil {
			return err
		}
		o.Payload = json.RawMessage(payload)
		if updatedBy.Valid {
			o.UpdatedBy = &updatedBy.Int64
		}
		backup.Overrides = append(backup.Overrides, o)
	}
	return rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
