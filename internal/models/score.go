package models

import (
	"math"
	"time"
)

// GameScore is one finished game
type GameScore struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	Subject  string    `json:"subject"`
	Topic    string    `json:"topic"`
	GameType string    `json:"game_type"`
	Score    int       `json:"score"`
	MaxScore int       `json:"max_score"`
	PlayedAt time.Time `json:"played_at"`
}

// Percent returns the score as a rounded percentage of the maximum
func (s *GameScore) Percent() int {
	return Percentage(s.Score, s.MaxScore)
}

// Percentage returns round(score/max*100), or 0 when max is not positive
func Percentage(score, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(max) * 100))
}

// ScoreWithProfile is a score row joined with its player's profile
type ScoreWithProfile struct {
	GameScore
	FullName  string
	Nickname  string
	SectionID *int64
}

// LeaderboardEntry aggregates one player's scores
type LeaderboardEntry struct {
	UserID       int64  `json:"user_id"`
	FullName     string `json:"full_name"`
	Nickname     string `json:"nickname"`
	SectionID    *int64 `json:"section_id,omitempty"`
	SectionName  string `json:"section_name,omitempty"`
	TotalScore   int    `json:"total_score"`
	MaxScore     int    `json:"max_score"`
	GamesPlayed  int    `json:"games_played"`
	AverageScore int    `json:"average_score"`
}

// StudentSummary is a teacher dashboard row for one student
type StudentSummary struct {
	LeaderboardEntry
	BestGame   string     `json:"best_game,omitempty"`
	LastPlayed *time.Time `json:"last_played,omitempty"`
}

// SectionSummary is the teacher dashboard view of a section
type SectionSummary struct {
	Section      Section          `json:"section"`
	Students     []StudentSummary `json:"students"`
	GamesPlayed  int              `json:"games_played"`
	AverageScore int              `json:"average_score"`
}
