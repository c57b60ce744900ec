package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"educross/internal/database"
	"educross/internal/events"
	"educross/internal/games"
	"educross/internal/models"
	"educross/internal/questions"
	"educross/internal/repository"
	"educross/internal/validation"
)

// LeaderboardLimit is the number of players a leaderboard shows
const LeaderboardLimit = 20

// AllSections selects the leaderboard across every section
const AllSections = "all"

// ScoreInput is a finished game reported by a client
type ScoreInput struct {
	Subject  string `json:"subject"`
	Topic    string `json:"topic"`
	GameType string `json:"game_type"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
}

// ScoreService records scores and builds leaderboards
type ScoreService struct {
	scoreRepo   *repository.ScoreRepository
	profileRepo *repository.ProfileRepository
	sectionRepo *repository.SectionRepository
	units       questions.UnitSource
	publisher   events.Publisher
	logger      *zap.Logger
	tasks       background
}

// NewScoreService creates a new score service. When units is set, scores
// for units it does not know are rejected.
func NewScoreService(db database.DBTX, units questions.UnitSource, publisher events.Publisher, logger *zap.Logger) *ScoreService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ScoreService{
		scoreRepo:   repository.NewScoreRepository(db),
		profileRepo: repository.NewProfileRepository(db),
		sectionRepo: repository.NewSectionRepository(db),
		units:       units,
		publisher:   publisher,
		logger:      logger,
		tasks:       background{logger: logger},
	}
}

// Save validates and stores a score, then publishes a score event in the
// background
func (s *ScoreService) Save(ctx context.Context, userID int64, in ScoreInput) (*models.GameScore, error) {
	if !games.IsValid(in.GameType) {
		return nil, fmt.Errorf("save score: %w", games.ErrUnknownGame)
	}
	if err := validation.ValidateScore(in.Score, in.MaxScore); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Topic) == "" {
		return nil, validation.ValidationError{Field: "topic", Message: "subject and topic are required"}
	}
	if s.units != nil {
		if _, err := s.units.Unit(in.Subject, in.Topic); err != nil {
			return nil, fmt.Errorf("save score: %w", err)
		}
	}

	score := &models.GameScore{
		UserID:   userID,
		Subject:  in.Subject,
		Topic:    in.Topic,
		GameType: in.GameType,
		Score:    in.Score,
		MaxScore: in.MaxScore,
	}
	if err := s.scoreRepo.CreateScore(ctx, score); err != nil {
		return nil, err
	}

	event := events.ScoreEvent{
		ScoreID:    score.ID,
		UserID:     userID,
		Subject:    score.Subject,
		Topic:      score.Topic,
		GameType:   score.GameType,
		Score:      score.Score,
		MaxScore:   score.MaxScore,
		Percentage: score.Percent(),
		PlayedAt:   score.PlayedAt,
	}
	s.tasks.Go(ctx, "score event", func(ctx context.Context) error {
		return s.publisher.Publish(ctx, events.ScoreRecorded, event)
	})
	return score, nil
}

// ForUser returns a user's scores, newest first
func (s *ScoreService) ForUser(ctx context.Context, userID int64) ([]models.GameScore, error) {
	return s.scoreRepo.GetScoresForUser(ctx, userID)
}

// Leaderboard ranks players by average percentage. section is a section ID
// or AllSections.
func (s *ScoreService) Leaderboard(ctx context.Context, section string) ([]models.LeaderboardEntry, error) {
	var filter *int64
	if section != "" && section != AllSections {
		id, err := strconv.ParseInt(section, 10, 64)
		if err != nil {
			return nil, validation.ValidationError{Field: "section", Message: "section must be an ID or \"all\""}
		}
		filter = &id
	}

	scores, err := s.scoreRepo.GetAllScoresWithProfiles(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.sectionNames(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(scores, names, filter, LeaderboardLimit), nil
}

// SectionSummary returns per-student statistics for a section the teacher
// owns
func (s *ScoreService) SectionSummary(ctx context.Context, teacherID, sectionID int64) (*models.SectionSummary, error) {
	section, err := s.sectionRepo.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, ErrSectionNotFound
	}
	if section.TeacherID != teacherID {
		return nil, ErrNotTeacher
	}

	members, err := s.profileRepo.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	scores, err := s.scoreRepo.GetScoresForSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	return BuildSectionSummary(*section, members, scores), nil
}

func (s *ScoreService) sectionNames(ctx context.Context) (map[int64]string, error) {
	sections, err := s.sectionRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(sections))
	for _, sec := range sections {
		names[sec.ID] = sec.Name
	}
	return names, nil
}

// Wait blocks until pending score events are published
func (s *ScoreService) Wait() {
	s.tasks.Wait()
}

// BuildLeaderboard groups scores per player, optionally keeps one section,
// sorts by average percentage and returns at most limit entries. Players
// keep the order of their first score when averages tie.
func BuildLeaderboard(scores []models.ScoreWithProfile, sectionNames map[int64]string, section *int64, limit int) []models.LeaderboardEntry {
	byUser := make(map[int64]*models.LeaderboardEntry)
	var order []int64

	for _, sc := range scores {
		if section != nil && (sc.SectionID == nil || *sc.SectionID != *section) {
			continue
		}
		e, ok := byUser[sc.UserID]
		if !ok {
			e = &models.LeaderboardEntry{
				UserID:    sc.UserID,
				FullName:  sc.FullName,
				Nickname:  sc.Nickname,
				SectionID: sc.SectionID,
			}
			if sc.SectionID != nil {
				e.SectionName = sectionNames[*sc.SectionID]
			}
			byUser[sc.UserID] = e
			order = append(order, sc.UserID)
		}
		e.TotalScore += sc.Score
		e.MaxScore += sc.MaxScore
		e.GamesPlayed++
	}

	entries := make([]models.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		e := byUser[id]
		e.AverageScore = models.Percentage(e.TotalScore, e.MaxScore)
		entries = append(entries, *e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AverageScore > entries[j].AverageScore
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// BuildSectionSummary computes the teacher dashboard for a section. Every
// member is listed, including students who have not played yet.
func BuildSectionSummary(section models.Section, members []models.Profile, scores []models.ScoreWithProfile) *models.SectionSummary {
	type bestGame struct {
		game    string
		percent int
	}

	students := make(map[int64]*models.StudentSummary, len(members))
	best := make(map[int64]bestGame)
	summary := &models.SectionSummary{Section: section, Students: []models.StudentSummary{}}

	for _, m := range members {
		students[m.UserID] = &models.StudentSummary{LeaderboardEntry: models.LeaderboardEntry{
			UserID:      m.UserID,
			FullName:    m.FullName,
			Nickname:    m.Nickname,
			SectionID:   m.SectionID,
			SectionName: section.Name,
		}}
	}

	total, maxScore := 0, 0
	for _, sc := range scores {
		st, ok := students[sc.UserID]
		if !ok {
			continue
		}
		st.TotalScore += sc.Score
		st.MaxScore += sc.MaxScore
		st.GamesPlayed++
		if st.LastPlayed == nil || sc.PlayedAt.After(*st.LastPlayed) {
			played := sc.PlayedAt
			st.LastPlayed = &played
		}
		if pct := sc.Percent(); pct > best[sc.UserID].percent || best[sc.UserID].game == "" {
			best[sc.UserID] = bestGame{game: sc.GameType, percent: pct}
		}

		total += sc.Score
		maxScore += sc.MaxScore
		summary.GamesPlayed++
	}

	for _, m := range members {
		st := students[m.UserID]
		st.AverageScore = models.Percentage(st.TotalScore, st.MaxScore)
		st.BestGame = best[m.UserID].game
		summary.Students = append(summary.Students, *st)
	}
	sort.SliceStable(summary.Students, func(i, j int) bool {
		return summary.Students[i].AverageScore > summary.Students[j].AverageScore
	})
	summary.AverageScore = models.Percentage(total, maxScore)
	return summary
}
