package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"educross/internal/credentials"
	"educross/internal/database"
	"educross/internal/events"
	"educross/internal/models"
	"educross/internal/repository"
	"educross/internal/validation"
)

const joinCodeAttempts = 10

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrNotTeacher      = errors.New("only teachers can manage sections")
	ErrNotStudent      = errors.New("only students can join sections")
)

// ProfileService manages profiles and teacher sections
type ProfileService struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	sectionRepo *repository.SectionRepository
	filter      WordFilter
	mailer      Mailer
	publisher   events.Publisher
	logger      *zap.Logger
	tasks       background
}

// NewProfileService creates a new profile service
func NewProfileService(db database.DBTX, filter WordFilter, mailer Mailer, publisher events.Publisher, logger *zap.Logger) *ProfileService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ProfileService{
		userRepo:    repository.NewUserRepository(db),
		profileRepo: repository.NewProfileRepository(db),
		sectionRepo: repository.NewSectionRepository(db),
		filter:      filter,
		mailer:      mailer,
		publisher:   publisher,
		logger:      logger,
		tasks:       background{logger: logger},
	}
}

// GetProfile returns a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// IsTeacher reports whether the user's profile has the teacher role
func (s *ProfileService) IsTeacher(ctx context.Context, userID int64) (bool, error) {
	p, err := s.GetProfile(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Role == models.RoleTeacher, nil
}

// UpdateProfile changes the user's full name and nickname
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, fullName, nickname string) (*models.Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if err := validation.ValidateName(fullName); err != nil {
		return nil, err
	}
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	normalized, err := checkNickname(ctx, s.profileRepo, s.filter, userID, nickname)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.UpdateProfile(ctx, userID, fullName, normalized); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// CreateSection creates a section owned by teacherID with a fresh join code
func (s *ProfileService) CreateSection(ctx context.Context, teacherID int64, name string) (*models.Section, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateSectionName(name); err != nil {
		return nil, err
	}
	if ok, err := s.IsTeacher(ctx, teacherID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotTeacher
	}

	code, err := credentials.UniqueJoinCode(func(code string) (bool, error) {
		return s.sectionRepo.JoinCodeExists(ctx, code)
	}, joinCodeAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate join code: %w", err)
	}

	section, err := s.sectionRepo.CreateSection(ctx, name, code, teacherID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("section created", zap.Int64("section_id", section.ID), zap.Int64("teacher_id", teacherID))
	return section, nil
}

// GetSection returns a section by ID
func (s *ProfileService) GetSection(ctx context.Context, id int64) (*models.Section, error) {
	section, err := s.sectionRepo.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, ErrSectionNotFound
	}
	return section, nil
}

// ListSections returns every section
func (s *ProfileService) ListSections(ctx context.Context) ([]models.Section, error) {
	return s.sectionRepo.ListAll(ctx)
}

// SectionsForTeacher returns the sections a teacher owns
func (s *ProfileService) SectionsForTeacher(ctx context.Context, teacherID int64) ([]models.Section, error) {
	return s.sectionRepo.ListByTeacher(ctx, teacherID)
}

// JoinSection places a student into the section with the given join code.
// The owning teacher is notified in the background.
func (s *ProfileService) JoinSection(ctx context.Context, userID int64, joinCode string) (*models.Section, error) {
	joinCode = strings.ToUpper(strings.TrimSpace(joinCode))
	if err := validation.ValidateJoinCode(joinCode); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.Role != models.RoleStudent {
		return nil, ErrNotStudent
	}

	section, err := s.sectionRepo.GetSectionByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, ErrSectionNotFound
	}
	if profile.SectionID != nil && *profile.SectionID == section.ID {
		return section, nil
	}

	if err := s.profileRepo.SetSection(ctx, userID, &section.ID); err != nil {
		return nil, err
	}
	s.logger.Info("student joined section", zap.Int64("user_id", userID), zap.Int64("section_id", section.ID))

	s.tasks.Go(ctx, "section joined event", func(ctx context.Context) error {
		return s.publisher.Publish(ctx, events.SectionJoined, events.SectionEvent{
			SectionID: section.ID,
			UserID:    userID,
			JoinedAt:  time.Now().UTC(),
		})
	})
	if s.mailer != nil {
		student := profile.DisplayName()
		s.tasks.Go(ctx, "section joined email", func(ctx context.Context) error {
			return s.notifyTeacher(ctx, section, student)
		})
	}
	return section, nil
}

// DeleteSection removes a section the teacher owns. Its students stay
// registered without a section.
func (s *ProfileService) DeleteSection(ctx context.Context, teacherID, sectionID int64) error {
	section, err := s.GetSection(ctx, sectionID)
	if err != nil {
		return err
	}
	if section.TeacherID != teacherID {
		return ErrNotTeacher
	}
	if err := s.sectionRepo.DeleteSection(ctx, sectionID); err != nil {
		return err
	}
	s.logger.Info("section deleted", zap.Int64("section_id", sectionID), zap.Int64("teacher_id", teacherID))
	return nil
}

// LeaveSection removes a student from their section
func (s *ProfileService) LeaveSection(ctx context.Context, userID int64) error {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}
	return s.profileRepo.SetSection(ctx, userID, nil)
}

func (s *ProfileService) notifyTeacher(ctx context.Context, section *models.Section, student string) error {
	teacher, err := s.userRepo.GetUserByID(ctx, section.TeacherID)
	if err != nil || teacher == nil {
		return err
	}
	name := teacher.Email
	if p, err := s.profileRepo.GetProfile(ctx, teacher.ID); err == nil && p != nil {
		name = p.DisplayName()
	}
	return s.mailer.SendSectionJoinedEmail(ctx, teacher.Email, name, student, section.Name)
}

// Wait blocks until pending notifications finish
func (s *ProfileService) Wait() {
	s.tasks.Wait()
}
