package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"educross/internal/database"
	"educross/internal/models"
	"educross/internal/repository"
	"educross/internal/security"
	"educross/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrNicknameTaken      = errors.New("nickname already taken")
	ErrNicknameRejected   = errors.New("nickname is not allowed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidRole        = errors.New("invalid role")
)

// WordFilter reports whether text contains a blocked word
type WordFilter interface {
	ContainsBadWord(ctx context.Context, text string) (bool, error)
}

// RegisterInput holds the fields of a sign-up form. JoinCode optionally
// places a student into a section.
type RegisterInput struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Nickname string      `json:"nickname"`
	Role     models.Role `json:"role"`
	JoinCode string      `json:"join_code"`
}

// AuthService handles authentication business logic
type AuthService struct {
	db              *database.DB
	userRepo        *repository.UserRepository
	profileRepo     *repository.ProfileRepository
	sectionRepo     *repository.SectionRepository
	filter          WordFilter
	mailer          Mailer
	sessionDuration time.Duration
	logger          *zap.Logger
	tasks           background
}

// NewAuthService creates a new auth service. A nil mailer disables emails.
func NewAuthService(db *database.DB, filter WordFilter, mailer Mailer, sessionDuration time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:              db,
		userRepo:        repository.NewUserRepository(db),
		profileRepo:     repository.NewProfileRepository(db),
		sectionRepo:     repository.NewSectionRepository(db),
		filter:          filter,
		mailer:          mailer,
		sessionDuration: sessionDuration,
		logger:          logger,
		tasks:           background{logger: logger},
	}
}

// Register creates a user account and its profile in one transaction
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Role == "" {
		in.Role = models.RoleStudent
	}

	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(in.FullName); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	nickname, err := s.checkNickname(ctx, 0, in.Nickname)
	if err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	var sectionID *int64
	if in.JoinCode != "" && in.Role == models.RoleStudent {
		section, err := s.sectionRepo.GetSectionByJoinCode(ctx, strings.ToUpper(strings.TrimSpace(in.JoinCode)))
		if err != nil {
			return nil, fmt.Errorf("failed to check join code: %w", err)
		}
		if section == nil {
			return nil, ErrSectionNotFound
		}
		sectionID = &section.ID
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		created, err := repository.NewUserRepository(tx).CreateUser(ctx, in.Email, passwordHash)
		if err != nil {
			return err
		}
		profile := &models.Profile{
			UserID:    created.ID,
			FullName:  in.FullName,
			Nickname:  nickname,
			Role:      in.Role,
			SectionID: sectionID,
		}
		if err := repository.NewProfileRepository(tx).CreateProfile(ctx, profile); err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(in.Role)))
	s.sendWelcome(ctx, user.Email, in.FullName)
	return user, nil
}

// Login authenticates by email or nickname and creates a session
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.Session, *models.User, error) {
	user, err := s.lookupIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) lookupIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if strings.Contains(identifier, "@") {
		user, err := s.userRepo.GetUserByEmail(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return user, nil
	}

	nickname := models.NormalizeNickname(identifier)
	if nickname == "" {
		return nil, nil
	}
	profile, err := s.profileRepo.GetProfileByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}
	user, err := s.userRepo.GetUserByID(ctx, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*models.Session, error) {
	now := time.Now()
	session, err := s.userRepo.CreateSession(ctx, security.GenerateSessionID(), user.ID, now.Add(s.sessionDuration))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		if err := s.userRepo.DeleteSession(ctx, sessionID); err != nil {
			s.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.userRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and returns how many
// were removed
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.userRepo.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}

// OAuthLogin authenticates or creates a user from a verified provider
// identity. New users become students.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		user, err = s.linkOrCreateOAuthUser(ctx, provider, subject, email, name)
		if err != nil {
			return nil, nil, err
		}
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) linkOrCreateOAuthUser(ctx context.Context, provider, subject, email, name string) (*models.User, error) {
	existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
			return nil, ErrEmailTaken
		}
		if err := s.userRepo.LinkOAuthProvider(ctx, existingUser.ID, provider, subject); err != nil {
			return nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		return existingUser, nil
	}

	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	var user *models.User
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		users := repository.NewUserRepository(tx)
		created, err := users.CreateUser(ctx, email, "")
		if err != nil {
			return err
		}
		if err := users.LinkOAuthProvider(ctx, created.ID, provider, subject); err != nil {
			return err
		}
		profile := &models.Profile{UserID: created.ID, FullName: name, Role: models.RoleStudent}
		if err := repository.NewProfileRepository(tx).CreateProfile(ctx, profile); err != nil {
			return err
		}
		created.OAuthProvider = provider
		created.OAuthSubject = subject
		user = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}

	s.logger.Info("oauth user created", zap.Int64("user_id", user.ID), zap.String("provider", provider))
	s.sendWelcome(ctx, email, name)
	return user, nil
}

// checkNickname normalizes and validates a nickname. userID is the profile
// that may already hold it.
func (s *AuthService) checkNickname(ctx context.Context, userID int64, raw string) (string, error) {
	return checkNickname(ctx, s.profileRepo, s.filter, userID, raw)
}

func (s *AuthService) sendWelcome(ctx context.Context, email, name string) {
	if s.mailer == nil {
		return
	}
	s.tasks.Go(ctx, "welcome email", func(ctx context.Context) error {
		return s.mailer.SendWelcomeEmail(ctx, email, name)
	})
}

// Wait blocks until pending background emails finish
func (s *AuthService) Wait() {
	s.tasks.Wait()
}

func checkNickname(ctx context.Context, profiles *repository.ProfileRepository, filter WordFilter, userID int64, raw string) (string, error) {
	if err := validation.ValidateNickname(raw); err != nil {
		return "", err
	}
	nickname := models.NormalizeNickname(raw)
	if nickname == "" {
		return "", nil
	}

	if filter != nil {
		bad, err := filter.ContainsBadWord(ctx, nickname)
		if err != nil {
			return "", fmt.Errorf("failed to check nickname: %w", err)
		}
		if bad {
			return "", ErrNicknameRejected
		}
	}

	holder, err := profiles.GetProfileByNickname(ctx, nickname)
	if err != nil {
		return "", fmt.Errorf("failed to check nickname: %w", err)
	}
	if holder != nil && holder.UserID != userID {
		return "", ErrNicknameTaken
	}
	return nickname, nil
}
