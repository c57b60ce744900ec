package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxNicknameLength = 20
	MaxNameLength     = 100
	JoinCodeLength    = 6
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	nicknameRegex = regexp.MustCompile(`^[\p{L}\p{N} _\-]+$`)
	joinCodeRegex = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// ValidationError represents a validation error on one input field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	return nil
}

// ValidateName checks a person's full name
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	if n > MaxNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxNameLength)}
	}
	return nil
}

// ValidateNickname checks a display nickname. An empty nickname is allowed.
func ValidateNickname(nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil
	}
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return ValidationError{Field: "nickname", Message: fmt.Sprintf("nickname must be at most %d characters", MaxNicknameLength)}
	}
	if !nicknameRegex.MatchString(nickname) {
		return ValidationError{Field: "nickname", Message: "nickname may only contain letters, numbers, spaces, hyphens and underscores"}
	}
	return nil
}

// ValidateSectionName checks a section name
func ValidateSectionName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "section name is required"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("section name must be at most %d characters", MaxNameLength)}
	}
	return nil
}

// ValidateJoinCode checks the format of a section join code
func ValidateJoinCode(code string) error {
	if len(code) != JoinCodeLength || !joinCodeRegex.MatchString(code) {
		return ValidationError{Field: "join_code", Message: "invalid join code"}
	}
	return nil
}

// ValidateScore checks a finished game's score against its maximum
func ValidateScore(score, maxScore int) error {
	if maxScore <= 0 {
		return ValidationError{Field: "max_score", Message: "max score must be positive"}
	}
	if score < 0 || score > maxScore {
		return ValidationError{Field: "score", Message: "score must be between 0 and max score"}
	}
	return nil
}
