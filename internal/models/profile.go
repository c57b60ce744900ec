package models

import (
	"strings"
	"time"
)

// Role is a profile's role on the platform
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Profile is the public face of a user
type Profile struct {
	UserID    int64     `json:"user_id"`
	FullName  string    `json:"full_name"`
	Nickname  string    `json:"nickname"`
	Role      Role      `json:"role"`
	SectionID *int64    `json:"section_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName prefers the nickname over the full name
func (p *Profile) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.FullName
}

// Section is a teacher's class group that students join with a code
type Section struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"join_code"`
	TeacherID int64     `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeNickname lower-cases a nickname and strips its whitespace
func NormalizeNickname(nickname string) string {
	return strings.Join(strings.Fields(strings.ToLower(nickname)), "")
}
