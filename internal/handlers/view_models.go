package handlers

import (
	"educross/internal/content"
	"educross/internal/models"
	"educross/internal/questions"
	"educross/internal/repository"
	"educross/internal/service"
	"educross/internal/wordsearch"
)

// MeResponse is the signed-in user with the token for state-changing calls
type MeResponse struct {
	User      *models.User    `json:"user"`
	Profile   *models.Profile `json:"profile,omitempty"`
	Section   *models.Section `json:"section,omitempty"`
	CSRFToken string          `json:"csrf_token"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type ProfileRequest struct {
	FullName string `json:"full_name"`
	Nickname string `json:"nickname"`
}

type SectionRequest struct {
	Name string `json:"name"`
}

type JoinSectionRequest struct {
	JoinCode string `json:"join_code"`
}

// SubjectView lists a subject's units without their slides
type SubjectView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Units       []UnitView `json:"units"`
}

type UnitView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Slides      int    `json:"slides"`
}

func newSubjectView(s content.Subject) SubjectView {
	view := SubjectView{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Icon:        s.Icon,
		Units:       make([]UnitView, 0, len(s.Units)),
	}
	for _, u := range s.Units {
		view.Units = append(view.Units, UnitView{ID: u.ID, Title: u.Title, Description: u.Description, Slides: len(u.Slides)})
	}
	return view
}

// QuestionsResponse is a unit's merged question set, also as tagged items
type QuestionsResponse struct {
	SubjectID string           `json:"subject_id"`
	UnitID    string           `json:"unit_id"`
	Set       questions.Set    `json:"set"`
	Items     []questions.Item `json:"items"`
}

type SelectRequest struct {
	Start wordsearch.Cell `json:"start"`
	End   wordsearch.Cell `json:"end"`
}

// SelectResponse is the checked selection and the updated game
type SelectResponse struct {
	Path    []wordsearch.Cell `json:"path"`
	Matched bool              `json:"matched"`
	Match   *wordsearch.Match `json:"match,omitempty"`
	Game    wordsearch.View   `json:"game"`
	Score   *models.GameScore `json:"score,omitempty"`
}

type ScoreRequest = service.ScoreInput

type AdminUserView struct {
	models.User
	Profile *models.Profile `json:"profile,omitempty"`
}

type AdminDatabaseView struct {
	Stats     *service.DatabaseStats `json:"stats"`
	Overrides []repository.Override  `json:"overrides"`
}

type AdminUserRequest struct {
	IsAdmin bool        `json:"is_admin"`
	Role    models.Role `json:"role,omitempty"`
}
