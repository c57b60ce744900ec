package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"educross/internal/content"
	"educross/internal/database/dbtest"
	"educross/internal/games"
	"educross/internal/models"
	"educross/internal/questions"
	"educross/internal/repository"
	"educross/internal/security"
	"educross/internal/service"
	"educross/internal/wordsearch"
)

const (
	testSubject = "chemistry-1"
	testUnit    = "chem1-unit1"
)

func testCatalog() *content.Catalog {
	terms := func(names ...string) []content.KeyTerm {
		out := make([]content.KeyTerm, len(names))
		for i, n := range names {
			out[i] = content.KeyTerm{Term: n, Definition: "Definition of " + strings.ToLower(n)}
		}
		return out
	}
	return content.NewCatalog([]content.Subject{{
		ID:    testSubject,
		Title: "Chemistry 1",
		Units: []content.Unit{{
			ID:    testUnit,
			Title: "Atoms",
			Slides: []content.Slide{
				{Title: "Particles", Content: content.Paragraphs{"Atoms are made of particles."}, KeyTerms: terms("Proton", "Neutron", "Electron")},
				{Title: "Structure", Content: content.Paragraphs{"The nucleus sits at the centre."}, KeyTerms: terms("Nucleus", "Shell", "Orbital")},
			},
		}},
	}})
}

type testAPI struct {
	handler http.Handler
}

func newTestAPI(t *testing.T, limiter *security.RateLimiter) *testAPI {
	t.Helper()
	db := dbtest.Open(t)
	ctx := context.Background()
	if err := db.SeedBadWords(ctx); err != nil {
		t.Fatalf("SeedBadWords() error = %v", err)
	}

	logger := zap.NewNop()
	catalog := testCatalog()
	overrideRepo := repository.NewOverrideRepository(db)
	bank := questions.NewBank(catalog, questions.NewGenerator(), overrideRepo, logger)
	store := wordsearch.NewSessionStore(time.Hour)

	authService := service.NewAuthService(db, db, nil, time.Hour, logger)
	profileService := service.NewProfileService(db, db, nil, nil, logger)
	scoreService := service.NewScoreService(db, catalog, nil, logger)
	backupService := service.NewBackupService(db, logger)
	t.Cleanup(func() {
		authService.Wait()
		profileService.Wait()
		scoreService.Wait()
	})

	csrf := security.NewCSRF("test-secret")
	seeded := func() *rand.Rand { return rand.New(rand.NewSource(1)) }
	if limiter == nil {
		limiter = security.NewRateLimiter(1000, time.Minute)
	}

	handler := NewRouter(Handlers{
		Middleware: NewMiddleware(authService, profileService, csrf, logger),
		Auth:       NewAuthHandler(authService, profileService, csrf, nil, "http://localhost", logger),
		Content:    NewContentHandler(catalog, bank, seeded, logger),
		WordSearch: NewWordSearchHandler(catalog, bank, store, scoreService, seeded, logger),
		Profile:    NewProfileHandler(profileService, scoreService, logger),
		Admin: NewAdminHandler(catalog, bank, overrideRepo,
			repository.NewUserRepository(db), repository.NewProfileRepository(db), repository.NewScoreRepository(db),
			backupService, logger),
	}, limiter)

	return &testAPI{handler: handler}
}

// client replays the session cookie and CSRF token like a browser would
type client struct {
	t       *testing.T
	api     *testAPI
	session string
	csrf    string
	user    *models.User
}

func (a *testAPI) anonymous(t *testing.T) *client {
	return &client{t: t, api: a}
}

func (a *testAPI) register(t *testing.T, email, nickname string, role models.Role) *client {
	t.Helper()
	c := a.anonymous(t)
	rec := c.do(http.MethodPost, "/api/auth/register", service.RegisterInput{
		Email:    email,
		Password: "password123",
		FullName: "Test " + nickname,
		Nickname: nickname,
		Role:     role,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", email, rec.Code, rec.Body.String())
	}
	var me MeResponse
	decodeBody(t, rec, &me)
	c.csrf = me.CSRFToken
	c.user = me.User
	return c
}

func (c *client) request(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: security.SessionCookie, Value: c.session})
	}
	if c.csrf != "" {
		req.Header.Set(security.CSRFHeader, c.csrf)
	}

	rec := httptest.NewRecorder()
	c.api.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == security.SessionCookie {
			c.session = cookie.Value
		}
	}
	return rec
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	if body == nil {
		return c.request(method, path, nil, "")
	}
	data, err := json.Marshal(body)
	if err != nil {
		c.t.Fatal(err)
	}
	return c.request(method, path, bytes.NewReader(data), "application/json")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d: %s", rec.Code, want, rec.Body.String())
	}
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := api.register(t, "alice@example.com", "alice", "")

	if alice.session == "" || alice.csrf == "" {
		t.Fatalf("register did not sign in: session %q csrf %q", alice.session, alice.csrf)
	}
	if !alice.user.IsAdmin {
		t.Error("first user should be admin")
	}

	rec := alice.do(http.MethodGet, "/api/auth/me", nil)
	expectStatus(t, rec, http.StatusOK)
	var me MeResponse
	decodeBody(t, rec, &me)
	if me.Profile == nil || me.Profile.Nickname != "alice" || me.Profile.Role != models.RoleStudent {
		t.Errorf("me profile = %+v", me.Profile)
	}

	t.Run("csrf required", func(t *testing.T) {
		token := alice.csrf
		alice.csrf = ""
		rec := alice.do(http.MethodPut, "/api/profile", ProfileRequest{FullName: "Alice A", Nickname: "alice"})
		alice.csrf = token
		expectStatus(t, rec, http.StatusForbidden)
		if body := decodeError(t, rec); body.Error != ErrInvalidCSRF {
			t.Errorf("error = %q", body.Error)
		}

		rec = alice.do(http.MethodPut, "/api/profile", ProfileRequest{FullName: "Alice A", Nickname: "alice"})
		expectStatus(t, rec, http.StatusOK)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := api.anonymous(t).do(http.MethodPost, "/api/auth/register", service.RegisterInput{
			Email: "alice@example.com", Password: "password123", FullName: "Other",
		})
		expectStatus(t, rec, http.StatusConflict)
	})

	t.Run("validation error names the field", func(t *testing.T) {
		rec := api.anonymous(t).do(http.MethodPost, "/api/auth/register", service.RegisterInput{
			Email: "bob@example.com", Password: "short", FullName: "Bob",
		})
		expectStatus(t, rec, http.StatusBadRequest)
		if body := decodeError(t, rec); body.Field != "password" {
			t.Errorf("field = %q", body.Field)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := api.anonymous(t).request(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"identifier":"alice","password":"password123","admin":true}`), "application/json")
		expectStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("login", func(t *testing.T) {
		c := api.anonymous(t)
		expectStatus(t, c.do(http.MethodPost, "/api/auth/login", LoginRequest{Identifier: "alice", Password: "wrong-password"}), http.StatusUnauthorized)

		rec := c.do(http.MethodPost, "/api/auth/login", LoginRequest{Identifier: "alice@example.com", Password: "password123"})
		expectStatus(t, rec, http.StatusOK)
		if c.session == "" || c.session == alice.session {
			t.Errorf("login session = %q", c.session)
		}
	})

	t.Run("logout", func(t *testing.T) {
		expectStatus(t, alice.do(http.MethodPost, "/api/auth/logout", nil), http.StatusNoContent)
		if alice.session != "" {
			t.Errorf("session cookie not cleared: %q", alice.session)
		}
		expectStatus(t, alice.do(http.MethodGet, "/api/auth/me", nil), http.StatusUnauthorized)
	})
}

func TestAuthRateLimit(t *testing.T) {
	api := newTestAPI(t, security.NewRateLimiter(2, time.Minute))
	c := api.anonymous(t)

	for i := 0; i < 2; i++ {
		expectStatus(t, c.do(http.MethodPost, "/api/auth/login", LoginRequest{Identifier: "nobody", Password: "password123"}), http.StatusUnauthorized)
	}
	rec := c.do(http.MethodPost, "/api/auth/login", LoginRequest{Identifier: "nobody", Password: "password123"})
	expectStatus(t, rec, http.StatusTooManyRequests)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestContentRoutes(t *testing.T) {
	api := newTestAPI(t, nil)
	c := api.anonymous(t)

	rec := c.do(http.MethodGet, "/api/subjects", nil)
	expectStatus(t, rec, http.StatusOK)
	var subjects []SubjectView
	decodeBody(t, rec, &subjects)
	if len(subjects) != 1 || len(subjects[0].Units) != 1 || subjects[0].Units[0].Slides != 2 {
		t.Fatalf("subjects = %+v", subjects)
	}

	expectStatus(t, c.do(http.MethodGet, "/api/subjects/biology", nil), http.StatusNotFound)
	expectStatus(t, c.do(http.MethodGet, "/api/subjects/"+testSubject+"/units/missing", nil), http.StatusNotFound)

	rec = c.do(http.MethodGet, "/api/subjects/"+testSubject+"/units/"+testUnit+"/questions", nil)
	expectStatus(t, rec, http.StatusOK)
	var qs QuestionsResponse
	decodeBody(t, rec, &qs)
	if len(qs.Set.Questions) != 6 || len(qs.Set.Words) != 6 {
		t.Errorf("set = %d questions, %d words", len(qs.Set.Questions), len(qs.Set.Words))
	}
	if len(qs.Items) == 0 || qs.Items[0].Kind != questions.KindSingle {
		t.Errorf("items = %+v", qs.Items)
	}

	rec = c.do(http.MethodGet, "/api/games", nil)
	expectStatus(t, rec, http.StatusOK)
	var list []games.Game
	decodeBody(t, rec, &list)
	if len(list) != 10 {
		t.Errorf("got %d games", len(list))
	}

	rec = c.do(http.MethodGet, "/api/games/"+games.MemoryFlip+"/"+testSubject+"/"+testUnit, nil)
	expectStatus(t, rec, http.StatusOK)
	var payload struct {
		Game     games.Game   `json:"game"`
		MaxScore int          `json:"max_score"`
		Data     []games.Card `json:"data"`
	}
	decodeBody(t, rec, &payload)
	if payload.Game.ID != games.MemoryFlip || payload.MaxScore != 6 || len(payload.Data) != 12 {
		t.Errorf("payload = %+v", payload)
	}

	expectStatus(t, c.do(http.MethodGet, "/api/games/tetris/"+testSubject+"/"+testUnit, nil), http.StatusBadRequest)
	expectStatus(t, c.do(http.MethodGet, "/api/games/"+games.Snake+"/"+testSubject+"/missing", nil), http.StatusNotFound)
}

func gridFromRows(rows []string) *wordsearch.Grid {
	var g wordsearch.Grid
	for y, row := range rows {
		for x, r := range []rune(row) {
			g[y][x] = r
		}
	}
	return &g
}

func TestWordSearchFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	c := api.register(t, "player@example.com", "player", "")

	expectStatus(t, api.anonymous(t).do(http.MethodPost, "/api/wordsearch/"+testSubject+"/"+testUnit, nil), http.StatusUnauthorized)
	expectStatus(t, c.do(http.MethodPost, "/api/wordsearch/"+testSubject+"/missing", nil), http.StatusNotFound)

	rec := c.do(http.MethodPost, "/api/wordsearch/"+testSubject+"/"+testUnit, nil)
	expectStatus(t, rec, http.StatusCreated)
	var game wordsearch.View
	decodeBody(t, rec, &game)
	if game.ID == "" || len(game.Rows) != wordsearch.GridSize || len(game.Words) == 0 {
		t.Fatalf("game = %+v", game)
	}
	if game.Words[0].Clue == "" {
		t.Error("word clues missing")
	}

	expectStatus(t, c.do(http.MethodGet, "/api/wordsearch/unknown", nil), http.StatusNotFound)
	expectStatus(t, c.do(http.MethodPost, "/api/wordsearch/"+game.ID+"/select",
		SelectRequest{Start: wordsearch.Cell{Row: -1, Col: 0}, End: wordsearch.Cell{Row: 0, Col: 0}}), http.StatusBadRequest)

	grid := gridFromRows(game.Rows)
	var last SelectResponse
	for i, entry := range game.Words {
		path, ok := wordsearch.Locate(entry.Word, grid)
		if !ok {
			t.Fatalf("target %q not in grid", entry.Word)
		}
		rec := c.do(http.MethodPost, "/api/wordsearch/"+game.ID+"/select", SelectRequest{Start: path[0], End: path[len(path)-1]})
		expectStatus(t, rec, http.StatusOK)
		last = SelectResponse{}
		decodeBody(t, rec, &last)
		if !last.Matched || last.Match.Word != entry.Word {
			t.Fatalf("select %q = %+v", entry.Word, last)
		}
		if len(last.Game.Found) != i+1 {
			t.Errorf("found = %v", last.Game.Found)
		}
	}

	if !last.Game.Complete || last.Score == nil {
		t.Fatalf("final select = %+v", last)
	}
	if last.Score.GameType != games.WordSearch || last.Score.Score != len(game.Words) || last.Score.MaxScore != len(game.Words) {
		t.Errorf("saved score = %+v", last.Score)
	}

	rec = c.do(http.MethodGet, "/api/scores/me", nil)
	expectStatus(t, rec, http.StatusOK)
	var scores []models.GameScore
	decodeBody(t, rec, &scores)
	if len(scores) != 1 || scores[0].Topic != testUnit {
		t.Errorf("scores = %+v", scores)
	}
}

func TestSectionsAndLeaderboards(t *testing.T) {
	api := newTestAPI(t, nil)
	teacher := api.register(t, "teacher@example.com", "mrsmith", models.RoleTeacher)
	student := api.register(t, "student@example.com", "atomfan", models.RoleStudent)

	expectStatus(t, student.do(http.MethodPost, "/api/sections", SectionRequest{Name: "Nope"}), http.StatusForbidden)

	rec := teacher.do(http.MethodPost, "/api/sections", SectionRequest{Name: "Period 1"})
	expectStatus(t, rec, http.StatusCreated)
	var section models.Section
	decodeBody(t, rec, &section)
	if section.JoinCode == "" {
		t.Fatal("teacher did not receive the join code")
	}

	rec = student.do(http.MethodGet, "/api/sections", nil)
	expectStatus(t, rec, http.StatusOK)
	var listed []models.Section
	decodeBody(t, rec, &listed)
	if len(listed) != 1 || listed[0].JoinCode != "" {
		t.Errorf("student sees sections %+v", listed)
	}

	expectStatus(t, student.do(http.MethodPost, "/api/sections/join", JoinSectionRequest{JoinCode: "ZZZZZZ"}), http.StatusNotFound)
	rec = student.do(http.MethodPost, "/api/sections/join", JoinSectionRequest{JoinCode: strings.ToLower(section.JoinCode)})
	expectStatus(t, rec, http.StatusOK)

	for _, in := range []ScoreRequest{
		{Subject: testSubject, Topic: testUnit, GameType: games.Snake, Score: 8, MaxScore: 10},
		{Subject: testSubject, Topic: testUnit, GameType: games.MatchIt, Score: 4, MaxScore: 8},
	} {
		expectStatus(t, student.do(http.MethodPost, "/api/scores", in), http.StatusCreated)
	}
	expectStatus(t, student.do(http.MethodPost, "/api/scores",
		ScoreRequest{Subject: testSubject, Topic: testUnit, GameType: games.Snake, Score: 11, MaxScore: 10}), http.StatusBadRequest)
	expectStatus(t, student.do(http.MethodPost, "/api/scores",
		ScoreRequest{Subject: testSubject, Topic: "missing", GameType: games.Snake, Score: 1, MaxScore: 10}), http.StatusNotFound)

	rec = teacher.do(http.MethodGet, fmt.Sprintf("/api/leaderboard?section=%d", section.ID), nil)
	expectStatus(t, rec, http.StatusOK)
	var board []models.LeaderboardEntry
	decodeBody(t, rec, &board)
	if len(board) != 1 || board[0].Nickname != "atomfan" || board[0].AverageScore != 67 || board[0].SectionName != "Period 1" {
		t.Errorf("leaderboard = %+v", board)
	}
	expectStatus(t, teacher.do(http.MethodGet, "/api/leaderboard?section=first", nil), http.StatusBadRequest)

	path := fmt.Sprintf("/api/sections/%d/leaderboard", section.ID)
	expectStatus(t, student.do(http.MethodGet, path, nil), http.StatusForbidden)
	rec = teacher.do(http.MethodGet, path, nil)
	expectStatus(t, rec, http.StatusOK)
	var summary models.SectionSummary
	decodeBody(t, rec, &summary)
	if len(summary.Students) != 1 || summary.GamesPlayed != 2 {
		t.Errorf("summary = %+v", summary)
	}

	expectStatus(t, student.do(http.MethodDelete, fmt.Sprintf("/api/sections/%d", section.ID), nil), http.StatusForbidden)
	expectStatus(t, teacher.do(http.MethodDelete, fmt.Sprintf("/api/sections/%d", section.ID), nil), http.StatusNoContent)

	rec = student.do(http.MethodGet, "/api/auth/me", nil)
	var me MeResponse
	decodeBody(t, rec, &me)
	if me.Profile.SectionID != nil || me.Section != nil {
		t.Errorf("student still in deleted section: %+v", me)
	}
}

func TestAdminOverrides(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.register(t, "admin@example.com", "boss", "")
	player := api.register(t, "player@example.com", "player", "")

	path := "/api/admin/overrides/" + testSubject + "/" + testUnit
	expectStatus(t, player.do(http.MethodGet, path, nil), http.StatusForbidden)
	expectStatus(t, admin.do(http.MethodGet, "/api/admin/overrides/"+testSubject+"/missing", nil), http.StatusNotFound)

	rec := admin.do(http.MethodGet, path, nil)
	expectStatus(t, rec, http.StatusOK)
	var view OverrideView
	decodeBody(t, rec, &view)
	if view.Override != nil || len(view.Generated.Questions) != 6 {
		t.Fatalf("initial view = %+v", view)
	}

	questionsAnswer := func() string {
		rec := player.do(http.MethodGet, "/api/subjects/"+testSubject+"/units/"+testUnit+"/questions", nil)
		expectStatus(t, rec, http.StatusOK)
		var qs QuestionsResponse
		decodeBody(t, rec, &qs)
		return qs.Set.Questions[0].Answer
	}
	if got := questionsAnswer(); got != "Proton" {
		t.Fatalf("generated first answer = %q", got)
	}

	manual := questions.Set{Questions: []questions.Question{{Question: "Custom?", Answer: "Yes"}}}
	rec = admin.do(http.MethodPut, path, manual)
	expectStatus(t, rec, http.StatusOK)
	view = OverrideView{}
	decodeBody(t, rec, &view)
	if view.Override == nil || view.Merged.Questions[0].Answer != "Yes" || len(view.Merged.Words) != 6 {
		t.Errorf("override view = %+v", view)
	}
	if got := questionsAnswer(); got != "Yes" {
		t.Errorf("first answer after override = %q", got)
	}

	rec = admin.do(http.MethodGet, "/api/admin/overrides", nil)
	expectStatus(t, rec, http.StatusOK)
	var overrides []repository.Override
	decodeBody(t, rec, &overrides)
	if len(overrides) != 1 {
		t.Errorf("overrides = %+v", overrides)
	}

	expectStatus(t, admin.do(http.MethodDelete, path, nil), http.StatusNoContent)
	if got := questionsAnswer(); got != "Proton" {
		t.Errorf("first answer after delete = %q", got)
	}
}

func TestAdminUsersAndDatabase(t *testing.T) {
	api := newTestAPI(t, nil)
	admin := api.register(t, "admin@example.com", "boss", "")
	player := api.register(t, "player@example.com", "player", "")
	expectStatus(t, player.do(http.MethodPost, "/api/scores",
		ScoreRequest{Subject: testSubject, Topic: testUnit, GameType: games.Snake, Score: 5, MaxScore: 10}), http.StatusCreated)

	rec := admin.do(http.MethodGet, "/api/admin/users", nil)
	expectStatus(t, rec, http.StatusOK)
	var users []AdminUserView
	decodeBody(t, rec, &users)
	if len(users) != 2 {
		t.Fatalf("users = %+v", users)
	}
	for _, u := range users {
		if u.ID == player.user.ID && (u.Profile == nil || u.Profile.Nickname != "player") {
			t.Errorf("player view = %+v", u)
		}
	}

	userPath := fmt.Sprintf("/api/admin/users/%d", player.user.ID)
	expectStatus(t, admin.do(http.MethodPut, userPath, AdminUserRequest{Role: "wizard"}), http.StatusBadRequest)
	expectStatus(t, admin.do(http.MethodPut, userPath, AdminUserRequest{IsAdmin: false, Role: models.RoleTeacher}), http.StatusNoContent)
	expectStatus(t, admin.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d", admin.user.ID), AdminUserRequest{IsAdmin: false}), http.StatusBadRequest)
	expectStatus(t, admin.do(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", admin.user.ID), nil), http.StatusBadRequest)
	expectStatus(t, admin.do(http.MethodDelete, "/api/admin/users/abc", nil), http.StatusBadRequest)

	rec = player.do(http.MethodGet, "/api/auth/me", nil)
	var me MeResponse
	decodeBody(t, rec, &me)
	if me.Profile.Role != models.RoleTeacher {
		t.Errorf("role = %q after admin update", me.Profile.Role)
	}

	rec = admin.do(http.MethodGet, "/api/admin/database", nil)
	expectStatus(t, rec, http.StatusOK)
	var dbView AdminDatabaseView
	decodeBody(t, rec, &dbView)
	if dbView.Stats.Users != 2 || dbView.Stats.Scores != 1 {
		t.Errorf("stats = %+v", dbView.Stats)
	}

	rec = admin.do(http.MethodGet, "/api/admin/database/export", nil)
	expectStatus(t, rec, http.StatusOK)
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=educross_backup_") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	backup := rec.Body.Bytes()
	var data service.BackupData
	if err := json.Unmarshal(backup, &data); err != nil || data.Version != service.BackupVersion || len(data.Scores) != 1 {
		t.Fatalf("backup = %+v, %v", data, err)
	}

	expectStatus(t, admin.do(http.MethodDelete, userPath+"/scores", nil), http.StatusNoContent)
	expectStatus(t, admin.do(http.MethodDelete, userPath, nil), http.StatusNoContent)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("backup_file", "backup.json")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(backup)
	form.WriteField("clear_data", "true")
	form.Close()

	rec = admin.request(http.MethodPost, "/api/admin/database/import", &body, form.FormDataContentType())
	expectStatus(t, rec, http.StatusOK)
	var stats service.DatabaseStats
	decodeBody(t, rec, &stats)
	if stats.Users != 2 || stats.Profiles != 2 || stats.Scores != 1 {
		t.Errorf("stats after import = %+v", stats)
	}
}
