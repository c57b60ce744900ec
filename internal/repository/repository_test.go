package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"educross/internal/database/dbtest"
	"educross/internal/models"
	"educross/internal/questions"
	"educross/internal/repository"
)

func TestUserRepository(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)

	first, err := users.CreateUser(ctx, "teacher@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if !first.IsAdmin {
		t.Error("first user should be admin")
	}

	second, err := users.CreateUser(ctx, "student@example.com", "")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if second.IsAdmin {
		t.Error("second user should not be admin")
	}

	got, err := users.GetUserByEmail(ctx, "student@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetUserByEmail() = %v, %v", got, err)
	}
	if got.ID != second.ID || got.PasswordHash != "" || got.LastLogin != nil {
		t.Errorf("unexpected user %+v", got)
	}

	missing, err := users.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("missing user = %v, %v", missing, err)
	}

	if err := users.LinkOAuthProvider(ctx, second.ID, "google", "sub-1"); err != nil {
		t.Fatalf("LinkOAuthProvider() error = %v", err)
	}
	if err := users.LinkOAuthProvider(ctx, second.ID, "facebook", "sub-2"); !errors.Is(err, repository.ErrOAuthAlreadyLinked) {
		t.Errorf("relink error = %v", err)
	}
	byOAuth, err := users.GetUserByOAuth(ctx, "google", "sub-1")
	if err != nil || byOAuth == nil || byOAuth.ID != second.ID {
		t.Errorf("GetUserByOAuth() = %v, %v", byOAuth, err)
	}

	if err := users.UpdateLastLogin(ctx, second.ID, time.Now()); err != nil {
		t.Fatal(err)
	}
	got, _ = users.GetUserByID(ctx, second.ID)
	if got.LastLogin == nil {
		t.Error("last login not stored")
	}

	all, err := users.GetAllUsers(ctx)
	if err != nil || len(all) != 2 {
		t.Errorf("GetAllUsers() = %d users, %v", len(all), err)
	}
}

func TestSessions(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)

	user, err := users.CreateUser(ctx, "a@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	if _, err := users.CreateSession(ctx, "live", user.ID, now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := users.CreateSession(ctx, "stale", user.ID, now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	session, err := users.GetSession(ctx, "live")
	if err != nil || session == nil || session.UserID != user.ID {
		t.Fatalf("GetSession() = %v, %v", session, err)
	}

	removed, err := users.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed %d sessions, want 1", removed)
	}
	if s, _ := users.GetSession(ctx, "stale"); s != nil {
		t.Error("expired session survived cleanup")
	}

	if err := users.DeleteSession(ctx, "live"); err != nil {
		t.Fatal(err)
	}
	if s, _ := users.GetSession(ctx, "live"); s != nil {
		t.Error("session survived delete")
	}
}

func TestProfilesAndSections(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	sections := repository.NewSectionRepository(db)

	teacher, _ := users.CreateUser(ctx, "t@example.com", "hash")
	student, _ := users.CreateUser(ctx, "s@example.com", "hash")

	section, err := sections.CreateSection(ctx, "Room 4", "ABC123", teacher.ID)
	if err != nil {
		t.Fatalf("CreateSection() error = %v", err)
	}
	if exists, _ := sections.JoinCodeExists(ctx, "ABC123"); !exists {
		t.Error("join code not found")
	}
	byCode, err := sections.GetSectionByJoinCode(ctx, "ABC123")
	if err != nil || byCode == nil || byCode.ID != section.ID {
		t.Fatalf("GetSectionByJoinCode() = %v, %v", byCode, err)
	}
	if none, _ := sections.GetSectionByJoinCode(ctx, "ZZZ999"); none != nil {
		t.Error("unknown code returned a section")
	}

	if err := profiles.CreateProfile(ctx, &models.Profile{UserID: student.ID, FullName: "Ana Cruz", Role: models.RoleStudent}); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	if err := profiles.SetSection(ctx, student.ID, &section.ID); err != nil {
		t.Fatal(err)
	}
	if err := profiles.UpdateProfile(ctx, student.ID, "Ana Cruz", "ana"); err != nil {
		t.Fatal(err)
	}

	byNick, err := profiles.GetProfileByNickname(ctx, "ana")
	if err != nil || byNick == nil || byNick.UserID != student.ID {
		t.Errorf("GetProfileByNickname() = %v, %v", byNick, err)
	}
	if none, _ := profiles.GetProfileByNickname(ctx, ""); none != nil {
		t.Error("empty nickname matched a profile")
	}

	members, err := profiles.ListBySection(ctx, section.ID)
	if err != nil || len(members) != 1 {
		t.Fatalf("ListBySection() = %v, %v", members, err)
	}
	if members[0].Nickname != "ana" || members[0].SectionID == nil || *members[0].SectionID != section.ID {
		t.Errorf("member = %+v", members[0])
	}

	owned, _ := sections.ListByTeacher(ctx, teacher.ID)
	if len(owned) != 1 {
		t.Errorf("ListByTeacher() = %d sections", len(owned))
	}

	// Deleting the section detaches its members
	if err := sections.DeleteSection(ctx, section.ID); err != nil {
		t.Fatal(err)
	}
	p, _ := profiles.GetProfile(ctx, student.ID)
	if p == nil || p.SectionID != nil {
		t.Errorf("profile after section delete = %+v", p)
	}
}

func TestScores(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	sections := repository.NewSectionRepository(db)
	scores := repository.NewScoreRepository(db)

	teacher, _ := users.CreateUser(ctx, "t@example.com", "hash")
	student, _ := users.CreateUser(ctx, "s@example.com", "hash")
	section, _ := sections.CreateSection(ctx, "Room 4", "ABC123", teacher.ID)
	profiles.CreateProfile(ctx, &models.Profile{UserID: student.ID, FullName: "Ana", Role: models.RoleStudent, SectionID: &section.ID})

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, game := range []string{"snake", "wordsearch"} {
		s := &models.GameScore{UserID: student.ID, Subject: "chemistry-1", Topic: "chem1-unit1", GameType: game, Score: 3 + i, MaxScore: 5, PlayedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := scores.CreateScore(ctx, s); err != nil {
			t.Fatalf("CreateScore() error = %v", err)
		}
		if s.ID == 0 {
			t.Error("score ID not set")
		}
	}
	// The teacher has no profile and stays off the joined listings
	scores.CreateScore(ctx, &models.GameScore{UserID: teacher.ID, Subject: "chemistry-1", Topic: "chem1-unit1", GameType: "snake", Score: 1, MaxScore: 1})

	mine, err := scores.GetScoresForUser(ctx, student.ID)
	if err != nil || len(mine) != 2 {
		t.Fatalf("GetScoresForUser() = %v, %v", mine, err)
	}
	if mine[0].GameType != "wordsearch" {
		t.Errorf("newest score = %q, want wordsearch", mine[0].GameType)
	}

	all, err := scores.GetAllScoresWithProfiles(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("GetAllScoresWithProfiles() = %d, %v", len(all), err)
	}

	inSection, err := scores.GetScoresForSection(ctx, section.ID)
	if err != nil || len(inSection) != 2 {
		t.Fatalf("GetScoresForSection() = %d, %v", len(inSection), err)
	}
	if inSection[0].FullName != "Ana" || inSection[0].SectionID == nil {
		t.Errorf("joined profile = %+v", inSection[0])
	}
}

func TestOverrides(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	overrides := repository.NewOverrideRepository(db)
	admin, _ := users.CreateUser(ctx, "admin@example.com", "hash")

	got, err := overrides.Override(ctx, "chemistry-1", "chem1-unit1")
	if err != nil || got != nil {
		t.Fatalf("Override() with nothing stored = %v, %v", got, err)
	}

	set := questions.Set{Questions: []questions.Question{{Question: "What is H2O?", Answer: "Water"}}}
	if err := overrides.UpsertOverride(ctx, "chemistry-1", "chem1-unit1", set, admin.ID); err != nil {
		t.Fatalf("UpsertOverride() error = %v", err)
	}
	set.Questions[0].Answer = "Dihydrogen monoxide"
	if err := overrides.UpsertOverride(ctx, "chemistry-1", "chem1-unit1", set, admin.ID); err != nil {
		t.Fatalf("second UpsertOverride() error = %v", err)
	}

	got, err = overrides.Override(ctx, "chemistry-1", "chem1-unit1")
	if err != nil || got == nil {
		t.Fatalf("Override() = %v, %v", got, err)
	}
	if got.Questions[0].Answer != "Dihydrogen monoxide" {
		t.Errorf("answer = %q", got.Questions[0].Answer)
	}

	list, err := overrides.ListOverrides(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListOverrides() = %v, %v", list, err)
	}
	if list[0].UpdatedBy == nil || *list[0].UpdatedBy != admin.ID {
		t.Errorf("updated_by = %v", list[0].UpdatedBy)
	}

	var _ questions.OverrideStore = overrides
	if err := overrides.DeleteOverride(ctx, "chemistry-1", "chem1-unit1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := overrides.Override(ctx, "chemistry-1", "chem1-unit1"); got != nil {
		t.Error("override survived delete")
	}
}
