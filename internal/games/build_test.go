package games

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"educross/internal/questions"
)

func testSet() questions.Set {
	set := questions.Empty()
	for _, a := range []string{"Proton", "Neutron", "Electron", "Nucleus", "Isotope", "Ion", "Atomic Mass", "Shell", "Orbital", "Valence"} {
		set.Questions = append(set.Questions, questions.Question{
			Question: "The " + strings.ToLower(a) + " is part of an atom.",
			Answer:   a,
			Hints:    []string{"First letter: " + a[:1]},
		})
		set.Words = append(set.Words, questions.WordEntry{Word: a, Clue: "clue " + a})
	}
	set.EnumerationQuestions = []questions.EnumerationQuestion{{Question: "Name particles", Answers: []string{"Proton", "Neutron", "Electron"}}}
	set.CategoryQuestions = []questions.CategoryQuestion{{
		Categories: []string{"Particles", "Structure"},
		Items: []questions.CategoryItem{
			{Text: "Proton", Category: "Particles"}, {Text: "Neutron", Category: "Particles"}, {Text: "Electron", Category: "Particles"},
			{Text: "Shell", Category: "Structure"}, {Text: "Nucleus", Category: "Structure"}, {Text: "Orbital", Category: "Structure"},
		},
	}}
	return set
}

func TestCatalog(t *testing.T) {
	all := All()
	if len(all) != 10 {
		t.Fatalf("got %d games, want 10", len(all))
	}
	for _, g := range all {
		if !IsValid(g.ID) || g.Name == "" || g.Description == "" {
			t.Errorf("incomplete game %+v", g)
		}
	}
	if _, err := Lookup("tetris"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("Lookup(tetris) err = %v", err)
	}
}

func TestBuildUnknownGame(t *testing.T) {
	_, err := Build("tetris", testSet(), rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrUnknownGame) {
		t.Errorf("Build(tetris) err = %v", err)
	}
}

func TestBuildMaxScores(t *testing.T) {
	tests := []struct {
		game string
		want int
	}{
		{WordSearch, 8},
		{Snake, 10},
		{GuessWord, 10},
		{ConceptPuzzle, 30},
		{FillBlanks, 10},
		{MemoryFlip, 6},
		{MatchIt, 8},
		{Jigsaw, 5},
		{FightTime, 1},
		{DragDrop, 6},
	}

	for _, tt := range tests {
		t.Run(tt.game, func(t *testing.T) {
			p, err := Build(tt.game, testSet(), rand.New(rand.NewSource(42)))
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if p.Game.ID != tt.game {
				t.Errorf("game = %q", p.Game.ID)
			}
			if p.MaxScore != tt.want {
				t.Errorf("MaxScore = %d, want %d", p.MaxScore, tt.want)
			}
		})
	}
}

func TestBuildEmptySet(t *testing.T) {
	for _, g := range All() {
		p, err := Build(g.ID, questions.Empty(), rand.New(rand.NewSource(1)))
		if err != nil {
			t.Fatalf("%s: Build() error = %v", g.ID, err)
		}
		if p.MaxScore != 0 {
			t.Errorf("%s: MaxScore = %d on empty set", g.ID, p.MaxScore)
		}
	}
}

func TestSnakeBoard(t *testing.T) {
	p, _ := Build(Snake, testSet(), rand.New(rand.NewSource(7)))
	levels := p.Data.([]SnakeLevel)

	level := levels[6] // "Atomic Mass"
	if level.Answer != "ATOMIC MASS" || level.Start != SnakeStart {
		t.Fatalf("level = %+v", level)
	}
	if len(level.Letters) != len("ATOMICMASS")+SnakeDistractors {
		t.Errorf("got %d letters", len(level.Letters))
	}

	seen := map[Position]bool{}
	var spelled strings.Builder
	for i, l := range level.Letters {
		if l.Position == SnakeStart {
			t.Error("letter placed on the start cell")
		}
		if seen[l.Position] {
			t.Errorf("two letters on %+v", l.Position)
		}
		seen[l.Position] = true
		if l.X < 0 || l.X >= SnakeBoardSize || l.Y < 0 || l.Y >= SnakeBoardSize {
			t.Errorf("letter out of bounds: %+v", l)
		}
		if i < len("ATOMICMASS") {
			spelled.WriteString(l.Char)
		}
	}
	if spelled.String() != "ATOMICMASS" {
		t.Errorf("answer letters = %q", spelled.String())
	}
}

func TestGuessWordScramblesAnswer(t *testing.T) {
	p, _ := Build(GuessWord, testSet(), rand.New(rand.NewSource(3)))
	for _, level := range p.Data.([]GuessWordLevel) {
		got := append([]string(nil), level.Letters...)
		want := strings.Split(level.Answer, "")
		sort.Strings(got)
		sort.Strings(want)
		if strings.Join(got, "") != strings.Join(want, "") {
			t.Errorf("letters %v are not a permutation of %q", level.Letters, level.Answer)
		}
		if strings.ContainsAny(level.Answer, " ") {
			t.Errorf("answer %q kept whitespace", level.Answer)
		}
	}
}

func TestBlankOut(t *testing.T) {
	tests := []struct {
		text, answer, want string
	}{
		{"The proton is part of an atom.", "Proton", "The _____ is part of an atom."},
		{"Ion and ion", "ion", "_____ and _____"},
		{"Anything with mass and volume.", "Matter", "Anything with mass and volume: _____"},
		{"No answer", "", "No answer"},
	}
	for _, tt := range tests {
		if got := blankOut(tt.text, tt.answer); got != tt.want {
			t.Errorf("blankOut(%q, %q) = %q, want %q", tt.text, tt.answer, got, tt.want)
		}
	}
}

func TestMemoryCardsPairUp(t *testing.T) {
	p, _ := Build(MemoryFlip, testSet(), rand.New(rand.NewSource(9)))
	cards := p.Data.([]Card)
	if len(cards) != 12 {
		t.Fatalf("got %d cards, want 12", len(cards))
	}

	faces := map[int]map[string]bool{}
	for _, c := range cards {
		if faces[c.PairID] == nil {
			faces[c.PairID] = map[string]bool{}
		}
		faces[c.PairID][c.Face] = true
	}
	for id, f := range faces {
		if !f["question"] || !f["answer"] {
			t.Errorf("pair %d incomplete: %v", id, f)
		}
	}
}

func TestMatchBoardIndices(t *testing.T) {
	set := testSet()
	p, _ := Build(MatchIt, set, rand.New(rand.NewSource(11)))
	board := p.Data.(MatchBoard)

	for _, a := range board.Answers {
		if set.Questions[a.CorrectIndex].Answer != a.Text {
			t.Errorf("answer %q points at question %d", a.Text, a.CorrectIndex)
		}
	}
}

func TestCutPieces(t *testing.T) {
	pieces := cutPieces("one two three four five six seven eight")
	if len(pieces) != 4 {
		t.Fatalf("got %d pieces, want 4", len(pieces))
	}

	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.Text)
	}
	if b.String() != "one two three four five six seven eight" {
		t.Errorf("pieces rebuild %q", b.String())
	}
	if cutPieces("   ") != nil {
		t.Error("blank text should give no pieces")
	}
}

func TestConceptPuzzlePoints(t *testing.T) {
	for hints, want := range []int{3, 2, 1, 1, 1} {
		if got := ConceptPuzzlePoints(hints); got != want {
			t.Errorf("ConceptPuzzlePoints(%d) = %d, want %d", hints, got, want)
		}
	}
}
