package questions

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"educross/internal/content"
)

func slide(title, text string, terms ...string) content.Slide {
	s := content.Slide{Title: title, Content: content.Paragraphs{text}}
	for _, t := range terms {
		s.KeyTerms = append(s.KeyTerms, content.KeyTerm{Term: t, Definition: "definition of " + t})
	}
	return s
}

func TestGenerateMatterExample(t *testing.T) {
	unit := &content.Unit{
		ID: "unit-x",
		Slides: []content.Slide{{
			Title:    "Matter",
			Content:  content.Paragraphs{"Matter is anything with mass and volume, existing in several phases."},
			KeyTerms: []content.KeyTerm{{Term: "Matter", Definition: "Anything with mass and volume"}},
		}},
	}

	tests := []struct {
		name      string
		subjectID string
		unitID    string
		want      []string
	}{
		{"regular unit", "physics-1", "unit-x", []string{"First letter: M", "6 letters", "Contains: t"}},
		{"suppressed unit", "chemistry-1", "chem1-unit1", []string{"First letter: M", "6 letters"}},
	}

	gen := NewGenerator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := *unit
			u.ID = tt.unitID
			set := gen.Generate(tt.subjectID, &u)

			if len(set.Questions) == 0 {
				t.Fatal("no questions generated")
			}
			q := set.Questions[0]
			if q.Answer != "Matter" || q.Question != "Anything with mass and volume" {
				t.Errorf("question = %+v", q)
			}
			if !reflect.DeepEqual(q.Hints, tt.want) {
				t.Errorf("hints = %v, want %v", q.Hints, tt.want)
			}
		})
	}
}

func TestGenerateTopicQuestion(t *testing.T) {
	long := strings.Repeat("Atoms are made of protons, neutrons and electrons. ", 4)
	unit := &content.Unit{ID: "u", Slides: []content.Slide{
		slide("The Atomic Model", long),
		slide("A to Z", long),            // no title word longer than 3
		slide("Short Slide", "too short"), // content under the threshold
	}}

	set := NewGenerator().Generate("s", unit)
	if len(set.Questions) != 1 {
		t.Fatalf("got %d questions, want 1: %+v", len(set.Questions), set.Questions)
	}

	q := set.Questions[0]
	if q.Answer != "Atomic" {
		t.Errorf("answer = %q, want Atomic", q.Answer)
	}
	if want := "Topic: " + long[:100] + "..."; q.Question != want {
		t.Errorf("question = %q", q.Question)
	}
	if !reflect.DeepEqual(q.Hints, []string{"Related to: The Atomic Model", "First letter: A"}) {
		t.Errorf("hints = %v", q.Hints)
	}
}

func TestGenerateTermsBeforeTopics(t *testing.T) {
	long := strings.Repeat("x", 60)
	unit := &content.Unit{ID: "u", Slides: []content.Slide{
		slide("Elements Table", long, "Hydrogen"),
		slide("Compounds", long, "Water"),
	}}

	set := NewGenerator().Generate("s", unit)
	var answers []string
	for _, q := range set.Questions {
		answers = append(answers, q.Answer)
	}
	want := []string{"Hydrogen", "Water", "Elements", "Compounds"}
	if !reflect.DeepEqual(answers, want) {
		t.Errorf("answers = %v, want %v", answers, want)
	}
}

func TestGenerateCaps(t *testing.T) {
	var slides []content.Slide
	for i := 0; i < 8; i++ {
		terms := make([]string, 7)
		for j := range terms {
			terms[j] = fmt.Sprintf("Term%d%d", i, j)
		}
		slides = append(slides, slide(fmt.Sprintf("Slide Number %d", i), strings.Repeat("y", 80), terms...))
	}
	set := NewGenerator().Generate("s", &content.Unit{ID: "u", Slides: slides})

	if len(set.Questions) != MaxQuestions {
		t.Errorf("questions = %d, want %d", len(set.Questions), MaxQuestions)
	}
	if set.Questions[9].Answer != "Term12" {
		t.Errorf("10th question answer = %q, want Term12", set.Questions[9].Answer)
	}
	if len(set.EnumerationQuestions) != MaxEnumerationQuestions {
		t.Errorf("enumeration = %d, want %d", len(set.EnumerationQuestions), MaxEnumerationQuestions)
	}
	for _, eq := range set.EnumerationQuestions {
		if len(eq.Answers) != MaxEnumerationAnswers {
			t.Errorf("enumeration answers = %d", len(eq.Answers))
		}
	}
	if eq := set.EnumerationQuestions[0]; eq.Question != "Name the key terms related to: Slide Number 0" {
		t.Errorf("enumeration question = %q", eq.Question)
	}

	if len(set.CategoryQuestions) != 1 {
		t.Fatalf("category questions = %d, want 1", len(set.CategoryQuestions))
	}
	cq := set.CategoryQuestions[0]
	if !reflect.DeepEqual(cq.Categories, []string{"Slide Number", "Slide Number", "Slide Number"}) {
		t.Errorf("categories = %v", cq.Categories)
	}
	if len(cq.Items) != 9 {
		t.Errorf("items = %d, want 9", len(cq.Items))
	}
	if len(set.Words) != 56 {
		t.Errorf("words = %d, want 56", len(set.Words))
	}
}

func TestGenerateCategoryThreshold(t *testing.T) {
	tests := []struct {
		name   string
		slides []content.Slide
		want   int
	}{
		{
			name: "six items across slides",
			slides: []content.Slide{
				slide("Solid State", "", "Ice", "Iron"),
				slide("Liquid State", "", "Water", "Oil"),
				slide("Gas", "", "Steam", "Air"),
			},
			want: 1,
		},
		{
			name: "five items",
			slides: []content.Slide{
				slide("Solid State", "", "Ice", "Iron"),
				slide("Liquid State", "", "Water", "Oil"),
				slide("Gas", "", "Steam"),
			},
			want: 0,
		},
		{
			name: "fourth slide ignored",
			slides: []content.Slide{
				slide("One", "", "A1", "A2"),
				slide("Two", "", "B1", "B2"),
				slide("Three", "", "C1"),
				slide("Four", "", "D1", "D2", "D3"),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewGenerator().Generate("s", &content.Unit{ID: "u", Slides: tt.slides})
			if len(set.CategoryQuestions) != tt.want {
				t.Fatalf("category questions = %d, want %d", len(set.CategoryQuestions), tt.want)
			}
			if tt.want == 0 {
				return
			}
			cq := set.CategoryQuestions[0]
			valid := make(map[string]bool)
			for _, c := range cq.Categories {
				valid[c] = true
			}
			for _, item := range cq.Items {
				if !valid[item.Category] {
					t.Errorf("item %+v has unknown category", item)
				}
			}
		})
	}
}

func TestGenerateHintCardinality(t *testing.T) {
	unit := &content.Unit{ID: "chem1-unit1", Slides: []content.Slide{slide("Atoms", "", "Proton", "Neutron", "é")}}

	for _, subject := range []string{"chemistry-1", "chemistry-2"} {
		want := 3
		if subject == "chemistry-1" {
			want = 2
		}
		for _, q := range NewGenerator().Generate(subject, unit).Questions {
			if len(q.Hints) != want {
				t.Errorf("%s: %q has %d hints, want %d", subject, q.Answer, len(q.Hints), want)
			}
		}
	}
}

func TestGenerateCustomSuppression(t *testing.T) {
	unit := &content.Unit{ID: "u1", Slides: []content.Slide{slide("Atoms", "", "Proton")}}
	gen := NewGenerator(UnitRef{SubjectID: "physics-1", UnitID: "u1"})

	if got := gen.Generate("physics-1", unit).Questions[0].Hints; len(got) != 2 {
		t.Errorf("configured unit hints = %v", got)
	}
	if got := gen.Generate("chemistry-1", unit).Questions[0].Hints; len(got) != 3 {
		t.Errorf("other unit hints = %v", got)
	}
}

func TestGenerateSuppressionDisabled(t *testing.T) {
	unit := &content.Unit{ID: "chem1-unit1", Slides: []content.Slide{slide("Atoms", "", "Proton")}}

	refs, err := ParseUnitRefs(nil)
	if err != nil {
		t.Fatalf("ParseUnitRefs(nil) error = %v", err)
	}
	if refs == nil {
		t.Fatal("ParseUnitRefs(nil) returned nil")
	}

	if got := NewGenerator(refs...).Generate("chemistry-1", unit).Questions[0].Hints; len(got) != 3 {
		t.Errorf("empty suppression set hints = %v, want 3", got)
	}
	if got := NewGenerator().Generate("chemistry-1", unit).Questions[0].Hints; len(got) != 2 {
		t.Errorf("default suppression set hints = %v, want 2", got)
	}
}

func TestParseUnitRefs(t *testing.T) {
	refs, err := ParseUnitRefs([]string{"a/b", " c/d "})
	if err != nil {
		t.Fatalf("ParseUnitRefs() error = %v", err)
	}
	if len(refs) != 2 || refs[1] != (UnitRef{SubjectID: "c", UnitID: "d"}) {
		t.Errorf("refs = %v", refs)
	}
	if _, err := ParseUnitRefs([]string{"a/b", "broken"}); err == nil {
		t.Error("expected error for malformed entry")
	}
}

func TestGenerateNilUnit(t *testing.T) {
	set := NewGenerator().Generate("s", nil)
	if !set.IsEmpty() {
		t.Errorf("expected empty set, got %+v", set)
	}

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"questions":[],"enumerationQuestions":[],"categoryQuestions":[],"words":[]}` {
		t.Errorf("empty set encodes as %s", data)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	unit := &content.Unit{ID: "u", Slides: []content.Slide{
		slide("Chemical Bonds", strings.Repeat("bond ", 20), "Ionic", "Covalent", "Metallic"),
		slide("Reactions", "", "Reactant", "Product"),
	}}
	gen := NewGenerator()
	if a, b := gen.Generate("s", unit), gen.Generate("s", unit); !reflect.DeepEqual(a, b) {
		t.Error("two runs produced different sets")
	}
}

func TestWordListDedupes(t *testing.T) {
	unit := &content.Unit{Slides: []content.Slide{
		slide("One", "", "Atom", "Mass Number"),
		slide("Two", "", "ATOM", "mass number", ""),
	}}

	words := WordList(unit)
	if len(words) != 2 || words[0].Word != "Atom" || words[1].Word != "Mass Number" {
		t.Errorf("WordList = %+v", words)
	}
	if words[0].Clue != "definition of Atom" {
		t.Errorf("clue = %q", words[0].Clue)
	}
}

func TestParseUnitRef(t *testing.T) {
	ref, err := ParseUnitRef(" chemistry-1/chem1-unit1 ")
	if err != nil || ref != (UnitRef{SubjectID: "chemistry-1", UnitID: "chem1-unit1"}) {
		t.Errorf("ParseUnitRef = %+v, %v", ref, err)
	}
	for _, bad := range []string{"", "chemistry-1", "/u", "s/"} {
		if _, err := ParseUnitRef(bad); err == nil {
			t.Errorf("ParseUnitRef(%q) expected error", bad)
		}
	}
}
