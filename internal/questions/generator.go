package questions

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"educross/internal/content"
)

const (
	MaxQuestions            = 10
	MaxEnumerationQuestions = 5
	MaxEnumerationAnswers   = 5
	MinEnumerationTerms     = 3
	CategorySlides          = 3
	TermsPerCategory        = 3
	MinCategoryItems        = 6

	topicMinLength  = 50
	topicExcerpt    = 100
	topicMinWordLen = 3
	categoryWords   = 2
)

// UnitRef identifies a unit within a subject
type UnitRef struct {
	SubjectID string
	UnitID    string
}

func (r UnitRef) String() string {
	return r.SubjectID + "/" + r.UnitID
}

// ParseUnitRef parses "subject/unit"
func ParseUnitRef(s string) (UnitRef, error) {
	subjectID, unitID, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || subjectID == "" || unitID == "" {
		return UnitRef{}, fmt.Errorf("invalid unit reference %q, expected subject/unit", s)
	}
	return UnitRef{SubjectID: subjectID, UnitID: unitID}, nil
}

// DefaultSuppressedUnits lists the units whose term questions carry no
// middle-letter hint.
var DefaultSuppressedUnits = []UnitRef{{SubjectID: "chemistry-1", UnitID: "chem1-unit1"}}

// Generator derives quiz content from lesson slides
type Generator struct {
	suppressMiddleHint map[UnitRef]bool
}

// ParseUnitRefs parses a list of "subject/unit" pairs. The result is never
// nil, so an empty list passed to NewGenerator disables suppression.
func ParseUnitRefs(raw []string) ([]UnitRef, error) {
	refs := make([]UnitRef, 0, len(raw))
	for _, s := range raw {
		ref, err := ParseUnitRef(s)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// NewGenerator creates a generator. Called with no arguments it uses
// DefaultSuppressedUnits; an explicit empty slice suppresses nothing.
func NewGenerator(suppressed ...UnitRef) *Generator {
	if suppressed == nil {
		suppressed = DefaultSuppressedUnits
	}
	g := &Generator{suppressMiddleHint: make(map[UnitRef]bool, len(suppressed))}
	for _, ref := range suppressed {
		g.suppressMiddleHint[ref] = true
	}
	return g
}

// Generate builds the question set for one unit. A nil unit yields an
// empty set.
func (g *Generator) Generate(subjectID string, unit *content.Unit) Set {
	set := Empty()
	if unit == nil {
		return set
	}

	ref := UnitRef{SubjectID: subjectID, UnitID: unit.ID}
	suppress := g.suppressMiddleHint[ref]

	var all []Question
	for _, slide := range unit.Slides {
		for _, kt := range slide.KeyTerms {
			if kt.Term == "" {
				continue
			}
			all = append(all, Question{
				Question: kt.Definition,
				Answer:   kt.Term,
				Hints:    termHints(kt.Term, suppress),
			})
		}
	}
	for _, slide := range unit.Slides {
		if q, ok := topicQuestion(slide); ok {
			all = append(all, q)
		}
	}
	if len(all) > MaxQuestions {
		all = all[:MaxQuestions]
	}
	if all != nil {
		set.Questions = all
	}

	for _, slide := range unit.Slides {
		if len(slide.KeyTerms) < MinEnumerationTerms {
			continue
		}
		terms := slide.KeyTerms
		if len(terms) > MaxEnumerationAnswers {
			terms = terms[:MaxEnumerationAnswers]
		}
		answers := make([]string, len(terms))
		for i, kt := range terms {
			answers[i] = kt.Term
		}
		set.EnumerationQuestions = append(set.EnumerationQuestions, EnumerationQuestion{
			Question: "Name the key terms related to: " + slide.Title,
			Answers:  answers,
		})
		if len(set.EnumerationQuestions) == MaxEnumerationQuestions {
			break
		}
	}

	if cq, ok := categoryQuestion(unit.Slides); ok {
		set.CategoryQuestions = append(set.CategoryQuestions, cq)
	}

	set.Words = WordList(unit)

	return set
}

func termHints(term string, suppressMiddle bool) []string {
	letters := []rune(term)
	if len(letters) == 0 {
		return []string{}
	}

	hints := []string{
		"First letter: " + string(letters[0]),
		fmt.Sprintf("%d letters", len(letters)),
	}
	if !suppressMiddle {
		hints = append(hints, "Contains: "+string(letters[len(letters)/2]))
	}
	return hints
}

func topicQuestion(slide content.Slide) (Question, bool) {
	text := slide.Content.Text()
	if utf8.RuneCountInString(text) <= topicMinLength {
		return Question{}, false
	}

	var answer string
	for _, w := range strings.Split(slide.Title, " ") {
		if utf8.RuneCountInString(w) > topicMinWordLen {
			answer = w
			break
		}
	}
	if answer == "" {
		return Question{}, false
	}

	excerpt := []rune(text)
	if len(excerpt) > topicExcerpt {
		excerpt = excerpt[:topicExcerpt]
	}
	first, _ := utf8.DecodeRuneInString(answer)

	return Question{
		Question: "Topic: " + string(excerpt) + "...",
		Answer:   answer,
		Hints: []string{
			"Related to: " + slide.Title,
			"First letter: " + string(first),
		},
	}, true
}

func categoryQuestion(slides []content.Slide) (CategoryQuestion, bool) {
	if len(slides) > CategorySlides {
		slides = slides[:CategorySlides]
	}

	categories := make([]string, len(slides))
	var items []CategoryItem
	for i, slide := range slides {
		categories[i] = categoryLabel(slide.Title)
		terms := slide.KeyTerms
		if len(terms) > TermsPerCategory {
			terms = terms[:TermsPerCategory]
		}
		for _, kt := range terms {
			items = append(items, CategoryItem{Text: kt.Term, Category: categories[i]})
		}
	}

	if len(items) < MinCategoryItems {
		return CategoryQuestion{}, false
	}
	return CategoryQuestion{Categories: categories, Items: items}, true
}

func categoryLabel(title string) string {
	words := strings.Split(title, " ")
	if len(words) > categoryWords {
		words = words[:categoryWords]
	}
	return strings.Join(words, " ")
}

// WordList returns every key term of the unit, with its definition as the
// clue. Terms that match ignoring case and whitespace keep their first
// occurrence.
func WordList(unit *content.Unit) []WordEntry {
	words := []WordEntry{}
	if unit == nil {
		return words
	}

	seen := make(map[string]bool)
	for _, slide := range unit.Slides {
		for _, kt := range slide.KeyTerms {
			key := strings.ToUpper(strings.Join(strings.Fields(kt.Term), ""))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			words = append(words, WordEntry{Word: kt.Term, Clue: kt.Definition})
		}
	}
	return words
}
