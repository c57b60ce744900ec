package questions

import (
	"fmt"
)

// Question is a single-answer quiz item with progressive hints
type Question struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Options  []string `json:"options,omitempty"`
	Hints    []string `json:"hints,omitempty"`
}

// EnumerationQuestion asks the player to list several answers
type EnumerationQuestion struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// CategoryItem is one item to be sorted into a category
type CategoryItem struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// CategoryQuestion asks the player to sort items into labelled buckets
type CategoryQuestion struct {
	Categories []string       `json:"categories"`
	Items      []CategoryItem `json:"items"`
}

// WordEntry is a vocabulary word with its clue
type WordEntry struct {
	Word string `json:"word"`
	Clue string `json:"clue,omitempty"`
}

// Set is the quiz content of one unit
type Set struct {
	Questions            []Question            `json:"questions"`
	EnumerationQuestions []EnumerationQuestion `json:"enumerationQuestions"`
	CategoryQuestions    []CategoryQuestion    `json:"categoryQuestions"`
	Words                []WordEntry           `json:"words"`
}

// Empty returns a set with non-nil, zero-length lists
func Empty() Set {
	return Set{
		Questions:            []Question{},
		EnumerationQuestions: []EnumerationQuestion{},
		CategoryQuestions:    []CategoryQuestion{},
		Words:                []WordEntry{},
	}
}

// IsEmpty reports whether every list is empty
func (s Set) IsEmpty() bool {
	return len(s.Questions) == 0 && len(s.EnumerationQuestions) == 0 &&
		len(s.CategoryQuestions) == 0 && len(s.Words) == 0
}

// Merge overlays manual content: each non-empty list in manual replaces
// the matching list in s.
func (s Set) Merge(manual Set) Set {
	out := s
	if len(manual.Questions) > 0 {
		out.Questions = manual.Questions
	}
	if len(manual.EnumerationQuestions) > 0 {
		out.EnumerationQuestions = manual.EnumerationQuestions
	}
	if len(manual.CategoryQuestions) > 0 {
		out.CategoryQuestions = manual.CategoryQuestions
	}
	if len(manual.Words) > 0 {
		out.Words = manual.Words
	}
	return out
}

// Kind tags the variant held by an Item
type Kind int

const (
	KindSingle Kind = iota + 1
	KindEnumeration
	KindCategory
	KindList
)

var kindNames = map[Kind]string{
	KindSingle:      "single",
	KindEnumeration: "enumeration",
	KindCategory:    "category",
	KindList:        "list",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("questions: unknown kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a kind name
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("questions: unknown kind %q", string(text))
}

// Item is one piece of quiz content. Exactly one payload field is set,
// selected by Kind.
type Item struct {
	Kind        Kind                 `json:"kind"`
	Single      *Question            `json:"single,omitempty"`
	Enumeration *EnumerationQuestion `json:"enumeration,omitempty"`
	Category    *CategoryQuestion    `json:"category,omitempty"`
	List        []WordEntry          `json:"list,omitempty"`
}

// Items flattens the set into tagged items: single-answer questions,
// then enumerations, then categories, then the word list as one item.
func (s Set) Items() []Item {
	items := make([]Item, 0, len(s.Questions)+len(s.EnumerationQuestions)+len(s.CategoryQuestions)+1)

	for i := range s.Questions {
		items = append(items, Item{Kind: KindSingle, Single: &s.Questions[i]})
	}
	for i := range s.EnumerationQuestions {
		items = append(items, Item{Kind: KindEnumeration, Enumeration: &s.EnumerationQuestions[i]})
	}
	for i := range s.CategoryQuestions {
		items = append(items, Item{Kind: KindCategory, Category: &s.CategoryQuestions[i]})
	}
	if len(s.Words) > 0 {
		items = append(items, Item{Kind: KindList, List: s.Words})
	}

	return items
}
