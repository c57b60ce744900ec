package questions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"educross/internal/content"
)

type countingSource struct {
	unit  *content.Unit
	calls int
}

func (s *countingSource) Unit(subjectID, unitID string) (*content.Unit, error) {
	s.calls++
	if s.unit == nil || unitID != s.unit.ID {
		return nil, content.ErrUnitNotFound
	}
	return s.unit, nil
}

type fakeOverrides struct {
	set *Set
	err error
}

func (f fakeOverrides) Override(ctx context.Context, subjectID, unitID string) (*Set, error) {
	return f.set, f.err
}

func testUnit() *content.Unit {
	return &content.Unit{ID: "u1", Slides: []content.Slide{slide("Atoms", "", "Proton", "Neutron")}}
}

func TestBankMemoizes(t *testing.T) {
	source := &countingSource{unit: testUnit()}
	bank := NewBank(source, nil, nil, zap.NewNop())

	first := bank.Generated("s", "u1")
	second := bank.Generated("s", "u1")
	if len(first.Questions) != 2 || len(second.Questions) != 2 {
		t.Fatalf("unexpected sets %+v / %+v", first, second)
	}
	if source.calls != 1 {
		t.Errorf("source called %d times, want 1", source.calls)
	}

	bank.Invalidate("s", "u1")
	bank.Generated("s", "u1")
	if source.calls != 2 {
		t.Errorf("source called %d times after invalidate, want 2", source.calls)
	}
}

func TestBankUnknownUnit(t *testing.T) {
	bank := NewBank(&countingSource{unit: testUnit()}, nil, nil, nil)

	if set := bank.Questions(context.Background(), "s", "missing"); !set.IsEmpty() {
		t.Errorf("unknown unit returned %+v", set)
	}
	if bank.Len() != 0 {
		t.Errorf("unknown unit was memoized")
	}
}

func TestBankOverrides(t *testing.T) {
	manual := &Set{Questions: []Question{{Question: "Custom?", Answer: "Yes"}}}

	tests := []struct {
		name      string
		overrides OverrideStore
		want      string
	}{
		{"no store", nil, "Proton"},
		{"no override", fakeOverrides{}, "Proton"},
		{"override replaces", fakeOverrides{set: manual}, "Yes"},
		{"store failure falls back", fakeOverrides{err: errors.New("db down")}, "Proton"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := NewBank(&countingSource{unit: testUnit()}, NewGenerator(), tt.overrides, zap.NewNop())
			set := bank.Questions(context.Background(), "s", "u1")
			if len(set.Questions) == 0 || set.Questions[0].Answer != tt.want {
				t.Errorf("first answer = %+v, want %s", set.Questions, tt.want)
			}
			if len(set.Words) != 2 {
				t.Errorf("word list lost in merge: %+v", set.Words)
			}
		})
	}
}

func TestSetMergeKeepsGeneratedWhenManualEmpty(t *testing.T) {
	generated := Set{
		Questions:            []Question{{Question: "q", Answer: "a"}},
		EnumerationQuestions: []EnumerationQuestion{{Question: "e", Answers: []string{"x"}}},
	}
	manual := Set{
		EnumerationQuestions: []EnumerationQuestion{{Question: "manual", Answers: []string{"y"}}},
		CategoryQuestions:    []CategoryQuestion{},
	}

	merged := generated.Merge(manual)
	if merged.Questions[0].Answer != "a" {
		t.Errorf("questions replaced by empty manual list")
	}
	if merged.EnumerationQuestions[0].Question != "manual" {
		t.Errorf("enumeration not replaced")
	}
}

func TestSetItems(t *testing.T) {
	set := Set{
		Questions:            []Question{{Answer: "a"}, {Answer: "b"}},
		EnumerationQuestions: []EnumerationQuestion{{Question: "e"}},
		CategoryQuestions:    []CategoryQuestion{{Categories: []string{"c"}}},
		Words:                []WordEntry{{Word: "w"}},
	}

	items := set.Items()
	kinds := []Kind{KindSingle, KindSingle, KindEnumeration, KindCategory, KindList}
	if len(items) != len(kinds) {
		t.Fatalf("got %d items, want %d", len(items), len(kinds))
	}
	for i, item := range items {
		if item.Kind != kinds[i] {
			t.Errorf("item %d kind = %v, want %v", i, item.Kind, kinds[i])
		}
		switch item.Kind {
		case KindSingle:
			if item.Single == nil {
				t.Errorf("item %d missing single payload", i)
			}
		case KindEnumeration:
			if item.Enumeration == nil {
				t.Errorf("item %d missing enumeration payload", i)
			}
		case KindCategory:
			if item.Category == nil {
				t.Errorf("item %d missing category payload", i)
			}
		case KindList:
			if len(item.List) != 1 {
				t.Errorf("item %d missing list payload", i)
			}
		}
	}

	data, err := json.Marshal(items[2])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"kind":"enumeration","enumeration":{"question":"e","answers":null}}` {
		t.Errorf("item encodes as %s", data)
	}

	var k Kind
	if err := k.UnmarshalText([]byte("category")); err != nil || k != KindCategory {
		t.Errorf("UnmarshalText = %v, %v", k, err)
	}
	if err := k.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown kind")
	}
}
