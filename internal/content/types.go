package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Subject is a course such as "Chemistry 1", made of ordered units
type Subject struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
	Icon        string `json:"icon,omitempty" yaml:"icon"`
	Units       []Unit `json:"units" yaml:"units"`
}

// Unit groups the ordered slides of one topic
type Unit struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description,omitempty" yaml:"description"`
	Slides      []Slide `json:"slides" yaml:"slides"`
}

// Slide is one screen of lesson content
type Slide struct {
	Title    string     `json:"title" yaml:"title"`
	Content  Paragraphs `json:"content" yaml:"content"`
	KeyTerms []KeyTerm  `json:"keyTerms,omitempty" yaml:"keyTerms"`
	Formulas []Formula  `json:"formulas,omitempty" yaml:"formulas"`
	Examples []string   `json:"examples,omitempty" yaml:"examples"`
	People   []Person   `json:"people,omitempty" yaml:"people"`
}

// KeyTerm is a vocabulary pair used to seed most generated questions
type KeyTerm struct {
	Term       string `json:"term" yaml:"term"`
	Definition string `json:"definition" yaml:"definition"`
}

type Formula struct {
	Name        string `json:"name" yaml:"name"`
	Expression  string `json:"formula" yaml:"formula"`
	Description string `json:"description,omitempty" yaml:"description"`
}

type Person struct {
	Name         string `json:"name" yaml:"name"`
	Contribution string `json:"contribution" yaml:"contribution"`
}

// Paragraphs is slide body text. Source files may give it either as a
// single string or as a list of strings.
type Paragraphs []string

// Text joins the paragraphs with single spaces
func (p Paragraphs) Text() string {
	return strings.Join(p, " ")
}

// UnmarshalYAML accepts a scalar or a sequence of scalars
func (p *Paragraphs) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*p = Paragraphs{value.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*p = Paragraphs(list)
		return nil
	default:
		return fmt.Errorf("content: line %d: expected string or list of strings", value.Line)
	}
}
