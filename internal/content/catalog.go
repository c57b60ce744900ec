package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrUnitNotFound    = errors.New("unit not found")
)

// Catalog is the read-only set of subjects served by the platform
type Catalog struct {
	order    []string
	subjects map[string]*Subject
}

// NewCatalog indexes subjects in the order given.
// A later subject with a duplicate ID replaces the earlier one.
func NewCatalog(subjects []Subject) *Catalog {
	c := &Catalog{subjects: make(map[string]*Subject, len(subjects))}
	for i := range subjects {
		s := subjects[i]
		if _, exists := c.subjects[s.ID]; !exists {
			c.order = append(c.order, s.ID)
		}
		c.subjects[s.ID] = &s
	}
	return c
}

// LoadDir reads every subject file in dir
func LoadDir(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads every .yaml, .yml and .json file at the root of fsys.
// Files are read in name order, so the catalogue order is stable.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	subjects := make([]Subject, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read content file %s: %w", name, err)
		}

		var subject Subject
		if err := yaml.Unmarshal(data, &subject); err != nil {
			return nil, fmt.Errorf("failed to parse content file %s: %w", name, err)
		}
		if subject.ID == "" {
			return nil, fmt.Errorf("content file %s: subject id is required", name)
		}
		subjects = append(subjects, subject)
	}

	return NewCatalog(subjects), nil
}

// Subjects returns all subjects in catalogue order
func (c *Catalog) Subjects() []Subject {
	out := make([]Subject, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.subjects[id])
	}
	return out
}

// Subject returns the subject with the given ID
func (c *Catalog) Subject(id string) (*Subject, error) {
	s, ok := c.subjects[id]
	if !ok {
		return nil, ErrSubjectNotFound
	}
	return s, nil
}

// Unit returns one unit of a subject
func (c *Catalog) Unit(subjectID, unitID string) (*Unit, error) {
	s, err := c.Subject(subjectID)
	if err != nil {
		return nil, err
	}
	for i := range s.Units {
		if s.Units[i].ID == unitID {
			return &s.Units[i], nil
		}
	}
	return nil, ErrUnitNotFound
}

// Each calls fn for every unit in catalogue order
func (c *Catalog) Each(fn func(subjectID string, unit *Unit)) {
	for _, id := range c.order {
		s := c.subjects[id]
		for i := range s.Units {
			fn(s.ID, &s.Units[i])
		}
	}
}
