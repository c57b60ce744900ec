package wordsearch

import (
	"time"
)

// Entry is one word-search target with the clue shown beside the grid
type Entry struct {
	Word string `json:"word"`
	Clue string `json:"clue,omitempty"`
}

// Match is a successful selection check
type Match struct {
	Word string `json:"word"`
	Path []Cell `json:"path"`
}

// Session is a single word-search game. Only words that were actually
// placed become targets; the rest are kept in Dropped for reporting.
type Session struct {
	ID        string
	SubjectID string
	UnitID    string
	Grid      Grid
	Words     []string
	Clues     map[string]string
	StartedAt time.Time
	UpdatedAt time.Time

	dropped    []string
	found      []string
	foundSet   map[string]bool
	foundCells map[Cell]bool
}

// NewSession normalizes the entries, builds the grid and keeps the placed subset as targets
func NewSession(entries []Entry, rng Rand) *Session {
	words := make([]string, 0, len(entries))
	clues := make(map[string]string, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		word := Normalize(e.Word)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
		clues[word] = e.Clue
	}

	layout := BuildGrid(words, rng)

	targets := make([]string, 0, len(layout.Placed))
	for _, p := range layout.Placed {
		targets = append(targets, p.Word)
	}

	now := time.Now()
	return &Session{
		Grid:       layout.Grid,
		Words:      targets,
		Clues:      clues,
		StartedAt:  now,
		UpdatedAt:  now,
		dropped:    layout.Dropped,
		foundSet:   make(map[string]bool),
		foundCells: make(map[Cell]bool),
	}
}

// Select returns the live selection path between two cells
func (s *Session) Select(start, end Cell) []Cell {
	return SelectLine(start, end)
}

// Check tests a selection; on a match the word joins the found set and
// its located path is marked.
func (s *Session) Check(cells []Cell) (Match, bool) {
	word, ok := CheckSelection(cells, &s.Grid, s.Words, s.foundSet)
	if !ok {
		return Match{}, false
	}

	s.foundSet[word] = true
	s.found = append(s.found, word)
	s.UpdatedAt = time.Now()

	path, located := Locate(word, &s.Grid)
	if !located {
		path = cells
	}
	for _, c := range path {
		s.foundCells[c] = true
	}

	return Match{Word: word, Path: path}, true
}

// Found returns found words in the order they were found
func (s *Session) Found() []string {
	out := make([]string, len(s.found))
	copy(out, s.found)
	return out
}

// Dropped returns words that could not be placed in the grid
func (s *Session) Dropped() []string {
	out := make([]string, len(s.dropped))
	copy(out, s.dropped)
	return out
}

// IsFoundCell reports whether c belongs to a found word
func (s *Session) IsFoundCell(c Cell) bool {
	return s.foundCells[c]
}

// Complete reports whether every target has been found
func (s *Session) Complete() bool {
	return len(s.Words) > 0 && len(s.found) == len(s.Words)
}

// Score returns found and total target counts
func (s *Session) Score() (int, int) {
	return len(s.found), len(s.Words)
}

// View is the JSON shape of a session sent to players
type View struct {
	ID         string   `json:"id"`
	SubjectID  string   `json:"subject_id"`
	UnitID     string   `json:"unit_id"`
	Rows       []string `json:"rows"`
	Words      []Entry  `json:"words"`
	Found      []string `json:"found"`
	FoundCells []Cell   `json:"found_cells"`
	Score      int      `json:"score"`
	MaxScore   int      `json:"max_score"`
	Complete   bool     `json:"complete"`
}

// Snapshot renders the session for the client
func (s *Session) Snapshot() View {
	score, max := s.Score()

	words := make([]Entry, 0, len(s.Words))
	for _, w := range s.Words {
		words = append(words, Entry{Word: w, Clue: s.Clues[w]})
	}

	cells := make([]Cell, 0, len(s.foundCells))
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			c := Cell{Row: y, Col: x}
			if s.foundCells[c] {
				cells = append(cells, c)
			}
		}
	}

	return View{
		ID:         s.ID,
		SubjectID:  s.SubjectID,
		UnitID:     s.UnitID,
		Rows:       s.Grid.Rows(),
		Words:      words,
		Found:      s.Found(),
		FoundCells: cells,
		Score:      score,
		MaxScore:   max,
		Complete:   s.Complete(),
	}
}
