package wordsearch

import (
	"strings"
	"unicode"
)

const (
	// GridSize is the width and height of every word-search grid
	GridSize = 12

	// MaxAttempts bounds the random placements tried per word
	MaxAttempts = 100

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Cell is a grid coordinate
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InBounds reports whether the cell lies inside the grid
func (c Cell) InBounds() bool {
	return c.Row >= 0 && c.Row < GridSize && c.Col >= 0 && c.Col < GridSize
}

// Direction is a unit step along columns (DX) and rows (DY)
type Direction struct {
	DX int
	DY int
}

// Directions lists the placement directions in search order:
// right, down, diagonal down-right, diagonal down-left.
var Directions = [4]Direction{
	{DX: 1, DY: 0},
	{DX: 0, DY: 1},
	{DX: 1, DY: 1},
	{DX: -1, DY: 1},
}

// Grid is a square matrix of letters; the zero rune marks an empty cell
type Grid [GridSize][GridSize]rune

// At returns the letter at c, or zero when c is outside the grid
func (g *Grid) At(c Cell) rune {
	if !c.InBounds() {
		return 0
	}
	return g[c.Row][c.Col]
}

// Rows renders the grid as one string per row
func (g *Grid) Rows() []string {
	rows := make([]string, GridSize)
	for y := 0; y < GridSize; y++ {
		var b strings.Builder
		for x := 0; x < GridSize; x++ {
			if g[y][x] == 0 {
				b.WriteRune('.')
				continue
			}
			b.WriteRune(g[y][x])
		}
		rows[y] = b.String()
	}
	return rows
}

// Filled reports whether every cell holds a letter
func (g *Grid) Filled() bool {
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			if g[y][x] == 0 {
				return false
			}
		}
	}
	return true
}

// Rand is the subset of *math/rand.Rand used for placement
type Rand interface {
	Intn(n int) int
}

// Placement records where a word was written into the grid
type Placement struct {
	Word  string
	Start Cell
	Dir   Direction
}

// Cells returns the path covered by the placement, start first
func (p Placement) Cells() []Cell {
	n := len([]rune(p.Word))
	cells := make([]Cell, n)
	for i := 0; i < n; i++ {
		cells[i] = Cell{Row: p.Start.Row + p.Dir.DY*i, Col: p.Start.Col + p.Dir.DX*i}
	}
	return cells
}

// Layout is the outcome of BuildGrid
type Layout struct {
	Grid    Grid
	Placed  []Placement
	Dropped []string
}

// Normalize uppercases a word and strips all whitespace
func Normalize(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, word)
}

// Place tries up to MaxAttempts random positions for word.
// The grid is only written when a compatible position is found.
func Place(g *Grid, word string, rng Rand) (Placement, bool) {
	letters := []rune(word)
	n := len(letters)
	if n == 0 || n > GridSize {
		return Placement{}, false
	}

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		dir := Directions[rng.Intn(len(Directions))]
		startX := rng.Intn(GridSize)
		startY := rng.Intn(GridSize)

		end := Cell{Row: startY + dir.DY*(n-1), Col: startX + dir.DX*(n-1)}
		if !end.InBounds() {
			continue
		}

		if !fits(g, letters, startX, startY, dir) {
			continue
		}

		for i, ch := range letters {
			g[startY+dir.DY*i][startX+dir.DX*i] = ch
		}
		return Placement{Word: word, Start: Cell{Row: startY, Col: startX}, Dir: dir}, true
	}

	return Placement{}, false
}

// fits reports whether every cell on the path is empty or already holds the same letter
func fits(g *Grid, letters []rune, x, y int, dir Direction) bool {
	for i, ch := range letters {
		existing := g[y+dir.DY*i][x+dir.DX*i]
		if existing != 0 && existing != ch {
			return false
		}
	}
	return true
}

// Fill writes a position-derived letter into every empty cell
func Fill(g *Grid) {
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			if g[y][x] == 0 {
				g[y][x] = fillerAt(y, x)
			}
		}
	}
}

func fillerAt(row, col int) rune {
	seed := (row*GridSize+col)*7 + 13
	return rune(alphabet[seed%len(alphabet)])
}

// BuildGrid places words in input order and fills the remaining cells.
// Words that exhaust their attempts are reported in Layout.Dropped.
func BuildGrid(words []string, rng Rand) Layout {
	var layout Layout

	for _, word := range words {
		placement, ok := Place(&layout.Grid, word, rng)
		if !ok {
			layout.Dropped = append(layout.Dropped, word)
			continue
		}
		layout.Placed = append(layout.Placed, placement)
	}

	Fill(&layout.Grid)
	return layout
}

// SelectLine returns the straight run of cells from start to end.
// Points that are not on a shared row, column or diagonal collapse to [start].
func SelectLine(start, end Cell) []Cell {
	dx := sign(end.Col - start.Col)
	dy := sign(end.Row - start.Row)

	if dx != 0 && dy != 0 && abs(end.Col-start.Col) != abs(end.Row-start.Row) {
		return []Cell{start}
	}

	cells := make([]Cell, 0, GridSize+1)
	x, y := start.Col, start.Row
	for {
		cells = append(cells, Cell{Row: y, Col: x})
		if x == end.Col && y == end.Row {
			break
		}
		x += dx
		y += dy
		if len(cells) > GridSize {
			break
		}
	}
	return cells
}

// ReadCells concatenates the letters under cells, skipping out-of-grid cells
func ReadCells(g *Grid, cells []Cell) string {
	var b strings.Builder
	for _, c := range cells {
		if ch := g.At(c); ch != 0 {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// CheckSelection matches the selected letters, in either orientation,
// against the first word in words that is not yet found.
func CheckSelection(cells []Cell, g *Grid, words []string, found map[string]bool) (string, bool) {
	selected := ReadCells(g, cells)
	if selected == "" {
		return "", false
	}
	reversed := reverse(selected)

	for _, w := range words {
		if (w == selected || w == reversed) && !found[w] {
			return w, true
		}
	}
	return "", false
}

// Locate finds the first run spelling word forward or backward, scanning
// row-major, then by Directions order, forward before reverse.
func Locate(word string, g *Grid) ([]Cell, bool) {
	letters := []rune(word)
	n := len(letters)
	if n == 0 {
		return nil, false
	}

	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			for _, dir := range Directions {
				end := Cell{Row: y + dir.DY*(n-1), Col: x + dir.DX*(n-1)}
				if !end.InBounds() {
					continue
				}

				if matchesAt(g, letters, x, y, dir, false) || matchesAt(g, letters, x, y, dir, true) {
					return Placement{Word: word, Start: Cell{Row: y, Col: x}, Dir: dir}.Cells(), true
				}
			}
		}
	}
	return nil, false
}

func matchesAt(g *Grid, letters []rune, x, y int, dir Direction, backward bool) bool {
	n := len(letters)
	for i := 0; i < n; i++ {
		want := letters[i]
		if backward {
			want = letters[n-1-i]
		}
		if g[y+dir.DY*i][x+dir.DX*i] != want {
			return false
		}
	}
	return true
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
