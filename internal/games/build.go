package games

import (
	"fmt"
	"strings"
	"unicode"

	"educross/internal/questions"
	"educross/internal/wordsearch"
)

const (
	SnakeBoardSize    = 15
	SnakeDistractors  = 8
	MaxWordSearch     = 8
	MaxGuessWord      = 10
	MaxFillBlanks     = 10
	MaxMatchIt        = 8
	MaxMemoryFlip     = 6
	MaxJigsaw         = 5
	MaxJigsawPieces   = 6
	ConceptHintPoints = 3

	blank    = "_____"
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// SnakeStart is where the snake's head begins each level
var SnakeStart = Position{X: 7, Y: 7}

// Rand is the subset of *math/rand.Rand used to lay out games
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Payload is the game-local content for one unit. Data holds the
// game-specific type named by Game.ID.
type Payload struct {
	Game     Game `json:"game"`
	MaxScore int  `json:"max_score"`
	Data     any  `json:"data"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type BoardLetter struct {
	Position
	Char string `json:"char"`
}

type SnakeLevel struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Hints    []string      `json:"hints,omitempty"`
	Start    Position      `json:"start"`
	Letters  []BoardLetter `json:"letters"`
}

type GuessWordLevel struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Hints    []string `json:"hints,omitempty"`
	Letters  []string `json:"letters"`
}

type FillBlank struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

type Card struct {
	ID     string `json:"id"`
	PairID int    `json:"pair_id"`
	Face   string `json:"face"`
	Text   string `json:"text"`
}

type MatchOption struct {
	Text         string `json:"text"`
	CorrectIndex int    `json:"correct_index"`
}

type MatchBoard struct {
	Questions []string      `json:"questions"`
	Answers   []MatchOption `json:"answers"`
}

type Piece struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

type JigsawPuzzle struct {
	Clue   string  `json:"clue"`
	Pieces []Piece `json:"pieces"`
}

// Build lays out gameID for a unit's question set. A unit without content
// for the game yields a payload with no items and a zero max score.
func Build(gameID string, set questions.Set, rng Rand) (Payload, error) {
	game, err := Lookup(gameID)
	if err != nil {
		return Payload{}, fmt.Errorf("build %q: %w", gameID, err)
	}

	p := Payload{Game: game}
	switch gameID {
	case WordSearch:
		entries := WordSearchEntries(set)
		p.Data, p.MaxScore = entries, len(entries)
	case Snake:
		levels := snakeLevels(set.Questions, rng)
		p.Data, p.MaxScore = levels, len(levels)
	case GuessWord:
		levels := guessWordLevels(take(set.Questions, MaxGuessWord), rng)
		p.Data, p.MaxScore = levels, len(levels)
	case ConceptPuzzle:
		qs := set.Questions
		p.Data, p.MaxScore = qs, len(qs)*ConceptHintPoints
	case FillBlanks:
		blanks := fillBlanks(take(set.Questions, MaxFillBlanks))
		p.Data, p.MaxScore = blanks, len(blanks)
	case MemoryFlip:
		qs := take(set.Questions, MaxMemoryFlip)
		p.Data, p.MaxScore = memoryCards(qs, rng), len(qs)
	case MatchIt:
		board := matchBoard(take(set.Questions, MaxMatchIt), rng)
		p.Data, p.MaxScore = board, len(board.Questions)
	case Jigsaw:
		puzzles := jigsawPuzzles(take(set.Questions, MaxJigsaw), rng)
		p.Data, p.MaxScore = puzzles, len(puzzles)
	case FightTime:
		eqs := set.EnumerationQuestions
		p.Data, p.MaxScore = eqs, len(eqs)
	case DragDrop:
		if len(set.CategoryQuestions) == 0 {
			break
		}
		cq := shuffledCategory(set.CategoryQuestions[0], rng)
		p.Data, p.MaxScore = cq, len(cq.Items)
	}

	return p, nil
}

// WordSearchEntries returns the first key terms of the set as word-search
// input
func WordSearchEntries(set questions.Set) []wordsearch.Entry {
	words := take(set.Words, MaxWordSearch)
	entries := make([]wordsearch.Entry, len(words))
	for i, w := range words {
		entries[i] = wordsearch.Entry{Word: w.Word, Clue: w.Clue}
	}
	return entries
}

// ConceptPuzzlePoints is the score for a solved concept after hintsUsed hints
func ConceptPuzzlePoints(hintsUsed int) int {
	return max(1, ConceptHintPoints-hintsUsed)
}

func take[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// letters returns the upper-cased answer without whitespace, one letter per entry
func letters(answer string) []string {
	var out []string
	for _, r := range strings.ToUpper(answer) {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, string(r))
	}
	return out
}

func snakeLevels(qs []questions.Question, rng Rand) []SnakeLevel {
	levels := make([]SnakeLevel, 0, len(qs))
	for _, q := range qs {
		levels = append(levels, SnakeLevel{
			Question: q.Question,
			Answer:   strings.ToUpper(q.Answer),
			Hints:    q.Hints,
			Start:    SnakeStart,
			Letters:  snakeBoard(letters(q.Answer), rng),
		})
	}
	return levels
}

// snakeBoard scatters the answer letters and distractors over free cells.
// The start cell is never used.
func snakeBoard(answer []string, rng Rand) []BoardLetter {
	used := map[Position]bool{SnakeStart: true}
	free := SnakeBoardSize*SnakeBoardSize - 1

	pick := func() (Position, bool) {
		if len(used) > free {
			return Position{}, false
		}
		for {
			pos := Position{X: rng.Intn(SnakeBoardSize), Y: rng.Intn(SnakeBoardSize)}
			if !used[pos] {
				used[pos] = true
				return pos, true
			}
		}
	}

	board := make([]BoardLetter, 0, len(answer)+SnakeDistractors)
	for _, ch := range answer {
		pos, ok := pick()
		if !ok {
			return board
		}
		board = append(board, BoardLetter{Position: pos, Char: ch})
	}
	for i := 0; i < SnakeDistractors; i++ {
		pos, ok := pick()
		if !ok {
			break
		}
		board = append(board, BoardLetter{Position: pos, Char: string(alphabet[rng.Intn(len(alphabet))])})
	}
	return board
}

func guessWordLevels(qs []questions.Question, rng Rand) []GuessWordLevel {
	levels := make([]GuessWordLevel, 0, len(qs))
	for _, q := range qs {
		ls := letters(q.Answer)
		rng.Shuffle(len(ls), func(i, j int) { ls[i], ls[j] = ls[j], ls[i] })
		levels = append(levels, GuessWordLevel{
			Question: q.Question,
			Answer:   strings.Join(letters(q.Answer), ""),
			Hints:    q.Hints,
			Letters:  ls,
		})
	}
	return levels
}

// fillBlanks blanks the answer out of its question. When the question does
// not mention the answer, the blank is appended.
func fillBlanks(qs []questions.Question) []FillBlank {
	out := make([]FillBlank, 0, len(qs))
	for _, q := range qs {
		out = append(out, FillBlank{Prompt: blankOut(q.Question, q.Answer), Answer: q.Answer})
	}
	return out
}

func blankOut(text, answer string) string {
	if answer == "" {
		return text
	}
	lower, target := strings.ToLower(text), strings.ToLower(answer)
	if idx := strings.Index(lower, target); idx >= 0 && len(lower) == len(text) {
		var b strings.Builder
		for idx >= 0 {
			b.WriteString(text[:idx])
			b.WriteString(blank)
			text = text[idx+len(target):]
			lower = lower[idx+len(target):]
			idx = strings.Index(lower, target)
		}
		b.WriteString(text)
		return b.String()
	}
	return strings.TrimRight(text, " .") + ": " + blank
}

func memoryCards(qs []questions.Question, rng Rand) []Card {
	cards := make([]Card, 0, len(qs)*2)
	for i, q := range qs {
		cards = append(cards,
			Card{ID: fmt.Sprintf("q-%d", i), PairID: i, Face: "question", Text: q.Question},
			Card{ID: fmt.Sprintf("a-%d", i), PairID: i, Face: "answer", Text: q.Answer},
		)
	}
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards
}

func matchBoard(qs []questions.Question, rng Rand) MatchBoard {
	board := MatchBoard{
		Questions: make([]string, len(qs)),
		Answers:   make([]MatchOption, len(qs)),
	}
	for i, q := range qs {
		board.Questions[i] = q.Question
		board.Answers[i] = MatchOption{Text: q.Answer, CorrectIndex: i}
	}
	rng.Shuffle(len(board.Answers), func(i, j int) {
		board.Answers[i], board.Answers[j] = board.Answers[j], board.Answers[i]
	})
	return board
}

// jigsawPuzzles cuts each question into word pieces. The player rebuilds
// the question text with the answer shown as the clue.
func jigsawPuzzles(qs []questions.Question, rng Rand) []JigsawPuzzle {
	puzzles := make([]JigsawPuzzle, 0, len(qs))
	for _, q := range qs {
		pieces := cutPieces(q.Question)
		if len(pieces) == 0 {
			continue
		}
		rng.Shuffle(len(pieces), func(i, j int) { pieces[i], pieces[j] = pieces[j], pieces[i] })
		puzzles = append(puzzles, JigsawPuzzle{Clue: q.Answer, Pieces: pieces})
	}
	return puzzles
}

func cutPieces(text string) []Piece {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	size := (len(words) + MaxJigsawPieces - 1) / MaxJigsawPieces
	var pieces []Piece
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		chunk := strings.Join(words[start:end], " ")
		if end < len(words) {
			chunk += " "
		}
		pieces = append(pieces, Piece{ID: fmt.Sprintf("p-%d", len(pieces)), Text: chunk, Order: len(pieces)})
	}
	return pieces
}

func shuffledCategory(cq questions.CategoryQuestion, rng Rand) questions.CategoryQuestion {
	items := make([]questions.CategoryItem, len(cq.Items))
	copy(items, cq.Items)
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	return questions.CategoryQuestion{Categories: cq.Categories, Items: items}
}
