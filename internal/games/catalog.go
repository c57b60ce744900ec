package games

import (
	"errors"
)

var ErrUnknownGame = errors.New("unknown game")

// Game identifiers
const (
	Snake         = "snake"
	WordSearch    = "wordsearch"
	DragDrop      = "dragdrop"
	Jigsaw        = "jigsaw"
	FillBlanks    = "fillblanks"
	MemoryFlip    = "memoryflip"
	MatchIt       = "matchit"
	FightTime     = "fighttime"
	GuessWord     = "guessword"
	ConceptPuzzle = "conceptpuzzle"
)

// Game describes one mini-game
type Game struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var catalog = []Game{
	{ID: Snake, Name: "Snake Game", Description: "Eat letters to spell answers"},
	{ID: WordSearch, Name: "Word Search", Description: "Find hidden words in the grid"},
	{ID: DragDrop, Name: "Drag and Drop", Description: "Sort answers into categories"},
	{ID: Jigsaw, Name: "Jigsaw Puzzle", Description: "Assemble pieces to form answers"},
	{ID: FillBlanks, Name: "Fill in the Blanks", Description: "Complete sentences before time runs out"},
	{ID: MemoryFlip, Name: "Memory Flip", Description: "Match questions with answers"},
	{ID: MatchIt, Name: "Match It", Description: "Connect questions to correct answers"},
	{ID: FightTime, Name: "Fight the Time", Description: "Enumerate answers before time runs out"},
	{ID: GuessWord, Name: "Guess the Word", Description: "Unscramble letters to spell answers"},
	{ID: ConceptPuzzle, Name: "Concept Puzzle", Description: "Guess answers with hints"},
}

// All returns the games in display order
func All() []Game {
	out := make([]Game, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the game with the given ID
func Lookup(id string) (Game, error) {
	for _, g := range catalog {
		if g.ID == id {
			return g, nil
		}
	}
	return Game{}, ErrUnknownGame
}

// IsValid reports whether id names a game
func IsValid(id string) bool {
	_, err := Lookup(id)
	return err == nil
}
