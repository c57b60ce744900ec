package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

//go:embed bad_words.txt
var builtinBadWords string

// BuiltinBadWords returns the word list shipped with the binary
func BuiltinBadWords() []string {
	var words []string
	for _, line := range strings.Split(builtinBadWords, "\n") {
		word := strings.TrimSpace(strings.ToLower(line))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, word)
	}
	return words
}

// SeedBadWords fills the bad words table from the built-in list.
// A populated table is left untouched.
func (db *DB) SeedBadWords(ctx context.Context) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bad_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check bad words count: %w", err)
	}

	if count > 0 {
		db.logger.Debug("bad words filter already populated", zap.Int("count", count))
		return nil
	}

	words := BuiltinBadWords()
	err := db.WithTx(ctx, func(tx *Tx) error {
		for _, word := range words {
			if _, err := tx.ExecContext(ctx, "INSERT INTO bad_words (word) VALUES (?)", word); err != nil {
				return fmt.Errorf("failed to insert %q: %w", word, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.logger.Info("bad words filter populated", zap.Int("count", len(words)))
	return nil
}

// IsBadWord checks if a word is in the bad words list
func (db *DB) IsBadWord(ctx context.Context, word string) (bool, error) {
	cleanWord := strings.TrimSpace(strings.ToLower(word))
	if cleanWord == "" {
		return false, nil
	}

	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bad_words WHERE word = ?", cleanWord).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check bad word: %w", err)
	}

	if count > 0 {
		db.logger.Info("bad word detected", zap.String("word", word))
	}

	return count > 0, nil
}

// ContainsBadWord splits text into words on anything that is not a letter
// or digit and reports whether any of them is in the bad words list.
// The whole text with separators removed is checked too, so "bad_word"
// style nicknames are caught.
func (db *DB) ContainsBadWord(ctx context.Context, text string) (bool, error) {
	notAlnum := func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }

	tokens := strings.FieldsFunc(text, notAlnum)
	if len(tokens) > 1 {
		tokens = append(tokens, strings.Join(tokens, ""))
	}

	bad, err := db.ValidateWords(ctx, tokens)
	if err != nil {
		return false, err
	}
	return len(bad) > 0, nil
}

// ValidateWords checks a list of words against the bad words filter.
// Returns the list of bad words found.
func (db *DB) ValidateWords(ctx context.Context, words []string) ([]string, error) {
	if len(words) == 0 {
		return nil, nil
	}

	var badWords []string
	for _, word := range words {
		isBad, err := db.IsBadWord(ctx, word)
		if err != nil {
			return nil, err
		}
		if isBad {
			badWords = append(badWords, word)
		}
	}

	return badWords, nil
}
