package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// DefaultBlockedWordsURL is the word list used to filter display names.
const DefaultBlockedWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// SeedBlockedWords downloads the word list at url into blocked_words unless
// the table is already populated. It returns the number of words added.
func (db *DB) SeedBlockedWords(ctx context.Context, url string) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blocked_words").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to check blocked words count: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build blocked words request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download blocked words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bad status code from blocked words URL: %d", resp.StatusCode)
	}

	return db.LoadBlockedWords(ctx, resp.Body)
}

// LoadBlockedWords inserts one word per line from r inside a single transaction.
// Duplicates are skipped.
func (db *DB) LoadBlockedWords(ctx context.Context, r io.Reader) (int, error) {
	added := 0
	query := db.Dialect.InsertIgnoreQuery("blocked_words", []string{"word"}, []string{"word"})

	err := db.WithTx(ctx, func(tx *Tx) error {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			word := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if word == "" {
				continue
			}
			result, err := tx.ExecContext(ctx, query, word)
			if err != nil {
				return fmt.Errorf("failed to insert blocked word: %w", err)
			}
			if n, _ := result.RowsAffected(); n > 0 {
				added++
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading blocked words: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// ContainsBlockedWord reports whether any word of text, or text as a whole,
// is on the blocked list.
func (db *DB) ContainsBlockedWord(ctx context.Context, text string) (bool, error) {
	candidates := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if whole := strings.TrimSpace(strings.ToLower(text)); whole != "" {
		candidates = append(candidates, whole)
	}

	for _, word := range candidates {
		var count int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blocked_words WHERE word = ?", word).Scan(&count)
		if err != nil {
			return false, fmt.Errorf("failed to check blocked word: %w", err)
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}
