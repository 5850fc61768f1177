package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const attemptPrefix = "attempt:"

// Attempt is one recorded pronunciation check.
type Attempt struct {
	ID         string    `json:"id"`
	Word       string    `json:"word"`
	Recognized string    `json:"recognized"`
	Correct    bool      `json:"correct"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// WordStats aggregates attempts for a single word.
type WordStats struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// Stats summarizes the whole attempt history.
type Stats struct {
	TotalAttempts int                  `json:"total_attempts"`
	TotalCorrect  int                  `json:"total_correct"`
	Words         map[string]WordStats `json:"words"`
}

// Store is an embedded attempt history backed by Badger.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the attempt database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open attempt store at %s: %w", path, err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAttempt persists one attempt, assigning its ID and timestamp when
// unset. Keys embed the creation time so iteration order is chronological.
func (s *Store) SaveAttempt(attempt *Attempt) error {
	if attempt.Word == "" {
		return fmt.Errorf("attempt word cannot be empty")
	}

	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	value, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}

	key := attemptKey(attempt.CreatedAt, attempt.ID)

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}

	s.logger.Debug("Attempt saved",
		slog.String("id", attempt.ID),
		slog.String("word", attempt.Word),
		slog.Bool("correct", attempt.Correct),
	)

	return nil
}

// ListAttempts returns attempts newest first, optionally filtered by word.
// limit <= 0 means no limit.
func (s *Store) ListAttempts(word string, limit int) ([]Attempt, error) {
	var attempts []Attempt

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(attemptPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek key past the whole prefix range.
		seek := append([]byte(attemptPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix([]byte(attemptPrefix)); it.Next() {
			if limit > 0 && len(attempts) >= limit {
				break
			}

			err := it.Item().Value(func(value []byte) error {
				var attempt Attempt
				if err := json.Unmarshal(value, &attempt); err != nil {
					return fmt.Errorf("failed to unmarshal attempt: %w", err)
				}
				if word == "" || attempt.Word == word {
					attempts = append(attempts, attempt)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	return attempts, nil
}

// Summary aggregates the full history into per-word statistics.
func (s *Store) Summary() (*Stats, error) {
	stats := &Stats{Words: make(map[string]WordStats)}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(attemptPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(attemptPrefix)); it.ValidForPrefix([]byte(attemptPrefix)); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var attempt Attempt
				if err := json.Unmarshal(value, &attempt); err != nil {
					return fmt.Errorf("failed to unmarshal attempt: %w", err)
				}

				stats.TotalAttempts++
				word := stats.Words[attempt.Word]
				word.Attempts++
				if attempt.Correct {
					stats.TotalCorrect++
					word.Correct++
				}
				stats.Words[attempt.Word] = word
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize attempts: %w", err)
	}

	return stats, nil
}

func attemptKey(createdAt time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", attemptPrefix, createdAt.UnixNano(), id))
}
