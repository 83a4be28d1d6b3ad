package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"botdesk/internal/snapshot"
)

// Store persists the imported transcript set between restarts.
type Store interface {
	Save(ctx context.Context, collection string, payload []byte, writtenAt time.Time) error
	Load(ctx context.Context, collection string) ([]byte, time.Time, error)
}

// collectionKey is where the transcript set lives in the local store.
const collectionKey = "conversations"

// Service handles transcript import, retrieval and analysis.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new conversation service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Import parses a transcript CSV, replaces the stored set and returns
// how many conversations were imported and how many rows were skipped.
func (s *Service) Import(ctx context.Context, r io.Reader) (int, int, error) {
	conversations, skipped, err := ImportCSV(r)
	if err != nil {
		return 0, 0, err
	}

	payload, err := json.Marshal(conversations)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to encode conversations: %w", err)
	}
	if err := s.store.Save(ctx, collectionKey, payload, s.now()); err != nil {
		return 0, 0, fmt.Errorf("failed to persist conversations: %w", err)
	}

	s.logger.Info("transcripts imported",
		"conversations", len(conversations), "skipped_rows", skipped)
	return len(conversations), skipped, nil
}

// List returns the stored transcript set. No import yet means an empty
// list, not an error.
func (s *Service) List(ctx context.Context) ([]Conversation, error) {
	payload, _, err := s.store.Load(ctx, collectionKey)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return []Conversation{}, nil
		}
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}

	var conversations []Conversation
	if err := json.Unmarshal(payload, &conversations); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return conversations, nil
}

// Analysis summarizes the stored transcript set.
func (s *Service) Analysis(ctx context.Context) (Analysis, error) {
	conversations, err := s.List(ctx)
	if err != nil {
		return Analysis{}, err
	}
	return Analyze(conversations, s.now()), nil
}
