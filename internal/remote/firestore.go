package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on Cloud Firestore. Collections live
// under a fixed application namespace: apps/<namespace>/<collection>.
type FirestoreStore struct {
	client    *firestore.Client
	namespace string
	logger    *slog.Logger

	mu      sync.RWMutex
	enabled bool
}

// FirestoreConfig carries the settings needed to open the store.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
	Namespace       string
}

// NewFirestore opens a Firestore-backed store.
func NewFirestore(ctx context.Context, cfg FirestoreConfig, logger *slog.Logger) (*FirestoreStore, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("remote: project id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("remote: opening firestore client: %w", err)
	}

	return &FirestoreStore{
		client:    client,
		namespace: cfg.Namespace,
		logger:    logger,
		enabled:   true,
	}, nil
}

// Authenticate verifies the anonymous session by touching the namespace
// document. A missing namespace document still proves the store is
// reachable and the credentials are accepted.
func (s *FirestoreStore) Authenticate(ctx context.Context) error {
	if err := s.checkNetwork(); err != nil {
		return err
	}
	_, err := s.client.Collection("apps").Doc(s.namespace).Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("remote: authenticating: %w", err)
	}
	return nil
}

// FetchAll returns every document in the collection.
func (s *FirestoreStore) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	if err := s.checkNetwork(); err != nil {
		return nil, err
	}

	snaps, err := s.col(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("remote: fetching %s: %w", collection, err)
	}
	return toDocuments(snaps)
}

// Set writes a full document, creating or replacing it.
func (s *FirestoreStore) Set(ctx context.Context, collection, id string, record any) error {
	if err := s.checkNetwork(); err != nil {
		return err
	}

	fields, err := toFields(record)
	if err != nil {
		return err
	}
	if _, err := s.col(collection).Doc(id).Set(ctx, fields); err != nil {
		return fmt.Errorf("remote: writing %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document; deleting a missing document succeeds.
func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if err := s.checkNetwork(); err != nil {
		return err
	}

	if _, err := s.col(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("remote: deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

// Subscribe opens a snapshot listener on the collection. The feed runs
// until the returned stop function is called or the feed errors, in which
// case fn receives the error exactly once.
func (s *FirestoreStore) Subscribe(ctx context.Context, collection string, fn SnapshotFunc) (func(), error) {
	if err := s.checkNetwork(); err != nil {
		return nil, err
	}

	feedCtx, cancel := context.WithCancel(ctx)
	it := s.col(collection).Snapshots(feedCtx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if feedCtx.Err() == nil {
					fn(nil, err)
				}
				return
			}
			snaps, err := snap.Documents.GetAll()
			if err != nil {
				fn(nil, err)
				return
			}
			docs, err := toDocuments(snaps)
			if err != nil {
				fn(nil, err)
				return
			}
			fn(docs, nil)
		}
	}()

	return func() {
		cancel()
	}, nil
}

// SetNetworkEnabled toggles remote traffic.
func (s *FirestoreStore) SetNetworkEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
	s.logger.Info("remote network toggled", "enabled", enabled)
}

// Close releases the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) col(collection string) *firestore.CollectionRef {
	return s.client.Collection("apps").Doc(s.namespace).Collection(collection)
}

func (s *FirestoreStore) checkNetwork() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.enabled {
		return ErrNetworkDisabled
	}
	return nil
}

// toFields round-trips a record through JSON so the document layout
// matches the JSON wire shape the rest of the system reads back.
func toFields(record any) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("remote: encoding record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("remote: encoding record fields: %w", err)
	}
	return fields, nil
}

func toDocuments(snaps []*firestore.DocumentSnapshot) ([]Document, error) {
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		raw, err := json.Marshal(snap.Data())
		if err != nil {
			return nil, fmt.Errorf("remote: decoding %s: %w", snap.Ref.ID, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: raw})
	}
	return docs, nil
}
