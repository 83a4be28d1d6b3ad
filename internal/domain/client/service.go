package client

import (
	"context"
	"fmt"
	"log/slog"
)

// Store is the synchronized client collection the service operates on.
type Store interface {
	Load(ctx context.Context) []Client
	Create(ctx context.Context, p Patch) (Client, error)
	Update(ctx context.Context, id string, p Patch) (Client, error)
	Delete(ctx context.Context, id string) error
}

// Service handles client business logic.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new client service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// List returns all known clients.
func (s *Service) List(ctx context.Context) []Client {
	return s.store.Load(ctx)
}

// Create validates and stores a new client.
func (s *Service) Create(ctx context.Context, p Patch) (Client, error) {
	if p.Name == nil {
		return Client{}, ErrEmptyName
	}
	if err := p.Validate(); err != nil {
		return Client{}, err
	}
	return s.store.Create(ctx, p)
}

// Update applies a patch to an existing client.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Client, error) {
	if err := p.Validate(); err != nil {
		return Client{}, err
	}
	return s.store.Update(ctx, id, p)
}

// Delete removes a client. Deleting an unknown identifier succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// ExistsByName reports whether a client with the given name already
// exists, matching on the normalized name.
func (s *Service) ExistsByName(ctx context.Context, name string) bool {
	return Exists(s.store.Load(ctx), name)
}

// EnsureByName returns the client with the given name, creating it when
// missing. The second result reports whether a new record was created.
// The existence check runs against the current collection, so concurrent
// project saves naming the same client funnel through the write queue and
// at most one record is created.
func (s *Service) EnsureByName(ctx context.Context, name string) (Client, bool, error) {
	if existing, ok := FindByName(s.store.Load(ctx), name); ok {
		return existing, false, nil
	}
	created, err := s.store.Create(ctx, Patch{Name: &name})
	if err != nil {
		return Client{}, false, fmt.Errorf("creating client %q: %w", name, err)
	}
	s.logger.Info("auto-created client from project flow", "name", name, "id", created.ID)
	return created, true, nil
}
