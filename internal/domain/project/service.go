package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"botdesk/internal/domain/client"
)

// Store is the synchronized project collection the service operates on.
type Store interface {
	Load(ctx context.Context) []Project
	Create(ctx context.Context, p Patch) (Project, error)
	Update(ctx context.Context, id string, p Patch) (Project, error)
	Delete(ctx context.Context, id string) error
}

// ClientLinker resolves free-text client names to client records.
type ClientLinker interface {
	EnsureByName(ctx context.Context, name string) (client.Client, bool, error)
}

// Service handles project business logic.
type Service struct {
	store   Store
	clients ClientLinker
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new project service.
func NewService(store Store, clients ClientLinker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		clients: clients,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns all known projects.
func (s *Service) List(ctx context.Context) []Project {
	return s.store.Load(ctx)
}

// Create validates and stores a new project. When the patch names a
// client, a matching client record is auto-created unless one already
// exists under the normalized name.
func (s *Service) Create(ctx context.Context, p Patch) (Project, error) {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return Project{}, ErrEmptyName
	}
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	if err := s.linkClient(ctx, p); err != nil {
		return Project{}, err
	}
	return s.store.Create(ctx, p)
}

// Update applies a patch to an existing project.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Project, error) {
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	if err := s.linkClient(ctx, p); err != nil {
		return Project{}, err
	}
	return s.store.Update(ctx, id, p)
}

// Delete removes a project. Deleting an unknown identifier succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// DueTomorrow returns the established projects whose billing cutoff falls
// on the calendar day after now.
func (s *Service) DueTomorrow(ctx context.Context, now time.Time) []Project {
	var due []Project
	for _, p := range s.store.Load(ctx) {
		if CutoffTomorrow(p, now) {
			due = append(due, p)
		}
	}
	return due
}

func (s *Service) linkClient(ctx context.Context, p Patch) error {
	if s.clients == nil || p.ClientName == nil || strings.TrimSpace(*p.ClientName) == "" {
		return nil
	}
	if _, _, err := s.clients.EnsureByName(ctx, strings.TrimSpace(*p.ClientName)); err != nil {
		return fmt.Errorf("linking client: %w", err)
	}
	return nil
}
