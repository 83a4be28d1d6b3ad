package expense

import (
	"context"
	"log/slog"
	"strings"
)

// Store is the synchronized expense collection the service operates on.
type Store interface {
	Load(ctx context.Context) []Expense
	Create(ctx context.Context, p Patch) (Expense, error)
	Update(ctx context.Context, id string, p Patch) (Expense, error)
	Delete(ctx context.Context, id string) error
}

// Service handles expense business logic.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new expense service.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// List returns all known expenses.
func (s *Service) List(ctx context.Context) []Expense {
	return s.store.Load(ctx)
}

// Create validates and stores a new expense.
func (s *Service) Create(ctx context.Context, p Patch) (Expense, error) {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
		return Expense{}, ErrEmptyName
	}
	if err := p.Validate(); err != nil {
		return Expense{}, err
	}
	return s.store.Create(ctx, p)
}

// Update applies a patch to an existing expense.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Expense, error) {
	if err := p.Validate(); err != nil {
		return Expense{}, err
	}
	return s.store.Update(ctx, id, p)
}

// Delete removes an expense. Deleting an unknown identifier succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Allocation spreads the current expenses over the months of year.
func (s *Service) Allocation(ctx context.Context, year int) [12]MonthlyBreakdown {
	return MonthlyAllocation(s.store.Load(ctx), year)
}
