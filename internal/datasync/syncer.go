package datasync

import (
	"context"
	"log/slog"
	"time"

	"botdesk/internal/domain/client"
	"botdesk/internal/domain/expense"
	"botdesk/internal/domain/project"
	"botdesk/internal/remote"
	"botdesk/internal/snapshot"
)

// Event topics. Entity topics double as remote collection names.
const (
	TopicProjects = "projects"
	TopicClients  = "clients"
	TopicExpenses = "expenses"
	TopicStatus   = "status"
)

// Config carries the syncer's dependencies and tuning.
type Config struct {
	Remote    remote.Store
	Snapshots *snapshot.Store
	Freshness time.Duration
	Debounce  time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

// Syncer is the data layer's root object: one write queue, one event
// bus, one status tracker and one collection engine per entity type, all
// sharing the same remote store and snapshot database.
type Syncer struct {
	remote   remote.Store
	tracker  *Tracker
	bus      *Bus
	queue    *Queue
	debounce *Debouncer
	logger   *slog.Logger

	Projects *Collection[project.Project, project.Patch]
	Clients  *Collection[client.Client, client.Patch]
	Expenses *Collection[expense.Expense, expense.Patch]
}

// New wires a syncer. Start must be called before remote operations are
// attempted; until then every collection serves local data only.
func New(cfg Config) *Syncer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 50 * time.Millisecond
	}

	bus := NewBus()
	tracker := NewTracker(bus, []string{TopicProjects, TopicClients, TopicExpenses}, cfg.Now)
	deps := Deps{
		Remote:    cfg.Remote,
		Snapshots: cfg.Snapshots,
		Tracker:   tracker,
		Bus:       bus,
		Queue:     NewQueue(0),
		Debounce:  NewDebouncer(debounce),
		Logger:    logger,
		Now:       cfg.Now,
	}

	s := &Syncer{
		remote:   cfg.Remote,
		tracker:  tracker,
		bus:      bus,
		queue:    deps.Queue,
		debounce: deps.Debounce,
		logger:   logger,
	}
	s.Projects = NewCollection(CollectionConfig[project.Project, project.Patch]{
		Name:      TopicProjects,
		Freshness: cfg.Freshness,
		Build:     project.New,
		Merge:     project.Project.Merge,
	}, deps)
	s.Clients = NewCollection(CollectionConfig[client.Client, client.Patch]{
		Name:      TopicClients,
		Freshness: cfg.Freshness,
		Build:     client.New,
		Merge:     client.Client.Merge,
	}, deps)
	s.Expenses = NewCollection(CollectionConfig[expense.Expense, expense.Patch]{
		Name:      TopicExpenses,
		Freshness: cfg.Freshness,
		Build:     expense.New,
		Merge:     expense.Expense.Merge,
	}, deps)
	return s
}

// Start establishes the backend session. On failure the syncer stays
// usable in local-only mode; the error state is reflected in Status.
func (s *Syncer) Start(ctx context.Context) error {
	if s.remote == nil {
		s.tracker.FailAuth(ErrNotConnected)
		return ErrNotConnected
	}
	s.tracker.BeginAuth()
	if err := s.remote.Authenticate(ctx); err != nil {
		s.tracker.FailAuth(err)
		s.logger.Error("backend authentication failed", "error", err)
		return err
	}
	s.tracker.MarkAuthenticated()
	s.logger.Info("backend session established")
	return nil
}

// SetOnline toggles remote traffic. Offline mode fails remote calls fast
// so every operation takes its local path immediately.
func (s *Syncer) SetOnline(online bool) {
	if s.remote != nil {
		s.remote.SetNetworkEnabled(online)
	}
	s.tracker.SetOnline(online)
	s.logger.Info("network mode changed", "online", online)
}

// SubscribeAll opens the live change feed on every collection.
func (s *Syncer) SubscribeAll(ctx context.Context) error {
	if err := s.Projects.Subscribe(ctx); err != nil {
		return err
	}
	if err := s.Clients.Subscribe(ctx); err != nil {
		return err
	}
	return s.Expenses.Subscribe(ctx)
}

// UnsubscribeAll stops every live change feed.
func (s *Syncer) UnsubscribeAll() {
	s.Projects.Unsubscribe()
	s.Clients.Unsubscribe()
	s.Expenses.Unsubscribe()
}

// Restore upserts every record of a backup through the normal write
// path, so remote store and snapshot end up consistent with the restored
// state. Records that fail to enqueue are skipped; the count of applied
// records is returned.
func (s *Syncer) Restore(ctx context.Context, projects []project.Project, clients []client.Client, expenses []expense.Expense) int {
	restored := 0
	for _, p := range projects {
		if err := s.Projects.Put(ctx, p); err != nil {
			s.logger.Warn("restore skipped project", "id", p.ID, "error", err)
			continue
		}
		restored++
	}
	for _, c := range clients {
		if err := s.Clients.Put(ctx, c); err != nil {
			s.logger.Warn("restore skipped client", "id", c.ID, "error", err)
			continue
		}
		restored++
	}
	for _, e := range expenses {
		if err := s.Expenses.Put(ctx, e); err != nil {
			s.logger.Warn("restore skipped expense", "id", e.ID, "error", err)
			continue
		}
		restored++
	}
	return restored
}

// Status returns the current connection/session snapshot.
func (s *Syncer) Status() Status {
	return s.tracker.Snapshot()
}

// Subscribe registers for events on topic; see Bus.Subscribe.
func (s *Syncer) Subscribe(topic string, buffer int) (<-chan Event, func()) {
	return s.bus.Subscribe(topic, buffer)
}

// Flush fires all pending debounced broadcasts immediately.
func (s *Syncer) Flush() {
	s.debounce.FlushAll()
}

// Close stops the feeds, drains the write queue and shuts down the
// event plumbing. The snapshot store and remote client are owned by the
// caller and are not closed here.
func (s *Syncer) Close() {
	s.UnsubscribeAll()
	s.queue.Close()
	s.debounce.Stop()
	s.bus.Close()
}
