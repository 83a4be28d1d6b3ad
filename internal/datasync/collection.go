package datasync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"botdesk/internal/remote"
	"botdesk/internal/snapshot"
)

// Entity is a record managed by a Collection.
type Entity interface {
	EntityID() string
}

// CollectionConfig wires one entity collection into the sync layer. Build
// constructs a record from a partial patch; Merge shallow-merges a patch
// over an existing record, refreshing its updated timestamp.
type CollectionConfig[T Entity, P any] struct {
	Name      string
	Freshness time.Duration
	Build     func(p P, id string, now time.Time) T
	Merge     func(existing T, p P, now time.Time) T
}

// Collection synchronizes one entity collection between the in-memory
// cache, the persisted snapshot and the remote store.
//
// Reads are cache-aside with a freshness window and never fail: callers
// always receive a slice, with remote errors demoted to connection-state
// changes. Writes are serialized through the shared queue, attempted
// remotely only when authenticated, and always applied locally. The
// cache is swapped by whole-slice replacement, so unqueued readers see a
// pre- or post-mutation snapshot, never a torn one.
type Collection[T Entity, P any] struct {
	name      string
	freshness time.Duration
	build     func(p P, id string, now time.Time) T
	merge     func(existing T, p P, now time.Time) T

	remote   remote.Store
	snap     *snapshot.Store
	tracker  *Tracker
	bus      *Bus
	queue    *Queue
	debounce *Debouncer
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	items     []T
	fetchedAt time.Time
	primed    bool

	subMu    sync.Mutex
	stopFeed func()
}

// Deps carries the shared plumbing every collection hangs off.
type Deps struct {
	Remote    remote.Store
	Snapshots *snapshot.Store
	Tracker   *Tracker
	Bus       *Bus
	Queue     *Queue
	Debounce  *Debouncer
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewCollection creates a collection engine.
func NewCollection[T Entity, P any](cfg CollectionConfig[T, P], deps Deps) *Collection[T, P] {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	freshness := cfg.Freshness
	if freshness <= 0 {
		freshness = 5 * time.Minute
	}
	return &Collection[T, P]{
		name:      cfg.Name,
		freshness: freshness,
		build:     cfg.Build,
		merge:     cfg.Merge,
		remote:    deps.Remote,
		snap:      deps.Snapshots,
		tracker:   deps.Tracker,
		bus:       deps.Bus,
		queue:     deps.Queue,
		debounce:  deps.Debounce,
		logger:    logger,
		now:       now,
	}
}

// Name returns the collection name, which is also its event topic.
func (c *Collection[T, P]) Name() string { return c.name }

// Load returns the collection. A fresh in-memory cache is returned
// without a remote call but still broadcast, so late subscribers catch
// up. Without an authenticated backend the best available data is
// served: memory, then the persisted snapshot, then an empty slice. Any
// remote failure is classified and swallowed; the collection's loaded
// flag is set on every path so the UI never hangs on a spinner.
func (c *Collection[T, P]) Load(ctx context.Context) []T {
	if items, ok := c.freshCache(); ok {
		loadsTotal.WithLabelValues(c.name, "cache").Inc()
		c.tracker.MarkLoaded(c.name)
		c.broadcast(items)
		return items
	}

	if !c.tracker.Authenticated() {
		return c.fallback(ctx)
	}

	docs, err := c.remote.FetchAll(ctx, c.name)
	if err != nil {
		c.remoteFailed("load", err)
		return c.fallback(ctx)
	}

	items := c.decode(docs)
	c.install(items)
	c.persist(ctx, items)
	loadsTotal.WithLabelValues(c.name, "remote").Inc()
	c.tracker.MarkLoaded(c.name)
	c.broadcast(items)
	return cloneSlice(items)
}

// Create builds a record from the patch, assigns it an identifier and
// timestamps, attempts the remote write when authenticated and applies
// it locally regardless. A remote failure surfaces only through the
// connection state, never through the returned error.
func (c *Collection[T, P]) Create(ctx context.Context, patch P) (T, error) {
	var created T
	err := c.queue.Do(ctx, func(ctx context.Context) error {
		now := c.now()
		rec := c.build(patch, NewID(now), now)

		synced := c.writeRemote(ctx, "create", rec)

		c.mu.Lock()
		items := append(cloneSlice(c.items), rec)
		c.items = items
		c.primed = true
		if synced {
			c.fetchedAt = c.now()
		}
		c.mu.Unlock()

		c.persist(ctx, items)
		c.broadcast(items)
		opsTotal.WithLabelValues(c.name, "create").Inc()
		created = rec
		return nil
	})
	return created, err
}

// Update shallow-merges the patch over the record with the given
// identifier and mirrors Create's remote-then-local sequencing.
func (c *Collection[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var updated T
	if id == "" {
		return updated, ErrMissingID
	}
	err := c.queue.Do(ctx, func(ctx context.Context) error {
		c.mu.RLock()
		items := cloneSlice(c.items)
		c.mu.RUnlock()

		idx := -1
		for i, item := range items {
			if item.EntityID() == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrNotFound
		}

		merged := c.merge(items[idx], patch, c.now())
		items[idx] = merged

		synced := c.writeRemote(ctx, "update", merged)

		c.mu.Lock()
		c.items = items
		c.primed = true
		if synced {
			c.fetchedAt = c.now()
		}
		c.mu.Unlock()

		c.persist(ctx, items)
		c.broadcast(items)
		opsTotal.WithLabelValues(c.name, "update").Inc()
		updated = merged
		return nil
	})
	return updated, err
}

// Put upserts a fully-formed record under its existing identifier,
// keeping the remote-then-local sequencing of the other writes. Backup
// restore uses it so restored records keep their original identifiers.
func (c *Collection[T, P]) Put(ctx context.Context, rec T) error {
	if rec.EntityID() == "" {
		return ErrMissingID
	}
	return c.queue.Do(ctx, func(ctx context.Context) error {
		synced := c.writeRemote(ctx, "put", rec)

		c.mu.Lock()
		items := cloneSlice(c.items)
		replaced := false
		for i, item := range items {
			if item.EntityID() == rec.EntityID() {
				items[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			items = append(items, rec)
		}
		c.items = items
		c.primed = true
		if synced {
			c.fetchedAt = c.now()
		}
		c.mu.Unlock()

		c.persist(ctx, items)
		c.broadcast(items)
		opsTotal.WithLabelValues(c.name, "put").Inc()
		return nil
	})
}

// Delete removes the record locally and remotely. Deleting an unknown
// identifier is idempotent success.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	return c.queue.Do(ctx, func(ctx context.Context) error {
		synced := false
		if c.tracker.Authenticated() {
			if err := c.remote.Delete(ctx, c.name, id); err != nil {
				c.remoteFailed("delete", err)
			} else {
				synced = true
			}
		}

		c.mu.Lock()
		items := make([]T, 0, len(c.items))
		for _, item := range c.items {
			if item.EntityID() != id {
				items = append(items, item)
			}
		}
		c.items = items
		c.primed = true
		if synced {
			c.fetchedAt = c.now()
		}
		c.mu.Unlock()

		c.persist(ctx, items)
		c.broadcast(items)
		opsTotal.WithLabelValues(c.name, "delete").Inc()
		return nil
	})
}

// Subscribe opens the live change feed for this collection, tearing down
// any prior feed first. Each feed batch replaces the whole cached
// collection, persists it and broadcasts (debounced). A feed error
// demotes the connection state and clears the handle.
func (c *Collection[T, P]) Subscribe(ctx context.Context) error {
	if !c.tracker.Authenticated() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()

	if c.stopFeed != nil {
		c.stopFeed()
		c.stopFeed = nil
	}

	stop, err := c.remote.Subscribe(ctx, c.name, func(docs []remote.Document, err error) {
		if err != nil {
			c.remoteFailed("subscribe", err)
			c.clearFeed()
			return
		}
		items := c.decode(docs)
		c.install(items)
		c.persist(context.Background(), items)
		c.tracker.MarkLoaded(c.name)
		c.broadcast(items)
	})
	if err != nil {
		c.remoteFailed("subscribe", err)
		return err
	}

	c.stopFeed = stop
	return nil
}

// Unsubscribe stops the live feed, if one is running.
func (c *Collection[T, P]) Unsubscribe() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if c.stopFeed != nil {
		c.stopFeed()
		c.stopFeed = nil
	}
}

func (c *Collection[T, P]) clearFeed() {
	c.subMu.Lock()
	c.stopFeed = nil
	c.subMu.Unlock()
}

func (c *Collection[T, P]) freshCache() ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.primed || c.now().Sub(c.fetchedAt) >= c.freshness {
		return nil, false
	}
	return cloneSlice(c.items), true
}

// fallback serves the best available data without the remote store:
// memory first, then the persisted snapshot, then an empty slice. The
// loaded flag is set in every case.
func (c *Collection[T, P]) fallback(ctx context.Context) []T {
	defer c.tracker.MarkLoaded(c.name)

	c.mu.RLock()
	if c.primed {
		items := cloneSlice(c.items)
		c.mu.RUnlock()
		loadsTotal.WithLabelValues(c.name, "memory").Inc()
		c.broadcast(items)
		return items
	}
	c.mu.RUnlock()

	if payload, _, err := c.snap.Load(ctx, c.name); err == nil {
		var items []T
		if err := json.Unmarshal(payload, &items); err == nil {
			// Install without a fetch time: the snapshot counts as primed
			// but stale, so the next authenticated load refetches.
			c.mu.Lock()
			c.items = cloneSlice(items)
			c.primed = true
			c.fetchedAt = time.Time{}
			c.mu.Unlock()

			loadsTotal.WithLabelValues(c.name, "snapshot").Inc()
			c.broadcast(items)
			return items
		}
		c.logger.Warn("discarding unreadable snapshot", "collection", c.name, "error", err)
	} else if !errors.Is(err, snapshot.ErrNotFound) {
		c.logger.Warn("snapshot load failed", "collection", c.name, "error", err)
	}

	empty := []T{}
	loadsTotal.WithLabelValues(c.name, "empty").Inc()
	c.broadcast(empty)
	return empty
}

func (c *Collection[T, P]) install(items []T) {
	c.mu.Lock()
	c.items = cloneSlice(items)
	c.fetchedAt = c.now()
	c.primed = true
	c.mu.Unlock()
}

// writeRemote attempts the remote write and reports whether cache and
// remote are now in sync. A synced write refreshes the freshness window;
// a failed or skipped one leaves the cache stale so the next
// authenticated load refetches.
func (c *Collection[T, P]) writeRemote(ctx context.Context, op string, rec T) bool {
	if !c.tracker.Authenticated() {
		return false
	}
	if err := c.remote.Set(ctx, c.name, rec.EntityID(), rec); err != nil {
		c.remoteFailed(op, err)
		return false
	}
	return true
}

func (c *Collection[T, P]) remoteFailed(op string, err error) {
	kind := remote.Classify(err)
	remoteErrors.WithLabelValues(string(kind)).Inc()
	c.tracker.RecordRemoteError(kind, err)
	c.logger.Warn("remote operation failed",
		"collection", c.name, "op", op, "kind", string(kind), "error", err)
}

func (c *Collection[T, P]) persist(ctx context.Context, items []T) {
	raw, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("snapshot encode failed", "collection", c.name, "error", err)
		return
	}
	if err := c.snap.Save(ctx, c.name, raw, c.now()); err != nil {
		c.logger.Warn("snapshot save failed", "collection", c.name, "error", err)
	}
}

func (c *Collection[T, P]) broadcast(items []T) {
	payload := cloneSlice(items)
	c.debounce.Trigger(c.name, func() {
		c.bus.Publish(c.name, payload)
	})
}

func (c *Collection[T, P]) decode(docs []remote.Document) []T {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := json.Unmarshal(doc.Data, &item); err != nil {
			c.logger.Warn("skipping undecodable document",
				"collection", c.name, "id", doc.ID, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

func cloneSlice[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
