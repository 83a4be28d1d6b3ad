// Package remote defines the contract against the remote document store.
// The dashboard only ever needs collection-level CRUD, a change feed and
// an anonymous session; everything vendor-specific stays behind Store.
package remote

import (
	"context"
	"encoding/json"
)

// Document is one remote record: its identifier and raw JSON payload.
type Document struct {
	ID   string
	Data json.RawMessage
}

// SnapshotFunc receives the full current state of a collection on every
// change-feed batch, or the feed error that terminated the subscription.
type SnapshotFunc func(docs []Document, err error)

// Store is a remote document store scoped to a fixed application
// namespace with one collection per entity type.
type Store interface {
	// Authenticate establishes an anonymous session. It must be called
	// before any other operation is attempted.
	Authenticate(ctx context.Context) error

	// FetchAll returns every document in the collection.
	FetchAll(ctx context.Context, collection string) ([]Document, error)

	// Set writes a full document under the given identifier, creating or
	// replacing it.
	Set(ctx context.Context, collection, id string, record any) error

	// Delete removes a document. Deleting a missing document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error

	// Subscribe opens a change feed on the collection. Each batch invokes
	// fn with the collection's full snapshot. The returned function stops
	// the feed.
	Subscribe(ctx context.Context, collection string, fn SnapshotFunc) (func(), error)

	// SetNetworkEnabled toggles remote traffic. While disabled every
	// operation fails with a network-unavailable error.
	SetNetworkEnabled(enabled bool)

	// Close releases the underlying client.
	Close() error
}
