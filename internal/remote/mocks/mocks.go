// Package mocks provides a testify mock of the remote store contract.
package mocks

import (
	"context"

	"botdesk/internal/remote"

	"github.com/stretchr/testify/mock"
)

// Store is a mock for remote.Store.
type Store struct {
	mock.Mock
}

func (m *Store) Authenticate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Store) FetchAll(ctx context.Context, collection string) ([]remote.Document, error) {
	args := m.Called(ctx, collection)
	if docs, ok := args.Get(0).([]remote.Document); ok {
		return docs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Set(ctx context.Context, collection, id string, record any) error {
	args := m.Called(ctx, collection, id, record)
	return args.Error(0)
}

func (m *Store) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

func (m *Store) Subscribe(ctx context.Context, collection string, fn remote.SnapshotFunc) (func(), error) {
	args := m.Called(ctx, collection, fn)
	if stop, ok := args.Get(0).(func()); ok {
		return stop, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) SetNetworkEnabled(enabled bool) {
	m.Called(enabled)
}

func (m *Store) Close() error {
	args := m.Called()
	return args.Error(0)
}
