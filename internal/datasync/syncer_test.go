package datasync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"botdesk/internal/domain/project"
	"botdesk/internal/remote"
	"botdesk/internal/remote/mocks"
	"botdesk/internal/snapshot"
)

func newTestSyncer(t *testing.T, store remote.Store) (*Syncer, *snapshot.Store) {
	t.Helper()
	snaps, err := snapshot.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { snaps.Close() })

	s := New(Config{
		Remote:    store,
		Snapshots: snaps,
		Freshness: time.Hour,
		Debounce:  time.Millisecond,
	})
	t.Cleanup(s.Close)
	return s, snaps
}

func strPtr(s string) *string { return &s }

func TestStartAuthenticates(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)

	s, _ := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))

	st := s.Status()
	assert.Equal(t, AuthAuthenticated, st.Auth)
	assert.True(t, st.Connected)
	store.AssertExpectations(t)
}

func TestStartFailureLeavesLocalOnlyMode(t *testing.T) {
	store := &mocks.Store{}
	authErr := status.Error(codes.Unauthenticated, "bad credentials")
	store.On("Authenticate", mock.Anything).Return(authErr)

	s, _ := newTestSyncer(t, store)
	require.Error(t, s.Start(context.Background()))

	st := s.Status()
	assert.Equal(t, AuthError, st.Auth)
	require.NotNil(t, st.LastError)
	assert.Equal(t, remote.KindUnauthenticated, st.LastError.Kind)

	// Loads still succeed with empty data and flip the loaded flag.
	items := s.Projects.Load(context.Background())
	assert.Empty(t, items)
	assert.True(t, s.Status().Loaded[TopicProjects])
	store.AssertNotCalled(t, "FetchAll", mock.Anything, mock.Anything)
}

func TestLoadFetchesOnceWithinFreshnessWindow(t *testing.T) {
	doc, _ := json.Marshal(project.Project{ID: "p1", Name: "Tacos Norte"})
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)
	store.On("FetchAll", mock.Anything, TopicProjects).
		Return([]remote.Document{{ID: "p1", Data: doc}}, nil).Once()

	s, _ := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))

	first := s.Projects.Load(context.Background())
	require.Len(t, first, 1)
	assert.Equal(t, "Tacos Norte", first[0].Name)

	second := s.Projects.Load(context.Background())
	assert.Equal(t, first, second)
	store.AssertExpectations(t)
}

func TestLoadFallsBackToSnapshotOnRemoteError(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)
	store.On("FetchAll", mock.Anything, TopicProjects).
		Return(nil, status.Error(codes.Unavailable, "backend down"))

	s, snaps := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))

	seeded, _ := json.Marshal([]project.Project{{ID: "p1", Name: "Cached"}})
	require.NoError(t, snaps.Save(context.Background(), TopicProjects, seeded, time.Now()))

	items := s.Projects.Load(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "Cached", items[0].Name)

	st := s.Status()
	assert.False(t, st.Connected)
	require.NotNil(t, st.LastError)
	assert.Equal(t, remote.KindUnavailable, st.LastError.Kind)
}

func TestCreateUpdateLoadRoundTrip(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)
	store.On("FetchAll", mock.Anything, TopicProjects).Return([]remote.Document{}, nil).Once()
	store.On("Set", mock.Anything, TopicProjects, mock.Anything, mock.Anything).Return(nil)

	s, _ := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))

	s.Projects.Load(context.Background())

	created, err := s.Projects.Create(context.Background(), project.Patch{Name: strPtr("Nueva Tienda")})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, project.StatusDemo, created.Status)

	updated, err := s.Projects.Update(context.Background(), created.ID, project.Patch{Name: strPtr("Tienda Central")})
	require.NoError(t, err)
	assert.Equal(t, "Tienda Central", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	items := s.Projects.Load(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "Tienda Central", items[0].Name)
	store.AssertExpectations(t)
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)

	s, _ := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))

	_, err := s.Projects.Update(context.Background(), "missing", project.Patch{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Projects.Update(context.Background(), "", project.Patch{})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)
	store.On("Set", mock.Anything, TopicProjects, mock.Anything, mock.Anything).Return(nil)
	store.On("Delete", mock.Anything, TopicProjects, mock.Anything).Return(nil)

	s, _ := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))

	created, err := s.Projects.Create(context.Background(), project.Patch{Name: strPtr("Efímero")})
	require.NoError(t, err)

	require.NoError(t, s.Projects.Delete(context.Background(), created.ID))
	require.NoError(t, s.Projects.Delete(context.Background(), created.ID), "second delete succeeds")
	assert.ErrorIs(t, s.Projects.Delete(context.Background(), ""), ErrMissingID)
}

func TestCreateSucceedsLocallyWhenRemoteWriteFails(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)
	store.On("Set", mock.Anything, TopicProjects, mock.Anything, mock.Anything).
		Return(status.Error(codes.Unavailable, "write failed"))

	s, _ := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))

	created, err := s.Projects.Create(context.Background(), project.Patch{Name: strPtr("Sin Red")})
	require.NoError(t, err, "local apply must survive the remote failure")
	assert.NotEmpty(t, created.ID)

	st := s.Status()
	assert.False(t, st.Connected)
	require.NotNil(t, st.LastError)
	assert.Equal(t, remote.KindUnavailable, st.LastError.Kind)
}

func TestSetOnlineTogglesRemoteAttempts(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)
	store.On("SetNetworkEnabled", false).Return()
	store.On("SetNetworkEnabled", true).Return()

	s, _ := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))

	s.SetOnline(false)
	_, err := s.Projects.Create(context.Background(), project.Patch{Name: strPtr("Offline")})
	require.NoError(t, err)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	s.SetOnline(true)
	assert.True(t, s.Status().Online)
	assert.True(t, s.Status().Connected)
}

func TestSubscribeRequiresAuthentication(t *testing.T) {
	store := &mocks.Store{}
	s, _ := newTestSyncer(t, store)

	err := s.Projects.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSubscriptionFeedReplacesCache(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)

	var feed remote.SnapshotFunc
	stopped := false
	store.On("Subscribe", mock.Anything, TopicProjects, mock.Anything).
		Run(func(args mock.Arguments) {
			feed = args.Get(2).(remote.SnapshotFunc)
		}).
		Return(func() { stopped = true }, nil)

	s, _ := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Projects.Subscribe(context.Background()))
	require.NotNil(t, feed)

	events, cancel := s.Subscribe(TopicProjects, 4)
	defer cancel()

	doc, _ := json.Marshal(project.Project{ID: "p9", Name: "Desde el feed"})
	feed([]remote.Document{{ID: "p9", Data: doc}}, nil)
	s.Flush()

	select {
	case ev := <-events:
		items, ok := ev.Payload.([]project.Project)
		require.True(t, ok)
		require.Len(t, items, 1)
		assert.Equal(t, "Desde el feed", items[0].Name)
	case <-time.After(time.Second):
		t.Fatal("no broadcast after feed batch")
	}

	items := s.Projects.Load(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "p9", items[0].ID)

	s.Projects.Unsubscribe()
	assert.True(t, stopped)
}

func TestSubscriptionFeedErrorDemotesConnection(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)

	var feed remote.SnapshotFunc
	store.On("Subscribe", mock.Anything, TopicProjects, mock.Anything).
		Run(func(args mock.Arguments) {
			feed = args.Get(2).(remote.SnapshotFunc)
		}).
		Return(func() {}, nil)

	s, _ := newTestSyncer(t, store)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Projects.Subscribe(context.Background()))

	feed(nil, status.Error(codes.Unavailable, "stream broken"))

	st := s.Status()
	assert.False(t, st.Connected)
	require.NotNil(t, st.LastError)
	assert.Equal(t, remote.KindUnavailable, st.LastError.Kind)
}

func TestStatusBroadcastsOnTransitions(t *testing.T) {
	store := &mocks.Store{}
	store.On("Authenticate", mock.Anything).Return(nil)

	s, _ := newTestSyncer(t, store)
	events, cancel := s.Subscribe(TopicStatus, 8)
	defer cancel()

	require.NoError(t, s.Start(context.Background()))

	var states []AuthState
	deadline := time.After(time.Second)
	for len(states) < 2 {
		select {
		case ev := <-events:
			st, ok := ev.Payload.(Status)
			require.True(t, ok)
			states = append(states, st.Auth)
		case <-deadline:
			t.Fatalf("only saw states %v", states)
		}
	}
	assert.Equal(t, []AuthState{AuthAuthenticating, AuthAuthenticated}, states)
}

func TestNewIDIsUniqueAndSortable(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID(now)
		require.False(t, seen[id], "identifier collision")
		seen[id] = true
	}

	earlier := NewID(now.Add(-time.Hour))
	later := NewID(now)
	assert.Less(t, earlier[:strIndex(earlier)], later[:strIndex(later)])
}

func strIndex(id string) int {
	for i, r := range id {
		if r == '-' {
			return i
		}
	}
	return len(id)
}

func TestClassifyMapsGRPCCodes(t *testing.T) {
	cases := map[error]remote.ErrorKind{
		status.Error(codes.PermissionDenied, "x"):  remote.KindPermissionDenied,
		status.Error(codes.Unavailable, "x"):       remote.KindUnavailable,
		status.Error(codes.DeadlineExceeded, "x"):  remote.KindUnavailable,
		status.Error(codes.Unauthenticated, "x"):   remote.KindUnauthenticated,
		errors.New("plain"):                        remote.KindUnknown,
		remote.ErrNetworkDisabled:                  remote.KindUnavailable,
	}
	for err, want := range cases {
		assert.Equal(t, want, remote.Classify(err), "error %v", err)
	}
}
