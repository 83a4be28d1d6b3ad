package datasync

import (
	"sync"
	"time"

	"botdesk/internal/remote"
)

// AuthState is the backend session state.
type AuthState string

const (
	AuthInitializing   AuthState = "initializing"
	AuthAuthenticating AuthState = "authenticating"
	AuthAuthenticated  AuthState = "authenticated"
	AuthError          AuthState = "error"
)

// ErrorInfo describes the most recent remote failure.
type ErrorInfo struct {
	Kind    remote.ErrorKind `json:"kind"`
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
}

// Status is the full connection/session snapshot broadcast on every
// transition. Loaded records, per collection, whether an initial load
// has completed by any path; dependent UI keys its spinners off it so a
// dead backend never leaves an infinite loading state.
type Status struct {
	Auth      AuthState       `json:"auth"`
	Connected bool            `json:"connected"`
	Online    bool            `json:"online"`
	Loaded    map[string]bool `json:"loaded"`
	LastError *ErrorInfo      `json:"lastError,omitempty"`
}

// Tracker owns the connection state machine:
// initializing → authenticating → {authenticated | error}. The error
// state is terminal but usable; operations keep falling back to
// local-only behavior instead of retrying.
type Tracker struct {
	bus *Bus
	now func() time.Time

	mu        sync.Mutex
	auth      AuthState
	connected bool
	online    bool
	loaded    map[string]bool
	lastErr   *ErrorInfo
}

// NewTracker creates a tracker in the initializing state with a loaded
// flag per collection.
func NewTracker(bus *Bus, collections []string, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	loaded := make(map[string]bool, len(collections))
	for _, name := range collections {
		loaded[name] = false
	}
	return &Tracker{
		bus:    bus,
		now:    now,
		auth:   AuthInitializing,
		online: true,
		loaded: loaded,
	}
}

// BeginAuth moves to the authenticating state.
func (t *Tracker) BeginAuth() {
	t.mu.Lock()
	t.auth = AuthAuthenticating
	t.broadcastLocked()
	t.mu.Unlock()
}

// MarkAuthenticated moves to the authenticated state.
func (t *Tracker) MarkAuthenticated() {
	t.mu.Lock()
	t.auth = AuthAuthenticated
	t.connected = true
	t.lastErr = nil
	t.broadcastLocked()
	t.mu.Unlock()
}

// FailAuth moves to the terminal error state.
func (t *Tracker) FailAuth(err error) {
	t.mu.Lock()
	t.auth = AuthError
	t.connected = false
	t.lastErr = &ErrorInfo{Kind: remote.Classify(err), Message: err.Error(), At: t.now()}
	t.broadcastLocked()
	t.mu.Unlock()
}

// MarkLoaded flags a collection's initial load as complete.
func (t *Tracker) MarkLoaded(collection string) {
	t.mu.Lock()
	if !t.loaded[collection] {
		t.loaded[collection] = true
		t.broadcastLocked()
	}
	t.mu.Unlock()
}

// RecordRemoteError notes a classified remote failure and demotes the
// connection flags it invalidates.
func (t *Tracker) RecordRemoteError(kind remote.ErrorKind, err error) {
	t.mu.Lock()
	t.lastErr = &ErrorInfo{Kind: kind, Message: err.Error(), At: t.now()}
	switch kind {
	case remote.KindUnavailable:
		t.connected = false
	case remote.KindUnauthenticated:
		t.connected = false
		t.auth = AuthError
	}
	t.broadcastLocked()
	t.mu.Unlock()
}

// SetOnline toggles the online flag. Going offline also drops the
// connected flag; coming back online leaves reconnection to the next
// load.
func (t *Tracker) SetOnline(online bool) {
	t.mu.Lock()
	t.online = online
	if !online {
		t.connected = false
	} else if t.auth == AuthAuthenticated {
		t.connected = true
	}
	t.broadcastLocked()
	t.mu.Unlock()
}

// Authenticated reports whether remote operations should be attempted.
func (t *Tracker) Authenticated() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.auth == AuthAuthenticated && t.online
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Status {
	loaded := make(map[string]bool, len(t.loaded))
	for name, ok := range t.loaded {
		loaded[name] = ok
	}
	var lastErr *ErrorInfo
	if t.lastErr != nil {
		e := *t.lastErr
		lastErr = &e
	}
	return Status{
		Auth:      t.auth,
		Connected: t.connected,
		Online:    t.online,
		Loaded:    loaded,
		LastError: lastErr,
	}
}

func (t *Tracker) broadcastLocked() {
	if t.bus != nil {
		t.bus.Publish(TopicStatus, t.snapshotLocked())
	}
}
