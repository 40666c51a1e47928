package tracking

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Snapshot is the immutable view published to observers after every
// transition. Session is nil while idle.
type Snapshot struct {
	State          State        `json:"state"`
	Session        *LiveSession `json:"session,omitempty"`
	DistanceM      float64      `json:"distance_m"`
	ActiveMs       int64        `json:"active_ms"`
	InstantPaceMps float64      `json:"instant_pace_mps"`
}

// Tracker owns the live session of a single user. All transitions are
// serialized by a mutex: a fix and a pause can never interleave on the
// segment list. Fixes are assumed to arrive in non-decreasing capture
// order; the tracker does not re-sort.
type Tracker struct {
	mu    sync.Mutex
	state State
	live  LiveSession

	now   func() time.Time
	newID func() string
}

func NewTracker() *Tracker {
	return &Tracker{
		state: StateIdle,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Start opens a new live session with its first segment. A no-op when a
// session is already active.
func (t *Tracker) Start(userID string) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle {
		return t.snapshotLocked()
	}

	now := t.now()
	t.live = LiveSession{
		ID:        t.newID(),
		UserID:    userID,
		StartedAt: now,
	}
	t.live = t.live.withSegment(Segment{StartedAt: now})
	t.state = StateRunning
	return t.snapshotLocked()
}

// AddFix appends a coordinate to the open segment. Fixes received while
// paused or idle are dropped.
func (t *Tracker) AddFix(c Coordinate) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return t.snapshotLocked()
	}
	if c.CapturedAt.IsZero() {
		c.CapturedAt = t.now()
	}
	last, ok := t.live.lastSegment()
	if !ok {
		return t.snapshotLocked()
	}
	t.live = t.live.withLastSegment(last.withCoordinate(c))
	return t.snapshotLocked()
}

// Pause closes the open segment. Repeated pauses are no-ops.
func (t *Tracker) Pause() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return t.snapshotLocked()
	}
	last, _ := t.live.lastSegment()
	t.live = t.live.withLastSegment(last.closed(t.now()))
	t.state = StatePaused
	return t.snapshotLocked()
}

// Resume opens a fresh segment after a pause.
func (t *Tracker) Resume() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePaused {
		return t.snapshotLocked()
	}
	t.live = t.live.withSegment(Segment{StartedAt: t.now()})
	t.state = StateRunning
	return t.snapshotLocked()
}

// Stop closes the session and hands it out exactly once. The returned bool
// is false when there was nothing to stop.
func (t *Tracker) Stop() (LiveSession, Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateIdle {
		return LiveSession{}, t.snapshotLocked(), false
	}

	now := t.now()
	if t.state == StateRunning {
		last, _ := t.live.lastSegment()
		t.live = t.live.withLastSegment(last.closed(now))
	}
	t.live.EndedAt = now

	done := t.live
	t.live = LiveSession{}
	t.state = StateIdle
	return done, t.snapshotLocked(), true
}

// Snapshot returns the current published view without transitioning.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	snap := Snapshot{State: t.state}
	if t.state == StateIdle {
		return snap
	}
	live := t.live
	snap.Session = &live
	snap.DistanceM = live.DistanceM()
	snap.ActiveMs = live.ActiveDuration().Milliseconds()
	snap.InstantPaceMps = live.InstantPaceMps(t.now())
	return snap
}

// Manager hands out one tracker per user id. Trackers are created lazily
// and live for the life of the process; an idle tracker holds no session.
type Manager struct {
	mu       sync.Mutex
	trackers map[string]*Tracker
}

func NewManager() *Manager {
	return &Manager{trackers: map[string]*Tracker{}}
}

func (m *Manager) Tracker(userID string) *Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.trackers[userID]
	if !ok {
		t = NewTracker()
		m.trackers[userID] = t
	}
	return t
}
