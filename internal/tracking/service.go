package tracking

import (
	"context"
	"encoding/json"

	"backend-stridelog/internal/stream"
)

// CompleteFunc hands a stopped live session to the finalize-and-persist
// pipeline and returns the stored session's id. A returned error means the
// workout could not be written locally and must surface to the caller.
type CompleteFunc func(ctx context.Context, live LiveSession) (string, error)

type Service struct {
	manager  *Manager
	hub      *stream.Hub
	complete CompleteFunc
}

func NewService(manager *Manager, hub *stream.Hub, complete CompleteFunc) *Service {
	return &Service{manager: manager, hub: hub, complete: complete}
}

func (s *Service) Start(userID string) Snapshot {
	snap := s.manager.Tracker(userID).Start(userID)
	s.publishState(userID, snap)
	return snap
}

func (s *Service) Pause(userID string) Snapshot {
	snap := s.manager.Tracker(userID).Pause()
	s.publishState(userID, snap)
	return snap
}

func (s *Service) Resume(userID string) Snapshot {
	snap := s.manager.Tracker(userID).Resume()
	s.publishState(userID, snap)
	return snap
}

// Stop closes the live session and runs the completion pipeline. The state
// machine has already transitioned when the pipeline runs; a persistence
// error is returned so the caller can warn that the workout was lost.
func (s *Service) Stop(ctx context.Context, userID string) (string, Snapshot, error) {
	live, snap, ok := s.manager.Tracker(userID).Stop()
	s.publishState(userID, snap)
	if !ok {
		return "", snap, nil
	}

	sessionID, err := s.complete(ctx, live)
	if err != nil {
		return "", snap, err
	}
	s.publishCompleted(userID, sessionID)
	return sessionID, snap, nil
}

func (s *Service) AddFix(userID string, c Coordinate) Snapshot {
	snap := s.manager.Tracker(userID).AddFix(c)
	s.publishState(userID, snap)
	return snap
}

func (s *Service) State(userID string) Snapshot {
	return s.manager.Tracker(userID).Snapshot()
}

func (s *Service) publishState(userID string, snap Snapshot) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(struct {
		Event string `json:"event"`
		Snapshot
	}{Event: "state", Snapshot: snap})
	if err != nil {
		return
	}
	s.hub.Broadcast(userID, payload)
}

func (s *Service) publishCompleted(userID, sessionID string) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(struct {
		Event     string `json:"event"`
		SessionID string `json:"session_id"`
	}{Event: "session_completed", SessionID: sessionID})
	s.hub.Broadcast(userID, payload)
}
