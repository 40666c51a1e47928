package session

import (
	"context"
	"log"
	"time"

	"backend-stridelog/internal/stats"
	"backend-stridelog/internal/tracking"
)

// Service runs the write-local-first pipeline for completed workouts and
// the best-effort cloud resync sweep.
type Service struct {
	store  *Store
	remote *Remote
	stats  *stats.Service
}

func NewService(store *Store, remote *Remote, statsSvc *stats.Service) *Service {
	return &Service{store: store, remote: remote, stats: statsSvc}
}

// Complete finalizes a stopped live session, persists it locally, folds it
// into the user's statistics and mirrors it to the cloud. The local insert
// must succeed; the cloud save only logs on failure and leaves the row
// unsynced for the sweep.
func (s *Service) Complete(ctx context.Context, live tracking.LiveSession) (TrainingSession, stats.UserStatistics, error) {
	ts := Finalize(live, "")

	if err := s.store.Insert(ctx, ts); err != nil {
		return TrainingSession{}, stats.UserStatistics{}, err
	}

	summary := stats.SessionSummary{
		StartedAt:  ts.StartedAt,
		DurationMs: ts.DurationMs,
		DistanceM:  ts.DistanceM,
	}
	st, err := s.stats.ApplySession(ctx, ts.UserID, summary)
	if err != nil {
		return TrainingSession{}, stats.UserStatistics{}, err
	}

	if s.remote != nil {
		if err := s.remote.Save(ctx, ts); err != nil {
			log.Printf("cloud save for session %s failed, left unsynced: %v", ts.ID, err)
		} else if err := s.store.MarkSynced(ctx, ts.ID); err != nil {
			log.Printf("mark synced for session %s failed: %v", ts.ID, err)
		} else {
			ts.IsSynced = true
		}
	}
	return ts, st, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]TrainingSession, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string) (TrainingSession, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) Rename(ctx context.Context, id, title string) error {
	return s.store.UpdateTitle(ctx, id, title)
}

// Delete soft-deletes locally and lets the sweep carry the tombstone to the
// cloud mirror.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.SoftDelete(ctx, id)
}

// MigrateGuest moves a guest's sessions to the linked real account. Rows
// come back unsynced so the sweep re-uploads them under the new owner.
func (s *Service) MigrateGuest(ctx context.Context, guestID, realUserID string) error {
	return s.store.MigrateGuest(ctx, guestID, realUserID)
}

// Resync pushes every unsynced row to the cloud mirror. Failures are
// logged and the row stays unsynced; the return value counts successes.
func (s *Service) Resync(ctx context.Context) (int, error) {
	if s.remote == nil {
		return 0, nil
	}

	pending, err := s.store.Unsynced(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, ts := range pending {
		var pushErr error
		if ts.IsDeleted {
			pushErr = s.remote.SoftDelete(ctx, ts.UserID, ts.ID)
		} else {
			pushErr = s.remote.Save(ctx, ts)
		}
		if pushErr != nil {
			log.Printf("resync of session %s failed: %v", ts.ID, pushErr)
			continue
		}
		if err := s.store.MarkSynced(ctx, ts.ID); err != nil {
			log.Printf("mark synced for session %s failed: %v", ts.ID, err)
			continue
		}
		synced++
	}
	return synced, nil
}

// StartSweeper resyncs on the given interval until ctx is cancelled.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if s.remote == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Resync(ctx); err != nil {
					log.Printf("resync sweep error: %v", err)
				}
			}
		}
	}()
}
