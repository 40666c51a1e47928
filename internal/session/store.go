package session

import (
	"context"
	"fmt"

	"backend-stridelog/internal/db"
)

// Store is the local, write-ahead copy of every training session. Rows are
// soft-deleted only, so the cloud mirror can reconcile later.
type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, ts TrainingSession) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO training_sessions
			(id, user_id, title, started_at, ended_at, duration_ms, distance_m, route_geometry, is_synced, is_deleted)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, ts.ID, ts.UserID, ts.Title, ts.StartedAt, ts.EndedAt, ts.DurationMs, ts.DistanceM, ts.RouteGeometry, ts.IsSynced, ts.IsDeleted)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

// GetByID resolves a single live session. Soft-deleted rows are invisible
// here, same as in ListByUser.
func (s *Store) GetByID(ctx context.Context, id string) (TrainingSession, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, title, started_at, ended_at, duration_ms, distance_m, route_geometry, is_synced, is_deleted
		FROM training_sessions WHERE id=$1 AND is_deleted=FALSE
	`, id)
	var ts TrainingSession
	if err := row.Scan(&ts.ID, &ts.UserID, &ts.Title, &ts.StartedAt, &ts.EndedAt, &ts.DurationMs,
		&ts.DistanceM, &ts.RouteGeometry, &ts.IsSynced, &ts.IsDeleted); err != nil {
		return TrainingSession{}, err
	}
	return ts, nil
}

// ListByUser returns the user's sessions newest first, soft-deleted rows
// excluded.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]TrainingSession, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, started_at, ended_at, duration_ms, distance_m, route_geometry, is_synced, is_deleted
		FROM training_sessions
		WHERE user_id=$1 AND is_deleted=FALSE
		ORDER BY started_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []TrainingSession
	for rows.Next() {
		var ts TrainingSession
		if err := rows.Scan(&ts.ID, &ts.UserID, &ts.Title, &ts.StartedAt, &ts.EndedAt, &ts.DurationMs,
			&ts.DistanceM, &ts.RouteGeometry, &ts.IsSynced, &ts.IsDeleted); err != nil {
			return nil, err
		}
		sessions = append(sessions, ts)
	}
	return sessions, nil
}

func (s *Store) MarkSynced(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `UPDATE training_sessions SET is_synced=TRUE WHERE id=$1`, id)
	return err
}

func (s *Store) UpdateTitle(ctx context.Context, id, title string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE training_sessions SET title=$2, is_synced=FALSE WHERE id=$1
	`, id, title)
	return err
}

// SoftDelete flags the row and resets is_synced so the sweep propagates the
// deletion to the cloud mirror.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE training_sessions SET is_deleted=TRUE, is_synced=FALSE WHERE id=$1
	`, id)
	return err
}

// Unsynced returns every row the cloud mirror has not confirmed yet,
// deleted ones included.
func (s *Store) Unsynced(ctx context.Context) ([]TrainingSession, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, started_at, ended_at, duration_ms, distance_m, route_geometry, is_synced, is_deleted
		FROM training_sessions
		WHERE is_synced=FALSE
		ORDER BY started_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []TrainingSession
	for rows.Next() {
		var ts TrainingSession
		if err := rows.Scan(&ts.ID, &ts.UserID, &ts.Title, &ts.StartedAt, &ts.EndedAt, &ts.DurationMs,
			&ts.DistanceM, &ts.RouteGeometry, &ts.IsSynced, &ts.IsDeleted); err != nil {
			return nil, err
		}
		sessions = append(sessions, ts)
	}
	return sessions, nil
}

// MigrateGuest reassigns a guest's sessions to the linked account and
// resets is_synced so they re-upload under the new owner.
func (s *Store) MigrateGuest(ctx context.Context, guestID, realUserID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE training_sessions SET user_id=$2, is_synced=FALSE WHERE user_id=$1
	`, guestID, realUserID)
	return err
}
