package session

import (
	"errors"
	"time"

	"backend-stridelog/internal/tracking"

	"github.com/twpayne/go-polyline"
)

// ErrStorageWrite marks a failed local insert. Unlike remote sync failures
// it must reach the caller: swallowing it would silently lose the workout.
var ErrStorageWrite = errors.New("session storage write failed")

// TrainingSession is the persisted form of a completed workout. DurationMs
// and DistanceM are baked in at finalization and never recomputed.
type TrainingSession struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	DurationMs    int64     `json:"duration_ms"`
	DistanceM     float64   `json:"distance_m"`
	RouteGeometry string    `json:"route_geometry"`
	IsSynced      bool      `json:"is_synced"`
	IsDeleted     bool      `json:"is_deleted"`
}

// Finalize converts a stopped live session into its persistable record.
// DurationMs is active duration: paused gaps between segments do not count.
func Finalize(live tracking.LiveSession, title string) TrainingSession {
	if title == "" {
		title = "Workout " + live.StartedAt.Format("2006-01-02 15:04")
	}
	return TrainingSession{
		ID:            live.ID,
		UserID:        live.UserID,
		Title:         title,
		StartedAt:     live.StartedAt,
		EndedAt:       live.EndedAt,
		DurationMs:    live.ActiveDuration().Milliseconds(),
		DistanceM:     live.DistanceM(),
		RouteGeometry: encodeRoute(live.Coordinates()),
	}
}

func encodeRoute(coords []tracking.Coordinate) string {
	if len(coords) == 0 {
		return ""
	}
	pairs := make([][]float64, len(coords))
	for i, c := range coords {
		pairs[i] = []float64{c.Lat, c.Lng}
	}
	return string(polyline.EncodeCoords(pairs))
}
