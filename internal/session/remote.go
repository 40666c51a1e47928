package session

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Remote mirrors finalized sessions into the cloud document store, one JSON
// document per session keyed under the owner's hash. Everything here is
// best-effort: callers treat an error as "still unsynced", never as fatal.
type Remote struct {
	client *redis.Client
}

func NewRemote(client *redis.Client) *Remote {
	if client == nil {
		return nil
	}
	return &Remote{client: client}
}

func cloudKey(userID string) string {
	return "cloud:sessions:" + userID
}

// Save upserts the session document.
func (r *Remote) Save(ctx context.Context, ts TrainingSession) error {
	payload, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, cloudKey(ts.UserID), ts.ID, payload).Err()
}

// Get fetches all of a user's documents. A malformed record is skipped with
// a log line; one bad document must not abort the batch.
func (r *Remote) Get(ctx context.Context, userID string) ([]TrainingSession, error) {
	raw, err := r.client.HGetAll(ctx, cloudKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var sessions []TrainingSession
	for id, doc := range raw {
		var ts TrainingSession
		if err := json.Unmarshal([]byte(doc), &ts); err != nil {
			log.Printf("skipping malformed cloud record %s: %v", id, err)
			continue
		}
		if ts.ID == "" {
			ts.ID = id
		}
		if ts.UserID == "" {
			ts.UserID = userID
		}
		sessions = append(sessions, ts)
	}
	return sessions, nil
}

// SoftDelete marks the mirrored document deleted rather than removing it,
// so other devices observe the tombstone.
func (r *Remote) SoftDelete(ctx context.Context, userID, sessionID string) error {
	doc, err := r.client.HGet(ctx, cloudKey(userID), sessionID).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	var ts TrainingSession
	if err == nil {
		if jsonErr := json.Unmarshal([]byte(doc), &ts); jsonErr != nil {
			ts = TrainingSession{}
		}
	}
	ts.ID = sessionID
	ts.UserID = userID
	ts.IsDeleted = true

	payload, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, cloudKey(userID), sessionID, payload).Err()
}
