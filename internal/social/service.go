package social

import (
	"context"
	"errors"

	"backend-stridelog/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// SendRequest creates (or re-issues) a pending friend request.
func (s *Service) SendRequest(ctx context.Context, fromID, toID string) (FriendRequest, error) {
	if fromID == toID {
		return FriendRequest{}, errors.New("cannot friend yourself")
	}

	req := FriendRequest{
		ID:         uuid.NewString(),
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     "pending",
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO friend_requests (id, from_user_id, to_user_id, status)
		VALUES ($1,$2,$3,'pending')
		ON CONFLICT (from_user_id, to_user_id) DO UPDATE SET status='pending'
		RETURNING created_at
	`, req.ID, req.FromUserID, req.ToUserID)
	if err := row.Scan(&req.CreatedAt); err != nil {
		return FriendRequest{}, err
	}
	return req, nil
}

// Accept marks the request accepted and records the friendship both ways.
// Only the addressee may accept.
func (s *Service) Accept(ctx context.Context, requestID, callerID string) error {
	var fromID, toID string
	row := s.db.QueryRow(ctx, `
		SELECT from_user_id, to_user_id FROM friend_requests
		WHERE id=$1 AND status='pending'
	`, requestID)
	if err := row.Scan(&fromID, &toID); err != nil {
		return err
	}
	if toID != callerID {
		return errors.New("request is not addressed to caller")
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE friend_requests SET status='accepted' WHERE id=$1
	`, requestID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO friendships (user_id, friend_id)
		VALUES ($1,$2), ($2,$1)
		ON CONFLICT DO NOTHING
	`, fromID, toID)
	return err
}

func (s *Service) Friends(ctx context.Context, userID string) ([]Friend, error) {
	rows, err := s.db.Query(ctx, `
		SELECT f.friend_id, COALESCE(u.username, ''), f.created_at
		FROM friendships f
		LEFT JOIN users u ON u.id = f.friend_id
		WHERE f.user_id=$1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []Friend
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.UserID, &f.Username, &f.Since); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, nil
}

// PendingRequests lists requests waiting on the user's answer.
func (s *Service) PendingRequests(ctx context.Context, userID string) ([]FriendRequest, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, from_user_id, to_user_id, status, created_at
		FROM friend_requests
		WHERE to_user_id=$1 AND status='pending'
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []FriendRequest
	for rows.Next() {
		var r FriendRequest
		if err := rows.Scan(&r.ID, &r.FromUserID, &r.ToUserID, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, nil
}
