package stats

import (
	"context"
	"time"

	"backend-stridelog/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Get returns the stored statistics for a user. The bool is false when the
// user has no record yet.
func (s *Service) Get(ctx context.Context, userID string) (UserStatistics, bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, total_sessions, total_duration_ms, total_distance_m,
		       current_streak_days, longest_streak_days, last_training_date,
		       sessions_over_5km, sessions_over_10km, last_edited
		FROM user_statistics WHERE user_id=$1
	`, userID)

	var st UserStatistics
	if err := row.Scan(&st.UserID, &st.TotalSessions, &st.TotalDurationMs, &st.TotalDistanceM,
		&st.CurrentStreakDays, &st.LongestStreakDays, &st.LastTrainingDate,
		&st.SessionsOver5Km, &st.SessionsOver10Km, &st.LastEdited); err != nil {
		if db.IsNoRows(err) {
			return UserStatistics{}, false, nil
		}
		return UserStatistics{}, false, err
	}
	return st, true, nil
}

func (s *Service) Save(ctx context.Context, st UserStatistics) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_statistics
			(user_id, total_sessions, total_duration_ms, total_distance_m,
			 current_streak_days, longest_streak_days, last_training_date,
			 sessions_over_5km, sessions_over_10km, last_edited)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (user_id) DO UPDATE SET
			total_sessions=EXCLUDED.total_sessions,
			total_duration_ms=EXCLUDED.total_duration_ms,
			total_distance_m=EXCLUDED.total_distance_m,
			current_streak_days=EXCLUDED.current_streak_days,
			longest_streak_days=EXCLUDED.longest_streak_days,
			last_training_date=EXCLUDED.last_training_date,
			sessions_over_5km=EXCLUDED.sessions_over_5km,
			sessions_over_10km=EXCLUDED.sessions_over_10km,
			last_edited=EXCLUDED.last_edited
	`, st.UserID, st.TotalSessions, st.TotalDurationMs, st.TotalDistanceM,
		st.CurrentStreakDays, st.LongestStreakDays, st.LastTrainingDate,
		st.SessionsOver5Km, st.SessionsOver10Km, st.LastEdited)
	return err
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM user_statistics WHERE user_id=$1`, userID)
	return err
}

// ApplySession folds one finalized session into the stored record.
func (s *Service) ApplySession(ctx context.Context, userID string, summary SessionSummary) (UserStatistics, error) {
	current, _, err := s.Get(ctx, userID)
	if err != nil {
		return UserStatistics{}, err
	}
	current.UserID = userID
	updated := Fold(current, summary, time.Now())
	if err := s.Save(ctx, updated); err != nil {
		return UserStatistics{}, err
	}
	return updated, nil
}

// MergeInto combines the guest record into the target user's record and
// removes the guest row. Missing records on either side degrade to a plain
// copy of the other.
func (s *Service) MergeInto(ctx context.Context, guestID, targetID string) error {
	guest, hasGuest, err := s.Get(ctx, guestID)
	if err != nil {
		return err
	}
	if !hasGuest {
		return nil
	}
	target, hasTarget, err := s.Get(ctx, targetID)
	if err != nil {
		return err
	}

	merged := guest
	if hasTarget {
		merged = Merge(guest, target, time.Now())
	}
	merged.UserID = targetID
	merged.LastEdited = time.Now()

	if err := s.Save(ctx, merged); err != nil {
		return err
	}
	return s.Delete(ctx, guestID)
}
