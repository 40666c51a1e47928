package stats

import (
	"math"
	"time"
)

// UserStatistics is the running aggregate for one user identity. Every
// counter except CurrentStreakDays is monotonic under Fold.
type UserStatistics struct {
	UserID            string    `json:"user_id"`
	TotalSessions     int       `json:"total_sessions"`
	TotalDurationMs   int64     `json:"total_duration_ms"`
	TotalDistanceM    float64   `json:"total_distance_m"`
	CurrentStreakDays int       `json:"current_streak_days"`
	LongestStreakDays int       `json:"longest_streak_days"`
	LastTrainingDate  time.Time `json:"last_training_date"`
	SessionsOver5Km   int       `json:"sessions_over_5km"`
	SessionsOver10Km  int       `json:"sessions_over_10km"`
	LastEdited        time.Time `json:"last_edited"`
}

// SessionSummary carries the baked-in aggregates of one finalized workout.
type SessionSummary struct {
	StartedAt  time.Time
	DurationMs int64
	DistanceM  float64
}

// Fold merges one finalized session into the running statistics. A
// zero-value current record behaves as "no prior history": the streak
// starts at 1.
func Fold(current UserStatistics, s SessionSummary, now time.Time) UserStatistics {
	out := current
	out.TotalSessions++
	out.TotalDurationMs += s.DurationMs
	out.TotalDistanceM += s.DistanceM
	if s.DistanceM >= 5000 {
		out.SessionsOver5Km++
	}
	if s.DistanceM >= 10000 {
		out.SessionsOver10Km++
	}

	switch {
	case current.LastTrainingDate.IsZero():
		out.CurrentStreakDays = 1
	default:
		switch dayDiff(current.LastTrainingDate, s.StartedAt) {
		case 0:
			// another session on the same calendar day
		case 1:
			out.CurrentStreakDays++
		default:
			out.CurrentStreakDays = 1
		}
	}
	if out.CurrentStreakDays > out.LongestStreakDays {
		out.LongestStreakDays = out.CurrentStreakDays
	}

	out.LastTrainingDate = s.StartedAt
	out.LastEdited = now
	return out
}

// Merge combines a guest record with a pre-existing account record when the
// identities are linked. Cumulative counters are summed regardless of
// argument order. The two streaks concatenate only when they are
// calendar-contiguous: the day gap between the older and newer last
// training dates must equal the newer record's own streak length. When both
// records last trained on the same calendar day the streaks overlap and the
// merged streak is the larger of the two.
func Merge(a, b UserStatistics, now time.Time) UserStatistics {
	old, latest := orderByLastTraining(a, b)

	out := UserStatistics{
		UserID:           latest.UserID,
		TotalSessions:    a.TotalSessions + b.TotalSessions,
		TotalDurationMs:  a.TotalDurationMs + b.TotalDurationMs,
		TotalDistanceM:   a.TotalDistanceM + b.TotalDistanceM,
		SessionsOver5Km:  a.SessionsOver5Km + b.SessionsOver5Km,
		SessionsOver10Km: a.SessionsOver10Km + b.SessionsOver10Km,
		LastTrainingDate: latest.LastTrainingDate,
		LastEdited:       now,
	}

	gap := 0
	if !old.LastTrainingDate.IsZero() && !latest.LastTrainingDate.IsZero() {
		gap = dayDiff(old.LastTrainingDate, latest.LastTrainingDate)
	}
	switch {
	case gap == 0:
		out.CurrentStreakDays = maxInt(old.CurrentStreakDays, latest.CurrentStreakDays)
	case gap == latest.CurrentStreakDays:
		out.CurrentStreakDays = old.CurrentStreakDays + latest.CurrentStreakDays
	default:
		out.CurrentStreakDays = latest.CurrentStreakDays
	}

	out.LongestStreakDays = maxInt(maxInt(a.LongestStreakDays, b.LongestStreakDays), out.CurrentStreakDays)
	return out
}

// orderByLastTraining picks old/new by last training date. On an exact tie
// the record with more sessions wins, then the lexicographically greater
// user id, so both argument orders select the same record.
func orderByLastTraining(a, b UserStatistics) (old, latest UserStatistics) {
	switch {
	case a.LastTrainingDate.Before(b.LastTrainingDate):
		return a, b
	case b.LastTrainingDate.Before(a.LastTrainingDate):
		return b, a
	case a.TotalSessions != b.TotalSessions:
		if a.TotalSessions > b.TotalSessions {
			return b, a
		}
		return a, b
	case a.UserID > b.UserID:
		return b, a
	default:
		return a, b
	}
}

// dayDiff counts midnight-to-midnight calendar days between two instants in
// local time. Rounded so DST transitions still count as one day.
func dayDiff(from, to time.Time) int {
	f := from.Local()
	t := to.Local()
	fd := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.Local)
	td := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	return int(math.Round(td.Sub(fd).Hours() / 24))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
