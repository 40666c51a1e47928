package mission

import (
	"backend-stridelog/internal/stats"
)

type Type string

const (
	TypeCount    Type = "COUNT"
	TypeDistance Type = "DISTANCE"
	TypeDuration Type = "DURATION"
)

// Level is one rung of a mission; thresholds grow strictly within a
// definition.
type Level struct {
	Threshold float64 `json:"threshold"`
	Title     string  `json:"title"`
}

// Definition is a static mission. Definitions are never persisted; progress
// is derived from a statistics snapshot on every read.
type Definition struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Type   Type    `json:"type"`
	Levels []Level `json:"levels"`
}

// Progress is the ephemeral per-mission view for one user.
type Progress struct {
	MissionID         string  `json:"mission_id"`
	Title             string  `json:"title"`
	Type              Type    `json:"type"`
	CurrentValue      float64 `json:"current_value"`
	CurrentLevelIndex int     `json:"current_level_index"`
	ProgressFloat     float64 `json:"progress"`
	IsFullyCompleted  bool    `json:"is_fully_completed"`
}

// Evaluate maps a statistics snapshot onto every mission definition.
func Evaluate(defs []Definition, st stats.UserStatistics) []Progress {
	out := make([]Progress, 0, len(defs))
	for _, def := range defs {
		out = append(out, evaluate(def, st))
	}
	return out
}

func evaluate(def Definition, st stats.UserStatistics) Progress {
	value := currentValue(def.Type, st)

	p := Progress{
		MissionID:         def.ID,
		Title:             def.Title,
		Type:              def.Type,
		CurrentValue:      value,
		CurrentLevelIndex: -1,
	}
	if len(def.Levels) == 0 {
		return p
	}

	for i, lvl := range def.Levels {
		if value >= lvl.Threshold {
			p.CurrentLevelIndex = i
		}
	}

	last := def.Levels[len(def.Levels)-1]
	if value >= last.Threshold {
		p.IsFullyCompleted = true
		p.ProgressFloat = 1
		return p
	}

	next := def.Levels[p.CurrentLevelIndex+1].Threshold
	p.ProgressFloat = clamp(value/next, 0, 1)
	return p
}

func currentValue(t Type, st stats.UserStatistics) float64 {
	switch t {
	case TypeCount:
		return float64(st.TotalSessions)
	case TypeDistance:
		return st.TotalDistanceM
	case TypeDuration:
		return float64(st.TotalDurationMs)
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Catalog is the static mission set shipped with the app.
func Catalog() []Definition {
	return []Definition{
		{
			ID:    "sessions",
			Title: "Keep Showing Up",
			Type:  TypeCount,
			Levels: []Level{
				{Threshold: 10, Title: "Starter"},
				{Threshold: 30, Title: "Regular"},
				{Threshold: 100, Title: "Veteran"},
			},
		},
		{
			ID:    "distance",
			Title: "Cover Ground",
			Type:  TypeDistance,
			Levels: []Level{
				{Threshold: 50_000, Title: "50 km"},
				{Threshold: 250_000, Title: "250 km"},
				{Threshold: 1_000_000, Title: "1000 km"},
			},
		},
		{
			ID:    "duration",
			Title: "Put In The Hours",
			Type:  TypeDuration,
			Levels: []Level{
				{Threshold: 10 * 3_600_000, Title: "10 h"},
				{Threshold: 50 * 3_600_000, Title: "50 h"},
				{Threshold: 200 * 3_600_000, Title: "200 h"},
			},
		},
	}
}
