package profile

import (
	"context"
	"strconv"
	"strings"
	"time"

	"backend-stridelog/internal/db"
)

type Profile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	WeightKg    float64   `json:"weight_kg"`
	HeightCm    float64   `json:"height_cm"`
	BirthYear   int       `json:"birth_year"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SaveRequest takes numeric fields as strings, the way the app's form layer
// submits them. Unparsable values default to zero instead of rejecting the
// whole save.
type SaveRequest struct {
	DisplayName string `json:"display_name"`
	WeightKg    string `json:"weight_kg"`
	HeightCm    string `json:"height_cm"`
	BirthYear   string `json:"birth_year"`
}

func (r SaveRequest) toProfile(userID string) Profile {
	return Profile{
		UserID:      userID,
		DisplayName: r.DisplayName,
		WeightKg:    floatOrZero(r.WeightKg),
		HeightCm:    floatOrZero(r.HeightCm),
		BirthYear:   intOrZero(r.BirthYear),
	}
}

func floatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func intOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, display_name, weight_kg, height_cm, birth_year, updated_at
		FROM user_profiles WHERE user_id=$1
	`, userID)

	var p Profile
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.WeightKg, &p.HeightCm, &p.BirthYear, &p.UpdatedAt); err != nil {
		if db.IsNoRows(err) {
			return Profile{}, false, nil
		}
		return Profile{}, false, err
	}
	return p, true, nil
}

func (s *Service) Save(ctx context.Context, p Profile) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, display_name, weight_kg, height_cm, birth_year, updated_at)
		VALUES ($1,$2,$3,$4,$5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			display_name=EXCLUDED.display_name,
			weight_kg=EXCLUDED.weight_kg,
			height_cm=EXCLUDED.height_cm,
			birth_year=EXCLUDED.birth_year,
			updated_at=now()
		RETURNING updated_at
	`, p.UserID, p.DisplayName, p.WeightKg, p.HeightCm, p.BirthYear)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return p, nil
}
