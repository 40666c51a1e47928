package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-stridelog/internal/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func asUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func newSessionApp(mock pgxmock.PgxPoolIface, userID string) *fiber.App {
	app := fiber.New()
	svc := NewService(NewStore(mock), nil, stats.NewService(mock))
	RegisterRoutes(app.Group("/sessions"), svc, asUser(userID))
	return app
}

func TestSessionListRoute(t *testing.T) {
	mock := newMock(t)

	ts := storedFixture("session-1", "user-1", true, false)
	mock.ExpectQuery(`SELECT id, user_id, title, started_at, ended_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(sessionColumns).
			AddRow(ts.ID, ts.UserID, ts.Title, ts.StartedAt, ts.EndedAt, ts.DurationMs, ts.DistanceM, ts.RouteGeometry, ts.IsSynced, ts.IsDeleted))

	app := newSessionApp(mock, "user-1")
	req := httptest.NewRequest(http.MethodGet, "/sessions/", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}

	var sessions []TrainingSession
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil || len(sessions) != 1 {
		t.Fatalf("decode list: %v", err)
	}
}

func TestSessionListEmptyArray(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, user_id, title, started_at, ended_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(sessionColumns))

	app := newSessionApp(mock, "user-1")
	req := httptest.NewRequest(http.MethodGet, "/sessions/", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}

	var sessions []TrainingSession
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil || sessions == nil {
		t.Fatalf("expected empty array, got %v (%v)", sessions, err)
	}
}

func TestSessionGetRouteOwnership(t *testing.T) {
	mock := newMock(t)

	ts := storedFixture("session-1", "user-2", true, false)
	mock.ExpectQuery(`SELECT id, user_id, title, started_at, ended_at`).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows(sessionColumns).
			AddRow(ts.ID, ts.UserID, ts.Title, ts.StartedAt, ts.EndedAt, ts.DurationMs, ts.DistanceM, ts.RouteGeometry, ts.IsSynced, ts.IsDeleted))

	app := newSessionApp(mock, "user-1")
	req := httptest.NewRequest(http.MethodGet, "/sessions/session-1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %v", resp.StatusCode)
	}
}

func TestSessionGetRouteNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT id, user_id, title, started_at, ended_at`).
		WithArgs("session-x").
		WillReturnError(errSession)

	app := newSessionApp(mock, "user-1")
	req := httptest.NewRequest(http.MethodGet, "/sessions/session-x", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %v", resp.StatusCode)
	}
}

func TestSessionRenameRoute(t *testing.T) {
	mock := newMock(t)

	ts := storedFixture("session-1", "user-1", true, false)
	mock.ExpectQuery(`SELECT id, user_id, title, started_at, ended_at`).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows(sessionColumns).
			AddRow(ts.ID, ts.UserID, ts.Title, ts.StartedAt, ts.EndedAt, ts.DurationMs, ts.DistanceM, ts.RouteGeometry, ts.IsSynced, ts.IsDeleted))
	mock.ExpectExec(`UPDATE training_sessions SET title=\$2, is_synced=FALSE`).
		WithArgs("session-1", "Evening Run").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	app := newSessionApp(mock, "user-1")
	body, _ := json.Marshal(map[string]string{"title": "Evening Run"})
	req := httptest.NewRequest(http.MethodPatch, "/sessions/session-1/title", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("rename status: %v", err)
	}
}

func TestSessionRenameMissingTitle(t *testing.T) {
	app := newSessionApp(newMock(t), "user-1")
	req := httptest.NewRequest(http.MethodPatch, "/sessions/session-1/title", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestSessionRenameRouteNotOwner(t *testing.T) {
	mock := newMock(t)

	ts := storedFixture("session-1", "user-1", true, false)
	mock.ExpectQuery(`SELECT id, user_id, title, started_at, ended_at`).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows(sessionColumns).
			AddRow(ts.ID, ts.UserID, ts.Title, ts.StartedAt, ts.EndedAt, ts.DurationMs, ts.DistanceM, ts.RouteGeometry, ts.IsSynced, ts.IsDeleted))

	app := newSessionApp(mock, "user-2")
	body, _ := json.Marshal(map[string]string{"title": "Hijacked"})
	req := httptest.NewRequest(http.MethodPatch, "/sessions/session-1/title", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %v", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no update may run for a foreign session: %v", err)
	}
}

func TestSessionDeleteRouteNotOwner(t *testing.T) {
	mock := newMock(t)

	ts := storedFixture("session-1", "user-1", true, false)
	mock.ExpectQuery(`SELECT id, user_id, title, started_at, ended_at`).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows(sessionColumns).
			AddRow(ts.ID, ts.UserID, ts.Title, ts.StartedAt, ts.EndedAt, ts.DurationMs, ts.DistanceM, ts.RouteGeometry, ts.IsSynced, ts.IsDeleted))

	app := newSessionApp(mock, "user-2")
	req := httptest.NewRequest(http.MethodDelete, "/sessions/session-1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %v", resp.StatusCode)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no update may run for a foreign session: %v", err)
	}
}

func TestSessionDeleteRoute(t *testing.T) {
	mock := newMock(t)

	ts := storedFixture("session-1", "user-1", true, false)
	mock.ExpectQuery(`SELECT id, user_id, title, started_at, ended_at`).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows(sessionColumns).
			AddRow(ts.ID, ts.UserID, ts.Title, ts.StartedAt, ts.EndedAt, ts.DurationMs, ts.DistanceM, ts.RouteGeometry, ts.IsSynced, ts.IsDeleted))
	mock.ExpectExec(`UPDATE training_sessions SET is_deleted=TRUE, is_synced=FALSE`).
		WithArgs("session-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	app := newSessionApp(mock, "user-1")
	req := httptest.NewRequest(http.MethodDelete, "/sessions/session-1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status: %v", err)
	}
}

func TestSessionSyncRouteWithoutRemote(t *testing.T) {
	app := newSessionApp(newMock(t), "user-1")
	req := httptest.NewRequest(http.MethodPost, "/sessions/sync", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("sync status: %v", err)
	}

	var body map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["synced"] != 0 {
		t.Fatalf("expected zero synced, got %v", body)
	}
}
