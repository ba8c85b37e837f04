package handlers

import (
	"net/http"
	"testing"

	"habitsync/internal/models"
)

func TestLogUpsertIdempotent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	resp := alice.do(http.MethodPost, "/api/logs", map[string]any{
		"date": "2024-01-01",
		"mood": "tired",
	})
	wantStatus(t, resp, http.StatusOK)

	resp = alice.do(http.MethodPost, "/api/logs", map[string]any{
		"date":  "2024-01-01",
		"mood":  "rested",
		"notes": "slept early",
	})
	wantStatus(t, resp, http.StatusOK)

	var count int
	if err := env.db.Get(&count, `SELECT COUNT(*) FROM daily_logs WHERE date = '2024-01-01'`); err != nil {
		t.Fatalf("failed to count logs: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d log rows, want 1", count)
	}

	resp = alice.do(http.MethodGet, "/api/logs?date=2024-01-01", nil)
	wantStatus(t, resp, http.StatusOK)
	var log models.DailyLog
	decodeJSON(t, resp, &log)
	if log.Mood == nil || *log.Mood != "rested" {
		t.Errorf("got mood %v, want latest value rested", log.Mood)
	}
	if log.Notes == nil || *log.Notes != "slept early" {
		t.Errorf("got notes %v, want decrypted plaintext", log.Notes)
	}
}

func TestLogMissingDateIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	resp := alice.do(http.MethodPost, "/api/logs", map[string]any{"mood": "fine"})
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestLogAbsentDateReturnsEmptyObject(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	resp := alice.do(http.MethodGet, "/api/logs?date=2024-01-01", nil)
	wantStatus(t, resp, http.StatusOK)
	var out map[string]any
	decodeJSON(t, resp, &out)
	if len(out) != 0 {
		t.Errorf("got %v, want empty object", out)
	}
}

func TestLogOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")

	resp := alice.do(http.MethodPost, "/api/logs", map[string]any{
		"date": "2024-01-01",
		"mood": "great",
	})
	wantStatus(t, resp, http.StatusOK)

	resp = bob.do(http.MethodGet, "/api/logs", nil)
	wantStatus(t, resp, http.StatusOK)
	var logs []models.DailyLog
	decodeJSON(t, resp, &logs)
	if len(logs) != 0 {
		t.Errorf("bob sees %d logs, want 0", len(logs))
	}
}

func TestLogNotesEncryptedAtRest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")

	resp := alice.do(http.MethodPost, "/api/logs", map[string]any{
		"date":  "2024-01-01",
		"notes": "rough day",
	})
	wantStatus(t, resp, http.StatusOK)

	var stored string
	if err := env.db.Get(&stored, `SELECT notes FROM daily_logs WHERE date = '2024-01-01'`); err != nil {
		t.Fatalf("failed to read stored log: %v", err)
	}
	if stored == "rough day" {
		t.Error("notes stored as plaintext")
	}
}
