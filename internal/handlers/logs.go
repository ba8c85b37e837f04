package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"habitsync/internal/models"
	"habitsync/internal/services"
)

type LogHandler struct {
	db     *sqlx.DB
	encSvc *services.EncryptionService
}

func NewLogHandler(db *sqlx.DB, encSvc *services.EncryptionService) *LogHandler {
	return &LogHandler{db: db, encSvc: encSvc}
}

// List returns all daily logs, or a single log when ?date= is given. A date
// with no log yields an empty object, not a 404.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	w.Header().Set("Content-Type", "application/json")

	if date := r.URL.Query().Get("date"); date != "" {
		var log models.DailyLog
		err := h.db.Get(&log, `SELECT id, user_id, date, wake_time, sleep_time, mood, notes FROM daily_logs WHERE user_id = ? AND date = ?`, userID, date)
		if err != nil {
			if err == sql.ErrNoRows {
				json.NewEncoder(w).Encode(map[string]any{})
				return
			}
			http.Error(w, "could not fetch log", http.StatusInternalServerError)
			return
		}
		if err := h.encSvc.DecryptLog(&log); err != nil {
			http.Error(w, "could not decrypt log", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(log)
		return
	}

	logs := []models.DailyLog{}
	if err := h.db.Select(&logs, `SELECT id, user_id, date, wake_time, sleep_time, mood, notes FROM daily_logs WHERE user_id = ? ORDER BY date DESC`, userID); err != nil {
		http.Error(w, "could not fetch logs", http.StatusInternalServerError)
		return
	}
	for i := range logs {
		if err := h.encSvc.DecryptLog(&logs[i]); err != nil {
			http.Error(w, "could not decrypt log", http.StatusInternalServerError)
			return
		}
	}
	json.NewEncoder(w).Encode(logs)
}

type logRequest struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	WakeTime  *string `json:"wake_time"`
	SleepTime *string `json:"sleep_time"`
	Mood      *string `json:"mood"`
	Notes     *string `json:"notes"`
}

// Upsert saves the single log row for (user, date), overwriting prior values.
func (h *LogHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		http.Error(w, "invalid date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	log := models.DailyLog{Notes: req.Notes}
	if err := h.encSvc.EncryptLog(&log); err != nil {
		http.Error(w, "could not encrypt log", http.StatusInternalServerError)
		return
	}

	_, err := h.db.Exec(`INSERT INTO daily_logs (user_id, date, wake_time, sleep_time, mood, notes) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET wake_time = excluded.wake_time, sleep_time = excluded.sleep_time, mood = excluded.mood, notes = excluded.notes`,
		userID, req.Date, req.WakeTime, req.SleepTime, req.Mood, log.Notes)
	if err != nil {
		http.Error(w, "could not save log", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"message": "log saved successfully"})
}
