package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"habitsync/internal/models"
)

type HabitHandler struct {
	db *sqlx.DB
}

func NewHabitHandler(db *sqlx.DB) *HabitHandler { return &HabitHandler{db: db} }

type habitRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Frequency   string  `json:"frequency"`
}

// List returns the user's habits, each with its 30 most recent completions.
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	habits := []models.Habit{}
	if err := h.db.Select(&habits, `SELECT id, user_id, title, description, frequency FROM habits WHERE user_id = ?`, userID); err != nil {
		http.Error(w, "could not fetch habits", http.StatusInternalServerError)
		return
	}

	for i := range habits {
		completions, err := recentCompletions(h.db, habits[i].ID)
		if err != nil {
			http.Error(w, "could not fetch completions", http.StatusInternalServerError)
			return
		}
		habits[i].Completions = completions
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(habits)
}

func recentCompletions(db *sqlx.DB, habitID int) (map[string]bool, error) {
	rows, err := db.Queryx(`SELECT date, completed FROM habit_completions WHERE habit_id = ? ORDER BY date DESC LIMIT 30`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var date string
		var completed bool
		if err := rows.Scan(&date, &completed); err != nil {
			return nil, err
		}
		out[date] = completed
	}
	return out, rows.Err()
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var req habitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.Frequency == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	var id int
	err := h.db.QueryRowx(`INSERT INTO habits (user_id, title, description, frequency) VALUES (?, ?, ?, ?) RETURNING id`,
		userID, req.Title, req.Description, req.Frequency).Scan(&id)
	if err != nil {
		http.Error(w, "could not create habit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"id": id, "message": "habit created successfully"})
}

type completionRequest struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
}

// UpsertCompletion records completion state for one habit and date. At most
// one row exists per (habit_id, date); repeat posts overwrite the value.
func (h *HabitHandler) UpsertCompletion(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	habitID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid habit id", http.StatusBadRequest)
		return
	}

	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		http.Error(w, "invalid date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	// Ownership check first; a foreign habit is indistinguishable from a
	// missing one.
	var owned int
	err = h.db.Get(&owned, `SELECT id FROM habits WHERE id = ? AND user_id = ?`, habitID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "habit not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	_, err = h.db.Exec(`INSERT INTO habit_completions (habit_id, user_id, date, completed) VALUES (?, ?, ?, ?)
		ON CONFLICT (habit_id, date) DO UPDATE SET completed = excluded.completed`,
		habitID, userID, req.Date, req.Completed)
	if err != nil {
		http.Error(w, "could not save completion", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"message": "habit completion updated"})
}
