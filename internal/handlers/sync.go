package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"

	"habitsync/internal/models"
	"habitsync/internal/services"
)

// SyncHandler reconciles a client's locally-cached mutations with server
// state. All mutations run in one transaction; afterwards the full server-side
// snapshot for the user is read back so the client can replace its cache.
type SyncHandler struct {
	db     *sqlx.DB
	encSvc *services.EncryptionService
}

func NewSyncHandler(db *sqlx.DB, encSvc *services.EncryptionService) *SyncHandler {
	return &SyncHandler{db: db, encSvc: encSvc}
}

// Sync items carry pointer fields: last-write-wins replaces the whole record,
// so an absent field is written as NULL rather than merged.
type syncTask struct {
	ID          int     `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

type syncHabit struct {
	ID          int             `json:"id"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Frequency   *string         `json:"frequency"`
	Completions map[string]bool `json:"completions"`
}

type syncLog struct {
	Date      *string `json:"date"`
	WakeTime  *string `json:"wake_time"`
	SleepTime *string `json:"sleep_time"`
	Mood      *string `json:"mood"`
	Notes     *string `json:"notes"`
}

type syncRequest struct {
	Tasks       []syncTask      `json:"tasks"`
	Habits      []syncHabit     `json:"habits"`
	Logs        []syncLog       `json:"logs"`
	UserProfile *profileRequest `json:"userProfile"`
}

type syncSnapshot struct {
	Tasks       []models.Task      `json:"tasks"`
	Habits      []models.Habit     `json:"habits"`
	Logs        []models.DailyLog  `json:"logs"`
	UserProfile models.UserProfile `json:"userProfile"`
}

func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := applyTasks(tx, userID, req.Tasks); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.applyHabits(tx, userID, req.Habits); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.applyLogs(tx, userID, req.Logs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if req.UserProfile != nil {
		if err := h.applyProfile(tx, userID, req.UserProfile); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	committed = true

	snapshot, err := h.readSnapshot(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": "sync successful",
		"data":    snapshot,
	})
}

// applyTasks updates owned tasks by id and inserts id-less ones. An item with
// a positive id that does not belong to the user is a deliberate no-op, never
// an insert; stale or forged ids are silently dropped.
func applyTasks(tx *sqlx.Tx, userID int, items []syncTask) error {
	for _, item := range items {
		if item.ID > 0 {
			var owned int
			err := tx.Get(&owned, `SELECT id FROM tasks WHERE id = ? AND user_id = ?`, item.ID, userID)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				return err
			}
			if _, err := tx.Exec(`UPDATE tasks SET title = ?, description = ?, due_date = ?, priority = ?, status = ? WHERE id = ? AND user_id = ?`,
				item.Title, item.Description, item.DueDate, item.Priority, item.Status, item.ID, userID); err != nil {
				return err
			}
			continue
		}

		status := "pending"
		if item.Status != nil {
			status = *item.Status
		}
		if _, err := tx.Exec(`INSERT INTO tasks (user_id, title, description, due_date, priority, status) VALUES (?, ?, ?, ?, ?, ?)`,
			userID, item.Title, item.Description, item.DueDate, item.Priority, status); err != nil {
			return err
		}
	}
	return nil
}

// applyHabits follows the same id branch as tasks. The item's completions map
// is authoritative for the dates it lists and is upserted against the owned
// or newly assigned habit id; a foreign id skips the completions map too.
func (h *SyncHandler) applyHabits(tx *sqlx.Tx, userID int, items []syncHabit) error {
	for _, item := range items {
		habitID := item.ID
		if item.ID > 0 {
			var owned int
			err := tx.Get(&owned, `SELECT id FROM habits WHERE id = ? AND user_id = ?`, item.ID, userID)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				return err
			}
			if _, err := tx.Exec(`UPDATE habits SET title = ?, description = ?, frequency = ? WHERE id = ? AND user_id = ?`,
				item.Title, item.Description, item.Frequency, item.ID, userID); err != nil {
				return err
			}
		} else {
			if err := tx.QueryRowx(`INSERT INTO habits (user_id, title, description, frequency) VALUES (?, ?, ?, ?) RETURNING id`,
				userID, item.Title, item.Description, item.Frequency).Scan(&habitID); err != nil {
				return err
			}
		}

		for date, completed := range item.Completions {
			if _, err := tx.Exec(`INSERT INTO habit_completions (habit_id, user_id, date, completed) VALUES (?, ?, ?, ?)
				ON CONFLICT (habit_id, date) DO UPDATE SET completed = excluded.completed`,
				habitID, userID, date, completed); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyLogs upserts every log item keyed by (user, date); logs have no
// update-vs-insert branch and any id field on the item is ignored.
func (h *SyncHandler) applyLogs(tx *sqlx.Tx, userID int, items []syncLog) error {
	for _, item := range items {
		log := models.DailyLog{Notes: item.Notes}
		if err := h.encSvc.EncryptLog(&log); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO daily_logs (user_id, date, wake_time, sleep_time, mood, notes) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, date) DO UPDATE SET wake_time = excluded.wake_time, sleep_time = excluded.sleep_time, mood = excluded.mood, notes = excluded.notes`,
			userID, item.Date, item.WakeTime, item.SleepTime, item.Mood, log.Notes); err != nil {
			return err
		}
	}
	return nil
}

func (h *SyncHandler) applyProfile(tx *sqlx.Tx, userID int, item *profileRequest) error {
	p := models.UserProfile{HealthGoals: item.HealthGoals}
	if err := h.encSvc.EncryptProfile(&p); err != nil {
		return err
	}
	_, err := tx.Exec(`UPDATE user_profiles SET name = ?, age = ?, gender = ?, height = ?, weight = ?, health_goals = ? WHERE user_id = ?`,
		item.Name, item.Age, item.Gender, item.Height, item.Weight, p.HealthGoals, userID)
	return err
}

// readSnapshot re-reads the complete server-side state for the user. It runs
// after commit on the same connection pool, so it can never observe state
// older than the just-committed batch.
func (h *SyncHandler) readSnapshot(userID int) (*syncSnapshot, error) {
	snapshot := &syncSnapshot{
		Tasks:  []models.Task{},
		Habits: []models.Habit{},
		Logs:   []models.DailyLog{},
	}

	if err := h.db.Select(&snapshot.Tasks, `SELECT id, user_id, title, description, due_date, priority, status FROM tasks WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}

	if err := h.db.Select(&snapshot.Habits, `SELECT id, user_id, title, description, frequency FROM habits WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	for i := range snapshot.Habits {
		completions, err := allCompletions(h.db, snapshot.Habits[i].ID)
		if err != nil {
			return nil, err
		}
		snapshot.Habits[i].Completions = completions
	}

	if err := h.db.Select(&snapshot.Logs, `SELECT id, user_id, date, wake_time, sleep_time, mood, notes FROM daily_logs WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	for i := range snapshot.Logs {
		if err := h.encSvc.DecryptLog(&snapshot.Logs[i]); err != nil {
			return nil, err
		}
	}

	if err := h.db.Get(&snapshot.UserProfile, `SELECT user_id, name, age, gender, height, weight, health_goals FROM user_profiles WHERE user_id = ?`, userID); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if err := h.encSvc.DecryptProfile(&snapshot.UserProfile); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// allCompletions returns the full completion history for one habit, unlike
// the habit list endpoint which caps at the 30 most recent.
func allCompletions(db *sqlx.DB, habitID int) (map[string]bool, error) {
	rows, err := db.Queryx(`SELECT date, completed FROM habit_completions WHERE habit_id = ?`, habitID)
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
