package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"

	"habitsync/internal/models"
	"habitsync/internal/services"
)

type ProfileHandler struct {
	db     *sqlx.DB
	encSvc *services.EncryptionService
}

func NewProfileHandler(db *sqlx.DB, encSvc *services.EncryptionService) *ProfileHandler {
	return &ProfileHandler{db: db, encSvc: encSvc}
}

// Get returns the current user's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var p models.UserProfile
	if err := h.db.Get(&p, `SELECT user_id, name, age, gender, height, weight, health_goals FROM user_profiles WHERE user_id = ?`, userID); err != nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	if err := h.encSvc.DecryptProfile(&p); err != nil {
		http.Error(w, "could not decrypt profile", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

type profileRequest struct {
	Name        *string `json:"name"`
	Age         *int    `json:"age"`
	Gender      *string `json:"gender"`
	Height      *string `json:"height"`
	Weight      *string `json:"weight"`
	HealthGoals *string `json:"health_goals"`
}

// Update overwrites the whole profile row with the provided fields.
// Absent fields become NULL; the row always exists from registration.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	p := models.UserProfile{HealthGoals: req.HealthGoals}
	if err := h.encSvc.EncryptProfile(&p); err != nil {
		http.Error(w, "could not encrypt profile", http.StatusInternalServerError)
		return
	}

	if _, err := h.db.Exec(`UPDATE user_profiles SET name = ?, age = ?, gender = ?, height = ?, weight = ?, health_goals = ? WHERE user_id = ?`,
		req.Name, req.Age, req.Gender, req.Height, req.Weight, p.HealthGoals, userID); err != nil {
		http.Error(w, "could not update profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"message": "profile updated successfully"})
}
