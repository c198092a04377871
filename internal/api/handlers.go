package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fitvault/fitvault/internal/models"
	"github.com/fitvault/fitvault/internal/store"
)

// Handlers adapts the domain stores to HTTP.
type Handlers struct {
	Photos *store.PhotoStore
	Macros *store.MacroStore
	Health *store.HealthStore
	Game   *store.GamificationStore
	AI     *store.AIStore
}

func (h *Handlers) ListFoodPhotos(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("date") == "" {
		writeJSON(w, http.StatusOK, h.Photos.FoodPhotos())
		return
	}
	day, err := queryDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	photos := h.Photos.FoodPhotosByDate(day)
	if photos == nil {
		photos = []models.FoodPhoto{}
	}
	writeJSON(w, http.StatusOK, photos)
}

func (h *Handlers) AddFoodPhoto(w http.ResponseWriter, r *http.Request) {
	var p models.FoodPhoto
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	added, err := h.Photos.AddFoodPhoto(p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *Handlers) DeleteFoodPhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.Photos.DeleteFoodPhoto(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListProgressPhotos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Photos.ProgressPhotos())
}

func (h *Handlers) AddProgressPhoto(w http.ResponseWriter, r *http.Request) {
	var p models.ProgressPhoto
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	added, err := h.Photos.AddProgressPhoto(p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *Handlers) DeleteProgressPhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.Photos.DeleteProgressPhoto(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ListMacroLogs(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logs := h.Macros.LogsByDate(day)
	if logs == nil {
		logs = []models.MacroLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *Handlers) AddMacroLog(w http.ResponseWriter, r *http.Request) {
	var l models.MacroLog
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	added, err := h.Macros.AddLog(l)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *Handlers) DeleteMacroLog(w http.ResponseWriter, r *http.Request) {
	if err := h.Macros.DeleteLog(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetMacroGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Macros.Goals())
}

func (h *Handlers) SetMacroGoals(w http.ResponseWriter, r *http.Request) {
	var g models.MacroGoals
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Macros.SetGoals(g); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handlers) GetDailyProgress(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.Macros.DailyProgress(day))
}

func (h *Handlers) ListMeasurements(w http.ResponseWriter, r *http.Request) {
	ms := h.Health.Measurements()
	if ms == nil {
		ms = []models.BodyMeasurement{}
	}
	writeJSON(w, http.StatusOK, ms)
}

func (h *Handlers) AddMeasurement(w http.ResponseWriter, r *http.Request) {
	var m models.BodyMeasurement
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	added, err := h.Health.AddMeasurement(m)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// statusResponse is the gamification summary for the home screen.
type statusResponse struct {
	Level         models.LevelThreshold `json:"level"`
	LevelProgress int                   `json:"level_progress"`
	Points        int                   `json:"points"`
	Streak        models.Streak         `json:"streak"`
	ActiveQuests  []models.DailyQuest   `json:"active_quests"`
}

func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	quests := h.Game.ActiveQuests(time.Now())
	if quests == nil {
		quests = []models.DailyQuest{}
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Level:         h.Game.CurrentLevel(),
		LevelProgress: h.Game.LevelProgress(),
		Points:        h.Game.Points(),
		Streak:        h.Game.StreakInfo(),
		ActiveQuests:  quests,
	})
}

func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	reply, err := h.AI.Send(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// queryDate parses the optional date query parameter, defaulting to today.
func queryDate(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now(), nil
	}
	day, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("invalid date, expected " + models.DateLayout)
	}
	return day, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
