package store

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/models"
	"github.com/fitvault/fitvault/internal/persistence"
)

const macroBlobName = "macros"

type macroState struct {
	Logs    []models.MacroLog  `json:"logs"`
	Goals   models.MacroGoals  `json:"goals"`
	Profile models.UserProfile `json:"profile"`
}

// DailyProgress reports consumption against the daily goals as whole
// percentages, rounded half-up.
type DailyProgress struct {
	Calories    int     `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	CaloriesPct int     `json:"calories_pct"`
	ProteinPct  int     `json:"protein_pct"`
	CarbsPct    int     `json:"carbs_pct"`
	FatPct      int     `json:"fat_pct"`
}

// MacroStore owns macro logs and daily goals. Logs are append/delete only:
// historical entries are never recomputed beyond summation.
type MacroStore struct {
	mu    sync.Mutex
	state macroState

	blob  *persistence.Blob
	saver *saver
	log   *zap.Logger
}

// NewMacroStore hydrates the store from persistence.
func NewMacroStore(blob *persistence.Blob, log *zap.Logger) *MacroStore {
	s := &MacroStore{blob: blob, log: log, saver: newSaver(macroBlobName, log)}
	_ = blob.Load(macroBlobName, &s.state)
	return s
}

// AddLog appends a meal entry and returns it with generated fields filled.
func (s *MacroStore) AddLog(l models.MacroLog) (models.MacroLog, error) {
	if l.Calories < 0 || l.ProteinG < 0 || l.CarbsG < 0 || l.FatG < 0 {
		return models.MacroLog{}, validationErr("macro values must be non-negative")
	}
	if !l.MealType.Valid() {
		return models.MacroLog{}, validationErr("unknown meal type %q", l.MealType)
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Date.IsZero() {
		l.Date = time.Now()
	}

	s.mu.Lock()
	s.state.Logs = append(s.state.Logs, l)
	s.persistLocked()
	s.mu.Unlock()
	return l, nil
}

// LogFromPhoto appends a meal entry citing the photo's nutrition values.
// The copy is point-in-time: later photo edits never change the log.
func (s *MacroStore) LogFromPhoto(photo models.FoodPhoto, meal models.MealType) (models.MacroLog, error) {
	return s.AddLog(models.MacroLog{
		Date:     photo.Date,
		Calories: photo.Calories,
		ProteinG: photo.ProteinG,
		CarbsG:   photo.CarbsG,
		FatG:     photo.FatG,
		MealType: meal,
		FoodName: photo.FoodName,
		PhotoID:  photo.ID,
	})
}

// DeleteLog removes one entry by ID.
func (s *MacroStore) DeleteLog(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Logs {
		if s.state.Logs[i].ID == id {
			s.state.Logs = append(s.state.Logs[:i], s.state.Logs[i+1:]...)
			s.persistLocked()
			return nil
		}
	}
	return ErrNotFound
}

// LogsByDate returns entries for the given calendar day.
func (s *MacroStore) LogsByDate(day time.Time) []models.MacroLog {
	want := day.Format(models.DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.MacroLog
	for _, l := range s.state.Logs {
		if l.Date.Format(models.DateLayout) == want {
			out = append(out, l)
		}
	}
	return out
}

// SetGoals stores explicit daily targets.
func (s *MacroStore) SetGoals(g models.MacroGoals) error {
	if g.Calories < 0 || g.ProteinG < 0 || g.CarbsG < 0 || g.FatG < 0 {
		return validationErr("goal values must be non-negative")
	}

	s.mu.Lock()
	s.state.Goals = g
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// Goals returns the current daily targets.
func (s *MacroStore) Goals() models.MacroGoals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Goals
}

// SetProfile stores the user profile used for goal derivation.
func (s *MacroStore) SetProfile(p models.UserProfile) error {
	if p.HeightCm <= 0 || p.WeightKg <= 0 || p.Age <= 0 {
		return validationErr("profile needs positive height, weight, and age")
	}

	s.mu.Lock()
	s.state.Profile = p
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// Profile returns the stored user profile.
func (s *MacroStore) Profile() models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Profile
}

// CalculateIdealMacros derives daily targets from a profile with the
// Mifflin-St Jeor equation, an activity multiplier, and a goal adjustment.
// Deterministic: the same profile always yields the same goals.
func CalculateIdealMacros(p models.UserProfile) (models.MacroGoals, error) {
	if p.HeightCm <= 0 || p.WeightKg <= 0 || p.Age <= 0 {
		return models.MacroGoals{}, validationErr("profile needs positive height, weight, and age")
	}

	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Sex == "female" {
		bmr -= 161
	} else {
		bmr += 5
	}

	factor := 1.2
	switch p.ActivityLevel {
	case "light":
		factor = 1.375
	case "moderate":
		factor = 1.55
	case "active":
		factor = 1.725
	case "very_active":
		factor = 1.9
	}

	calories := bmr * factor
	switch p.Goal {
	case "lose":
		calories -= 500
	case "gain":
		calories += 500
	}
	if calories < 1200 {
		calories = 1200
	}

	// 30/40/30 split: protein and carbs at 4 kcal/g, fat at 9 kcal/g.
	return models.MacroGoals{
		Calories: int(math.Round(calories)),
		ProteinG: math.Round(calories * 0.30 / 4),
		CarbsG:   math.Round(calories * 0.40 / 4),
		FatG:     math.Round(calories * 0.30 / 9),
	}, nil
}

// DailyProgress sums the day's logs and reports percentages against the
// goals. A zero goal reports 0% for that macro.
func (s *MacroStore) DailyProgress(day time.Time) DailyProgress {
	logs := s.LogsByDate(day)
	goals := s.Goals()

	var p DailyProgress
	for _, l := range logs {
		p.Calories += l.Calories
		p.ProteinG += l.ProteinG
		p.CarbsG += l.CarbsG
		p.FatG += l.FatG
	}
	p.CaloriesPct = pct(float64(p.Calories), float64(goals.Calories))
	p.ProteinPct = pct(p.ProteinG, goals.ProteinG)
	p.CarbsPct = pct(p.CarbsG, goals.CarbsG)
	p.FatPct = pct(p.FatG, goals.FatG)
	return p
}

// GoalProgressMessage renders a short human-readable summary for the day.
func (s *MacroStore) GoalProgressMessage(day time.Time) string {
	goals := s.Goals()
	if goals.Calories == 0 {
		return "No daily goals set yet."
	}
	p := s.DailyProgress(day)
	remaining := goals.Calories - p.Calories
	if remaining <= 0 {
		return fmt.Sprintf("Daily calorie goal reached (%d%% of %d kcal).", p.CaloriesPct, goals.Calories)
	}
	return fmt.Sprintf("%d kcal to go (%d%% of %d), protein %d%%.",
		remaining, p.CaloriesPct, goals.Calories, p.ProteinPct)
}

// Errs exposes asynchronous persistence failures.
func (s *MacroStore) Errs() <-chan error {
	return s.saver.errors()
}

// Close drains pending persistence writes.
func (s *MacroStore) Close() {
	s.saver.close()
}

func (s *MacroStore) persistLocked() {
	snapshot := macroState{
		Logs:    append([]models.MacroLog(nil), s.state.Logs...),
		Goals:   s.state.Goals,
		Profile: s.state.Profile,
	}
	s.saver.enqueue(func() error {
		return s.blob.Save(macroBlobName, snapshot)
	})
}

// pct rounds half-up to a whole percentage.
func pct(actual, target float64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(actual / target * 100))
}
