// Package models defines the core data structures for photos, nutrition,
// health metrics, gamification, and the AI assistant.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for streaks, quests, and
// daily aggregates.
const DateLayout = "2006-01-02"

// MealType identifies which meal a macro log belongs to.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Valid reports whether m is one of the known meal types.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// Category is the closed set of activity categories for achievements,
// quests, and challenges.
type Category int

const (
	CategoryWorkout Category = iota
	CategoryNutrition
	CategorySteps
)

func (c Category) String() string {
	switch c {
	case CategoryWorkout:
		return "workout"
	case CategoryNutrition:
		return "nutrition"
	case CategorySteps:
		return "steps"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ParseCategory maps a wire string onto a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "workout":
		return CategoryWorkout, nil
	case "nutrition":
		return CategoryNutrition, nil
	case "steps":
		return CategorySteps, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalJSON serializes the category as its stable string form.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses the stable string form.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Tier orders achievement ranks from bronze (lowest) to diamond.
type Tier int

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierPlatinum
	TierDiamond
)

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierPlatinum:
		return "platinum"
	case TierDiamond:
		return "diamond"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// FoodPhoto is a photo of a meal with the nutrition values estimated for it.
// The URI may point at an encrypted vault file or a plain asset.
type FoodPhoto struct {
	ID       string    `json:"id"`
	URI      string    `json:"uri"`
	Date     time.Time `json:"date"`
	FoodName string    `json:"food_name,omitempty"`
	Calories int       `json:"calories"`
	ProteinG float64   `json:"protein_g"`
	CarbsG   float64   `json:"carbs_g"`
	FatG     float64   `json:"fat_g"`
	Notes    string    `json:"notes,omitempty"`
}

// ProgressPhoto is a body progress photo with the metrics captured at the
// same time.
type ProgressPhoto struct {
	ID         string    `json:"id"`
	URI        string    `json:"uri"`
	Date       time.Time `json:"date"`
	WeightKg   float64   `json:"weight_kg,omitempty"`
	BodyFatPct *float64  `json:"body_fat_pct,omitempty"`
	Pose       string    `json:"pose,omitempty"` // front, side, back
	Notes      string    `json:"notes,omitempty"`
}

// MacroLog is one logged meal. Nutrition values copied from a photo are a
// point-in-time citation: editing the photo later never changes the log.
type MacroLog struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Calories int       `json:"calories"`
	ProteinG float64   `json:"protein_g"`
	CarbsG   float64   `json:"carbs_g"`
	FatG     float64   `json:"fat_g"`
	MealType MealType  `json:"meal_type"`
	FoodName string    `json:"food_name,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	PhotoID  string    `json:"photo_id,omitempty"`
}

// MacroGoals are the daily targets the user tracks against.
type MacroGoals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// UserProfile feeds the deterministic macro-goal derivation.
type UserProfile struct {
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	Age           int     `json:"age"`
	Sex           string  `json:"sex"`            // male, female
	ActivityLevel string  `json:"activity_level"` // sedentary, light, moderate, active, very_active
	Goal          string  `json:"goal"`           // lose, maintain, gain
}

// Achievement tracks long-running progress toward a reward. Completion is
// monotonic: once set it never reverts except by explicit reset.
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Tier        Tier       `json:"tier"`
	Category    Category   `json:"category"`
	Progress    int        `json:"progress"`
	Target      int        `json:"target"`
	Points      int        `json:"points"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Icon        string     `json:"icon,omitempty"`
}

// Streak counts consecutive qualifying days of activity.
type Streak struct {
	CurrentStreak    int    `json:"current_streak"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date,omitempty"` // DateLayout
}

// DailyQuest is a gamification goal scoped to one calendar day.
type DailyQuest struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"` // DateLayout
	Category  Category `json:"category"`
	Title     string   `json:"title"`
	Progress  int      `json:"progress"`
	Target    int      `json:"target"`
	Points    int      `json:"points"`
	Completed bool     `json:"completed"`
}

// TimedChallenge is a gamification goal scoped to a start/end window.
type TimedChallenge struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Category  Category  `json:"category"`
	Progress  int       `json:"progress"`
	Target    int       `json:"target"`
	Points    int       `json:"points"`
	Completed bool      `json:"completed"`
}

// LevelThreshold maps a level to the cumulative points that unlock it.
type LevelThreshold struct {
	Level     int    `json:"level"`
	MinPoints int    `json:"min_points"`
	Title     string `json:"title,omitempty"`
}

// BodyMeasurement is a point-in-time weight/body-fat reading.
type BodyMeasurement struct {
	ID         string    `json:"id"`
	MeasuredAt time.Time `json:"measured_at"`
	WeightKg   float64   `json:"weight_kg"`
	BodyFatPct *float64  `json:"body_fat_pct,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

// DailyCounters aggregates step and water intake per calendar day.
type DailyCounters struct {
	Date    string `json:"date"` // DateLayout
	Steps   int    `json:"steps"`
	WaterMl int    `json:"water_ml"`
}

// ChatMessage is one turn of the AI assistant conversation.
type ChatMessage struct {
	ID      string    `json:"id"`
	Role    string    `json:"role"` // user, assistant
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// FitnessGoal is a user-declared goal tracked by the AI assistant.
type FitnessGoal struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TargetDate string `json:"target_date,omitempty"` // DateLayout
	Achieved   bool   `json:"achieved"`
}
