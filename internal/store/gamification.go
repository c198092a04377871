package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/models"
	"github.com/fitvault/fitvault/internal/persistence"
)

const gamificationBlobName = "gamification"

// defaultLevels is the ordered level threshold table.
var defaultLevels = []models.LevelThreshold{
	{Level: 1, MinPoints: 0, Title: "Rookie"},
	{Level: 2, MinPoints: 100, Title: "Regular"},
	{Level: 3, MinPoints: 250, Title: "Committed"},
	{Level: 4, MinPoints: 500, Title: "Athlete"},
	{Level: 5, MinPoints: 1000, Title: "Competitor"},
	{Level: 6, MinPoints: 2000, Title: "Veteran"},
	{Level: 7, MinPoints: 3500, Title: "Elite"},
	{Level: 8, MinPoints: 5000, Title: "Champion"},
	{Level: 9, MinPoints: 7500, Title: "Legend"},
	{Level: 10, MinPoints: 10000, Title: "Immortal"},
}

type gamificationState struct {
	Achievements []models.Achievement    `json:"achievements"`
	Quests       []models.DailyQuest     `json:"quests"`
	Challenges   []models.TimedChallenge `json:"challenges"`
	Streak       models.Streak           `json:"streak"`
	Points       int                     `json:"points"`
}

// GamificationStore owns achievements, quests, challenges, XP points, and
// the activity streak. Completion is exactly-once: completing an
// already-completed item is a no-op and never awards points twice.
type GamificationStore struct {
	mu     sync.Mutex
	state  gamificationState
	levels []models.LevelThreshold

	blob  *persistence.Blob
	saver *saver
	log   *zap.Logger
}

// NewGamificationStore hydrates the store from persistence.
func NewGamificationStore(blob *persistence.Blob, log *zap.Logger) *GamificationStore {
	s := &GamificationStore{
		blob:   blob,
		log:    log,
		levels: defaultLevels,
		saver:  newSaver(gamificationBlobName, log),
	}
	_ = blob.Load(gamificationBlobName, &s.state)
	return s
}

// AddAchievement registers a new achievement definition.
func (s *GamificationStore) AddAchievement(a models.Achievement) (models.Achievement, error) {
	if a.Target <= 0 {
		return models.Achievement{}, validationErr("achievement target must be positive")
	}
	if a.Progress < 0 {
		return models.Achievement{}, validationErr("achievement progress must be non-negative")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Progress > a.Target {
		a.Progress = a.Target
	}

	s.mu.Lock()
	s.state.Achievements = append(s.state.Achievements, a)
	s.persistLocked()
	s.mu.Unlock()
	return a, nil
}

// RecordProgress advances an achievement by delta, clamped to [0, target].
// Crossing the target completes the achievement and awards its points
// exactly once.
func (s *GamificationStore) RecordProgress(id string, delta int) error {
	if delta < 0 {
		return validationErr("progress delta must be non-negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Achievements {
		a := &s.state.Achievements[i]
		if a.ID != id {
			continue
		}
		if a.Completed {
			// Exactly-once: nothing changes after completion.
			return nil
		}
		a.Progress += delta
		if a.Progress > a.Target {
			a.Progress = a.Target
		}
		if a.Progress >= a.Target {
			a.Completed = true
			now := time.Now()
			a.CompletedAt = &now
			s.state.Points += a.Points
			s.log.Info("achievement completed",
				zap.String("id", a.ID), zap.String("tier", a.Tier.String()),
				zap.Int("points", a.Points))
		}
		s.persistLocked()
		return nil
	}
	return ErrNotFound
}

// CompleteAchievement jumps an achievement straight to its target.
func (s *GamificationStore) CompleteAchievement(id string) error {
	s.mu.Lock()
	var target int
	found := false
	for i := range s.state.Achievements {
		if s.state.Achievements[i].ID == id {
			target = s.state.Achievements[i].Target
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}
	return s.RecordProgress(id, target)
}

// Achievements returns a copy of all achievement records.
func (s *GamificationStore) Achievements() []models.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Achievement(nil), s.state.Achievements...)
}

// Achievement looks up one record by ID.
func (s *GamificationStore) Achievement(id string) (models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.Achievements {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Achievement{}, ErrNotFound
}

// AddQuest registers a daily quest.
func (s *GamificationStore) AddQuest(q models.DailyQuest) (models.DailyQuest, error) {
	if q.Target <= 0 {
		return models.DailyQuest{}, validationErr("quest target must be positive")
	}
	if _, err := time.Parse(models.DateLayout, q.Date); err != nil {
		return models.DailyQuest{}, validationErr("quest date %q is not %s", q.Date, models.DateLayout)
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.state.Quests = append(s.state.Quests, q)
	s.persistLocked()
	s.mu.Unlock()
	return q, nil
}

// RecordQuestProgress advances a quest, clamped at its target. Completion
// awards points exactly once.
func (s *GamificationStore) RecordQuestProgress(id string, delta int) error {
	if delta < 0 {
		return validationErr("progress delta must be non-negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Quests {
		q := &s.state.Quests[i]
		if q.ID != id {
			continue
		}
		if q.Completed {
			return nil
		}
		q.Progress += delta
		if q.Progress > q.Target {
			q.Progress = q.Target
		}
		if q.Progress >= q.Target {
			q.Completed = true
			s.state.Points += q.Points
		}
		s.persistLocked()
		return nil
	}
	return ErrNotFound
}

// ActiveQuests returns the quests scoped to the given day. Past-date
// quests stay in history but are excluded here.
func (s *GamificationStore) ActiveQuests(day time.Time) []models.DailyQuest {
	date := day.Format(models.DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DailyQuest
	for _, q := range s.state.Quests {
		if q.Date == date {
			out = append(out, q)
		}
	}
	return out
}

// QuestHistory returns every quest ever recorded.
func (s *GamificationStore) QuestHistory() []models.DailyQuest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DailyQuest(nil), s.state.Quests...)
}

// AddChallenge registers a timed challenge.
func (s *GamificationStore) AddChallenge(c models.TimedChallenge) (models.TimedChallenge, error) {
	if c.Target <= 0 {
		return models.TimedChallenge{}, validationErr("challenge target must be positive")
	}
	if !c.EndDate.After(c.StartDate) {
		return models.TimedChallenge{}, validationErr("challenge window must end after it starts")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.state.Challenges = append(s.state.Challenges, c)
	s.persistLocked()
	s.mu.Unlock()
	return c, nil
}

// RecordChallengeProgress advances a challenge, clamped at its target.
func (s *GamificationStore) RecordChallengeProgress(id string, delta int) error {
	if delta < 0 {
		return validationErr("progress delta must be non-negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Challenges {
		c := &s.state.Challenges[i]
		if c.ID != id {
			continue
		}
		if c.Completed {
			return nil
		}
		c.Progress += delta
		if c.Progress > c.Target {
			c.Progress = c.Target
		}
		if c.Progress >= c.Target {
			c.Completed = true
			s.state.Points += c.Points
		}
		s.persistLocked()
		return nil
	}
	return ErrNotFound
}

// ActiveChallenges returns challenges whose window contains now.
func (s *GamificationStore) ActiveChallenges(now time.Time) []models.TimedChallenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TimedChallenge
	for _, c := range s.state.Challenges {
		if !now.Before(c.StartDate) && !now.After(c.EndDate) {
			out = append(out, c)
		}
	}
	return out
}

// RecordActivity updates the streak for a qualifying activity on the given
// day. Same-day repeats are no-ops; the day after the last activity
// increments; a longer gap resets to 1. Activity dated before the last
// recorded day is ignored.
func (s *GamificationStore) RecordActivity(day time.Time) {
	date := day.Format(models.DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := &s.state.Streak

	switch {
	case st.LastActivityDate == "":
		st.CurrentStreak = 1
	case date == st.LastActivityDate:
		return
	case date < st.LastActivityDate:
		// Backfilled activity: keep the log elsewhere, never rewind the
		// streak.
		return
	case day.AddDate(0, 0, -1).Format(models.DateLayout) == st.LastActivityDate:
		st.CurrentStreak++
	default:
		st.CurrentStreak = 1
	}

	st.LastActivityDate = date
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	s.persistLocked()
}

// StreakInfo returns the current streak counters.
func (s *GamificationStore) StreakInfo() models.Streak {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Streak
}

// Points returns the cumulative XP.
func (s *GamificationStore) Points() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Points
}

// AwardPoints grants XP outside achievement/quest completion, e.g. for a
// logged workout.
func (s *GamificationStore) AwardPoints(points int) error {
	if points <= 0 {
		return validationErr("points must be positive")
	}
	s.mu.Lock()
	s.state.Points += points
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// CurrentLevel returns the highest level whose threshold is at or below
// the cumulative points.
func (s *GamificationStore) CurrentLevel() models.LevelThreshold {
	points := s.Points()
	current := s.levels[0]
	for _, l := range s.levels {
		if points >= l.MinPoints {
			current = l
		}
	}
	return current
}

// LevelProgress reports progress toward the next level in [0,100]. At the
// max level the progress is 100.
func (s *GamificationStore) LevelProgress() int {
	points := s.Points()
	current := s.CurrentLevel()

	var next *models.LevelThreshold
	for i := range s.levels {
		if s.levels[i].Level == current.Level+1 {
			next = &s.levels[i]
			break
		}
	}
	if next == nil {
		return 100
	}

	span := next.MinPoints - current.MinPoints
	if span <= 0 {
		return 100
	}
	progress := (points - current.MinPoints) * 100 / span
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// Reset clears all gamification state. Explicit reset is the only path
// that reverts a completed achievement.
func (s *GamificationStore) Reset() {
	s.mu.Lock()
	s.state = gamificationState{}
	s.persistLocked()
	s.mu.Unlock()
}

// Errs exposes asynchronous persistence failures.
func (s *GamificationStore) Errs() <-chan error {
	return s.saver.errors()
}

// Close drains pending persistence writes.
func (s *GamificationStore) Close() {
	s.saver.close()
}

func (s *GamificationStore) persistLocked() {
	snapshot := gamificationState{
		Achievements: append([]models.Achievement(nil), s.state.Achievements...),
		Quests:       append([]models.DailyQuest(nil), s.state.Quests...),
		Challenges:   append([]models.TimedChallenge(nil), s.state.Challenges...),
		Streak:       s.state.Streak,
		Points:       s.state.Points,
	}
	s.saver.enqueue(func() error {
		return s.blob.Save(gamificationBlobName, snapshot)
	})
}
