package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/models"
	"github.com/fitvault/fitvault/internal/persistence"
)

const healthBlobName = "health"

type healthState struct {
	Measurements []models.BodyMeasurement `json:"measurements"`
	Counters     []models.DailyCounters   `json:"counters"`
}

// HealthStore owns body measurements and per-day step/water counters.
type HealthStore struct {
	mu    sync.Mutex
	state healthState

	blob  *persistence.Blob
	saver *saver
	log   *zap.Logger
}

// NewHealthStore hydrates the store from persistence.
func NewHealthStore(blob *persistence.Blob, log *zap.Logger) *HealthStore {
	s := &HealthStore{blob: blob, log: log, saver: newSaver(healthBlobName, log)}
	_ = blob.Load(healthBlobName, &s.state)
	return s
}

// AddMeasurement records a weight/body-fat reading.
func (s *HealthStore) AddMeasurement(m models.BodyMeasurement) (models.BodyMeasurement, error) {
	if m.WeightKg <= 0 {
		return models.BodyMeasurement{}, validationErr("weight must be positive")
	}
	if m.BodyFatPct != nil && (*m.BodyFatPct < 0 || *m.BodyFatPct > 100) {
		return models.BodyMeasurement{}, validationErr("body fat must be within [0,100]")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.MeasuredAt.IsZero() {
		m.MeasuredAt = time.Now()
	}

	s.mu.Lock()
	s.state.Measurements = append(s.state.Measurements, m)
	s.persistLocked()
	s.mu.Unlock()
	return m, nil
}

// Measurements returns all readings ordered oldest first.
func (s *HealthStore) Measurements() []models.BodyMeasurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.BodyMeasurement(nil), s.state.Measurements...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].MeasuredAt.Before(out[j].MeasuredAt)
	})
	return out
}

// LatestWeight returns the most recent weight reading, or false when no
// measurements exist.
func (s *HealthStore) LatestWeight() (float64, bool) {
	ms := s.Measurements()
	if len(ms) == 0 {
		return 0, false
	}
	return ms[len(ms)-1].WeightKg, true
}

// AddSteps adds steps to the day's counter.
func (s *HealthStore) AddSteps(day time.Time, steps int) error {
	if steps <= 0 {
		return validationErr("steps must be positive")
	}
	s.addCounter(day, steps, 0)
	return nil
}

// AddWater adds milliliters to the day's water counter.
func (s *HealthStore) AddWater(day time.Time, ml int) error {
	if ml <= 0 {
		return validationErr("water amount must be positive")
	}
	s.addCounter(day, 0, ml)
	return nil
}

// Counters returns the day's aggregates; zero values when nothing logged.
func (s *HealthStore) Counters(day time.Time) models.DailyCounters {
	date := day.Format(models.DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.Counters {
		if c.Date == date {
			return c
		}
	}
	return models.DailyCounters{Date: date}
}

// Errs exposes asynchronous persistence failures.
func (s *HealthStore) Errs() <-chan error {
	return s.saver.errors()
}

// Close drains pending persistence writes.
func (s *HealthStore) Close() {
	s.saver.close()
}

func (s *HealthStore) addCounter(day time.Time, steps, waterMl int) {
	date := day.Format(models.DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Counters {
		if s.state.Counters[i].Date == date {
			s.state.Counters[i].Steps += steps
			s.state.Counters[i].WaterMl += waterMl
			s.persistLocked()
			return
		}
	}
	s.state.Counters = append(s.state.Counters, models.DailyCounters{
		Date: date, Steps: steps, WaterMl: waterMl,
	})
	s.persistLocked()
}

func (s *HealthStore) persistLocked() {
	snapshot := healthState{
		Measurements: append([]models.BodyMeasurement(nil), s.state.Measurements...),
		Counters:     append([]models.DailyCounters(nil), s.state.Counters...),
	}
	s.saver.enqueue(func() error {
		return s.blob.Save(healthBlobName, snapshot)
	})
}
