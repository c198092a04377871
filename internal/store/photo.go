package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/models"
	"github.com/fitvault/fitvault/internal/persistence"
)

const photoBlobName = "photos"

// FileWiper is the part of the vault the photo store needs to dispose of
// encrypted files when their owning record is deleted.
type FileWiper interface {
	IsEncryptedFile(uri string) bool
	SecureDelete(uri string) error
}

type photoState struct {
	FoodPhotos     []models.FoodPhoto     `json:"food_photos"`
	ProgressPhotos []models.ProgressPhoto `json:"progress_photos"`
}

// PhotoStore exclusively owns food and progress photo records. Other
// stores reference photos by ID only.
type PhotoStore struct {
	mu    sync.Mutex
	state photoState

	blob  *persistence.Blob
	wiper FileWiper
	saver *saver
	log   *zap.Logger
}

// NewPhotoStore hydrates the store from persistence; corrupt or missing
// state starts empty.
func NewPhotoStore(blob *persistence.Blob, wiper FileWiper, log *zap.Logger) *PhotoStore {
	s := &PhotoStore{blob: blob, wiper: wiper, log: log, saver: newSaver(photoBlobName, log)}
	_ = blob.Load(photoBlobName, &s.state)
	return s
}

// AddFoodPhoto records a meal photo and returns it with generated fields
// filled in.
func (s *PhotoStore) AddFoodPhoto(p models.FoodPhoto) (models.FoodPhoto, error) {
	if err := validateFoodPhoto(&p); err != nil {
		return models.FoodPhoto{}, err
	}

	s.mu.Lock()
	s.state.FoodPhotos = append(s.state.FoodPhotos, p)
	s.persistLocked()
	s.mu.Unlock()
	return p, nil
}

// UpdateFoodPhoto replaces the record with the same ID. The update never
// propagates into macro logs that cited the photo earlier.
func (s *PhotoStore) UpdateFoodPhoto(p models.FoodPhoto) error {
	if err := validateFoodPhoto(&p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.FoodPhotos {
		if s.state.FoodPhotos[i].ID == p.ID {
			s.state.FoodPhotos[i] = p
			s.persistLocked()
			return nil
		}
	}
	return ErrNotFound
}

// DeleteFoodPhoto removes the record and securely wipes its encrypted file.
func (s *PhotoStore) DeleteFoodPhoto(id string) error {
	s.mu.Lock()
	var uri string
	found := false
	for i := range s.state.FoodPhotos {
		if s.state.FoodPhotos[i].ID == id {
			uri = s.state.FoodPhotos[i].URI
			s.state.FoodPhotos = append(s.state.FoodPhotos[:i], s.state.FoodPhotos[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !found {
		return ErrNotFound
	}
	return s.wipe(uri)
}

// FoodPhotos returns a copy of all food photo records.
func (s *PhotoStore) FoodPhotos() []models.FoodPhoto {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FoodPhoto(nil), s.state.FoodPhotos...)
}

// FoodPhotosByDate returns the meal photos taken on the given calendar day.
func (s *PhotoStore) FoodPhotosByDate(day time.Time) []models.FoodPhoto {
	want := day.Format(models.DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FoodPhoto
	for _, p := range s.state.FoodPhotos {
		if p.Date.Format(models.DateLayout) == want {
			out = append(out, p)
		}
	}
	return out
}

// FoodPhoto looks up one record by ID.
func (s *PhotoStore) FoodPhoto(id string) (models.FoodPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.state.FoodPhotos {
		if p.ID == id {
			return p, nil
		}
	}
	return models.FoodPhoto{}, ErrNotFound
}

// AddProgressPhoto records a body progress photo.
func (s *PhotoStore) AddProgressPhoto(p models.ProgressPhoto) (models.ProgressPhoto, error) {
	if p.URI == "" {
		return models.ProgressPhoto{}, validationErr("progress photo uri is required")
	}
	if p.WeightKg < 0 {
		return models.ProgressPhoto{}, validationErr("weight must be non-negative")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}

	s.mu.Lock()
	s.state.ProgressPhotos = append(s.state.ProgressPhotos, p)
	s.persistLocked()
	s.mu.Unlock()
	return p, nil
}

// DeleteProgressPhoto removes the record and securely wipes its encrypted
// file.
func (s *PhotoStore) DeleteProgressPhoto(id string) error {
	s.mu.Lock()
	var uri string
	found := false
	for i := range s.state.ProgressPhotos {
		if s.state.ProgressPhotos[i].ID == id {
			uri = s.state.ProgressPhotos[i].URI
			s.state.ProgressPhotos = append(s.state.ProgressPhotos[:i], s.state.ProgressPhotos[i+1:]...)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !found {
		return ErrNotFound
	}
	return s.wipe(uri)
}

// ProgressPhotos returns a copy of all progress photo records.
func (s *PhotoStore) ProgressPhotos() []models.ProgressPhoto {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ProgressPhoto(nil), s.state.ProgressPhotos...)
}

// Errs exposes asynchronous persistence failures.
func (s *PhotoStore) Errs() <-chan error {
	return s.saver.errors()
}

// Close drains pending persistence writes.
func (s *PhotoStore) Close() {
	s.saver.close()
}

func (s *PhotoStore) wipe(uri string) error {
	if uri == "" || !s.wiper.IsEncryptedFile(uri) {
		return nil
	}
	if err := s.wiper.SecureDelete(uri); err != nil {
		s.log.Warn("failed to wipe encrypted photo file",
			zap.String("uri", uri), zap.Error(err))
		return err
	}
	return nil
}

func (s *PhotoStore) persistLocked() {
	snapshot := photoState{
		FoodPhotos:     append([]models.FoodPhoto(nil), s.state.FoodPhotos...),
		ProgressPhotos: append([]models.ProgressPhoto(nil), s.state.ProgressPhotos...),
	}
	s.saver.enqueue(func() error {
		return s.blob.Save(photoBlobName, snapshot)
	})
}

func validateFoodPhoto(p *models.FoodPhoto) error {
	if p.URI == "" {
		return validationErr("food photo uri is required")
	}
	if p.Calories < 0 || p.ProteinG < 0 || p.CarbsG < 0 || p.FatG < 0 {
		return validationErr("nutrition values must be non-negative")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	return nil
}
