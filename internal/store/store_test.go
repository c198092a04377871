package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/models"
	"github.com/fitvault/fitvault/internal/persistence"
)

func newTestBlob(t *testing.T) *persistence.Blob {
	t.Helper()
	b, err := persistence.NewBlob(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewBlob failed: %v", err)
	}
	return b
}

func TestPersistenceWriteFailureSurfacedNotFatal(t *testing.T) {
	dir := t.TempDir()
	b, err := persistence.NewBlob(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewBlob failed: %v", err)
	}
	// A non-empty directory in the blob's place makes the atomic rename fail.
	blocker := filepath.Join(dir, healthBlobName+".json")
	if err := os.MkdirAll(filepath.Join(blocker, "x"), 0o700); err != nil {
		t.Fatalf("plant blocker: %v", err)
	}

	s := NewHealthStore(b, zap.NewNop())
	added, err := s.AddMeasurement(models.BodyMeasurement{WeightKg: 80})
	if err != nil {
		t.Fatalf("AddMeasurement failed: %v", err)
	}
	s.Close()

	select {
	case werr := <-s.Errs():
		if !errors.Is(werr, ErrPersistenceWrite) {
			t.Errorf("error channel carried %v, want ErrPersistenceWrite", werr)
		}
	default:
		t.Fatal("failed write never surfaced on the error channel")
	}

	// In-memory state stays authoritative for the session.
	ms := s.Measurements()
	if len(ms) != 1 || ms[0].ID != added.ID {
		t.Errorf("in-memory state lost after failed persist: %+v", ms)
	}
}
