// Package persistence binds each domain store to a namespaced, versioned
// JSON blob on local storage. A missing or corrupt blob loads as empty
// state; it never fails application startup.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// schemaVersion is embedded in every blob envelope. Blobs written by an
// unknown schema are discarded rather than misread.
const schemaVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Blob persists named JSON state snapshots under a single directory.
type Blob struct {
	dir string
	log *zap.Logger
}

// NewBlob creates the data directory if needed and returns a Blob store.
func NewBlob(dir string, log *zap.Logger) (*Blob, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Blob{dir: dir, log: log}, nil
}

// Load reads the named blob into v. A missing file, unreadable file,
// corrupt JSON, or unknown schema version leaves v untouched so the caller
// starts from empty state; only the corrupt cases are logged.
func (b *Blob) Load(name string, v any) error {
	path := b.path(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			b.log.Warn("failed to read state blob, starting empty",
				zap.String("store", name), zap.Error(err))
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		b.log.Warn("corrupt state blob discarded",
			zap.String("store", name), zap.Error(err))
		return nil
	}
	if env.Version != schemaVersion {
		b.log.Warn("state blob with unknown schema version discarded",
			zap.String("store", name), zap.Int("version", env.Version))
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		b.log.Warn("corrupt state blob discarded",
			zap.String("store", name), zap.Error(err))
		return nil
	}
	return nil
}

// Save writes v as the named blob. The write goes through a temp file and
// rename so a crash never leaves a half-written blob behind.
func (b *Blob) Save(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s state: %w", name, err)
	}
	buf, err := json.Marshal(envelope{Version: schemaVersion, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", name, err)
	}

	tmp, err := os.CreateTemp(b.dir, name+"-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s state: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s state: %w", name, err)
	}
	return nil
}

func (b *Blob) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}
