// Package keystore manages the process-wide master encryption key. The key
// is generated once, persisted on device, read on every encrypt/decrypt,
// and never leaves the device.
package keystore

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

const (
	keyFileName = "master.key"
	keySize     = 32
)

// SecurityLevel reports how well the underlying storage protects the key.
type SecurityLevel int

const (
	// SecurityLevelSecure means the key file carries owner-only permissions.
	SecurityLevelSecure SecurityLevel = iota
	// SecurityLevelReduced means the platform could not enforce owner-only
	// permissions and the key is held best-effort. Callers must surface
	// this to the user rather than claim equivalence.
	SecurityLevelReduced
)

func (l SecurityLevel) String() string {
	if l == SecurityLevelReduced {
		return "reduced"
	}
	return "secure"
}

// KeyStore provides read access to the master key.
type KeyStore interface {
	// MasterKey returns the master key, generating and persisting it on
	// first use. Subsequent calls return the same key.
	MasterKey() ([]byte, error)
	// SecurityLevel reports the protection level of the backing storage.
	SecurityLevel() SecurityLevel
}

// Open probes dir once for owner-only permission support and selects the
// matching KeyStore implementation. When the platform cannot enforce 0600
// permissions the reduced store is returned: it still works, but reports
// SecurityLevelReduced.
func Open(dir string, log *zap.Logger) (KeyStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}

	path := filepath.Join(dir, keyFileName)
	if !probe(dir) {
		log.Warn("key storage cannot enforce owner-only permissions, operating in reduced-security mode",
			zap.String("dir", dir))
		return &reducedKeyStore{keyFile: keyFile{path: path, log: log}}, nil
	}
	return &fileKeyStore{keyFile: keyFile{path: path, log: log}}, nil
}

// probe writes a scratch file with 0600 and checks the mode stuck.
func probe(dir string) bool {
	p := filepath.Join(dir, ".permcheck")
	defer os.Remove(p)

	if err := os.WriteFile(p, []byte{0}, 0o600); err != nil {
		return false
	}
	st, err := os.Stat(p)
	if err != nil || st.Mode().Perm() != 0o600 {
		return false
	}
	return true
}

// keyFile holds the shared load-or-generate logic for both implementations.
type keyFile struct {
	path string
	log  *zap.Logger

	mu  sync.Mutex
	key []byte
}

func (s *keyFile) masterKey(perm os.FileMode) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, nil
	}

	data, err := os.ReadFile(s.path)
	if err == nil {
		if len(data) != keySize {
			return nil, fmt.Errorf("master key file has %d bytes, want %d", len(data), keySize)
		}
		s.key = data
		return s.key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read master key: %w", err)
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate master key: %w", err)
	}
	if err := os.WriteFile(s.path, key, perm); err != nil {
		return nil, fmt.Errorf("persist master key: %w", err)
	}

	s.log.Info("generated new master key")
	s.key = key
	return s.key, nil
}

// fileKeyStore keeps the key in an owner-only file.
type fileKeyStore struct {
	keyFile
}

func (s *fileKeyStore) MasterKey() ([]byte, error) {
	return s.masterKey(0o600)
}

func (s *fileKeyStore) SecurityLevel() SecurityLevel {
	return SecurityLevelSecure
}

// reducedKeyStore keeps the key best-effort on platforms that cannot
// enforce file permissions.
type reducedKeyStore struct {
	keyFile
}

func (s *reducedKeyStore) MasterKey() ([]byte, error) {
	return s.masterKey(0o644)
}

func (s *reducedKeyStore) SecurityLevel() SecurityLevel {
	return SecurityLevelReduced
}
