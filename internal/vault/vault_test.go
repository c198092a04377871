package vault

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/crypto"
	"github.com/fitvault/fitvault/internal/keystore"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	ks, err := keystore.Open(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("open keystore: %v", err)
	}
	v, err := New(t.TempDir(), ks, zap.NewNop())
	if err != nil {
		t.Fatalf("create vault: %v", err)
	}
	return v
}

func TestEncryptStoreDecryptRoundTrip(t *testing.T) {
	v := newTestVault(t)
	photo := []byte("jpeg bytes of a progress photo")

	uri, err := v.EncryptAndStore(photo, FileMetadata{MIME: "image/jpeg"})
	if err != nil {
		t.Fatalf("EncryptAndStore failed: %v", err)
	}
	if !v.IsEncryptedFile(uri) {
		t.Error("stored file not recognized as encrypted")
	}

	stored, err := os.ReadFile(uri)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if bytes.Contains(stored, photo) {
		t.Error("ciphertext file contains plaintext bytes")
	}

	tempURI, err := v.DecryptToTemp(uri)
	if err != nil {
		t.Fatalf("DecryptToTemp failed: %v", err)
	}
	defer os.Remove(tempURI)

	got, err := os.ReadFile(tempURI)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if !bytes.Equal(got, photo) {
		t.Error("decrypted bytes differ from original")
	}

	meta, err := v.ReadMetadata(uri)
	if err != nil {
		t.Fatalf("ReadMetadata failed: %v", err)
	}
	if meta.MIME != "image/jpeg" || meta.OriginalSize != int64(len(photo)) {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestIsEncryptedFileRejectsPlainURIs(t *testing.T) {
	v := newTestVault(t)

	if v.IsEncryptedFile("https://example.com/avatar.png") {
		t.Error("remote URL reported as encrypted")
	}
	if v.IsEncryptedFile(filepath.Join(t.TempDir(), "missing.jpg")) {
		t.Error("missing file reported as encrypted")
	}

	plain := filepath.Join(t.TempDir(), "plain.jpg")
	if err := os.WriteFile(plain, []byte("plain jpeg"), 0o600); err != nil {
		t.Fatalf("write plain file: %v", err)
	}
	if v.IsEncryptedFile(plain) {
		t.Error("plain file reported as encrypted")
	}
}

func TestDecryptToTempOnPlainFile(t *testing.T) {
	v := newTestVault(t)

	plain := filepath.Join(t.TempDir(), "plain.jpg")
	if err := os.WriteFile(plain, []byte("plain jpeg"), 0o600); err != nil {
		t.Fatalf("write plain file: %v", err)
	}
	if _, err := v.DecryptToTemp(plain); !errors.Is(err, ErrNotEncrypted) {
		t.Errorf("expected ErrNotEncrypted, got %v", err)
	}
}

func TestSecureDeleteThenDecryptFailsWithIOError(t *testing.T) {
	v := newTestVault(t)

	uri, err := v.EncryptAndStore([]byte("wipe me"), FileMetadata{MIME: "image/png"})
	if err != nil {
		t.Fatalf("EncryptAndStore failed: %v", err)
	}

	if err := v.SecureDelete(uri); err != nil {
		t.Fatalf("SecureDelete failed: %v", err)
	}
	if _, err := os.Stat(uri); !os.IsNotExist(err) {
		t.Fatal("file still exists after SecureDelete")
	}

	_, err = v.DecryptToTemp(uri)
	if err == nil {
		t.Fatal("expected error decrypting deleted file")
	}
	if errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Errorf("expected IO error, got decryption error: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-found error, got %v", err)
	}

	// Deleting an already-deleted file is a no-op.
	if err := v.SecureDelete(uri); err != nil {
		t.Errorf("second SecureDelete: %v", err)
	}
}

func TestCorruptedFileYieldsDecryptionError(t *testing.T) {
	v := newTestVault(t)

	uri, err := v.EncryptAndStore([]byte("soon to be corrupted"), FileMetadata{})
	if err != nil {
		t.Fatalf("EncryptAndStore failed: %v", err)
	}

	data, err := os.ReadFile(uri)
	if err != nil {
		t.Fatalf("read vault file: %v", err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(uri, data, 0o600); err != nil {
		t.Fatalf("write corrupted file: %v", err)
	}

	if _, err := v.DecryptToTemp(uri); !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestCleanupTempFiles(t *testing.T) {
	v := newTestVault(t)

	uri, err := v.EncryptAndStore([]byte("photo"), FileMetadata{})
	if err != nil {
		t.Fatalf("EncryptAndStore failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := v.DecryptToTemp(uri); err != nil {
			t.Fatalf("DecryptToTemp failed: %v", err)
		}
	}

	entries, _ := os.ReadDir(v.TempDir())
	if len(entries) != 3 {
		t.Fatalf("expected 3 temp files, got %d", len(entries))
	}

	if err := v.CleanupTempFiles(); err != nil {
		t.Fatalf("CleanupTempFiles failed: %v", err)
	}
	entries, _ = os.ReadDir(v.TempDir())
	if len(entries) != 0 {
		t.Errorf("expected empty temp dir, got %d entries", len(entries))
	}
}
