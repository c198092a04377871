package keystore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestMasterKeyGeneratedOnce(t *testing.T) {
	dir := t.TempDir()

	ks, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	k1, err := ks.MasterKey()
	if err != nil {
		t.Fatalf("first MasterKey failed: %v", err)
	}
	if len(k1) != keySize {
		t.Fatalf("expected %d-byte key, got %d", keySize, len(k1))
	}

	k2, err := ks.MasterKey()
	if err != nil {
		t.Fatalf("second MasterKey failed: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("same store returned different keys")
	}
}

func TestMasterKeySurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	ks1, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	k1, err := ks1.MasterKey()
	if err != nil {
		t.Fatalf("MasterKey failed: %v", err)
	}

	ks2, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	k2, err := ks2.MasterKey()
	if err != nil {
		t.Fatalf("MasterKey after reopen failed: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("key changed across reopen")
	}
}

func TestKeyFilePermissions(t *testing.T) {
	dir := t.TempDir()

	ks, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := ks.MasterKey(); err != nil {
		t.Fatalf("MasterKey failed: %v", err)
	}

	st, err := os.Stat(filepath.Join(dir, keyFileName))
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	if ks.SecurityLevel() == SecurityLevelSecure && st.Mode().Perm() != 0o600 {
		t.Errorf("key file mode = %v, want 0600", st.Mode().Perm())
	}
}

func TestCorruptKeyFileRejected(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, keyFileName), []byte("short"), 0o600); err != nil {
		t.Fatalf("seed corrupt key: %v", err)
	}

	ks, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := ks.MasterKey(); err == nil {
		t.Error("expected error for truncated key file")
	}
}
