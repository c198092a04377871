package crypto

import (
	"bytes"
	"errors"
	"testing"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plain := []byte("progress photo bytes")

	ct, info, err := Encrypt(plain, testKey)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Equal(ct, plain) {
		t.Error("ciphertext equals plaintext")
	}

	got, err := Decrypt(ct, info, testKey)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("round trip mismatch: got %q, want %q", got, plain)
	}
}

func TestEncryptFreshSaltAndIV(t *testing.T) {
	plain := []byte("same plaintext twice")

	ct1, info1, err := Encrypt(plain, testKey)
	if err != nil {
		t.Fatalf("first Encrypt failed: %v", err)
	}
	ct2, info2, err := Encrypt(plain, testKey)
	if err != nil {
		t.Fatalf("second Encrypt failed: %v", err)
	}

	if bytes.Equal(ct1, ct2) {
		t.Error("two encryptions produced identical ciphertext")
	}
	if bytes.Equal(info1.Salt, info2.Salt) {
		t.Error("two encryptions produced identical salt")
	}
	if bytes.Equal(info1.IV, info2.IV) {
		t.Error("two encryptions produced identical iv")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	ct, info, err := Encrypt([]byte("integrity matters"), testKey)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flip one byte in the body and one in the tag region.
	for _, idx := range []int{0, len(ct) - 1} {
		tampered := append([]byte(nil), ct...)
		tampered[idx] ^= 0xFF

		got, err := Decrypt(tampered, info, testKey)
		if !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("tampered byte %d: expected ErrDecryptionFailed, got %v", idx, err)
		}
		if got != nil {
			t.Errorf("tampered byte %d: expected nil plaintext, got %d bytes", idx, len(got))
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	ct, info, err := Encrypt([]byte("secret"), testKey)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := Decrypt(ct, info, []byte("another-master-key")); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestEncryptEmptyMasterKey(t *testing.T) {
	if _, _, err := Encrypt([]byte("x"), nil); !errors.Is(err, ErrCryptoUnavailable) {
		t.Errorf("expected ErrCryptoUnavailable, got %v", err)
	}
}

func TestValidateEncryptionInfo(t *testing.T) {
	_, info, err := Encrypt([]byte("x"), testKey)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if err := info.Validate(); err != nil {
		t.Errorf("valid info rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*EncryptionInfo)
	}{
		{"bad version", func(i *EncryptionInfo) { i.Version = 99 }},
		{"bad algorithm", func(i *EncryptionInfo) { i.Algorithm = "des" }},
		{"bad kdf", func(i *EncryptionInfo) { i.KeyDerivation = "md5" }},
		{"empty salt", func(i *EncryptionInfo) { i.Salt = nil }},
		{"empty iv", func(i *EncryptionInfo) { i.IV = nil }},
	}
	for _, tc := range cases {
		bad := *info
		bad.Salt = append([]byte(nil), info.Salt...)
		bad.IV = append([]byte(nil), info.IV...)
		tc.mutate(&bad)
		if err := bad.Validate(); !errors.Is(err, ErrInvalidInfo) {
			t.Errorf("%s: expected ErrInvalidInfo, got %v", tc.name, err)
		}
	}
}
