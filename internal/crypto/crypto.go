// Package crypto implements AES-256-GCM encryption with per-operation
// PBKDF2 key derivation for photo data at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// FormatVersion identifies the current encrypted payload layout.
	FormatVersion = 1

	// AlgorithmAESGCM is the only supported cipher.
	AlgorithmAESGCM = "aes-256-gcm"

	// KeyDerivationPBKDF2 is the only supported key derivation function.
	KeyDerivationPBKDF2 = "pbkdf2-sha256"

	saltSize         = 32
	keySize          = 32
	pbkdf2Iterations = 100_000
)

var (
	// ErrCryptoUnavailable indicates the crypto layer cannot operate,
	// e.g. no master key material was provided.
	ErrCryptoUnavailable = errors.New("crypto unavailable")

	// ErrDecryptionFailed indicates tag verification failed: the data
	// was tampered with, corrupted, or encrypted under a different key.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidInfo indicates a malformed or unsupported encryption
	// descriptor.
	ErrInvalidInfo = errors.New("invalid encryption info")
)

// EncryptionInfo describes how a payload was encrypted. It is created at
// encryption time, stored alongside the ciphertext, and never mutated.
type EncryptionInfo struct {
	Version       int    `json:"version"`
	Algorithm     string `json:"algorithm"`
	KeyDerivation string `json:"key_derivation"`
	Salt          []byte `json:"salt"`
	IV            []byte `json:"iv"`
	TagLength     int    `json:"tag_length"`
}

// Validate checks that the descriptor matches the supported algorithm and
// version and carries non-empty salt and IV.
func (info *EncryptionInfo) Validate() error {
	if info == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidInfo)
	}
	if info.Version != FormatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidInfo, info.Version)
	}
	if info.Algorithm != AlgorithmAESGCM {
		return fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidInfo, info.Algorithm)
	}
	if info.KeyDerivation != KeyDerivationPBKDF2 {
		return fmt.Errorf("%w: unsupported key derivation %q", ErrInvalidInfo, info.KeyDerivation)
	}
	if len(info.Salt) == 0 {
		return fmt.Errorf("%w: empty salt", ErrInvalidInfo)
	}
	if len(info.IV) == 0 {
		return fmt.Errorf("%w: empty iv", ErrInvalidInfo)
	}
	return nil
}

// Encrypt seals plaintext under a key derived from masterKey with a fresh
// salt and IV. Two calls with identical plaintext produce different
// ciphertext, salt, and IV.
func Encrypt(plaintext, masterKey []byte) ([]byte, *EncryptionInfo, error) {
	if len(masterKey) == 0 {
		return nil, nil, fmt.Errorf("%w: empty master key", ErrCryptoUnavailable)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key(masterKey, salt, pbkdf2Iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("create AEAD: %w", err)
	}

	iv := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, fmt.Errorf("generate iv: %w", err)
	}

	ciphertext := gcm.Seal(nil, iv, plaintext, nil)

	info := &EncryptionInfo{
		Version:       FormatVersion,
		Algorithm:     AlgorithmAESGCM,
		KeyDerivation: KeyDerivationPBKDF2,
		Salt:          salt,
		IV:            iv,
		TagLength:     gcm.Overhead(),
	}
	return ciphertext, info, nil
}

// Decrypt re-derives the key from info.Salt and opens the ciphertext,
// verifying the authentication tag. A failed tag check returns
// ErrDecryptionFailed and never partial plaintext.
func Decrypt(ciphertext []byte, info *EncryptionInfo, masterKey []byte) ([]byte, error) {
	if len(masterKey) == 0 {
		return nil, fmt.Errorf("%w: empty master key", ErrCryptoUnavailable)
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	key := pbkdf2.Key(masterKey, info.Salt, pbkdf2Iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	if len(info.IV) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: iv size %d", ErrInvalidInfo, len(info.IV))
	}

	plaintext, err := gcm.Open(nil, info.IV, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
