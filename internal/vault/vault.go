// Package vault stores photo bytes as encrypted files on local storage and
// produces transient decrypted copies for display. Decrypted copies live in
// a dedicated temp directory and are swept opportunistically.
package vault

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/crypto"
	"github.com/fitvault/fitvault/internal/keystore"
)

// magic marks files written by this vault. IsEncryptedFile keys off it.
var magic = []byte("FVENC\x01")

const (
	encryptedExt   = ".fvenc"
	tempPrefix     = "dec-"
	maxHeaderBytes = 1 << 20
)

var (
	// ErrNotEncrypted indicates the URI does not point at a vault file.
	ErrNotEncrypted = errors.New("not an encrypted vault file")

	// ErrUnsupportedFormat indicates a vault file with an unreadable or
	// future-format header.
	ErrUnsupportedFormat = errors.New("unsupported vault file format")
)

// FileMetadata carries original-file attributes preserved alongside the
// ciphertext.
type FileMetadata struct {
	MIME         string `json:"mime"`
	OriginalSize int64  `json:"original_size"`
	Name         string `json:"name,omitempty"`
}

// header is serialized as JSON between the magic marker and the ciphertext.
type header struct {
	Info *crypto.EncryptionInfo `json:"info"`
	Meta FileMetadata           `json:"meta"`
}

// Vault encrypts photos into dir and decrypts them into tempDir on demand.
type Vault struct {
	dir     string
	tempDir string
	keys    keystore.KeyStore
	log     *zap.Logger
}

// New creates the vault directories and returns a Vault using keys for the
// master key. A reduced-security keystore is accepted but logged once.
func New(dir string, keys keystore.KeyStore, log *zap.Logger) (*Vault, error) {
	tempDir := filepath.Join(dir, "tmp")
	if err := os.MkdirAll(tempDir, 0o700); err != nil {
		return nil, fmt.Errorf("create vault dirs: %w", err)
	}
	if keys.SecurityLevel() == keystore.SecurityLevelReduced {
		log.Warn("vault operating with reduced-security key storage")
	}
	return &Vault{dir: dir, tempDir: tempDir, keys: keys, log: log}, nil
}

// TempDir exposes the directory that holds transient decrypted copies.
func (v *Vault) TempDir() string {
	return v.tempDir
}

// EncryptAndStore encrypts data and writes a single file combining the
// descriptor, metadata, and ciphertext. The file name is derived from the
// ciphertext hash to avoid collisions. Returns the stored file path.
func (v *Vault) EncryptAndStore(data []byte, meta FileMetadata) (string, error) {
	key, err := v.keys.MasterKey()
	if err != nil {
		return "", fmt.Errorf("load master key: %w", err)
	}
	if meta.OriginalSize == 0 {
		meta.OriginalSize = int64(len(data))
	}

	ciphertext, info, err := crypto.Encrypt(data, key)
	if err != nil {
		return "", fmt.Errorf("encrypt photo: %w", err)
	}

	hdr, err := json.Marshal(header{Info: info, Meta: meta})
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(magic)
	var hdrLen [4]byte
	binary.BigEndian.PutUint32(hdrLen[:], uint32(len(hdr)))
	buf.Write(hdrLen[:])
	buf.Write(hdr)
	buf.Write(ciphertext)

	sum := sha256.Sum256(ciphertext)
	path := filepath.Join(v.dir, hex.EncodeToString(sum[:16])+encryptedExt)

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("write vault file: %w", err)
	}

	v.log.Debug("stored encrypted photo",
		zap.String("path", path), zap.Int64("original_size", meta.OriginalSize))
	return path, nil
}

// ReadMetadata returns the original-file metadata embedded in a vault file.
func (v *Vault) ReadMetadata(uri string) (FileMetadata, error) {
	hdr, _, err := v.readFile(uri)
	if err != nil {
		return FileMetadata{}, err
	}
	return hdr.Meta, nil
}

// DecryptToTemp decrypts the vault file at uri into a fresh temp file and
// returns its path. The caller owns cleanup of the returned file.
func (v *Vault) DecryptToTemp(uri string) (string, error) {
	hdr, ciphertext, err := v.readFile(uri)
	if err != nil {
		return "", err
	}

	key, err := v.keys.MasterKey()
	if err != nil {
		return "", fmt.Errorf("load master key: %w", err)
	}
	plaintext, err := crypto.Decrypt(ciphertext, hdr.Info, key)
	if err != nil {
		return "", fmt.Errorf("decrypt %s: %w", uri, err)
	}

	f, err := os.CreateTemp(v.tempDir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(plaintext); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

// IsEncryptedFile reports whether uri points at a file produced by this
// vault. Remote URLs, bundled assets, and plain files are not encrypted
// and pass through unchanged.
func (v *Vault) IsEncryptedFile(uri string) bool {
	if strings.Contains(uri, "://") {
		return false
	}
	f, err := os.Open(uri)
	if err != nil {
		return false
	}
	defer f.Close()

	prefix := make([]byte, len(magic))
	if _, err := io.ReadFull(f, prefix); err != nil {
		return false
	}
	return bytes.Equal(prefix, magic)
}

// SecureDelete overwrites the file with two passes of random bytes and one
// pass of zeros, syncing each pass, then unlinks it. Reduces forensic
// recoverability versus a plain delete.
func (v *Vault) SecureDelete(uri string) error {
	f, err := os.OpenFile(uri, os.O_WRONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open for wipe: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return os.Remove(uri)
	}
	size := st.Size()

	for pass := 0; pass < 3 && size > 0; pass++ {
		buf := make([]byte, size)
		if pass < 2 {
			if _, err := io.ReadFull(rand.Reader, buf); err != nil {
				break
			}
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			break
		}
		if _, err := f.Write(buf); err != nil {
			break
		}
		f.Sync()
	}
	f.Close()

	if err := os.Remove(uri); err != nil {
		return fmt.Errorf("unlink: %w", err)
	}
	v.log.Debug("securely deleted vault file", zap.String("path", uri))
	return nil
}

// CleanupTempFiles removes every previously decrypted copy from the temp
// directory. Individual failures are aggregated, not fatal.
func (v *Vault) CleanupTempFiles() error {
	entries, err := os.ReadDir(v.tempDir)
	if err != nil {
		return fmt.Errorf("read temp dir: %w", err)
	}

	var errs error
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(v.tempDir, e.Name())); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		v.log.Debug("swept decrypted temp files", zap.Int("removed", removed))
	}
	return errs
}

// readFile opens a vault file and splits it into header and ciphertext.
// Platform IO errors pass through; format problems map to typed errors.
func (v *Vault) readFile(uri string) (*header, []byte, error) {
	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("read vault file: %w", err)
	}
	if len(data) < len(magic)+4 || !bytes.Equal(data[:len(magic)], magic) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotEncrypted, uri)
	}

	rest := data[len(magic):]
	hdrLen := binary.BigEndian.Uint32(rest[:4])
	if hdrLen == 0 || hdrLen > maxHeaderBytes || int(hdrLen) > len(rest)-4 {
		return nil, nil, fmt.Errorf("%w: bad header length %d", ErrUnsupportedFormat, hdrLen)
	}

	var hdr header
	if err := json.Unmarshal(rest[4:4+hdrLen], &hdr); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if err := hdr.Info.Validate(); err != nil {
		return nil, nil, err
	}
	return &hdr, rest[4+hdrLen:], nil
}
