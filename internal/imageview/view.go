// Package imageview adapts encrypted photo URIs for display. Each View runs
// the per-instance lifecycle: plain URIs pass through untouched, encrypted
// URIs are decrypted into a transient copy that the View owns and removes
// when superseded or closed.
package imageview

import (
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/crypto"
)

// State is the display lifecycle phase of a View.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateDisplaying
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateDisplaying:
		return "displaying"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Decrypter is the part of the vault a View needs.
type Decrypter interface {
	IsEncryptedFile(uri string) bool
	DecryptToTemp(uri string) (string, error)
}

// Hooks are optional lifecycle callbacks surfaced to the UI shell.
type Hooks struct {
	OnLoadStart       func()
	OnLoadEnd         func(success bool)
	OnDecryptionError func(err error)
}

// View decrypts one image URI at a time for display.
type View struct {
	vault       Decrypter
	fallbackURI string
	hooks       Hooks
	log         *zap.Logger

	mu            sync.Mutex
	state         State
	displayURI    string
	tempURI       string
	gen           uint64
	closed        bool
	plaintextOnly bool
}

// New returns an idle View. fallbackURI is displayed when decryption fails;
// empty means display nothing in the error state.
func New(vault Decrypter, fallbackURI string, hooks Hooks, log *zap.Logger) *View {
	return &View{vault: vault, fallbackURI: fallbackURI, hooks: hooks, log: log, state: StateIdle}
}

// SetURI points the View at a new image. A non-encrypted URI displays
// immediately; an encrypted URI starts an asynchronous decryption. Any
// in-flight decryption for a previous URI is abandoned and its temp file
// removed when it eventually resolves.
func (v *View) SetURI(uri string) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.gen++
	gen := v.gen
	v.releaseTempLocked()

	if v.plaintextOnly || !v.vault.IsEncryptedFile(uri) {
		v.state = StateDisplaying
		v.displayURI = uri
		v.mu.Unlock()
		return
	}

	v.state = StateLoading
	v.displayURI = ""
	v.mu.Unlock()

	if v.hooks.OnLoadStart != nil {
		v.hooks.OnLoadStart()
	}
	go v.decrypt(uri, gen)
}

func (v *View) decrypt(uri string, gen uint64) {
	tempURI, err := v.vault.DecryptToTemp(uri)

	v.mu.Lock()
	if v.closed || gen != v.gen {
		// Superseded or closed while in flight: discard the result but
		// never leak the temp file it produced.
		v.mu.Unlock()
		if err == nil {
			os.Remove(tempURI)
		}
		return
	}

	if err != nil {
		if errors.Is(err, crypto.ErrCryptoUnavailable) {
			// No working crypto this session: pass URIs through untouched
			// from now on.
			v.plaintextOnly = true
			v.state = StateDisplaying
			v.displayURI = uri
			v.mu.Unlock()
			v.log.Warn("crypto unavailable, falling back to plaintext display")
			if v.hooks.OnLoadEnd != nil {
				v.hooks.OnLoadEnd(false)
			}
			return
		}
		v.state = StateError
		v.displayURI = v.fallbackURI
		v.mu.Unlock()
		v.log.Warn("photo decryption failed", zap.String("uri", uri), zap.Error(err))
		if v.hooks.OnDecryptionError != nil {
			v.hooks.OnDecryptionError(err)
		}
		if v.hooks.OnLoadEnd != nil {
			v.hooks.OnLoadEnd(false)
		}
		return
	}

	v.state = StateDisplaying
	v.displayURI = tempURI
	v.tempURI = tempURI
	v.mu.Unlock()
	if v.hooks.OnLoadEnd != nil {
		v.hooks.OnLoadEnd(true)
	}
}

// State returns the current lifecycle state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// DisplayURI returns the URI the UI should render right now. Empty while
// loading, or in the error state with no fallback configured.
func (v *View) DisplayURI() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.displayURI
}

// Close releases the owned temp file and stops all future state updates.
// Safe to call from any state, including mid-decryption.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.gen++
	v.releaseTempLocked()
	v.state = StateIdle
	v.displayURI = ""
}

func (v *View) releaseTempLocked() {
	if v.tempURI == "" {
		return
	}
	if err := os.Remove(v.tempURI); err != nil && !os.IsNotExist(err) {
		v.log.Warn("failed to remove decrypted temp file",
			zap.String("path", v.tempURI), zap.Error(err))
	}
	v.tempURI = ""
}
