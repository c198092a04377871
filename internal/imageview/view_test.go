package imageview

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/crypto"
)

// fakeDecrypter simulates the vault. Decryption blocks until released so
// tests can exercise the in-flight cancellation path deterministically.
type fakeDecrypter struct {
	mu        sync.Mutex
	tempDir   string
	encrypted map[string]bool
	err       error
	release   chan struct{}
	calls     []string
	produced  []string
}

func newFakeDecrypter(t *testing.T) *fakeDecrypter {
	return &fakeDecrypter{
		tempDir:   t.TempDir(),
		encrypted: make(map[string]bool),
		release:   make(chan struct{}),
	}
}

func (f *fakeDecrypter) IsEncryptedFile(uri string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.encrypted[uri]
}

func (f *fakeDecrypter) DecryptToTemp(uri string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, uri)
	f.mu.Unlock()

	<-f.release
	if f.err != nil {
		return "", f.err
	}

	tmp, err := os.CreateTemp(f.tempDir, "dec-*")
	if err != nil {
		return "", err
	}
	tmp.Close()

	f.mu.Lock()
	f.produced = append(f.produced, tmp.Name())
	f.mu.Unlock()
	return tmp.Name(), nil
}

func (f *fakeDecrypter) tempFileCount(t *testing.T) int {
	entries, err := os.ReadDir(f.tempDir)
	require.NoError(t, err)
	return len(entries)
}

func TestPlainURINeverDecrypts(t *testing.T) {
	fake := newFakeDecrypter(t)
	view := New(fake, "", Hooks{}, zap.NewNop())
	defer view.Close()

	view.SetURI("https://example.com/photo.jpg")

	require.Equal(t, StateDisplaying, view.State())
	require.Equal(t, "https://example.com/photo.jpg", view.DisplayURI())
	require.Empty(t, fake.calls, "DecryptToTemp must not be called for plain URIs")
}

func TestEncryptedURILifecycle(t *testing.T) {
	fake := newFakeDecrypter(t)
	fake.encrypted["/vault/a.fvenc"] = true

	var loadStarted bool
	loadEnded := make(chan bool, 1)
	view := New(fake, "", Hooks{
		OnLoadStart: func() { loadStarted = true },
		OnLoadEnd:   func(ok bool) { loadEnded <- ok },
	}, zap.NewNop())
	defer view.Close()

	require.Equal(t, StateIdle, view.State())

	view.SetURI("/vault/a.fvenc")
	require.Equal(t, StateLoading, view.State())
	require.True(t, loadStarted)

	close(fake.release)
	select {
	case ok := <-loadEnded:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("OnLoadEnd not called")
	}
	require.Equal(t, StateDisplaying, view.State())
	require.NotEmpty(t, view.DisplayURI())
	_, err := os.Stat(view.DisplayURI())
	require.NoError(t, err, "display URI must point at the decrypted temp file")
}

func TestCloseMidLoadingLeavesNoTempFiles(t *testing.T) {
	fake := newFakeDecrypter(t)
	fake.encrypted["/vault/a.fvenc"] = true

	view := New(fake, "", Hooks{}, zap.NewNop())
	view.SetURI("/vault/a.fvenc")
	require.Equal(t, StateLoading, view.State())

	// Unmount while the decryption is still in flight.
	view.Close()
	close(fake.release)

	require.Eventually(t, func() bool {
		return fake.tempFileCount(t) == 0
	}, time.Second, 5*time.Millisecond, "abandoned decrypt must clean up its temp file")
	require.Equal(t, StateIdle, view.State())
}

func TestURIChangeDiscardsStaleResult(t *testing.T) {
	fake := newFakeDecrypter(t)
	fake.encrypted["/vault/a.fvenc"] = true

	view := New(fake, "", Hooks{}, zap.NewNop())
	defer view.Close()

	view.SetURI("/vault/a.fvenc")
	require.Equal(t, StateLoading, view.State())

	// Supersede with a plain URI before the decrypt resolves.
	view.SetURI("https://example.com/other.jpg")
	require.Equal(t, StateDisplaying, view.State())
	require.Equal(t, "https://example.com/other.jpg", view.DisplayURI())

	close(fake.release)
	require.Eventually(t, func() bool {
		return fake.tempFileCount(t) == 0
	}, time.Second, 5*time.Millisecond)

	// Stale completion must not have replaced the display URI.
	require.Equal(t, "https://example.com/other.jpg", view.DisplayURI())
}

func TestDecryptionErrorFallsBackToPlaceholder(t *testing.T) {
	fake := newFakeDecrypter(t)
	fake.encrypted["/vault/bad.fvenc"] = true
	fake.err = crypto.ErrDecryptionFailed

	errCh := make(chan error, 1)
	view := New(fake, "asset://placeholder.png", Hooks{
		OnDecryptionError: func(err error) { errCh <- err },
	}, zap.NewNop())
	defer view.Close()

	view.SetURI("/vault/bad.fvenc")
	close(fake.release)

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, crypto.ErrDecryptionFailed)
	case <-time.After(time.Second):
		t.Fatal("OnDecryptionError not called")
	}
	require.Equal(t, StateError, view.State())
	require.Equal(t, "asset://placeholder.png", view.DisplayURI())
}

func TestCryptoUnavailableEntersPlaintextMode(t *testing.T) {
	fake := newFakeDecrypter(t)
	fake.encrypted["/vault/a.fvenc"] = true
	fake.encrypted["/vault/b.fvenc"] = true
	fake.err = crypto.ErrCryptoUnavailable

	view := New(fake, "", Hooks{}, zap.NewNop())
	defer view.Close()

	view.SetURI("/vault/a.fvenc")
	close(fake.release)
	require.Eventually(t, func() bool {
		return view.State() == StateDisplaying
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "/vault/a.fvenc", view.DisplayURI())

	// Subsequent encrypted URIs pass straight through for the session.
	view.SetURI("/vault/b.fvenc")
	require.Equal(t, StateDisplaying, view.State())
	require.Equal(t, "/vault/b.fvenc", view.DisplayURI())
	require.Len(t, fake.calls, 1)
}

func TestCloseRemovesOwnedTempFile(t *testing.T) {
	fake := newFakeDecrypter(t)
	fake.encrypted["/vault/a.fvenc"] = true
	close(fake.release)

	view := New(fake, "", Hooks{}, zap.NewNop())
	view.SetURI("/vault/a.fvenc")
	require.Eventually(t, func() bool {
		return view.State() == StateDisplaying
	}, time.Second, 5*time.Millisecond)

	owned := view.DisplayURI()
	require.FileExists(t, owned)

	view.Close()
	_, err := os.Stat(owned)
	require.True(t, os.IsNotExist(err), "temp file must be removed on close")
	require.Equal(t, 0, fake.tempFileCount(t))
}
