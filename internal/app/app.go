// Package app assembles the application: configuration, logging, key
// storage, the encrypted photo vault, persistence, and the domain stores.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fitvault/fitvault/internal/aiclient"
	"github.com/fitvault/fitvault/internal/config"
	"github.com/fitvault/fitvault/internal/keystore"
	"github.com/fitvault/fitvault/internal/logger"
	"github.com/fitvault/fitvault/internal/persistence"
	"github.com/fitvault/fitvault/internal/store"
	"github.com/fitvault/fitvault/internal/vault"
)

const chatTimeout = 60 * time.Second

// App owns every long-lived component. Construct with New, release with
// Close.
type App struct {
	Opts *config.Options
	Log  *zap.Logger

	Keys  keystore.KeyStore
	Vault *vault.Vault

	Photos *store.PhotoStore
	Macros *store.MacroStore
	Health *store.HealthStore
	Game   *store.GamificationStore
	AI     *store.AIStore
}

// New loads configuration from configPath (and the environment) and wires
// up all components.
func New(configPath string) (*App, error) {
	opts, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New()
	if err := log.Init(opts.LogLevel); err != nil {
		return nil, err
	}

	keys, err := keystore.Open(opts.KeyDir, log.Log)
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}

	v, err := vault.New(opts.VaultDir, keys, log.Log)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	blob, err := persistence.NewBlob(opts.DataDir, log.Log)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}

	chat, err := aiclient.New(opts.AIBaseURL, opts.AICAFile, chatTimeout)
	if err != nil {
		return nil, fmt.Errorf("build chat client: %w", err)
	}

	return &App{
		Opts:   opts,
		Log:    log.Log,
		Keys:   keys,
		Vault:  v,
		Photos: store.NewPhotoStore(blob, v, log.Log),
		Macros: store.NewMacroStore(blob, log.Log),
		Health: store.NewHealthStore(blob, log.Log),
		Game:   store.NewGamificationStore(blob, log.Log),
		AI:     store.NewAIStore(blob, chat, log.Log),
	}, nil
}

// Close drains pending store writes and sweeps decrypted temp files.
func (a *App) Close() error {
	a.Photos.Close()
	a.Macros.Close()
	a.Health.Close()
	a.Game.Close()
	a.AI.Close()

	err := a.Vault.CleanupTempFiles()
	_ = a.Log.Sync()
	return err
}
