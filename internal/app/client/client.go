package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/slog"

	"surveysync/internal/app/client/config"
	"surveysync/internal/domain/masterdata"
	"surveysync/internal/domain/survey"
	"surveysync/internal/domain/user"
	"surveysync/internal/infrastructure/storage"
	"surveysync/internal/infrastructure/storage/images"
	"surveysync/internal/infrastructure/storage/kv"
)

// App wires the offline survey client together: one store handle, the
// compressed cache, the image store, the survey repository, the
// reference caches and the sync engine.
type App struct {
	config    *config.Config
	log       *slog.Logger
	handle    *storage.Handle
	kv        *kv.Store
	images    *images.FileStore
	surveys   *survey.Repository
	master    *masterdata.Cache
	collector *collectorClient
	engine    *SyncEngine
	state     *AppState
}

// AppState is the small on-disk state next to the token: who is
// logged in and when the last successful sync ran.
type AppState struct {
	Username string    `json:"username"`
	UserID   int       `json:"user_id"`
	Role     user.Role `json:"role"`
	LastSync time.Time `json:"last_sync"`
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	handle, err := storage.Open(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	kvStore := kv.NewStore(handle, log)
	imageStore := images.NewFileStore(handle, cfg.ImageDir, log)
	surveys := survey.NewRepository(kvStore, imageStore, log)
	collector := newCollectorClient(cfg, log)
	master := masterdata.NewCache(kvStore, collector, log)
	engine := NewSyncEngine(surveys, collector, kvStore, log)

	app := &App{
		config:    cfg,
		log:       log,
		handle:    handle,
		kv:        kvStore,
		images:    imageStore,
		surveys:   surveys,
		master:    master,
		collector: collector,
		engine:    engine,
		state:     &AppState{},
	}

	if state, err := loadAppState(cfg); err == nil {
		app.state = state
	}

	if token, err := app.Token(); err == nil && token != "" {
		collector.SetToken(token)
		log.Debug("token loaded from file")
	}

	return app, nil
}

// Surveys exposes the local survey repository.
func (a *App) Surveys() *survey.Repository {
	return a.surveys
}

// Master exposes the master-data and assignment cache.
func (a *App) Master() *masterdata.Cache {
	return a.master
}

// State returns the persisted login state.
func (a *App) State() AppState {
	return *a.state
}

// CheckConnection verifies the collector is reachable.
func (a *App) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout())
	defer cancel()
	return a.collector.Health(ctx)
}

// IsAuthenticated reports whether a token is available.
func (a *App) IsAuthenticated() bool {
	token, err := a.Token()
	return err == nil && token != ""
}

// Login authenticates against the collector, stores the token and the
// user identity, and refreshes the reference caches while the device
// is known to be online.
func (a *App) Login(ctx context.Context, username, password string) (*user.User, error) {
	resp, err := a.collector.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := a.saveToken(resp.Token); err != nil {
		return nil, err
	}

	a.state.Username = resp.User.Username
	a.state.UserID = resp.User.UserID
	a.state.Role = resp.User.Role
	if err := a.saveAppState(); err != nil {
		a.log.Warn("login state not saved", "error", err)
	}

	if err := a.master.Refresh(ctx); err != nil {
		a.log.Warn("reference data refresh failed", "error", err)
	}

	a.log.Info("logged in", "username", resp.User.Username, "role", resp.User.Role)
	return &resp.User, nil
}

// Logout drops the token. Local surveys stay on the device.
func (a *App) Logout() error {
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	a.collector.SetToken("")
	a.state.Username = ""
	a.state.UserID = 0
	a.state.Role = ""
	if err := a.saveAppState(); err != nil {
		a.log.Warn("logout state not saved", "error", err)
	}
	return nil
}

// Sync uploads every submitted survey on behalf of the logged-in
// surveyor.
func (a *App) Sync(ctx context.Context) (SyncResult, error) {
	if !a.IsAuthenticated() {
		return SyncResult{}, user.ErrNotAuthenticated
	}

	result, err := a.engine.SyncAll(ctx, a.state.UserID)
	if err != nil {
		return result, err
	}

	if result.SuccessCount > 0 {
		a.state.LastSync = time.Now().UTC()
		if err := a.saveAppState(); err != nil {
			a.log.Warn("sync state not saved", "error", err)
		}
	}
	return result, nil
}

// PendingSurveys returns the surveys waiting for upload.
func (a *App) PendingSurveys() []survey.LocalSurvey {
	return a.engine.Pending()
}

// SyncedLog returns the audit log of accepted surveys.
func (a *App) SyncedLog() []SyncedEntry {
	return a.engine.SyncedLog()
}

// AttachPhoto files a captured photo under the survey. The returned
// URI may be the original temporary one when the image store is
// degraded — the survey save still goes through.
func (a *App) AttachPhoto(surveyID, srcURI, label string) (string, error) {
	if _, err := a.surveys.GetByID(surveyID); err != nil {
		return "", err
	}
	return a.images.Store(surveyID, srcURI, label), nil
}

// Photos lists the survey's stored images.
func (a *App) Photos(surveyID string) []images.Image {
	return a.images.List(surveyID)
}

// CleanupOrphans reconciles photo files with their rows.
func (a *App) CleanupOrphans() {
	a.images.CleanupOrphans()
}

// Token returns the saved bearer token.
func (a *App) Token() (string, error) {
	raw, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: run 'surveysync auth login'", user.ErrNotAuthenticated)
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return string(raw), nil
}

func (a *App) saveToken(token string) error {
	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	a.collector.SetToken(token)
	return nil
}

// Shutdown closes the store handle.
func (a *App) Shutdown() {
	if err := a.handle.Close(); err != nil {
		a.log.Warn("local storage close failed", "error", err)
	}
}

func statePath(cfg *config.Config) string {
	return filepath.Join(cfg.ConfigDir, "state.json")
}

func loadAppState(cfg *config.Config) (*AppState, error) {
	raw, err := os.ReadFile(statePath(cfg))
	if err != nil {
		return nil, err
	}

	var state AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (a *App) saveAppState() error {
	raw, err := json.MarshalIndent(a.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(statePath(a.config), raw, 0600)
}
