package app

import (
	"fmt"
	"strings"
	"time"

	"epaperadmin/pkg/auth"
	"epaperadmin/pkg/domain"
	"epaperadmin/pkg/storage"
	"epaperadmin/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	Driver        string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	JWTSecret     string
	StoragePath   string

	// Overrides for tests.
	Store    store.Store
	Sessions store.SessionStore
	Files    *storage.FileStore
	Objects  storage.ObjectStore
}

// App wires the repositories, session store and file storage together.
// It is the only layer handlers talk to.
type App struct {
	store    store.Store
	sessions store.SessionStore
	files    *storage.FileStore
	objects  storage.ObjectStore
}

// New constructs the application. The database must be reachable; a
// failed open is fatal because no page can render without the store.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.Driver, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("store unavailable: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case strings.TrimSpace(cfg.JWTSecret) != "":
			var err error
			sessionStore, err = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
			if err != nil {
				return nil, fmt.Errorf("init jwt session store: %w", err)
			}
		case strings.TrimSpace(cfg.RedisAddr) != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			return nil, fmt.Errorf("redisAddr or jwtSecret is required for sessions")
		}
	}

	files := cfg.Files
	if files == nil {
		var err error
		files, err = storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("init file store: %w", err)
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
		files:    files,
		objects:  cfg.Objects,
	}, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(username, password string) (domain.AdminUser, string, error) {
	username = strings.TrimSpace(username)
	user, ok, err := a.store.GetUserByUsername(username)
	if err != nil {
		return domain.AdminUser{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.AdminUser{}, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.AdminUser{}, "", ErrUserDisabled
	}
	if a.store.UserColumns().Has("locked_until") && user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		return domain.AdminUser{}, "", ErrUserLocked
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.AdminUser{}, "", ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if err := a.store.RecordLogin(user.ID, now); err != nil {
		return domain.AdminUser{}, "", fmt.Errorf("record login: %w", err)
	}
	user.LastLogin = &now
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.AdminUser{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Logout invalidates a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// PrincipalFromToken resolves a session token to the authenticated
// admin. Disabled accounts do not resolve.
func (a *App) PrincipalFromToken(token string) (domain.Principal, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.Principal{}, false
	}
	user, found, err := a.store.GetUser(uid)
	if err != nil || !found || !user.IsActive {
		return domain.Principal{}, false
	}
	return domain.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}, true
}
