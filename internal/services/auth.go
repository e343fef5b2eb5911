package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
)

const minPasswordLength = 6

// AuthConfig configures an Authenticator.
type AuthConfig struct {
	SessionDuration time.Duration
	Secret          []byte
	BcryptCost      int
}

// ResolvedSession is a live session together with its user.
type ResolvedSession struct {
	models.Session
	User *models.User
	// Renewed is set when the expiry was pushed out during resolution.
	Renewed bool
}

// Authenticator registers users, opens sessions and resolves session tokens.
type Authenticator struct {
	db     *storage.DB
	cfg    AuthConfig
	logger *log.Logger
	now    Clock

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(db *storage.DB, cfg AuthConfig, logger *log.Logger, now Clock) *Authenticator {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = auth.DefaultCost
	}
	return &Authenticator{
		db:     db,
		cfg:    cfg,
		logger: orDiscard(logger).WithComponent(log.ComponentAuth),
		now:    orNow(now),
	}
}

// Register creates a user with a bcrypt-hashed password.
func (a *Authenticator) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	switch {
	case name == "":
		return nil, models.Invalid("name is required")
	case email == "" || !strings.Contains(email, "@"):
		return nil, models.Invalid("a valid email is required")
	case len(password) < minPasswordLength:
		return nil, models.Invalid("password must be at least %d characters", minPasswordLength)
	}

	if _, err := a.db.GetUserByEmail(ctx, email); err == nil {
		return nil, models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(password, a.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	// The unique index settles concurrent registrations.
	user, err := a.db.CreateUser(ctx, name, email, hash)
	if err != nil {
		return nil, err
	}
	a.logger.InfoContext(ctx, "User registered", log.FieldOperation, log.OpRegister, log.FieldUserID, user.ID)
	return user, nil
}

// Authenticate checks credentials and opens a session for the user. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*ResolvedSession, error) {
	user, err := a.db.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, models.ErrUserNotFound) {
		// Spend the same bcrypt time as a real comparison.
		auth.CheckPassword(password, a.dummy())
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	expiresAt := now.Add(a.cfg.SessionDuration)
	if err := a.db.CreateSession(ctx, a.hash(token), user.ID, expiresAt, now); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "Session opened", log.FieldOperation, log.OpLogin, log.FieldUserID, user.ID)
	return &ResolvedSession{
		Session: models.Session{
			Token:        token,
			UserID:       user.ID,
			ExpiresAt:    expiresAt,
			LastActivity: now,
		},
		User: user,
	}, nil
}

// Resolve looks up a live session. It returns nil, nil for absent, unknown or
// expired tokens. Sessions past half their lifetime are renewed for the full
// duration.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*ResolvedSession, error) {
	if token == "" {
		return nil, nil
	}

	now := a.now().UTC()
	hash := a.hash(token)
	info, err := a.db.ValidateSession(ctx, hash, now)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedSession{
		Session: models.Session{
			Token:        token,
			UserID:       info.User.ID,
			ExpiresAt:    info.ExpiresAt,
			LastActivity: info.LastActivity,
		},
		User: info.User,
	}

	if info.ExpiresAt.Sub(now) < a.cfg.SessionDuration/2 {
		newExpiresAt := now.Add(a.cfg.SessionDuration)
		if err := a.db.RenewSession(ctx, hash, newExpiresAt, now); err != nil {
			// The session is still valid; renewal can wait for the next request.
			a.logger.WarnContext(ctx, "Failed to renew session", log.FieldUserID, info.User.ID, log.FieldError, err)
			return resolved, nil
		}
		resolved.ExpiresAt = newExpiresAt
		resolved.LastActivity = now
		resolved.Renewed = true
	}
	return resolved, nil
}

// CurrentUser resolves a token to its user, or nil when there is none.
func (a *Authenticator) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	s, err := a.Resolve(ctx, token)
	if err != nil || s == nil {
		return nil, err
	}
	return s.User, nil
}

// Logout deletes the session immediately.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := a.db.DeleteSession(ctx, a.hash(token)); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "Session closed", log.FieldOperation, log.OpLogout)
	return nil
}

// PurgeExpired removes sessions that have expired by the Authenticator's clock.
func (a *Authenticator) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := a.db.CleanExpiredSessions(ctx, a.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		a.logger.InfoContext(ctx, "Purged expired sessions", "count", n)
	}
	return n, nil
}

// EnsureBootstrapUser registers the given account when no user exists yet.
// It reports whether an account was created.
func (a *Authenticator) EnsureBootstrapUser(ctx context.Context, name, email, password string) (bool, error) {
	count, err := a.db.UserCount(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := a.Register(ctx, name, email, password); err != nil {
		return false, fmt.Errorf("bootstrap user: %w", err)
	}
	return true, nil
}

func (a *Authenticator) hash(token string) string {
	return auth.HashToken(a.cfg.Secret, token)
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = auth.HashPassword("dummy-password-for-timing", a.cfg.BcryptCost)
	})
	return a.dummyHash
}
