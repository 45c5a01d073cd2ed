package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession means nobody is logged in; callers send the user to login.
	ErrNoSession = errors.New("not logged in")
	// ErrSessionExpired is returned by Init and Touch when the session outlived
	// the inactivity window or its token. The session is gone afterwards.
	ErrSessionExpired = errors.New("session expired")
)

// Home views per role.
const (
	HomeAdmin  = "bills"
	HomeTenant = "mybills"
)

// HomeFor returns the view a role lands on after login.
func HomeFor(role models.Role) string {
	if role == models.RoleAdmin {
		return HomeAdmin
	}
	return HomeTenant
}

// RoleMismatchError is returned by Require when the logged-in role may not
// open a view. Home is where the user should be sent instead.
type RoleMismatchError struct {
	Required models.Role
	Actual   models.Role
	Home     string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("%s access required (logged in as %s)", e.Required, e.Actual)
}

// SessionService owns the console's single session: it is initialised on
// boot, started by login, touched on every interaction and ended by logout
// or inactivity.
type SessionService interface {
	Init(ctx context.Context) (models.Session, error)
	Start(ctx context.Context, res models.LoginResult) (models.Session, error)
	Current() (models.Session, bool)
	Require(role models.Role) (models.Session, error)
	Touch(ctx context.Context) error
	End(ctx context.Context) error
	Window() time.Duration
}

type sessionService struct {
	repo   session.Repository
	client api.Client
	logger logging.Logger
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	current *models.Session
}

// NewSessionService binds the session store and the API client (whose bearer
// token follows the session). window is the inactivity limit.
func NewSessionService(repo session.Repository, client api.Client, logger logging.Logger, window time.Duration) SessionService {
	return &sessionService{repo: repo, client: client, logger: logger, window: window, now: time.Now}
}

func (s *sessionService) Window() time.Duration {
	return s.window
}

// Init loads the stored session. A session idle for longer than the window
// (or whose token already expired) is discarded and ErrSessionExpired returned.
func (s *sessionService) Init(ctx context.Context) (models.Session, error) {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		return models.Session{}, err
	}
	if stored == nil {
		return models.Session{}, ErrNoSession
	}

	now := s.now()
	if stored.Expired(now, s.window) {
		s.logger.Info(ctx, "stored session expired", "username", stored.Username, "last_activity", stored.LastActivity)
		if err := s.repo.Clear(ctx); err != nil {
			return models.Session{}, err
		}
		return models.Session{}, expiredError(*stored, now)
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()
	s.client.SetToken(stored.Token)

	return *stored, nil
}

// Start persists a fresh session from a successful login.
func (s *sessionService) Start(ctx context.Context, res models.LoginResult) (models.Session, error) {
	sess := models.Session{
		Username:     res.Username,
		Role:         models.ParseRole(res.Role),
		Token:        res.Token,
		LastActivity: s.now(),
	}

	if res.Token != "" {
		claims, err := parseTokenClaims(res.Token)
		switch {
		case errors.Is(err, common.ErrInvalidToken):
			s.logger.Info(ctx, "login token is opaque, no expiry known", "error", err)
		case err != nil:
			s.logger.Warn(ctx, "reading login token", "error", err)
		default:
			if claims.ExpiresAt != nil {
				sess.ExpiresAt = claims.ExpiresAt.Time
			}
			if res.Role == "" && claims.Role != "" {
				sess.Role = models.ParseRole(claims.Role)
			}
			if sess.Username == "" {
				sess.Username = claims.Subject
			}
		}
	}

	if err := s.repo.Save(ctx, sess); err != nil {
		return models.Session{}, err
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.client.SetToken(sess.Token)

	return sess, nil
}

func (s *sessionService) Current() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Session{}, false
	}
	return *s.current, true
}

// Require guards a view. An empty role accepts any logged-in user.
func (s *sessionService) Require(role models.Role) (models.Session, error) {
	cur, ok := s.Current()
	if !ok {
		return models.Session{}, ErrNoSession
	}
	if role != "" && cur.Role != role {
		return models.Session{}, &RoleMismatchError{Required: role, Actual: cur.Role, Home: HomeFor(cur.Role)}
	}
	return cur, nil
}

// Touch records user activity in memory and in the store. A session already
// past the window is ended instead and ErrSessionExpired returned; the
// watcher's timer does not advance while the machine is suspended.
func (s *sessionService) Touch(ctx context.Context) error {
	now := s.now()

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	cur := *s.current
	expired := cur.Expired(now, s.window)
	if !expired {
		s.current.LastActivity = now
	}
	s.mu.Unlock()

	if expired {
		s.logger.Info(ctx, "session expired before activity", "username", cur.Username, "last_activity", cur.LastActivity)
		if err := s.End(ctx); err != nil {
			return errors.Join(expiredError(cur, now), err)
		}
		return expiredError(cur, now)
	}

	return s.repo.Touch(ctx, now)
}

// expiredError tells a lapsed token apart from plain inactivity; both match
// ErrSessionExpired.
func expiredError(sess models.Session, now time.Time) error {
	if sess.TokenExpired(now) {
		return fmt.Errorf("%w: %w", ErrSessionExpired, common.ErrTokenExpired)
	}
	return ErrSessionExpired
}

// End clears the session everywhere. Ending twice is harmless.
func (s *sessionService) End(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.client.SetToken("")

	return s.repo.Clear(ctx)
}

// tokenClaims is what the backend may put into its login token.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// parseTokenClaims reads the claims without verifying the signature: the
// signing key belongs to the backend, the console only needs expiry and role.
func parseTokenClaims(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	return claims, nil
}
