package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"quartz-site/internal/repo"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionName = "qs_session"
	emailKey    = "admin_email"
	loginPath   = "/admin"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotAdmin is returned when the account is valid but not on the admin list.
	ErrNotAdmin = errors.New("account is not authorized for the admin area")
)

// Store is the subset of the repository used by auth.
type Store interface {
	GetAccount(ctx context.Context, email string) (*repo.Account, error)
	UpsertAccount(ctx context.Context, email, passwordHash string) error
	IsAdmin(ctx context.Context, email string) (bool, error)
	SyncAdmins(ctx context.Context, emails []string) error
}

// Config holds session cookie settings.
type Config struct {
	Secret []byte
	Secure bool
	// LoginURL is where unauthenticated admin requests are sent. Defaults
	// to /admin.
	LoginURL string
}

// Service signs admins in and out and guards the admin routes.
type Service struct {
	store    Store
	sessions *sessions.CookieStore
	loginURL string
	logger   *slog.Logger
}

type ctxKey struct{}

// NewService builds the auth service with a cookie-backed session store.
func NewService(store Store, cfg Config, logger *slog.Logger) *Service {
	cookies := sessions.NewCookieStore(cfg.Secret)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60 * 12,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	loginURL := cfg.LoginURL
	if loginURL == "" {
		loginURL = loginPath
	}
	return &Service{
		store:    store,
		sessions: cookies,
		loginURL: loginURL,
		logger:   logger.With("component", "auth"),
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticate checks the credentials and the admin allow-list.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = normaliseEmail(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	account, err := s.store.GetAccount(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	ok, err := s.store.IsAdmin(ctx, email)
	if err != nil {
		return "", fmt.Errorf("check admin: %w", err)
	}
	if !ok {
		return "", ErrNotAdmin
	}
	return email, nil
}

// SignIn authenticates and stores the admin email in the session.
func (s *Service) SignIn(w http.ResponseWriter, r *http.Request, email, password string) error {
	admin, err := s.Authenticate(r.Context(), email, password)
	if err != nil {
		return err
	}
	session := s.session(r)
	session.Values[emailKey] = admin
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("admin signed in", "email", admin)
	return nil
}

// SignOut clears the session.
func (s *Service) SignOut(w http.ResponseWriter, r *http.Request) error {
	session := s.session(r)
	delete(session.Values, emailKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SessionEmail returns the email stored in the session, if any.
func (s *Service) SessionEmail(r *http.Request) string {
	email, _ := s.session(r).Values[emailKey].(string)
	return email
}

// RequireAdmin re-checks the allow-list on every request and redirects to
// the login page when the visitor is not a signed-in admin.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := s.SessionEmail(r)
		if email == "" {
			http.Redirect(w, r, s.loginURL, http.StatusSeeOther)
			return
		}
		ok, err := s.store.IsAdmin(r.Context(), email)
		if err != nil {
			s.logger.Error("admin check failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if !ok {
			s.logger.Warn("session email no longer on admin list", "email", email)
			_ = s.SignOut(w, r)
			http.Redirect(w, r, s.loginURL, http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminEmail returns the admin email placed on the context by RequireAdmin.
func AdminEmail(ctx context.Context) string {
	email, _ := ctx.Value(ctxKey{}).(string)
	return email
}

// Bootstrap syncs the configured allow-list and upserts the optional
// bootstrap account, adding it to the list.
func (s *Service) Bootstrap(ctx context.Context, adminEmails []string, email, password string) error {
	emails := append([]string(nil), adminEmails...)
	email = normaliseEmail(email)
	if email != "" {
		emails = append(emails, email)
	}
	if len(emails) > 0 {
		if err := s.store.SyncAdmins(ctx, emails); err != nil {
			return fmt.Errorf("sync admins: %w", err)
		}
	}
	if email == "" {
		return nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.store.UpsertAccount(ctx, email, hash); err != nil {
		return fmt.Errorf("upsert bootstrap account: %w", err)
	}
	s.logger.Info("bootstrap admin ready", "email", email)
	return nil
}

func (s *Service) session(r *http.Request) *sessions.Session {
	// A cookie signed with an old secret yields a fresh session and an error.
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		s.logger.Debug("discarding unreadable session", "error", err)
	}
	return session
}
