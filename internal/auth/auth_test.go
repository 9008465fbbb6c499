package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"quartz-site/internal/repo"

	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	accounts map[string]string
	admins   map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: map[string]string{}, admins: map[string]bool{}}
}

func (f *fakeStore) GetAccount(_ context.Context, email string) (*repo.Account, error) {
	hash, ok := f.accounts[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &repo.Account{Email: email, PasswordHash: hash}, nil
}

func (f *fakeStore) UpsertAccount(_ context.Context, email, hash string) error {
	f.accounts[email] = hash
	return nil
}

func (f *fakeStore) IsAdmin(_ context.Context, email string) (bool, error) {
	return f.admins[email], nil
}

func (f *fakeStore) SyncAdmins(_ context.Context, emails []string) error {
	for _, e := range emails {
		f.admins[e] = true
	}
	return nil
}

func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, Config{Secret: []byte("0123456789abcdef0123456789abcdef")}, logger)
}

func addAccount(t *testing.T, store *fakeStore, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store.accounts[email] = string(hash)
}

func TestAuthenticate(t *testing.T) {
	store := newFakeStore()
	addAccount(t, store, "admin@svn.test", "s3cret-pass")
	addAccount(t, store, "staff@svn.test", "s3cret-pass")
	store.admins["admin@svn.test"] = true
	svc := newTestService(t, store)
	ctx := context.Background()

	email, err := svc.Authenticate(ctx, "  Admin@SVN.test ", "s3cret-pass")
	if err != nil || email != "admin@svn.test" {
		t.Fatalf("expected admin sign in, got %q %v", email, err)
	}
	if _, err := svc.Authenticate(ctx, "admin@svn.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@svn.test", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown account, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "staff@svn.test", "s3cret-pass"); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected not admin, got %v", err)
	}
}

func TestRequireAdminRedirectsAnonymous(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	handler := svc.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/admin" {
		t.Fatalf("expected redirect to /admin, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestSignInThenAccessAndRevoke(t *testing.T) {
	store := newFakeStore()
	addAccount(t, store, "admin@svn.test", "s3cret-pass")
	store.admins["admin@svn.test"] = true
	svc := newTestService(t, store)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	if err := svc.SignIn(rr, req, "admin@svn.test", "s3cret-pass"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	var seen string
	handler := svc.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = AdminEmail(r.Context())
	}))
	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "admin@svn.test" {
		t.Fatalf("expected admin on context, got %q", seen)
	}

	delete(store.admins, "admin@svn.test")
	seen = ""
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(rr, req)
	if seen != "" || rr.Code != http.StatusSeeOther {
		t.Fatalf("expected revoked admin redirected, got %d seen=%q", rr.Code, seen)
	}
}

func TestFlashesAreOneTime(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	rr := httptest.NewRecorder()
	svc.AddFlash(rr, httptest.NewRequest(http.MethodPost, "/admin/faqs", nil), FlashSuccess, "FAQ saved")
	cookies := rr.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/admin/faqs", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	flashes := svc.Flashes(httptest.NewRecorder(), req)
	if len(flashes) != 1 || flashes[0].Kind != FlashSuccess || flashes[0].Message != "FAQ saved" {
		t.Fatalf("unexpected flashes %+v", flashes)
	}
	if again := svc.Flashes(httptest.NewRecorder(), req); len(again) != 0 {
		t.Fatalf("expected flashes consumed within the request, got %+v", again)
	}
}

func TestBootstrapAddsAccountAndAllowList(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	err := svc.Bootstrap(context.Background(), []string{"ops@svn.test"}, " Owner@SVN.test", "owner-pass")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !store.admins["ops@svn.test"] || !store.admins["owner@svn.test"] {
		t.Fatalf("expected both emails allowed, got %v", store.admins)
	}
	if _, err := svc.Authenticate(context.Background(), "owner@svn.test", "owner-pass"); err != nil {
		t.Fatalf("bootstrap account should sign in: %v", err)
	}
}
