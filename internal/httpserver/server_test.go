package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"html"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"quartz-site/internal/auth"
	"quartz-site/internal/cache"
	"quartz-site/internal/content"
	"quartz-site/internal/inquiry"
	"quartz-site/internal/repo"
	"quartz-site/internal/site"
	"quartz-site/internal/storage"
	"quartz-site/internal/web"
	"quartz-site/migrations"
)

const (
	testAdminEmail    = "owner@svnexim.test"
	testAdminPassword = "correct horse battery"
)

var csrfField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// 1x1 grey PNG.
var testPNG, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

type testEnv struct {
	srv     *httptest.Server
	client  *http.Client
	repo    repo.Repository
	content *content.Service
	images  *storage.Service
	blobs   *blobStore
	server  *Server
}

// blobStore tracks which image keys the repository currently holds.
type blobStore struct {
	repo.Repository
	mu   sync.Mutex
	puts int
	keys map[string]bool
}

func (b *blobStore) PutImage(ctx context.Context, obj repo.ImageObject) error {
	if err := b.Repository.PutImage(ctx, obj); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts++
	b.keys[obj.Key] = true
	return nil
}

func (b *blobStore) DeleteImage(ctx context.Context, key string) error {
	if err := b.Repository.DeleteImage(ctx, key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.keys, key)
	return nil
}

func (b *blobStore) counts() (puts, held int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.puts, len(b.keys)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	repository, err := repo.Open(ctx, filepath.Join(t.TempDir(), "site.db"), "", logger)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(repository.Close)
	if err := repository.RunMigrations(ctx, migrations.Files); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	authSvc := auth.NewService(repository, auth.Config{Secret: []byte(strings.Repeat("s", 32))}, logger)
	if err := authSvc.Bootstrap(ctx, nil, testAdminEmail, testAdminPassword); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	wa := site.NewWhatsApp("+91 86391 32193")
	templates, err := web.NewTemplates(wa)
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	contentSvc := content.NewService(repository, cache.NewQuery(nil, time.Minute, logger, nil), logger, nil)
	blobs := &blobStore{Repository: repository, keys: map[string]bool{}}
	images := storage.NewService(blobs, 0, logger, nil)
	inquiries := inquiry.NewService(repository, nil, logger, nil)
	t.Cleanup(inquiries.Wait)

	server := New(Config{}, Dependencies{
		Repository: repository,
		Content:    contentSvc,
		Inquiries:  inquiries,
		Auth:       authSvc,
		Images:     images,
		Templates:  templates,
		WhatsApp:   wa,
		Company:    site.DefaultCompany,
	}, logger, nil)

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{srv: srv, client: client, repo: repository, content: contentSvc, images: images, blobs: blobs, server: server}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

// postFile sends form as multipart with one file attached under field.
func (e *testEnv) postFile(t *testing.T, path string, form url.Values, field, name string, data []byte) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				t.Fatalf("write field %s: %v", k, err)
			}
		}
	}
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	resp, err := e.client.Post(e.srv.URL+path, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

// token loads page and returns the CSRF token embedded in its first form.
func (e *testEnv) token(t *testing.T, page string) string {
	t.Helper()
	_, body := e.get(t, page)
	m := csrfField.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no csrf token on %s", page)
	}
	return html.UnescapeString(m[1])
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	form := url.Values{
		"csrf_token": {e.token(t, "/admin")},
		"email":      {testAdminEmail},
		"password":   {testAdminPassword},
	}
	resp, _ := e.post(t, "/admin", form)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/dashboard" {
		t.Fatalf("login: status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func TestHealthReportsBackend(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"backend":"sqlite"`) || !strings.Contains(body, `"status":"ok"`) {
		t.Fatalf("unexpected health body %s", body)
	}
}

func TestPublicPagesRender(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/", "/about", "/products", "/gallery", "/services", "/testimonials", "/faq", "/blog", "/contact", "/privacy"} {
		resp, body := env.get(t, path)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		if !strings.Contains(body, site.DefaultCompany.Name) {
			t.Fatalf("%s: company name missing from layout", path)
		}
	}
}

func TestMissingRecordsRenderNotFoundPanel(t *testing.T) {
	env := newTestEnv(t)
	cases := map[string]string{
		"/products/does-not-exist": "Product Not Found",
		"/blog/no-such-post":       "Post Not Found",
		"/nowhere":                 "Page Not Found",
	}
	for path, heading := range cases {
		resp, body := env.get(t, path)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.StatusCode)
		}
		if !strings.Contains(body, heading) {
			t.Fatalf("%s: expected %q in body", path, heading)
		}
	}
}

func TestUnpublishedPostIsHidden(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.content.CreateBlogPost(context.Background(), repo.BlogPostInput{
		Title:   "Draft about quartz grits",
		Slug:    "draft-grits",
		Content: strings.Repeat("Quartz grits are graded by size. ", 3),
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	resp, _ := env.get(t, "/blog/draft-grits")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected draft to 404, got %d", resp.StatusCode)
	}
}

func TestProductSearchFiltersListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"Quartz Grits", "Silica Sand"} {
		if _, err := env.content.CreateProduct(ctx, repo.ProductInput{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	_, body := env.get(t, "/products?q=grits")
	if !strings.Contains(body, "Quartz Grits") || strings.Contains(body, "Silica Sand") {
		t.Fatalf("search did not filter listing")
	}
}

func TestPostWithoutTokenIsRejected(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.post(t, "/contact/message", url.Values{"name": {"A"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestInquirySubmissionRedirectsWithOneTimeFlash(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{
		"csrf_token":               {env.token(t, "/contact")},
		"buyer.companyName":        {"Acme Silicon"},
		"buyer.contactPersonName":  {"Ravi"},
		"buyer.email":              {"ravi@acme.test"},
		"buyer.mobileWhatsApp":     {"+91 90000 00000"},
		"buyer.country":            {"India"},
		"quartz.typeLumps":         {"true"},
		"declaration.confirmation": {"true"},
		"declaration.name":         {"Ravi"},
		"declaration.date":         {"2026-10-15"},
	}
	resp, _ := env.post(t, "/contact", form)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/contact" {
		t.Fatalf("expected redirect to /contact, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	_, body := env.get(t, "/contact")
	if !strings.Contains(body, "Your inquiry has been submitted successfully") {
		t.Fatalf("expected success notice after redirect")
	}
	_, body = env.get(t, "/contact")
	if strings.Contains(body, "Your inquiry has been submitted successfully") {
		t.Fatalf("flash should only show once")
	}

	list, err := env.repo.ListInquiries(context.Background())
	if err != nil {
		t.Fatalf("list inquiries: %v", err)
	}
	if len(list) != 1 || list[0].CompanyName != "Acme Silicon" || list[0].IsRead {
		t.Fatalf("unexpected stored inquiries %+v", list)
	}
}

func TestInquiryValidationKeepsEnteredValues(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{
		"csrf_token":              {env.token(t, "/contact")},
		"buyer.companyName":       {"Acme Silicon"},
		"buyer.contactPersonName": {"Ravi"},
		"buyer.email":             {"not-an-email"},
	}
	resp, body := env.post(t, "/contact", form)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid email") || !strings.Contains(body, `value="Acme Silicon"`) {
		t.Fatalf("expected error notice and preserved values")
	}
}

func TestContactMessageStored(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{
		"csrf_token": {env.token(t, "/contact")},
		"name":       {"Meera"},
		"email":      {"meera@example.test"},
		"message":    {"Do you ship 99.9% quartz powder to Rotterdam?"},
	}
	resp, _ := env.post(t, "/contact/message", form)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	msgs, err := env.content.ContactMessages(context.Background())
	if err != nil || len(msgs) != 1 || msgs[0].Name != "Meera" {
		t.Fatalf("unexpected messages %+v err %v", msgs, err)
	}
}

func TestAdminPagesRequireSignIn(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/admin/dashboard", "/admin/products", "/admin/messages"} {
		resp, _ := env.get(t, path)
		if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin" {
			t.Fatalf("%s: expected redirect to login, got %d %q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
}

func TestAdminLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{
		"csrf_token": {env.token(t, "/admin")},
		"email":      {testAdminEmail},
		"password":   {"wrong"},
	}
	resp, body := env.post(t, "/admin", form)
	if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(body, "Invalid email or password.") {
		t.Fatalf("expected 401 with notice, got %d", resp.StatusCode)
	}
}

func TestAdminCategoryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	resp, body := env.get(t, "/admin/dashboard")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, testAdminEmail) {
		t.Fatalf("dashboard not shown after login: %d", resp.StatusCode)
	}

	form := url.Values{
		"csrf_token":    {env.token(t, "/admin/categories")},
		"name":          {"High Purity Quartz"},
		"description":   {"Semiconductor grade"},
		"display_order": {"2"},
	}
	resp, _ = env.post(t, "/admin/categories", form)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/categories" {
		t.Fatalf("create: %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	_, body = env.get(t, "/admin/categories")
	if !strings.Contains(body, "Category created successfully.") || !strings.Contains(body, "High Purity Quartz") {
		t.Fatalf("created category not listed")
	}

	cats, err := env.content.Categories(context.Background())
	if err != nil || len(cats) != 1 {
		t.Fatalf("categories %+v err %v", cats, err)
	}
	id := cats[0].ID

	_, body = env.get(t, "/admin/categories?edit="+id)
	if !strings.Contains(body, `value="Semiconductor grade"`) && !strings.Contains(body, ">Semiconductor grade<") {
		t.Fatalf("edit form not prefilled")
	}

	form = url.Values{
		"csrf_token": {env.token(t, "/admin/categories")},
		"name":       {"HPQ"},
	}
	resp, _ = env.post(t, "/admin/categories/"+id, form)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("update: %d", resp.StatusCode)
	}

	form = url.Values{
		"csrf_token": {env.token(t, "/admin/categories")},
		"name":       {"x"},
	}
	resp, body = env.post(t, "/admin/categories", form)
	if resp.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(body, `value="x"`) {
		t.Fatalf("expected 422 with kept input, got %d", resp.StatusCode)
	}

	resp, _ = env.post(t, "/admin/categories/"+id+"/delete", url.Values{"csrf_token": {env.token(t, "/admin/categories")}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	cats, _ = env.content.Categories(context.Background())
	if len(cats) != 0 {
		t.Fatalf("expected no categories after delete, got %d", len(cats))
	}
}

func TestAdminProductFormSplitsLines(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	form := url.Values{
		"csrf_token":  {env.token(t, "/admin/products")},
		"name":        {"Quartz Lumps"},
		"features":    {"SiO2 99.5%\n\n  Low iron  \n"},
		"is_featured": {"on"},
	}
	resp, _ := env.post(t, "/admin/products", form)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("create product: %d", resp.StatusCode)
	}
	products, err := env.content.Products(context.Background())
	if err != nil || len(products) != 1 {
		t.Fatalf("products %+v err %v", products, err)
	}
	p := products[0]
	if !p.IsFeatured || len(p.Features) != 2 || p.Features[1] != "Low iron" || p.CategoryID != nil {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestRejectedFormDiscardsItsUploads(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	form := url.Values{
		"csrf_token": {env.token(t, "/admin/categories")},
		"name":       {"x"},
		"image_url":  {"https://cdn.example.com/typed.png"},
	}
	resp, body := env.postFile(t, "/admin/categories", form, "image_url_file", "grit.png", testPNG)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if puts, held := env.blobs.counts(); puts != 1 || held != 0 {
		t.Fatalf("expected the upload to be stored then discarded, puts=%d held=%d", puts, held)
	}
	if strings.Contains(body, storage.URLPrefix) || !strings.Contains(body, "https://cdn.example.com/typed.png") {
		t.Fatalf("expected the form to show the typed image url again")
	}

	form = url.Values{
		"csrf_token": {env.token(t, "/admin/products")},
		"name":       {"Q"},
		"images":     {"https://cdn.example.com/one.png"},
	}
	resp, body = env.postFile(t, "/admin/products", form, "images_files", "lumps.png", testPNG)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for product, got %d", resp.StatusCode)
	}
	if puts, held := env.blobs.counts(); puts != 2 || held != 0 {
		t.Fatalf("expected product upload discarded, puts=%d held=%d", puts, held)
	}
	if strings.Contains(body, storage.URLPrefix) {
		t.Fatalf("product form still lists a discarded image")
	}

	form = url.Values{
		"csrf_token": {env.token(t, "/admin/categories")},
		"name":       {"Quartz Grit"},
	}
	resp, _ = env.postFile(t, "/admin/categories", form, "image_url_file", "grit.png", testPNG)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("create with upload: %d", resp.StatusCode)
	}
	if _, held := env.blobs.counts(); held != 1 {
		t.Fatalf("expected the accepted upload to be kept, held=%d", held)
	}
	cats, err := env.content.Categories(context.Background())
	if err != nil || len(cats) != 1 || !strings.HasPrefix(cats[0].ImageURL, storage.URLPrefix) {
		t.Fatalf("categories %+v err %v", cats, err)
	}
}

func TestBodyLimitFollowsImageLimit(t *testing.T) {
	env := newTestEnv(t)
	if got, want := env.server.cfg.MaxBodyBytes, int64(uploadBatch*storage.DefaultMaxBytes); got != want {
		t.Fatalf("expected body limit %d, got %d", want, got)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	resp, _ := env.post(t, "/admin/logout", url.Values{"csrf_token": {env.token(t, "/admin/dashboard")}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	resp, _ = env.get(t, "/admin/dashboard")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect after logout, got %d", resp.StatusCode)
	}
}

func TestImageRouteServesStoredUpload(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.images.Upload(context.Background(), "gallery", bytes.NewReader(testPNG))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp, body := env.get(t, u)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("image: %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if body != string(testPNG) {
		t.Fatalf("image bytes differ")
	}
	resp, _ = env.get(t, storage.URLPrefix+"missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing image, got %d", resp.StatusCode)
	}
}

func TestBasePathPrefixesRoutes(t *testing.T) {
	handler := mountWithBasePath("/site", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/site/products", nil))
	if rec.Body.String() != "/products" {
		t.Fatalf("expected stripped path, got %q", rec.Body.String())
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 outside base path, got %d", rec.Code)
	}
	if normaliseBasePath("site/") != "/site" || normaliseBasePath("/") != "" {
		t.Fatalf("normaliseBasePath mismatch")
	}
}

func TestAdminInquiryViewMarksRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inq, err := env.repo.CreateInquiry(ctx, repo.NewInquiry{
		CompanyName: "Nordic Glassworks",
		ContactName: "Ilse",
		Email:       "ilse@nordic.test",
		Payload:     map[string]any{"section1_buyerCompanyDetails": map[string]any{"companyName": "Nordic Glassworks"}},
	})
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}
	env.login(t)

	_, body := env.get(t, "/admin/messages")
	if !strings.Contains(body, "Nordic Glassworks") {
		t.Fatalf("inquiry missing from messages page")
	}
	resp, body := env.get(t, "/admin/inquiries/"+inq.ID)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "ilse@nordic.test") {
		t.Fatalf("inquiry detail: %d", resp.StatusCode)
	}
	got, err := env.repo.GetInquiry(ctx, inq.ID)
	if err != nil || !got.IsRead {
		t.Fatalf("expected inquiry marked read, got %+v err %v", got, err)
	}

	resp, _ = env.post(t, "/admin/inquiries/"+inq.ID+"/delete", url.Values{"csrf_token": {env.token(t, "/admin/messages")}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("delete inquiry: %d", resp.StatusCode)
	}
	if _, err := env.repo.GetInquiry(ctx, inq.ID); err == nil {
		t.Fatalf("expected inquiry to be gone")
	}
}
