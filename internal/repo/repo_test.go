package repo

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"quartz-site/migrations"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	ctx := context.Background()
	r, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "test.db"), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(r.Close)
	if err := r.RunMigrations(ctx, migrations.Files); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return r
}

func TestOpenPicksBackendFromURL(t *testing.T) {
	r, err := Open(context.Background(), filepath.Join(t.TempDir(), "site.db"), "", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()
	if r.Backend() != "sqlite" {
		t.Fatalf("expected sqlite backend, got %s", r.Backend())
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	r := newTestSQLite(t)
	if err := r.RunMigrations(context.Background(), migrations.Files); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}

func TestProductRoundTripWithCategory(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLite(t)

	cat, err := r.CreateCategory(ctx, CategoryInput{Name: "Calacatta", DisplayOrder: 1})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	p, err := r.CreateProduct(ctx, ProductInput{
		Name:       "Calacatta Gold",
		CategoryID: &cat.ID,
		Features:   []string{"Heat resistant", "Non porous"},
		Images:     []string{"/images/products/a.jpg"},
		IsFeatured: true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.CategoryName != "Calacatta" {
		t.Fatalf("expected category name, got %q", p.CategoryName)
	}
	if len(p.Features) != 2 || p.Features[1] != "Non porous" {
		t.Fatalf("unexpected features %v", p.Features)
	}
	if p.CoverImage() != "/images/products/a.jpg" {
		t.Fatalf("unexpected cover image %q", p.CoverImage())
	}

	if _, err := r.CreateProduct(ctx, ProductInput{Name: "Plain White", DisplayOrder: 2}); err != nil {
		t.Fatalf("create second product: %v", err)
	}

	featured, err := r.ListProducts(ctx, ProductFilter{FeaturedOnly: true})
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if len(featured) != 1 || featured[0].ID != p.ID {
		t.Fatalf("expected only the featured product, got %d", len(featured))
	}

	byCategory, err := r.ListProducts(ctx, ProductFilter{CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(byCategory) != 1 {
		t.Fatalf("expected 1 product in category, got %d", len(byCategory))
	}

	if err := r.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	orphan, err := r.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product after category delete: %v", err)
	}
	if orphan.CategoryID != nil || orphan.CategoryName != "" {
		t.Fatalf("expected product to lose its category, got %v %q", orphan.CategoryID, orphan.CategoryName)
	}
}

func TestProductUnknownCategoryIsInvalidReference(t *testing.T) {
	r := newTestSQLite(t)
	missing := "does-not-exist"
	_, err := r.CreateProduct(context.Background(), ProductInput{Name: "Ghost", CategoryID: &missing})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestMissingRecordsReturnNotFound(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLite(t)

	if _, err := r.GetProduct(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}
	if _, err := r.UpdateFAQ(ctx, "nope", FAQInput{Question: "Why?", Answer: "Because."}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from update, got %v", err)
	}
	if err := r.DeleteTestimonial(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from delete, got %v", err)
	}
	if err := r.SetInquiryRead(ctx, "nope", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from mark read, got %v", err)
	}
}

func TestBlogSlugIsUniqueAndPublishedFilter(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLite(t)

	published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := r.CreateBlogPost(ctx, BlogPostInput{
		Title: "Caring for quartz", Slug: "caring-for-quartz", Content: "Wipe with a soft cloth.",
		IsPublished: true, PublishedAt: &published,
	}); err != nil {
		t.Fatalf("create published post: %v", err)
	}
	draft, err := r.CreateBlogPost(ctx, BlogPostInput{Title: "Draft", Slug: "draft", Content: "Not ready yet at all."})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if draft.PublishedAt != nil {
		t.Fatalf("draft should have no publish date")
	}

	_, err = r.CreateBlogPost(ctx, BlogPostInput{Title: "Again", Slug: "draft", Content: "Duplicate slug body."})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate slug, got %v", err)
	}

	posts, err := r.ListBlogPosts(ctx, BlogPostFilter{PublishedOnly: true})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "caring-for-quartz" {
		t.Fatalf("expected only the published post, got %d", len(posts))
	}
	if posts[0].PublishedAt == nil || !posts[0].PublishedAt.Equal(published) {
		t.Fatalf("unexpected publish date %v", posts[0].PublishedAt)
	}

	if _, err := r.GetBlogPostBySlug(ctx, "draft", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected draft hidden from public lookup, got %v", err)
	}
	if _, err := r.GetBlogPostBySlug(ctx, "draft", false); err != nil {
		t.Fatalf("expected draft visible to admin lookup: %v", err)
	}
}

func TestInquiryPayloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLite(t)

	created := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	inq, err := r.CreateInquiry(ctx, NewInquiry{
		CompanyName: "Acme Stone",
		ContactName: "Jo",
		Email:       "jo@acme.test",
		Payload: map[string]any{
			"section1_buyerCompanyDetails": map[string]any{"companyName": "Acme Stone"},
			"section5_packingDetails": map[string]any{"bulk": false},
		},
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("create inquiry: %v", err)
	}
	if inq.IsRead {
		t.Fatal("new inquiry should be unread")
	}

	got, err := r.GetInquiry(ctx, inq.ID)
	if err != nil {
		t.Fatalf("get inquiry: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at %v, got %v", created, got.CreatedAt)
	}
	section, ok := got.Payload["section5_packingDetails"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested section, got %T", got.Payload["section5_packingDetails"])
	}
	if section["bulk"] != false {
		t.Fatalf("expected false to survive, got %v", section["bulk"])
	}

	if err := r.SetInquiryRead(ctx, inq.ID, true); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	list, err := r.ListInquiries(ctx)
	if err != nil {
		t.Fatalf("list inquiries: %v", err)
	}
	if len(list) != 1 || !list[0].IsRead {
		t.Fatalf("expected one read inquiry, got %+v", list)
	}
}

func TestContactMessagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLite(t)

	first, err := r.CreateContactMessage(ctx, ContactMessageInput{Name: "Ann", Email: "ann@x.test", Message: "First message here"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := r.CreateContactMessage(ctx, ContactMessageInput{Name: "Ben", Email: "ben@x.test", Message: "Second message here"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	msgs, err := r.ListContactMessages(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != second.ID || msgs[1].ID != first.ID {
		t.Fatalf("expected newest first")
	}
	if msgs[0].IsRead {
		t.Fatal("expected unread")
	}
}

func TestIsAdminExactLowercaseMatch(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLite(t)

	if err := r.SyncAdmins(ctx, []string{"  Owner@SVNGlobal.com "}); err != nil {
		t.Fatalf("sync admins: %v", err)
	}
	if err := r.SyncAdmins(ctx, []string{"owner@svnglobal.com"}); err != nil {
		t.Fatalf("sync admins twice: %v", err)
	}

	cases := map[string]bool{
		"owner@svnglobal.com":    true,
		"OWNER@svnglobal.com":    true,
		"owner@svnglobal.co":     false,
		"owner@svnglobal.com.au": false,
		"":                       false,
	}
	for email, want := range cases {
		got, err := r.IsAdmin(ctx, email)
		if err != nil {
			t.Fatalf("is admin %q: %v", email, err)
		}
		if got != want {
			t.Fatalf("IsAdmin(%q) = %v, want %v", email, got, want)
		}
	}
}

func TestAccountUpsertReplacesHash(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLite(t)

	if err := r.UpsertAccount(ctx, "Admin@Example.com", "hash-1"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := r.UpsertAccount(ctx, "admin@example.com", "hash-2"); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	acc, err := r.GetAccount(ctx, "ADMIN@example.com")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acc.PasswordHash != "hash-2" {
		t.Fatalf("expected replaced hash, got %q", acc.PasswordHash)
	}
}

func TestImageBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLite(t)

	data := []byte{0x89, 'P', 'N', 'G'}
	if err := r.PutImage(ctx, ImageObject{Key: "products/a.png", Folder: "products", ContentType: "image/png", Size: 4, Data: data}); err != nil {
		t.Fatalf("put image: %v", err)
	}
	err := r.PutImage(ctx, ImageObject{Key: "products/a.png", Folder: "products", ContentType: "image/png", Size: 4, Data: data})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate key, got %v", err)
	}
	obj, err := r.GetImage(ctx, "products/a.png")
	if err != nil {
		t.Fatalf("get image: %v", err)
	}
	if string(obj.Data) != string(data) || obj.ContentType != "image/png" {
		t.Fatalf("unexpected image %+v", obj)
	}
	if err := r.DeleteImage(ctx, "products/a.png"); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	if _, err := r.GetImage(ctx, "products/a.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	got := rebind("UPDATE t SET a = ?, b = ? WHERE id = ?")
	want := "UPDATE t SET a = $1, b = $2 WHERE id = $3"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
