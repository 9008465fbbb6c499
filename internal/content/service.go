package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quartz-site/internal/cache"
	"quartz-site/internal/metrics"
	"quartz-site/internal/repo"
)

const (
	// FeaturedLimit caps featured products and testimonials on the home page.
	FeaturedLimit = 6

	defaultRating = 5
)

// Cache key families. Mutations invalidate the whole family.
const (
	keyProducts        = "products"
	keyCategories      = "categories"
	keyGallery         = "gallery"
	keyTestimonials    = "testimonials"
	keyServices        = "services"
	keyFAQs            = "faqs"
	keyBlogPosts       = "blog_posts"
	keyContactMessages = "contact_messages"
	keyInquiries       = "quartz_inquiries"
)

// Service serves catalogue and editorial content with cached reads.
type Service struct {
	repo    repo.Repository
	cache   *cache.Query
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService wires the content service.
func NewService(r repo.Repository, q *cache.Query, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    r,
		cache:   q,
		logger:  logger.With("component", "content"),
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Cache keys: extra lists sit under <family>:list: and single records under
// <family>:id: or <family>:slug:, so a record key never equals a list key.
func listKey(family, name string) string { return family + ":list:" + name }

func recordKey(family, id string) string { return family + ":id:" + id }

func slugKey(family, slug string) string { return family + ":slug:" + slug }

func (s *Service) invalidate(ctx context.Context, families ...string) {
	for _, f := range families {
		s.cache.Invalidate(ctx, f)
	}
}

func (s *Service) mutationFailed(action string, err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		s.logger.Error(action+" failed", "error", err)
		s.metrics.Error("content")
	}
	return err
}

// Products

// Products lists every product in display order.
func (s *Service) Products(ctx context.Context) ([]repo.Product, error) {
	return cache.Fetch(ctx, s.cache, keyProducts, func(ctx context.Context) ([]repo.Product, error) {
		return s.repo.ListProducts(ctx, repo.ProductFilter{})
	})
}

// FeaturedProducts lists up to FeaturedLimit featured products.
func (s *Service) FeaturedProducts(ctx context.Context) ([]repo.Product, error) {
	return cache.Fetch(ctx, s.cache, listKey(keyProducts, "featured"), func(ctx context.Context) ([]repo.Product, error) {
		return s.repo.ListProducts(ctx, repo.ProductFilter{FeaturedOnly: true, Limit: FeaturedLimit})
	})
}

// Product loads one product.
func (s *Service) Product(ctx context.Context, id string) (*repo.Product, error) {
	return cache.Fetch(ctx, s.cache, recordKey(keyProducts, id), func(ctx context.Context) (*repo.Product, error) {
		return s.repo.GetProduct(ctx, id)
	})
}

// SearchProducts filters the cached product list by free text and category.
func (s *Service) SearchProducts(ctx context.Context, query, categoryID string) ([]repo.Product, error) {
	all, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return searchProducts(all, query, categoryID), nil
}

// CreateProduct validates and stores a product.
func (s *Service) CreateProduct(ctx context.Context, in repo.ProductInput) (*repo.Product, error) {
	in = normaliseProduct(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	p, err := s.repo.CreateProduct(ctx, in)
	if err != nil {
		return nil, s.mutationFailed("create product", err)
	}
	s.invalidate(ctx, keyProducts)
	return p, nil
}

// UpdateProduct validates and overwrites a product.
func (s *Service) UpdateProduct(ctx context.Context, id string, in repo.ProductInput) (*repo.Product, error) {
	in = normaliseProduct(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	p, err := s.repo.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, s.mutationFailed("update product", err)
	}
	s.invalidate(ctx, keyProducts)
	return p, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return s.mutationFailed("delete product", err)
	}
	s.invalidate(ctx, keyProducts)
	return nil
}

func normaliseProduct(in repo.ProductInput) repo.ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.YoutubeURL = strings.TrimSpace(in.YoutubeURL)
	in.PDFURL = strings.TrimSpace(in.PDFURL)
	in.WhatsAppMessage = strings.TrimSpace(in.WhatsAppMessage)
	in.Features = compact(in.Features)
	in.Images = compact(in.Images)
	if in.CategoryID != nil && strings.TrimSpace(*in.CategoryID) == "" {
		in.CategoryID = nil
	}
	return in
}

// Categories

// Categories lists categories in display order.
func (s *Service) Categories(ctx context.Context) ([]repo.Category, error) {
	return cache.Fetch(ctx, s.cache, keyCategories, func(ctx context.Context) ([]repo.Category, error) {
		return s.repo.ListCategories(ctx)
	})
}

// CreateCategory validates and stores a category.
func (s *Service) CreateCategory(ctx context.Context, in repo.CategoryInput) (*repo.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := Validate(in); err != nil {
		return nil, err
	}
	c, err := s.repo.CreateCategory(ctx, in)
	if err != nil {
		return nil, s.mutationFailed("create category", err)
	}
	s.invalidate(ctx, keyCategories)
	return c, nil
}

// UpdateCategory validates and overwrites a category. Product listings carry
// the category name, so they are invalidated too.
func (s *Service) UpdateCategory(ctx context.Context, id string, in repo.CategoryInput) (*repo.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := Validate(in); err != nil {
		return nil, err
	}
	c, err := s.repo.UpdateCategory(ctx, id, in)
	if err != nil {
		return nil, s.mutationFailed("update category", err)
	}
	s.invalidate(ctx, keyCategories, keyProducts)
	return c, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return s.mutationFailed("delete category", err)
	}
	s.invalidate(ctx, keyCategories, keyProducts)
	return nil
}

// Gallery

// Gallery lists gallery images in display order.
func (s *Service) Gallery(ctx context.Context) ([]repo.GalleryImage, error) {
	return cache.Fetch(ctx, s.cache, keyGallery, func(ctx context.Context) ([]repo.GalleryImage, error) {
		return s.repo.ListGalleryImages(ctx)
	})
}

// CreateGalleryImage validates and stores a gallery image.
func (s *Service) CreateGalleryImage(ctx context.Context, in repo.GalleryImageInput) (*repo.GalleryImage, error) {
	in = normaliseGallery(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	g, err := s.repo.CreateGalleryImage(ctx, in)
	if err != nil {
		return nil, s.mutationFailed("create gallery image", err)
	}
	s.invalidate(ctx, keyGallery)
	return g, nil
}

// UpdateGalleryImage validates and overwrites a gallery image.
func (s *Service) UpdateGalleryImage(ctx context.Context, id string, in repo.GalleryImageInput) (*repo.GalleryImage, error) {
	in = normaliseGallery(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	g, err := s.repo.UpdateGalleryImage(ctx, id, in)
	if err != nil {
		return nil, s.mutationFailed("update gallery image", err)
	}
	s.invalidate(ctx, keyGallery)
	return g, nil
}

// DeleteGalleryImage removes a gallery image.
func (s *Service) DeleteGalleryImage(ctx context.Context, id string) error {
	if err := s.repo.DeleteGalleryImage(ctx, id); err != nil {
		return s.mutationFailed("delete gallery image", err)
	}
	s.invalidate(ctx, keyGallery)
	return nil
}

func normaliseGallery(in repo.GalleryImageInput) repo.GalleryImageInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// Testimonials

// Testimonials lists testimonials, newest first.
func (s *Service) Testimonials(ctx context.Context) ([]repo.Testimonial, error) {
	return cache.Fetch(ctx, s.cache, keyTestimonials, func(ctx context.Context) ([]repo.Testimonial, error) {
		return s.repo.ListTestimonials(ctx, repo.TestimonialFilter{})
	})
}

// FeaturedTestimonials lists up to FeaturedLimit featured testimonials.
func (s *Service) FeaturedTestimonials(ctx context.Context) ([]repo.Testimonial, error) {
	return cache.Fetch(ctx, s.cache, listKey(keyTestimonials, "featured"), func(ctx context.Context) ([]repo.Testimonial, error) {
		return s.repo.ListTestimonials(ctx, repo.TestimonialFilter{FeaturedOnly: true, Limit: FeaturedLimit})
	})
}

// CreateTestimonial validates and stores a testimonial. A zero rating
// defaults to five stars.
func (s *Service) CreateTestimonial(ctx context.Context, in repo.TestimonialInput) (*repo.Testimonial, error) {
	in = normaliseTestimonial(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	t, err := s.repo.CreateTestimonial(ctx, in)
	if err != nil {
		return nil, s.mutationFailed("create testimonial", err)
	}
	s.invalidate(ctx, keyTestimonials)
	return t, nil
}

// UpdateTestimonial validates and overwrites a testimonial.
func (s *Service) UpdateTestimonial(ctx context.Context, id string, in repo.TestimonialInput) (*repo.Testimonial, error) {
	in = normaliseTestimonial(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	t, err := s.repo.UpdateTestimonial(ctx, id, in)
	if err != nil {
		return nil, s.mutationFailed("update testimonial", err)
	}
	s.invalidate(ctx, keyTestimonials)
	return t, nil
}

// DeleteTestimonial removes a testimonial.
func (s *Service) DeleteTestimonial(ctx context.Context, id string) error {
	if err := s.repo.DeleteTestimonial(ctx, id); err != nil {
		return s.mutationFailed("delete testimonial", err)
	}
	s.invalidate(ctx, keyTestimonials)
	return nil
}

func normaliseTestimonial(in repo.TestimonialInput) repo.TestimonialInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Company = strings.TrimSpace(in.Company)
	in.Content = strings.TrimSpace(in.Content)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Rating == 0 {
		in.Rating = defaultRating
	}
	return in
}

// Services

// Services lists services in display order.
func (s *Service) Services(ctx context.Context) ([]repo.Service, error) {
	return cache.Fetch(ctx, s.cache, keyServices, func(ctx context.Context) ([]repo.Service, error) {
		return s.repo.ListServices(ctx)
	})
}

// CreateService validates and stores a service.
func (s *Service) CreateService(ctx context.Context, in repo.ServiceInput) (*repo.Service, error) {
	in = normaliseService(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	svc, err := s.repo.CreateService(ctx, in)
	if err != nil {
		return nil, s.mutationFailed("create service", err)
	}
	s.invalidate(ctx, keyServices)
	return svc, nil
}

// UpdateService validates and overwrites a service.
func (s *Service) UpdateService(ctx context.Context, id string, in repo.ServiceInput) (*repo.Service, error) {
	in = normaliseService(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	svc, err := s.repo.UpdateService(ctx, id, in)
	if err != nil {
		return nil, s.mutationFailed("update service", err)
	}
	s.invalidate(ctx, keyServices)
	return svc, nil
}

// DeleteService removes a service.
func (s *Service) DeleteService(ctx context.Context, id string) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return s.mutationFailed("delete service", err)
	}
	s.invalidate(ctx, keyServices)
	return nil
}

func normaliseService(in repo.ServiceInput) repo.ServiceInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Icon = strings.TrimSpace(in.Icon)
	in.Features = compact(in.Features)
	return in
}

// FAQs

// FAQs lists FAQs in display order.
func (s *Service) FAQs(ctx context.Context) ([]repo.FAQ, error) {
	return cache.Fetch(ctx, s.cache, keyFAQs, func(ctx context.Context) ([]repo.FAQ, error) {
		return s.repo.ListFAQs(ctx)
	})
}

// CreateFAQ validates and stores a FAQ.
func (s *Service) CreateFAQ(ctx context.Context, in repo.FAQInput) (*repo.FAQ, error) {
	in.Question = strings.TrimSpace(in.Question)
	in.Answer = strings.TrimSpace(in.Answer)
	if err := Validate(in); err != nil {
		return nil, err
	}
	f, err := s.repo.CreateFAQ(ctx, in)
	if err != nil {
		return nil, s.mutationFailed("create faq", err)
	}
	s.invalidate(ctx, keyFAQs)
	return f, nil
}

// UpdateFAQ validates and overwrites a FAQ.
func (s *Service) UpdateFAQ(ctx context.Context, id string, in repo.FAQInput) (*repo.FAQ, error) {
	in.Question = strings.TrimSpace(in.Question)
	in.Answer = strings.TrimSpace(in.Answer)
	if err := Validate(in); err != nil {
		return nil, err
	}
	f, err := s.repo.UpdateFAQ(ctx, id, in)
	if err != nil {
		return nil, s.mutationFailed("update faq", err)
	}
	s.invalidate(ctx, keyFAQs)
	return f, nil
}

// DeleteFAQ removes a FAQ.
func (s *Service) DeleteFAQ(ctx context.Context, id string) error {
	if err := s.repo.DeleteFAQ(ctx, id); err != nil {
		return s.mutationFailed("delete faq", err)
	}
	s.invalidate(ctx, keyFAQs)
	return nil
}

// Contact messages and inquiries

// ContactMessages lists contact messages, newest first.
func (s *Service) ContactMessages(ctx context.Context) ([]repo.ContactMessage, error) {
	return cache.Fetch(ctx, s.cache, keyContactMessages, func(ctx context.Context) ([]repo.ContactMessage, error) {
		return s.repo.ListContactMessages(ctx)
	})
}

// CreateContactMessage validates and stores a contact page message.
func (s *Service) CreateContactMessage(ctx context.Context, in repo.ContactMessageInput) (*repo.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := Validate(in); err != nil {
		return nil, err
	}
	m, err := s.repo.CreateContactMessage(ctx, in)
	if err != nil {
		return nil, s.mutationFailed("create contact message", err)
	}
	s.invalidate(ctx, keyContactMessages)
	return m, nil
}

// SetContactMessageRead flips a message's read flag.
func (s *Service) SetContactMessageRead(ctx context.Context, id string, read bool) error {
	if err := s.repo.SetContactMessageRead(ctx, id, read); err != nil {
		return s.mutationFailed("mark contact message", err)
	}
	s.invalidate(ctx, keyContactMessages)
	return nil
}

// DeleteContactMessage removes a message.
func (s *Service) DeleteContactMessage(ctx context.Context, id string) error {
	if err := s.repo.DeleteContactMessage(ctx, id); err != nil {
		return s.mutationFailed("delete contact message", err)
	}
	s.invalidate(ctx, keyContactMessages)
	return nil
}

// Inquiries lists stored quartz inquiries, newest first.
func (s *Service) Inquiries(ctx context.Context) ([]repo.Inquiry, error) {
	return cache.Fetch(ctx, s.cache, keyInquiries, func(ctx context.Context) ([]repo.Inquiry, error) {
		return s.repo.ListInquiries(ctx)
	})
}

// Inquiry loads one inquiry. Detail reads bypass the cache.
func (s *Service) Inquiry(ctx context.Context, id string) (*repo.Inquiry, error) {
	return s.repo.GetInquiry(ctx, id)
}

// InquiriesChanged drops cached inquiry listings after a new submission.
func (s *Service) InquiriesChanged(ctx context.Context) {
	s.invalidate(ctx, keyInquiries)
}

// SetInquiryRead flips an inquiry's read flag.
func (s *Service) SetInquiryRead(ctx context.Context, id string, read bool) error {
	if err := s.repo.SetInquiryRead(ctx, id, read); err != nil {
		return s.mutationFailed("mark inquiry", err)
	}
	s.invalidate(ctx, keyInquiries)
	return nil
}

// DeleteInquiry removes an inquiry.
func (s *Service) DeleteInquiry(ctx context.Context, id string) error {
	if err := s.repo.DeleteInquiry(ctx, id); err != nil {
		return s.mutationFailed("delete inquiry", err)
	}
	s.invalidate(ctx, keyInquiries)
	return nil
}

// Dashboard summarises the back office landing page.
type Dashboard struct {
	Products        int
	Categories      int
	BlogPosts       int
	Testimonials    int
	UnreadMessages  int
	UnreadInquiries int
	RecentMessages  []repo.ContactMessage
	RecentInquiries []repo.Inquiry
}

// DashboardSummary counts collections and picks the latest messages.
func (s *Service) DashboardSummary(ctx context.Context) (*Dashboard, error) {
	var d Dashboard

	products, err := s.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard products: %w", err)
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard categories: %w", err)
	}
	posts, err := s.AllBlogPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard blog posts: %w", err)
	}
	testimonials, err := s.Testimonials(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard testimonials: %w", err)
	}
	messages, err := s.ContactMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard messages: %w", err)
	}
	inquiries, err := s.Inquiries(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard inquiries: %w", err)
	}

	d.Products = len(products)
	d.Categories = len(categories)
	d.BlogPosts = len(posts)
	d.Testimonials = len(testimonials)
	for _, m := range messages {
		if !m.IsRead {
			d.UnreadMessages++
		}
	}
	for _, inq := range inquiries {
		if !inq.IsRead {
			d.UnreadInquiries++
		}
	}
	d.RecentMessages = messages[:min(5, len(messages))]
	d.RecentInquiries = inquiries[:min(5, len(inquiries))]
	return &d, nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
