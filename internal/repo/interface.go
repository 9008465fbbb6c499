package repo

import (
	"context"
	"io/fs"
)

// Repository defines the interface for data persistence.
type Repository interface {
	// Lifecycle
	Close()
	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context, filesystem fs.FS) error
	Backend() string

	// Categories
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*Category, error)
	UpdateCategory(ctx context.Context, id string, in CategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Products
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error

	// Gallery
	ListGalleryImages(ctx context.Context) ([]GalleryImage, error)
	GetGalleryImage(ctx context.Context, id string) (*GalleryImage, error)
	CreateGalleryImage(ctx context.Context, in GalleryImageInput) (*GalleryImage, error)
	UpdateGalleryImage(ctx context.Context, id string, in GalleryImageInput) (*GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, id string) error

	// Testimonials
	ListTestimonials(ctx context.Context, filter TestimonialFilter) ([]Testimonial, error)
	GetTestimonial(ctx context.Context, id string) (*Testimonial, error)
	CreateTestimonial(ctx context.Context, in TestimonialInput) (*Testimonial, error)
	UpdateTestimonial(ctx context.Context, id string, in TestimonialInput) (*Testimonial, error)
	DeleteTestimonial(ctx context.Context, id string) error

	// Services
	ListServices(ctx context.Context) ([]Service, error)
	GetService(ctx context.Context, id string) (*Service, error)
	CreateService(ctx context.Context, in ServiceInput) (*Service, error)
	UpdateService(ctx context.Context, id string, in ServiceInput) (*Service, error)
	DeleteService(ctx context.Context, id string) error

	// FAQs
	ListFAQs(ctx context.Context) ([]FAQ, error)
	GetFAQ(ctx context.Context, id string) (*FAQ, error)
	CreateFAQ(ctx context.Context, in FAQInput) (*FAQ, error)
	UpdateFAQ(ctx context.Context, id string, in FAQInput) (*FAQ, error)
	DeleteFAQ(ctx context.Context, id string) error

	// Blog
	ListBlogPosts(ctx context.Context, filter BlogPostFilter) ([]BlogPost, error)
	GetBlogPost(ctx context.Context, id string) (*BlogPost, error)
	GetBlogPostBySlug(ctx context.Context, slug string, publishedOnly bool) (*BlogPost, error)
	CreateBlogPost(ctx context.Context, in BlogPostInput) (*BlogPost, error)
	UpdateBlogPost(ctx context.Context, id string, in BlogPostInput) (*BlogPost, error)
	DeleteBlogPost(ctx context.Context, id string) error

	// Contact messages
	ListContactMessages(ctx context.Context) ([]ContactMessage, error)
	CreateContactMessage(ctx context.Context, in ContactMessageInput) (*ContactMessage, error)
	SetContactMessageRead(ctx context.Context, id string, read bool) error
	DeleteContactMessage(ctx context.Context, id string) error

	// Quartz inquiries
	ListInquiries(ctx context.Context) ([]Inquiry, error)
	GetInquiry(ctx context.Context, id string) (*Inquiry, error)
	CreateInquiry(ctx context.Context, in NewInquiry) (*Inquiry, error)
	SetInquiryRead(ctx context.Context, id string, read bool) error
	DeleteInquiry(ctx context.Context, id string) error

	// Accounts and admin allow-list
	GetAccount(ctx context.Context, email string) (*Account, error)
	UpsertAccount(ctx context.Context, email, passwordHash string) error
	IsAdmin(ctx context.Context, email string) (bool, error)
	SyncAdmins(ctx context.Context, emails []string) error

	// Images
	PutImage(ctx context.Context, obj ImageObject) error
	GetImage(ctx context.Context, key string) (*ImageObject, error)
	DeleteImage(ctx context.Context, key string) error
}
