package repo

import "time"

// Category groups products in the catalogue.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryInput carries editable category fields.
type CategoryInput struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Description  string `json:"description" validate:"max=500"`
	ImageURL     string `json:"image_url" validate:"omitempty,imageurl"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
}

// Product is a catalogue entry.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	CategoryID      *string   `json:"category_id,omitempty"`
	CategoryName    string    `json:"category_name,omitempty"`
	Features        []string  `json:"features"`
	Images          []string  `json:"images"`
	YoutubeURL      string    `json:"youtube_url,omitempty"`
	PDFURL          string    `json:"pdf_url,omitempty"`
	WhatsAppMessage string    `json:"whatsapp_message,omitempty"`
	IsFeatured      bool      `json:"is_featured"`
	DisplayOrder    int       `json:"display_order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CoverImage returns the first product image or an empty string.
func (p Product) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductInput carries editable product fields.
type ProductInput struct {
	Name            string   `json:"name" validate:"required,min=3,max=200"`
	Description     string   `json:"description" validate:"max=2000"`
	CategoryID      *string  `json:"category_id"`
	Features        []string `json:"features" validate:"max=30,dive,max=200"`
	Images          []string `json:"images" validate:"max=20,dive,imageurl"`
	YoutubeURL      string   `json:"youtube_url" validate:"omitempty,youtube"`
	PDFURL          string   `json:"pdf_url" validate:"omitempty,httpurl"`
	WhatsAppMessage string   `json:"whatsapp_message" validate:"max=500"`
	IsFeatured      bool     `json:"is_featured"`
	DisplayOrder    int      `json:"display_order" validate:"gte=0"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID   string
	FeaturedOnly bool
	Limit        int
}

// GalleryImage is a showcase photo.
type GalleryImage struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GalleryImageInput carries editable gallery fields.
type GalleryImageInput struct {
	Title        string `json:"title" validate:"max=200"`
	Description  string `json:"description" validate:"max=1000"`
	ImageURL     string `json:"image_url" validate:"required,imageurl"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
}

// Testimonial is a customer quote.
type Testimonial struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Company    string    `json:"company,omitempty"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	ImageURL   string    `json:"image_url,omitempty"`
	IsFeatured bool      `json:"is_featured"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TestimonialInput carries editable testimonial fields.
type TestimonialInput struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Company    string `json:"company" validate:"max=100"`
	Content    string `json:"content" validate:"required,min=10,max=1000"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	ImageURL   string `json:"image_url" validate:"omitempty,imageurl"`
	IsFeatured bool   `json:"is_featured"`
}

// TestimonialFilter narrows testimonial listings.
type TestimonialFilter struct {
	FeaturedOnly bool
	Limit        int
}

// Service is an offered service line.
type Service struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	Features     []string  `json:"features"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ServiceInput carries editable service fields.
type ServiceInput struct {
	Title        string   `json:"title" validate:"required,min=3,max=200"`
	Description  string   `json:"description" validate:"max=2000"`
	Icon         string   `json:"icon" validate:"max=50"`
	Features     []string `json:"features" validate:"max=30,dive,max=200"`
	DisplayOrder int      `json:"display_order" validate:"gte=0"`
}

// FAQ is a question and answer pair.
type FAQ struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FAQInput carries editable FAQ fields.
type FAQInput struct {
	Question     string `json:"question" validate:"required,min=5,max=500"`
	Answer       string `json:"answer" validate:"required,min=10,max=2000"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
}

// BlogPost is an article. PublishedAt is set the first time the post is
// published and cleared when it is unpublished.
type BlogPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"cover_image,omitempty"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BlogPostInput carries editable post fields. PublishedAt is computed by the
// caller from the publish state.
type BlogPostInput struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Slug        string     `json:"slug" validate:"required,max=200,slug"`
	Excerpt     string     `json:"excerpt" validate:"max=500"`
	Content     string     `json:"content" validate:"required,min=50"`
	CoverImage  string     `json:"cover_image" validate:"omitempty,imageurl"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"-"`
}

// BlogPostFilter narrows post listings.
type BlogPostFilter struct {
	PublishedOnly bool
	Limit         int
}

// ContactMessage is a quick message left on the contact page.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactMessageInput carries the public contact form fields.
type ContactMessageInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=30"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Inquiry is a stored quartz inquiry form submission.
type Inquiry struct {
	ID          string         `json:"id"`
	CompanyName string         `json:"company_name"`
	ContactName string         `json:"contact_name"`
	Email       string         `json:"email"`
	Payload     map[string]any `json:"payload"`
	IsRead      bool           `json:"is_read"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewInquiry describes an inquiry to persist.
type NewInquiry struct {
	CompanyName string
	ContactName string
	Email       string
	Payload     map[string]any
	CreatedAt   time.Time
}

// Account is a back office login.
type Account struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ImageObject is an uploaded image blob.
type ImageObject struct {
	Key         string
	Folder      string
	ContentType string
	Size        int64
	Data        []byte
	CreatedAt   time.Time
}
