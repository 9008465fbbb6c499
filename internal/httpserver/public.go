package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"quartz-site/internal/auth"
	"quartz-site/internal/content"
	"quartz-site/internal/inquiry"
	"quartz-site/internal/repo"
	"quartz-site/internal/web"

	"github.com/go-chi/chi/v5"
)

const (
	inquiryThanks = "Thank you! Your inquiry has been submitted successfully. Our team will contact you within 24 hours."
	messageThanks = "Thank you for your message! We'll get back to you soon."
)

type heroSlide struct {
	Image    string
	Title    string
	Subtitle string
}

type highlight struct {
	Title       string
	Description string
}

var heroSlides = []heroSlide{
	{"/static/hero.svg", "Premium White Quartz", "Elegant marble-like surfaces for modern kitchens"},
	{"/static/hero.svg", "Natural Quartz Crystal", "Stunning blue and gold mineral textures"},
	{"/static/hero.svg", "Grey Marble Quartz", "Sophisticated veining for luxury interiors"},
	{"/static/hero.svg", "Black & Gold Quartz", "Premium engineered stone with dramatic appeal"},
}

var homeFeatures = []highlight{
	{"Premium Quality", "Engineered quartz surfaces with superior durability and elegance."},
	{"10 Year Warranty", "Industry-leading warranty coverage for complete peace of mind."},
	{"Stunning Designs", "Wide range of colors and patterns to match any aesthetic."},
}

var coreValues = []highlight{
	{"Quality", "Every shipment is tested against the specification agreed with the buyer."},
	{"Integrity", "Transparent pricing, honest lead times and clear documentation."},
	{"Innovation", "Continuous investment in processing and grading capability."},
	{"Customer Focus", "Long-term partnerships built on responsive service."},
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var notices []web.Notice

	featured, err := s.deps.Content.FeaturedProducts(ctx)
	if err != nil {
		notices = append(notices, s.loadFailed("featured products", err))
	}
	testimonials, err := s.deps.Content.FeaturedTestimonials(ctx)
	if err != nil {
		notices = append(notices, s.loadFailed("featured testimonials", err))
	}

	page := struct {
		Slides       []heroSlide
		Features     []highlight
		Featured     []repo.Product
		Testimonials []repo.Testimonial
	}{heroSlides, homeFeatures, featured, testimonials}
	s.render(w, r, http.StatusOK, "home.html", s.pageData(w, r, "", "/", page, notices...))
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	page := struct {
		Stats  []struct{ Value, Label string }
		Values []highlight
	}{
		Stats: []struct{ Value, Label string }{
			{"15+", "Years Experience"}, {"500+", "Projects Completed"},
			{"50+", "Product Varieties"}, {"1000+", "Happy Clients"},
		},
		Values: coreValues,
	}
	s.render(w, r, http.StatusOK, "about.html", s.pageData(w, r, "About Us", "/about", page))
}

func (s *Server) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "privacy.html", s.pageData(w, r, "Privacy Policy", "", nil))
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	categoryID := strings.TrimSpace(r.URL.Query().Get("category"))
	var notices []web.Notice

	products, err := s.deps.Content.SearchProducts(ctx, query, categoryID)
	if err != nil {
		notices = append(notices, s.loadFailed("products", err))
	}
	categories, err := s.deps.Content.Categories(ctx)
	if err != nil {
		notices = append(notices, s.loadFailed("categories", err))
	}

	page := struct {
		Products   []repo.Product
		Categories []repo.Category
		Query      string
		CategoryID string
	}{products, categories, query, categoryID}
	s.render(w, r, http.StatusOK, "products.html", s.pageData(w, r, "Products", "/products", page, notices...))
}

func (s *Server) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := s.deps.Content.Product(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repo.ErrNotFound) {
		s.renderNotFound(w, r, notFoundPanel{
			Heading:   "Product Not Found",
			Message:   "The product you're looking for doesn't exist or has been removed.",
			BackURL:   "/products",
			BackLabel: "Back to Products",
		})
		return
	}
	if err != nil {
		s.renderFailure(w, r, "product", err)
		return
	}
	page := struct{ Product *repo.Product }{product}
	s.render(w, r, http.StatusOK, "product_detail.html", s.pageData(w, r, product.Name, "/products", page))
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	var notices []web.Notice
	images, err := s.deps.Content.Gallery(r.Context())
	if err != nil {
		notices = append(notices, s.loadFailed("gallery", err))
	}
	page := struct{ Images []repo.GalleryImage }{images}
	s.render(w, r, http.StatusOK, "gallery.html", s.pageData(w, r, "Gallery", "/gallery", page, notices...))
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	var notices []web.Notice
	services, err := s.deps.Content.Services(r.Context())
	if err != nil {
		notices = append(notices, s.loadFailed("services", err))
	}
	page := struct{ Services []repo.Service }{services}
	s.render(w, r, http.StatusOK, "services.html", s.pageData(w, r, "Services", "/services", page, notices...))
}

func (s *Server) handleTestimonials(w http.ResponseWriter, r *http.Request) {
	var notices []web.Notice
	testimonials, err := s.deps.Content.Testimonials(r.Context())
	if err != nil {
		notices = append(notices, s.loadFailed("testimonials", err))
	}
	page := struct{ Testimonials []repo.Testimonial }{testimonials}
	s.render(w, r, http.StatusOK, "testimonials.html", s.pageData(w, r, "Testimonials", "/testimonials", page, notices...))
}

func (s *Server) handleFAQ(w http.ResponseWriter, r *http.Request) {
	var notices []web.Notice
	faqs, err := s.deps.Content.FAQs(r.Context())
	if err != nil {
		notices = append(notices, s.loadFailed("faqs", err))
	}
	page := struct{ FAQs []repo.FAQ }{faqs}
	s.render(w, r, http.StatusOK, "faq.html", s.pageData(w, r, "FAQ", "/faq", page, notices...))
}

func (s *Server) handleBlog(w http.ResponseWriter, r *http.Request) {
	var notices []web.Notice
	posts, err := s.deps.Content.PublishedBlogPosts(r.Context())
	if err != nil {
		notices = append(notices, s.loadFailed("blog posts", err))
	}
	page := struct{ Posts []repo.BlogPost }{posts}
	s.render(w, r, http.StatusOK, "blog.html", s.pageData(w, r, "Blog", "/blog", page, notices...))
}

func (s *Server) handleBlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.deps.Content.BlogPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, repo.ErrNotFound) {
		s.renderNotFound(w, r, notFoundPanel{
			Heading:   "Post Not Found",
			Message:   "The blog post you're looking for doesn't exist or is no longer published.",
			BackURL:   "/blog",
			BackLabel: "Back to Blog",
		})
		return
	}
	if err != nil {
		s.renderFailure(w, r, "blog post", err)
		return
	}
	page := struct{ Post *repo.BlogPost }{post}
	s.render(w, r, http.StatusOK, "blog_post.html", s.pageData(w, r, post.Title, "/blog", page))
}

type contactPage struct {
	Form    inquiry.Form
	Message repo.ContactMessageInput
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	page := contactPage{Form: inquiry.NewForm()}
	s.render(w, r, http.StatusOK, "contact.html", s.pageData(w, r, "Contact Us", "/contact", page))
}

// handleInquirySubmit re-renders the form with its values on failure and
// redirects to a fresh form on success.
func (s *Server) handleInquirySubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := inquiry.ParseForm(r.PostForm)

	if _, err := s.deps.Inquiries.Submit(r.Context(), form); err != nil {
		page := contactPage{Form: form}
		s.render(w, r, failureStatus(err), "contact.html",
			s.pageData(w, r, "Contact Us", "/contact", page, errorNotice(userMessage(err))))
		return
	}
	s.deps.Content.InquiriesChanged(r.Context())
	s.redirectWithFlash(w, r, "/contact", auth.FlashSuccess, inquiryThanks)
}

func (s *Server) handleContactMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := repo.ContactMessageInput{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
	}

	msg, err := s.deps.Content.CreateContactMessage(r.Context(), in)
	if err != nil {
		var vErr *content.ValidationError
		if errors.As(err, &vErr) {
			s.metrics.Submission("contact_message", "invalid")
		} else {
			s.metrics.Submission("contact_message", "error")
		}
		page := contactPage{Form: inquiry.NewForm(), Message: in}
		s.render(w, r, failureStatus(err), "contact.html",
			s.pageData(w, r, "Contact Us", "/contact", page, errorNotice(userMessage(err))))
		return
	}
	s.metrics.Submission("contact_message", "stored")
	s.deps.Inquiries.NotifyContactMessage(r.Context(), msg)
	s.redirectWithFlash(w, r, "/contact", auth.FlashSuccess, messageThanks)
}

// renderFailure shows a generic error page for a failed read.
func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, what string, err error) {
	notice := s.loadFailed(what, err)
	s.renderNotFoundStatus(w, r, failureStatus(err), notFoundPanel{
		Heading:   "Something Went Wrong",
		Message:   notice.Message,
		BackURL:   "/",
		BackLabel: "Back to Home",
	})
}

func (s *Server) renderNotFoundStatus(w http.ResponseWriter, r *http.Request, status int, panel notFoundPanel) {
	s.render(w, r, status, "not_found.html", s.pageData(w, r, panel.Heading, "", panel))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	obj, err := s.deps.Images.Get(r.Context(), chi.URLParam(r, "key"))
	if errors.Is(err, repo.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("load image failed", "error", err)
		s.metrics.Error("http")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(obj.Data)
}
