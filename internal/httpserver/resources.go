package httpserver

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"quartz-site/internal/repo"
	"quartz-site/internal/storage"
)

const multipartMemory = 8 << 20

// parseAdminForm accepts both multipart and urlencoded posts.
func parseAdminForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

func formInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue(name)))
	if err != nil {
		return 0
	}
	return n
}

func formBool(r *http.Request, name string) bool {
	return strings.TrimSpace(r.PostFormValue(name)) != ""
}

func formLines(r *http.Request, name string) []string {
	var out []string
	for _, line := range strings.Split(r.PostFormValue(name), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// uploads records the images stored while parsing one admin form, so a
// rejected save can delete them and put the typed values back.
type uploads struct {
	images  *storage.Service
	stored  []string
	restore []func()
}

// image stores the file posted as name+"_file" into *dst, or copies the URL
// typed into name when no file was sent.
func (u *uploads) image(r *http.Request, name, folder string, dst *string) error {
	typed := strings.TrimSpace(r.PostFormValue(name))
	*dst = typed
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[name+"_file"]
	if len(files) == 0 || files[0].Size == 0 {
		return nil
	}
	url, err := u.images.UploadFile(r.Context(), folder, files[0])
	if err != nil {
		return fmt.Errorf("%s: %w", files[0].Filename, err)
	}
	u.stored = append(u.stored, url)
	u.restore = append(u.restore, func() { *dst = typed })
	*dst = url
	return nil
}

// gallery appends every non-empty file posted as name to *dst.
func (u *uploads) gallery(r *http.Request, name, folder string, dst *[]string) error {
	if r.MultipartForm == nil {
		return nil
	}
	var files []*multipart.FileHeader
	for _, fh := range r.MultipartForm.File[name] {
		if fh.Size > 0 {
			files = append(files, fh)
		}
	}
	if len(files) == 0 {
		return nil
	}
	typed := len(*dst)
	urls, err := u.images.UploadFiles(r.Context(), folder, files)
	u.stored = append(u.stored, urls...)
	u.restore = append(u.restore, func() { *dst = (*dst)[:typed] })
	*dst = append(*dst, urls...)
	return err
}

// rollback deletes what was stored and restores the typed form values.
func (u *uploads) rollback(ctx context.Context) {
	if len(u.stored) == 0 {
		return
	}
	u.images.Discard(ctx, u.stored)
	for i := len(u.restore) - 1; i >= 0; i-- {
		u.restore[i]()
	}
	u.stored, u.restore = nil, nil
}

func (s *Server) categoryResource() resource[repo.Category, repo.CategoryInput] {
	c := s.deps.Content
	return resource[repo.Category, repo.CategoryInput]{
		path: "/categories", title: "Categories", singular: "Category", page: "admin/categories.html",
		list: c.Categories,
		id:   func(v repo.Category) string { return v.ID },
		toInput: func(v repo.Category) repo.CategoryInput {
			return repo.CategoryInput{Name: v.Name, Description: v.Description, ImageURL: v.ImageURL, DisplayOrder: v.DisplayOrder}
		},
		blank: func() repo.CategoryInput { return repo.CategoryInput{} },
		parse: func(r *http.Request, up *uploads, in *repo.CategoryInput) error {
			if err := parseAdminForm(r); err != nil {
				return err
			}
			*in = repo.CategoryInput{
				Name:         r.PostFormValue("name"),
				Description:  r.PostFormValue("description"),
				DisplayOrder: formInt(r, "display_order"),
			}
			return up.image(r, "image_url", "categories", &in.ImageURL)
		},
		create: func(ctx context.Context, in repo.CategoryInput) error { _, err := c.CreateCategory(ctx, in); return err },
		update: func(ctx context.Context, id string, in repo.CategoryInput) error {
			_, err := c.UpdateCategory(ctx, id, in)
			return err
		},
		remove: c.DeleteCategory,
	}
}

func (s *Server) productResource() resource[repo.Product, repo.ProductInput] {
	c := s.deps.Content
	return resource[repo.Product, repo.ProductInput]{
		path: "/products", title: "Products", singular: "Product", page: "admin/products.html",
		list: c.Products,
		id:   func(v repo.Product) string { return v.ID },
		toInput: func(v repo.Product) repo.ProductInput {
			return repo.ProductInput{
				Name: v.Name, Description: v.Description, CategoryID: v.CategoryID,
				Features: v.Features, Images: v.Images, YoutubeURL: v.YoutubeURL, PDFURL: v.PDFURL,
				WhatsAppMessage: v.WhatsAppMessage, IsFeatured: v.IsFeatured, DisplayOrder: v.DisplayOrder,
			}
		},
		blank: func() repo.ProductInput { return repo.ProductInput{} },
		parse: func(r *http.Request, up *uploads, in *repo.ProductInput) error {
			if err := parseAdminForm(r); err != nil {
				return err
			}
			*in = repo.ProductInput{
				Name:            r.PostFormValue("name"),
				Description:     r.PostFormValue("description"),
				Features:        formLines(r, "features"),
				Images:          formLines(r, "images"),
				YoutubeURL:      r.PostFormValue("youtube_url"),
				PDFURL:          r.PostFormValue("pdf_url"),
				WhatsAppMessage: r.PostFormValue("whatsapp_message"),
				IsFeatured:      formBool(r, "is_featured"),
				DisplayOrder:    formInt(r, "display_order"),
			}
			if id := strings.TrimSpace(r.PostFormValue("category_id")); id != "" {
				in.CategoryID = &id
			}
			return up.gallery(r, "images_files", "products", &in.Images)
		},
		create: func(ctx context.Context, in repo.ProductInput) error { _, err := c.CreateProduct(ctx, in); return err },
		update: func(ctx context.Context, id string, in repo.ProductInput) error {
			_, err := c.UpdateProduct(ctx, id, in)
			return err
		},
		remove: c.DeleteProduct,
		extra: func(ctx context.Context) (map[string]any, error) {
			categories, err := c.Categories(ctx)
			return map[string]any{"Categories": categories}, err
		},
	}
}

func (s *Server) galleryResource() resource[repo.GalleryImage, repo.GalleryImageInput] {
	c := s.deps.Content
	return resource[repo.GalleryImage, repo.GalleryImageInput]{
		path: "/gallery", title: "Gallery", singular: "Image", page: "admin/gallery.html",
		list: c.Gallery,
		id:   func(v repo.GalleryImage) string { return v.ID },
		toInput: func(v repo.GalleryImage) repo.GalleryImageInput {
			return repo.GalleryImageInput{Title: v.Title, Description: v.Description, ImageURL: v.ImageURL, DisplayOrder: v.DisplayOrder}
		},
		blank: func() repo.GalleryImageInput { return repo.GalleryImageInput{} },
		parse: func(r *http.Request, up *uploads, in *repo.GalleryImageInput) error {
			if err := parseAdminForm(r); err != nil {
				return err
			}
			*in = repo.GalleryImageInput{
				Title:        r.PostFormValue("title"),
				Description:  r.PostFormValue("description"),
				DisplayOrder: formInt(r, "display_order"),
			}
			return up.image(r, "image_url", "gallery", &in.ImageURL)
		},
		create: func(ctx context.Context, in repo.GalleryImageInput) error {
			_, err := c.CreateGalleryImage(ctx, in)
			return err
		},
		update: func(ctx context.Context, id string, in repo.GalleryImageInput) error {
			_, err := c.UpdateGalleryImage(ctx, id, in)
			return err
		},
		remove: c.DeleteGalleryImage,
	}
}

func (s *Server) testimonialResource() resource[repo.Testimonial, repo.TestimonialInput] {
	c := s.deps.Content
	return resource[repo.Testimonial, repo.TestimonialInput]{
		path: "/testimonials", title: "Testimonials", singular: "Testimonial", page: "admin/testimonials.html",
		list: c.Testimonials,
		id:   func(v repo.Testimonial) string { return v.ID },
		toInput: func(v repo.Testimonial) repo.TestimonialInput {
			return repo.TestimonialInput{
				Name: v.Name, Company: v.Company, Content: v.Content, Rating: v.Rating,
				ImageURL: v.ImageURL, IsFeatured: v.IsFeatured,
			}
		},
		blank: func() repo.TestimonialInput { return repo.TestimonialInput{Rating: 5} },
		parse: func(r *http.Request, up *uploads, in *repo.TestimonialInput) error {
			if err := parseAdminForm(r); err != nil {
				return err
			}
			*in = repo.TestimonialInput{
				Name:       r.PostFormValue("name"),
				Company:    r.PostFormValue("company"),
				Content:    r.PostFormValue("content"),
				Rating:     formInt(r, "rating"),
				IsFeatured: formBool(r, "is_featured"),
			}
			return up.image(r, "image_url", "testimonials", &in.ImageURL)
		},
		create: func(ctx context.Context, in repo.TestimonialInput) error {
			_, err := c.CreateTestimonial(ctx, in)
			return err
		},
		update: func(ctx context.Context, id string, in repo.TestimonialInput) error {
			_, err := c.UpdateTestimonial(ctx, id, in)
			return err
		},
		remove: c.DeleteTestimonial,
	}
}

func (s *Server) blogResource() resource[repo.BlogPost, repo.BlogPostInput] {
	c := s.deps.Content
	return resource[repo.BlogPost, repo.BlogPostInput]{
		path: "/blog", title: "Blog", singular: "Post", page: "admin/blog.html",
		list: c.AllBlogPosts,
		id:   func(v repo.BlogPost) string { return v.ID },
		toInput: func(v repo.BlogPost) repo.BlogPostInput {
			return repo.BlogPostInput{
				Title: v.Title, Slug: v.Slug, Excerpt: v.Excerpt, Content: v.Content,
				CoverImage: v.CoverImage, IsPublished: v.IsPublished,
			}
		},
		blank: func() repo.BlogPostInput { return repo.BlogPostInput{} },
		parse: func(r *http.Request, up *uploads, in *repo.BlogPostInput) error {
			if err := parseAdminForm(r); err != nil {
				return err
			}
			*in = repo.BlogPostInput{
				Title:       r.PostFormValue("title"),
				Slug:        r.PostFormValue("slug"),
				Excerpt:     r.PostFormValue("excerpt"),
				Content:     r.PostFormValue("content"),
				IsPublished: formBool(r, "is_published"),
			}
			return up.image(r, "cover_image", "blog", &in.CoverImage)
		},
		create: func(ctx context.Context, in repo.BlogPostInput) error { _, err := c.CreateBlogPost(ctx, in); return err },
		update: func(ctx context.Context, id string, in repo.BlogPostInput) error {
			_, err := c.UpdateBlogPost(ctx, id, in)
			return err
		},
		remove: c.DeleteBlogPost,
	}
}

func (s *Server) serviceResource() resource[repo.Service, repo.ServiceInput] {
	c := s.deps.Content
	return resource[repo.Service, repo.ServiceInput]{
		path: "/services", title: "Services", singular: "Service", page: "admin/services.html",
		list: c.Services,
		id:   func(v repo.Service) string { return v.ID },
		toInput: func(v repo.Service) repo.ServiceInput {
			return repo.ServiceInput{Title: v.Title, Description: v.Description, Icon: v.Icon, Features: v.Features, DisplayOrder: v.DisplayOrder}
		},
		blank: func() repo.ServiceInput { return repo.ServiceInput{} },
		parse: func(r *http.Request, _ *uploads, in *repo.ServiceInput) error {
			if err := parseAdminForm(r); err != nil {
				return err
			}
			*in = repo.ServiceInput{
				Title:        r.PostFormValue("title"),
				Description:  r.PostFormValue("description"),
				Icon:         r.PostFormValue("icon"),
				Features:     formLines(r, "features"),
				DisplayOrder: formInt(r, "display_order"),
			}
			return nil
		},
		create: func(ctx context.Context, in repo.ServiceInput) error { _, err := c.CreateService(ctx, in); return err },
		update: func(ctx context.Context, id string, in repo.ServiceInput) error {
			_, err := c.UpdateService(ctx, id, in)
			return err
		},
		remove: c.DeleteService,
	}
}

func (s *Server) faqResource() resource[repo.FAQ, repo.FAQInput] {
	c := s.deps.Content
	return resource[repo.FAQ, repo.FAQInput]{
		path: "/faqs", title: "FAQs", singular: "FAQ", page: "admin/faqs.html",
		list: c.FAQs,
		id:   func(v repo.FAQ) string { return v.ID },
		toInput: func(v repo.FAQ) repo.FAQInput {
			return repo.FAQInput{Question: v.Question, Answer: v.Answer, DisplayOrder: v.DisplayOrder}
		},
		blank: func() repo.FAQInput { return repo.FAQInput{} },
		parse: func(r *http.Request, _ *uploads, in *repo.FAQInput) error {
			if err := parseAdminForm(r); err != nil {
				return err
			}
			*in = repo.FAQInput{
				Question:     r.PostFormValue("question"),
				Answer:       r.PostFormValue("answer"),
				DisplayOrder: formInt(r, "display_order"),
			}
			return nil
		},
		create: func(ctx context.Context, in repo.FAQInput) error { _, err := c.CreateFAQ(ctx, in); return err },
		update: func(ctx context.Context, id string, in repo.FAQInput) error {
			_, err := c.UpdateFAQ(ctx, id, in)
			return err
		},
		remove: c.DeleteFAQ,
	}
}
