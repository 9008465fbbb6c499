package httpserver

import (
	"errors"
	"net/http"
	"time"

	"quartz-site/internal/auth"
	"quartz-site/internal/content"
	"quartz-site/internal/inquiry"
	"quartz-site/internal/repo"
	"quartz-site/internal/site"
	"quartz-site/internal/storage"
	"quartz-site/internal/web"

	"github.com/justinas/nosurf"
)

const (
	genericFailure   = "Something went wrong. Please try again."
	permissionDenied = "Permission denied. Make sure the site's database user has been granted access to the content tables."
)

type notFoundPanel struct {
	Heading   string
	Message   string
	BackURL   string
	BackLabel string
}

// pageData builds the shared template data, draining queued flashes.
func (s *Server) pageData(w http.ResponseWriter, r *http.Request, title, activeNav string, page any, notices ...web.Notice) web.Data {
	var all []web.Notice
	for _, f := range s.deps.Auth.Flashes(w, r) {
		all = append(all, web.Notice{Kind: f.Kind, Message: f.Message})
	}
	all = append(all, notices...)

	return web.Data{
		Title:       title,
		ActiveNav:   activeNav,
		CSRFToken:   nosurf.Token(r),
		Company:     s.deps.Company,
		Nav:         site.NavLinks,
		AdminNav:    site.AdminNav,
		AdminEmail:  auth.AdminEmail(r.Context()),
		WhatsAppURL: s.deps.WhatsApp.Link(site.DefaultWhatsAppMessage),
		Notices:     all,
		Year:        time.Now().Year(),
		Page:        page,
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data web.Data) {
	if err := s.deps.Templates.Render(w, status, name, data); err != nil {
		s.logger.Error("render template failed", "template", name, "error", err)
		s.metrics.Error("http")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request, panel notFoundPanel) {
	s.renderNotFoundStatus(w, r, http.StatusNotFound, panel)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderNotFound(w, r, notFoundPanel{
		Heading:   "Page Not Found",
		Message:   "The page you're looking for doesn't exist or has been moved.",
		BackURL:   "/",
		BackLabel: "Back to Home",
	})
}

func errorNotice(message string) web.Notice {
	return web.Notice{Kind: auth.FlashError, Message: message}
}

// userMessage maps an error to the notice shown to the visitor.
func userMessage(err error) string {
	var contentErr *content.ValidationError
	var inquiryErr *inquiry.ValidationError
	switch {
	case errors.As(err, &contentErr):
		return contentErr.Message
	case errors.As(err, &inquiryErr):
		return inquiryErr.Message
	case storage.IsUploadError(err):
		return err.Error()
	case errors.Is(err, repo.ErrPermissionDenied):
		return permissionDenied
	case errors.Is(err, repo.ErrConflict):
		return "A record with the same slug or email already exists."
	case errors.Is(err, repo.ErrInvalidReference):
		return "The selected category no longer exists."
	case errors.Is(err, repo.ErrNotFound):
		return "The record no longer exists."
	default:
		return genericFailure
	}
}

// failureStatus picks the HTTP status for a failed form post.
func failureStatus(err error) int {
	var contentErr *content.ValidationError
	var inquiryErr *inquiry.ValidationError
	switch {
	case errors.As(err, &contentErr), errors.As(err, &inquiryErr), storage.IsUploadError(err),
		errors.Is(err, repo.ErrConflict), errors.Is(err, repo.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repo.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// loadFailed logs a read failure and returns the notice to show instead.
func (s *Server) loadFailed(what string, err error) web.Notice {
	s.logger.Error("load failed", "what", what, "error", err)
	s.metrics.Error("http")
	return errorNotice(userMessage(err))
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	s.deps.Auth.AddFlash(w, r, kind, message)
	http.Redirect(w, r, s.url(target), http.StatusSeeOther)
}

// url prefixes an absolute site path with the configured base path.
func (s *Server) url(path string) string {
	return s.basePath + path
}
