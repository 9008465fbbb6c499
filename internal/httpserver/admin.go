package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"quartz-site/internal/auth"
	"quartz-site/internal/repo"
	"quartz-site/internal/web"

	"github.com/go-chi/chi/v5"
)

func (s *Server) adminRoutes(r chi.Router) {
	r.Get("/", s.handleLoginPage)
	r.Post("/", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.deps.Auth.RequireAdmin)

		r.Post("/logout", s.handleLogout)
		r.Get("/dashboard", s.handleDashboard)

		mountResource(s, r, s.categoryResource())
		mountResource(s, r, s.productResource())
		mountResource(s, r, s.galleryResource())
		mountResource(s, r, s.testimonialResource())
		mountResource(s, r, s.blogResource())
		mountResource(s, r, s.serviceResource())
		mountResource(s, r, s.faqResource())
		r.Post("/blog/{id}/publish", s.handleTogglePublished)

		r.Get("/messages", s.handleMessages)
		r.Post("/messages/{id}/read", s.handleMessageRead)
		r.Post("/messages/{id}/delete", s.handleMessageDelete)
		r.Get("/inquiries/{id}", s.handleInquiry)
		r.Post("/inquiries/{id}/read", s.handleInquiryRead)
		r.Post("/inquiries/{id}/delete", s.handleInquiryDelete)
	})
}

type loginPage struct {
	Email string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth.SessionEmail(r) != "" {
		ok, err := s.deps.Repository.IsAdmin(r.Context(), s.deps.Auth.SessionEmail(r))
		if err == nil && ok {
			http.Redirect(w, r, s.url("/admin/dashboard"), http.StatusSeeOther)
			return
		}
	}
	s.render(w, r, http.StatusOK, "admin/login.html", s.pageData(w, r, "", "", loginPage{}))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))

	err := s.deps.Auth.SignIn(w, r, email, r.PostForm.Get("password"))
	if err == nil {
		http.Redirect(w, r, s.url("/admin/dashboard"), http.StatusSeeOther)
		return
	}

	status := http.StatusUnauthorized
	message := "Invalid email or password."
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
	case errors.Is(err, auth.ErrNotAdmin):
		status = http.StatusForbidden
		message = "You are not authorized to access the admin panel."
	default:
		s.logger.Error("admin sign in failed", "error", err)
		s.metrics.Error("auth")
		status = failureStatus(err)
		message = userMessage(err)
	}
	s.render(w, r, status, "admin/login.html",
		s.pageData(w, r, "", "", loginPage{Email: email}, errorNotice(message)))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.SignOut(w, r); err != nil {
		s.logger.Error("sign out failed", "error", err)
	}
	http.Redirect(w, r, s.url("/admin"), http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Content.DashboardSummary(r.Context())
	var notices []web.Notice
	if err != nil {
		notices = append(notices, s.loadFailed("dashboard", err))
	}
	s.render(w, r, http.StatusOK, "admin/dashboard.html",
		s.pageData(w, r, "Dashboard", "/admin/dashboard", summary, notices...))
}

type messagesPage struct {
	Messages        []repo.ContactMessage
	Inquiries       []repo.Inquiry
	Selected        *repo.ContactMessage
	UnreadMessages  int
	UnreadInquiries int
}

// handleMessages lists contact messages and inquiries. Viewing a message
// with ?view= marks it read.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var notices []web.Notice
	page := messagesPage{}

	if id := r.URL.Query().Get("view"); id != "" {
		messages, err := s.deps.Content.ContactMessages(ctx)
		if err == nil {
			for i := range messages {
				if messages[i].ID == id {
					m := messages[i]
					page.Selected = &m
					break
				}
			}
		}
		if page.Selected != nil && !page.Selected.IsRead {
			if err := s.deps.Content.SetContactMessageRead(ctx, id, true); err != nil {
				notices = append(notices, s.loadFailed("mark message read", err))
			}
		}
	}

	messages, err := s.deps.Content.ContactMessages(ctx)
	if err != nil {
		notices = append(notices, s.loadFailed("contact messages", err))
	}
	inquiries, err := s.deps.Content.Inquiries(ctx)
	if err != nil {
		notices = append(notices, s.loadFailed("inquiries", err))
	}
	page.Messages = messages
	page.Inquiries = inquiries
	for _, m := range messages {
		if !m.IsRead {
			page.UnreadMessages++
		}
	}
	for _, inq := range inquiries {
		if !inq.IsRead {
			page.UnreadInquiries++
		}
	}
	s.render(w, r, http.StatusOK, "admin/messages.html",
		s.pageData(w, r, "Messages", "/admin/messages", page, notices...))
}

func readFlag(r *http.Request) bool {
	return r.PostFormValue("read") != "false"
}

func (s *Server) handleMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Content.SetContactMessageRead(r.Context(), chi.URLParam(r, "id"), readFlag(r)); err != nil {
		s.redirectWithFlash(w, r, "/admin/messages", auth.FlashError, userMessage(err))
		return
	}
	http.Redirect(w, r, s.url("/admin/messages"), http.StatusSeeOther)
}

func (s *Server) handleMessageDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Content.DeleteContactMessage(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.redirectWithFlash(w, r, "/admin/messages", auth.FlashError, userMessage(err))
		return
	}
	s.redirectWithFlash(w, r, "/admin/messages", auth.FlashSuccess, "Message deleted.")
}

// handleInquiry shows one inquiry and marks it read.
func (s *Server) handleInquiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	inq, err := s.deps.Content.Inquiry(ctx, id)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.loadFailed("inquiry", err)
		}
		s.redirectWithFlash(w, r, "/admin/messages", auth.FlashError, userMessage(err))
		return
	}
	var notices []web.Notice
	if !inq.IsRead {
		if err := s.deps.Content.SetInquiryRead(ctx, id, true); err != nil {
			notices = append(notices, s.loadFailed("mark inquiry read", err))
		} else {
			inq.IsRead = true
		}
	}
	page := struct{ Inquiry *repo.Inquiry }{inq}
	s.render(w, r, http.StatusOK, "admin/inquiry.html",
		s.pageData(w, r, "Inquiry", "/admin/messages", page, notices...))
}

func (s *Server) handleInquiryRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Content.SetInquiryRead(r.Context(), id, readFlag(r)); err != nil {
		s.redirectWithFlash(w, r, "/admin/messages", auth.FlashError, userMessage(err))
		return
	}
	http.Redirect(w, r, s.url("/admin/messages#inquiries"), http.StatusSeeOther)
}

func (s *Server) handleInquiryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Content.DeleteInquiry(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.redirectWithFlash(w, r, "/admin/messages", auth.FlashError, userMessage(err))
		return
	}
	s.redirectWithFlash(w, r, "/admin/messages#inquiries", auth.FlashSuccess, "Inquiry deleted.")
}

func (s *Server) handleTogglePublished(w http.ResponseWriter, r *http.Request) {
	post, err := s.deps.Content.TogglePublished(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.redirectWithFlash(w, r, "/admin/blog", auth.FlashError, userMessage(err))
		return
	}
	message := "Post unpublished."
	if post.IsPublished {
		message = "Post published."
	}
	s.redirectWithFlash(w, r, "/admin/blog", auth.FlashSuccess, message)
}
