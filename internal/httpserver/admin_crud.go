package httpserver

import (
	"context"
	"errors"
	"net/http"

	"quartz-site/internal/auth"
	"quartz-site/internal/repo"
	"quartz-site/internal/web"

	"github.com/go-chi/chi/v5"
)

// resource describes one back office collection page: a list with an
// inline create/edit form.
type resource[T, I any] struct {
	path     string
	title    string
	singular string
	page     string
	list     func(context.Context) ([]T, error)
	id       func(T) string
	toInput  func(T) I
	blank    func() I
	parse    func(*http.Request, *uploads, *I) error
	create   func(context.Context, I) error
	update   func(context.Context, string, I) error
	remove   func(context.Context, string) error
	extra    func(context.Context) (map[string]any, error)
}

type resourcePage struct {
	Items  any
	EditID string
	Form   any
	Extra  map[string]any
}

func mountResource[T, I any](s *Server, r chi.Router, res resource[T, I]) {
	base := "/admin" + res.path

	r.Get(res.path, func(w http.ResponseWriter, r *http.Request) {
		var notices []web.Notice
		form := res.blank()
		editID := r.URL.Query().Get("edit")
		if editID != "" {
			items, err := res.list(r.Context())
			found := false
			if err == nil {
				for _, item := range items {
					if res.id(item) == editID {
						form = res.toInput(item)
						found = true
						break
					}
				}
			}
			if !found {
				notices = append(notices, errorNotice(res.singular+" not found."))
				editID = ""
			}
		}
		renderResource(s, w, r, res, http.StatusOK, editID, form, notices...)
	})

	r.Post(res.path, func(w http.ResponseWriter, r *http.Request) {
		saveResource(s, w, r, res, "", res.create, "created")
	})

	r.Post(res.path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		update := func(ctx context.Context, in I) error { return res.update(ctx, id, in) }
		saveResource(s, w, r, res, id, update, "updated")
	})

	r.Post(res.path+"/{id}/delete", func(w http.ResponseWriter, r *http.Request) {
		if err := res.remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			s.mutationFailed(res.title, err)
			s.redirectWithFlash(w, r, base, auth.FlashError, userMessage(err))
			return
		}
		s.redirectWithFlash(w, r, base, auth.FlashSuccess, res.singular+" deleted successfully.")
	})
}

// saveResource parses the posted form and hands it to save. When save
// rejects the input, images uploaded with the form are deleted again and
// the form is shown with the typed values.
func saveResource[T, I any](s *Server, w http.ResponseWriter, r *http.Request, res resource[T, I], editID string, save func(context.Context, I) error, done string) {
	in := res.blank()
	up := &uploads{images: s.deps.Images}
	err := res.parse(r, up, &in)
	if err == nil {
		err = save(r.Context(), in)
	}
	if err != nil {
		up.rollback(r.Context())
		s.mutationFailed(res.title, err)
		renderResource(s, w, r, res, failureStatus(err), editID, in, errorNotice(userMessage(err)))
		return
	}
	s.redirectWithFlash(w, r, "/admin"+res.path, auth.FlashSuccess, res.singular+" "+done+" successfully.")
}

func renderResource[T, I any](s *Server, w http.ResponseWriter, r *http.Request, res resource[T, I], status int, editID string, form I, notices ...web.Notice) {
	ctx := r.Context()
	items, err := res.list(ctx)
	if err != nil {
		notices = append(notices, s.loadFailed(res.title, err))
	}
	page := resourcePage{Items: items, EditID: editID, Form: form}
	if res.extra != nil {
		extra, err := res.extra(ctx)
		if err != nil {
			notices = append(notices, s.loadFailed(res.title+" options", err))
		}
		page.Extra = extra
	}
	s.render(w, r, status, res.page, s.pageData(w, r, res.title, "/admin"+res.path, page, notices...))
}

// mutationFailed logs backend failures. Validation problems are expected
// and only shown to the admin.
func (s *Server) mutationFailed(what string, err error) {
	if failureStatus(err) == http.StatusUnprocessableEntity {
		return
	}
	if errors.Is(err, repo.ErrPermissionDenied) {
		s.logger.Warn("admin change denied by database permissions", "what", what, "error", err)
		return
	}
	s.logger.Error("admin change failed", "what", what, "error", err)
}
