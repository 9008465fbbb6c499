package auth

import "net/http"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-time notice carried across a redirect.
type Flash struct {
	Kind    string
	Message string
}

// AddFlash queues a notice for the next page render.
func (s *Service) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	session := s.session(r)
	session.AddFlash(message, kind)
	if err := session.Save(r, w); err != nil {
		s.logger.Error("save flash failed", "error", err)
	}
}

// Flashes pops the queued notices.
func (s *Service) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session := s.session(r)
	var out []Flash
	for _, kind := range []string{FlashSuccess, FlashError} {
		for _, v := range session.Flashes(kind) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Kind: kind, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		if err := session.Save(r, w); err != nil {
			s.logger.Error("clear flashes failed", "error", err)
		}
	}
	return out
}
