package inquiry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"quartz-site/internal/metrics"
	"quartz-site/internal/repo"
)

// Source tags structured inquiry logs.
const Source = "quartz_inquiry_form"

const notifyTimeout = 20 * time.Second

// Store persists inquiries.
type Store interface {
	CreateInquiry(ctx context.Context, in repo.NewInquiry) (*repo.Inquiry, error)
}

// Notifier alerts staff about new leads.
type Notifier interface {
	NotifyInquiry(ctx context.Context, inq *repo.Inquiry) error
	NotifyContactMessage(ctx context.Context, msg *repo.ContactMessage) error
}

// Service accepts public inquiry submissions.
type Service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewService wires the inquiry service. notifier may be nil.
func NewService(store Store, notifier Notifier, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger.With("component", "inquiry"),
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates f, logs a structured copy of the payload, stores it
// unread with a server timestamp and triggers the staff notification.
func (s *Service) Submit(ctx context.Context, f Form) (*repo.Inquiry, error) {
	if err := Validate(f); err != nil {
		s.metrics.Submission("inquiry", "invalid")
		return nil, err
	}

	ts := s.now()
	payload := StripUnset(BuildPayload(f))
	s.logger.Info("quartz inquiry received",
		"timestamp", ts.Format(time.RFC3339Nano),
		"source", Source,
		"payload", payload,
	)

	inq, err := s.store.CreateInquiry(ctx, repo.NewInquiry{
		CompanyName: strings.TrimSpace(f.Buyer.CompanyName),
		ContactName: strings.TrimSpace(f.Buyer.ContactPersonName),
		Email:       strings.TrimSpace(f.Buyer.Email),
		Payload:     payload,
		CreatedAt:   ts,
	})
	if err != nil {
		s.metrics.Submission("inquiry", "error")
		s.metrics.Error("inquiry")
		s.logger.Error("store inquiry failed", "error", err)
		return nil, fmt.Errorf("store inquiry: %w", err)
	}
	s.metrics.Submission("inquiry", "stored")

	if s.notifier != nil {
		s.dispatch(ctx, "inquiry", func(ctx context.Context) error {
			return s.notifier.NotifyInquiry(ctx, inq)
		})
	}
	return inq, nil
}

// NotifyContactMessage forwards a stored contact message to staff.
func (s *Service) NotifyContactMessage(ctx context.Context, msg *repo.ContactMessage) {
	if s.notifier == nil || msg == nil {
		return
	}
	s.dispatch(ctx, "contact_message", func(ctx context.Context) error {
		return s.notifier.NotifyContactMessage(ctx, msg)
	})
}

// Wait blocks until in-flight notifications finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// dispatch runs send in the background, detached from the request context.
// Failures are logged and counted only.
func (s *Service) dispatch(ctx context.Context, kind string, send func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := send(nctx); err != nil {
			s.metrics.WANotification("failed")
			s.logger.Warn("staff notification failed", "kind", kind, "error", err)
			return
		}
		s.metrics.WANotification("sent")
	}()
}
