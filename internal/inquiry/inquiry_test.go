package inquiry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"quartz-site/internal/repo"
)

func validForm() Form {
	f := NewForm()
	f.Buyer.CompanyName = "Acme Glass"
	f.Buyer.ContactPersonName = "Priya"
	f.Buyer.Email = "priya@acme.test"
	f.Buyer.MobileWhatsApp = "+91 90000 00000"
	f.Declaration.Confirmation = true
	f.Declaration.Name = "Priya"
	f.Declaration.Date = "2024-05-01"
	return f
}

func TestValidateAcceptsMinimalSubmission(t *testing.T) {
	if err := Validate(validForm()); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
}

func TestValidateRejectsInOrder(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Form)
		want   string
	}{
		{"missing company", func(f *Form) { f.Buyer.CompanyName = "   " }, "Company Name is required"},
		{"missing contact", func(f *Form) { f.Buyer.ContactPersonName = "" }, "Contact Person Name is required"},
		{"malformed email", func(f *Form) { f.Buyer.Email = "not-an-email" }, "Invalid email"},
		{"empty email", func(f *Form) { f.Buyer.Email = "" }, "Invalid email"},
		{"missing phone", func(f *Form) { f.Buyer.MobileWhatsApp = "" }, "Mobile / WhatsApp No. is required"},
		{"unchecked declaration", func(f *Form) { f.Declaration.Confirmation = false }, "You must accept the declaration"},
		{"missing declaration name", func(f *Form) { f.Declaration.Name = " " }, "Declaration name is required"},
		{"missing declaration date", func(f *Form) { f.Declaration.Date = "" }, "Declaration date is required"},
		{"first failure wins", func(f *Form) {
			f.Buyer.CompanyName = ""
			f.Buyer.Email = "bad"
		}, "Company Name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.mutate(&f)
			err := Validate(f)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Message != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, verr.Message)
			}
		})
	}
}

func TestParseFormReadsSections(t *testing.T) {
	v := url.Values{}
	v.Set("buyer.companyName", "Acme Glass")
	v.Set("quartz.grade999", "on")
	v.Set("quartz.gradeOther", "on")
	v.Set("quartz.gradeOtherText", "99.99%")
	v.Set("quantity.monthlyOrOneTime", "sometimes")
	v.Set(ApplicationField("solar", "mgSi"), "on")
	v.Set("application.otherSpecialized.otherText", "Optics")
	v.Set("declaration.confirmation", "on")

	f := ParseForm(v)
	if f.Buyer.CompanyName != "Acme Glass" {
		t.Fatalf("unexpected company %q", f.Buyer.CompanyName)
	}
	if !f.Quartz.Grade999 || !f.Quartz.GradeOther || f.Quartz.GradeOtherText != "99.99%" {
		t.Fatalf("unexpected quartz section %+v", f.Quartz)
	}
	if f.Quantity.QuantityUnit != DefaultQuantityUnit {
		t.Fatalf("expected default unit, got %q", f.Quantity.QuantityUnit)
	}
	if f.Quantity.MonthlyOrOneTime != "" {
		t.Fatalf("expected unknown frequency dropped, got %q", f.Quantity.MonthlyOrOneTime)
	}
	if !f.ApplicationChecked("solar", "mgSi") || f.ApplicationChecked("glass", "float") {
		t.Fatal("unexpected application checkboxes")
	}
	if !f.Declaration.Confirmation {
		t.Fatal("expected declaration confirmed")
	}
}

func TestBuildPayloadShape(t *testing.T) {
	f := validForm()
	f.Quartz.GradeOtherText = "ignored while unchecked"
	f.Packing.CustomPacking = true
	f.Packing.CustomPackingText = "1.5MT bags"

	p := BuildPayload(f)
	if len(p) != 10 {
		t.Fatalf("expected 10 sections, got %d", len(p))
	}
	quartz := p[SectionQuartz].(map[string]any)
	grade := quartz["gradePurity"].(map[string]any)
	if grade["other"] != nil {
		t.Fatalf("expected unchecked other grade unset, got %v", grade["other"])
	}
	if grade["99.9%"] != false {
		t.Fatalf("expected fixed checkbox present as false, got %v", grade["99.9%"])
	}
	quantity := p[SectionQuantity].(map[string]any)
	if quantity["trialQuantity"] != nil || quantity["quantityUnit"] != "MT" {
		t.Fatalf("unexpected quantity section %v", quantity)
	}
	packing := p[SectionPacking].(map[string]any)
	if packing["customPacking"] != "1.5MT bags" {
		t.Fatalf("expected custom packing text, got %v", packing["customPacking"])
	}
	app := p[SectionApplication].(map[string]any)
	other := app[OtherSpecializedGroup].(map[string]any)
	if _, ok := other["otherText"]; !ok {
		t.Fatal("expected otherText on the other specialised group")
	}
}

func TestStripUnsetKeepsFalsyValues(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := map[string]any{
		"gone":  nil,
		"no":    false,
		"zero":  0,
		"empty": "",
		"when":  when,
		"list":  []string{"a"},
		"nested": map[string]any{
			"gone": nil,
			"keep": "x",
			"deeper": map[string]any{
				"gone": nil,
			},
		},
	}
	out := StripUnset(in)
	if _, ok := out["gone"]; ok {
		t.Fatal("expected nil leaf removed")
	}
	for _, key := range []string{"no", "zero", "empty", "when", "list"} {
		if _, ok := out[key]; !ok {
			t.Fatalf("expected %q preserved", key)
		}
	}
	if out["when"] != when {
		t.Fatalf("expected time preserved, got %v", out["when"])
	}
	nested := out["nested"].(map[string]any)
	if _, ok := nested["gone"]; ok {
		t.Fatal("expected nested nil removed")
	}
	if nested["keep"] != "x" {
		t.Fatal("expected nested value kept")
	}
	deeper := nested["deeper"].(map[string]any)
	if len(deeper) != 0 {
		t.Fatalf("expected empty nested map, got %v", deeper)
	}
	if _, ok := in["gone"]; !ok {
		t.Fatal("input must not be modified")
	}
}

type fakeStore struct {
	got repo.NewInquiry
	err error
}

func (s *fakeStore) CreateInquiry(_ context.Context, in repo.NewInquiry) (*repo.Inquiry, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.got = in
	return &repo.Inquiry{ID: "inq-1", CompanyName: in.CompanyName, Payload: in.Payload, CreatedAt: in.CreatedAt}, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	inquiries []string
	err       error
}

func (n *fakeNotifier) NotifyInquiry(_ context.Context, inq *repo.Inquiry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inquiries = append(n.inquiries, inq.ID)
	return n.err
}

func (n *fakeNotifier) NotifyContactMessage(context.Context, *repo.ContactMessage) error {
	return n.err
}

func TestSubmitStoresLogsAndNotifies(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	s := NewService(store, notifier, logger, nil)
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	inq, err := s.Submit(context.Background(), validForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	s.Wait()

	if !store.got.CreatedAt.Equal(fixed) {
		t.Fatalf("expected server timestamp, got %v", store.got.CreatedAt)
	}
	quantity := store.got.Payload[SectionQuantity].(map[string]any)
	if _, ok := quantity["trialQuantity"]; ok {
		t.Fatal("expected unset trial quantity stripped before storing")
	}
	if len(notifier.inquiries) != 1 || notifier.inquiries[0] != inq.ID {
		t.Fatalf("expected one notification, got %v", notifier.inquiries)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))[0], &entry); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if entry["source"] != Source {
		t.Fatalf("expected source %q, got %v", Source, entry["source"])
	}
	if _, ok := entry["payload"].(map[string]any); !ok {
		t.Fatalf("expected structured payload, got %T", entry["payload"])
	}
}

func TestSubmitValidationStopsBeforeStore(t *testing.T) {
	store := &fakeStore{}
	s := NewService(store, nil, slog.New(slog.DiscardHandler), nil)
	f := validForm()
	f.Declaration.Confirmation = false

	_, err := s.Submit(context.Background(), f)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.got.CompanyName != "" {
		t.Fatal("store must not be called on invalid input")
	}
}

func TestSubmitSurfacesStoreErrorButNotNotifierError(t *testing.T) {
	failing := &fakeStore{err: repo.ErrPermissionDenied}
	s := NewService(failing, nil, slog.New(slog.DiscardHandler), nil)
	if _, err := s.Submit(context.Background(), validForm()); !errors.Is(err, repo.ErrPermissionDenied) {
		t.Fatalf("expected store error, got %v", err)
	}

	notifier := &fakeNotifier{err: errors.New("offline")}
	s = NewService(&fakeStore{}, notifier, slog.New(slog.DiscardHandler), nil)
	if _, err := s.Submit(context.Background(), validForm()); err != nil {
		t.Fatalf("notifier failure must not fail the submission: %v", err)
	}
	s.Wait()
}
