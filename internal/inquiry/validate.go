package inquiry

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports the first failing inquiry rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	emailOnce      sync.Once
	emailValidator *validator.Validate
)

func validEmail(email string) bool {
	emailOnce.Do(func() {
		emailValidator = validator.New()
	})
	return emailValidator.Var(email, "required,email") == nil
}

// Validate checks the required inquiry fields in form order and returns the
// first failure. Values are trimmed before checking.
func Validate(f Form) error {
	rules := []struct {
		field   string
		ok      bool
		message string
	}{
		{"companyName", strings.TrimSpace(f.Buyer.CompanyName) != "", "Company Name is required"},
		{"contactPersonName", strings.TrimSpace(f.Buyer.ContactPersonName) != "", "Contact Person Name is required"},
		{"email", validEmail(strings.TrimSpace(f.Buyer.Email)), "Invalid email"},
		{"mobileWhatsApp", strings.TrimSpace(f.Buyer.MobileWhatsApp) != "", "Mobile / WhatsApp No. is required"},
		{"confirmation", f.Declaration.Confirmation, "You must accept the declaration"},
		{"declarationName", strings.TrimSpace(f.Declaration.Name) != "", "Declaration name is required"},
		{"declarationDate", strings.TrimSpace(f.Declaration.Date) != "", "Declaration date is required"},
	}
	for _, r := range rules {
		if !r.ok {
			return &ValidationError{Field: r.field, Message: r.message}
		}
	}
	return nil
}
