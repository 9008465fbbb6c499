package content

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	youtubePattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+`)
	httpURLPattern = regexp.MustCompile(`^https?://[^\s/]+\S*$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("youtube", func(fl validator.FieldLevel) bool {
			return youtubePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return httpURLPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
			return IsImageURL(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// IsImageURL accepts absolute http(s) URLs and paths served by the image bucket.
func IsImageURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "/images/") || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Validate checks v against its struct tags and returns the first failure as
// a *ValidationError.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Message: message(fe)}
}

var fieldLabels = map[string]string{
	"name":             "Name",
	"description":      "Description",
	"image_url":        "Image",
	"display_order":    "Display order",
	"features":         "Features",
	"images":           "Images",
	"youtube_url":      "YouTube URL",
	"pdf_url":          "PDF URL",
	"whatsapp_message": "WhatsApp message",
	"title":            "Title",
	"company":          "Company",
	"content":          "Content",
	"rating":           "Rating",
	"icon":             "Icon",
	"question":         "Question",
	"answer":           "Answer",
	"slug":             "Slug",
	"excerpt":          "Excerpt",
	"cover_image":      "Cover image",
	"email":            "Email",
	"phone":            "Phone",
	"subject":          "Subject",
	"message":          "Message",
}

func label(field string) string {
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("%s can have at most %s entries", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", name, fe.Param())
	case "email":
		return "Invalid email"
	case "slug":
		return "Slug may only contain lowercase letters, numbers and single hyphens"
	case "youtube":
		return "YouTube URL must point to youtube.com or youtu.be"
	case "httpurl":
		return name + " must be an http(s) URL"
	case "imageurl":
		return name + " must be an http(s) URL or an uploaded image"
	}
	return name + " is invalid"
}
