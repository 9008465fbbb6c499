package site

import (
	"net/url"
	"strings"
)

// Company holds the public contact details shown across the site.
type Company struct {
	Name         string
	Tagline      string
	Phone        string
	WhatsApp     string
	Email        string
	Address      string
	WorkingHours string
	Social       SocialLinks
}

// SocialLinks points at the company's social profiles.
type SocialLinks struct {
	Facebook  string
	Instagram string
	LinkedIn  string
	YouTube   string
}

// DefaultCompany is SVN EXIM's published contact card.
var DefaultCompany = Company{
	Name:         "SVN EXIM",
	Tagline:      "Premium Quartz Surfaces",
	Phone:        "+91 863 913 2193",
	WhatsApp:     "+918639132193",
	Email:        "info@svnglobal.com",
	Address:      "House No: 345B, Door No: 26-10/1/1208, Ward No: 26, Ground Floor, Padarupalli, Nellore, SPSR Nellore, Andhra Pradesh - 524004",
	WorkingHours: "Mon - Sat: 9:00 AM - 6:00 PM",
	Social: SocialLinks{
		Facebook:  "https://facebook.com/svnexim",
		Instagram: "https://instagram.com/svnexim",
		LinkedIn:  "https://linkedin.com/company/svnexim",
		YouTube:   "https://youtube.com/@svnexim",
	},
}

// NavLink is a header navigation entry.
type NavLink struct {
	Name string
	Path string
}

// NavLinks is the public header navigation.
var NavLinks = []NavLink{
	{"Home", "/"},
	{"About", "/about"},
	{"Products", "/products"},
	{"Gallery", "/gallery"},
	{"Services", "/services"},
	{"Testimonials", "/testimonials"},
	{"Blog", "/blog"},
	{"FAQ", "/faq"},
	{"Contact", "/contact"},
}

// AdminNav is the back office sidebar.
var AdminNav = []NavLink{
	{"Dashboard", "/admin/dashboard"},
	{"Categories", "/admin/categories"},
	{"Products", "/admin/products"},
	{"Gallery", "/admin/gallery"},
	{"Testimonials", "/admin/testimonials"},
	{"Blog", "/admin/blog"},
	{"Services", "/admin/services"},
	{"FAQs", "/admin/faqs"},
	{"Messages", "/admin/messages"},
}

// DefaultWhatsAppMessage prefills the floating chat button.
const DefaultWhatsAppMessage = "Hello SVN EXIM! I'm interested in your Quartz products. Please provide more information."

// ProductWhatsAppMessage is the enquiry text for a product detail page.
func ProductWhatsAppMessage(productName string) string {
	return `Hello SVN EXIM! I'm interested in the "` + productName + `" product. Please provide pricing and availability details.`
}

// WhatsApp builds wa.me deep links for one number.
type WhatsApp struct {
	digits string
}

// NewWhatsApp keeps only the digits of number.
func NewWhatsApp(number string) WhatsApp {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return WhatsApp{digits: b.String()}
}

// Link returns a deep link opening a chat prefilled with message. An empty
// message uses DefaultWhatsAppMessage.
func (w WhatsApp) Link(message string) string {
	if strings.TrimSpace(message) == "" {
		message = DefaultWhatsAppMessage
	}
	return "https://wa.me/" + w.digits + "?text=" + encodeURIComponent(message)
}

// ProductLink prefers the product's own message over the generated one.
func (w WhatsApp) ProductLink(productName, override string) string {
	if strings.TrimSpace(override) != "" {
		return w.Link(override)
	}
	return w.Link(ProductWhatsAppMessage(productName))
}

// encodeURIComponent escapes like the browser function of the same name:
// spaces become %20 and the unreserved marks !'()* stay literal.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	r := strings.NewReplacer("%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")
	return r.Replace(escaped)
}
