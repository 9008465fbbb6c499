package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"quartz-site/internal/inquiry"
	"quartz-site/internal/repo"
	"quartz-site/internal/site"
)

//go:embed templates static
var files embed.FS

// Static returns the embedded static assets rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Public and admin pages. Each page is parsed together with its layout.
var (
	publicPages = []string{
		"home.html", "about.html", "products.html", "product_detail.html", "gallery.html",
		"services.html", "testimonials.html", "faq.html", "blog.html", "blog_post.html",
		"contact.html", "privacy.html", "not_found.html",
	}
	adminPages = []string{
		"login.html", "dashboard.html", "categories.html", "products.html", "gallery.html",
		"testimonials.html", "blog.html", "services.html", "faqs.html", "messages.html",
		"inquiry.html",
	}
)

// Notice is a message shown at the top of a page.
type Notice struct {
	Kind    string
	Message string
}

// Data is passed to every template.
type Data struct {
	Title       string
	ActiveNav   string
	CSRFToken   string
	Company     site.Company
	Nav         []site.NavLink
	AdminNav    []site.NavLink
	AdminEmail  string
	WhatsAppURL string
	Notices     []Notice
	Year        int
	Page        any
}

// Templates holds the parsed page cache.
type Templates struct {
	cache map[string]*template.Template
}

// NewTemplates parses every page against its layout.
func NewTemplates(wa site.WhatsApp) (*Templates, error) {
	funcs := funcMap(wa)
	cache := make(map[string]*template.Template, len(publicPages)+len(adminPages))

	for _, page := range publicPages {
		ts, err := template.New(page).Funcs(funcs).ParseFS(files,
			"templates/layout.html", "templates/partials/*.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse page template %s: %w", page, err)
		}
		cache[page] = ts
	}
	for _, page := range adminPages {
		name := path.Join("admin", page)
		ts, err := template.New(name).Funcs(funcs).ParseFS(files,
			"templates/admin/layout.html", "templates/partials/*.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse admin template %s: %w", page, err)
		}
		cache[name] = ts
	}
	return &Templates{cache: cache}, nil
}

// Render executes the named page into w with status.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data Data) error {
	ts, ok := t.cache[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	layout := "layout.html"
	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, layout, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var youtubeID = regexp.MustCompile(`(?:v=|youtu\.be/|embed/|shorts/)([A-Za-z0-9_-]{6,})`)

func funcMap(wa site.WhatsApp) template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"dateTime": func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
		"datePtr": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"lines":         func(items []string) string { return strings.Join(items, "\n") },
		"paragraphs":    paragraphs,
		"stars":         func(n int) []int { return make([]int, max(0, min(n, 5))) },
		"whatsApp":      wa.Link,
		"productWA":     func(p repo.Product) string { return wa.ProductLink(p.Name, p.WhatsAppMessage) },
		"youtubeEmbed":  youtubeEmbed,
		"appField":      inquiry.ApplicationField,
		"appGroups":     func() []inquiry.OptionGroup { return inquiry.ApplicationGroups },
		"countries":     func() []string { return inquiry.Countries },
		"quantityUnits": func() []string { return inquiry.QuantityUnits },
		"deliveryTerms": func() []string { return inquiry.DeliveryTermOptions },
		"sections":      PayloadSections,
		"dict":          dict,
		"truncate": func(s string, n int) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return string(r[:n]) + "..."
		},
	}
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

func paragraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func youtubeEmbed(url string) string {
	m := youtubeID.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return "https://www.youtube.com/embed/" + m[1]
}

// Field is one label/value row of an inquiry section.
type Field struct {
	Label string
	Value string
}

// Section is a titled group of inquiry fields.
type Section struct {
	Title  string
	Fields []Field
}

// PayloadSections flattens a stored inquiry payload for display. Sections
// keep their numeric order; booleans show only when ticked.
func PayloadSections(payload map[string]any) []Section {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return sectionIndex(keys[i]) < sectionIndex(keys[j]) })

	out := make([]Section, 0, len(keys))
	for _, k := range keys {
		sec := Section{Title: sectionTitle(k)}
		flatten(&sec.Fields, "", payload[k])
		if len(sec.Fields) > 0 {
			out = append(out, sec)
		}
	}
	return out
}

func flatten(fields *[]Field, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			label := humanize(k)
			if prefix != "" {
				label = prefix + " / " + label
			}
			flatten(fields, label, val[k])
		}
	case bool:
		if val {
			*fields = append(*fields, Field{Label: prefix, Value: "Yes"})
		}
	case string:
		if strings.TrimSpace(val) != "" {
			*fields = append(*fields, Field{Label: prefix, Value: val})
		}
	case nil:
	default:
		*fields = append(*fields, Field{Label: prefix, Value: fmt.Sprint(val)})
	}
}

func sectionIndex(key string) int {
	var n int
	if _, err := fmt.Sscanf(key, "section%d_", &n); err != nil {
		return 1 << 20
	}
	return n
}

func sectionTitle(key string) string {
	if i := strings.IndexByte(key, '_'); i >= 0 {
		return humanize(key[i+1:])
	}
	return humanize(key)
}

// humanize turns camelCase keys into spaced, capitalised labels.
func humanize(key string) string {
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if i > 0 && upper && !(runes[i-1] >= 'A' && runes[i-1] <= 'Z') {
			b.WriteByte(' ')
		}
		if i == 0 && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
