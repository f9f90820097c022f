package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/services"
	"github.com/abrezinsky/partyvote/internal/tabs"
	"github.com/abrezinsky/partyvote/internal/websocket"
)

// maxUploadBytes bounds a registration form, logo included
const maxUploadBytes = 8 << 20

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Templates holds all parsed HTML templates
type Templates struct {
	Index *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Tabs         *tabs.Registry
	Catalog      services.CatalogServicer
	Hub          *websocket.Hub
	Log          HTTPLogger
	PublicURL    string // encoded in the QR code
	templates    *Templates
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	registry *tabs.Registry,
	catalog services.CatalogServicer,
	templatesFS fs.FS,
	staticServer http.Handler,
	hub *websocket.Hub,
	publicURL string,
	log HTTPLogger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Tabs:         registry,
		Catalog:      catalog,
		Hub:          hub,
		Log:          log,
		PublicURL:    publicURL,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

var templateFuncs = template.FuncMap{
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
	// logo only lets image data URLs through; anything else gets the placeholder
	"logo": func(s string) template.URL {
		if strings.HasPrefix(s, "data:image/") {
			return template.URL(s)
		}
		return template.URL(models.PlaceholderLogo)
	},
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Index, err = template.New("index.html").Funcs(templateFuncs).ParseFS(templatesFS, "index.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}
	return t, nil
}
