package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-workforce-insights/pkg/render/template"
	"github.com/goliatone/go-workforce-insights/pkg/render/template/pongo"
)

// Renderer names registered by NewDefaultRegistry.
const (
	FormatHTML = "html"
	FormatJSON = "json"
)

// Renderer writes a page in one output format.
type Renderer interface {
	Name() string
	ContentType() string
	Render(w io.Writer, page Page) error
}

// HTMLRenderer renders pages through a template engine.
type HTMLRenderer struct {
	templates template.TemplateRenderer
	entry     string
}

// HTMLOption configures an HTMLRenderer.
type HTMLOption func(*htmlConfig)

type htmlConfig struct {
	templates fs.FS
	baseDir   string
	engine    template.TemplateRenderer
	entry     string
}

// WithTemplatesFS replaces the built-in templates.
func WithTemplatesFS(files fs.FS) HTMLOption {
	return func(cfg *htmlConfig) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithTemplatesDir loads templates from disk ahead of the built-in set, so a
// deployment can override individual partials.
func WithTemplatesDir(dir string) HTMLOption {
	return func(cfg *htmlConfig) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithTemplateRenderer uses an existing engine. The dashboard filters are
// registered on it.
func WithTemplateRenderer(engine template.TemplateRenderer) HTMLOption {
	return func(cfg *htmlConfig) {
		cfg.engine = engine
	}
}

// WithEntryTemplate changes the template rendered for a page.
func WithEntryTemplate(name string) HTMLOption {
	return func(cfg *htmlConfig) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.entry = trimmed
		}
	}
}

// NewHTMLRenderer constructs an HTMLRenderer backed by pongo2 unless another
// engine is supplied.
func NewHTMLRenderer(options ...HTMLOption) (*HTMLRenderer, error) {
	cfg := &htmlConfig{templates: TemplatesFS(), entry: PageTemplate}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	engine := cfg.engine
	if engine == nil {
		engineOptions := []pongo.Option{
			pongo.WithName("dashboard"),
			pongo.WithFS(cfg.templates),
			pongo.WithFilters(Filters()),
		}
		if cfg.baseDir != "" {
			engineOptions = append(engineOptions, pongo.WithBaseDir(cfg.baseDir))
		}
		built, err := pongo.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("view: template engine: %w", err)
		}
		engine = built
	} else {
		for name, filter := range Filters() {
			if err := engine.RegisterFilter(name, filter); err != nil {
				return nil, fmt.Errorf("view: register filter %q: %w", name, err)
			}
		}
	}

	return &HTMLRenderer{templates: engine, entry: cfg.entry}, nil
}

// Name implements Renderer.
func (r *HTMLRenderer) Name() string { return FormatHTML }

// ContentType implements Renderer.
func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Render implements Renderer.
func (r *HTMLRenderer) Render(w io.Writer, page Page) error {
	if err := r.templates.RenderTemplate(w, r.entry, page); err != nil {
		return fmt.Errorf("view: render %s: %w", r.entry, err)
	}
	return nil
}

// JSONRenderer writes the dashboard snapshot behind a page.
type JSONRenderer struct{}

// Name implements Renderer.
func (JSONRenderer) Name() string { return FormatJSON }

// ContentType implements Renderer.
func (JSONRenderer) ContentType() string { return "application/json; charset=utf-8" }

// Render implements Renderer.
func (JSONRenderer) Render(w io.Writer, page Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(page.Snapshot)
}

// Registry stores renderers by name.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// NewDefaultRegistry registers the HTML and JSON renderers.
func NewDefaultRegistry(options ...HTMLOption) (*Registry, error) {
	html, err := NewHTMLRenderer(options...)
	if err != nil {
		return nil, err
	}
	registry := NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(JSONRenderer{})
	return registry, nil
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("view: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return errors.New("view: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("view: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("view: renderer %q not found", name)
	}
	return renderer, nil
}

// List returns the registered renderer names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a renderer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[name]
	return ok
}
