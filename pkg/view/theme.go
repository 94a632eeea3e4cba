package view

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Default theme identifiers.
const (
	DefaultThemeName    = "insights"
	DefaultThemeVariant = "light"
)

// DefaultManifest describes the built-in palette. Risk tones drive the
// colouring of probabilities and risk labels.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"surface":       "#eef2ff",
			"panel":         "#ffffff",
			"text":          "#111827",
			"muted":         "#6b7280",
			"accent":        "#2563eb",
			"accent-alt":    "#4f46e5",
			"risk-high":     "#dc2626",
			"risk-elevated": "#ea580c",
			"risk-low":      "#16a34a",
			"error-surface": "#fef2f2",
		},
		Templates: map[string]string{
			"page": "page.tpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/insights",
			Files: map[string]string{
				"stylesheet": "insights.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface":       "#0f172a",
					"panel":         "#1e293b",
					"text":          "#f1f5f9",
					"muted":         "#94a3b8",
					"error-surface": "#450a0a",
				},
			},
		},
	}
}

// ManifestSelector resolves theme selections from a fixed set of manifests.
// Unknown names fall back to the default theme; a variant must either be the
// base variant or be declared by the manifest.
type ManifestSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewThemeSelector registers manifests and returns a selector over them. The
// first manifest is the default. Without manifests DefaultManifest is used.
func NewThemeSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}

	registry := theme.NewRegistry()
	selector := &ManifestSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultVariant: DefaultThemeVariant,
	}
	for _, manifest := range manifests {
		if manifest == nil {
			return nil, errors.New("view: theme manifest is nil")
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("view: register theme %q: %w", manifest.Name, err)
		}
		if _, exists := selector.manifests[manifest.Name]; exists {
			return nil, fmt.Errorf("view: theme %q declared twice", manifest.Name)
		}
		selector.manifests[manifest.Name] = manifest
		if selector.defaultTheme == "" {
			selector.defaultTheme = manifest.Name
		}
	}
	return selector, nil
}

// Select implements theme.ThemeSelector.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	manifest, ok := s.manifests[name]
	if !ok {
		name = s.defaultTheme
		manifest = s.manifests[name]
	}
	if manifest == nil {
		return nil, errors.New("view: no theme registered")
	}

	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}
	if variant != s.defaultVariant {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("view: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Variants lists the variants selectable for the named theme.
func (s *ManifestSelector) Variants(name string) []string {
	manifest, ok := s.manifests[name]
	if !ok {
		return nil
	}
	out := []string{s.defaultVariant}
	for variant := range manifest.Variants {
		if variant != s.defaultVariant {
			out = append(out, variant)
		}
	}
	sort.Strings(out[1:])
	return out
}

// RendererConfig flattens a selection into the values templates consume:
// variant tokens override base tokens and every token becomes a CSS custom
// property.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	templates := make(map[string]string, len(manifest.Templates))
	for key, value := range manifest.Templates {
		templates[key] = value
	}
	assets := manifest.Assets
	files := make(map[string]string, len(assets.Files))
	for key, value := range assets.Files {
		files[key] = value
	}

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
		for key, value := range variant.Templates {
			templates[key] = value
		}
		for key, value := range variant.Assets.Files {
			files[key] = value
		}
		if variant.Assets.Prefix != "" {
			assets.Prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	prefix := strings.TrimRight(assets.Prefix, "/")
	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: templates,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			return prefix + "/" + file
		},
	}
}

// ThemeContext is the theme data exposed to templates.
type ThemeContext struct {
	Name         string            `json:"name,omitempty"`
	Variant      string            `json:"variant,omitempty"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	CSSVars      map[string]string `json:"css_vars,omitempty"`
	CSSVarsStyle string            `json:"css_vars_style,omitempty"`
	Stylesheet   string            `json:"stylesheet,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) ThemeContext {
	if cfg == nil {
		return ThemeContext{}
	}
	ctx := ThemeContext{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  copyStringMap(cfg.Tokens),
		CSSVars: copyStringMap(cfg.CSSVars),
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	if cfg.AssetURL != nil {
		ctx.Stylesheet = cfg.AssetURL("stylesheet")
	}
	return ctx
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
