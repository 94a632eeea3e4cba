// Package web exposes the dashboard over HTTP: a server-rendered page with
// plain form posts, and a JSON API driving the same per-session state.
package web

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-workforce-insights/pkg/dashboard"
	"github.com/goliatone/go-workforce-insights/pkg/view"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "insights_session"

const dashboardKey = "insights.dashboard"

// Logger is the logging surface used by the server.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Option configures a Server.
type Option func(*Server)

// WithRenderers replaces the page renderers. The registry must provide
// view.FormatHTML.
func WithRenderers(registry *view.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.renderers = registry
		}
	}
}

// WithThemeSelector sets the selector used to resolve the page theme.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(s *Server) {
		if selector != nil {
			s.selector = selector
		}
	}
}

// WithTheme sets the default theme and variant. Requests may pick another
// variant with ?variant=.
func WithTheme(name, variant string) Option {
	return func(s *Server) {
		s.themeName = strings.TrimSpace(name)
		s.themeVariant = strings.TrimSpace(variant)
	}
}

// WithAssets serves files under the theme asset prefix.
func WithAssets(prefix string, files fs.FS) Option {
	return func(s *Server) {
		s.assetPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
		s.assets = files
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// Server binds the dashboard sessions to gin routes.
type Server struct {
	store     *dashboard.Store
	forms     view.Forms
	renderers *view.Registry
	selector  theme.ThemeSelector
	logger    Logger

	themeName     string
	themeVariant  string
	assetPrefix   string
	assets        fs.FS
	secureCookies bool
}

// New constructs a Server. Without options the built-in renderers, theme
// and assets are used.
func New(store *dashboard.Store, forms view.Forms, options ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("web: session store is required")
	}
	s := &Server{
		store:        store,
		forms:        forms,
		logger:       nopLogger{},
		themeName:    view.DefaultThemeName,
		themeVariant: view.DefaultThemeVariant,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.renderers == nil {
		registry, err := view.NewDefaultRegistry()
		if err != nil {
			return nil, err
		}
		s.renderers = registry
	}
	if !s.renderers.Has(view.FormatHTML) {
		return nil, errors.New("web: html renderer is required")
	}
	if s.selector == nil {
		selector, err := view.NewThemeSelector()
		if err != nil {
			return nil, err
		}
		s.selector = selector
	}
	if s.assets == nil {
		s.assetPrefix = view.DefaultManifest().Assets.Prefix
		s.assets = view.AssetsFS()
	}
	return s, nil
}

// Handler returns a gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}
	s.Register(router)
	return router
}

// Register adds the dashboard routes to router.
func (s *Server) Register(router gin.IRouter) {
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if s.assets != nil && s.assetPrefix != "" {
		router.StaticFS(s.assetPrefix, http.FS(s.assets))
	}

	pages := router.Group("/", s.session())
	pages.GET("/", s.page)
	pages.POST("/attrition", s.submitAttritionForm)
	pages.POST("/productivity", s.submitProductivityForm)
	pages.POST("/reset", s.reset)

	api := router.Group("/api", s.session())
	api.GET("/state", s.state)
	api.PATCH("/attrition/fields", s.patchAttritionField)
	api.PATCH("/productivity/fields", s.patchProductivityField)
	api.POST("/attrition", s.submitAttritionAPI)
	api.POST("/productivity", s.submitProductivityAPI)
	api.GET("/contract/:form", s.contract)
}

// session resolves the dashboard of the caller, opening a session when the
// cookie is missing or stale.
func (s *Server) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		previous, _ := c.Cookie(SessionCookie)
		id, dash := s.store.Resolve(c.Request.Context(), previous)
		if id != previous {
			s.setSessionCookie(c, id, 0)
		}
		c.Set(dashboardKey, dash)
		c.Next()
	}
}

func (s *Server) setSessionCookie(c *gin.Context, id string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, maxAge, "/", "", s.secureCookies, true)
}

func dashboardFrom(c *gin.Context) *dashboard.Dashboard {
	return c.MustGet(dashboardKey).(*dashboard.Dashboard)
}

// pageFor builds the page of dash using the theme variant requested in the
// query, or the default one when the request names none or an unknown one.
func (s *Server) pageFor(c *gin.Context, dash *dashboard.Dashboard) view.Page {
	variant := strings.TrimSpace(c.Query("variant"))
	if variant == "" {
		variant = s.themeVariant
	}
	selection, err := s.selector.Select(s.themeName, variant)
	if err != nil && variant != s.themeVariant {
		selection, err = s.selector.Select(s.themeName, s.themeVariant)
	}
	if err != nil {
		s.logger.Printf("web: theme: %v", err)
	}
	return view.NewPage(dash.Snapshot(), s.forms, view.RendererConfig(selection))
}
