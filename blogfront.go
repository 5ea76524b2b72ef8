// Package blogfront is the web front-end of a personal blog built with Go,
// Echo, and templ. It serves the page shell and renders post data fetched
// from a remote blog API into HTML fragments.
//
// Pages mount in a loading state; the embedded navigation script then
// requests each page's data fragment, and in-app links swap the outlet
// without a full page reload.
package blogfront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/views"
)

// App is the central blogfront application. It wires together the API
// client, handlers, middleware, and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Client *api.Client
	Views  ViewFuncs
	Logger *slog.Logger

	limiter      *RequestLimiter
	metrics      *prometheus.Registry
	customRoutes []func(*App)
	version      string
}

// New creates a blogfront App with the given configuration and views.
// Routes and middleware are registered immediately, so a.Echo can serve
// requests (for example in tests) without calling Start.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Views:   views,
		Logger:  slog.Default(),
		metrics: prometheus.NewRegistry(),
		version: "dev",
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.Client == nil {
		a.Client = api.New(api.Config{
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.API.Timeout,
		}, a.Logger)
	}
	a.limiter = NewRequestLimiter(cfg.Limits.RequestsPerSecond, cfg.Limits.Burst, cfg.Limits.IdleTimeout)

	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a
}

// Start serves HTTP on Config.Addr until ctx is canceled, then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("starting server", "addr", a.Config.Addr, "api", a.Config.API.BaseURL)
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("blogfront: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down server", "timeout", a.Config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("blogfront: shutdown: %w", err)
	}
	a.Logger.Info("stopped server", "addr", a.Config.Addr)
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.StaticFS("/public", echo.MustSubFS(EmbeddedAssets, "embedded"))
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.metrics}))

	// Feeds and photos always call the backend.
	e.GET("/feed.xml", a.handleFeed, a.limitBackend)
	e.GET("/sitemap.xml", a.handleSitemap, a.limitBackend)
	e.GET("/photos/:filename", a.handlePhoto, a.limitBackend)

	// Pages only call the backend for their data fragment.
	e.GET("/", a.handleBlog, dataOnly(a.limitBackend))
	e.GET("/about", a.handleAbout)
	e.GET(views.PostsPrefix+":slug", a.handlePost, dataOnly(a.limitBackend))
}

// Close releases background resources. Call this when the app is shutting down.
func (a *App) Close() error {
	a.limiter.Stop()
	return nil
}

// DefaultViews returns the built-in templates bound to cfg.
func DefaultViews(cfg SiteConfig) ViewFuncs {
	cfg.setDefaults()
	site := cfg.Site()
	return ViewFuncs{
		Layout: func(meta views.PageMeta, body templ.Component) templ.Component {
			return views.Layout(site, meta, body)
		},
		Blog:        views.Blog,
		BlogSection: views.BlogSection,
		Post:        views.Post,
		PostSection: func(state views.PostState) templ.Component {
			return views.PostSection(site, state)
		},
		About: func() templ.Component {
			return views.About(site)
		},
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}
