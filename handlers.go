package blogfront

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/lifecycle"
	"github.com/eringen/blogfront/views"
)

func (a *App) handleBlog(c echo.Context) error {
	if partial(c) == partialData {
		var m lifecycle.Machine[[]api.PostSummary]
		state := lifecycle.Load(c.Request().Context(), &m, func(ctx context.Context) ([]api.PostSummary, error) {
			return a.Client.ListPosts(ctx, api.ListOptions{PublishedOnly: true})
		})
		return RenderStatus(c, a.fragmentStatus(c, state.Cause), a.Views.BlogSection(state))
	}
	return a.renderPage(c, http.StatusOK, views.PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         views.BuildURL(a.Config.URL),
		OGType:      "website",
	}, a.Views.Blog())
}

func (a *App) handlePost(c echo.Context) error {
	slug, err := pathParam(c, "slug")
	if err != nil {
		return echo.ErrNotFound
	}
	if partial(c) == partialData {
		// Each fragment request gets its own machine. A slow response for a
		// slug the reader already left is dropped by nav.js, whose abort
		// cancels this request's context and with it the backend call.
		var m lifecycle.Machine[api.Post]
		state := lifecycle.Load(c.Request().Context(), &m, func(ctx context.Context) (api.Post, error) {
			return a.Client.GetPost(ctx, slug)
		})
		return RenderStatus(c, a.fragmentStatus(c, state.Cause), a.Views.PostSection(state))
	}
	return a.renderPage(c, http.StatusOK, views.PageMeta{
		Title:  "Post",
		URL:    views.PostURL(a.Config.URL, slug),
		OGType: "article",
	}, a.Views.Post(slug))
}

// pathParam returns the decoded path parameter name. Echo decodes
// parameters only when the request path has no RawPath.
func pathParam(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

func (a *App) handleAbout(c echo.Context) error {
	return a.renderPage(c, http.StatusOK, views.PageMeta{
		Title: "About",
		URL:   views.BuildURL(a.Config.URL, "about"),
	}, a.Views.About())
}

// fragmentStatus maps a load failure to the fragment's status code and
// logs it. The fragment body always carries the rendered view state.
func (a *App) fragmentStatus(c echo.Context, err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case api.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled):
		// the reader navigated away
		return http.StatusBadGateway
	}
	a.Logger.Warn("backend request failed",
		"path", c.Request().URL.Path,
		"error", err,
	)
	return http.StatusBadGateway
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s\n", views.BuildURL(a.Config.URL, "sitemap.xml"))
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderPage(c, http.StatusNotFound, views.PageMeta{Title: "Not found"}, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "path", c.Request().URL.Path, "status", code, "error", err)
		_ = a.renderPage(c, code, views.PageMeta{Title: "Error"}, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// backendError turns a failed backend call into an HTTP error for the
// error handler.
func backendError(err error) error {
	if api.IsNotFound(err) {
		return echo.ErrNotFound.WithInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadGateway, "backend unavailable").WithInternal(err)
}
