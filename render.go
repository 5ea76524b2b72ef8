package blogfront

import (
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/blogfront/views"
)

const (
	partialPage = "page" // outlet markup only, for in-app navigation
	partialData = "data" // a page's data fragment
)

// partial returns the requested partial kind, or "" for a full document.
// Partials follow the HTMX convention: HX-Request plus ?partial=.
func partial(c echo.Context) string {
	if c.Request().Header.Get("HX-Request") != "true" {
		return ""
	}
	return c.QueryParam("partial")
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderPage writes body inside the layout, or alone when the request is
// an in-app navigation.
func (a *App) renderPage(c echo.Context, code int, meta views.PageMeta, body templ.Component) error {
	c.Response().Header().Add(echo.HeaderVary, "HX-Request")
	if partial(c) == partialPage {
		c.Response().Header().Set("X-Page-Title", url.PathEscape(views.PageTitle(a.Config.Site(), meta)))
		return RenderStatus(c, code, body)
	}
	return RenderStatus(c, code, a.Views.Layout(meta, body))
}
