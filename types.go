package blogfront

import (
	"github.com/a-h/templ"

	"github.com/eringen/blogfront/views"
)

// ViewFuncs holds the components the framework calls when rendering pages
// and fragments. DefaultViews supplies the built-in templates; a site can
// replace any of them.
type ViewFuncs struct {
	// Layout wraps a page body in the document shell.
	Layout func(meta views.PageMeta, body templ.Component) templ.Component

	Blog        func() templ.Component
	BlogSection func(state views.ListState) templ.Component
	Post        func(slug string) templ.Component
	PostSection func(state views.PostState) templ.Component
	About       func() templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}
