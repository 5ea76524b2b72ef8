// Package views holds the page components. Each exported function returns
// a templ.Component so handlers render pages and fragments the same way.
// All dynamic text goes through templ.EscapeString.
package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/markdown"
)

var esc = templ.EscapeString[string]

// render wraps a buffer-writing function as a component.
func render(fn func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fn(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Layout wraps body in the document shell: head, navbar and the outlet
// that in-app navigation swaps.
func Layout(site Site, meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		title := esc(PageTitle(site, meta))
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		buf.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n")
		buf.WriteString("<meta charset=\"utf-8\">\n")
		buf.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		buf.WriteString("<title>" + title + "</title>\n")
		if meta.Description != "" {
			buf.WriteString(`<meta name="description" content="` + esc(meta.Description) + "\">\n")
		}
		if meta.URL != "" {
			buf.WriteString(`<link rel="canonical" href="` + esc(meta.URL) + "\">\n")
			buf.WriteString(`<meta property="og:url" content="` + esc(meta.URL) + "\">\n")
		}
		buf.WriteString(`<meta property="og:title" content="` + title + "\">\n")
		buf.WriteString(`<meta property="og:type" content="` + esc(ogType) + "\">\n")
		buf.WriteString("<link rel=\"stylesheet\" href=\"/public/style.css\">\n")
		buf.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + esc(site.Name) + "\" href=\"/feed.xml\">\n")
		buf.WriteString(`<script type="application/ld+json">` + WebsiteJsonLD(site) + "</script>\n")
		buf.WriteString("<script src=\"/public/nav.js\" defer></script>\n")
		buf.WriteString("</head>\n<body>\n<div class=\"app-container\">\n")
		writeNavbar(&buf, site)
		buf.WriteString(`<main class="main-content" id="outlet">`)
		if err := body.Render(ctx, &buf); err != nil {
			return err
		}
		buf.WriteString("</main>\n</div>\n</body>\n</html>\n")

		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeNavbar(buf *bytes.Buffer, site Site) {
	buf.WriteString("<nav class=\"navbar\">\n")
	buf.WriteString(`<h1 class="site-title"><a href="/" data-link>` + esc(site.Name) + "</a></h1>\n")
	buf.WriteString("<ul class=\"nav-links\">\n")
	for _, l := range navLinks {
		buf.WriteString(`<li><a href="` + esc(l.Href) + `" data-link>` + esc(l.Label) + "</a></li>\n")
	}
	buf.WriteString("</ul>\n</nav>\n")
}

// PageTitle returns the document title for a page.
func PageTitle(site Site, meta PageMeta) string {
	if meta.Title == "" || meta.Title == site.Name {
		return site.Name
	}
	return meta.Title + " | " + site.Name
}

// writeMount writes a section in its loading state that nav.js replaces
// with the fragment at loadPath.
func writeMount(buf *bytes.Buffer, loadPath, loading string) {
	buf.WriteString(`<section class="load" data-load="` + esc(loadPath) + "\" aria-busy=\"true\" aria-live=\"polite\">\n")
	buf.WriteString(loading)
	buf.WriteString("\n</section>\n")
}

const (
	blogLoading = `<p class="loading">Loading posts...</p>`
	postLoading = `<p class="loading">Loading post...</p>`
	backToBlog  = `<a href="/" data-link>Back to Blog</a>`
)

// Blog is the listing page as mounted: heading plus a section that loads
// the list fragment.
func Blog() templ.Component {
	return render(func(buf *bytes.Buffer) {
		buf.WriteString("<div class=\"page page-blog\">\n<h1>Blog</h1>\n")
		writeMount(buf, "/?partial=data", blogLoading)
		buf.WriteString("</div>")
	})
}

// BlogSection renders the listing for the given view state.
func BlogSection(state ListState) templ.Component {
	return render(func(buf *bytes.Buffer) {
		switch {
		case state.IsLoading():
			buf.WriteString(blogLoading)
		case state.IsFailed():
			buf.WriteString(`<p class="error">Error: ` + esc(state.Err) + "</p>")
		case len(state.Data) == 0:
			buf.WriteString(`<p class="empty">No posts yet. Check back soon!</p>`)
		default:
			buf.WriteString("<div class=\"post-list\">\n")
			for _, p := range state.Data {
				writePostListItem(buf, p)
			}
			buf.WriteString("</div>")
		}
	})
}

func writePostListItem(buf *bytes.Buffer, p api.PostSummary) {
	buf.WriteString("<article class=\"post-list-item\">\n")
	buf.WriteString(`<a href="` + esc(PostPath(p.Slug)) + "\" data-link>\n")
	buf.WriteString("<h2>" + esc(p.Title) + "</h2>\n")
	writeDate(buf, p.CreatedAt)
	if p.Excerpt != "" {
		buf.WriteString(`<p class="post-excerpt">` + esc(p.Excerpt) + "</p>\n")
	}
	buf.WriteString("</a>\n</article>\n")
}

func writeDate(buf *bytes.Buffer, ts string) {
	buf.WriteString(`<p class="post-date"><time datetime="` + esc(ts) + `">` + esc(FormatDate(ts)) + "</time></p>\n")
}

// Post is the detail page as mounted for slug.
func Post(slug string) templ.Component {
	return render(func(buf *bytes.Buffer) {
		buf.WriteString("<div class=\"page page-post\">\n")
		writeMount(buf, PostPath(slug)+"?partial=data", postLoading)
		buf.WriteString("</div>")
	})
}

// PostSection renders a single post for the given view state.
func PostSection(site Site, state PostState) templ.Component {
	return render(func(buf *bytes.Buffer) {
		switch {
		case state.IsLoading():
			buf.WriteString(postLoading)
		case state.IsFailed():
			buf.WriteString(`<p class="error">Error: ` + esc(state.Err) + "</p>\n")
			buf.WriteString(backToBlog)
		default:
			writePost(buf, state.Data)
			buf.WriteString(`<script type="application/ld+json">` + BlogPostingJsonLD(site, state.Data) + "</script>\n")
		}
	})
}

func writePost(buf *bytes.Buffer, post api.Post) {
	buf.WriteString("<article class=\"post\">\n")
	buf.WriteString("<a class=\"back-link\" href=\"/\" data-link>&larr; Back to Blog</a>\n")
	buf.WriteString("<h1>" + esc(post.Title) + "</h1>\n")
	writeDate(buf, post.CreatedAt)
	buf.WriteString(`<div class="post-content">`)
	markdown.Render(buf, post.Content)
	buf.WriteString("</div>\n")

	if len(post.Photos) > 0 {
		buf.WriteString("<div class=\"post-photos\">\n")
		for _, ph := range post.Photos {
			alt := ph.Caption
			if alt == "" {
				alt = ph.Filename
			}
			buf.WriteString("<figure>\n")
			buf.WriteString(`<img src="` + esc(PhotoPath(ph.Filename)) + `" alt="` + esc(alt) + "\" loading=\"lazy\" decoding=\"async\">\n")
			if ph.Caption != "" {
				buf.WriteString("<figcaption>" + esc(ph.Caption) + "</figcaption>\n")
			}
			buf.WriteString("</figure>\n")
		}
		buf.WriteString("</div>\n")
	}
	buf.WriteString("</article>\n")
}

// About renders the static about page.
func About(site Site) templ.Component {
	return render(func(buf *bytes.Buffer) {
		buf.WriteString("<div class=\"page page-about\">\n<h2>About Me</h2>\n")
		markdown.Render(buf, site.About)
		buf.WriteString("\n</div>")
	})
}

func NotFound() templ.Component {
	return render(func(buf *bytes.Buffer) {
		buf.WriteString("<div class=\"page page-error\">\n<h1>Page not found</h1>\n")
		buf.WriteString("<p>There is nothing at this address.</p>\n")
		buf.WriteString(backToBlog + "\n</div>")
	})
}

func ServerError() templ.Component {
	return render(func(buf *bytes.Buffer) {
		buf.WriteString("<div class=\"page page-error\">\n<h1>Something went wrong</h1>\n")
		buf.WriteString("<p>The server encountered a problem and could not process your request.</p>\n")
		buf.WriteString(backToBlog + "\n</div>")
	})
}
