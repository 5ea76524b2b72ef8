package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/eringen/blogfront/api"
)

// PostsPrefix is the path under which single posts are served. The router
// registers PostsPrefix + ":slug" and every post link is built from it.
const PostsPrefix = "/posts/"

// DisplayDateLayout renders dates as "January 2, 2006".
const DisplayDateLayout = "January 2, 2006"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// navLinks is the fixed navbar link set.
var navLinks = []NavLink{
	{Label: "Blog", Href: "/"},
	{Label: "About", Href: "/about"},
}

// PostPath returns the in-app path of the post with the given slug.
func PostPath(slug string) string {
	return PostsPrefix + url.PathEscape(slug)
}

// PhotoPath returns the proxied path of a post photo.
func PhotoPath(filename string) string {
	return "/photos/" + url.PathEscape(filename)
}

// ParseDate parses the timestamp formats the backend emits.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders an ISO-8601 timestamp as "January 1, 2024". Values
// that cannot be parsed are returned unchanged.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(DisplayDateLayout)
}

// PostURL returns the absolute URL of the post with the given slug. Its
// path is exactly PostPath(slug), so feeds and links match the router.
func PostURL(base, slug string) string {
	return strings.TrimRight(BuildURL(base), "/") + PostPath(slug)
}

// BuildURL joins unescaped path segments onto a base URL.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(append([]string{"/", u.Path}, pathSegments...)...)
	return u.String()
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using site values.
func WebsiteJsonLD(site Site) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      BuildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	return marshalJS(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(site Site, post api.Post) string {
	postURL := PostURL(site.URL, post.Slug)
	data := map[string]interface{}{
		"@context":         "https://schema.org",
		"@type":            "BlogPosting",
		"headline":         post.Title,
		"description":      post.Excerpt,
		"datePublished":    post.CreatedAt,
		"dateModified":     post.UpdatedAt,
		"url":              postURL,
		"mainEntityOfPage": map[string]string{"@type": "WebPage", "@id": postURL},
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	return marshalJS(data)
}

// marshalJS encodes v for a <script> element. json.Marshal escapes <, >
// and &, so the output cannot close the element.
func marshalJS(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
