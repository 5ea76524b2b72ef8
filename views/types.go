package views

import (
	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/lifecycle"
)

// Site holds the site-wide settings components read. Every page passes
// it to the layout so nothing is hardcoded.
type Site struct {
	Name        string // navbar title and <title> suffix
	URL         string // canonical base URL
	Description string
	Author      string
	About       string // markdown body of the about page
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// NavLink is one entry of the navbar.
type NavLink struct {
	Label string
	Href  string
}

// ListState is the view state of the blog listing.
type ListState = lifecycle.State[[]api.PostSummary]

// PostState is the view state of a single post.
type PostState = lifecycle.State[api.Post]
