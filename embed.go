package blogfront

import "embed"

// EmbeddedAssets contains the static assets served under /public/:
// nav.js (in-app navigation and fragment loading) and style.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
