// Package scaffold provides the embedded starter files written by
// `blogfront init`.
package scaffold

import "embed"

// Templates contains the starter files. They use Go text/template syntax
// and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS
