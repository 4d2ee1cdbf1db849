package web

import "embed"

// Templates holds the embedded HTML templates for the upload page and the
// diagnostic report document.
//
//go:embed templates
var Templates embed.FS
