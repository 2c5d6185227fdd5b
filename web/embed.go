// Package web embeds the default site: content, layouts and static assets.
package web

import "embed"

//go:embed all:content all:layouts all:static
var FS embed.FS
