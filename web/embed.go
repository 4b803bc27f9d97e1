// Package web holds the embedded browser front end for the assistant.
package web

import "embed"

//go:embed index.html
var Assets embed.FS
