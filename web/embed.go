package web

import "embed"

// StaticFiles embeds the stylesheets and assets served under /static/.
//
//go:embed static/*
var StaticFiles embed.FS
