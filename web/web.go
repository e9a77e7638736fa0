// Package web embeds the static browser client.
package web

import "embed"

// StaticFS holds the single-page client assets.
//
//go:embed static/*
var StaticFS embed.FS
