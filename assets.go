// Package ashaweb provides embedded assets for production builds.
package ashaweb

import "embed"

// Embedded assets for production builds.
// In dev mode (IsDev=true), templates and static files are loaded from disk
// so they can be edited without recompiling.

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
