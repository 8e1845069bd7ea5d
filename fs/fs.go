// Package appfs exposes files embedded in the binary.
package appfs

import "embed"

//go:embed migrations/*.sql
var FS embed.FS
