// Package migrations хранит SQL-схему журнала действий.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
