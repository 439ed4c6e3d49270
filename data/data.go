// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package data embeds the SQL schema migrations so the server binary carries
// its own schema.
package data

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the migration files rooted at the migrations directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		// The directory is fixed at compile time.
		panic(err)
	}
	return sub
}
