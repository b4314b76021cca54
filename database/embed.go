package database

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS

// Migrations returns the embedded migrations rooted at the migrations directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(EmbeddedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
