// Package assets embeds the data files the server ships with: mission word
// lists, level pangrams and SQL migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed wordlists/*.txt
var wordlists embed.FS

//go:embed sql/*.sql
var migrations embed.FS

// WordLists returns the embedded word list directory, rooted so that file
// names resolve directly (e.g. "homerow_words.txt").
func WordLists() fs.FS {
	sub, err := fs.Sub(wordlists, "wordlists")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrations returns the embedded SQL migrations, rooted at the sql directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}
