// Package migrations embeds the SQL schema of the rental engine.
package migrations

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed *.sql
var files embed.FS

// Migration is one schema step, identified by its file name without extension.
type Migration struct {
	Version string
	SQL     string
}

// All returns the embedded migrations in lexical (= application) order.
func All() ([]Migration, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}

	slices.Sort(names)

	all := make([]Migration, 0, len(names))
	for _, name := range names {
		content, readErr := files.ReadFile(name)
		if readErr != nil {
			return nil, readErr
		}

		all = append(all, Migration{
			Version: strings.TrimSuffix(name, path.Ext(name)),
			SQL:     string(content),
		})
	}

	return all, nil
}
