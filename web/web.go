// Package web holds the server-rendered views and their static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*.html static
var files embed.FS

var funcs = template.FuncMap{
	"year": func() int { return time.Now().Year() },
}

// Templates parses every view. Each is addressed by its file name.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}

func Static() fs.FS {
	static, err := fs.Sub(files, "static")

	if err != nil {
		panic(err)
	}

	return static
}
