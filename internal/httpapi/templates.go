package httpapi

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed assets
var assets embed.FS

const indexTemplate = "index.html"

// Templates holds the parsed chat page. When dir is set the page is read
// from disk and can be reloaded while the server runs.
type Templates struct {
	mu    sync.RWMutex
	dir   string
	index *template.Template
}

func LoadTemplates(dir string) (*Templates, error) {
	t := &Templates{dir: strings.TrimSpace(dir)}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

func MustEmbeddedTemplates() *Templates {
	t, err := LoadTemplates("")
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Templates) Dir() string {
	return t.dir
}

func (t *Templates) Reload() error {
	var (
		parsed *template.Template
		err    error
	)
	if t.dir == "" {
		parsed, err = template.ParseFS(assets, "assets/"+indexTemplate)
	} else {
		parsed, err = template.ParseFiles(filepath.Join(t.dir, indexTemplate))
	}
	if err != nil {
		return fmt.Errorf("parse chat template: %w", err)
	}
	t.mu.Lock()
	t.index = parsed
	t.mu.Unlock()
	return nil
}

type indexData struct {
	Name     string
	Messages []messageView
}

type messageView struct {
	Role    string
	Content string
}

func (t *Templates) renderIndex(w io.Writer, data indexData) error {
	t.mu.RLock()
	index := t.index
	t.mu.RUnlock()
	return index.Execute(w, data)
}

func staticFS() fs.FS {
	sub, err := fs.Sub(assets, "assets/static")
	if err != nil {
		panic(err)
	}
	return sub
}
