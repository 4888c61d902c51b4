package testsupport

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates
var embeddedTemplates embed.FS

// Templates returns the page templates of the people app.
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer executes pongo2 templates loaded from an fs.FS and caches parsed
// templates by name.
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// NewRenderer builds a renderer over files. A nil fs uses Templates().
func NewRenderer(files fs.FS, globals map[string]any) *Renderer {
	if files == nil {
		files = Templates()
	}
	set := pongo2.NewSet("testsupport", pongo2.NewFSLoader(files))
	ctx := pongo2.Context{}
	for key, value := range globals {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = value
		}
	}
	if set.Globals == nil {
		set.Globals = make(pongo2.Context)
	}
	set.Globals.Update(ctx)
	return &Renderer{
		set:       set,
		templates: make(map[string]*pongo2.Template),
	}
}

// Render writes template name executed with data to w.
func (r *Renderer) Render(w io.Writer, name string, data map[string]any) error {
	if r == nil || r.set == nil {
		return errors.New("testsupport: renderer is nil")
	}
	tmpl, err := r.template(name)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteWriter(pongo2.Context(data), w); err != nil {
		return fmt.Errorf("testsupport: execute template %q: %w", name, err)
	}
	return nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("testsupport: load template %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}
