package render

import (
	"bytes"
	"io"

	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/pkg/errors"
)

// PreviewID is the id of the element holding the rendered CV in every document.
const PreviewID = "cv-preview"

// ErrUnknownTemplate is returned when a template id is not registered.
var ErrUnknownTemplate = errors.New("unknown template")

// Template renders a profile into an HTML document.
type Template interface {
	ID() string
	DisplayName(lang Language) string
	Render(w io.Writer, p profile.Profile, lang Language) error
}

// Document is a rendered CV.
type Document struct {
	TemplateID string
	Language   Language
	HTML       []byte
}

// String returns the document markup.
func (d Document) String() (s string) {
	s = string(d.HTML)
	return s
}

// Registry is an ordered set of templates keyed by id.
type Registry struct {
	templates []Template
	byID      map[string]Template
}

// NewRegistry creates a registry holding templates in the given order.
func NewRegistry(templates ...Template) (registry *Registry, err error) {
	registry = &Registry{
		byID: make(map[string]Template),
	}
	for _, t := range templates {
		err = registry.Register(t)
		if err != nil {
			return registry, err
		}
	}
	return registry, err
}

// DefaultRegistry returns the built-in templates: classic, then modern.
func DefaultRegistry() (registry *Registry) {
	registry, err := NewRegistry(Classic(), Modern())
	if err != nil {
		// Built-in ids are distinct.
		panic(err)
	}
	return registry
}

// Register appends a template. Ids must be unique and non-empty.
func (r *Registry) Register(t Template) (err error) {
	id := t.ID()
	if id == "" {
		err = errors.New("template id is required")
		return err
	}

	if _, exists := r.byID[id]; exists {
		err = errors.Errorf("template already registered: %s", id)
		return err
	}

	r.templates = append(r.templates, t)
	r.byID[id] = t
	return err
}

// Lookup returns the template registered under id.
func (r *Registry) Lookup(id string) (t Template, err error) {
	t, ok := r.byID[id]
	if !ok {
		err = errors.Wrapf(ErrUnknownTemplate, "%q", id)
		return t, err
	}
	return t, err
}

// List returns the templates in registration order.
func (r *Registry) List() (templates []Template) {
	templates = make([]Template, len(r.templates))
	copy(templates, r.templates)
	return templates
}

// Default returns the id of the first registered template.
func (r *Registry) Default() (id string) {
	if len(r.templates) > 0 {
		id = r.templates[0].ID()
	}
	return id
}

// Render renders p with the template registered under id.
func (r *Registry) Render(p profile.Profile, id string, lang Language) (doc Document, err error) {
	var t Template
	t, err = r.Lookup(id)
	if err != nil {
		return doc, err
	}

	var buf bytes.Buffer
	err = t.Render(&buf, p, lang)
	if err != nil {
		err = errors.Wrapf(err, "failed to render template %s", id)
		return doc, err
	}

	doc = Document{
		TemplateID: id,
		Language:   lang,
		HTML:       buf.Bytes(),
	}
	return doc, err
}

// RenderState renders a session snapshot. The state's language is parsed
// leniently; an unsupported value renders in Arabic.
func (r *Registry) RenderState(state profile.State) (doc Document, err error) {
	lang, _ := ParseLanguage(state.Language)
	doc, err = r.Render(state.Profile, state.Template, lang)
	return doc, err
}
