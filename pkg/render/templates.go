package render

import (
	"html/template"
	"io"

	"github.com/nikogura/cv-builder/pkg/profile"
)

// view is what the layouts see.
type view struct {
	Lang       Language
	Dir        string
	PreviewID  string
	Name       string
	Title      string
	NameUnset  bool
	TitleUnset bool
	Email      string
	Phone      string
	Summary    string
	Skills     string
	Experience string
	Labels     Labels
}

func newView(p profile.Profile, lang Language) (v view) {
	labels := lang.Labels()
	v = view{
		Lang:       lang,
		Dir:        lang.Dir(),
		PreviewID:  PreviewID,
		Name:       p.Name,
		Title:      p.Title,
		Email:      p.Email,
		Phone:      p.Phone,
		Summary:    p.Summary,
		Skills:     p.Skills,
		Experience: p.Experience,
		Labels:     labels,
	}

	// Only name and title get placeholders.
	if v.Name == "" {
		v.Name = labels.NamePlaceholder
		v.NameUnset = true
	}
	if v.Title == "" {
		v.Title = labels.TitlePlaceholder
		v.TitleUnset = true
	}

	return v
}

// htmlTemplate is a Template backed by html/template.
type htmlTemplate struct {
	id    string
	names map[Language]string
	tmpl  *template.Template
}

func (t *htmlTemplate) ID() (id string) {
	id = t.id
	return id
}

func (t *htmlTemplate) DisplayName(lang Language) (name string) {
	name = t.names[lang]
	if name == "" {
		name = t.id
	}
	return name
}

func (t *htmlTemplate) Render(w io.Writer, p profile.Profile, lang Language) (err error) {
	err = t.tmpl.Execute(w, newView(p, lang))
	return err
}

// NewHTMLTemplate builds a template from a layout body. The body is wrapped
// in a complete HTML page; it sees the fields of the view and must render
// the element with id {{.PreviewID}}.
func NewHTMLTemplate(id string, names map[Language]string, css, body string) (t Template, err error) {
	var tmpl *template.Template
	tmpl, err = template.New(id).Parse(pageLayout)
	if err != nil {
		return t, err
	}

	_, err = tmpl.New("css").Parse("/* " + id + " */\n" + css)
	if err != nil {
		return t, err
	}

	_, err = tmpl.New("body").Parse(body)
	if err != nil {
		return t, err
	}

	t = &htmlTemplate{
		id:    id,
		names: names,
		tmpl:  tmpl,
	}
	return t, err
}

func mustHTMLTemplate(id string, names map[Language]string, css, body string) (t Template) {
	t, err := NewHTMLTemplate(id, names, css, body)
	if err != nil {
		panic(err)
	}
	return t
}

// Classic is the plain light layout.
func Classic() (t Template) {
	t = mustHTMLTemplate("classic", map[Language]string{
		Arabic:  "كلاسيك",
		English: "Classic",
	}, classicCSS, classicBody)
	return t
}

// Modern is the dark high-contrast layout.
func Modern() (t Template) {
	t = mustHTMLTemplate("modern", map[Language]string{
		Arabic:  "مودرن",
		English: "Modern",
	}, modernCSS, modernBody)
	return t
}

const pageLayout = `<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
.field { white-space: pre-wrap; }
.placeholder { opacity: 0.6; }
{{template "css" .}}
</style>
</head>
<body>
{{template "body" .}}
</body>
</html>
`

const classicCSS = `
body { margin: 0; background: #ffffff; color: #111827; }
.cv-classic { padding: 1.5rem; font-family: Georgia, "Times New Roman", serif; }
.cv-classic h1 { font-size: 1.875rem; font-weight: 700; margin: 0; }
.cv-classic h2 { font-size: 1.25rem; color: #4b5563; margin: 0.25rem 0 0; }
.cv-classic .contact { margin-top: 0.5rem; font-size: 0.875rem; }
.cv-classic hr { margin: 1rem 0; border: 0; border-top: 1px solid #d1d5db; }
.cv-classic h3 { font-weight: 700; margin: 0.75rem 0 0.25rem; }
`

const classicBody = `<main id="{{.PreviewID}}" class="cv cv-classic" dir="{{.Dir}}">
<h1 class="name{{if .NameUnset}} placeholder{{end}}">{{.Name}}</h1>
<h2 class="title{{if .TitleUnset}} placeholder{{end}}">{{.Title}}</h2>
<p class="contact"><span class="field email">{{.Email}}</span>{{if and .Email .Phone}} | {{end}}<span class="field phone">{{.Phone}}</span></p>
<hr>
<section class="summary"><h3>{{.Labels.Summary}}</h3><p class="field">{{.Summary}}</p></section>
<section class="skills"><h3>{{.Labels.Skills}}</h3><p class="field">{{.Skills}}</p></section>
<section class="experience"><h3>{{.Labels.Experience}}</h3><p class="field">{{.Experience}}</p></section>
</main>
`

const modernCSS = `
body { margin: 0; background: #111827; color: #ffffff; }
.cv-modern { padding: 1.5rem; font-family: "Helvetica Neue", Arial, sans-serif; background: #111827; color: #ffffff; border-radius: 1rem; }
.cv-modern h1 { font-size: 1.875rem; font-weight: 800; margin: 0; }
.cv-modern .title { color: #60a5fa; margin: 0.25rem 0 0; }
.cv-modern .contact { font-size: 0.875rem; margin-top: 0.25rem; }
.cv-modern .panel { margin-top: 1rem; }
.cv-modern h3 { font-weight: 700; margin: 0 0 0.25rem; color: #f9fafb; }
.cv-modern .panel p { font-size: 0.875rem; margin: 0; }
`

const modernBody = `<main id="{{.PreviewID}}" class="cv cv-modern" dir="{{.Dir}}">
<h1 class="name{{if .NameUnset}} placeholder{{end}}">{{.Name}}</h1>
<p class="title{{if .TitleUnset}} placeholder{{end}}">{{.Title}}</p>
<p class="contact"><span class="field email">{{.Email}}</span>{{if and .Email .Phone}} • {{end}}<span class="field phone">{{.Phone}}</span></p>
<div class="panel summary"><h3>{{.Labels.Summary}}</h3><p class="field">{{.Summary}}</p></div>
<div class="panel skills"><h3>{{.Labels.Skills}}</h3><p class="field">{{.Skills}}</p></div>
<div class="panel experience"><h3>{{.Labels.Experience}}</h3><p class="field">{{.Experience}}</p></div>
</main>
`
