package server

import (
	"html/template"

	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/nikogura/cv-builder/pkg/render"
)

type option struct {
	Value    string
	Label    string
	Selected bool
}

type input struct {
	Name        string
	Placeholder string
	Value       string
	Multiline   bool
}

type pageData struct {
	Base          string
	Lang          render.Language
	Dir           string
	Languages     []option
	Templates     []option
	Inputs        []input
	GenerateLabel string
	ExportLabel   string
}

type uiStrings struct {
	placeholders  map[profile.Field]string
	generateLabel string
	exportLabel   string
}

//nolint:gochecknoglobals // fixed UI strings
var ui = map[render.Language]uiStrings{
	render.Arabic: {
		placeholders: map[profile.Field]string{
			profile.FieldName:       "الاسم",
			profile.FieldTitle:      "المسمى الوظيفي",
			profile.FieldEmail:      "البريد الإلكتروني",
			profile.FieldPhone:      "رقم الهاتف",
			profile.FieldSummary:    "نبذة مختصرة",
			profile.FieldSkills:     "المهارات",
			profile.FieldExperience: "الخبرات",
		},
		generateLabel: "توليد AI",
		exportLabel:   "تحميل PDF",
	},
	render.English: {
		placeholders: map[profile.Field]string{
			profile.FieldName:       "Name",
			profile.FieldTitle:      "Job Title",
			profile.FieldEmail:      "Email",
			profile.FieldPhone:      "Phone",
			profile.FieldSummary:    "Summary",
			profile.FieldSkills:     "Skills",
			profile.FieldExperience: "Experience",
		},
		generateLabel: "Generate with AI",
		exportLabel:   "Download PDF",
	},
}

//nolint:gochecknoglobals // fixed UI strings
var languageLabels = map[render.Language]string{
	render.Arabic:  "العربي",
	render.English: "English",
}

func newPageData(base string, state profile.State, registry *render.Registry) (data pageData) {
	lang, _ := render.ParseLanguage(state.Language)
	strs := ui[lang]

	data = pageData{
		Base:          base,
		Lang:          lang,
		Dir:           lang.Dir(),
		GenerateLabel: strs.generateLabel,
		ExportLabel:   strs.exportLabel,
	}

	for _, l := range render.Languages() {
		data.Languages = append(data.Languages, option{
			Value:    string(l),
			Label:    languageLabels[l],
			Selected: l == lang,
		})
	}

	for _, t := range registry.List() {
		data.Templates = append(data.Templates, option{
			Value:    t.ID(),
			Label:    t.DisplayName(lang),
			Selected: t.ID() == state.Template,
		})
	}

	for _, f := range profile.Fields() {
		data.Inputs = append(data.Inputs, input{
			Name:        string(f),
			Placeholder: strs.placeholders[f],
			Value:       state.Profile.Get(f),
			Multiline:   f == profile.FieldSummary || f == profile.FieldSkills || f == profile.FieldExperience,
		})
	}

	return data
}

//nolint:gochecknoglobals // parsed once
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
<meta charset="utf-8">
<title>CV Builder</title>
<style>
body { margin: 0; font-family: system-ui, sans-serif; }
.builder { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; padding: 1.5rem; }
.inputs > * { display: block; width: 100%; box-sizing: border-box; margin-bottom: 0.75rem; padding: 0.5rem; border: 1px solid #d1d5db; }
.actions { display: flex; gap: 0.5rem; border: 0; padding: 0; }
.actions > * { width: auto; }
#generate { background: #3b82f6; color: #fff; border: 0; padding: 0.5rem 1rem; border-radius: 0.25rem; }
#export { background: #22c55e; color: #fff; padding: 0.5rem 1rem; border-radius: 0.25rem; text-decoration: none; }
#preview { width: 100%; min-height: 90vh; border: 1px solid #d1d5db; border-radius: 0.25rem; box-shadow: 0 10px 15px rgba(0,0,0,0.1); }
@media (max-width: 768px) { .builder { grid-template-columns: 1fr; } }
</style>
</head>
<body>
<div class="builder">
<form class="inputs" onsubmit="return false">
<select name="language" data-endpoint="language">
{{- range .Languages}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end -}}
</select>
{{- range .Inputs}}
{{if .Multiline}}<textarea name="{{.Name}}" placeholder="{{.Placeholder}}" data-endpoint="fields/{{.Name}}">{{.Value}}</textarea>
{{- else}}<input name="{{.Name}}" placeholder="{{.Placeholder}}" value="{{.Value}}" data-endpoint="fields/{{.Name}}">{{end}}
{{- end}}
<div class="actions">
<select name="template" data-endpoint="template">
{{- range .Templates}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end -}}
</select>
<button type="button" id="generate">{{.GenerateLabel}}</button>
<a id="export" href="{{.Base}}/export">{{.ExportLabel}}</a>
</div>
<p id="status" role="status"></p>
</form>
<iframe id="preview" title="CV preview" src="{{.Base}}/preview"></iframe>
</div>
<script>
var base = {{.Base}};
var statusLine = document.getElementById("status");

function call(endpoint, body) {
  return fetch(base + "/" + endpoint, {method: "POST", body: body}).then(function (res) {
    return res.json().then(function (payload) {
      if (!res.ok) { throw new Error(payload.error); }
      return payload;
    });
  });
}

// One request in flight per endpoint; edits made meanwhile are sent as a
// single follow-up carrying the latest value, so the server sees them in order.
var inFlight = {};
var dirty = {};

function push(el) {
  var endpoint = el.dataset.endpoint;
  if (inFlight[endpoint]) {
    dirty[endpoint] = true;
    return;
  }
  inFlight[endpoint] = true;
  dirty[endpoint] = false;
  call(endpoint, new URLSearchParams({value: el.value})).then(function () {
    statusLine.textContent = "";
    if (endpoint === "language") { window.location.reload(); }
  }).catch(function (err) {
    statusLine.textContent = err.message;
  }).then(function () {
    inFlight[endpoint] = false;
    if (dirty[endpoint]) { push(el); }
  });
}

document.querySelectorAll("[data-endpoint]").forEach(function (el) {
  var eventName = el.tagName === "SELECT" ? "change" : "input";
  el.addEventListener(eventName, function () { push(el); });
});

document.getElementById("generate").addEventListener("click", function () {
  statusLine.textContent = "...";
  call("generate").then(function (payload) {
    document.querySelector("[name=summary]").value = payload.summary;
    statusLine.textContent = "";
  }).catch(function (err) { statusLine.textContent = err.message; });
});

var preview = document.getElementById("preview");
var events = new EventSource(base + "/events");
events.addEventListener("render", function (e) { preview.srcdoc = e.data; });
</script>
</body>
</html>
`))
