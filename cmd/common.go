package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nikogura/cv-builder/pkg/config"
	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/nikogura/cv-builder/pkg/render"
	"github.com/pkg/errors"
)

func loadConfig() (cfg config.Config, err error) {
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return cfg, err
	}
	return cfg, err
}

// newLogger builds a text logger on stderr. --verbose forces debug level.
func newLogger(level string) (logger *slog.Logger) {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	if getVerbose() {
		logLevel = slog.LevelDebug
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	return logger
}

// newRegistry returns the built-in templates after checking the configured
// default template is one of them.
func newRegistry(cfg config.Config) (registry *render.Registry, err error) {
	registry = render.DefaultRegistry()

	_, err = registry.Lookup(cfg.Defaults.Template)
	if err != nil {
		err = errors.Wrap(err, "invalid defaults.template")
		return registry, err
	}

	return registry, err
}

// loadStore reads a profile file into a store. Empty flag values fall back to
// the configured defaults.
func loadStore(profilePath, langFlag, templateFlag string, cfg config.Config) (store *profile.Store, err error) {
	var p profile.Profile
	p, err = profile.Load(profilePath)
	if err != nil {
		return store, err
	}

	lang := cfg.Defaults.Language
	if langFlag != "" {
		var parsed render.Language
		parsed, err = render.ParseLanguage(langFlag)
		if err != nil {
			return store, err
		}
		lang = string(parsed)
	}

	tmpl := cfg.Defaults.Template
	if templateFlag != "" {
		tmpl = templateFlag
	}

	if getVerbose() {
		fmt.Fprintf(os.Stderr, "Loaded profile from %s (language %s, template %s)\n", profilePath, lang, tmpl)
	}

	store = profile.NewStore(
		profile.WithProfile(p),
		profile.WithLanguage(lang),
		profile.WithTemplate(tmpl),
	)
	return store, err
}

// renderStore renders the store's current state strictly: unknown templates
// and languages are errors.
func renderStore(registry *render.Registry, store *profile.Store) (doc render.Document, err error) {
	state := store.Snapshot()

	var lang render.Language
	lang, err = render.ParseLanguage(state.Language)
	if err != nil {
		return doc, err
	}

	doc, err = registry.Render(state.Profile, state.Template, lang)
	if err != nil {
		err = errors.Wrap(err, "failed to render profile")
		return doc, err
	}

	return doc, err
}
