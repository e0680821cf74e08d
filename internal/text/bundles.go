package text

import (
	"embed"

	"github.com/msto63/nsms/foundation/core/i18n"
	"github.com/msto63/nsms/pkg/core/config"
)

//go:embed locales
var builtinLocales embed.FS

// NewBundles loads the reply texts. Without a configured locales directory
// the built-in English and French bundles are used.
func NewBundles(cfg config.TextConfig) (*i18n.Manager, error) {
	opts := i18n.Options{
		DefaultLocale: cfg.DefaultLocale,
		LocalesDir:    cfg.LocalesDir,
	}
	if cfg.LocalesDir == "" {
		opts.FS = builtinLocales
		opts.LocalesDir = "locales"
	}

	m, err := i18n.New(opts)
	if err != nil {
		return nil, err
	}
	if cfg.Locale != "" {
		if err := m.SetLocale(cfg.Locale); err != nil {
			return nil, err
		}
	}
	return m, nil
}
