// File: i18n.go
// Title: Localized Text Bundles
// Description: Implements the i18n Manager: loads TOML and YAML locale
//              bundles, flattens nested tables into dotted keys, resolves a
//              key for the active locale with fallback to the default locale
//              and renders {{.var}} templates. A template that fails to
//              render yields its raw text.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package i18n

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/foundation/utils/stringx"
)

// Options configures a Manager. When FS is nil and LocalesDir is set,
// bundles are read from the operating system directory LocalesDir. When FS
// is set, LocalesDir is a path inside FS ("." for its root). With neither,
// the manager starts empty and is filled through Register.
type Options struct {
	DefaultLocale string
	LocalesDir    string
	FS            fs.FS
}

// Manager holds the strings of every loaded locale.
type Manager struct {
	mu            sync.RWMutex
	defaultLocale string
	currentLocale string
	texts         map[string]map[string]string // locale -> key -> text

	tmplMu    sync.Mutex
	templates map[string]*template.Template
}

// New creates a manager and loads all bundles found in the configured
// directory. Files are named <locale>.toml, <locale>.yaml or <locale>.yml.
func New(options Options) (*Manager, error) {
	if stringx.IsBlank(options.DefaultLocale) {
		return nil, nsmserror.New("default locale cannot be empty").
			WithCode(nsmserror.CodeValidationFailed).
			WithOperation("i18n.New")
	}

	m := &Manager{
		defaultLocale: NormalizeLocale(options.DefaultLocale),
		texts:         make(map[string]map[string]string),
		templates:     make(map[string]*template.Template),
	}
	m.currentLocale = m.defaultLocale

	fsys, dir := options.FS, options.LocalesDir
	if fsys == nil && dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, nsmserror.Wrap(err, "locales directory not found").
				WithCode(nsmserror.CodeNotFound).
				WithOperation("i18n.New").
				WithDetail("directory", dir)
		}
		fsys, dir = os.DirFS(dir), "."
	}
	if fsys != nil {
		if dir == "" {
			dir = "."
		}
		if err := m.loadAll(fsys, dir); err != nil {
			return nil, nsmserror.Wrap(err, "failed to load locales").
				WithCode(nsmserror.CodeConfigError).
				WithOperation("i18n.loadAll")
		}
	}

	return m, nil
}

func (m *Manager) loadAll(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read locales directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(path.Ext(name))
		if ext != ".toml" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		locale := NormalizeLocale(strings.TrimSuffix(name, path.Ext(name)))
		if locale == "" {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := m.LoadBundle(locale, ext, content); err != nil {
			return err
		}
	}
	return nil
}

// LoadBundle parses a bundle in the format given by ext (".toml", ".yaml"
// or ".yml") and merges its strings into locale.
func (m *Manager) LoadBundle(locale, ext string, content []byte) error {
	var data map[string]interface{}
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(content, &data); err != nil {
			return fmt.Errorf("failed to parse TOML bundle %q: %w", locale, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &data); err != nil {
			return fmt.Errorf("failed to parse YAML bundle %q: %w", locale, err)
		}
	default:
		return fmt.Errorf("unsupported bundle format %q", ext)
	}

	flat := make(map[string]string)
	flatten("", data, flat)

	locale = NormalizeLocale(locale)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.texts[locale] == nil {
		m.texts[locale] = make(map[string]string, len(flat))
	}
	for k, v := range flat {
		m.texts[locale][k] = v
	}
	return nil
}

func flatten(prefix string, value interface{}, out map[string]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		for k, child := range v {
			flatten(joinKey(prefix, k), child, out)
		}
	case map[interface{}]interface{}:
		for k, child := range v {
			flatten(joinKey(prefix, fmt.Sprint(k)), child, out)
		}
	case nil:
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Register sets the text of key in locale, replacing any loaded value.
func (m *Manager) Register(locale, key, text string) {
	locale = NormalizeLocale(locale)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.texts[locale] == nil {
		m.texts[locale] = make(map[string]string)
	}
	m.texts[locale][key] = text
}

// T returns the rendered text of key in the active locale, or key itself
// when no locale knows it.
func (m *Manager) T(key string, data ...map[string]interface{}) string {
	text, err := m.TryT(key, data...)
	if err != nil && text == "" {
		return key
	}
	return text
}

// TryT returns the rendered text of key. A missing key is a NOT_FOUND
// error. A render error returns the raw text together with the error.
func (m *Manager) TryT(key string, data ...map[string]interface{}) (string, error) {
	raw, ok := m.Lookup(m.Locale(), key)
	if !ok {
		return "", nsmserror.New("translation not found").
			WithCode(nsmserror.CodeNotFound).
			WithOperation("i18n.TryT").
			WithDetail("key", key)
	}
	if len(data) == 0 || data[0] == nil {
		return raw, nil
	}
	return m.render(raw, data[0])
}

// TWithFallback renders key, or fallback when no locale knows key.
func (m *Manager) TWithFallback(key, fallback string, data ...map[string]interface{}) string {
	raw, ok := m.Lookup(m.Locale(), key)
	if !ok {
		raw = fallback
	}
	if len(data) == 0 || data[0] == nil {
		return raw
	}
	text, _ := m.render(raw, data[0])
	return text
}

// Render interpolates vars into text. On any template error the raw text is
// returned unchanged.
func (m *Manager) Render(text string, vars map[string]interface{}) string {
	if len(vars) == 0 {
		return text
	}
	rendered, _ := m.render(text, vars)
	return rendered
}

func (m *Manager) render(text string, vars map[string]interface{}) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	m.tmplMu.Lock()
	tmpl, ok := m.templates[text]
	if !ok {
		var err error
		tmpl, err = template.New("text").Option("missingkey=error").Parse(text)
		if err != nil {
			m.tmplMu.Unlock()
			return text, fmt.Errorf("template compilation failed: %w", err)
		}
		m.templates[text] = tmpl
	}
	m.tmplMu.Unlock()

	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return text, fmt.Errorf("template execution failed: %w", err)
	}
	return b.String(), nil
}

// Lookup returns the raw text of key in locale, falling back to the default
// locale.
func (m *Manager) Lookup(locale, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if text, ok := m.texts[NormalizeLocale(locale)][key]; ok {
		return text, true
	}
	text, ok := m.texts[m.defaultLocale][key]
	return text, ok
}

// LookupExact returns the raw text of key in locale without falling back.
func (m *Manager) LookupExact(locale, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.texts[NormalizeLocale(locale)][key]
	return text, ok
}

// HasKey reports whether key resolves in the active locale or the default.
func (m *Manager) HasKey(key string) bool {
	_, ok := m.Lookup(m.Locale(), key)
	return ok
}

// SetLocale changes the active locale. The locale does not need loaded
// texts; lookups fall back to the default locale.
func (m *Manager) SetLocale(locale string) error {
	locale = NormalizeLocale(locale)
	if locale == "" {
		return nsmserror.New("locale cannot be empty").
			WithCode(nsmserror.CodeValidationFailed).
			WithOperation("i18n.SetLocale")
	}
	m.mu.Lock()
	m.currentLocale = locale
	m.mu.Unlock()
	return nil
}

// Locale returns the active locale.
func (m *Manager) Locale() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentLocale
}

// DefaultLocale returns the fallback locale.
func (m *Manager) DefaultLocale() string {
	return m.defaultLocale
}

// Locales returns the loaded locales in sorted order.
func (m *Manager) Locales() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	locales := make([]string, 0, len(m.texts))
	for l := range m.texts {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	return locales
}

// Keys returns the keys known in locale in sorted order.
func (m *Manager) Keys(locale string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	texts := m.texts[NormalizeLocale(locale)]
	keys := make([]string, 0, len(texts))
	for k := range texts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeLocale lowercases the language and uppercases the region:
// "EN-us" and "en_US" both become "en_US".
func NormalizeLocale(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "-", "_"))
	lang, region, found := strings.Cut(locale, "_")
	lang = strings.ToLower(lang)
	if !found || region == "" {
		return lang
	}
	return lang + "_" + strings.ToUpper(region)
}
