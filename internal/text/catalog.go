package text

import (
	"context"
	"strings"
	"time"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
	"github.com/msto63/nsms/foundation/core/i18n"
	nsmslog "github.com/msto63/nsms/foundation/core/log"
	"github.com/msto63/nsms/pkg/core/cache"
)

// Catalog resolves reply texts by slug. Texts edited in the store win over
// the bundled defaults.
type Catalog struct {
	store   *Store
	bundles *i18n.Manager
	cache   *cache.Cache[string]
	logger  *nsmslog.Logger
}

// NewCatalog creates a catalog. Resolved texts are cached for ttl; zero
// disables caching.
func NewCatalog(store *Store, bundles *i18n.Manager, ttl time.Duration, logger *nsmslog.Logger) *Catalog {
	c := &Catalog{store: store, bundles: bundles, logger: logger}
	if ttl > 0 {
		cfg := cache.DefaultConfig()
		cfg.TTL = ttl
		c.cache = cache.New[string](cfg)
	}
	if c.logger == nil {
		c.logger = nsmslog.GetDefault().WithName("text")
	}
	return c
}

// Close releases the cache.
func (c *Catalog) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

// Bundles returns the locale bundles backing the catalog.
func (c *Catalog) Bundles() *i18n.Manager {
	return c.bundles
}

// Get returns the text for slug. On the first use of a slug the text is
// created in the default locale, taken from the bundle when it has one and
// from defaultText otherwise. The returned LazyText resolves the active
// locale only when rendered.
func (c *Catalog) Get(ctx context.Context, slug, defaultText string, vars map[string]interface{}) (*LazyText, error) {
	locale := c.bundles.DefaultLocale()

	if _, err := c.store.Get(ctx, slug, locale); err != nil {
		if !nsmserror.HasCode(err, nsmserror.CodeNotFound) {
			return nil, err
		}
		text := defaultText
		if bundled, ok := c.bundles.LookupExact(locale, slug); ok {
			text = bundled
		}
		err := c.store.Create(ctx, &Text{Slug: slug, Locale: locale, Text: text, CreatedBy: SystemUser})
		if err != nil && !nsmserror.HasCode(err, nsmserror.CodeDuplicateEntry) {
			return nil, err
		}
		c.logger.Debug("text created from default", nsmslog.Fields{"slug": slug, "locale": locale})
	}

	return &LazyText{catalog: c, slug: slug, fallback: defaultText, vars: vars}, nil
}

// Set stores a new text for slug in locale and drops every cached
// rendering of slug, since other locales may have fallen back to it. Only
// the catalog of the calling process is affected; other processes keep
// their cached text until the TTL passes.
func (c *Catalog) Set(ctx context.Context, slug, locale, text, user string) error {
	locale = i18n.NormalizeLocale(locale)
	if err := c.store.Put(ctx, slug, locale, text, user); err != nil {
		return err
	}
	if c.cache != nil {
		n := c.cache.DeleteFunc(func(key string) bool {
			_, cached, _ := strings.Cut(key, "/")
			return cached == slug
		})
		c.logger.Debug("text updated", nsmslog.Fields{"slug": slug, "locale": locale, "evicted": n})
	}
	return nil
}

// List returns the stored texts, optionally of one locale.
func (c *Catalog) List(ctx context.Context, locale string) ([]*Text, error) {
	return c.store.List(ctx, i18n.NormalizeLocale(locale))
}

// Raw returns the unrendered text of slug in the active locale. Lookup
// order: store in the active locale, bundle in the active locale, store in
// the default locale, bundle in the default locale.
func (c *Catalog) Raw(ctx context.Context, slug string) (string, bool) {
	locale := c.bundles.Locale()
	key := cacheKey(locale, slug)
	if c.cache != nil {
		if text, ok := c.cache.Get(key); ok {
			return text, true
		}
	}

	text, ok := c.resolve(ctx, locale, slug)
	if ok && c.cache != nil {
		c.cache.Set(key, text)
	}
	return text, ok
}

func (c *Catalog) resolve(ctx context.Context, locale, slug string) (string, bool) {
	locales := []string{locale}
	if def := c.bundles.DefaultLocale(); def != locale {
		locales = append(locales, def)
	}

	for _, l := range locales {
		t, err := c.store.Get(ctx, slug, l)
		if err == nil {
			return t.Text, true
		}
		if !nsmserror.HasCode(err, nsmserror.CodeNotFound) {
			c.logger.WarnWithErr("text lookup failed", err, nsmslog.Fields{"slug": slug, "locale": l})
		}
		if text, ok := c.bundles.LookupExact(l, slug); ok {
			return text, true
		}
	}
	return "", false
}

func cacheKey(locale, slug string) string {
	return locale + "/" + slug
}

// LazyText is a reply whose wording is looked up when it is rendered, so
// that the locale active at send time applies.
type LazyText struct {
	catalog  *Catalog
	slug     string
	fallback string
	vars     map[string]interface{}
}

// Slug returns the text slug.
func (t *LazyText) Slug() string {
	return t.slug
}

// String renders the text. Variables are interpolated; if rendering fails
// the raw text is returned.
func (t *LazyText) String() string {
	raw, ok := t.catalog.Raw(context.Background(), t.slug)
	if !ok {
		raw = t.fallback
	}
	if t.vars == nil {
		return raw
	}
	return t.catalog.bundles.Render(raw, t.vars)
}
