// Package i18n provides localized text bundles for nsms replies.
//
// Package: i18n
// Title: nsms Localized Texts
// Description: Loads reply texts from TOML or YAML bundles, one file per
//              locale, and renders them with text/template variables. Keys
//              of nested tables are joined with dots.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation
//
// A bundle such as locales/en.toml
//
//	[register]
//	ok = "Thank you {{.first_name}}, you are registered."
//	missing_name = "Please send: REG <first name> <last name> <birth date>"
//
// is used as
//
//	m, err := i18n.New(i18n.Options{DefaultLocale: "en", LocalesDir: "locales"})
//	reply := m.T("register.ok", map[string]interface{}{"first_name": "James"})
//
// Locales are normalized to lowercase language and uppercase region
// ("en_US"). Lookups in a locale without the key fall back to the default
// locale.
package i18n
