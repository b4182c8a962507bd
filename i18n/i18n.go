// Package i18n localizes tgkit's operator messages.
//
// Catalogs live in locales/<lang>/LC_MESSAGES/tgkit.po and are embedded in
// the binary. Call Init once at startup; T and N return the message
// unchanged until then, and for languages without a catalog.
//
//	i18n.Init("")  // LANGUAGE, LC_ALL, LC_MESSAGES, LANG
//	logInfo(i18n.T("Dry run finished"))
//	logSuccess(i18n.N("Merged %d file", "Merged %d files", n), n)
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const domain = "tgkit"

// fallback is the language of the message IDs themselves.
const fallback = "en"

var (
	// catalog is the tgkit domain of the selected locale; nil when the
	// language has no catalog.
	catalog gotext.Translator
	current = fallback
)

// Init selects the catalog for lang, or for the environment's locale when
// lang is empty.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	current = catalogLanguage(lang)

	loc := gotext.NewLocaleFSWithPath(current, locales, "locales")
	loc.AddDomain(domain)
	catalog = loc.Domains[domain]
}

// T translates msgid. Format verbs in the message are left for the caller.
func T(msgid string) string {
	if catalog == nil {
		return msgid
	}
	return catalog.Get(msgid)
}

// N translates a message with plural forms; the catalog's plural formula
// picks the form for n.
func N(singular, plural string, n int) string {
	if catalog == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return catalog.GetN(singular, plural, n)
}

// detectLanguage returns the first usable locale from the gettext
// environment variables, without its encoding suffix.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if env == "LANGUAGE" {
			// colon-separated preference list
			val, _, _ = strings.Cut(val, ":")
		}
		val, _, _ = strings.Cut(val, ".")
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return fallback
}

// catalogLanguage maps a POSIX locale or BCP 47 tag ("ru_RU", "pt-BR") to
// the base language used for catalog directories.
func catalogLanguage(locale string) string {
	locale, _, _ = strings.Cut(locale, "@")
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return fallback
	}
	base, conf := tag.Base()
	if conf == language.No {
		return fallback
	}
	return base.String()
}
