// Package i18n provides internationalization support for quicktrans itself
// and detects the system language used as the default translation target.
//
// It wraps the gotext library to provide simple T() and N() functions
// for translating user-facing strings. Translations are embedded in the
// binary via //go:embed and loaded at startup via Init().
//
// Usage:
//
//	import "github.com/minios-linux/quicktrans/i18n"
//
//	func main() {
//	    i18n.Init("")  // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	    fmt.Println(i18n.T("Copy result to clipboard"))
//	}
package i18n

import (
	"embed"
	"os"
	"strings"

	locale "github.com/jeandeaual/go-locale"
	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

// locales embeds the translation files.
// Directory structure: locales/{lang}/LC_MESSAGES/quicktrans.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for quicktrans.
const domain = "quicktrans"

// po is the gotext locale object used for translations.
var po *gotext.Locale

// Init initializes the i18n system. If lang is empty, it auto-detects
// from the environment variables LANGUAGE, LC_ALL, LC_MESSAGES, LANG
// (in that order, matching GNU gettext behavior).
//
// Init should be called once at program startup, before any T() or N() calls.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a string. If no translation is available, returns the
// original string unchanged (standard gettext passthrough behavior).
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a string with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage reads environment variables to determine the user's
// preferred language, following GNU gettext conventions.
func detectLanguage() string {
	// GNU gettext priority: LANGUAGE > LC_ALL > LC_MESSAGES > LANG
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			// LANGUAGE can be a colon-separated list; take the first
			if env == "LANGUAGE" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			// Strip encoding suffix (e.g. "ru_RU.UTF-8" -> "ru_RU")
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			// "C" and "POSIX" mean no translation
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}

// SystemLanguage returns the two-letter base language of the user's locale,
// used as the translation target when a query names none. It asks the OS
// first (go-locale), then falls back to the gettext environment variables.
func SystemLanguage() string {
	if loc, err := locale.GetLocale(); err == nil {
		if base := baseLanguage(loc); base != "" {
			return base
		}
	}
	if base := baseLanguage(detectLanguage()); base != "" {
		return base
	}
	return "en"
}

// baseLanguage reduces a locale such as "pt_BR.UTF-8" or "de-AT" to its
// base language code. Unparseable and root locales yield "".
func baseLanguage(loc string) string {
	if idx := strings.IndexByte(loc, '.'); idx >= 0 {
		loc = loc[:idx]
	}
	loc = strings.ReplaceAll(strings.TrimSpace(loc), "_", "-")
	if loc == "" || loc == "C" || loc == "POSIX" {
		return ""
	}
	tag, err := language.Parse(loc)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	code := base.String()
	if code == "und" {
		return ""
	}
	return code
}
