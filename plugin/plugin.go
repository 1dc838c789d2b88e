// Package plugin wires the quicktrans pipeline for a launcher host: a query
// is tokenized, held behind the debounce gate, translated, and returned as
// result items with a copy action.
package plugin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/minios-linux/quicktrans/debounce"
	"github.com/minios-linux/quicktrans/i18n"
	"github.com/minios-linux/quicktrans/langmeta"
	"github.com/minios-linux/quicktrans/results"
	"github.com/minios-linux/quicktrans/tokenize"
	"github.com/minios-linux/quicktrans/translate"
)

// Plugin metadata reported to the host.
const (
	ID          = "quicktrans"
	Name        = "Google Translate"
	Description = "Translate sentences using Google Translate"
	Trigger     = "tr "
	Synopsis    = "[[src] dest] text"
)

// FallbackLang is the target language used when the configured or detected
// default is not in the catalog.
const FallbackLang = "en"

// Query is the host's view of one live query.
type Query interface {
	// String returns the query text after the trigger.
	String() string
	// IsValid reports false once the host has superseded the query.
	IsValid() bool
	// Add appends result items in order.
	Add(items ...results.Item)
}

// Logf is a printf-style logging callback.
type Logf func(format string, args ...any)

// Options configures Initialize.
type Options struct {
	// Synonyms maps aliases to language codes ("french": "fr").
	Synonyms map[string]string
	// DefaultLang is the target when a query names none ("" = system locale).
	DefaultLang string
	// Backend performs translations. When nil, Provider is used to build one.
	Backend translate.Backend
	// Provider configures the backend when Backend is nil.
	Provider translate.Provider
	// Gate is the debounce applied before each translation (zero = default).
	Gate debounce.Gate
	// Timeout bounds one translation call (0 = translate.DefaultTimeout).
	Timeout time.Duration
	// Clipboard receives copied results.
	Clipboard results.Clipboard

	// OnWarn is called for recoverable problems such as invalid synonyms.
	OnWarn Logf
	// OnLog is called for debug messages.
	OnLog Logf
}

// Plugin holds the state built once by Initialize. It is safe for
// concurrent HandleQuery calls.
type Plugin struct {
	catalog     *langmeta.Catalog
	defaultLang string
	gate        debounce.Gate
	dispatcher  *translate.Dispatcher
	builder     *results.Builder
	onLog       Logf
}

// Initialize builds the language catalog, the translation backend and the
// result builder, and settles the default target language.
func Initialize(opts Options) (*Plugin, error) {
	warn := func(format string, args ...any) {
		if opts.OnWarn != nil {
			opts.OnWarn(format, args...)
		}
	}

	if opts.Clipboard == nil {
		return nil, errors.New("plugin: clipboard is required")
	}

	backend := opts.Backend
	if backend == nil {
		b, err := translate.New(opts.Provider)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	catalog := langmeta.NewCatalog(opts.Synonyms, langmeta.Logf(warn))

	defaultLang := opts.DefaultLang
	if defaultLang == "" {
		defaultLang = i18n.SystemLanguage()
	}
	defaultLang = langmeta.FromLocale(catalog.Resolve(defaultLang))
	if !catalog.Valid(defaultLang) {
		warn("default language %q is not supported, using %q", defaultLang, FallbackLang)
		defaultLang = FallbackLang
	}

	gate := opts.Gate
	if gate == (debounce.Gate{}) {
		gate = debounce.Default()
	}

	p := &Plugin{
		catalog:     catalog,
		defaultLang: defaultLang,
		gate:        gate,
		onLog:       opts.OnLog,
		dispatcher: &translate.Dispatcher{
			Backend: backend,
			Timeout: opts.Timeout,
			OnLog:   translate.Logf(opts.OnLog),
		},
		builder: &results.Builder{
			ID:        ID,
			Names:     catalog,
			Clipboard: opts.Clipboard,
		},
	}
	p.log("initialized: default language %s, debounce %v", defaultLang, gate.Window())
	return p, nil
}

func (p *Plugin) log(format string, args ...any) {
	if p.onLog != nil {
		p.onLog(format, args...)
	}
}

// Catalog returns the language catalog built by Initialize.
func (p *Plugin) Catalog() *langmeta.Catalog {
	return p.catalog
}

// DefaultLang returns the target language used when a query names none.
func (p *Plugin) DefaultLang() string {
	return p.defaultLang
}

// Parse tokenizes text against the plugin's catalog and default language.
func (p *Plugin) Parse(text string) tokenize.Query {
	return tokenize.Parse(text, p.defaultLang, p.catalog)
}

// HandleQuery runs the pipeline for one query. Blank queries and queries
// invalidated during the debounce window return nil without adding results.
// Cancelling ctx also ends the wait. Once the gate passes the translation
// is not interrupted by ctx; only the dispatcher timeout applies.
// A translation failure is returned and no items are added.
func (p *Plugin) HandleQuery(ctx context.Context, q Query) error {
	text := strings.TrimSpace(q.String())
	if text == "" {
		return nil
	}

	parsed := p.Parse(text)

	if !p.gate.Wait(ctx, q.IsValid) {
		p.log("query %q superseded", text)
		return nil
	}

	translations, err := p.dispatcher.Dispatch(context.WithoutCancel(ctx), parsed.Text, parsed.Target, parsed.Source)
	if err != nil {
		return err
	}

	q.Add(p.builder.Build(translations, parsed)...)
	return nil
}
