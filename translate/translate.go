// Package translate sends query text to a translation backend: the free
// Google Translate web endpoint, Lingva Translate, or an AI provider
// (Google AI, Groq, Ollama, custom OpenAI-compatible endpoints).
//
// Backends return a tagged Result; Dispatcher normalizes it into an ordered,
// non-empty list of strings so callers never look at the backend's shape.
package translate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderGoogle       = "google"
	ProviderLingva       = "lingva"
	ProviderGemini       = "gemini"
	ProviderGroq         = "groq"
	ProviderOllama       = "ollama"
	ProviderCustomOpenAI = "custom-openai"
)

// DefaultTimeout bounds a single dispatch when neither the dispatcher nor the
// provider sets one.
const DefaultTimeout = 10 * time.Second

// ErrEmptyTranslation is returned when a backend answers without any text.
var ErrEmptyTranslation = errors.New("backend returned an empty translation")

// Logf is a printf-style logging callback.
type Logf func(format string, args ...any)

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for a translation service.
type Provider struct {
	// ID is the provider identifier (google, lingva, gemini, ...).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for keyless services).
	APIKey string
	// Model is the model identifier, required by AI providers.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderGoogle: {
			ID:      ProviderGoogle,
			Name:    "Google Translate",
			BaseURL: "https://translate.googleapis.com",
			Timeout: 10 * time.Second,
		},
		ProviderLingva: {
			ID:      ProviderLingva,
			Name:    "Lingva Translate",
			BaseURL: "https://lingva.ml",
			Timeout: 10 * time.Second,
		},
		ProviderGemini: {
			ID:      ProviderGemini,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Timeout: 30 * time.Second,
		},
		ProviderGroq: {
			ID:      ProviderGroq,
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Timeout: 30 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Timeout: 60 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Timeout: 30 * time.Second,
		},
	}
}

// ProviderIDs lists the known providers in display order.
func ProviderIDs() []string {
	return []string{ProviderGoogle, ProviderLingva, ProviderGemini, ProviderGroq, ProviderOllama, ProviderCustomOpenAI}
}

// ---------------------------------------------------------------------------
// Backend contract
// ---------------------------------------------------------------------------

// Result is a backend answer: either one Text or an ordered list of Segments.
type Result struct {
	Text     string
	Segments []string
}

// Strings returns the answer as an ordered list. Segments win over Text.
func (r Result) Strings() []string {
	if len(r.Segments) > 0 {
		out := make([]string, len(r.Segments))
		copy(out, r.Segments)
		return out
	}
	if r.Text != "" {
		return []string{r.Text}
	}
	return nil
}

// Backend translates text into target. An empty source asks the backend to
// detect the input language.
type Backend interface {
	Translate(ctx context.Context, text, target, source string) (Result, error)
}

// New returns the backend for prov.
func New(prov Provider) (Backend, error) {
	switch prov.ID {
	case ProviderGoogle:
		return newGoogle(prov), nil
	case ProviderLingva:
		return newLingva(prov), nil
	case ProviderGemini, ProviderGroq, ProviderOllama, ProviderCustomOpenAI:
		if err := validateAIProvider(prov); err != nil {
			return nil, err
		}
		return newAI(prov), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: google, lingva, gemini, groq, ollama, custom-openai)", prov.ID)
	}
}

func validateAIProvider(prov Provider) error {
	if prov.Model == "" {
		return fmt.Errorf("provider '%s' requires a model (--model)", prov.ID)
	}
	switch prov.ID {
	case ProviderGemini, ProviderGroq:
		if prov.APIKey == "" {
			return fmt.Errorf("provider '%s' requires an API key\n\n"+
				"Store one with:\n  quicktrans auth set --provider %s\n\n"+
				"or export QUICKTRANS_API_KEY=YOUR_KEY", prov.ID, prov.ID)
		}
	case ProviderCustomOpenAI:
		if prov.BaseURL == "" {
			return fmt.Errorf("provider 'custom-openai' requires an endpoint URL (--base-url)")
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher runs one translation per call against a Backend. It does not
// retry; rate limiting is avoided upstream by debouncing queries.
type Dispatcher struct {
	Backend Backend
	// Timeout bounds each call (0 = DefaultTimeout).
	Timeout time.Duration
	// OnLog emits debug messages.
	OnLog Logf
}

func (d *Dispatcher) effectiveTimeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return DefaultTimeout
}

func (d *Dispatcher) log(format string, args ...any) {
	if d.OnLog != nil {
		d.OnLog(format, args...)
	}
}

// Dispatch translates text into target, from source when it is not empty.
// The returned slice is never empty on success and keeps the backend's order.
func (d *Dispatcher) Dispatch(ctx context.Context, text, target, source string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.effectiveTimeout())
	defer cancel()

	if source != "" {
		d.log("translating %d bytes %s -> %s", len(text), source, target)
	} else {
		d.log("translating %d bytes auto -> %s", len(text), target)
	}

	res, err := d.Backend.Translate(ctx, text, target, source)
	if err != nil {
		return nil, fmt.Errorf("translating to %s: %w", target, err)
	}

	out := res.Strings()
	if len(out) == 0 {
		return nil, ErrEmptyTranslation
	}
	return out, nil
}
