package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// googleBackend talks to the keyless web endpoint used by the Google
// Translate browser widget (client=gtx).
type googleBackend struct {
	prov   Provider
	client *resty.Client
}

func newGoogle(prov Provider) *googleBackend {
	return &googleBackend{prov: prov, client: newRestClient(prov)}
}

func (g *googleBackend) Translate(ctx context.Context, text, target, source string) (Result, error) {
	if source == "" {
		source = "auto"
	}

	// The text goes in the form body; long queries overflow URL limits.
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     source,
			"tl":     target,
			"dt":     "t",
		}).
		SetFormData(map[string]string{"q": text}).
		Post("/translate_a/single")
	if err != nil {
		return Result{}, fmt.Errorf("API request failed: %w", err)
	}
	if err := checkResponse(g.prov.ID, resp); err != nil {
		return Result{}, err
	}

	translated, err := parseGoogleResponse(resp.Body())
	if err != nil {
		return Result{}, err
	}
	return Result{Text: translated}, nil
}

// parseGoogleResponse joins the sentence segments of a gtx reply:
//
//	[[["Bonjour le monde.","Hello world.",null,null,10], ...], null, "en", ...]
//
// Segments carry their own trailing spaces, so they are concatenated as-is.
func parseGoogleResponse(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(raw[0], &sentences); err != nil {
		return "", fmt.Errorf("unexpected sentence list: %w", err)
	}

	var sb strings.Builder
	for _, sentence := range sentences {
		if len(sentence) == 0 {
			continue
		}
		var part string
		// Transliteration rows carry null here.
		if err := json.Unmarshal(sentence[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}
	return sb.String(), nil
}
