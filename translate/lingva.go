package translate

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// lingvaBackend uses a Lingva Translate instance, a privacy front-end for
// Google Translate with a plain JSON API.
type lingvaBackend struct {
	prov   Provider
	client *resty.Client
}

type lingvaResponse struct {
	Translation string `json:"translation"`
	Error       string `json:"error"`
}

func newLingva(prov Provider) *lingvaBackend {
	return &lingvaBackend{prov: prov, client: newRestClient(prov)}
}

func (l *lingvaBackend) Translate(ctx context.Context, text, target, source string) (Result, error) {
	if source == "" {
		source = "auto"
	}

	var out lingvaResponse
	resp, err := l.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"source": source,
			"target": target,
			"text":   text,
		}).
		SetResult(&out).
		Get("/api/v1/{source}/{target}/{text}")
	if err != nil {
		return Result{}, fmt.Errorf("API request failed: %w", err)
	}
	if err := checkResponse(l.prov.ID, resp); err != nil {
		return Result{}, err
	}
	if out.Error != "" {
		return Result{}, fmt.Errorf("API error: %s", out.Error)
	}
	return Result{Text: out.Translation}, nil
}
