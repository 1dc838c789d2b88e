package translate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
)

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Support both --proxy flag and HTTP_PROXY/HTTPS_PROXY env vars
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// newRestClient wraps the proxy-aware transport in a resty client rooted at
// the provider's base URL.
func newRestClient(prov Provider) *resty.Client {
	timeout := prov.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return resty.NewWithClient(makeHTTPClient(prov.Proxy, timeout)).
		SetBaseURL(strings.TrimRight(prov.BaseURL, "/")).
		SetHeader("User-Agent", "quicktrans")
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// RateLimitError reports an HTTP 429 answer. RetryAfter is the delay the
// service asked for, or a default when it gave none.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry in %v", e.Provider, e.RetryAfter.Round(time.Second))
}

// StatusError reports any other non-2xx answer.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.Status, e.Body)
}

// checkResponse converts an HTTP error answer into a typed error.
func checkResponse(provider string, resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		delay := parseRetryAfter(resp.Header().Get("Retry-After"))
		if delay == 0 {
			delay = parseRetryDelay(resp.Body())
		}
		return &RateLimitError{Provider: provider, RetryAfter: delay}
	}
	return &StatusError{Provider: provider, Status: resp.StatusCode(), Body: truncate(resp.String(), 500)}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(h string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// parseRetryDelay extracts the retry delay from a 429 response body.
// Looks for Google's RetryInfo detail with retryDelay field.
// Returns the delay to wait, defaulting to 60s + 5s buffer.
func parseRetryDelay(body []byte) time.Duration {
	const defaultDelay = 65 * time.Second

	var errResp struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return defaultDelay
	}

	for _, detail := range errResp.Error.Details {
		if strings.Contains(detail.Type, "RetryInfo") && detail.RetryDelay != "" {
			// Durations look like "30s" or "45.123s"
			d := strings.TrimSuffix(detail.RetryDelay, "s")
			if secs, err := strconv.ParseFloat(d, 64); err == nil {
				return time.Duration(secs*1000)*time.Millisecond + 5*time.Second
			}
		}
	}

	return defaultDelay
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
