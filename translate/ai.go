package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ---------------------------------------------------------------------------
// System prompt
// ---------------------------------------------------------------------------

// SystemPrompt instructs AI providers to answer with a JSON array holding one
// translated string per input line. {{targetLang}} and {{sourceHint}} are
// substituted per request.
const SystemPrompt = `You are a translation engine inside an application launcher. Translate the user's text into the language with code "{{targetLang}}".{{sourceHint}}

TECHNICAL REQUIREMENTS:
- Return ONLY a JSON array of translated strings, one for each input line, in the same order.
- Preserve punctuation, numbers, and proper nouns.
- Do not explain, transliterate, or add notes.
- Return ONLY the JSON array, no markdown code blocks.`

func resolvedPrompt(target, source string) string {
	hint := ""
	if source != "" {
		hint = fmt.Sprintf(" The text is written in the language with code %q.", source)
	}
	prompt := strings.ReplaceAll(SystemPrompt, "{{targetLang}}", target)
	return strings.ReplaceAll(prompt, "{{sourceHint}}", hint)
}

// ---------------------------------------------------------------------------
// API formats
// ---------------------------------------------------------------------------

type apiFormat int

const (
	formatOpenAIChat   apiFormat = iota // OpenAI chat/completions
	formatGeminiNative                  // Google Gemini generateContent
)

// aiBackend sends translation prompts to an AI provider.
type aiBackend struct {
	prov   Provider
	format apiFormat
	client *resty.Client
}

func newAI(prov Provider) *aiBackend {
	format := formatOpenAIChat
	if prov.ID == ProviderGemini {
		format = formatGeminiNative
	}
	return &aiBackend{prov: prov, format: format, client: newRestClient(prov)}
}

func (a *aiBackend) Translate(ctx context.Context, text, target, source string) (Result, error) {
	endpoint, headers, body, err := a.buildRequest(resolvedPrompt(target, source), text)
	if err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("API request failed: %w", err)
	}
	if err := checkResponse(a.prov.ID, resp); err != nil {
		return Result{}, err
	}

	content, err := extractResponseText(resp.Body())
	if err != nil {
		return Result{}, err
	}
	return parseSegments(content), nil
}

// buildRequest returns the endpoint path, headers, and body for the provider.
func (a *aiBackend) buildRequest(systemPrompt, userPrompt string) (string, map[string]string, []byte, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	switch a.format {
	case formatGeminiNative:
		if a.prov.APIKey != "" {
			headers["x-goog-api-key"] = a.prov.APIKey
		}
		body, err := buildGeminiRequest(systemPrompt, userPrompt, 0.1)
		return fmt.Sprintf("/v1beta/models/%s:generateContent", a.prov.Model), headers, body, err

	default:
		endpoint := "/chat/completions"
		if baseURL := strings.TrimRight(a.prov.BaseURL, "/"); strings.HasSuffix(baseURL, "/chat/completions") {
			// Absolute URLs bypass the client's base URL.
			endpoint = baseURL
		}
		if a.prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + a.prov.APIKey
		}
		body, err := buildOpenAIChatRequest(a.prov.Model, systemPrompt, userPrompt, 0.1)
		return endpoint, headers, body, err
	}
}

func buildOpenAIChatRequest(model, systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
	}
	return json.Marshal(req)
}

func buildGeminiRequest(systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature float64 `json:"temperature"`
	}
	req := struct {
		Contents          []content `json:"contents"`
		GenerationConfig  genConfig `json:"generationConfig"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: genConfig{Temperature: temperature},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}
	return json.Marshal(req)
}

// ---------------------------------------------------------------------------
// Response parsing
// ---------------------------------------------------------------------------

// extractResponseText tries the OpenAI chat and Gemini reply shapes.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	// OpenAI chat: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// Gemini: candidates[0].content.parts[0].text
	if candidates, ok := raw["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseSegments reads the model's JSON array. Models that ignore the format
// and answer in prose get their whole reply as a single Text.
func parseSegments(content string) Result {
	content = strings.TrimSpace(content)
	if m := markdownCodeBlock.FindStringSubmatch(content); m != nil {
		content = m[1]
	}

	var segments []string
	if err := json.Unmarshal([]byte(content), &segments); err == nil && len(segments) > 0 {
		return Result{Segments: segments}
	}
	return Result{Text: content}
}
