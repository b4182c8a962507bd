package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenAI API endpoint used when none is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// DefaultTimeout bounds a single translation request.
const DefaultTimeout = 120 * time.Second

// Request parameters for every translation call.
const (
	maxTokens   = 1024
	temperature = 0.2
)

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for an OpenAI-compatible chat API.
type Provider struct {
	// BaseURL is the API base URL (".../v1").
	BaseURL string
	// APIKey is sent as a bearer token.
	APIKey string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// Client translates single strings through a chat completion endpoint.
type Client struct {
	prov Provider
	http *http.Client
}

// NewClient returns a Client for prov, filling in the default base URL,
// model, and timeout when unset.
func NewClient(prov Provider) *Client {
	if prov.BaseURL == "" {
		prov.BaseURL = DefaultBaseURL
	}
	if prov.Model == "" {
		prov.Model = DefaultModel
	}
	if prov.Timeout <= 0 {
		prov.Timeout = DefaultTimeout
	}
	return &Client{prov: prov, http: makeHTTPClient(prov.Proxy, prov.Timeout)}
}

// Translate asks the model to translate text into lang and returns the
// trimmed reply. Each call is a single request; failures are not retried.
func (c *Client) Translate(ctx context.Context, text, lang string) (string, error) {
	body, err := buildChatRequest(c.prov.Model, BuildPrompt(text, lang))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.prov.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.prov.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	text, err = extractResponseText(respBody)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.prov.BaseURL, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

// ---------------------------------------------------------------------------
// HTTP client with proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
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

// ---------------------------------------------------------------------------
// Wire format
// ---------------------------------------------------------------------------

func buildChatRequest(model, userPrompt string) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
	}{
		Model:       model,
		Messages:    []msg{{Role: "user", Content: userPrompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	return json.Marshal(req)
}

// extractResponseText returns choices[0].message.content, or the API error
// message when the body carries one.
func extractResponseText(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(resp.Error, &apiErr); err == nil && apiErr.Message != "" {
			return "", fmt.Errorf("API error: %s", apiErr.Message)
		}
		return "", fmt.Errorf("API error: %s", truncate(string(resp.Error), 500))
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
	}
	return *resp.Choices[0].Message.Content, nil
}
