// Package providers implements the five vendor Gateways of spec §4.2: one
// long-lived HTTP client per vendor constructed lazily (spec §9), JSON
// request/response bodies, vendor-prescribed auth headers, and the shared
// error-classification rules consumed by the Timeout/Retry Harness.
// Grounded on the teacher's internal/inference/engine/oaihttp client and
// internal/platform/openai client, generalized across five vendors instead
// of one.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ssingh-rookie/LeafWise-API/internal/platform/httpx"
)

// ErrorCode is the classification spec §4.2 requires the Harness to act on.
type ErrorCode string

const (
	ErrCodeAuth            ErrorCode = "AUTH"
	ErrCodeRateLimit       ErrorCode = "RATE_LIMIT"
	ErrCodeServiceError    ErrorCode = "SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodeNoMatch         ErrorCode = "NO_MATCH"
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
)

// GatewayError carries the classification alongside the vendor name so the
// Router and Usage Ledger can record it without re-deriving it.
type GatewayError struct {
	Provider   string
	Code       ErrorCode
	StatusCode int
	// RetryAfter carries the vendor's parsed Retry-After header on a
	// RATE_LIMIT classification; zero means the vendor didn't send one and
	// the Harness should fall back to its own backoff policy.
	RetryAfter time.Duration
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Code)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Retryable implements the predicate the AI Router plugs into the
// Timeout/Retry Harness (spec §4.2, §4.3): AUTH never retries, everything
// else does.
func (e *GatewayError) Retryable() bool {
	return e.Code != ErrCodeAuth
}

// HTTPStatusCode satisfies httpx.HTTPStatusCoder so IsRetryableError can
// classify a GatewayError it receives wrapped from deeper in the stack.
func (e *GatewayError) HTTPStatusCode() int { return e.StatusCode }

// RetryAfterDuration satisfies httpx.RetryAfterer so httpx.Run's backoff
// honors a vendor's Retry-After header instead of always using the policy's
// fixed delay.
func (e *GatewayError) RetryAfterDuration() time.Duration { return e.RetryAfter }

// httpGateway is the shared transport every vendor-specific gateway embeds:
// one client per process, JSON bodies, a bearer-ish auth header, and a
// classify step that turns a raw transport/HTTP outcome into a
// *GatewayError without the caller touching net/http directly.
type httpGateway struct {
	provider   string
	baseURL    string
	apiKey     string
	authHeader string // header name carrying apiKey, e.g. "Authorization" or "x-api-key"
	authPrefix string // value prefix, e.g. "Bearer "
	userAgent  string
	httpClient *http.Client
}

func newHTTPGateway(provider, baseURL, apiKey, authHeader, authPrefix string, timeout time.Duration) httpGateway {
	return httpGateway{
		provider:   provider,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		authHeader: authHeader,
		authPrefix: authPrefix,
		userAgent:  "leafwise-api/1.0",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// doJSON marshals body, POSTs it to baseURL+path, and unmarshals the
// response into out. Classification happens here so every gateway gets the
// same AUTH/RATE_LIMIT/SERVICE_ERROR/TIMEOUT rules spec §4.2 specifies.
func (g httpGateway) doJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return &GatewayError{Provider: g.provider, Code: ErrCodeServiceError, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", g.userAgent)
	if g.authHeader != "" {
		req.Header.Set(g.authHeader, g.authPrefix+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &GatewayError{Provider: g.provider, Code: ErrCodeTimeout, Err: err}
		}
		var netErr net.Error
		if ok := asNetError(err, &netErr); ok {
			return &GatewayError{Provider: g.provider, Code: ErrCodeServiceError, Err: err}
		}
		return &GatewayError{Provider: g.provider, Code: ErrCodeServiceError, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		strings.Contains(strings.ToLower(string(respBody)), "invalid api key") {
		return &GatewayError{Provider: g.provider, Code: ErrCodeAuth, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(respBody)))}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &GatewayError{Provider: g.provider, Code: ErrCodeRateLimit, StatusCode: resp.StatusCode, RetryAfter: httpx.RetryAfterDuration(resp, 0, 0), Err: fmt.Errorf("rate limited")}
	}
	if resp.StatusCode >= 500 {
		return &GatewayError{Provider: g.provider, Code: ErrCodeServiceError, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(respBody)))}
	}
	if resp.StatusCode >= 400 {
		return &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(respBody)))}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// postStream issues a streaming POST and hands back the live response for
// the caller to decode incrementally. Non-2xx responses are classified the
// same way doJSON classifies them; the body is read fully in that case
// since no stream is expected on an error response.
func (g httpGateway) postStream(ctx context.Context, path string, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, &GatewayError{Provider: g.provider, Code: ErrCodeServiceError, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", g.userAgent)
	if g.authHeader != "" {
		req.Header.Set(g.authHeader, g.authPrefix+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &GatewayError{Provider: g.provider, Code: ErrCodeTimeout, Err: err}
		}
		return nil, &GatewayError{Provider: g.provider, Code: ErrCodeServiceError, Err: err}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, &GatewayError{Provider: g.provider, Code: ErrCodeAuth, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(respBody)))}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &GatewayError{Provider: g.provider, Code: ErrCodeRateLimit, StatusCode: resp.StatusCode, RetryAfter: httpx.RetryAfterDuration(resp, 0, 0), Err: fmt.Errorf("rate limited")}
		}
		if resp.StatusCode >= 500 {
			return nil, &GatewayError{Provider: g.provider, Code: ErrCodeServiceError, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(respBody)))}
		}
		return nil, &GatewayError{Provider: g.provider, Code: ErrCodeInvalidResponse, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(respBody)))}
	}

	return resp, nil
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if ok {
		*target = ne
	}
	return ok
}

// StripDataURI removes a "data:image/...;base64," prefix if present, per
// spec §4.2 input normalization.
func StripDataURI(b64 string) string {
	if idx := strings.Index(b64, ","); idx >= 0 && strings.HasPrefix(b64, "data:") {
		return b64[idx+1:]
	}
	return b64
}

// ExtractJSONObject pulls the first top-level JSON object out of a response
// body, tolerant of surrounding prose and Markdown code fences — used by
// the Vision Fallback gateway's parser (spec §4.2 item 2).
func ExtractJSONObject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
