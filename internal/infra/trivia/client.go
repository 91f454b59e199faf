// Package trivia is a client for the Open Trivia DB question API.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"inno-quiz-service/internal/domain"
)

const DefaultBaseURL = "https://opentdb.com/api.php"

// Provider response codes.
const (
	codeSuccess       = 0
	codeNoResults     = 1
	codeInvalidParam  = 2
	codeTokenNotFound = 3
	codeTokenEmpty    = 4
	codeRateLimit     = 5
)

// ResponseError reports a non-zero response_code from the provider.
type ResponseError struct {
	Code int
}

func (e *ResponseError) Error() string {
	switch e.Code {
	case codeNoResults:
		return "not enough questions available"
	case codeInvalidParam:
		return "invalid parameter"
	case codeTokenNotFound:
		return "session token not found"
	case codeTokenEmpty:
		return "session token exhausted"
	case codeRateLimit:
		return "rate limit exceeded"
	}
	return "api error: response code " + strconv.Itoa(e.Code)
}

// Rejected is false only for rate limiting, which is a temporary condition.
func (e *ResponseError) Rejected() bool {
	return e.Code != codeRateLimit
}

// StatusError reports a non-2xx HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http error from trivia api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Rejected reports client-side (4xx) failures other than throttling.
func (e *StatusError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// Client calls the provider over HTTP. Every request is bounded by the timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	ResponseCode int                 `json:"response_code"`
	Results      []domain.TriviaItem `json:"results"`
}

// FetchQuestions requests query.Amount questions. Zero-valued filters are omitted.
func (c *Client) FetchQuestions(ctx context.Context, query domain.TriviaQuery) ([]domain.TriviaItem, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(query.Amount))
	if query.Category != domain.CategoryAny {
		params.Set("category", strconv.Itoa(int(query.Category)))
	}
	if query.Difficulty != "" {
		params.Set("difficulty", query.Difficulty)
	}
	if query.Type != "" {
		params.Set("type", query.Type)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build trivia request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error connecting to trivia api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode trivia response: %w", err)
	}
	if body.ResponseCode != codeSuccess {
		return nil, &ResponseError{Code: body.ResponseCode}
	}
	if body.Results == nil {
		body.Results = []domain.TriviaItem{}
	}
	return body.Results, nil
}
