package client

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

	"playquiz/internal/domain"
)

// Client talks to the quiz backend's playQuiz endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type quizEnvelope struct {
	Quiz *domain.Quiz `json:"quiz"`
}

type submitRequest struct {
	QuestionSets []domain.Question `json:"questionSets"`
}

type errorBody struct {
	Message string `json:"message"`
}

// FetchQuiz loads a quiz for playing.
func (c *Client) FetchQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.quizURL(quizID), nil)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var env quizEnvelope
	if err := c.do(req, &env); err != nil {
		return domain.Quiz{}, err
	}
	if env.Quiz == nil {
		return domain.Quiz{}, fmt.Errorf("decode quiz: missing quiz in response")
	}
	return *env.Quiz, nil
}

// SubmitTallies sends the played question sets back for persistence.
func (c *Client) SubmitTallies(ctx context.Context, quizID string, questionSets []domain.Question) error {
	body, err := json.Marshal(submitRequest{QuestionSets: questionSets})
	if err != nil {
		return fmt.Errorf("encode tallies: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.quizURL(quizID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) quizURL(quizID string) string {
	return c.baseURL + "/playQuiz/" + url.PathEscape(quizID)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &domain.APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
