package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTP plumbing for the ERP gateway. Transport failures surface
// verbatim; nothing here retries automatically. The only bounded retry
// loop in the system lives in the identifier allocator, and it retries
// on duplicate-key conflicts, not transport errors.

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	apiKey  string
	company string
	session *http.Client
}

func NewClient(baseURL, apiKey, company string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("erp client: base URL must be non-empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("erp client: api key must be non-empty")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		company: company,
		session: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("X-Company", c.company)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doJSON executes a request and decodes the response body into out.
// Non-2xx responses are classified into the domain error taxonomy.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = strings.NewReader(string(b))
	}

	req, err := c.newRequest(ctx, method, c.url(path, query), reader)
	if err != nil {
		return err
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return classifyNetErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return classifyStatus(resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
