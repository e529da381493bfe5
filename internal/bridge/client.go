package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"log-query-translator/config"
)

const healthCheckBodyLimit = 1 << 20

// Client talks to the translation service.
type Client struct {
	upstream   string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		upstream: cfg.Bridge.UpstreamURL,
		httpClient: &http.Client{
			Timeout: cfg.Bridge.Timeout,
		},
	}
}

// Forward posts body to /translate-query and returns the upstream status and
// body untouched.
func (c *Client) Forward(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.upstream+"/translate-query", bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read upstream response: %w", err)
	}
	log.Debug().Int("status", resp.StatusCode).Int("bytes", len(respBody)).Msg("Upstream translate-query responded")
	return resp.StatusCode, respBody, nil
}

// Health returns the upstream /health body. A non-2xx status or a body that
// is not JSON counts as unavailable.
func (c *Client) Health(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.upstream+"/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream health returned %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, healthCheckBodyLimit))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("upstream health returned invalid JSON")
	}
	return body, nil
}
