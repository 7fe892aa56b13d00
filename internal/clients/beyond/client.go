package beyond

//go:generate mockgen -destination=mock/mock_client.go -package=mockbeyond -source=client.go

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
)

// Client fetches character data from the D&D Beyond character service.
type Client interface {
	// GetCharacter returns the normalized character data tree for one
	// character id.
	GetCharacter(ctx context.Context, characterID int) (map[string]any, error)
}

// Config holds configuration for the Beyond client
type Config struct {
	BaseURL    string
	RetryMax   int
	Timeout    time.Duration
	HTTPClient *http.Client // Optional, for tests
}

type client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New creates a Beyond client
func New(cfg *Config) (Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, dnderr.InvalidArgument("base URL is required")
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.Logger = nil
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	if cfg.HTTPClient != nil {
		rc.HTTPClient = cfg.HTTPClient
	}

	return &client{
		baseURL: cfg.BaseURL,
		http:    rc,
	}, nil
}

func (c *client) GetCharacter(ctx context.Context, characterID int) (map[string]any, error) {
	url := fmt.Sprintf("%s/%d", c.baseURL, characterID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to build character request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "character fetch failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, dnderr.NotFoundf("character %d not found", characterID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, dnderr.Newf(dnderr.CodeUnavailable, "character fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to read character response")
	}

	data, err := Normalize(body)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to normalize character %d", characterID)
	}
	return data, nil
}
