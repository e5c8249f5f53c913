package receitaws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cnpjscan/internal/config"
	"cnpjscan/internal/services"
)

const (
	defaultBaseURL   = "https://receitaws.com.br/v1"
	defaultDays      = 7
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 1 << 20
	errorBodyExcerpt = 512
)

// HTTPDoer describes the HTTP client used by the lookup client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config describes the ReceitaWS client configuration.
type Config struct {
	BaseURL    string
	Token      string
	Days       int
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// Client queries the ReceitaWS CNPJ endpoint.
type Client struct {
	baseURL *url.URL
	auth    string
	days    int
	timeout time.Duration
	http    HTTPDoer
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "receitaws", "parse base url", base, err)
	}
	days := cfg.Days
	if days <= 0 {
		days = defaultDays
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: baseURL,
		auth:    authorizationValue(cfg.Token),
		days:    days,
		timeout: timeout,
		http:    client,
	}, nil
}

// NewFromConfig builds a client from application configuration.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "receitaws", "configure", "config is nil", nil)
	}
	return New(Config{
		BaseURL: cfg.ReceitaWS.BaseURL,
		Token:   cfg.ReceitaWS.Token,
		Days:    cfg.ReceitaWS.Days,
		Timeout: cfg.LookupTimeout(),
	})
}

// authorizationValue sends tokens that already name a scheme verbatim and
// prefixes bare tokens with Bearer.
func authorizationValue(token string) string {
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return token
	}
	return "Bearer " + token
}

// Lookup fetches the registration of taxID. A 200 response always yields a
// Result; network failures, timeouts, and non-200 statuses are returned as
// errors tagged with services.ErrTimeout or services.ErrExternalTool.
func (c *Client) Lookup(ctx context.Context, taxID string) (Result, error) {
	if c == nil {
		return nil, errors.New("receitaws: client is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL.JoinPath("cnpj", taxID, "days", strconv.Itoa(c.days))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "receitaws", "build request", taxID, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, services.Wrap(services.ErrTimeout, "receitaws", "lookup", fmt.Sprintf("no response within %s", c.timeout), err)
		}
		return nil, services.Wrap(services.ErrTransient, "receitaws", "lookup", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "receitaws", "lookup", "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		excerpt := strings.TrimSpace(string(body))
		if len(excerpt) > errorBodyExcerpt {
			excerpt = excerpt[:errorBodyExcerpt]
		}
		return nil, services.Wrap(services.ErrExternalTool, "receitaws", "lookup", fmt.Sprintf("status %d - %s", resp.StatusCode, excerpt), nil)
	}

	return Decode(body), nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
