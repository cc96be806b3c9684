package guardianapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/scans"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/domain/sysconfig"
)

// DefaultBaseURL is where a locally started backend listens.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to the Security Guardian backend. It never retries and
// sets no timeout of its own; callers bound requests through ctx.
type Client struct {
	http   *resty.Client
	logger hclog.Logger
}

type Options struct {
	BaseURL string
	Debug   bool
	Logger  hclog.Logger
}

func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetDebug(opts.Debug)
	cli.SetLogger(newHclogAdapter(logger))

	return &Client{http: cli, logger: logger}
}

// BaseURL returns the backend address requests are sent to.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// TriggerScan POST /scan. Optional parameters are left out when empty.
func (c *Client) TriggerScan(ctx context.Context, req scans.TriggerRequest) (json.RawMessage, error) {
	params := map[string]string{"repo_url": req.RepoURL}
	if req.TargetURL != "" {
		params["target_url"] = req.TargetURL
	}
	if req.GithubToken != "" {
		params["github_token"] = req.GithubToken
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Post("/scan")
	if err := c.check("trigger scan", resp, err); err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body()), nil
}

// GetScans GET /scans, kept in server order.
func (c *Client) GetScans(ctx context.Context) ([]scans.ScanResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/scans")
	if err := c.check("list scans", resp, err); err != nil {
		return nil, err
	}
	var out []scans.ScanResult
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return out, nil
}

// GetScanLogs GET /scans/{id}/logs
func (c *Client) GetScanLogs(ctx context.Context, id scans.ScanID) ([]scans.ScanLog, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.Itoa(int(id))).
		Get("/scans/{id}/logs")
	if err := c.check("scan logs", resp, err); err != nil {
		return nil, err
	}
	var out []scans.ScanLog
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("scan logs %d: %w", id, err)
	}
	return out, nil
}

// GetConfig GET /config
func (c *Client) GetConfig(ctx context.Context) ([]sysconfig.Entry, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/config")
	if err := c.check("get config", resp, err); err != nil {
		return nil, err
	}
	var out []sysconfig.Entry
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	return out, nil
}

// SetConfig POST /config, upsert satu entry.
func (c *Client) SetConfig(ctx context.Context, key, value string, isSecret bool) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":       key,
			"value":     value,
			"is_secret": strconv.FormatBool(isSecret),
		}).
		Post("/config")
	if err := c.check("set config", resp, err); err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body()), nil
}

// Health GET /health on the backend.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/health")
	return c.check("health", resp, err)
}

func (c *Client) check(op string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Debug("backend request failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		apiErr := newAPIError(resp)
		c.logger.Debug("backend returned error", "op", op, "status", apiErr.StatusCode, "message", apiErr.Message)
		return apiErr
	}
	return nil
}

func decode(resp *resty.Response, v any) error {
	body := resp.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}
