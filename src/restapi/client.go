package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"market-eye/src/logger"
	"market-eye/src/models"
)

// -----------------------------------------------------------------------------
// REST collaborator client
// -----------------------------------------------------------------------------

// Client talks to the upstream market API. Every call is bounded by the
// configured request timeout; a failing endpoint returns an error and the
// caller degrades to last-known or simulated values.
type Client struct {
	name    string
	baseURL string
	logger  *logger.Logger
	http    *http.Client
}

// -----------------------------------------------------------------------------

// NewClient creates a client against the given base address.
func NewClient(baseURL string, lg *logger.Logger, cfg *models.MFailoverConfig) *Client {
	return &Client{
		name:    "restapi",
		baseURL: baseURL,
		logger:  lg,
		http: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
	}
}

// -----------------------------------------------------------------------------

// getJSON performs a GET against path and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("request to %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// GetClock fetches the market-open clock.
func (c *Client) GetClock(ctx context.Context) (*models.MClock, error) {
	var clock models.MClock
	if err := c.getJSON(ctx, "/api/clock", &clock); err != nil {
		return nil, err
	}
	return &clock, nil
}

// -----------------------------------------------------------------------------

// GetAccount fetches the account summary.
func (c *Client) GetAccount(ctx context.Context) (*models.MAccount, error) {
	var account models.MAccount
	if err := c.getJSON(ctx, "/api/account", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// -----------------------------------------------------------------------------

// GetConnectivity fetches the upstream connectivity status.
func (c *Client) GetConnectivity(ctx context.Context) (*models.MConnectivity, error) {
	var connectivity models.MConnectivity
	if err := c.getJSON(ctx, "/api/health", &connectivity); err != nil {
		return nil, err
	}
	return &connectivity, nil
}

// -----------------------------------------------------------------------------

// GetMarket fetches the full universe snapshot.
func (c *Client) GetMarket(ctx context.Context) ([]models.MMarketRow, error) {
	var rows []models.MMarketRow
	if err := c.getJSON(ctx, "/api/market", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// -----------------------------------------------------------------------------

// GetPositions fetches the open positions.
func (c *Client) GetPositions(ctx context.Context) ([]models.MPosition, error) {
	var positions []models.MPosition
	if err := c.getJSON(ctx, "/api/positions", &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// -----------------------------------------------------------------------------

// GetStrategies fetches the strategy status lines.
func (c *Client) GetStrategies(ctx context.Context) ([]models.MStrategy, error) {
	var strategies []models.MStrategy
	if err := c.getJSON(ctx, "/api/strategies", &strategies); err != nil {
		return nil, err
	}
	return strategies, nil
}

// -----------------------------------------------------------------------------

// GetLogs fetches the recent upstream log lines.
func (c *Client) GetLogs(ctx context.Context) ([]string, error) {
	var lines []string
	if err := c.getJSON(ctx, "/api/logs", &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// -----------------------------------------------------------------------------

// GetPortfolioHistory fetches the equity history.
func (c *Client) GetPortfolioHistory(ctx context.Context) (*models.MPortfolioHistory, error) {
	var history models.MPortfolioHistory
	if err := c.getJSON(ctx, "/api/portfolio/history", &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// -----------------------------------------------------------------------------

// GetAsset fetches per-symbol metadata (borrow status).
func (c *Client) GetAsset(ctx context.Context, symbol string) (*models.MAsset, error) {
	var asset models.MAsset
	path := "/api/asset/" + url.PathEscape(symbol)
	if err := c.getJSON(ctx, path, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// -----------------------------------------------------------------------------

// GetBars fetches historical bars for a symbol.
func (c *Client) GetBars(ctx context.Context, symbol, timeframe string, limit int) ([]models.MBar, error) {
	var bars []models.MBar
	path := "/api/bars/" + url.PathEscape(symbol) +
		"?timeframe=" + url.QueryEscape(timeframe) +
		"&limit=" + strconv.Itoa(limit)
	if err := c.getJSON(ctx, path, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}
