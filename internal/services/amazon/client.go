package amazon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultEndpoint      = "https://sellingpartnerapi-na.amazon.com"
	defaultTokenEndpoint = "https://api.amazon.com/auth/o2/token"

	inventorySummariesPath = "/fba/inventory/v1/summaries"
	catalogItemsPath       = "/catalog/2022-04-01/items/"
	participationsPath     = "/sellers/v1/marketplaceParticipations"
	fulfillmentOrdersPath  = "/fba/outbound/2020-07-01/fulfillmentOrders"
)

// Client is the authenticated gateway to SP-API. It performs no retries;
// SP-API rate-limits aggressively, so retry policy belongs to callers. A
// limiter paces outgoing calls instead.
type Client struct {
	creds      Credentials
	endpoint   string
	httpClient *http.Client
	tokens     *tokenSource
	limiter    *rate.Limiter
	logger     *zap.Logger
	requests   *prometheus.CounterVec
}

// Option adjusts client construction, mainly for tests.
type Option func(*Client)

// WithEndpoint overrides the SP-API base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithTokenEndpoint overrides the LWA token URL.
func WithTokenEndpoint(endpoint string) Option {
	return func(c *Client) { c.tokens.tokenEndpoint = endpoint }
}

// WithRequestCounter counts SP-API calls by result.
func WithRequestCounter(vec *prometheus.CounterVec) Option {
	return func(c *Client) { c.requests = vec }
}

func NewClient(creds Credentials, cache TokenCache, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		creds:    creds,
		endpoint: defaultEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens:  newTokenSource(creds, defaultTokenEndpoint, cache, logger),
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MarketplaceID returns the configured marketplace.
func (c *Client) MarketplaceID() string {
	return c.creds.MarketplaceID
}

// InvalidateToken drops cached tokens after a credential change.
func (c *Client) InvalidateToken() {
	c.tokens.Invalidate()
}

// Request performs one authenticated SP-API call. Errors are one of
// *AuthError, *TransportError or *APIError; nothing is retried here.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.count("auth_error")
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Err: err}
	}

	reqURL := c.endpoint + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request body: %w", err)
			}
			reqBody = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-amz-access-token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count("transport_error")
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.count("transport_error")
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			Message:    "API request failed",
			StatusCode: resp.StatusCode,
			Raw:        respBody,
		}
		var errBody apiErrorBody
		if err := json.Unmarshal(respBody, &errBody); err == nil && len(errBody.Errors) > 0 {
			apiErr.Message = errBody.Errors[0].Message
		}
		c.logger.Warn("SP-API error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		c.count("api_error")
		return nil, apiErr
	}

	c.count("success")
	return respBody, nil
}

func (c *Client) count(result string) {
	if c.requests != nil {
		c.requests.WithLabelValues(result).Inc()
	}
}

// TestConnection verifies credentials and returns the names of marketplaces
// the seller participates in.
func (c *Client) TestConnection(ctx context.Context) ([]string, error) {
	raw, err := c.Request(ctx, http.MethodGet, participationsPath, nil, nil)
	if err != nil {
		return nil, err
	}

	var resp marketplaceParticipationsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode participations: %w", err)
	}

	var marketplaces []string
	for _, p := range resp.Payload {
		if p.Participation.IsParticipating {
			marketplaces = append(marketplaces, p.Marketplace.Name)
		}
	}
	return marketplaces, nil
}

// InventorySummaries fetches the full FBA inventory view, zero-quantity
// entries included so out-of-stock items can be reconciled.
func (c *Client) InventorySummaries(ctx context.Context) ([]InventoryItem, error) {
	query := url.Values{}
	query.Set("granularityType", "Marketplace")
	query.Set("granularityId", c.creds.MarketplaceID)
	query.Set("marketplaceIds", c.creds.MarketplaceID)

	raw, err := c.Request(ctx, http.MethodGet, inventorySummariesPath, query, nil)
	if err != nil {
		return nil, err
	}

	return ParseInventory(raw)
}

// CatalogItem looks up a catalog item by ASIN and normalizes it.
func (c *Client) CatalogItem(ctx context.Context, asin string) (*CatalogItem, error) {
	query := url.Values{}
	query.Set("marketplaceIds", c.creds.MarketplaceID)
	query.Set("includedData", "summaries,images,attributes")

	raw, err := c.Request(ctx, http.MethodGet, catalogItemsPath+asin, query, nil)
	if err != nil {
		return nil, err
	}

	return ParseCatalogItem(raw)
}

// CreateFulfillmentOrder submits an MCF order.
func (c *Client) CreateFulfillmentOrder(ctx context.Context, order *CreateFulfillmentOrderRequest) error {
	_, err := c.Request(ctx, http.MethodPost, fulfillmentOrdersPath, nil, order)
	return err
}

// GetFulfillmentOrder retrieves the current state of an MCF order.
func (c *Client) GetFulfillmentOrder(ctx context.Context, mcfOrderID string) (*FulfillmentOrderDetail, error) {
	raw, err := c.Request(ctx, http.MethodGet, fulfillmentOrdersPath+"/"+mcfOrderID, nil, nil)
	if err != nil {
		return nil, err
	}

	var resp getFulfillmentOrderResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode fulfillment order: %w", err)
	}
	return &resp.Payload, nil
}

// CancelFulfillmentOrder asks Amazon to cancel an MCF order.
func (c *Client) CancelFulfillmentOrder(ctx context.Context, mcfOrderID string) error {
	_, err := c.Request(ctx, http.MethodPut, fulfillmentOrdersPath+"/"+mcfOrderID+"/cancel", nil, nil)
	return err
}

// FulfillmentPreview returns delivery estimates for an address and item set.
func (c *Client) FulfillmentPreview(ctx context.Context, address Address, items []PreviewItem) ([]FulfillmentPreview, error) {
	body := fulfillmentPreviewRequest{
		MarketplaceID:           c.creds.MarketplaceID,
		Address:                 address,
		Items:                   items,
		ShippingSpeedCategories: []string{"Standard", "Expedited", "Priority"},
	}

	raw, err := c.Request(ctx, http.MethodPost, fulfillmentOrdersPath+"/preview", nil, body)
	if err != nil {
		return nil, err
	}

	var resp fulfillmentPreviewResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode preview: %w", err)
	}
	return resp.Payload.FulfillmentPreviews, nil
}
