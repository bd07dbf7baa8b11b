// Package gateway is the HTTP client for the hosted payment gateway's
// orders API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/gymdesk/internal/config"
	obsmetrics "github.com/smallbiznis/gymdesk/internal/observability/metrics"
	"github.com/smallbiznis/gymdesk/internal/observability/tracing"
	"github.com/smallbiznis/gymdesk/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	opCreateOrder = "create_order"
	opFetchOrder  = "fetch_order"

	maxResponseBytes = 1 << 20
)

type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
	metrics   *obsmetrics.Metrics
	log       *zap.Logger
}

type Params struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics `optional:"true"`
}

func Provide(p Params) domain.GatewayClient {
	return NewClient(p.Config.Gateway, p.Metrics, p.Log)
}

func NewClient(cfg config.GatewayConfig, metrics *obsmetrics.Metrics, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      tracing.WrapHTTPClient(&http.Client{Timeout: timeout}),
		metrics:   metrics,
		log:       log.Named("payment.gateway"),
	}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*domain.Order, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, err
	}
	return c.do(ctx, opCreateOrder, http.MethodPost, "/orders", body)
}

func (c *Client) FetchOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrInvalidOrderID
	}
	return c.do(ctx, opFetchOrder, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) (order *domain.Order, err error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, domain.ErrGatewayNotConfigured
	}

	start := time.Now()
	defer func() {
		outcome := "success"
		switch {
		case err != nil && IsTimeout(err):
			outcome = "timeout"
		case err != nil:
			outcome = "error"
		}
		c.metrics.RecordGatewayCall(ctx, op, outcome, time.Since(start))
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGateway, err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("gateway request failed", zap.String("operation", op), zap.Error(tracing.SafeError(err)))
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrGateway, op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", domain.ErrGateway, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("gateway returned error status",
			zap.String("operation", op),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %s: status %d", domain.ErrGateway, op, resp.StatusCode)
	}

	var decoded domain.Order
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %w", domain.ErrGateway, op, err)
	}
	if decoded.ID == "" {
		return nil, fmt.Errorf("%w: %s: missing order id", domain.ErrGateway, op)
	}
	return &decoded, nil
}

// IsTimeout reports whether err came from the client timeout or a cancelled context.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
