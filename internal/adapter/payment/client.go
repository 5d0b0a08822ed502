package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
)

// TooManyRequestsError represents rate limiting signal from the payment API.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// StatusError is a non retryable error response from the payment API.
type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("payment api: %d %s", e.Code, e.Body)
}

// HTTPClient talks to the payment provider REST API with basic auth.
type HTTPClient struct {
	baseURL    *url.URL
	keyID      string
	keySecret  string
	httpClient *http.Client
	attempts   uint
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type paymentResponse struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Amount  int64  `json:"amount"`
}

type paymentsResponse struct {
	Items []paymentResponse `json:"items"`
}

// NewHTTPClient creates a payment API client with default timeout.
func NewHTTPClient(baseURL, keyID, keySecret string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payment api url must be absolute")
	}
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("payment api key is not configured")
	}
	return &HTTPClient{
		baseURL:   parsed,
		keyID:     keyID,
		keySecret: keySecret,
		attempts:  defaultAttempts,
		logger:    logger,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// KeyID is the public key handed to checkout clients.
func (c *HTTPClient) KeyID() string {
	return c.keyID
}

// CreateOrder opens a provider order for the amount in major units.
func (c *HTTPClient) CreateOrder(ctx context.Context, req model.ProviderOrderRequest) (*model.ProviderOrder, error) {
	payload, err := json.Marshal(createOrderRequest{
		Amount:   ToMinorUnits(req.Amount),
		Currency: req.Currency,
		Receipt:  req.Receipt,
	})
	if err != nil {
		return nil, err
	}

	var data orderResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint("/v1/orders"), payload, &data); err != nil {
		return nil, err
	}
	return &model.ProviderOrder{
		ID:       data.ID,
		Amount:   FromMinorUnits(data.Amount),
		Currency: data.Currency,
		Receipt:  data.Receipt,
		Status:   data.Status,
	}, nil
}

// FetchPayments lists payment attempts made against a provider order.
func (c *HTTPClient) FetchPayments(ctx context.Context, providerOrderID string) ([]model.ProviderPayment, error) {
	var data paymentsResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("/v1/orders", providerOrderID, "payments"), nil, &data); err != nil {
		return nil, err
	}
	payments := make([]model.ProviderPayment, 0, len(data.Items))
	for _, item := range data.Items {
		payments = append(payments, model.ProviderPayment{
			ID:      item.ID,
			OrderID: item.OrderID,
			Status:  item.Status,
			Amount:  FromMinorUnits(item.Amount),
		})
	}
	return payments, nil
}

func (c *HTTPClient) endpoint(parts ...string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(append([]string{endpoint.Path}, parts...)...)
	return endpoint.String()
}

// do retries transport failures and 5xx responses. Rate limiting is retried
// too and surfaces as TooManyRequestsError once attempts run out.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	op := func() (struct{}, error) {
		return struct{}{}, c.once(ctx, method, endpoint, payload, out)
	}
	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.attempts),
	)
	return err
}

func (c *HTTPClient) once(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode payment api response: %w", err))
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		raw, _ := io.ReadAll(resp.Body)
		c.logger.ErrorContext(ctx, "payment api request failed",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		statusErr := StatusError{Code: resp.StatusCode, Body: string(raw)}
		if resp.StatusCode >= 500 {
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
