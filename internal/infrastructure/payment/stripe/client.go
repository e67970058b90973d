// Package stripe talks to the Stripe Checkout REST API.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://api.stripe.com"
	// SignatureTolerance bounds the age of a webhook timestamp.
	SignatureTolerance = 5 * time.Minute
)

type Config struct {
	APIKey        string
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

type Client struct {
	http          *resty.Client
	webhookSecret string
	executor      *resilience.Executor
	now           func() time.Time
}

func New(cfg Config, executor *resilience.Executor) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "application/json")
	return &Client{
		http:          httpClient,
		webhookSecret: cfg.WebhookSecret,
		executor:      executor,
		now:           time.Now,
	}
}

type sessionResponse struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.ProductName)
	for k, v := range req.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	// One key per checkout so executor retries cannot open a second session.
	idempotencyKey := uuid.NewString()
	session, err := resilience.Call(ctx, c.executor, "stripe.create_session", func(ctx context.Context) (sessionResponse, error) {
		return c.doSession(ctx, "stripe.create_session", c.http.R().
			SetContext(ctx).
			SetFormDataFromValues(form).
			SetHeader("Idempotency-Key", idempotencyKey), "POST", "/v1/checkout/sessions")
	}, resilience.ClassifyHTTP)
	if err != nil {
		return domain.CheckoutSession{}, gatewayError("create checkout session", err)
	}
	if session.ID == "" || session.URL == "" {
		return domain.CheckoutSession{}, domain.NewError(domain.ErrUpstream, "create checkout session", "response without session id or url")
	}
	return domain.CheckoutSession{URL: session.URL, SessionID: session.ID}, nil
}

func (c *Client) GetCheckoutStatus(ctx context.Context, sessionID string) (domain.CheckoutStatus, error) {
	session, err := resilience.Call(ctx, c.executor, "stripe.get_session", func(ctx context.Context) (sessionResponse, error) {
		return c.doSession(ctx, "stripe.get_session", c.http.R().
			SetContext(ctx).
			SetPathParam("id", sessionID), "GET", "/v1/checkout/sessions/{id}")
	}, resilience.ClassifyHTTP)
	if err != nil {
		return domain.CheckoutStatus{}, gatewayError("get checkout status", err)
	}
	return domain.CheckoutStatus{
		SessionID:     session.ID,
		Status:        session.Status,
		PaymentStatus: paymentStatus(session.PaymentStatus),
		AmountTotal:   session.AmountTotal,
		Currency:      session.Currency,
		Metadata:      session.Metadata,
	}, nil
}

func (c *Client) doSession(_ context.Context, op string, req *resty.Request, method, path string) (sessionResponse, error) {
	var out sessionResponse
	var apiErr apiError
	resp, err := req.SetResult(&out).SetError(&apiErr).Execute(method, path)
	if err != nil {
		return sessionResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return sessionResponse{}, &resilience.StatusError{Operation: op, StatusCode: resp.StatusCode(), Body: msg}
	}
	return out, nil
}

type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Object sessionResponse `json:"object"`
	} `json:"data"`
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
func (c *Client) ParseWebhook(_ context.Context, body []byte, signature string) (domain.WebhookEvent, error) {
	const op = "parse webhook"
	if err := VerifySignature(body, signature, c.webhookSecret, c.now(), SignatureTolerance); err != nil {
		return domain.WebhookEvent{}, domain.WrapError(domain.ErrUnauthorized, op, err)
	}
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.WebhookEvent{}, domain.WrapError(domain.ErrInvalidInput, op, err)
	}
	return domain.WebhookEvent{
		EventType:     env.Type,
		SessionID:     env.Data.Object.ID,
		PaymentStatus: paymentStatus(env.Data.Object.PaymentStatus),
		Metadata:      env.Data.Object.Metadata,
	}, nil
}

var (
	errMissingSignature = errors.New("missing stripe signature")
	errStaleSignature   = errors.New("stripe signature timestamp outside tolerance")
	errBadSignature     = errors.New("stripe signature mismatch")
)

// VerifySignature checks an HMAC-SHA256 over "<t>.<payload>" against any v1 entry.
func VerifySignature(payload []byte, header, secret string, now time.Time, tolerance time.Duration) error {
	if secret == "" {
		return errors.New("webhook secret not configured")
	}
	var timestamp string
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return errMissingSignature
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("parse signature timestamp: %w", err)
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > tolerance || age < -tolerance {
		return errStaleSignature
	}

	expected := Sign(payload, secret, ts)
	for _, c := range candidates {
		if hmac.Equal([]byte(c), []byte(expected)) {
			return nil
		}
	}
	return errBadSignature
}

// Sign returns the hex v1 signature for payload at timestamp ts.
func Sign(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func paymentStatus(raw string) domain.PaymentStatus {
	switch raw {
	case "paid", "no_payment_required":
		return domain.PaymentPaid
	case "unpaid":
		return domain.PaymentUnpaid
	default:
		return domain.PaymentPending
	}
}

func gatewayError(op string, err error) error {
	var statusErr *resilience.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
		return domain.WrapError(domain.ErrNotFound, op, err)
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	return domain.WrapError(domain.ErrUpstream, op, err)
}
