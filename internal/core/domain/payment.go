package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Plan struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Interval string          `json:"interval"`
}

// MinorUnits is the price in the smallest currency unit (pence for GBP).
func (p Plan) MinorUnits() int64 {
	return p.Price.Shift(2).Round(0).IntPart()
}

var plans = []Plan{
	{ID: "monthly", Name: "Monthly", Price: decimal.RequireFromString("29.00"), Currency: "gbp", Interval: "month"},
	{ID: "annual", Name: "Annual", Price: decimal.RequireFromString("290.00"), Currency: "gbp", Interval: "year"},
}

func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

func PlanByID(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentUnpaid  PaymentStatus = "unpaid"
)

type PaymentTransaction struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Plan          string          `json:"plan"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

type CheckoutRequest struct {
	AmountMinor int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type CheckoutStatus struct {
	SessionID     string            `json:"session_id"`
	Status        string            `json:"status"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type WebhookEvent struct {
	EventType     string
	SessionID     string
	PaymentStatus PaymentStatus
	Metadata      map[string]string
}
