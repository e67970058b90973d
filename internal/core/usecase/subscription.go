package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

const checkoutSource = "simplycomply_web"

type SubscriptionUseCase struct {
	businesses    ports.BusinessRepository
	transactions  ports.TransactionRepository
	notifications ports.NotificationRepository
	gateway       ports.PaymentGateway
	metrics       ports.DomainMetrics
	now           func() time.Time
}

func NewSubscriptionUseCase(
	businesses ports.BusinessRepository,
	transactions ports.TransactionRepository,
	notifications ports.NotificationRepository,
	gateway ports.PaymentGateway,
	metrics ports.DomainMetrics,
) *SubscriptionUseCase {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &SubscriptionUseCase{
		businesses:    businesses,
		transactions:  transactions,
		notifications: notifications,
		gateway:       gateway,
		metrics:       metrics,
		now:           utcNow,
	}
}

func (uc *SubscriptionUseCase) Plans() []domain.Plan {
	return domain.Plans()
}

func (uc *SubscriptionUseCase) Checkout(ctx context.Context, principal domain.Principal, planID, originURL string) (*domain.CheckoutSession, error) {
	const op = "checkout"
	plan, ok := domain.PlanByID(planID)
	if !ok {
		return nil, domain.NewError(domain.ErrInvalidInput, op, "invalid plan")
	}
	origin := strings.TrimRight(strings.TrimSpace(originURL), "/")
	if origin == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, op, "origin_url is required")
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, domain.CheckoutRequest{
		AmountMinor: plan.MinorUnits(),
		Currency:    plan.Currency,
		ProductName: "SimplyComply " + plan.Name,
		SuccessURL:  origin + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   origin + "/subscription",
		Metadata: map[string]string{
			"user_id": principal.ID,
			"plan":    plan.ID,
			"source":  checkoutSource,
		},
	})
	if err != nil {
		return nil, upstream(op, err)
	}

	tx := &domain.PaymentTransaction{
		ID:            uuid.NewString(),
		SessionID:     session.SessionID,
		UserID:        principal.ID,
		Amount:        plan.Price,
		Currency:      plan.Currency,
		Plan:          plan.ID,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     uc.now(),
	}
	if err := uc.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	return &session, nil
}

// Status polls the gateway and activates the subscription on the first paid answer.
func (uc *SubscriptionUseCase) Status(ctx context.Context, principal domain.Principal, sessionID string) (*domain.CheckoutStatus, error) {
	const op = "checkout status"
	tx, err := uc.transactions.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != principal.ID && !principal.IsAdmin() {
		return nil, domain.NewError(domain.ErrForbidden, op, "session belongs to another user")
	}
	status, err := uc.gateway.GetCheckoutStatus(ctx, sessionID)
	if err != nil {
		return nil, upstream(op, err)
	}
	if status.PaymentStatus == domain.PaymentPaid {
		if err := uc.settle(ctx, sessionID, tx.UserID, tx.Plan); err != nil {
			return nil, err
		}
	}
	return &status, nil
}

// HandleWebhook verifies and applies a gateway event. The caller acknowledges
// the delivery whatever the outcome.
func (uc *SubscriptionUseCase) HandleWebhook(ctx context.Context, body []byte, signature string) (*domain.WebhookEvent, error) {
	event, err := uc.gateway.ParseWebhook(ctx, body, signature)
	if err != nil {
		uc.metrics.RecordWebhook("rejected")
		slog.Error("webhook_error", "stage", "verify", "error", err)
		return nil, err
	}
	if event.PaymentStatus != domain.PaymentPaid {
		uc.metrics.RecordWebhook("ignored")
		return &event, nil
	}

	userID := event.Metadata["user_id"]
	plan := event.Metadata["plan"]
	if plan == "" {
		plan = "monthly"
	}
	if tx, err := uc.transactions.GetBySession(ctx, event.SessionID); err == nil {
		userID, plan = tx.UserID, tx.Plan
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		uc.metrics.RecordWebhook("error")
		slog.Error("webhook_error", "stage", "lookup", "session_id", event.SessionID, "error", err)
		return nil, err
	}
	if err := uc.settle(ctx, event.SessionID, userID, plan); err != nil {
		uc.metrics.RecordWebhook("error")
		slog.Error("webhook_error", "stage", "settle", "session_id", event.SessionID, "error", err)
		return nil, err
	}
	uc.metrics.RecordWebhook("paid")
	return &event, nil
}

// settle marks the transaction paid once and activates the owner's business.
func (uc *SubscriptionUseCase) settle(ctx context.Context, sessionID, userID, planID string) error {
	flipped, err := uc.transactions.MarkPaid(ctx, sessionID, uc.now())
	if domain.IsKind(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark transaction paid: %w", err)
	}
	if !flipped || userID == "" {
		return nil
	}

	plan, ok := domain.PlanByID(planID)
	if !ok {
		plan, _ = domain.PlanByID("monthly")
	}
	business, err := uc.businesses.GetByOwner(ctx, userID)
	switch {
	case err == nil:
		now := uc.now()
		business.SubscriptionStatus = domain.SubscriptionActive
		business.SubscriptionPlan = plan.ID
		business.UpdatedAt = &now
		if err := uc.businesses.Update(ctx, business); err != nil {
			return fmt.Errorf("activate subscription: %w", err)
		}
	case domain.IsKind(err, domain.ErrNotFound):
		slog.Warn("subscription_without_business", "user_id", userID, "session_id", sessionID)
	default:
		return fmt.Errorf("lookup business: %w", err)
	}

	n := domain.SubscriptionActivatedNotification(uuid.NewString(), userID, plan, uc.now())
	if err := uc.notifications.Create(ctx, &n); err != nil {
		slog.Warn("notification_failed", "user_id", userID, "error", err)
	}
	slog.Info("subscription_activated", "user_id", userID, "plan", plan.ID, "session_id", sessionID)
	return nil
}

// upstream marks gateway failures that carry no kind of their own.
func upstream(op string, err error) error {
	for _, kind := range []error{domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrUpstream, domain.ErrTemporary, domain.ErrUnauthorized} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return domain.WrapError(domain.ErrUpstream, op, err)
}
