package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

// ScoreEngine recomputes and caches the readiness snapshot of a business.
type ScoreEngine struct {
	businesses ports.BusinessRepository
	items      ports.ComplianceItemRepository
	scores     ports.ScoreRepository
	events     ports.EventPublisher
	metrics    ports.DomainMetrics
	now        func() time.Time
}

func NewScoreEngine(
	businesses ports.BusinessRepository,
	items ports.ComplianceItemRepository,
	scores ports.ScoreRepository,
	events ports.EventPublisher,
	metrics ports.DomainMetrics,
) *ScoreEngine {
	if events == nil {
		events = NoopPublisher()
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &ScoreEngine{
		businesses: businesses,
		items:      items,
		scores:     scores,
		events:     events,
		metrics:    metrics,
		now:        utcNow,
	}
}

func (e *ScoreEngine) Recompute(ctx context.Context, businessID string) (*domain.ComplianceScore, error) {
	business, err := e.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("load business: %w", err)
	}
	return e.recompute(ctx, business)
}

func (e *ScoreEngine) recompute(ctx context.Context, business *domain.Business) (*domain.ComplianceScore, error) {
	items, err := e.items.ListActive(ctx, business.ID, domain.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("list items for score: %w", err)
	}
	now := e.now()
	score := domain.ComputeScore(business.ID, business.Sector, items, now)
	if err := e.scores.Upsert(ctx, score); err != nil {
		return nil, fmt.Errorf("upsert score: %w", err)
	}

	e.metrics.RecordScore(score.StatusLabel, score.ScorePercent)
	slog.Info("score_recomputed",
		"business_id", business.ID,
		"score_percent", score.ScorePercent,
		"status_label", score.StatusLabel,
		"required_total", score.RequiredTotal,
	)
	event := domain.ScoreRecomputedEvent{
		BusinessID:   business.ID,
		ScorePercent: score.ScorePercent,
		StatusLabel:  score.StatusLabel,
		OccurredAt:   now,
	}
	if err := e.events.PublishScoreRecomputed(ctx, event); err != nil {
		slog.Warn("event_publish_failed", "event", "score_recomputed", "business_id", business.ID, "error", err)
	}
	return &score, nil
}

// Initialize stores the zero-valued snapshot of a new business.
func (e *ScoreEngine) Initialize(ctx context.Context, business *domain.Business) error {
	if err := e.scores.Upsert(ctx, domain.ZeroScore(business.ID, business.Sector, e.now())); err != nil {
		return fmt.Errorf("store initial score: %w", err)
	}
	return nil
}
