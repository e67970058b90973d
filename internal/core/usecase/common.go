package usecase

import (
	"context"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

func utcNow() time.Time {
	return time.Now().UTC()
}

// ownedBusiness resolves the business owned by the caller.
func ownedBusiness(ctx context.Context, repo ports.BusinessRepository, principal domain.Principal) (*domain.Business, error) {
	if principal.ID == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "resolve business", "missing principal")
	}
	business, err := repo.GetByOwner(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if business.OwnerUserID != principal.ID {
		return nil, domain.NewError(domain.ErrForbidden, "resolve business", "business not owned by caller")
	}
	return business, nil
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// NoopLocker runs mutations without cross-process serialization.
func NoopLocker() ports.BusinessLocker { return noopLocker{} }

type noopPublisher struct{}

func (noopPublisher) PublishItemUpdated(context.Context, domain.ItemUpdatedEvent) error {
	return nil
}

func (noopPublisher) PublishScoreRecomputed(context.Context, domain.ScoreRecomputedEvent) error {
	return nil
}

func NoopPublisher() ports.EventPublisher { return noopPublisher{} }

type noopMetrics struct{}

func (noopMetrics) RecordScore(domain.StatusLabel, int) {}
func (noopMetrics) RecordSeeded(string, int) {}
func (noopMetrics) RecordWebhook(string) {}

func NoopMetrics() ports.DomainMetrics { return noopMetrics{} }
