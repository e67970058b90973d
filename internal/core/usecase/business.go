package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

type BusinessUseCase struct {
	businesses ports.BusinessRepository
	lifecycle  *LifecycleCoordinator
	now        func() time.Time
}

func NewBusinessUseCase(businesses ports.BusinessRepository, lifecycle *LifecycleCoordinator) *BusinessUseCase {
	return &BusinessUseCase{
		businesses: businesses,
		lifecycle:  lifecycle,
		now:        utcNow,
	}
}

func validateProfile(op string, p domain.BusinessProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.NewError(domain.ErrInvalidInput, op, "name is required")
	}
	if strings.TrimSpace(p.Sector) == "" {
		return domain.NewError(domain.ErrInvalidInput, op, "sector is required")
	}
	return nil
}

func (uc *BusinessUseCase) Create(ctx context.Context, principal domain.Principal, profile domain.BusinessProfile) (*domain.Business, error) {
	const op = "create business"
	if err := validateProfile(op, profile); err != nil {
		return nil, err
	}
	existing, err := uc.businesses.GetByOwner(ctx, principal.ID)
	switch {
	case err == nil && existing != nil:
		return nil, domain.NewError(domain.ErrConflict, op, "user already has a business")
	case err != nil && !domain.IsKind(err, domain.ErrNotFound):
		return nil, fmt.Errorf("lookup existing business: %w", err)
	}

	business := &domain.Business{
		ID:                 uuid.NewString(),
		OwnerUserID:        principal.ID,
		SubscriptionStatus: domain.SubscriptionInactive,
		CreatedAt:          uc.now(),
	}
	business.Apply(profile)
	if err := uc.businesses.Create(ctx, business); err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}
	if err := uc.lifecycle.BusinessCreated(ctx, business); err != nil {
		return nil, err
	}
	return business, nil
}

func (uc *BusinessUseCase) Get(ctx context.Context, principal domain.Principal) (*domain.Business, error) {
	return ownedBusiness(ctx, uc.businesses, principal)
}

// Update stores the profile. A sector change archives and reseeds the checklist.
func (uc *BusinessUseCase) Update(ctx context.Context, principal domain.Principal, profile domain.BusinessProfile) (*domain.Business, error) {
	const op = "update business"
	if err := validateProfile(op, profile); err != nil {
		return nil, err
	}
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	sectorChanged := business.Apply(profile)
	now := uc.now()
	business.UpdatedAt = &now
	if err := uc.businesses.Update(ctx, business); err != nil {
		return nil, fmt.Errorf("update business: %w", err)
	}
	if sectorChanged {
		if _, err := uc.lifecycle.ChangeSector(ctx, business); err != nil {
			return nil, err
		}
	}
	return business, nil
}
