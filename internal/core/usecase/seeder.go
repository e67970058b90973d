package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

// ItemSeeder materializes catalog entries for a business or an employee.
type ItemSeeder struct {
	catalog      ports.SectorCatalog
	items        ports.ComplianceItemRepository
	requirements ports.RequirementRepository
	metrics      ports.DomainMetrics
	now          func() time.Time
}

func NewItemSeeder(
	catalog ports.SectorCatalog,
	items ports.ComplianceItemRepository,
	requirements ports.RequirementRepository,
	metrics ports.DomainMetrics,
) *ItemSeeder {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &ItemSeeder{
		catalog:      catalog,
		items:        items,
		requirements: requirements,
		metrics:      metrics,
		now:          utcNow,
	}
}

// SeedItems inserts one missing item per sector artifact. Callers archive the
// previous set first so (business, key) stays unique among active items.
func (s *ItemSeeder) SeedItems(ctx context.Context, businessID, sectorID string) ([]domain.ComplianceItem, error) {
	now := s.now()
	nextReview := now.Add(domain.ReviewInterval)
	specs := s.catalog.Artifacts(sectorID)

	items := make([]domain.ComplianceItem, 0, len(specs))
	for _, spec := range specs {
		due := nextReview
		items = append(items, domain.ComplianceItem{
			ID:                 uuid.NewString(),
			BusinessID:         businessID,
			IndustryID:         sectorID,
			ItemKey:            spec.Key,
			ItemType:           spec.Type,
			Title:              spec.Title,
			Description:        spec.Description,
			Category:           spec.Category,
			IsRequired:         spec.Required,
			Status:             domain.ItemStatusMissing,
			Version:            domain.InitialItemVersion,
			NextReviewDue:      &due,
			ContributesToScore: spec.Required,
			CreatedAt:          now,
		})
	}
	if len(items) == 0 {
		return items, nil
	}
	if err := s.items.InsertMany(ctx, items); err != nil {
		return nil, fmt.Errorf("insert seeded items: %w", err)
	}
	s.metrics.RecordSeeded("item", len(items))
	return items, nil
}

// SeedRequirements inserts one pending requirement per sector requirement kind.
func (s *ItemSeeder) SeedRequirements(ctx context.Context, employeeID, sectorID string) ([]domain.EmployeeRequirement, error) {
	now := s.now()
	specs := s.catalog.Requirements(sectorID)

	reqs := make([]domain.EmployeeRequirement, 0, len(specs))
	for _, spec := range specs {
		reqs = append(reqs, domain.EmployeeRequirement{
			ID:              uuid.NewString(),
			EmployeeID:      employeeID,
			RequirementType: spec.Type,
			Title:           spec.Title,
			Description:     spec.Description,
			Status:          domain.RequirementPending,
			IsMandatory:     spec.Mandatory,
			RenewalMonths:   spec.RenewalMonths,
			CreatedAt:       now,
		})
	}
	if len(reqs) == 0 {
		return reqs, nil
	}
	if err := s.requirements.InsertMany(ctx, reqs); err != nil {
		return nil, fmt.Errorf("insert seeded requirements: %w", err)
	}
	s.metrics.RecordSeeded("requirement", len(reqs))
	return reqs, nil
}
