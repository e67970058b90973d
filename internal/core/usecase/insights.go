package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

// InsightsUseCase builds the dashboard and the staff compliance overview.
type InsightsUseCase struct {
	businesses   ports.BusinessRepository
	items        ports.ComplianceItemRepository
	employees    ports.EmployeeRepository
	requirements ports.RequirementRepository
	now          func() time.Time
}

func NewInsightsUseCase(
	businesses ports.BusinessRepository,
	items ports.ComplianceItemRepository,
	employees ports.EmployeeRepository,
	requirements ports.RequirementRepository,
) *InsightsUseCase {
	return &InsightsUseCase{
		businesses:   businesses,
		items:        items,
		employees:    employees,
		requirements: requirements,
		now:          utcNow,
	}
}

// Dashboard returns the has_business=false payload for users without a business.
func (uc *InsightsUseCase) Dashboard(ctx context.Context, principal domain.Principal) (domain.DashboardStats, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if domain.IsKind(err, domain.ErrNotFound) {
		return domain.EmptyDashboard(), nil
	}
	if err != nil {
		return domain.DashboardStats{}, err
	}
	items, err := uc.items.ListActive(ctx, business.ID, domain.ItemFilter{})
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("list items: %w", err)
	}
	records, err := uc.staffRecords(ctx, business.ID)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	return domain.BuildDashboard(uc.now(), *business, items, records), nil
}

func (uc *InsightsUseCase) EmployeeOverview(ctx context.Context, principal domain.Principal) (domain.EmployeeOverview, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return domain.EmployeeOverview{}, err
	}
	records, err := uc.staffRecords(ctx, business.ID)
	if err != nil {
		return domain.EmployeeOverview{}, err
	}
	return domain.BuildEmployeeOverview(uc.now(), records), nil
}

func (uc *InsightsUseCase) staffRecords(ctx context.Context, businessID string) ([]domain.StaffRecord, error) {
	employees, err := uc.employees.ListByBusiness(ctx, businessID, true)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	records := make([]domain.StaffRecord, 0, len(employees))
	for _, e := range employees {
		reqs, err := uc.requirements.ListByEmployee(ctx, e.ID)
		if err != nil {
			return nil, fmt.Errorf("list requirements: %w", err)
		}
		records = append(records, domain.StaffRecord{Employee: e, Requirements: reqs})
	}
	return records, nil
}
