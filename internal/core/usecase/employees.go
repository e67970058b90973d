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

type EmployeeUseCase struct {
	businesses   ports.BusinessRepository
	employees    ports.EmployeeRepository
	requirements ports.RequirementRepository
	catalog      ports.SectorCatalog
	lifecycle    *LifecycleCoordinator
	now          func() time.Time
}

func NewEmployeeUseCase(
	businesses ports.BusinessRepository,
	employees ports.EmployeeRepository,
	requirements ports.RequirementRepository,
	catalog ports.SectorCatalog,
	lifecycle *LifecycleCoordinator,
) *EmployeeUseCase {
	return &EmployeeUseCase{
		businesses:   businesses,
		employees:    employees,
		requirements: requirements,
		catalog:      catalog,
		lifecycle:    lifecycle,
		now:          utcNow,
	}
}

// List returns every employee of the business with a summary derived at read time.
func (uc *EmployeeUseCase) List(ctx context.Context, principal domain.Principal) ([]domain.EmployeeView, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	employees, err := uc.employees.ListByBusiness(ctx, business.ID, false)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	now := uc.now()
	out := make([]domain.EmployeeView, 0, len(employees))
	for _, e := range employees {
		reqs, err := uc.requirements.ListByEmployee(ctx, e.ID)
		if err != nil {
			return nil, fmt.Errorf("list requirements: %w", err)
		}
		out = append(out, domain.EmployeeView{Employee: e, ComplianceSummary: domain.SummarizeRequirements(now, reqs)})
	}
	return out, nil
}

func (uc *EmployeeUseCase) Create(ctx context.Context, principal domain.Principal, employee domain.Employee) (*domain.Employee, error) {
	const op = "create employee"
	if strings.TrimSpace(employee.FirstName) == "" || strings.TrimSpace(employee.LastName) == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, op, "first_name and last_name are required")
	}
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	employee.ID = uuid.NewString()
	employee.BusinessID = business.ID
	employee.IsActive = true
	employee.CreatedAt = uc.now()
	if employee.StartDate != nil {
		start := employee.StartDate.UTC()
		employee.StartDate = &start
	}
	if err := uc.employees.Create(ctx, &employee); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	if _, err := uc.lifecycle.EmployeeCreated(ctx, &employee, business.Sector); err != nil {
		return nil, err
	}
	return &employee, nil
}

func (uc *EmployeeUseCase) Get(ctx context.Context, principal domain.Principal, employeeID string) (*domain.EmployeeView, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	employee, err := uc.employees.GetByID(ctx, business.ID, employeeID)
	if err != nil {
		return nil, err
	}
	reqs, err := uc.requirements.ListByEmployee(ctx, employee.ID)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	return &domain.EmployeeView{Employee: *employee, ComplianceSummary: domain.SummarizeRequirements(uc.now(), reqs)}, nil
}

func (uc *EmployeeUseCase) Update(ctx context.Context, principal domain.Principal, employeeID string, changes domain.EmployeeChanges) (*domain.Employee, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	employee, err := uc.employees.GetByID(ctx, business.ID, employeeID)
	if err != nil {
		return nil, err
	}
	employee.Apply(changes)
	if err := uc.employees.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}
	return employee, nil
}

func (uc *EmployeeUseCase) Delete(ctx context.Context, principal domain.Principal, employeeID string) error {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return err
	}
	_, err = uc.lifecycle.DeleteEmployee(ctx, business.ID, employeeID)
	return err
}

func (uc *EmployeeUseCase) ownedEmployee(ctx context.Context, principal domain.Principal, employeeID string) (*domain.Business, *domain.Employee, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, nil, err
	}
	employee, err := uc.employees.GetByID(ctx, business.ID, employeeID)
	if err != nil {
		return nil, nil, err
	}
	return business, employee, nil
}

func (uc *EmployeeUseCase) ListRequirements(ctx context.Context, principal domain.Principal, employeeID string) ([]domain.RequirementView, error) {
	_, employee, err := uc.ownedEmployee(ctx, principal, employeeID)
	if err != nil {
		return nil, err
	}
	reqs, err := uc.requirements.ListByEmployee(ctx, employee.ID)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	now := uc.now()
	out := make([]domain.RequirementView, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Derive(now))
	}
	return out, nil
}

func (uc *EmployeeUseCase) AddRequirement(ctx context.Context, principal domain.Principal, employeeID string, in domain.NewRequirement) (*domain.RequirementView, error) {
	const op = "add requirement"
	if strings.TrimSpace(in.RequirementType) == "" || strings.TrimSpace(in.Title) == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, op, "requirement_type and title are required")
	}
	_, employee, err := uc.ownedEmployee(ctx, principal, employeeID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	req := domain.EmployeeRequirement{
		ID:              uuid.NewString(),
		EmployeeID:      employee.ID,
		RequirementType: in.RequirementType,
		Title:           in.Title,
		Description:     in.Description,
		IssueDate:       utcPtr(in.IssueDate),
		ExpiryDate:      utcPtr(in.ExpiryDate),
		ReferenceNumber: in.ReferenceNumber,
		IsMandatory:     false,
		RenewalMonths:   in.RenewalMonths,
		CreatedAt:       now,
	}
	req.Status, _ = domain.ClassifyExpiry(now, req.ExpiryDate)
	if err := uc.requirements.InsertMany(ctx, []domain.EmployeeRequirement{req}); err != nil {
		return nil, fmt.Errorf("insert requirement: %w", err)
	}
	view := req.Derive(now)
	return &view, nil
}

func (uc *EmployeeUseCase) UpdateRequirement(
	ctx context.Context,
	principal domain.Principal,
	employeeID, requirementID string,
	changes domain.RequirementChanges,
) (*domain.RequirementView, error) {
	_, employee, err := uc.ownedEmployee(ctx, principal, employeeID)
	if err != nil {
		return nil, err
	}
	req, err := uc.requirements.GetByID(ctx, employee.ID, requirementID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	req.Apply(changes, now)
	if err := uc.requirements.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update requirement: %w", err)
	}
	view := req.Derive(now)
	return &view, nil
}

// RequirementTypes lists the requirement kinds of the caller's sector.
func (uc *EmployeeUseCase) RequirementTypes(ctx context.Context, principal domain.Principal) ([]domain.RequirementSpec, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	return uc.catalog.Requirements(business.Sector), nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
