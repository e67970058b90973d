package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

// LifecycleCoordinator keeps items, requirements and the score snapshot
// consistent across business and employee lifecycle events.
type LifecycleCoordinator struct {
	seeder       *ItemSeeder
	engine       *ScoreEngine
	items        ports.ComplianceItemRepository
	employees    ports.EmployeeRepository
	requirements ports.RequirementRepository
	locker       ports.BusinessLocker
	events       ports.EventPublisher
	now          func() time.Time
}

func NewLifecycleCoordinator(
	seeder *ItemSeeder,
	engine *ScoreEngine,
	items ports.ComplianceItemRepository,
	employees ports.EmployeeRepository,
	requirements ports.RequirementRepository,
	locker ports.BusinessLocker,
	events ports.EventPublisher,
) *LifecycleCoordinator {
	if locker == nil {
		locker = NoopLocker()
	}
	if events == nil {
		events = NoopPublisher()
	}
	return &LifecycleCoordinator{
		seeder:       seeder,
		engine:       engine,
		items:        items,
		employees:    employees,
		requirements: requirements,
		locker:       locker,
		events:       events,
		now:          utcNow,
	}
}

// lock takes the business lock. When the lock backend fails the operation
// proceeds unlocked.
func (c *LifecycleCoordinator) lock(ctx context.Context, businessID string) func() {
	release, err := c.locker.Acquire(ctx, businessID)
	if err != nil {
		slog.Warn("business_lock_unavailable", "business_id", businessID, "error", err)
		return func() {}
	}
	return release
}

// BusinessCreated seeds the checklist of a new business and stores a zero score.
func (c *LifecycleCoordinator) BusinessCreated(ctx context.Context, business *domain.Business) error {
	items, err := c.seeder.SeedItems(ctx, business.ID, business.Sector)
	if err != nil {
		return err
	}
	if err := c.engine.Initialize(ctx, business); err != nil {
		return err
	}
	slog.Info("business_created", "business_id", business.ID, "sector", business.Sector, "seeded", len(items))
	return nil
}

// ChangeSector archives every active item, seeds the new sector and recomputes.
// business.Sector must already hold the new sector.
func (c *LifecycleCoordinator) ChangeSector(ctx context.Context, business *domain.Business) (*domain.ComplianceScore, error) {
	defer c.lock(ctx, business.ID)()

	archived, err := c.items.ArchiveAll(ctx, business.ID, c.now())
	if err != nil {
		return nil, fmt.Errorf("archive items: %w", err)
	}
	seeded, err := c.seeder.SeedItems(ctx, business.ID, business.Sector)
	if err != nil {
		return nil, err
	}
	slog.Info("sector_changed",
		"business_id", business.ID,
		"sector", business.Sector,
		"archived", archived,
		"seeded", len(seeded),
	)
	return c.engine.recompute(ctx, business)
}

// EnsureSeeded seeds a business that has no active items.
func (c *LifecycleCoordinator) EnsureSeeded(ctx context.Context, business *domain.Business) error {
	count, err := c.items.CountActive(ctx, business.ID)
	if err != nil {
		return fmt.Errorf("count active items: %w", err)
	}
	if count > 0 {
		return nil
	}
	defer c.lock(ctx, business.ID)()
	// Re-check under the lock so concurrent readers seed once.
	count, err = c.items.CountActive(ctx, business.ID)
	if err != nil {
		return fmt.Errorf("count active items: %w", err)
	}
	if count > 0 {
		return nil
	}
	seeded, err := c.seeder.SeedItems(ctx, business.ID, business.Sector)
	if err != nil {
		return err
	}
	slog.Info("items_lazily_seeded", "business_id", business.ID, "seeded", len(seeded))
	return nil
}

// MutateItem applies mutate to one active item, stores it and recomputes the score.
func (c *LifecycleCoordinator) MutateItem(
	ctx context.Context,
	business *domain.Business,
	itemID string,
	mutate func(*domain.ComplianceItem) (domain.Transition, error),
) (*domain.ComplianceItem, domain.Transition, error) {
	defer c.lock(ctx, business.ID)()

	item, err := c.items.GetActive(ctx, business.ID, itemID)
	if err != nil {
		return nil, domain.Transition{}, err
	}
	tr, err := mutate(item)
	if err != nil {
		return nil, domain.Transition{}, err
	}
	if err := c.items.Update(ctx, item); err != nil {
		return nil, domain.Transition{}, fmt.Errorf("update item: %w", err)
	}
	if _, err := c.engine.recompute(ctx, business); err != nil {
		return nil, domain.Transition{}, err
	}

	event := domain.ItemUpdatedEvent{
		BusinessID: business.ID,
		ItemID:     item.ID,
		ItemKey:    item.ItemKey,
		From:       tr.From,
		To:         tr.To,
		OccurredAt: c.now(),
	}
	if err := c.events.PublishItemUpdated(ctx, event); err != nil {
		slog.Warn("event_publish_failed", "event", "item_updated", "item_id", item.ID, "error", err)
	}
	return item, tr, nil
}

// EmployeeCreated seeds the sector requirements of a new employee.
func (c *LifecycleCoordinator) EmployeeCreated(ctx context.Context, employee *domain.Employee, sectorID string) ([]domain.EmployeeRequirement, error) {
	return c.seeder.SeedRequirements(ctx, employee.ID, sectorID)
}

// DeleteEmployee removes the requirements of an employee, then the employee.
func (c *LifecycleCoordinator) DeleteEmployee(ctx context.Context, businessID, employeeID string) (int, error) {
	if _, err := c.employees.GetByID(ctx, businessID, employeeID); err != nil {
		return 0, err
	}
	removed, err := c.requirements.DeleteByEmployee(ctx, employeeID)
	if err != nil {
		return 0, fmt.Errorf("delete requirements: %w", err)
	}
	if err := c.employees.Delete(ctx, businessID, employeeID); err != nil {
		return removed, fmt.Errorf("delete employee: %w", err)
	}
	slog.Info("employee_deleted", "business_id", businessID, "employee_id", employeeID, "requirements_removed", removed)
	return removed, nil
}
