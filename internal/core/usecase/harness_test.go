package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/simplycomply/compliance-api/internal/catalog"
	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
	"github.com/simplycomply/compliance-api/internal/infrastructure/repository/memory"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type storageFake struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
	putErr  error
	delErr  error
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *storageFake) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = raw
	f.types[key] = contentType
	return nil
}

func (f *storageFake) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://objects.test/" + key + "?ttl=" + ttl.String(), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type eventsFake struct {
	items  []domain.ItemUpdatedEvent
	scores []domain.ScoreRecomputedEvent
	err    error
}

func (f *eventsFake) PublishItemUpdated(_ context.Context, e domain.ItemUpdatedEvent) error {
	f.items = append(f.items, e)
	return f.err
}

func (f *eventsFake) PublishScoreRecomputed(_ context.Context, e domain.ScoreRecomputedEvent) error {
	f.scores = append(f.scores, e)
	return f.err
}

type lockerFake struct {
	acquired []string
	released int
	err      error
}

func (f *lockerFake) Acquire(_ context.Context, businessID string) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.acquired = append(f.acquired, businessID)
	return func() { f.released++ }, nil
}

type harness struct {
	repos      *memory.Repositories
	storage    *storageFake
	events     *eventsFake
	locker     *lockerFake
	seeder     *ItemSeeder
	engine     *ScoreEngine
	lifecycle  *LifecycleCoordinator
	business   *BusinessUseCase
	compliance *ComplianceUseCase
	employees  *EmployeeUseCase
	insights   *InsightsUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repos := memory.New()
	h := &harness{
		repos:   repos,
		storage: newStorageFake(),
		events:  &eventsFake{},
		locker:  &lockerFake{},
	}
	cat := catalog.Default()
	h.seeder = NewItemSeeder(cat, repos.Items, repos.Requirements, nil)
	h.engine = NewScoreEngine(repos.Businesses, repos.Items, repos.Scores, h.events, nil)
	h.lifecycle = NewLifecycleCoordinator(h.seeder, h.engine, repos.Items, repos.Employees, repos.Requirements, h.locker, h.events)
	h.business = NewBusinessUseCase(repos.Businesses, h.lifecycle)
	h.compliance = NewComplianceUseCase(repos.Businesses, repos.Items, repos.Notifications, h.storage, h.lifecycle, h.engine)
	h.employees = NewEmployeeUseCase(repos.Businesses, repos.Employees, repos.Requirements, cat, h.lifecycle)
	h.insights = NewInsightsUseCase(repos.Businesses, repos.Items, repos.Employees, repos.Requirements)
	h.setNow(testNow)
	return h
}

func (h *harness) setNow(now time.Time) {
	clock := func() time.Time { return now }
	h.seeder.now = clock
	h.engine.now = clock
	h.lifecycle.now = clock
	h.business.now = clock
	h.compliance.now = clock
	h.employees.now = clock
	h.insights.now = clock
}

func owner(id string) domain.Principal {
	return domain.Principal{ID: id, Email: id + "@example.test", Role: domain.RoleBusinessOwner}
}

func (h *harness) createBusiness(t *testing.T, p domain.Principal, sector string) *domain.Business {
	t.Helper()
	b, err := h.business.Create(context.Background(), p, domain.BusinessProfile{
		Name:     "Acme " + sector,
		Industry: sector,
		Sector:   sector,
		Size:     "micro",
		UKNation: "England",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return b
}

func (h *harness) activeItems(t *testing.T, p domain.Principal) []domain.ComplianceItem {
	t.Helper()
	items, err := h.compliance.ListItems(context.Background(), p, domain.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	return items
}

func (h *harness) score(t *testing.T, p domain.Principal) *domain.ComplianceScore {
	t.Helper()
	score, err := h.compliance.Score(context.Background(), p)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	return score
}

var _ ports.ObjectStorage = (*storageFake)(nil)

var errBoom = errors.New("boom")
