package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

func acknowledgeN(t *testing.T, h *harness, p domain.Principal, items []domain.ComplianceItem, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := h.compliance.AcknowledgeItem(context.Background(), p, items[i].ID); err != nil {
			t.Fatalf("AcknowledgeItem() error = %v", err)
		}
	}
}

func TestScenarioFreshBusinessScoring(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")

	score := h.score(t, p)
	if score.RequiredTotal != 9 || score.CompletedTotal != 0 || score.MissingCount != 9 || score.OverdueCount != 0 {
		t.Fatalf("unexpected counts %+v", score)
	}
	if score.ScorePercent != 0 || score.StatusLabel != domain.StatusNeedsAttention {
		t.Fatalf("expected 0%% needs_attention, got %d%% %s", score.ScorePercent, score.StatusLabel)
	}
}

func TestScenarioAcknowledgeAndThresholdFlip(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	items := h.activeItems(t, p)

	acknowledgeN(t, h, p, items, 5)
	score := h.score(t, p)
	if score.CompletedTotal != 5 || score.MissingCount != 4 || score.ScorePercent != 56 || score.StatusLabel != domain.StatusNeedsAttention {
		t.Fatalf("after 5 acknowledgements: %+v", score)
	}

	acknowledgeN(t, h, p, items[5:], 1)
	score = h.score(t, p)
	if score.CompletedTotal != 6 || score.MissingCount != 3 || score.StatusLabel != domain.StatusNeedsAttention {
		t.Fatalf("after 6 acknowledgements: %+v", score)
	}

	acknowledgeN(t, h, p, items[6:], 1)
	score = h.score(t, p)
	if score.MissingCount != 2 || score.ScorePercent != 78 || score.StatusLabel != domain.StatusOnTrack {
		t.Fatalf("after 7 acknowledgements: %+v", score)
	}
}

func TestScenarioOverdueDominates(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	b := h.createBusiness(t, p, "office")
	items := h.activeItems(t, p)
	acknowledgeN(t, h, p, items, 9)
	if score := h.score(t, p); score.StatusLabel != domain.StatusOnTrack {
		t.Fatalf("expected on_track before backdating, got %s", score.StatusLabel)
	}

	item, err := h.repos.Items.GetActive(context.Background(), b.ID, items[0].ID)
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	yesterday := testNow.Add(-24 * time.Hour)
	item.NextReviewDue = &yesterday
	if err := h.repos.Items.Update(context.Background(), item); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	score := h.score(t, p)
	if score.OverdueCount != 1 || score.StatusLabel != domain.StatusOverdue {
		t.Fatalf("expected overdue label, got %+v", score)
	}
	if score.ScorePercent != 100 {
		t.Fatalf("overdue is derived; score_percent = %d, want 100", score.ScorePercent)
	}
}

func TestScenarioSectorChangePreservesHistory(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	b := h.createBusiness(t, p, "dental")
	if got := len(h.activeItems(t, p)); got != 13 {
		t.Fatalf("dental items = %d, want 13", got)
	}

	profile := domain.BusinessProfile{Name: b.Name, Industry: "office", Sector: "office", Size: b.Size, UKNation: b.UKNation}
	if _, err := h.business.Update(context.Background(), p, profile); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	active, _ := h.repos.Items.CountActive(context.Background(), b.ID)
	archived, _ := h.repos.Items.CountArchived(context.Background(), b.ID)
	if active != 9 || archived != 13 {
		t.Fatalf("active=%d archived=%d, want 9 and 13", active, archived)
	}
	stored, err := h.repos.Scores.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.RequiredTotal != 9 || stored.IndustryID != "office" {
		t.Fatalf("score not recomputed against office: %+v", stored)
	}
}

func TestScenarioReseedSameSectorKeepsKeys(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	b := h.createBusiness(t, p, "office")
	before := map[string]bool{}
	for _, it := range h.activeItems(t, p) {
		before[it.ItemKey] = true
	}

	if _, err := h.lifecycle.ChangeSector(context.Background(), b); err != nil {
		t.Fatalf("ChangeSector() error = %v", err)
	}
	after := h.activeItems(t, p)
	if len(after) != len(before) {
		t.Fatalf("active items = %d, want %d", len(after), len(before))
	}
	for _, it := range after {
		if !before[it.ItemKey] {
			t.Fatalf("unexpected key %s after reseed", it.ItemKey)
		}
		if it.Status != domain.ItemStatusMissing {
			t.Fatalf("reseeded item %s status = %s", it.ItemKey, it.Status)
		}
	}
}

func TestScenarioEmployeeRequirementClassification(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "veterinary")
	emp, err := h.employees.Create(context.Background(), p, domain.Employee{FirstName: "Ella", LastName: "Vet"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	reqs, err := h.employees.ListRequirements(context.Background(), p, emp.ID)
	if err != nil {
		t.Fatalf("ListRequirements() error = %v", err)
	}
	if len(reqs) != 8 {
		t.Fatalf("veterinary requirements = %d, want 8", len(reqs))
	}

	soon := testNow.Add(10 * 24 * time.Hour)
	expired := testNow.Add(-3 * 24 * time.Hour)
	first, err := h.employees.UpdateRequirement(context.Background(), p, emp.ID, reqs[0].ID, domain.RequirementChanges{ExpiryDate: &soon})
	if err != nil {
		t.Fatalf("UpdateRequirement() error = %v", err)
	}
	if first.Status != domain.RequirementExpiringSoon || first.DaysUntilExpiry == nil || *first.DaysUntilExpiry != 10 {
		t.Fatalf("expected expiring_soon/10, got %s/%v", first.Status, first.DaysUntilExpiry)
	}
	second, err := h.employees.UpdateRequirement(context.Background(), p, emp.ID, reqs[1].ID, domain.RequirementChanges{ExpiryDate: &expired})
	if err != nil {
		t.Fatalf("UpdateRequirement() error = %v", err)
	}
	if second.Status != domain.RequirementExpired || *second.DaysUntilExpiry != -3 {
		t.Fatalf("expected expired/-3, got %s/%v", second.Status, *second.DaysUntilExpiry)
	}

	overview, err := h.insights.EmployeeOverview(context.Background(), p)
	if err != nil {
		t.Fatalf("EmployeeOverview() error = %v", err)
	}
	if len(overview.ExpiringSoonItems) != 1 || overview.ExpiringSoonItems[0].RequirementID != reqs[0].ID {
		t.Fatalf("unexpected expiring items %+v", overview.ExpiringSoonItems)
	}
	if len(overview.OverdueItems) != 1 || overview.OverdueItems[0].DaysOverdue != 3 {
		t.Fatalf("unexpected overdue items %+v", overview.OverdueItems)
	}
}
