package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

func TestCreateBusinessRejectsSecondBusiness(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	_, err := h.business.Create(context.Background(), p, domain.BusinessProfile{Name: "Again", Sector: "office"})
	if !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("Create() error = %v, want conflict", err)
	}
}

func TestCreateBusinessStoresZeroScore(t *testing.T) {
	h := newHarness(t)
	b := h.createBusiness(t, owner("u1"), "office")
	score, err := h.repos.Scores.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if score.RequiredTotal != 0 || score.StatusLabel != domain.StatusOnTrack {
		t.Fatalf("expected zero snapshot, got %+v", score)
	}
	if b.SubscriptionStatus != domain.SubscriptionInactive {
		t.Fatalf("subscription = %s, want inactive", b.SubscriptionStatus)
	}
}

func TestScoreSeedsLazily(t *testing.T) {
	h := newHarness(t)
	b := &domain.Business{ID: "b-lazy", OwnerUserID: "u1", Name: "Lazy", Sector: "office", CreatedAt: testNow}
	if err := h.repos.Businesses.Create(context.Background(), b); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	score := h.score(t, owner("u1"))
	if score.RequiredTotal != 9 {
		t.Fatalf("required_total = %d, want 9 after lazy seed", score.RequiredTotal)
	}
	if n, _ := h.repos.Items.CountActive(context.Background(), b.ID); n != 9 {
		t.Fatalf("active items = %d, want 9", n)
	}
}

func TestUnknownSectorFallsBackToDefault(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "florist")
	if got := len(h.activeItems(t, p)); got != 10 {
		t.Fatalf("items = %d, want default 10", got)
	}
}

func TestUpdateItemNotifiesOnCompletion(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	items := h.activeItems(t, p)

	notes := "reviewed by manager"
	if _, err := h.compliance.UpdateItem(context.Background(), p, items[0].ID, domain.ItemUpdate{Notes: &notes}); err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}
	if got, _ := h.repos.Notifications.ListByUser(context.Background(), "u1", 50); len(got) != 0 {
		t.Fatalf("notes-only update notified: %+v", got)
	}

	ack := true
	updated, err := h.compliance.UpdateItem(context.Background(), p, items[0].ID, domain.ItemUpdate{IsAcknowledged: &ack})
	if err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}
	if updated.Status != domain.ItemStatusAcknowledged || updated.AcknowledgedAt == nil {
		t.Fatalf("unexpected item %+v", updated)
	}
	got, _ := h.repos.Notifications.ListByUser(context.Background(), "u1", 50)
	if len(got) != 1 || !strings.Contains(got[0].Message, "acknowledged") {
		t.Fatalf("expected one completion notification, got %+v", got)
	}
	if len(h.events.items) != 2 {
		t.Fatalf("item events = %d, want 2", len(h.events.items))
	}
	if h.locker.released != len(h.locker.acquired) {
		t.Fatalf("lock leaked: acquired %d released %d", len(h.locker.acquired), h.locker.released)
	}
}

func TestUpdateItemRejectsInvalid(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	items := h.activeItems(t, p)

	if _, err := h.compliance.UpdateItem(context.Background(), p, items[0].ID, domain.ItemUpdate{}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("empty update error = %v, want invalid input", err)
	}
	bogus := domain.ItemStatus("finished")
	if _, err := h.compliance.UpdateItem(context.Background(), p, items[0].ID, domain.ItemUpdate{Status: &bogus}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown status error = %v, want invalid input", err)
	}
	if _, err := h.compliance.UpdateItem(context.Background(), p, "missing-id", domain.ItemUpdate{Notes: new(string)}); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("missing item error = %v, want not found", err)
	}
	stored, _ := h.repos.Items.GetActive(context.Background(), items[0].BusinessID, items[0].ID)
	if stored.Status != domain.ItemStatusMissing {
		t.Fatalf("rejected update changed status to %s", stored.Status)
	}
}

func TestItemsAreScopedToOwner(t *testing.T) {
	h := newHarness(t)
	h.createBusiness(t, owner("u1"), "office")
	h.createBusiness(t, owner("u2"), "office")
	other := h.activeItems(t, owner("u2"))

	if _, err := h.compliance.GetItem(context.Background(), owner("u1"), other[0].ID); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("GetItem() error = %v, want not found", err)
	}
	if _, err := h.compliance.ListItems(context.Background(), owner("nobody"), domain.ItemFilter{}); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("ListItems() error = %v, want not found", err)
	}
}

func TestAttachFileUploadsAndPresigns(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	items := h.activeItems(t, p)

	upload := ports.Upload{FileName: "policy.pdf", ContentType: "application/pdf", Size: 4, Body: strings.NewReader("%PDF")}
	item, err := h.compliance.AttachFile(context.Background(), p, items[1].ID, upload)
	if err != nil {
		t.Fatalf("AttachFile() error = %v", err)
	}
	if item.Status != domain.ItemStatusUploaded || item.FileURL == nil || !strings.HasPrefix(*item.FileURL, domain.PrivateDocumentPrefix) {
		t.Fatalf("unexpected item %+v", item)
	}
	if !strings.HasSuffix(*item.FileURL, ".pdf") || *item.FileName != "policy.pdf" {
		t.Fatalf("unexpected file fields %s %s", *item.FileURL, *item.FileName)
	}
	if string(h.storage.objects[*item.FileURL]) != "%PDF" {
		t.Fatalf("object not stored")
	}

	url, err := h.compliance.FileDownloadURL(context.Background(), p, item.ID)
	if err != nil {
		t.Fatalf("FileDownloadURL() error = %v", err)
	}
	if !strings.Contains(url, *item.FileURL) || !strings.Contains(url, "ttl=5m0s") {
		t.Fatalf("unexpected url %s", url)
	}
}

func TestAttachFileRejectsUnsupportedType(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	items := h.activeItems(t, p)

	upload := ports.Upload{FileName: "run.exe", ContentType: "application/octet-stream", Size: 2, Body: strings.NewReader("MZ")}
	if _, err := h.compliance.AttachFile(context.Background(), p, items[0].ID, upload); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("AttachFile() error = %v, want invalid input", err)
	}
	if len(h.storage.objects) != 0 {
		t.Fatalf("rejected upload reached storage")
	}

	h.storage.putErr = errBoom
	upload = ports.Upload{FileName: "a.txt", ContentType: "text/plain", Size: 1, Body: strings.NewReader("a")}
	if _, err := h.compliance.AttachFile(context.Background(), p, items[0].ID, upload); !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("AttachFile() error = %v, want upstream", err)
	}
}

func TestFileDownloadWithoutFile(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	items := h.activeItems(t, p)
	if _, err := h.compliance.FileDownloadURL(context.Background(), p, items[0].ID); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("FileDownloadURL() error = %v, want not found", err)
	}
}

func TestCategoriesAreDistinctAndSorted(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	cats, err := h.compliance.Categories(context.Background(), p)
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1] >= cats[i] {
			t.Fatalf("categories not sorted/distinct: %v", cats)
		}
	}
	if len(cats) == 0 {
		t.Fatalf("expected categories")
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	b := h.createBusiness(t, p, "office")
	acknowledgeN(t, h, p, h.activeItems(t, p), 3)

	first, err := h.engine.Recompute(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	second, err := h.engine.Recompute(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if first.ScorePercent != second.ScorePercent || first.StatusLabel != second.StatusLabel ||
		first.NeedsReviewCount != second.NeedsReviewCount || len(first.Breakdown) != len(second.Breakdown) {
		t.Fatalf("recompute not idempotent: %+v vs %+v", first, second)
	}
}

func TestMutationProceedsWhenLockUnavailable(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	items := h.activeItems(t, p)
	h.locker.err = errBoom

	if _, err := h.compliance.AcknowledgeItem(context.Background(), p, items[0].ID); err != nil {
		t.Fatalf("AcknowledgeItem() error = %v", err)
	}
}

func TestReviewWindowCountsNeedsReview(t *testing.T) {
	h := newHarness(t)
	p := owner("u1")
	h.createBusiness(t, p, "office")
	acknowledgeN(t, h, p, h.activeItems(t, p), 9)

	// Move the clock to 20 days before the review falls due.
	h.setNow(testNow.Add(domain.ReviewInterval - 20*24*time.Hour))
	score := h.score(t, p)
	if score.NeedsReviewCount != 9 || score.OverdueCount != 0 || score.StatusLabel != domain.StatusOnTrack {
		t.Fatalf("unexpected score %+v", score)
	}

	h.setNow(testNow.Add(domain.ReviewInterval + time.Hour))
	score = h.score(t, p)
	if score.OverdueCount != 9 || score.StatusLabel != domain.StatusOverdue {
		t.Fatalf("unexpected score %+v", score)
	}
}
