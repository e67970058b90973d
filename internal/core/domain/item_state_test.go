package domain

import (
	"testing"
	"time"
)

func newMissingItem() ComplianceItem {
	seeded := testNow.Add(-48 * time.Hour)
	due := seeded.Add(ReviewInterval)
	return ComplianceItem{
		ID:                 "item-1",
		BusinessID:         "biz-1",
		ItemKey:            "health_safety_policy",
		Title:              "Health & Safety Policy",
		Category:           "Health & Safety",
		IsRequired:         true,
		ContributesToScore: true,
		Status:             ItemStatusMissing,
		Version:            InitialItemVersion,
		NextReviewDue:      &due,
		CreatedAt:          seeded,
	}
}

func boolRef(v bool) *bool { return &v }
func strRef(v string) *string { return &v }
func statusRef(v ItemStatus) *ItemStatus { return &v }

func assertReviewedAt(t *testing.T, item ComplianceItem, at time.Time) {
	t.Helper()
	if item.LastReviewed == nil || !item.LastReviewed.Equal(at) {
		t.Fatalf("expected last_reviewed %s, got %v", at, item.LastReviewed)
	}
	if item.NextReviewDue == nil || !item.NextReviewDue.Equal(at.Add(ReviewInterval)) {
		t.Fatalf("expected next_review_due %s, got %v", at.Add(ReviewInterval), item.NextReviewDue)
	}
}

func TestAcknowledgeMissingItem(t *testing.T) {
	item := newMissingItem()
	tr, err := ApplyItemUpdate(&item, ItemUpdate{IsAcknowledged: boolRef(true)}, testNow)
	if err != nil {
		t.Fatalf("ApplyItemUpdate() error = %v", err)
	}
	if item.Status != ItemStatusAcknowledged {
		t.Fatalf("expected acknowledged, got %s", item.Status)
	}
	if !item.IsAcknowledged || item.AcknowledgedAt == nil {
		t.Fatalf("expected acknowledged_at to be set")
	}
	assertReviewedAt(t, item, testNow)
	if !tr.Completed() || tr.From != ItemStatusMissing {
		t.Fatalf("unexpected transition %+v", tr)
	}
	if item.UpdatedAt == nil || !item.UpdatedAt.Equal(testNow) {
		t.Fatalf("expected updated_at to be set")
	}
}

func TestAcknowledgeDraftKeepsStatusButSetsTimestamp(t *testing.T) {
	item := newMissingItem()
	item.Status = ItemStatusDraft
	tr, err := ApplyItemUpdate(&item, ItemUpdate{IsAcknowledged: boolRef(true)}, testNow)
	if err != nil {
		t.Fatalf("ApplyItemUpdate() error = %v", err)
	}
	if item.Status != ItemStatusDraft {
		t.Fatalf("expected draft to remain, got %s", item.Status)
	}
	if item.AcknowledgedAt == nil {
		t.Fatalf("is_acknowledged implies acknowledged_at")
	}
	if tr.StatusSet {
		t.Fatalf("status was not assigned by this update")
	}
}

func TestCustomContentMovesMissingToDraft(t *testing.T) {
	item := newMissingItem()
	tr, err := ApplyItemUpdate(&item, ItemUpdate{CustomContent: strRef("our policy")}, testNow)
	if err != nil {
		t.Fatalf("ApplyItemUpdate() error = %v", err)
	}
	if item.Status != ItemStatusDraft || !item.IsCustomised {
		t.Fatalf("expected customised draft, got %s customised=%v", item.Status, item.IsCustomised)
	}
	if item.CustomContent == nil || *item.CustomContent != "our policy" {
		t.Fatalf("expected custom content stored")
	}
	if tr.Completed() {
		t.Fatalf("draft must not count as completed")
	}
	if item.LastReviewed != nil {
		t.Fatalf("draft must not mark the item reviewed")
	}
}

func TestCustomContentOnAcknowledgedItemKeepsStatus(t *testing.T) {
	item := newMissingItem()
	_, err := ApplyItemUpdate(&item, ItemUpdate{
		IsAcknowledged: boolRef(true),
		CustomContent:  strRef("edits"),
	}, testNow)
	if err != nil {
		t.Fatalf("ApplyItemUpdate() error = %v", err)
	}
	if item.Status != ItemStatusAcknowledged {
		t.Fatalf("expected acknowledged to survive the customise rule, got %s", item.Status)
	}
}

func TestFileUploadCompletesItem(t *testing.T) {
	item := newMissingItem()
	item.Status = ItemStatusDraft
	tr, err := ApplyItemUpdate(&item, ItemUpdate{
		FileURL:  strRef("private-documents/abc.pdf"),
		FileName: strRef("policy.pdf"),
	}, testNow)
	if err != nil {
		t.Fatalf("ApplyItemUpdate() error = %v", err)
	}
	if item.Status != ItemStatusUploaded {
		t.Fatalf("expected uploaded, got %s", item.Status)
	}
	if item.FileName == nil || *item.FileName != "policy.pdf" {
		t.Fatalf("expected file name stored")
	}
	assertReviewedAt(t, item, testNow)
	if !tr.Completed() {
		t.Fatalf("expected completed transition")
	}
}

func TestExplicitStatusOverridesEarlierRules(t *testing.T) {
	item := newMissingItem()
	tr, err := ApplyItemUpdate(&item, ItemUpdate{
		FileURL: strRef("private-documents/abc.pdf"),
		Status:  statusRef(ItemStatusNeedsReview),
	}, testNow)
	if err != nil {
		t.Fatalf("ApplyItemUpdate() error = %v", err)
	}
	if item.Status != ItemStatusNeedsReview {
		t.Fatalf("expected needs_review, got %s", item.Status)
	}
	if tr.Completed() {
		t.Fatalf("needs_review is not completed")
	}
}

func TestExplicitApprovedRefreshesReviewDates(t *testing.T) {
	item := newMissingItem()
	later := testNow.Add(time.Hour)
	if _, err := ApplyItemUpdate(&item, ItemUpdate{Status: statusRef(ItemStatusApproved)}, later); err != nil {
		t.Fatalf("ApplyItemUpdate() error = %v", err)
	}
	assertReviewedAt(t, item, later)
}

func TestRejectsUnknownAndDerivedStatus(t *testing.T) {
	for _, status := range []ItemStatus{"done", ItemStatusOverdue} {
		item := newMissingItem()
		before := item
		_, err := ApplyItemUpdate(&item, ItemUpdate{Status: statusRef(status), Notes: strRef("x")}, testNow)
		if !IsKind(err, ErrInvalidInput) {
			t.Fatalf("status %q: expected ErrInvalidInput, got %v", status, err)
		}
		if item.Notes != nil || item.UpdatedAt != before.UpdatedAt {
			t.Fatalf("status %q: item must be untouched on error", status)
		}
	}
}

func TestNotesOnlyUpdateDoesNotSetStatus(t *testing.T) {
	item := newMissingItem()
	item.Status = ItemStatusApproved
	tr, err := ApplyItemUpdate(&item, ItemUpdate{Notes: strRef("checked")}, testNow)
	if err != nil {
		t.Fatalf("ApplyItemUpdate() error = %v", err)
	}
	if tr.StatusSet || tr.Completed() {
		t.Fatalf("notes-only update must not report a status change")
	}
	if item.Notes == nil || *item.Notes != "checked" {
		t.Fatalf("expected notes stored")
	}
}

func TestContributesToScoreIsEditableButRequiredIsNot(t *testing.T) {
	item := newMissingItem()
	if _, err := ApplyItemUpdate(&item, ItemUpdate{ContributesToScore: boolRef(false)}, testNow); err != nil {
		t.Fatalf("ApplyItemUpdate() error = %v", err)
	}
	if item.ContributesToScore || !item.IsRequired {
		t.Fatalf("expected contributes_to_score=false with is_required kept")
	}
}

func TestAcknowledgeItemForcesState(t *testing.T) {
	item := newMissingItem()
	item.Status = ItemStatusNeedsReview
	tr := AcknowledgeItem(&item, testNow)
	if item.Status != ItemStatusAcknowledged || !item.IsAcknowledged || item.AcknowledgedAt == nil {
		t.Fatalf("expected forced acknowledgement, got %+v", item)
	}
	assertReviewedAt(t, item, testNow)
	if tr.From != ItemStatusNeedsReview || !tr.Completed() {
		t.Fatalf("unexpected transition %+v", tr)
	}
}

func TestParseItemStatus(t *testing.T) {
	got, err := ParseItemStatus(" Approved ")
	if err != nil || got != ItemStatusApproved {
		t.Fatalf("expected approved, got %q %v", got, err)
	}
	if _, err := ParseItemStatus("finished"); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
