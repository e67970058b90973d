package memory

import (
	"context"
	"testing"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

func TestItemStoreArchiveAllowsReseed(t *testing.T) {
	ctx := context.Background()
	store := NewItemStore()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	items := []domain.ComplianceItem{
		{ID: "i1", BusinessID: "b1", ItemKey: "fire_risk", Category: "Fire Safety", Status: domain.ItemStatusMissing},
		{ID: "i2", BusinessID: "b1", ItemKey: "gdpr", Category: "Data Protection", Status: domain.ItemStatusMissing},
	}
	if err := store.InsertMany(ctx, items); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}
	if err := store.InsertMany(ctx, items[:1]); !domain.IsKind(err, domain.ErrConflict) {
		t.Fatalf("InsertMany() error = %v, want conflict", err)
	}

	n, err := store.ArchiveAll(ctx, "b1", now)
	if err != nil || n != 2 {
		t.Fatalf("ArchiveAll() = %d, %v", n, err)
	}
	if _, err := store.GetActive(ctx, "b1", "i1"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("GetActive() error = %v, want not found", err)
	}
	reseed := []domain.ComplianceItem{{ID: "i3", BusinessID: "b1", ItemKey: "fire_risk", Category: "Fire Safety"}}
	if err := store.InsertMany(ctx, reseed); err != nil {
		t.Fatalf("InsertMany() after archive error = %v", err)
	}
	active, _ := store.CountActive(ctx, "b1")
	archived, _ := store.CountArchived(ctx, "b1")
	if active != 1 || archived != 2 {
		t.Fatalf("counts active=%d archived=%d", active, archived)
	}

	listed, _ := store.ListActive(ctx, "b1", domain.ItemFilter{Category: "Data Protection"})
	if len(listed) != 0 {
		t.Fatalf("ListActive() returned archived items: %+v", listed)
	}
}

func TestItemStoreScopesByBusiness(t *testing.T) {
	ctx := context.Background()
	store := NewItemStore()
	if err := store.InsertMany(ctx, []domain.ComplianceItem{{ID: "i1", BusinessID: "b1", ItemKey: "k"}}); err != nil {
		t.Fatalf("InsertMany() error = %v", err)
	}
	if _, err := store.GetActive(ctx, "b2", "i1"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("GetActive() across tenants error = %v, want not found", err)
	}
	if err := store.Update(ctx, &domain.ComplianceItem{ID: "i1", BusinessID: "b2"}); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("Update() across tenants error = %v, want not found", err)
	}
}

func TestTransactionMarkPaidOnce(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore()
	if err := store.Create(ctx, &domain.PaymentTransaction{ID: "t1", SessionID: "cs_1", PaymentStatus: domain.PaymentPending}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	now := time.Now().UTC()
	first, err := store.MarkPaid(ctx, "cs_1", now)
	if err != nil || !first {
		t.Fatalf("MarkPaid() = %v, %v, want true", first, err)
	}
	second, err := store.MarkPaid(ctx, "cs_1", now)
	if err != nil || second {
		t.Fatalf("MarkPaid() second = %v, %v, want false", second, err)
	}
	if _, err := store.MarkPaid(ctx, "cs_missing", now); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("MarkPaid() error = %v, want not found", err)
	}
}

func TestNotificationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewNotificationStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"n1", "n2", "n3"} {
		_ = store.Create(ctx, &domain.Notification{ID: id, UserID: "u1", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	_ = store.Create(ctx, &domain.Notification{ID: "other", UserID: "u2", CreatedAt: base})

	got, _ := store.ListByUser(ctx, "u1", 2)
	if len(got) != 2 || got[0].ID != "n3" || got[1].ID != "n2" {
		t.Fatalf("ListByUser() = %+v", got)
	}
	if err := store.MarkRead(ctx, "u2", "n1"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("MarkRead() for another user error = %v, want not found", err)
	}
	n, _ := store.MarkAllRead(ctx, "u1")
	if n != 3 {
		t.Fatalf("MarkAllRead() = %d, want 3", n)
	}
}
