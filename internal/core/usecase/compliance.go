package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

// ComplianceUseCase serves the checklist of the caller's business.
type ComplianceUseCase struct {
	businesses    ports.BusinessRepository
	items         ports.ComplianceItemRepository
	notifications ports.NotificationRepository
	storage       ports.ObjectStorage
	lifecycle     *LifecycleCoordinator
	engine        *ScoreEngine
	now           func() time.Time
}

func NewComplianceUseCase(
	businesses ports.BusinessRepository,
	items ports.ComplianceItemRepository,
	notifications ports.NotificationRepository,
	storage ports.ObjectStorage,
	lifecycle *LifecycleCoordinator,
	engine *ScoreEngine,
) *ComplianceUseCase {
	return &ComplianceUseCase{
		businesses:    businesses,
		items:         items,
		notifications: notifications,
		storage:       storage,
		lifecycle:     lifecycle,
		engine:        engine,
		now:           utcNow,
	}
}

func (uc *ComplianceUseCase) ListItems(ctx context.Context, principal domain.Principal, filter domain.ItemFilter) ([]domain.ComplianceItem, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	if err := uc.lifecycle.EnsureSeeded(ctx, business); err != nil {
		return nil, err
	}
	items, err := uc.items.ListActive(ctx, business.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (uc *ComplianceUseCase) GetItem(ctx context.Context, principal domain.Principal, itemID string) (*domain.ComplianceItem, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	return uc.items.GetActive(ctx, business.ID, itemID)
}

func (uc *ComplianceUseCase) UpdateItem(ctx context.Context, principal domain.Principal, itemID string, update domain.ItemUpdate) (*domain.ComplianceItem, error) {
	if update.Empty() {
		return nil, domain.NewError(domain.ErrInvalidInput, "update item", "no fields to update")
	}
	return uc.mutate(ctx, principal, itemID, func(item *domain.ComplianceItem) (domain.Transition, error) {
		return domain.ApplyItemUpdate(item, update, uc.now())
	})
}

func (uc *ComplianceUseCase) AcknowledgeItem(ctx context.Context, principal domain.Principal, itemID string) (*domain.ComplianceItem, error) {
	return uc.mutate(ctx, principal, itemID, func(item *domain.ComplianceItem) (domain.Transition, error) {
		return domain.AcknowledgeItem(item, uc.now()), nil
	})
}

// AttachFile stores the upload privately and runs the upload path with the
// object key as file_url.
func (uc *ComplianceUseCase) AttachFile(ctx context.Context, principal domain.Principal, itemID string, upload ports.Upload) (*domain.ComplianceItem, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	if _, err := uc.items.GetActive(ctx, business.ID, itemID); err != nil {
		return nil, err
	}
	ext, err := domain.EvidenceUploads.Check(upload.FileName, upload.ContentType, upload.Size)
	if err != nil {
		return nil, err
	}
	key := domain.ObjectKey(uuid.NewString(), ext)
	if err := uc.storage.Put(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, domain.WrapError(domain.ErrUpstream, "store evidence", err)
	}

	fileName := upload.FileName
	update := domain.ItemUpdate{FileURL: &key, FileName: &fileName}
	return uc.mutateBusiness(ctx, business, itemID, func(item *domain.ComplianceItem) (domain.Transition, error) {
		return domain.ApplyItemUpdate(item, update, uc.now())
	})
}

// FileDownloadURL presigns the attached object. Non-private URLs are returned as stored.
func (uc *ComplianceUseCase) FileDownloadURL(ctx context.Context, principal domain.Principal, itemID string) (string, error) {
	item, err := uc.GetItem(ctx, principal, itemID)
	if err != nil {
		return "", err
	}
	if item.FileURL == nil || *item.FileURL == "" {
		return "", domain.NewError(domain.ErrNotFound, "item file", "no file attached")
	}
	if !strings.HasPrefix(*item.FileURL, domain.PrivateDocumentPrefix) {
		return *item.FileURL, nil
	}
	url, err := uc.storage.PresignGet(ctx, *item.FileURL, domain.DownloadURLTTL)
	if err != nil {
		return "", domain.WrapError(domain.ErrUpstream, "presign item file", err)
	}
	return url, nil
}

// Score seeds an empty checklist and returns a fresh snapshot.
func (uc *ComplianceUseCase) Score(ctx context.Context, principal domain.Principal) (*domain.ComplianceScore, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	if err := uc.lifecycle.EnsureSeeded(ctx, business); err != nil {
		return nil, err
	}
	return uc.engine.recompute(ctx, business)
}

func (uc *ComplianceUseCase) Categories(ctx context.Context, principal domain.Principal) ([]string, error) {
	items, err := uc.ListItems(ctx, principal, domain.ItemFilter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.Category]; ok || item.Category == "" {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (uc *ComplianceUseCase) mutate(
	ctx context.Context,
	principal domain.Principal,
	itemID string,
	fn func(*domain.ComplianceItem) (domain.Transition, error),
) (*domain.ComplianceItem, error) {
	business, err := ownedBusiness(ctx, uc.businesses, principal)
	if err != nil {
		return nil, err
	}
	return uc.mutateBusiness(ctx, business, itemID, fn)
}

func (uc *ComplianceUseCase) mutateBusiness(
	ctx context.Context,
	business *domain.Business,
	itemID string,
	fn func(*domain.ComplianceItem) (domain.Transition, error),
) (*domain.ComplianceItem, error) {
	item, tr, err := uc.lifecycle.MutateItem(ctx, business, itemID, fn)
	if err != nil {
		return nil, err
	}
	if tr.Completed() {
		n := domain.ItemUpdatedNotification(uuid.NewString(), business.OwnerUserID, *item, uc.now())
		if err := uc.notifications.Create(ctx, &n); err != nil {
			slog.Warn("notification_failed", "business_id", business.ID, "item_id", item.ID, "error", err)
		}
	}
	return item, nil
}
