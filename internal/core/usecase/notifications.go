package usecase

import (
	"context"
	"fmt"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

type NotificationUseCase struct {
	notifications ports.NotificationRepository
}

func NewNotificationUseCase(notifications ports.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{notifications: notifications}
}

// List returns the newest notifications of the caller first.
func (uc *NotificationUseCase) List(ctx context.Context, principal domain.Principal) ([]domain.Notification, error) {
	out, err := uc.notifications.ListByUser(ctx, principal.ID, domain.NotificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, principal domain.Principal, notificationID string) error {
	return uc.notifications.MarkRead(ctx, principal.ID, notificationID)
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, principal domain.Principal) (int, error) {
	n, err := uc.notifications.MarkAllRead(ctx, principal.ID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return n, nil
}
