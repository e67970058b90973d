package domain

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
)

// NotificationListLimit caps the notifications returned to a user.
const NotificationListLimit = 50

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

func ItemUpdatedNotification(id, userID string, item ComplianceItem, now time.Time) Notification {
	return Notification{
		ID:        id,
		UserID:    userID,
		Title:     "Compliance Item Updated",
		Message:   fmt.Sprintf("'%s' has been marked as %s.", item.Title, item.Status),
		Type:      NotificationSuccess,
		CreatedAt: now.UTC(),
	}
}

func SubscriptionActivatedNotification(id, userID string, plan Plan, now time.Time) Notification {
	return Notification{
		ID:        id,
		UserID:    userID,
		Title:     "Subscription Activated",
		Message:   fmt.Sprintf("Your %s subscription is now active.", plan.Name),
		Type:      NotificationSuccess,
		CreatedAt: now.UTC(),
	}
}
