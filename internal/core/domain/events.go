package domain

import "time"

type ItemUpdatedEvent struct {
	BusinessID string     `json:"business_id"`
	ItemID     string     `json:"item_id"`
	ItemKey    string     `json:"item_key"`
	From       ItemStatus `json:"from"`
	To         ItemStatus `json:"to"`
	OccurredAt time.Time  `json:"occurred_at"`
}

type ScoreRecomputedEvent struct {
	BusinessID   string      `json:"business_id"`
	ScorePercent int         `json:"score_percent"`
	StatusLabel  StatusLabel `json:"status_label"`
	OccurredAt   time.Time   `json:"occurred_at"`
}
