package domain

import (
	"strings"
	"time"
)

type ItemType string

const (
	ItemTypePolicy         ItemType = "policy"
	ItemTypeProcedure      ItemType = "procedure"
	ItemTypeRiskAssessment ItemType = "risk_assessment"
	ItemTypeAudit          ItemType = "audit"
	ItemTypePoster         ItemType = "poster"
	ItemTypeTemplate       ItemType = "template"
	ItemTypeOperational    ItemType = "operational"
)

// ItemTypeInfo is the display form of an ItemType.
type ItemTypeInfo struct {
	ID   ItemType `json:"id"`
	Name string   `json:"name"`
}

var itemTypes = []ItemTypeInfo{
	{ID: ItemTypePolicy, Name: "Policy"},
	{ID: ItemTypeProcedure, Name: "Procedure"},
	{ID: ItemTypeRiskAssessment, Name: "Risk Assessment"},
	{ID: ItemTypeAudit, Name: "Audit / Check"},
	{ID: ItemTypePoster, Name: "Poster / Notice"},
	{ID: ItemTypeTemplate, Name: "Template / Form"},
	{ID: ItemTypeOperational, Name: "Operational Requirement"},
}

func ItemTypes() []ItemTypeInfo {
	out := make([]ItemTypeInfo, len(itemTypes))
	copy(out, itemTypes)
	return out
}

func (t ItemType) Valid() bool {
	for _, it := range itemTypes {
		if it.ID == t {
			return true
		}
	}
	return false
}

type ItemStatus string

const (
	ItemStatusMissing      ItemStatus = "missing"
	ItemStatusDraft        ItemStatus = "draft"
	ItemStatusUploaded     ItemStatus = "uploaded"
	ItemStatusAcknowledged ItemStatus = "acknowledged"
	ItemStatusApproved     ItemStatus = "approved"
	ItemStatusNeedsReview  ItemStatus = "needs_review"
	ItemStatusOverdue      ItemStatus = "overdue"
)

// IsCompleted reports whether the status counts toward the readiness score.
func (s ItemStatus) IsCompleted() bool {
	switch s {
	case ItemStatusUploaded, ItemStatusAcknowledged, ItemStatusApproved:
		return true
	default:
		return false
	}
}

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusMissing, ItemStatusDraft, ItemStatusUploaded, ItemStatusAcknowledged,
		ItemStatusApproved, ItemStatusNeedsReview, ItemStatusOverdue:
		return true
	default:
		return false
	}
}

// ParseItemStatus accepts any known status name, case-insensitively.
func ParseItemStatus(raw string) (ItemStatus, error) {
	s := ItemStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", NewError(ErrInvalidInput, "parse item status", "unknown status "+raw)
	}
	return s, nil
}

const (
	// ReviewInterval is the period between reviews of a completed item.
	ReviewInterval = 365 * 24 * time.Hour
	// ReviewWarningWindow marks a review as needing attention.
	ReviewWarningWindow = 30 * 24 * time.Hour
	InitialItemVersion  = "1.0"
)

// ComplianceItem is one sector artifact materialized for a business.
type ComplianceItem struct {
	ID                 string     `json:"id"`
	BusinessID         string     `json:"business_id"`
	IndustryID         string     `json:"industry_id"`
	ItemKey            string     `json:"item_key"`
	ItemType           ItemType   `json:"item_type"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Category           string     `json:"category"`
	IsRequired         bool       `json:"is_required"`
	Status             ItemStatus `json:"status"`
	IsAcknowledged     bool       `json:"is_acknowledged"`
	AcknowledgedAt     *time.Time `json:"acknowledged_at"`
	IsCustomised       bool       `json:"is_customised"`
	CustomContent      *string    `json:"custom_content"`
	FileURL            *string    `json:"file_url"`
	FileName           *string    `json:"file_name"`
	Version            string     `json:"version"`
	LastReviewed       *time.Time `json:"last_reviewed"`
	NextReviewDue      *time.Time `json:"next_review_due"`
	Notes              *string    `json:"notes"`
	ContributesToScore bool       `json:"contributes_to_score"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
	Archived           bool       `json:"archived"`
	ArchivedAt         *time.Time `json:"archived_at,omitempty"`
}

// IsReviewOverdue reports a completed item whose review date has passed.
func (i ComplianceItem) IsReviewOverdue(now time.Time) bool {
	return i.Status.IsCompleted() && i.NextReviewDue != nil && i.NextReviewDue.Before(now)
}

// ItemFilter narrows item listings. Zero fields match everything.
type ItemFilter struct {
	Category string
	ItemType ItemType
	Status   ItemStatus
}

func (f ItemFilter) Matches(item ComplianceItem) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.ItemType != "" && item.ItemType != f.ItemType {
		return false
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	return true
}
