package domain

import (
	"strings"
	"time"
)

// ItemUpdate is a partial update of a ComplianceItem. Nil fields are untouched.
type ItemUpdate struct {
	Status             *ItemStatus
	IsAcknowledged     *bool
	IsCustomised       *bool
	CustomContent      *string
	FileURL            *string
	FileName           *string
	Notes              *string
	ContributesToScore *bool
}

// Empty reports whether the update carries no field at all.
func (u ItemUpdate) Empty() bool {
	return u.Status == nil && u.IsAcknowledged == nil && u.IsCustomised == nil &&
		u.CustomContent == nil && u.FileURL == nil && u.FileName == nil &&
		u.Notes == nil && u.ContributesToScore == nil
}

// Transition describes the effect of applying an ItemUpdate.
type Transition struct {
	From ItemStatus
	To   ItemStatus
	// StatusSet is true when one of the update paths assigned the status.
	StatusSet bool
}

// Completed reports a status assignment that landed in a completed state.
func (t Transition) Completed() bool {
	return t.StatusSet && t.To.IsCompleted()
}

func (u ItemUpdate) validate() error {
	const op = "apply item update"
	if u.Status != nil {
		if !u.Status.Valid() {
			return NewError(ErrInvalidInput, op, "unknown status "+string(*u.Status))
		}
		if *u.Status == ItemStatusOverdue {
			return NewError(ErrInvalidInput, op, "overdue is derived and cannot be set")
		}
	}
	if u.FileURL != nil && strings.TrimSpace(*u.FileURL) == "" {
		return NewError(ErrInvalidInput, op, "file_url must not be empty")
	}
	return nil
}

// ApplyItemUpdate runs the item state machine over item in place.
// Rules are evaluated in order against the running status:
// acknowledge, customise, upload, explicit status. item is untouched on error.
func ApplyItemUpdate(item *ComplianceItem, u ItemUpdate, now time.Time) (Transition, error) {
	if err := u.validate(); err != nil {
		return Transition{}, err
	}
	now = now.UTC()
	tr := Transition{From: item.Status}

	if u.IsAcknowledged != nil {
		item.IsAcknowledged = *u.IsAcknowledged
		if *u.IsAcknowledged {
			item.AcknowledgedAt = timePtr(now)
			if item.Status == ItemStatusMissing {
				item.Status = ItemStatusAcknowledged
				markReviewed(item, now)
				tr.StatusSet = true
			}
		}
	}

	if u.IsCustomised != nil {
		item.IsCustomised = *u.IsCustomised
	}
	if u.CustomContent != nil {
		content := *u.CustomContent
		item.CustomContent = &content
		item.IsCustomised = true
		if item.Status == ItemStatusMissing || item.Status == ItemStatusDraft {
			item.Status = ItemStatusDraft
			tr.StatusSet = true
		}
	}

	if u.FileURL != nil {
		fileURL := strings.TrimSpace(*u.FileURL)
		item.FileURL = &fileURL
		if u.FileName != nil {
			name := *u.FileName
			item.FileName = &name
		} else {
			item.FileName = nil
		}
		item.Status = ItemStatusUploaded
		markReviewed(item, now)
		tr.StatusSet = true
	}

	if u.Status != nil {
		item.Status = *u.Status
		if item.Status.IsCompleted() {
			markReviewed(item, now)
		}
		tr.StatusSet = true
	}

	if u.Notes != nil {
		notes := *u.Notes
		item.Notes = &notes
	}
	if u.ContributesToScore != nil {
		item.ContributesToScore = *u.ContributesToScore
	}

	item.UpdatedAt = timePtr(now)
	tr.To = item.Status
	return tr, nil
}

// AcknowledgeItem forces item into the acknowledged state regardless of its
// current status and refreshes the review dates.
func AcknowledgeItem(item *ComplianceItem, now time.Time) Transition {
	now = now.UTC()
	tr := Transition{From: item.Status, To: ItemStatusAcknowledged, StatusSet: true}
	item.IsAcknowledged = true
	item.AcknowledgedAt = timePtr(now)
	item.Status = ItemStatusAcknowledged
	markReviewed(item, now)
	item.UpdatedAt = timePtr(now)
	return tr
}

func markReviewed(item *ComplianceItem, now time.Time) {
	item.LastReviewed = timePtr(now)
	item.NextReviewDue = timePtr(now.Add(ReviewInterval))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
