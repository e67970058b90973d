package domain

import "time"

type StatusLabel string

const (
	StatusOnTrack        StatusLabel = "on_track"
	StatusNeedsAttention StatusLabel = "needs_attention"
	StatusOverdue        StatusLabel = "overdue"
)

// CategoryTally counts the items of one category.
type CategoryTally struct {
	Total             int `json:"total"`
	Completed         int `json:"completed"`
	RequiredTotal     int `json:"required_total"`
	RequiredCompleted int `json:"required_completed"`
}

// ComplianceScore is the cached readiness snapshot of a business.
type ComplianceScore struct {
	BusinessID       string                   `json:"business_id"`
	IndustryID       string                   `json:"industry_id"`
	ScorePercent     int                      `json:"score_percent"`
	RequiredTotal    int                      `json:"required_total"`
	CompletedTotal   int                      `json:"completed_total"`
	MissingCount     int                      `json:"missing_count"`
	OverdueCount     int                      `json:"overdue_count"`
	NeedsReviewCount int                      `json:"needs_review_count"`
	StatusLabel      StatusLabel              `json:"status_label"`
	LastCalculatedAt time.Time                `json:"last_calculated_at"`
	NextReviewDueAt  *time.Time               `json:"next_review_due_at"`
	Breakdown        map[string]CategoryTally `json:"breakdown"`
}

// ZeroScore is the snapshot stored for a business before its first recompute.
func ZeroScore(businessID, industryID string, now time.Time) ComplianceScore {
	return ComplianceScore{
		BusinessID:       businessID,
		IndustryID:       industryID,
		StatusLabel:      StatusOnTrack,
		LastCalculatedAt: now.UTC(),
		Breakdown:        map[string]CategoryTally{},
	}
}

// ComputeScore derives the readiness snapshot from the items of a business.
// Archived items are ignored.
//
// Review counters run over required items: a review date in the past is
// overdue, one within ReviewWarningWindow needs review. An item stored as
// needs_review counts once even when its date is also close.
func ComputeScore(businessID, industryID string, items []ComplianceItem, now time.Time) ComplianceScore {
	now = now.UTC()
	score := ZeroScore(businessID, industryID, now)
	warnUntil := now.Add(ReviewWarningWindow)

	for _, item := range items {
		if item.Archived {
			continue
		}
		completed := item.Status.IsCompleted()

		tally := score.Breakdown[item.Category]
		tally.Total++
		if completed {
			tally.Completed++
		}
		if item.IsRequired {
			tally.RequiredTotal++
			if completed {
				tally.RequiredCompleted++
			}
		}
		score.Breakdown[item.Category] = tally

		if completed && item.NextReviewDue != nil {
			if score.NextReviewDueAt == nil || item.NextReviewDue.Before(*score.NextReviewDueAt) {
				due := item.NextReviewDue.UTC()
				score.NextReviewDueAt = &due
			}
		}

		if !item.IsRequired {
			continue
		}
		score.RequiredTotal++
		if completed {
			score.CompletedTotal++
		}
		if item.Status == ItemStatusMissing {
			score.MissingCount++
		}

		due := item.NextReviewDue
		switch {
		case due != nil && due.Before(now):
			score.OverdueCount++
		case due != nil && !due.After(warnUntil):
			score.NeedsReviewCount++
		case item.Status == ItemStatusNeedsReview:
			score.NeedsReviewCount++
		}
	}

	score.ScorePercent = percent(score.CompletedTotal, score.RequiredTotal)
	score.StatusLabel = StatusLabelFor(score.RequiredTotal, score.MissingCount, score.OverdueCount, score.ScorePercent)
	return score
}

// StatusLabelFor applies the label rule. An empty required set is on track.
func StatusLabelFor(requiredTotal, missing, overdue, scorePercent int) StatusLabel {
	if requiredTotal == 0 {
		return StatusOnTrack
	}
	if overdue > 0 {
		return StatusOverdue
	}
	// missing > 0.3*required, in integers.
	if missing*10 > requiredTotal*3 || scorePercent < 50 {
		return StatusNeedsAttention
	}
	return StatusOnTrack
}
