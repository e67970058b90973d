package domain

import (
	"sort"
	"time"
)

const (
	overviewListLimit    = 10
	upcomingReviewsLimit = 5
)

type OverdueRequirement struct {
	EmployeeName  string     `json:"employee_name"`
	EmployeeID    string     `json:"employee_id"`
	Requirement   string     `json:"requirement"`
	RequirementID string     `json:"requirement_id"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	DaysOverdue   int        `json:"days_overdue"`
}

type ExpiringRequirement struct {
	EmployeeName    string     `json:"employee_name"`
	EmployeeID      string     `json:"employee_id"`
	Requirement     string     `json:"requirement"`
	RequirementID   string     `json:"requirement_id"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	DaysUntilExpiry int        `json:"days_until_expiry"`
}

// EmployeeOverview is the business-wide requirement roll-up.
type EmployeeOverview struct {
	TotalEmployees           int                   `json:"total_employees"`
	TotalRequirements        int                   `json:"total_requirements"`
	ValidRequirements        int                   `json:"valid_requirements"`
	ExpiredRequirements      int                   `json:"expired_requirements"`
	ExpiringSoonRequirements int                   `json:"expiring_soon_requirements"`
	PendingRequirements      int                   `json:"pending_requirements"`
	OverallComplianceRate    int                   `json:"overall_compliance_rate"`
	OverdueItems             []OverdueRequirement  `json:"overdue_items"`
	ExpiringSoonItems        []ExpiringRequirement `json:"expiring_soon_items"`
}

// StaffRecord pairs an employee with its requirements.
type StaffRecord struct {
	Employee     Employee
	Requirements []EmployeeRequirement
}

// BuildEmployeeOverview classifies every requirement of the active records at now.
// Overdue items are most-overdue first, expiring items soonest first, ten of each.
func BuildEmployeeOverview(now time.Time, records []StaffRecord) EmployeeOverview {
	out := EmployeeOverview{
		OverdueItems:      []OverdueRequirement{},
		ExpiringSoonItems: []ExpiringRequirement{},
	}
	for _, rec := range records {
		if !rec.Employee.IsActive {
			continue
		}
		out.TotalEmployees++
		name := rec.Employee.FullName()
		for _, req := range rec.Requirements {
			out.TotalRequirements++
			status, days := ClassifyExpiry(now, req.ExpiryDate)
			switch status {
			case RequirementValid:
				out.ValidRequirements++
			case RequirementExpired:
				out.ExpiredRequirements++
				out.OverdueItems = append(out.OverdueItems, OverdueRequirement{
					EmployeeName:  name,
					EmployeeID:    rec.Employee.ID,
					Requirement:   req.Title,
					RequirementID: req.ID,
					ExpiryDate:    req.ExpiryDate,
					DaysOverdue:   -*days,
				})
			case RequirementExpiringSoon:
				out.ExpiringSoonRequirements++
				out.ExpiringSoonItems = append(out.ExpiringSoonItems, ExpiringRequirement{
					EmployeeName:    name,
					EmployeeID:      rec.Employee.ID,
					Requirement:     req.Title,
					RequirementID:   req.ID,
					ExpiryDate:      req.ExpiryDate,
					DaysUntilExpiry: *days,
				})
			default:
				out.PendingRequirements++
			}
		}
	}

	sort.SliceStable(out.OverdueItems, func(i, j int) bool {
		return out.OverdueItems[i].DaysOverdue > out.OverdueItems[j].DaysOverdue
	})
	sort.SliceStable(out.ExpiringSoonItems, func(i, j int) bool {
		return out.ExpiringSoonItems[i].DaysUntilExpiry < out.ExpiringSoonItems[j].DaysUntilExpiry
	})
	if len(out.OverdueItems) > overviewListLimit {
		out.OverdueItems = out.OverdueItems[:overviewListLimit]
	}
	if len(out.ExpiringSoonItems) > overviewListLimit {
		out.ExpiringSoonItems = out.ExpiringSoonItems[:overviewListLimit]
	}
	out.OverallComplianceRate = percent(out.ValidRequirements, out.TotalRequirements)
	return out
}

type UpcomingReview struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

type EmployeeStats struct {
	TotalEmployees      int `json:"total_employees"`
	ExpiredRequirements int `json:"expired_requirements"`
	ExpiringSoon        int `json:"expiring_soon"`
}

type DashboardStats struct {
	HasBusiness          bool             `json:"has_business"`
	Business             *Business        `json:"business,omitempty"`
	TotalDocuments       int              `json:"total_documents"`
	Completed            int              `json:"completed"`
	NeedsReview          int              `json:"needs_review"`
	NotStarted           int              `json:"not_started"`
	CompletionPercentage int              `json:"completion_percentage"`
	UpcomingReviews      []UpcomingReview `json:"upcoming_reviews"`
	EmployeeStats        *EmployeeStats   `json:"employee_stats"`
}

// EmptyDashboard is returned to users without a business.
func EmptyDashboard() DashboardStats {
	return DashboardStats{UpcomingReviews: []UpcomingReview{}}
}

// BuildDashboard summarises checklist progress and staff expiries at now.
// A completed item past its review date counts as needing review.
func BuildDashboard(now time.Time, business Business, items []ComplianceItem, records []StaffRecord) DashboardStats {
	now = now.UTC()
	out := DashboardStats{
		HasBusiness:     true,
		Business:        &business,
		UpcomingReviews: []UpcomingReview{},
	}
	horizon := now.Add(ReviewWarningWindow)
	for _, item := range items {
		if item.Archived {
			continue
		}
		out.TotalDocuments++
		switch {
		case item.IsReviewOverdue(now), item.Status == ItemStatusNeedsReview:
			out.NeedsReview++
		case item.Status.IsCompleted():
			out.Completed++
		case item.Status == ItemStatusMissing:
			out.NotStarted++
		}
		if due := item.NextReviewDue; due != nil && !due.Before(now) && !due.After(horizon) {
			out.UpcomingReviews = append(out.UpcomingReviews, UpcomingReview{ID: item.ID, Title: item.Title, DueDate: due.UTC()})
		}
	}
	sort.SliceStable(out.UpcomingReviews, func(i, j int) bool {
		return out.UpcomingReviews[i].DueDate.Before(out.UpcomingReviews[j].DueDate)
	})
	if len(out.UpcomingReviews) > upcomingReviewsLimit {
		out.UpcomingReviews = out.UpcomingReviews[:upcomingReviewsLimit]
	}
	out.CompletionPercentage = percent(out.Completed, out.TotalDocuments)

	overview := BuildEmployeeOverview(now, records)
	out.EmployeeStats = &EmployeeStats{
		TotalEmployees:      overview.TotalEmployees,
		ExpiredRequirements: overview.ExpiredRequirements,
		ExpiringSoon:        overview.ExpiringSoonRequirements,
	}
	return out
}

// AdminStats is the platform-wide operator summary.
type AdminStats struct {
	TotalUsers          int `json:"total_users"`
	TotalBusinesses     int `json:"total_businesses"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	TotalTransactions   int `json:"total_transactions"`
	PaidTransactions    int `json:"paid_transactions"`
}

// BusinessReportRow is one line of the operator export.
type BusinessReportRow struct {
	Business Business
	Score    *ComplianceScore
}
