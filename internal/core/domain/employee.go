package domain

import (
	"math"
	"time"
)

type Employee struct {
	ID               string     `json:"id"`
	BusinessID       string     `json:"business_id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email,omitempty"`
	JobTitle         string     `json:"job_title,omitempty"`
	Department       string     `json:"department,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	EmergencyContact string     `json:"emergency_contact,omitempty"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

// EmployeeChanges is a partial employee update. Nil fields are untouched.
type EmployeeChanges struct {
	FirstName        *string
	LastName         *string
	Email            *string
	JobTitle         *string
	Department       *string
	StartDate        *time.Time
	Phone            *string
	EmergencyContact *string
	IsActive         *bool
}

func (e *Employee) Apply(c EmployeeChanges) {
	setString(&e.FirstName, c.FirstName)
	setString(&e.LastName, c.LastName)
	setString(&e.Email, c.Email)
	setString(&e.JobTitle, c.JobTitle)
	setString(&e.Department, c.Department)
	setString(&e.Phone, c.Phone)
	setString(&e.EmergencyContact, c.EmergencyContact)
	if c.StartDate != nil {
		start := c.StartDate.UTC()
		e.StartDate = &start
	}
	if c.IsActive != nil {
		e.IsActive = *c.IsActive
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// EmployeeRequirement is a credential or training record held by an employee.
// Status is a cache; presentation paths re-derive it from ExpiryDate.
type EmployeeRequirement struct {
	ID              string            `json:"id"`
	EmployeeID      string            `json:"employee_id"`
	RequirementType string            `json:"requirement_type"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	IssueDate       *time.Time        `json:"issue_date"`
	ExpiryDate      *time.Time        `json:"expiry_date"`
	ReferenceNumber string            `json:"reference_number,omitempty"`
	Status          RequirementStatus `json:"status"`
	IsMandatory     bool              `json:"is_mandatory"`
	RenewalMonths   *int              `json:"renewal_months"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`
}

// RequirementView is a requirement with its status derived at read time.
type RequirementView struct {
	EmployeeRequirement
	DaysUntilExpiry *int `json:"days_until_expiry"`
}

func (r EmployeeRequirement) Derive(now time.Time) RequirementView {
	status, days := ClassifyExpiry(now, r.ExpiryDate)
	r.Status = status
	return RequirementView{EmployeeRequirement: r, DaysUntilExpiry: days}
}

// RequirementChanges is a partial requirement update.
type RequirementChanges struct {
	Title           *string
	Description     *string
	IssueDate       *time.Time
	ExpiryDate      *time.Time
	ReferenceNumber *string
}

// Apply updates r and refreshes the cached status when the expiry moved.
func (r *EmployeeRequirement) Apply(c RequirementChanges, now time.Time) {
	setString(&r.Title, c.Title)
	setString(&r.Description, c.Description)
	setString(&r.ReferenceNumber, c.ReferenceNumber)
	if c.IssueDate != nil {
		issued := c.IssueDate.UTC()
		r.IssueDate = &issued
	}
	if c.ExpiryDate != nil {
		expiry := c.ExpiryDate.UTC()
		r.ExpiryDate = &expiry
		r.Status, _ = ClassifyExpiry(now, r.ExpiryDate)
	}
	r.UpdatedAt = timePtr(now.UTC())
}

// ComplianceSummary rolls up derived requirement statuses for one employee.
type ComplianceSummary struct {
	Total          int `json:"total"`
	Valid          int `json:"valid"`
	Expired        int `json:"expired"`
	ExpiringSoon   int `json:"expiring_soon"`
	Pending        int `json:"pending"`
	ComplianceRate int `json:"compliance_rate"`
}

func SummarizeRequirements(now time.Time, reqs []EmployeeRequirement) ComplianceSummary {
	var s ComplianceSummary
	for _, r := range reqs {
		s.Total++
		status, _ := ClassifyExpiry(now, r.ExpiryDate)
		switch status {
		case RequirementValid:
			s.Valid++
		case RequirementExpired:
			s.Expired++
		case RequirementExpiringSoon:
			s.ExpiringSoon++
		default:
			s.Pending++
		}
	}
	s.ComplianceRate = percent(s.Valid, s.Total)
	return s
}

type EmployeeView struct {
	Employee
	ComplianceSummary ComplianceSummary `json:"compliance_summary"`
}

// percent is round(part*100/whole) with half away from zero, 0 when whole is 0.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

// NewRequirement is a user-added requirement. Added requirements are never mandatory.
type NewRequirement struct {
	RequirementType string
	Title           string
	Description     string
	IssueDate       *time.Time
	ExpiryDate      *time.Time
	ReferenceNumber string
	RenewalMonths   *int
}
