package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

const maxJSONBody = 1 << 20

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type businessRequest struct {
	Name     string `json:"name" validate:"required"`
	Industry string `json:"industry" validate:"required"`
	Sector   string `json:"sector" validate:"required"`
	Size     string `json:"size" validate:"required"`
	UKNation string `json:"uk_nation" validate:"required"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

func (b businessRequest) profile() domain.BusinessProfile {
	return domain.BusinessProfile{
		Name:     strings.TrimSpace(b.Name),
		Industry: b.Industry,
		Sector:   b.Sector,
		Size:     b.Size,
		UKNation: b.UKNation,
		Address:  b.Address,
		Phone:    b.Phone,
	}
}

type itemUpdateRequest struct {
	Status             *string `json:"status"`
	IsAcknowledged     *bool   `json:"is_acknowledged"`
	IsCustomised       *bool   `json:"is_customised"`
	CustomContent      *string `json:"custom_content"`
	FileURL            *string `json:"file_url"`
	FileName           *string `json:"file_name"`
	Notes              *string `json:"notes"`
	ContributesToScore *bool   `json:"contributes_to_score"`
}

func (u itemUpdateRequest) update() (domain.ItemUpdate, error) {
	out := domain.ItemUpdate{
		IsAcknowledged:     u.IsAcknowledged,
		IsCustomised:       u.IsCustomised,
		CustomContent:      u.CustomContent,
		FileURL:            u.FileURL,
		FileName:           u.FileName,
		Notes:              u.Notes,
		ContributesToScore: u.ContributesToScore,
	}
	if u.Status != nil {
		status, err := domain.ParseItemStatus(*u.Status)
		if err != nil {
			return domain.ItemUpdate{}, err
		}
		out.Status = &status
	}
	return out, nil
}

type employeeRequest struct {
	FirstName        string  `json:"first_name" validate:"required"`
	LastName         string  `json:"last_name" validate:"required"`
	Email            string  `json:"email" validate:"omitempty,email"`
	JobTitle         string  `json:"job_title"`
	Department       string  `json:"department"`
	StartDate        *string `json:"start_date"`
	Phone            string  `json:"phone"`
	EmergencyContact string  `json:"emergency_contact"`
}

func (e employeeRequest) employee() (domain.Employee, error) {
	start, err := parseOptionalTime("start_date", e.StartDate)
	if err != nil {
		return domain.Employee{}, err
	}
	return domain.Employee{
		FirstName:        strings.TrimSpace(e.FirstName),
		LastName:         strings.TrimSpace(e.LastName),
		Email:            e.Email,
		JobTitle:         e.JobTitle,
		Department:       e.Department,
		StartDate:        start,
		Phone:            e.Phone,
		EmergencyContact: e.EmergencyContact,
	}, nil
}

type employeeUpdateRequest struct {
	FirstName        *string `json:"first_name" validate:"omitempty,min=1"`
	LastName         *string `json:"last_name" validate:"omitempty,min=1"`
	Email            *string `json:"email" validate:"omitempty,email"`
	JobTitle         *string `json:"job_title"`
	Department       *string `json:"department"`
	StartDate        *string `json:"start_date"`
	Phone            *string `json:"phone"`
	EmergencyContact *string `json:"emergency_contact"`
	IsActive         *bool   `json:"is_active"`
}

func (e employeeUpdateRequest) changes() (domain.EmployeeChanges, error) {
	start, err := parseOptionalTime("start_date", e.StartDate)
	if err != nil {
		return domain.EmployeeChanges{}, err
	}
	return domain.EmployeeChanges{
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		Email:            e.Email,
		JobTitle:         e.JobTitle,
		Department:       e.Department,
		StartDate:        start,
		Phone:            e.Phone,
		EmergencyContact: e.EmergencyContact,
		IsActive:         e.IsActive,
	}, nil
}

type requirementRequest struct {
	RequirementType string  `json:"requirement_type" validate:"required"`
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description"`
	IssueDate       *string `json:"issue_date"`
	ExpiryDate      *string `json:"expiry_date"`
	ReferenceNumber string  `json:"reference_number"`
	RenewalMonths   *int    `json:"renewal_months" validate:"omitempty,gt=0"`
}

func (q requirementRequest) requirement() (domain.NewRequirement, error) {
	issue, err := parseOptionalTime("issue_date", q.IssueDate)
	if err != nil {
		return domain.NewRequirement{}, err
	}
	expiry, err := parseOptionalTime("expiry_date", q.ExpiryDate)
	if err != nil {
		return domain.NewRequirement{}, err
	}
	return domain.NewRequirement{
		RequirementType: q.RequirementType,
		Title:           q.Title,
		Description:     q.Description,
		IssueDate:       issue,
		ExpiryDate:      expiry,
		ReferenceNumber: q.ReferenceNumber,
		RenewalMonths:   q.RenewalMonths,
	}, nil
}

type requirementUpdateRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1"`
	Description     *string `json:"description"`
	IssueDate       *string `json:"issue_date"`
	ExpiryDate      *string `json:"expiry_date"`
	ReferenceNumber *string `json:"reference_number"`
}

func (q requirementUpdateRequest) changes() (domain.RequirementChanges, error) {
	issue, err := parseOptionalTime("issue_date", q.IssueDate)
	if err != nil {
		return domain.RequirementChanges{}, err
	}
	expiry, err := parseOptionalTime("expiry_date", q.ExpiryDate)
	if err != nil {
		return domain.RequirementChanges{}, err
	}
	return domain.RequirementChanges{
		Title:           q.Title,
		Description:     q.Description,
		IssueDate:       issue,
		ExpiryDate:      expiry,
		ReferenceNumber: q.ReferenceNumber,
	}, nil
}

type checkoutRequest struct {
	Plan      string `json:"plan" validate:"required"`
	OriginURL string `json:"origin_url" validate:"required,url"`
}

// parseOptionalTime reads an API timestamp. A nil or blank value yields nil.
func parseOptionalTime(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := domain.ParseTimestamp(*raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse "+field, err)
	}
	return &t, nil
}

func (rt *Router) decode(r *http.Request, dst any) error {
	const op = "decode request"
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, op, fmt.Errorf("invalid json: %w", err))
	}
	if err := rt.validate.Struct(dst); err != nil {
		return domain.NewError(domain.ErrInvalidInput, op, validationMessage(err))
	}
	return nil
}
