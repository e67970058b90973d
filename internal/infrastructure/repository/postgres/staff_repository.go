package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, business_id, first_name, last_name, email, job_title, department,
	start_date, phone, emergency_contact, is_active, created_at`

func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO employees (`+employeeColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`, e.ID, e.BusinessID, e.FirstName, e.LastName, e.Email, e.JobTitle, e.Department,
		e.StartDate, e.Phone, e.EmergencyContact, e.IsActive, e.CreatedAt)
	if err != nil {
		return classify("create employee", "employee", err)
	}
	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, businessID, id string) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+employeeColumns+` FROM employees WHERE business_id = $1 AND id = $2
`, businessID, id)
	e, err := scanEmployee(row)
	if err != nil {
		return nil, classify("get employee", "employee", err)
	}
	return &e, nil
}

func (r *EmployeeRepository) ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE business_id = $1`
	if activeOnly {
		query += " AND is_active"
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return out, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE employees
SET first_name = $3, last_name = $4, email = $5, job_title = $6, department = $7,
	start_date = $8, phone = $9, emergency_contact = $10, is_active = $11
WHERE business_id = $1 AND id = $2
`, e.BusinessID, e.ID, e.FirstName, e.LastName, e.Email, e.JobTitle, e.Department,
		e.StartDate, e.Phone, e.EmergencyContact, e.IsActive)
	if err != nil {
		return classify("update employee", "employee", err)
	}
	return expectAffected("update employee", "employee", result)
}

func (r *EmployeeRepository) Delete(ctx context.Context, businessID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE business_id = $1 AND id = $2`, businessID, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return expectAffected("delete employee", "employee", result)
}

func scanEmployee(row scanner) (domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(
		&e.ID, &e.BusinessID, &e.FirstName, &e.LastName, &e.Email, &e.JobTitle, &e.Department,
		&e.StartDate, &e.Phone, &e.EmergencyContact, &e.IsActive, &e.CreatedAt,
	)
	return e, err
}

type RequirementRepository struct {
	db *sql.DB
}

func NewRequirementRepository(db *sql.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

const requirementColumns = `id, employee_id, requirement_type, title, description, issue_date, expiry_date,
	reference_number, status, is_mandatory, renewal_months, created_at, updated_at`

func (r *RequirementRepository) InsertMany(ctx context.Context, reqs []domain.EmployeeRequirement) error {
	if len(reqs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert requirements: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO employee_requirements (`+requirementColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`)
	if err != nil {
		return fmt.Errorf("prepare insert requirements: %w", err)
	}
	defer stmt.Close()

	for _, req := range reqs {
		_, err := stmt.ExecContext(ctx,
			req.ID, req.EmployeeID, req.RequirementType, req.Title, req.Description, req.IssueDate, req.ExpiryDate,
			req.ReferenceNumber, string(req.Status), req.IsMandatory, req.RenewalMonths, req.CreatedAt, req.UpdatedAt,
		)
		if err != nil {
			return classify("insert requirements", "requirement", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert requirements: %w", err)
	}
	return nil
}

func (r *RequirementRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.EmployeeRequirement, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+requirementColumns+` FROM employee_requirements WHERE employee_id = $1 ORDER BY created_at, id
`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer rows.Close()

	out := make([]domain.EmployeeRequirement, 0)
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requirements: %w", err)
	}
	return out, nil
}

func (r *RequirementRepository) GetByID(ctx context.Context, employeeID, id string) (*domain.EmployeeRequirement, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+requirementColumns+` FROM employee_requirements WHERE employee_id = $1 AND id = $2
`, employeeID, id)
	req, err := scanRequirement(row)
	if err != nil {
		return nil, classify("get requirement", "requirement", err)
	}
	return &req, nil
}

func (r *RequirementRepository) Update(ctx context.Context, req *domain.EmployeeRequirement) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE employee_requirements
SET title = $3, description = $4, issue_date = $5, expiry_date = $6, reference_number = $7,
	status = $8, updated_at = $9
WHERE employee_id = $1 AND id = $2
`, req.EmployeeID, req.ID, req.Title, req.Description, req.IssueDate, req.ExpiryDate, req.ReferenceNumber,
		string(req.Status), req.UpdatedAt)
	if err != nil {
		return classify("update requirement", "requirement", err)
	}
	return expectAffected("update requirement", "requirement", result)
}

func (r *RequirementRepository) DeleteByEmployee(ctx context.Context, employeeID string) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employee_requirements WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, fmt.Errorf("delete requirements: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete requirements rows affected: %w", err)
	}
	return int(n), nil
}

func scanRequirement(row scanner) (domain.EmployeeRequirement, error) {
	var req domain.EmployeeRequirement
	var status string
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.RequirementType, &req.Title, &req.Description, &req.IssueDate, &req.ExpiryDate,
		&req.ReferenceNumber, &status, &req.IsMandatory, &req.RenewalMonths, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return domain.EmployeeRequirement{}, err
	}
	req.Status = domain.RequirementStatus(status)
	return req, nil
}
