package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, role, created_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES ($1,$2,$3,$4,$5,$6)
`, user.ID, user.Email, user.PasswordHash, user.FullName, string(user.Role), user.CreatedAt)
	if err != nil {
		return classify("create user", "user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, classify("get user", "user", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, classify("get user by email", "user", err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func scanUser(row scanner) (domain.User, error) {
	var user domain.User
	var role string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &role, &user.CreatedAt); err != nil {
		return domain.User{}, err
	}
	user.Role = domain.Role(role)
	return user, nil
}

type BusinessRepository struct {
	db *sql.DB
}

func NewBusinessRepository(db *sql.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

const businessColumns = `id, owner_user_id, name, industry, sector, size, uk_nation, address, phone,
	subscription_status, subscription_plan, created_at, updated_at`

func (r *BusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO businesses (`+businessColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`, b.ID, b.OwnerUserID, b.Name, b.Industry, b.Sector, b.Size, b.UKNation, b.Address, b.Phone,
		string(b.SubscriptionStatus), b.SubscriptionPlan, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return classify("create business", "business", err)
	}
	return nil
}

func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	b, err := scanBusiness(row)
	if err != nil {
		return nil, classify("get business", "business", err)
	}
	return &b, nil
}

func (r *BusinessRepository) GetByOwner(ctx context.Context, userID string) (*domain.Business, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+businessColumns+` FROM businesses WHERE owner_user_id = $1`, userID)
	b, err := scanBusiness(row)
	if err != nil {
		return nil, classify("get business by owner", "business", err)
	}
	return &b, nil
}

func (r *BusinessRepository) Update(ctx context.Context, b *domain.Business) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE businesses
SET name = $2, industry = $3, sector = $4, size = $5, uk_nation = $6, address = $7, phone = $8,
	subscription_status = $9, subscription_plan = $10, updated_at = $11
WHERE id = $1
`, b.ID, b.Name, b.Industry, b.Sector, b.Size, b.UKNation, b.Address, b.Phone,
		string(b.SubscriptionStatus), b.SubscriptionPlan, b.UpdatedAt)
	if err != nil {
		return classify("update business", "business", err)
	}
	return expectAffected("update business", "business", result)
}

func (r *BusinessRepository) List(ctx context.Context) ([]domain.Business, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+businessColumns+` FROM businesses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Business, 0)
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate businesses: %w", err)
	}
	return out, nil
}

func scanBusiness(row scanner) (domain.Business, error) {
	var b domain.Business
	var status string
	err := row.Scan(
		&b.ID, &b.OwnerUserID, &b.Name, &b.Industry, &b.Sector, &b.Size, &b.UKNation, &b.Address, &b.Phone,
		&status, &b.SubscriptionPlan, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return domain.Business{}, err
	}
	b.SubscriptionStatus = domain.SubscriptionStatus(status)
	return b, nil
}
