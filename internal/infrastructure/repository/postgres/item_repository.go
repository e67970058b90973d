package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

type ComplianceItemRepository struct {
	db *sql.DB
}

func NewComplianceItemRepository(db *sql.DB) *ComplianceItemRepository {
	return &ComplianceItemRepository{db: db}
}

const itemColumns = `id, business_id, industry_id, item_key, item_type, title, description, category,
	is_required, status, is_acknowledged, acknowledged_at, is_customised, custom_content,
	file_url, file_name, version, last_reviewed, next_review_due, notes, contributes_to_score,
	created_at, updated_at, archived, archived_at`

// InsertMany writes a seeded batch atomically. A second active item with the
// same key violates idx_items_active_key and the whole batch is rejected.
func (r *ComplianceItemRepository) InsertMany(ctx context.Context, items []domain.ComplianceItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert items: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO compliance_items (`+itemColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
`)
	if err != nil {
		return fmt.Errorf("prepare insert items: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		_, err := stmt.ExecContext(ctx,
			it.ID, it.BusinessID, it.IndustryID, it.ItemKey, string(it.ItemType), it.Title, it.Description, it.Category,
			it.IsRequired, string(it.Status), it.IsAcknowledged, it.AcknowledgedAt, it.IsCustomised, it.CustomContent,
			it.FileURL, it.FileName, it.Version, it.LastReviewed, it.NextReviewDue, it.Notes, it.ContributesToScore,
			it.CreatedAt, it.UpdatedAt, it.Archived, it.ArchivedAt,
		)
		if err != nil {
			return classify("insert items", "compliance item", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert items: %w", err)
	}
	return nil
}

func (r *ComplianceItemRepository) ListActive(ctx context.Context, businessID string, filter domain.ItemFilter) ([]domain.ComplianceItem, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + itemColumns + ` FROM compliance_items WHERE business_id = $1 AND NOT archived`)
	args := []any{businessID}
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		fmt.Fprintf(&b, " AND %s = $%d", column, len(args))
	}
	add("category", filter.Category)
	add("item_type", string(filter.ItemType))
	add("status", string(filter.Status))
	b.WriteString(" ORDER BY created_at, id")

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ComplianceItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}

func (r *ComplianceItemRepository) GetActive(ctx context.Context, businessID, itemID string) (*domain.ComplianceItem, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+itemColumns+`
FROM compliance_items
WHERE business_id = $1 AND id = $2 AND NOT archived
`, businessID, itemID)
	it, err := scanItem(row)
	if err != nil {
		return nil, classify("get item", "compliance item", err)
	}
	return &it, nil
}

func (r *ComplianceItemRepository) Update(ctx context.Context, it *domain.ComplianceItem) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE compliance_items
SET status = $3, is_acknowledged = $4, acknowledged_at = $5, is_customised = $6, custom_content = $7,
	file_url = $8, file_name = $9, last_reviewed = $10, next_review_due = $11, notes = $12, updated_at = $13
WHERE business_id = $1 AND id = $2
`, it.BusinessID, it.ID, string(it.Status), it.IsAcknowledged, it.AcknowledgedAt, it.IsCustomised, it.CustomContent,
		it.FileURL, it.FileName, it.LastReviewed, it.NextReviewDue, it.Notes, it.UpdatedAt)
	if err != nil {
		return classify("update item", "compliance item", err)
	}
	return expectAffected("update item", "compliance item", result)
}

func (r *ComplianceItemRepository) ArchiveAll(ctx context.Context, businessID string, at time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE compliance_items
SET archived = TRUE, archived_at = $2
WHERE business_id = $1 AND NOT archived
`, businessID, at.UTC())
	if err != nil {
		return 0, fmt.Errorf("archive items: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("archive items rows affected: %w", err)
	}
	return int(n), nil
}

func (r *ComplianceItemRepository) CountActive(ctx context.Context, businessID string) (int, error) {
	return r.count(ctx, businessID, false)
}

func (r *ComplianceItemRepository) CountArchived(ctx context.Context, businessID string) (int, error) {
	return r.count(ctx, businessID, true)
}

func (r *ComplianceItemRepository) count(ctx context.Context, businessID string, archived bool) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT count(*) FROM compliance_items WHERE business_id = $1 AND archived = $2
`, businessID, archived).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func scanItem(row scanner) (domain.ComplianceItem, error) {
	var it domain.ComplianceItem
	var itemType, status string
	err := row.Scan(
		&it.ID, &it.BusinessID, &it.IndustryID, &it.ItemKey, &itemType, &it.Title, &it.Description, &it.Category,
		&it.IsRequired, &status, &it.IsAcknowledged, &it.AcknowledgedAt, &it.IsCustomised, &it.CustomContent,
		&it.FileURL, &it.FileName, &it.Version, &it.LastReviewed, &it.NextReviewDue, &it.Notes, &it.ContributesToScore,
		&it.CreatedAt, &it.UpdatedAt, &it.Archived, &it.ArchivedAt,
	)
	if err != nil {
		return domain.ComplianceItem{}, err
	}
	it.ItemType = domain.ItemType(itemType)
	it.Status = domain.ItemStatus(status)
	return it, nil
}

type ScoreRepository struct {
	db *sql.DB
}

func NewScoreRepository(db *sql.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

const scoreColumns = `business_id, industry_id, score_percent, required_total, completed_total, missing_count,
	overdue_count, needs_review_count, status_label, last_calculated_at, next_review_due_at, breakdown`

func (r *ScoreRepository) Upsert(ctx context.Context, s domain.ComplianceScore) error {
	breakdown, err := json.Marshal(s.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO compliance_scores (`+scoreColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (business_id) DO UPDATE SET
	industry_id = EXCLUDED.industry_id,
	score_percent = EXCLUDED.score_percent,
	required_total = EXCLUDED.required_total,
	completed_total = EXCLUDED.completed_total,
	missing_count = EXCLUDED.missing_count,
	overdue_count = EXCLUDED.overdue_count,
	needs_review_count = EXCLUDED.needs_review_count,
	status_label = EXCLUDED.status_label,
	last_calculated_at = EXCLUDED.last_calculated_at,
	next_review_due_at = EXCLUDED.next_review_due_at,
	breakdown = EXCLUDED.breakdown
`, s.BusinessID, s.IndustryID, s.ScorePercent, s.RequiredTotal, s.CompletedTotal, s.MissingCount,
		s.OverdueCount, s.NeedsReviewCount, string(s.StatusLabel), s.LastCalculatedAt, s.NextReviewDueAt, breakdown)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

func (r *ScoreRepository) Get(ctx context.Context, businessID string) (*domain.ComplianceScore, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+scoreColumns+` FROM compliance_scores WHERE business_id = $1`, businessID)
	s, err := scanScore(row)
	if err != nil {
		return nil, classify("get score", "compliance score", err)
	}
	return &s, nil
}

func (r *ScoreRepository) List(ctx context.Context) ([]domain.ComplianceScore, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+scoreColumns+` FROM compliance_scores`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ComplianceScore, 0)
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return out, nil
}

func scanScore(row scanner) (domain.ComplianceScore, error) {
	var s domain.ComplianceScore
	var label string
	var breakdown []byte
	err := row.Scan(
		&s.BusinessID, &s.IndustryID, &s.ScorePercent, &s.RequiredTotal, &s.CompletedTotal, &s.MissingCount,
		&s.OverdueCount, &s.NeedsReviewCount, &label, &s.LastCalculatedAt, &s.NextReviewDueAt, &breakdown,
	)
	if err != nil {
		return domain.ComplianceScore{}, err
	}
	s.StatusLabel = domain.StatusLabel(label)
	s.Breakdown = map[string]domain.CategoryTally{}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &s.Breakdown); err != nil {
			return domain.ComplianceScore{}, fmt.Errorf("unmarshal breakdown: %w", err)
		}
	}
	return s, nil
}
