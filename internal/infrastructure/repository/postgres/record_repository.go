package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, n.ID, n.UserID, n.Title, n.Message, string(n.Type), n.IsRead, n.CreatedAt)
	if err != nil {
		return classify("create notification", "notification", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, title, message, type, is_read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &kind, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = domain.NotificationType(kind)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND id = $2
`, userID, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return expectAffected("mark notification read", "notification", result)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read
`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read rows affected: %w", err)
	}
	return int(n), nil
}

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, session_id, user_id, amount, currency, plan, payment_status, created_at, completed_at`

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO payment_transactions (`+transactionColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, tx.ID, tx.SessionID, tx.UserID, tx.Amount, tx.Currency, tx.Plan, string(tx.PaymentStatus), tx.CreatedAt, tx.CompletedAt)
	if err != nil {
		return classify("create transaction", "transaction", err)
	}
	return nil
}

func (r *TransactionRepository) GetBySession(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+transactionColumns+` FROM payment_transactions WHERE session_id = $1
`, sessionID)
	tx, err := scanTransaction(row)
	if err != nil {
		return nil, classify("get transaction", "transaction", err)
	}
	return &tx, nil
}

// MarkPaid flips a transaction to paid and reports whether this call did it.
func (r *TransactionRepository) MarkPaid(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE payment_transactions
SET payment_status = $2, completed_at = $3
WHERE session_id = $1 AND payment_status <> $2
`, sessionID, string(domain.PaymentPaid), at.UTC())
	if err != nil {
		return false, fmt.Errorf("mark transaction paid: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark transaction paid rows affected: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM payment_transactions WHERE session_id = $1`, sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.NewError(domain.ErrNotFound, "mark transaction paid", "transaction not found")
	}
	if err != nil {
		return false, fmt.Errorf("lookup transaction: %w", err)
	}
	return false, nil
}

func (r *TransactionRepository) List(ctx context.Context) ([]domain.PaymentTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM payment_transactions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PaymentTransaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func scanTransaction(row scanner) (domain.PaymentTransaction, error) {
	var tx domain.PaymentTransaction
	var status string
	err := row.Scan(&tx.ID, &tx.SessionID, &tx.UserID, &tx.Amount, &tx.Currency, &tx.Plan, &status, &tx.CreatedAt, &tx.CompletedAt)
	if err != nil {
		return domain.PaymentTransaction{}, err
	}
	tx.PaymentStatus = domain.PaymentStatus(status)
	return tx, nil
}

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, title, description, category, file_name, content_type, size_bytes, storage_key, uploaded_by, created_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`, doc.ID, doc.Title, doc.Description, doc.Category, doc.FileName, doc.ContentType, doc.SizeBytes,
		doc.StorageKey, doc.UploadedBy, doc.CreatedAt)
	if err != nil {
		return classify("insert document", "document", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, classify("get document", "document", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return expectAffected("delete document", "document", result)
}

func scanDocument(row scanner) (domain.Document, error) {
	var doc domain.Document
	err := row.Scan(&doc.ID, &doc.Title, &doc.Description, &doc.Category, &doc.FileName, &doc.ContentType,
		&doc.SizeBytes, &doc.StorageKey, &doc.UploadedBy, &doc.CreatedAt)
	return doc, err
}
