package ports

import (
	"context"
	"io"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

// UserRepository persists accounts. Emails are unique.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// BusinessRepository persists tenants. One business per owner.
type BusinessRepository interface {
	Create(ctx context.Context, business *domain.Business) error
	GetByID(ctx context.Context, id string) (*domain.Business, error)
	GetByOwner(ctx context.Context, userID string) (*domain.Business, error)
	Update(ctx context.Context, business *domain.Business) error
	List(ctx context.Context) ([]domain.Business, error)
}

// ComplianceItemRepository persists checklist items. Listing methods never
// return archived items.
type ComplianceItemRepository interface {
	InsertMany(ctx context.Context, items []domain.ComplianceItem) error
	ListActive(ctx context.Context, businessID string, filter domain.ItemFilter) ([]domain.ComplianceItem, error)
	GetActive(ctx context.Context, businessID, itemID string) (*domain.ComplianceItem, error)
	Update(ctx context.Context, item *domain.ComplianceItem) error
	ArchiveAll(ctx context.Context, businessID string, at time.Time) (int, error)
	CountActive(ctx context.Context, businessID string) (int, error)
	CountArchived(ctx context.Context, businessID string) (int, error)
}

// ScoreRepository stores one score snapshot per business.
type ScoreRepository interface {
	Upsert(ctx context.Context, score domain.ComplianceScore) error
	Get(ctx context.Context, businessID string) (*domain.ComplianceScore, error)
	List(ctx context.Context) ([]domain.ComplianceScore, error)
}

// EmployeeRepository persists staff scoped to a business.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, businessID, id string) (*domain.Employee, error)
	ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	Delete(ctx context.Context, businessID, id string) error
}

// RequirementRepository persists employee credentials.
type RequirementRepository interface {
	InsertMany(ctx context.Context, reqs []domain.EmployeeRequirement) error
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.EmployeeRequirement, error)
	GetByID(ctx context.Context, employeeID, id string) (*domain.EmployeeRequirement, error)
	Update(ctx context.Context, req *domain.EmployeeRequirement) error
	DeleteByEmployee(ctx context.Context, employeeID string) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// TransactionRepository records checkout sessions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.PaymentTransaction) error
	GetBySession(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error)
	// MarkPaid flips a pending transaction to paid and reports whether this
	// call performed the flip.
	MarkPaid(ctx context.Context, sessionID string, at time.Time) (bool, error)
	List(ctx context.Context) ([]domain.PaymentTransaction, error)
}

// DocumentRepository persists operator library metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores uploaded files under opaque keys.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// PaymentGateway is the hosted checkout collaborator.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error)
	GetCheckoutStatus(ctx context.Context, sessionID string) (domain.CheckoutStatus, error)
	ParseWebhook(ctx context.Context, body []byte, signature string) (domain.WebhookEvent, error)
}

type TokenIssuer interface {
	Issue(principal domain.Principal) (string, error)
	Verify(token string) (domain.Principal, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BusinessLocker serializes mutations of one business. Release must be safe
// to call when the lock was not obtained.
type BusinessLocker interface {
	Acquire(ctx context.Context, businessID string) (release func(), err error)
}

// EventPublisher emits domain events. Delivery is best effort.
type EventPublisher interface {
	PublishItemUpdated(ctx context.Context, event domain.ItemUpdatedEvent) error
	PublishScoreRecomputed(ctx context.Context, event domain.ScoreRecomputedEvent) error
}

// DomainMetrics records business-level counters.
type DomainMetrics interface {
	RecordScore(label domain.StatusLabel, percent int)
	RecordSeeded(kind string, count int)
	RecordWebhook(outcome string)
}

// ReportExporter renders operator reports.
type ReportExporter interface {
	WriteBusinessReport(ctx context.Context, w io.Writer, rows []domain.BusinessReportRow) error
}

// SectorCatalog is the read-only sector table.
type SectorCatalog interface {
	Artifacts(sectorID string) []domain.ArtifactSpec
	Requirements(sectorID string) []domain.RequirementSpec
	Lookup(sectorID string) (domain.SectorInfo, bool)
	Sectors() []domain.SectorInfo
	Nations() []string
	BusinessSizes() []domain.BusinessSize
	Categories() []string
}
