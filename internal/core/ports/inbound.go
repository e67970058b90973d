package ports

import (
	"context"
	"io"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

// Upload is a file received at the API edge.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AccountService issues sessions and resolves bearer tokens.
type AccountService interface {
	Signup(ctx context.Context, email, password, fullName string) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	AdminLogin(ctx context.Context, email, password string) (*domain.Session, error)
	Me(ctx context.Context, principal domain.Principal) (*domain.User, error)
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

// BusinessService manages the caller's business profile.
type BusinessService interface {
	Create(ctx context.Context, principal domain.Principal, profile domain.BusinessProfile) (*domain.Business, error)
	Get(ctx context.Context, principal domain.Principal) (*domain.Business, error)
	Update(ctx context.Context, principal domain.Principal, profile domain.BusinessProfile) (*domain.Business, error)
}

// ComplianceService drives the checklist of the caller's business.
type ComplianceService interface {
	ListItems(ctx context.Context, principal domain.Principal, filter domain.ItemFilter) ([]domain.ComplianceItem, error)
	GetItem(ctx context.Context, principal domain.Principal, itemID string) (*domain.ComplianceItem, error)
	UpdateItem(ctx context.Context, principal domain.Principal, itemID string, update domain.ItemUpdate) (*domain.ComplianceItem, error)
	AcknowledgeItem(ctx context.Context, principal domain.Principal, itemID string) (*domain.ComplianceItem, error)
	AttachFile(ctx context.Context, principal domain.Principal, itemID string, upload Upload) (*domain.ComplianceItem, error)
	FileDownloadURL(ctx context.Context, principal domain.Principal, itemID string) (string, error)
	Score(ctx context.Context, principal domain.Principal) (*domain.ComplianceScore, error)
	Categories(ctx context.Context, principal domain.Principal) ([]string, error)
}

// EmployeeService manages staff and their credentials.
type EmployeeService interface {
	List(ctx context.Context, principal domain.Principal) ([]domain.EmployeeView, error)
	Create(ctx context.Context, principal domain.Principal, employee domain.Employee) (*domain.Employee, error)
	Get(ctx context.Context, principal domain.Principal, employeeID string) (*domain.EmployeeView, error)
	Update(ctx context.Context, principal domain.Principal, employeeID string, changes domain.EmployeeChanges) (*domain.Employee, error)
	Delete(ctx context.Context, principal domain.Principal, employeeID string) error
	ListRequirements(ctx context.Context, principal domain.Principal, employeeID string) ([]domain.RequirementView, error)
	AddRequirement(ctx context.Context, principal domain.Principal, employeeID string, req domain.NewRequirement) (*domain.RequirementView, error)
	UpdateRequirement(ctx context.Context, principal domain.Principal, employeeID, requirementID string, changes domain.RequirementChanges) (*domain.RequirementView, error)
	RequirementTypes(ctx context.Context, principal domain.Principal) ([]domain.RequirementSpec, error)
}

// InsightsService serves the read-only aggregation views.
type InsightsService interface {
	Dashboard(ctx context.Context, principal domain.Principal) (domain.DashboardStats, error)
	EmployeeOverview(ctx context.Context, principal domain.Principal) (domain.EmployeeOverview, error)
}

type NotificationService interface {
	List(ctx context.Context, principal domain.Principal) ([]domain.Notification, error)
	MarkRead(ctx context.Context, principal domain.Principal, notificationID string) error
	MarkAllRead(ctx context.Context, principal domain.Principal) (int, error)
}

// SubscriptionService bridges plan checkout with the payment gateway.
type SubscriptionService interface {
	Plans() []domain.Plan
	Checkout(ctx context.Context, principal domain.Principal, planID, originURL string) (*domain.CheckoutSession, error)
	Status(ctx context.Context, principal domain.Principal, sessionID string) (*domain.CheckoutStatus, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (*domain.WebhookEvent, error)
}

// AdminService is the operator read model.
type AdminService interface {
	Users(ctx context.Context) ([]domain.User, error)
	Businesses(ctx context.Context) ([]domain.Business, error)
	Stats(ctx context.Context) (domain.AdminStats, error)
	ExportBusinesses(ctx context.Context, w io.Writer) error
}

// DocumentLibrary manages operator-uploaded reference documents.
type DocumentLibrary interface {
	Upload(ctx context.Context, principal domain.Principal, meta domain.Document, upload Upload) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	DownloadURL(ctx context.Context, documentID string) (string, error)
	Delete(ctx context.Context, documentID string) error
}

// ScoreRecomputer reruns the score engine for one business.
type ScoreRecomputer interface {
	Recompute(ctx context.Context, businessID string) (*domain.ComplianceScore, error)
}
