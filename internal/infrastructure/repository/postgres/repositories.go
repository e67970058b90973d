package postgres

import "database/sql"

// Repositories bundles every table-backed repository over one pool.
type Repositories struct {
	Users         *UserRepository
	Businesses    *BusinessRepository
	Items         *ComplianceItemRepository
	Scores        *ScoreRepository
	Employees     *EmployeeRepository
	Requirements  *RequirementRepository
	Notifications *NotificationRepository
	Transactions  *TransactionRepository
	Documents     *DocumentRepository
}

func New(db *sql.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Businesses:    NewBusinessRepository(db),
		Items:         NewComplianceItemRepository(db),
		Scores:        NewScoreRepository(db),
		Employees:     NewEmployeeRepository(db),
		Requirements:  NewRequirementRepository(db),
		Notifications: NewNotificationRepository(db),
		Transactions:  NewTransactionRepository(db),
		Documents:     NewDocumentRepository(db),
	}
}
