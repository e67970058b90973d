package memory

// Repositories is a complete in-memory collection set.
type Repositories struct {
	Users         *UserStore
	Businesses    *BusinessStore
	Items         *ItemStore
	Scores        *ScoreStore
	Employees     *EmployeeStore
	Requirements  *RequirementStore
	Notifications *NotificationStore
	Transactions  *TransactionStore
	Documents     *DocumentStore
}

func New() *Repositories {
	return &Repositories{
		Users:         NewUserStore(),
		Businesses:    NewBusinessStore(),
		Items:         NewItemStore(),
		Scores:        NewScoreStore(),
		Employees:     NewEmployeeStore(),
		Requirements:  NewRequirementStore(),
		Notifications: NewNotificationStore(),
		Transactions:  NewTransactionStore(),
		Documents:     NewDocumentStore(),
	}
}
