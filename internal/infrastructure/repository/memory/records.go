package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

type NotificationStore struct {
	mu            sync.RWMutex
	notifications []domain.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) Create(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, *n)
	return nil
}

// ListByUser returns the newest notifications first.
func (s *NotificationStore) ListByUser(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, 0)
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].UserID == userID {
			out = append(out, s.notifications[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications[i].IsRead = true
			return nil
		}
	}
	return notFound("mark notification read", "notification")
}

func (s *NotificationStore) MarkAllRead(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.notifications {
		if s.notifications[i].UserID == userID && !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

type TransactionStore struct {
	mu  sync.RWMutex
	txs map[string]domain.PaymentTransaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{txs: make(map[string]domain.PaymentTransaction)}
}

func (s *TransactionStore) Create(_ context.Context, tx *domain.PaymentTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.txs[tx.SessionID]; dup {
		return domain.NewError(domain.ErrConflict, "create transaction", "session already recorded")
	}
	s.txs[tx.SessionID] = *tx
	return nil
}

func (s *TransactionStore) GetBySession(_ context.Context, sessionID string) (*domain.PaymentTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tx, ok := s.txs[sessionID]; ok {
		return &tx, nil
	}
	return nil, notFound("get transaction", "transaction")
}

func (s *TransactionStore) MarkPaid(_ context.Context, sessionID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[sessionID]
	if !ok {
		return false, notFound("mark transaction paid", "transaction")
	}
	if tx.PaymentStatus == domain.PaymentPaid {
		return false, nil
	}
	completed := at.UTC()
	tx.PaymentStatus = domain.PaymentPaid
	tx.CompletedAt = &completed
	s.txs[sessionID] = tx
	return true, nil
}

func (s *TransactionStore) List(_ context.Context) ([]domain.PaymentTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PaymentTransaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]domain.Document)}
}

func (s *DocumentStore) Create(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

func (s *DocumentStore) GetByID(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.docs[id]; ok {
		return &doc, nil
	}
	return nil, notFound("get document", "document")
}

// List returns the newest documents first.
func (s *DocumentStore) List(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return notFound("delete document", "document")
	}
	delete(s.docs, id)
	return nil
}
