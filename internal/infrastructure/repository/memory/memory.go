// Package memory keeps every collection in process memory. It backs local
// development (STORAGE_BACKEND=memory) and the use case scenario tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

func notFound(op, what string) error {
	return domain.NewError(domain.ErrNotFound, op, what+" not found")
}

type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.NewError(domain.ErrConflict, "create user", "email already registered")
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, notFound("get user", "user")
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, notFound("get user", "user")
}

func (s *UserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type BusinessStore struct {
	mu         sync.RWMutex
	businesses map[string]domain.Business
}

func NewBusinessStore() *BusinessStore {
	return &BusinessStore{businesses: make(map[string]domain.Business)}
}

func (s *BusinessStore) Create(_ context.Context, b *domain.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.businesses {
		if existing.OwnerUserID == b.OwnerUserID {
			return domain.NewError(domain.ErrConflict, "create business", "user already has a business")
		}
	}
	s.businesses[b.ID] = *b
	return nil
}

func (s *BusinessStore) GetByID(_ context.Context, id string) (*domain.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.businesses[id]; ok {
		return &b, nil
	}
	return nil, notFound("get business", "business")
}

func (s *BusinessStore) GetByOwner(_ context.Context, userID string) (*domain.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.businesses {
		if b.OwnerUserID == userID {
			return &b, nil
		}
	}
	return nil, notFound("get business", "business")
}

func (s *BusinessStore) Update(_ context.Context, b *domain.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businesses[b.ID]; !ok {
		return notFound("update business", "business")
	}
	s.businesses[b.ID] = *b
	return nil
}

func (s *BusinessStore) List(_ context.Context) ([]domain.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Business, 0, len(s.businesses))
	for _, b := range s.businesses {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ItemStore keeps items in insertion order.
type ItemStore struct {
	mu    sync.RWMutex
	items []domain.ComplianceItem
	index map[string]int
}

func NewItemStore() *ItemStore {
	return &ItemStore{index: make(map[string]int)}
}

func (s *ItemStore) InsertMany(_ context.Context, items []domain.ComplianceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := make(map[string]struct{})
	for _, it := range s.items {
		if !it.Archived {
			active[it.BusinessID+"/"+it.ItemKey] = struct{}{}
		}
	}
	for _, it := range items {
		key := it.BusinessID + "/" + it.ItemKey
		if _, dup := active[key]; dup {
			return domain.NewError(domain.ErrConflict, "insert items", "active item exists for key "+it.ItemKey)
		}
		active[key] = struct{}{}
	}
	for _, it := range items {
		s.index[it.ID] = len(s.items)
		s.items = append(s.items, it)
	}
	return nil
}

func (s *ItemStore) ListActive(_ context.Context, businessID string, filter domain.ItemFilter) ([]domain.ComplianceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ComplianceItem, 0)
	for _, it := range s.items {
		if it.BusinessID == businessID && !it.Archived && filter.Matches(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *ItemStore) GetActive(_ context.Context, businessID, itemID string) (*domain.ComplianceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[itemID]
	if !ok || s.items[i].BusinessID != businessID || s.items[i].Archived {
		return nil, notFound("get item", "compliance item")
	}
	it := s.items[i]
	return &it, nil
}

func (s *ItemStore) Update(_ context.Context, item *domain.ComplianceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[item.ID]
	if !ok || s.items[i].BusinessID != item.BusinessID {
		return notFound("update item", "compliance item")
	}
	s.items[i] = *item
	return nil
}

func (s *ItemStore) ArchiveAll(_ context.Context, businessID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.items {
		if s.items[i].BusinessID == businessID && !s.items[i].Archived {
			stamp := at.UTC()
			s.items[i].Archived = true
			s.items[i].ArchivedAt = &stamp
			n++
		}
	}
	return n, nil
}

func (s *ItemStore) CountActive(_ context.Context, businessID string) (int, error) {
	return s.count(businessID, false), nil
}

func (s *ItemStore) CountArchived(_ context.Context, businessID string) (int, error) {
	return s.count(businessID, true), nil
}

func (s *ItemStore) count(businessID string, archived bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.items {
		if it.BusinessID == businessID && it.Archived == archived {
			n++
		}
	}
	return n
}

type ScoreStore struct {
	mu     sync.RWMutex
	scores map[string]domain.ComplianceScore
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{scores: make(map[string]domain.ComplianceScore)}
}

func (s *ScoreStore) Upsert(_ context.Context, score domain.ComplianceScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	breakdown := make(map[string]domain.CategoryTally, len(score.Breakdown))
	for k, v := range score.Breakdown {
		breakdown[k] = v
	}
	score.Breakdown = breakdown
	s.scores[score.BusinessID] = score
	return nil
}

func (s *ScoreStore) Get(_ context.Context, businessID string) (*domain.ComplianceScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if score, ok := s.scores[businessID]; ok {
		return &score, nil
	}
	return nil, notFound("get score", "score")
}

func (s *ScoreStore) List(_ context.Context) ([]domain.ComplianceScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ComplianceScore, 0, len(s.scores))
	for _, score := range s.scores {
		out = append(out, score)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusinessID < out[j].BusinessID })
	return out, nil
}
