package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

type EmployeeStore struct {
	mu        sync.RWMutex
	employees map[string]domain.Employee
}

func NewEmployeeStore() *EmployeeStore {
	return &EmployeeStore{employees: make(map[string]domain.Employee)}
}

func (s *EmployeeStore) Create(_ context.Context, e *domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = *e
	return nil
}

func (s *EmployeeStore) GetByID(_ context.Context, businessID, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok || e.BusinessID != businessID {
		return nil, notFound("get employee", "employee")
	}
	return &e, nil
}

func (s *EmployeeStore) ListByBusiness(_ context.Context, businessID string, activeOnly bool) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Employee, 0)
	for _, e := range s.employees {
		if e.BusinessID != businessID || (activeOnly && !e.IsActive) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *EmployeeStore) Update(_ context.Context, e *domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.employees[e.ID]
	if !ok || existing.BusinessID != e.BusinessID {
		return notFound("update employee", "employee")
	}
	s.employees[e.ID] = *e
	return nil
}

func (s *EmployeeStore) Delete(_ context.Context, businessID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok || e.BusinessID != businessID {
		return notFound("delete employee", "employee")
	}
	delete(s.employees, id)
	return nil
}

// RequirementStore keeps requirements in insertion order.
type RequirementStore struct {
	mu   sync.RWMutex
	reqs []domain.EmployeeRequirement
}

func NewRequirementStore() *RequirementStore {
	return &RequirementStore{}
}

func (s *RequirementStore) InsertMany(_ context.Context, reqs []domain.EmployeeRequirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, reqs...)
	return nil
}

func (s *RequirementStore) ListByEmployee(_ context.Context, employeeID string) ([]domain.EmployeeRequirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.EmployeeRequirement, 0)
	for _, r := range s.reqs {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RequirementStore) GetByID(_ context.Context, employeeID, id string) (*domain.EmployeeRequirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reqs {
		if r.ID == id && r.EmployeeID == employeeID {
			return &r, nil
		}
	}
	return nil, notFound("get requirement", "requirement")
}

func (s *RequirementStore) Update(_ context.Context, req *domain.EmployeeRequirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reqs {
		if s.reqs[i].ID == req.ID && s.reqs[i].EmployeeID == req.EmployeeID {
			s.reqs[i] = *req
			return nil
		}
	}
	return notFound("update requirement", "requirement")
}

func (s *RequirementStore) DeleteByEmployee(_ context.Context, employeeID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.reqs[:0]
	removed := 0
	for _, r := range s.reqs {
		if r.EmployeeID == employeeID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.reqs = kept
	return removed, nil
}
