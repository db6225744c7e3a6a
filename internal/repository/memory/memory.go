// Package memory holds an in-memory repository.Store used when the service
// runs without a database and as a test double. Uniqueness and approval
// semantics match the Postgres implementation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"rollcall/registry/internal/model"
	"rollcall/registry/internal/repository"
)

type Memory struct {
	mu       sync.RWMutex
	schools  map[string]model.School
	accounts map[string]model.Account
}

var _ repository.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		schools:  make(map[string]model.School),
		accounts: make(map[string]model.Account),
	}
}

func (m *Memory) CreateSchool(_ context.Context, school model.School) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.schools {
		if existing.SchoolEmail == school.SchoolEmail || existing.SchoolCode == school.SchoolCode {
			return repository.ErrDuplicate
		}
	}
	m.schools[school.ID] = school
	return nil
}

func (m *Memory) GetSchoolByID(_ context.Context, id string) (model.School, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	school, ok := m.schools[id]
	if !ok {
		return model.School{}, repository.ErrNotFound
	}
	return school, nil
}

func (m *Memory) GetSchoolByEmail(_ context.Context, email string) (model.School, error) {
	return m.findSchool(func(s model.School) bool { return s.SchoolEmail == email })
}

func (m *Memory) GetSchoolByCode(_ context.Context, code string) (model.School, error) {
	return m.findSchool(func(s model.School) bool { return s.SchoolCode == code })
}

func (m *Memory) findSchool(match func(model.School) bool) (model.School, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, school := range m.schools {
		if match(school) {
			return school, nil
		}
	}
	return model.School{}, repository.ErrNotFound
}

func (m *Memory) MarkSchoolVerified(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	school, ok := m.schools[id]
	if !ok {
		return repository.ErrNotFound
	}
	school.IsVerified = true
	m.schools[id] = school
	return nil
}

func (m *Memory) SearchUnverifiedSchools(_ context.Context, query string, limit int) ([]model.School, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(query)
	matches := make([]model.School, 0)
	for _, school := range m.schools {
		if school.IsVerified {
			continue
		}
		if strings.Contains(strings.ToLower(school.SchoolName), needle) ||
			strings.Contains(strings.ToLower(school.SchoolCode), needle) {
			matches = append(matches, school)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].SchoolName < matches[j].SchoolName })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *Memory) CreateAccount(_ context.Context, account model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicate
		}
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *Memory) GetAccountByID(_ context.Context, id string) (model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return account, nil
}

func (m *Memory) GetAccountByEmail(_ context.Context, email string) (model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, account := range m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return model.Account{}, repository.ErrNotFound
}

func (m *Memory) GetTenantAccount(_ context.Context, email, schoolID string, roles ...model.Role) (model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, account := range m.accounts {
		if account.Email != email {
			continue
		}
		if account.SchoolID == nil || *account.SchoolID != schoolID {
			continue
		}
		for _, role := range roles {
			if account.Role == role {
				return account, nil
			}
		}
	}
	return model.Account{}, repository.ErrNotFound
}

func (m *Memory) ListPendingAccounts(_ context.Context, schoolID string) ([]model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pending := make([]model.Account, 0)
	for _, account := range m.accounts {
		if account.SchoolID == nil || *account.SchoolID != schoolID {
			continue
		}
		if account.ApprovalStatus != model.ApprovalPending {
			continue
		}
		if account.Role != model.RoleTeacher && account.Role != model.RoleStudent {
			continue
		}
		pending = append(pending, account)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

func (m *Memory) ApproveAccount(_ context.Context, params repository.ApproveParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[params.AccountID]
	if !ok || account.SchoolID == nil || *account.SchoolID != params.SchoolID {
		return repository.ErrNotFound
	}
	if account.ApprovalStatus != model.ApprovalPending {
		return repository.ErrNotFound
	}
	for _, other := range m.accounts {
		if other.ID == account.ID {
			continue
		}
		if params.StaffID != nil && other.StaffID != nil && *other.StaffID == *params.StaffID {
			return repository.ErrDuplicate
		}
		if params.RegistrationNumber != nil && other.RegistrationNumber != nil &&
			*other.RegistrationNumber == *params.RegistrationNumber {
			return repository.ErrDuplicate
		}
	}

	if params.StaffID != nil {
		account.StaffID = params.StaffID
	}
	if params.RegistrationNumber != nil {
		account.RegistrationNumber = params.RegistrationNumber
	}
	account.ApprovalStatus = model.ApprovalApproved
	approvedAt := params.ApprovedAt
	account.ApprovedAt = &approvedAt
	approvedBy := params.ApprovedBy
	account.ApprovedBy = &approvedBy
	m.accounts[params.AccountID] = account
	return nil
}
