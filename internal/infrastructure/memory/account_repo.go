package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

// AccountRepo is the in-process credential store used in dev and tests.
// Uniqueness is checked and written under one lock, so concurrent inserts
// with the same email or phone cannot both succeed.
type AccountRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.Account
	byEmail map[string]string // email -> accountID
	byPhone map[string]string // phone -> accountID
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

func (r *AccountRepo) FindByEmailOrPhone(ctx context.Context, identifier string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byEmail[domain.NormalizeEmail(identifier)]; ok {
		return r.byID[id], nil
	}
	if id, ok := r.byPhone[domain.NormalizePhone(identifier)]; ok {
		return r.byID[id], nil
	}
	return domain.Account{}, domain.ErrAccountNotFound()
}

func (r *AccountRepo) FindByID(ctx context.Context, id string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (r *AccountRepo) Insert(ctx context.Context, a domain.Account) (domain.Account, error) {
	a.Email = domain.NormalizeEmail(a.Email)
	a.Phone = domain.NormalizePhone(a.Phone)
	if a.ID == "" {
		return domain.Account{}, domain.ErrMissingField("id")
	}
	if a.Email == "" && a.Phone == "" {
		return domain.Account{}, domain.ErrIdentifierRequired()
	}
	if a.Role == "" {
		a.Role = domain.RoleUser
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if a.Email != "" {
		if _, exists := r.byEmail[a.Email]; exists {
			return domain.Account{}, domain.ErrEmailAlreadyExists()
		}
	}
	if a.Phone != "" {
		if _, exists := r.byPhone[a.Phone]; exists {
			return domain.Account{}, domain.ErrPhoneAlreadyExists()
		}
	}
	if _, exists := r.byID[a.ID]; exists {
		return domain.Account{}, domain.ErrAccountExists()
	}

	r.byID[a.ID] = a
	if a.Email != "" {
		r.byEmail[a.Email] = a.ID
	}
	if a.Phone != "" {
		r.byPhone[a.Phone] = a.ID
	}
	return a, nil
}

func (r *AccountRepo) Update(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	a = patch.Apply(a)
	a.UpdatedAt = time.Now().UTC()
	r.byID[id] = a
	return a, nil
}

func (r *AccountRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byID, id)
	if a.Email != "" {
		delete(r.byEmail, a.Email)
	}
	if a.Phone != "" {
		delete(r.byPhone, a.Phone)
	}
	return true, nil
}

// ListAll returns accounts ordered by creation time, oldest first.
func (r *AccountRepo) ListAll(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Ping lets the memory store stand in for a database on readiness checks.
func (r *AccountRepo) Ping(ctx context.Context) error { return nil }
