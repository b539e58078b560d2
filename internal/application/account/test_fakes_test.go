package account

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeAccountRepo struct {
	mu   sync.Mutex
	byID map[string]domain.Account

	// injected errors (if set, method returns error)
	findErr   error
	insertErr error
	updateErr error
	deleteErr error
	listErr   error

	// deleteMisses makes Delete report nothing removed (lost a race).
	deleteMisses bool
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byID: map[string]domain.Account{}}
}

func (f *fakeAccountRepo) put(a domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[a.ID] = a
}

func (f *fakeAccountRepo) FindByEmailOrPhone(ctx context.Context, identifier string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return domain.Account{}, f.findErr
	}
	email, phone := domain.NormalizeEmail(identifier), domain.NormalizePhone(identifier)
	for _, a := range f.byID {
		if (a.Email != "" && a.Email == email) || (a.Phone != "" && a.Phone == phone) {
			return a, nil
		}
	}
	return domain.Account{}, domain.ErrAccountNotFound()
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, id string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return domain.Account{}, f.findErr
	}
	a, ok := f.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	return a, nil
}

func (f *fakeAccountRepo) Insert(ctx context.Context, a domain.Account) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return domain.Account{}, f.insertErr
	}
	for _, existing := range f.byID {
		if a.Email != "" && existing.Email == a.Email {
			return domain.Account{}, domain.ErrEmailAlreadyExists()
		}
		if a.Phone != "" && existing.Phone == a.Phone {
			return domain.Account{}, domain.ErrPhoneAlreadyExists()
		}
	}
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return domain.Account{}, f.updateErr
	}
	a, ok := f.byID[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound()
	}
	a = patch.Apply(a)
	a.UpdatedAt = time.Now().UTC()
	f.byID[id] = a
	return a, nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if f.deleteMisses {
		return false, nil
	}
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func (f *fakeAccountRepo) ListAll(ctx context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Account, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeHasher is reversible on purpose so tests can seed hashes directly.
type fakeHasher struct {
	mu       sync.Mutex
	hashFn   func(pw string) (string, error)
	verifies int
}

func (h *fakeHasher) Hash(pw string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(pw)
	}
	return "hash:" + pw, nil
}

func (h *fakeHasher) Verify(pw, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return hash == "hash:"+pw
}

func (h *fakeHasher) verifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}

type fakeSigner struct {
	issueErr error
	ttl      time.Duration
}

func (s *fakeSigner) Issue(accountID string, role domain.Role) (string, time.Time, error) {
	if s.issueErr != nil {
		return "", time.Time{}, s.issueErr
	}
	return "tok:" + accountID + ":" + string(role), time.Now().Add(s.ttl), nil
}

func (s *fakeSigner) Verify(token string) (TokenClaims, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] != "tok" {
		return TokenClaims{}, domain.ErrTokenMalformed()
	}
	return TokenClaims{AccountID: parts[1], Role: domain.Role(parts[2])}, nil
}

type fakeAssets struct {
	mu     sync.Mutex
	saveFn func(meta FileMeta) (string, error)
	saved  []FileMeta
	bodies []string
}

func (a *fakeAssets) Save(ctx context.Context, r io.Reader, meta FileMeta) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.saveFn != nil {
		return a.saveFn(meta)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	a.saved = append(a.saved, meta)
	a.bodies = append(a.bodies, string(b))
	return "/uploads/" + meta.Filename, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	err     error
	created []AccountCreatedEvent
	deleted []AccountDeletedEvent
	images  []ProfileImageUpdatedEvent
}

func (p *fakePublisher) PublishAccountCreated(ctx context.Context, evt AccountCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, evt)
	return p.err
}

func (p *fakePublisher) PublishAccountDeleted(ctx context.Context, evt AccountDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, evt)
	return p.err
}

func (p *fakePublisher) PublishProfileImageUpdated(ctx context.Context, evt ProfileImageUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.images = append(p.images, evt)
	return p.err
}

/*
Fixture
*/

type testEnv struct {
	svc    *Service
	repo   *fakeAccountRepo
	hasher *fakeHasher
	signer *fakeSigner
	assets *fakeAssets
	pub    *fakePublisher

	auditMu sync.Mutex
	audits  []auditEntry
}

func (e *testEnv) auditActions() []string {
	e.auditMu.Lock()
	defer e.auditMu.Unlock()
	out := make([]string, 0, len(e.audits))
	for _, a := range e.audits {
		out = append(out, a.action)
	}
	return out
}

func newSvcForTest(t *testing.T) *testEnv {
	return newSvcForTestWithConfig(t, Config{AdminCreateRequiresAdmin: true})
}

func newSvcForTestWithConfig(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	e := &testEnv{
		repo:   newFakeAccountRepo(),
		hasher: &fakeHasher{},
		signer: &fakeSigner{ttl: time.Hour},
		assets: &fakeAssets{},
		pub:    &fakePublisher{},
	}
	e.svc = NewService(e.repo, e.hasher, e.signer, e.assets, e.pub, cfg).
		WithAudit(func(action string, fields map[string]string) {
			e.auditMu.Lock()
			defer e.auditMu.Unlock()
			e.audits = append(e.audits, auditEntry{action: action, fields: fields})
		})
	return e
}

// seed stores an account whose password is pw under the fake hasher.
func (e *testEnv) seed(id, email, phone, pw string, role domain.Role) domain.Account {
	a := domain.Account{
		ID:           id,
		Email:        email,
		Phone:        phone,
		Name:         "seed-" + id,
		PasswordHash: "hash:" + pw,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	e.repo.put(a)
	return a
}

func userIdentity(id string) domain.Identity {
	return domain.Identity{AccountID: id, Role: domain.RoleUser}
}

func adminIdentity(id string) domain.Identity {
	return domain.Identity{AccountID: id, Role: domain.RoleAdmin}
}

var errBoom = errors.New("boom")

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if got := domainCode(err); got != code {
		t.Fatalf("expected code=%q, got %q (err=%v)", code, got, err)
	}
}
