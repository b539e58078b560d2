package account

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
	pkgctx "github.com/baechuer/account-service/internal/pkg/context"
)

const (
	DefaultMinPasswordLen = 5
	DefaultMaxUploadSize  = 5 << 20

	// MaxPasswordBytes is the bcrypt input limit, counted in bytes.
	MaxPasswordBytes = 72
)

var DefaultAllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type Service struct {
	accounts AccountRepo
	hasher   PasswordHasher
	signer   TokenSigner
	assets   AssetStore
	pub      EventPublisher
	guard    *Guard

	minPasswordLen           int
	maxUploadSize            int64
	allowedImageTypes        map[string]bool
	adminCreateRequiresAdmin bool

	audit func(action string, fields map[string]string)

	// dummyHash is compared against on unknown identifiers so a miss
	// costs the same bcrypt work as a wrong password.
	dummyOnce sync.Once
	dummyHash string
}

type Config struct {
	MinPasswordLen           int
	MaxUploadSize            int64
	AllowedImageTypes        []string
	AdminCreateRequiresAdmin bool
}

func NewService(
	accounts AccountRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	assets AssetStore,
	pub EventPublisher,
	cfg Config,
) *Service {
	minLen := cfg.MinPasswordLen
	if minLen <= 0 {
		minLen = DefaultMinPasswordLen
	}
	maxUpload := cfg.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadSize
	}
	types := cfg.AllowedImageTypes
	if len(types) == 0 {
		types = DefaultAllowedImageTypes
	}
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}

	return &Service{
		accounts: accounts,
		hasher:   hasher,
		signer:   signer,
		assets:   assets,
		pub:      pub,
		guard:    NewGuard(accounts),
		audit:    func(string, map[string]string) {},

		minPasswordLen:           minLen,
		maxUploadSize:            maxUpload,
		allowedImageTypes:        allowed,
		adminCreateRequiresAdmin: cfg.AdminCreateRequiresAdmin,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// Guard exposes the access guard so transport code can reuse the same rules.
func (s *Service) Guard() *Guard { return s.guard }

// Profile is the outward projection of an Account. It never carries the password hash.
type Profile struct {
	ID           string
	Email        string
	Phone        string
	Name         string
	ProfileImage string
	Role         domain.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func project(a domain.Account) Profile {
	return Profile{
		ID:           a.ID,
		Email:        a.Email,
		Phone:        a.Phone,
		Name:         a.Name,
		ProfileImage: a.ProfileImage,
		Role:         a.Role,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// fail maps collaborator errors onto the domain taxonomy.
// Expected domain errors pass through; anything else is logged and hidden as internal_error.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Kind == domain.KindInternal {
			logger.WithCtx(ctx).Error().Err(err).Str("op", op).Str("code", domainCode(err)).Msg("account operation failed")
		}
		return de
	}
	logger.WithCtx(ctx).Error().Err(err).Str("op", op).Msg("account operation failed")
	return domain.ErrInternal(err)
}

func (s *Service) record(ctx context.Context, action string, fields map[string]string) {
	if rid := pkgctx.GetRequestID(ctx); rid != "" {
		fields["request_id"] = rid
	}
	s.audit(action, fields)
}

func (s *Service) publish(ctx context.Context, event string, fn func(context.Context) error) {
	if s.pub == nil {
		return
	}
	if err := fn(ctx); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("event", event).Msg("event publish failed")
	}
}

func (s *Service) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("account-service-timing-equaliser")
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_ = s.hasher.Verify(password, s.dummyHash)
	}
}
