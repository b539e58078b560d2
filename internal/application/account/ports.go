package account

import (
	"context"
	"io"
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

/*
AccountRepo
-----------
Credential store port.
Uniqueness of email and phone is enforced by the store itself at insert time
(unique constraints), never by a read-then-write in the service.
*/
type AccountRepo interface {
	// FindByEmailOrPhone matches the identifier against email OR phone.
	FindByEmailOrPhone(ctx context.Context, identifier string) (domain.Account, error)
	FindByID(ctx context.Context, id string) (domain.Account, error)

	// Insert returns domain conflict errors on duplicate email/phone.
	Insert(ctx context.Context, a domain.Account) (domain.Account, error)
	// Update applies a partial patch; ErrAccountNotFound when id is gone.
	Update(ctx context.Context, id string, patch domain.AccountPatch) (domain.Account, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context) ([]domain.Account, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

/*
TokenSigner
-----------
Issues and verifies session tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	AccountID string
	Role      domain.Role
	ExpiresAt time.Time
}

func (c TokenClaims) Identity() domain.Identity {
	return domain.Identity{AccountID: c.AccountID, Role: c.Role}
}

type TokenSigner interface {
	Issue(accountID string, role domain.Role) (token string, expiresAt time.Time, err error)
	Verify(token string) (TokenClaims, error)
}

/*
AssetStore
----------
Stores uploaded binaries (local disk or S3) and returns a stable reference.
*/
type FileMeta struct {
	Filename    string
	ContentType string
	Size        int64
}

type AssetStore interface {
	Save(ctx context.Context, r io.Reader, meta FileMeta) (string, error)
}

/*
EventPublisher
--------------
Publishes account lifecycle events. Delivery is best effort;
the service never fails a request because publishing failed.
*/
type EventPublisher interface {
	PublishAccountCreated(ctx context.Context, evt AccountCreatedEvent) error
	PublishAccountDeleted(ctx context.Context, evt AccountDeletedEvent) error
	PublishProfileImageUpdated(ctx context.Context, evt ProfileImageUpdatedEvent) error
}

type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}

type AccountDeletedEvent struct {
	AccountID string `json:"account_id"`
	ActorID   string `json:"actor_id"`
}

// OldImage lets consumers clean up the replaced asset.
type ProfileImageUpdatedEvent struct {
	AccountID string `json:"account_id"`
	NewImage  string `json:"new_image"`
	OldImage  string `json:"old_image,omitempty"`
}
