package account

import (
	"context"
	"io"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
)

// UploadProfileImage stores the file and points the account's profile image at it.
func (s *Service) UploadProfileImage(ctx context.Context, caller domain.Identity, targetID string, r io.Reader, meta FileMeta) (Profile, error) {
	target, err := s.guard.OwnerOrAdmin(ctx, caller, targetID)
	if err != nil {
		return Profile{}, s.fail(ctx, "upload_profile_image", err)
	}

	if r == nil || meta.Size == 0 {
		return Profile{}, domain.ErrFileRequired()
	}
	if meta.Size > s.maxUploadSize {
		return Profile{}, domain.ErrFileTooLarge(s.maxUploadSize)
	}
	if !s.allowedImageTypes[meta.ContentType] {
		return Profile{}, domain.ErrUnsupportedMedia(meta.ContentType)
	}

	ref, err := s.assets.Save(ctx, io.LimitReader(r, s.maxUploadSize), meta)
	if err != nil {
		return Profile{}, s.fail(ctx, "upload_profile_image", domain.ErrAssetStoreFailed(err))
	}

	updated, err := s.accounts.Update(ctx, target.ID, domain.AccountPatch{ProfileImage: &ref})
	if err != nil {
		// Account vanished between the guard and the write; the stored file is orphaned.
		logger.WithCtx(ctx).Warn().Str("account_id", target.ID).Str("asset", ref).Msg("profile image stored but account update failed")
		return Profile{}, s.fail(ctx, "upload_profile_image", err)
	}

	s.record(ctx, "profile_image_updated", map[string]string{"actor_id": caller.AccountID, "account_id": updated.ID})
	s.publish(ctx, "account.profile_image_updated", func(ctx context.Context) error {
		return s.pub.PublishProfileImageUpdated(ctx, ProfileImageUpdatedEvent{
			AccountID: updated.ID,
			NewImage:  ref,
			OldImage:  target.ProfileImage,
		})
	})

	return project(updated), nil
}
