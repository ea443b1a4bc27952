package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/pkg/validation"
	"github.com/fastygo/compliance/repository"
	"github.com/fastygo/compliance/usecase/mutation"
)

type UseCase struct {
	profiles repository.ProfileRepository
	pipeline *mutation.Pipeline
	logger   *zap.Logger
}

func New(profiles repository.ProfileRepository, pipeline *mutation.Pipeline, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pipeline == nil {
		pipeline = mutation.New(nil, nil, logger)
	}
	return &UseCase{
		profiles: profiles,
		pipeline: pipeline,
		logger:   logger,
	}
}

// GetProfile returns the caller's profile, provisioning one from the identity
// when none exists yet.
func (uc *UseCase) GetProfile(ctx context.Context, owner domain.Identity) (*domain.Profile, error) {
	profile, err := uc.profiles.Get(ctx, owner)
	if err == nil {
		return profile, nil
	}
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	profile = &domain.Profile{
		ID:        owner.UserID,
		FullName:  owner.FullName,
		AvatarURL: owner.AvatarURL,
	}
	if err := uc.profiles.Upsert(ctx, owner, profile); err != nil {
		return nil, err
	}
	uc.logger.Info("profile provisioned", zap.String("user_id", owner.UserID))
	return profile, nil
}

func (uc *UseCase) UpdateProfile(ctx context.Context, owner domain.Identity, patch domain.ProfilePatch) (mutation.Outcome[*domain.Profile], error) {
	op := mutation.Op{Entity: domain.EntityProfiles, Operation: domain.OperationUpdate, RecordID: owner.UserID}
	return mutation.Execute(ctx, uc.pipeline, owner, op,
		func() error { return validation.Struct(patch) },
		func(ctx context.Context) (*domain.Profile, error) {
			profile, err := uc.GetProfile(ctx, owner)
			if err != nil {
				return nil, err
			}
			patch.Apply(profile)
			if err := uc.profiles.Upsert(ctx, owner, profile); err != nil {
				return nil, err
			}
			return profile, nil
		})
}
