package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
)

func newSeedService(t *testing.T, name string, enabled bool, token string) (SeedService, *gorm.DB) {
	t.Helper()

	db := openServiceDB(t, name)
	svc := NewSeedService(
		repository.NewScholarshipRepository(db),
		repository.NewUserRepository(db),
		repository.NewApplicationRepository(db),
		enabled,
		token,
		zerolog.Nop(),
	)
	return svc, db
}

func TestSeedServiceGates(t *testing.T) {
	disabled, _ := newSeedService(t, "seed_svc_disabled", false, "token")
	_, err := disabled.Seed(context.Background(), "token")
	require.ErrorIs(t, err, ErrSeedDisabled)

	enabled, _ := newSeedService(t, "seed_svc_badtoken", true, "token")
	_, err = enabled.Seed(context.Background(), "wrong")
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	// An empty configured token never authorizes anything.
	noToken, _ := newSeedService(t, "seed_svc_notoken", true, "")
	_, err = noToken.Seed(context.Background(), "")
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedServiceIsIdempotent(t *testing.T) {
	svc, db := newSeedService(t, "seed_svc_idempotent", true, "token")
	ctx := context.Background()

	first, err := svc.Seed(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, 3, first.Scholarships)
	require.Equal(t, 7, first.Users)
	require.Equal(t, 3, first.Applications)

	second, err := svc.Seed(ctx, "token")
	require.NoError(t, err)
	require.Zero(t, second.Scholarships)
	require.Zero(t, second.Users)
	require.Zero(t, second.Applications)

	var superAdmins int64
	require.NoError(t, db.Model(&models.User{}).
		Where("role = ? AND scholarship_id IS NULL", models.RoleAdmin).
		Count(&superAdmins).Error)
	require.EqualValues(t, 1, superAdmins)

	var submitted int64
	require.NoError(t, db.Model(&models.Application{}).
		Where("status = ?", models.StatusSubmitted).
		Count(&submitted).Error)
	require.EqualValues(t, 3, submitted)
}
