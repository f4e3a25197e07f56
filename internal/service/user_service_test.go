package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

func newUserServiceFixture(t *testing.T, name string) (UserService, *models.Scholarship, *models.User) {
	t.Helper()

	db := openServiceDB(t, name)

	merit := models.Scholarship{Name: "Merit Scholarship", Slug: "merit", IsActive: true}
	require.NoError(t, db.Create(&merit).Error)

	student := models.User{
		Name: "Ana Reyes", Email: "users-ana@example.com", PasswordHash: "x",
		Role: models.RoleStudent, ScholarshipID: &merit.ID,
	}
	require.NoError(t, db.Create(&student).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewUserService(repository.NewUserRepository(db), validate, zerolog.Nop())

	return svc, &merit, &student
}

func TestUserServiceCreateRequiresAdmin(t *testing.T) {
	svc, merit, student := newUserServiceFixture(t, "user_svc_create_gate")
	ctx := context.Background()

	payload := dto.UserCreateRequest{
		Name:     "Rogue Admin",
		Email:    "rogue@example.com",
		Password: "sneaky-pass",
		Role:     models.RoleAdmin,
	}

	_, err := svc.Create(ctx, tenancy.ScopeFor(tenancy.Student(student.ID, merit.ID)), payload)
	require.ErrorIs(t, err, ErrAdminOnly)

	_, err = svc.Create(ctx, tenancy.ScopeFor(tenancy.CommitteeMember(7, merit.ID)), payload)
	require.ErrorIs(t, err, ErrAdminOnly)

	// No account was minted by the denied attempts.
	superAdmin := tenancy.ScopeFor(tenancy.SuperAdmin(1))
	listed, err := svc.List(ctx, superAdmin, dto.UserFilter{Search: "rogue"})
	require.NoError(t, err)
	require.Empty(t, listed)

	created, err := svc.Create(ctx, superAdmin, dto.UserCreateRequest{
		Name:          "Chair Person",
		Email:         "chair@example.com",
		Password:      "chair-pass",
		Role:          models.RoleCommittee,
		ScholarshipID: &merit.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleCommittee, created.Role)
}

func TestUserServiceStudentCannotSelfPromote(t *testing.T) {
	svc, merit, student := newUserServiceFixture(t, "user_svc_self_promote")
	ctx := context.Background()

	adminRole := models.RoleAdmin
	_, err := svc.Update(ctx, tenancy.ScopeFor(tenancy.Student(student.ID, merit.ID)), student.ID, dto.UserUpdateRequest{
		Role: &adminRole,
	})
	require.ErrorIs(t, err, ErrAdminOnly)

	// The stored role is untouched.
	stored, err := svc.Get(ctx, tenancy.ScopeFor(tenancy.SuperAdmin(1)), student.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, stored.Role)
	require.False(t, stored.SuperAdmin)
}

func TestUserServiceAdminUpdatesRoles(t *testing.T) {
	svc, merit, student := newUserServiceFixture(t, "user_svc_admin_update")
	ctx := context.Background()

	committeeRole := models.RoleCommittee
	updated, err := svc.Update(ctx, tenancy.ScopeFor(tenancy.ScopedAdmin(99, merit.ID)), student.ID, dto.UserUpdateRequest{
		Role: &committeeRole,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleCommittee, updated.Role)
}

func TestUserServiceDeletionRequiresSuperAdmin(t *testing.T) {
	svc, merit, student := newUserServiceFixture(t, "user_svc_delete_gate")
	ctx := context.Background()

	scopedAdmin := tenancy.ScopeFor(tenancy.ScopedAdmin(99, merit.ID))
	require.ErrorIs(t, svc.SoftDelete(ctx, scopedAdmin, student.ID), ErrSuperAdminOnly)
	require.ErrorIs(t, svc.Restore(ctx, scopedAdmin, student.ID), ErrSuperAdminOnly)
	require.ErrorIs(t, svc.HardDelete(ctx, scopedAdmin, student.ID), ErrSuperAdminOnly)

	superAdmin := tenancy.ScopeFor(tenancy.SuperAdmin(1))
	require.NoError(t, svc.SoftDelete(ctx, superAdmin, student.ID))

	_, err := svc.Get(ctx, superAdmin, student.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, svc.Restore(ctx, superAdmin, student.ID))
	restored, err := svc.Get(ctx, superAdmin, student.ID)
	require.NoError(t, err)
	require.Equal(t, student.ID, restored.ID)
}
