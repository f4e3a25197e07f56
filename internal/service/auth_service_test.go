package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
)

func newSessionStore(t *testing.T) *redis.Client {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	return redis.NewClient(&redis.Options{Addr: mini.Addr()})
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	db := openServiceDB(t, "auth_svc_register")

	merit := models.Scholarship{Name: "Merit Scholarship", Slug: "merit", IsActive: true}
	require.NoError(t, db.Create(&merit).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(repository.NewUserRepository(db), newSessionStore(t), validate, "test-secret", time.Hour, 24*time.Hour, zerolog.Nop())

	ctx := context.Background()
	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Name:          "Ana Reyes",
		Email:         "Ana.Reyes@Example.com",
		Password:      "correct-horse",
		ScholarshipID: &merit.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.AccessToken)
	require.NotEmpty(t, registered.RefreshToken)
	require.Equal(t, int(time.Hour.Seconds()), registered.ExpiresIn)

	// Self-registration always yields a student, with a normalized email.
	require.Equal(t, models.RoleStudent, registered.User.Role)
	require.Equal(t, "ana.reyes@example.com", registered.User.Email)

	// Passwords are stored hashed.
	var stored models.User
	require.NoError(t, db.First(&stored, registered.User.ID).Error)
	require.NotEqual(t, "correct-horse", stored.PasswordHash)

	_, err = svc.Register(ctx, dto.RegisterRequest{
		Name:     "Ana Again",
		Email:    "ana.reyes@example.com",
		Password: "another-pass",
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	logged, err := svc.Login(ctx, dto.LoginRequest{Email: "ana.reyes@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, logged.User.ID)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana.reyes@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceTokenCarriesScopeClaims(t *testing.T) {
	db := openServiceDB(t, "auth_svc_claims")

	merit := models.Scholarship{Name: "Merit Scholarship", Slug: "merit", IsActive: true}
	require.NoError(t, db.Create(&merit).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(repository.NewUserRepository(db), newSessionStore(t), validate, "test-secret", time.Hour, 24*time.Hour, zerolog.Nop())

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:          "Ben Cruz",
		Email:         "ben.cruz@example.com",
		Password:      "correct-horse",
		ScholarshipID: &merit.ID,
	})
	require.NoError(t, err)

	parsed, err := jwt.Parse(registered.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleStudent, claims["role"])
	require.EqualValues(t, merit.ID, claims["scholarship_id"])
}

func TestAuthServiceRefreshRotatesTokens(t *testing.T) {
	db := openServiceDB(t, "auth_svc_refresh")

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(repository.NewUserRepository(db), newSessionStore(t), validate, "test-secret", time.Hour, 24*time.Hour, zerolog.Nop())

	ctx := context.Background()
	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Cara Lim",
		Email:    "cara.lim@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.RefreshToken)

	refreshed, err := svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, refreshed.User.ID)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEmpty(t, refreshed.RefreshToken)
	require.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// Redeemed tokens are single-use.
	_, err = svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: "never-issued"})
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthServiceRefreshWithoutSessionStore(t *testing.T) {
	db := openServiceDB(t, "auth_svc_refresh_nostore")

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(repository.NewUserRepository(db), nil, validate, "test-secret", time.Hour, 24*time.Hour, zerolog.Nop())

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Dario Cruz",
		Email:    "dario.cruz@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Empty(t, registered.RefreshToken)

	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: "anything"})
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}
