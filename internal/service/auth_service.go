package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

var (
	// ErrInvalidCredentials indicates an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidRefreshToken indicates an unknown, expired, or already
	// redeemed refresh token.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

const bcryptCost = 12

const refreshKeyPrefix = "auth:refresh:"

// AuthService handles registration, login, and token issuance. Refresh
// tokens are single-use: redeeming one rotates the pair and invalidates
// the redeemed token.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
	Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.AuthResponse, error)
}

type authService struct {
	users      repository.UserRepository
	sessions   *redis.Client
	validator  *validator.Validate
	secret     string
	tokenTTL   time.Duration
	refreshTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService constructs an AuthService instance. A nil sessions
// client disables refresh tokens; login and register still work.
func NewAuthService(users repository.UserRepository, sessions *redis.Client, validate *validator.Validate, secret string, tokenTTL, refreshTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:      users,
		sessions:   sessions,
		validator:  validate,
		secret:     secret,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
		logger:     logger.With().Str("component", "auth_service").Logger(),
		now:        time.Now,
	}
}

// Register creates a student account. Accounts with elevated roles are
// created through the user admin endpoints instead.
func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcryptCost)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:          strings.TrimSpace(payload.Name),
		Email:         email,
		PasswordHash:  string(hash),
		Role:          models.RoleStudent,
		ScholarshipID: payload.ScholarshipID,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("student registered")

	return s.issueTokens(ctx, user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a stored refresh token for a new token pair. The
// redeemed token is deleted first, so a replayed token fails even when
// the account lookup below does.
func (s *authService) Refresh(ctx context.Context, payload dto.RefreshRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}
	if s.sessions == nil {
		return dto.AuthResponse{}, ErrInvalidRefreshToken
	}

	key := refreshKeyPrefix + payload.RefreshToken
	stored, err := s.sessions.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return dto.AuthResponse{}, ErrInvalidRefreshToken
		}
		return dto.AuthResponse{}, err
	}
	if err := s.sessions.Del(ctx, key).Err(); err != nil {
		return dto.AuthResponse{}, err
	}

	userID, err := strconv.ParseUint(stored, 10, 64)
	if err != nil {
		return dto.AuthResponse{}, ErrInvalidRefreshToken
	}

	user, err := s.users.GetForSession(ctx, uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidRefreshToken
		}
		return dto.AuthResponse{}, err
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user models.User) (dto.AuthResponse, error) {
	identity := tenancy.IdentityOf(user)
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": identity.Role,
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}
	if identity.ScholarshipID != nil {
		claims["scholarship_id"] = *identity.ScholarshipID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	response := dto.AuthResponse{
		AccessToken: signed,
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		User:        dto.NewUserResponse(user),
	}

	if s.sessions != nil {
		refresh := uuid.NewString()
		key := refreshKeyPrefix + refresh
		if err := s.sessions.Set(ctx, key, strconv.FormatUint(uint64(user.ID), 10), s.refreshTTL).Err(); err != nil {
			return dto.AuthResponse{}, fmt.Errorf("failed to store refresh token: %w", err)
		}
		response.RefreshToken = refresh
	}

	return response, nil
}
