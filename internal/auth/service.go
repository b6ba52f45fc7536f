// internal/auth/service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/circlescore/circlescore-backend/internal/common/utils"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTooManyAttempts    = errors.New("too many attempts")
)

const maxFailedAttempts = 10

// Service interface
type Service interface {
	Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error)
	Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAllDevices(ctx context.Context, userID int64) error
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
}

// Config holds service configuration
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
}

type service struct {
	repo   Repository
	redis  *redis.Client
	config *Config
}

func NewService(repo Repository, redisClient *redis.Client, config *Config) Service {
	return &service{
		repo:   repo,
		redis:  redisClient,
		config: config,
	}
}

// Signup creates a new account. The repository provisions the four
// default circles and attaches pending email invites atomically.
func (s *service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, errors.New("passwords do not match")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if taken, err := s.repo.IsEmailTaken(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.createAuthSession(ctx, user)
}

// Signin authenticates a user by email and password
func (s *service) Signin(ctx context.Context, req *SigninRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if s.failedAttempts(ctx, email) >= maxFailedAttempts {
		return nil, ErrTooManyAttempts
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailedAttempt(ctx, email)
		return nil, ErrInvalidCredentials
	}

	s.clearFailedAttempts(ctx, email)

	return s.createAuthSession(ctx, user)
}

// RefreshToken exchanges a valid refresh token for a new session
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateJWT(refreshToken, s.config.JWTSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Type != "refresh" {
		return nil, ErrInvalidToken
	}

	session, err := s.repo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	// Rotate: the old refresh token is single use
	if err := s.repo.DeleteSessionByRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.createAuthSession(ctx, user)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.DeleteSessionByRefreshToken(ctx, refreshToken)
}

func (s *service) LogoutAllDevices(ctx context.Context, userID int64) error {
	return s.repo.DeleteUserSessions(ctx, userID)
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	return utils.ValidateJWT(token, s.config.JWTSecret)
}

func (s *service) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *service) createAuthSession(ctx context.Context, user *User) (*AuthResponse, error) {
	accessToken, err := s.generateToken(user, "access", s.config.AccessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateToken(user, "refresh", s.config.RefreshTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &Session{
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.config.RefreshTokenExpiry),
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.config.AccessTokenExpiry.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func (s *service) generateToken(user *User, tokenType string, expiry time.Duration) (string, error) {
	claims := &utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		Type:      tokenType,
		ExpiresAt: time.Now().Add(expiry).Unix(),
		IssuedAt:  time.Now().Unix(),
		NotBefore: time.Now().Unix(),
		Issuer:    "circlescore-backend",
		Subject:   fmt.Sprintf("%d", user.ID),
	}

	return utils.GenerateJWT(claims, s.config.JWTSecret)
}

func (s *service) failedAttempts(ctx context.Context, identifier string) int {
	if s.redis == nil {
		return 0
	}
	key := fmt.Sprintf("failed:%s", identifier)
	count, err := s.redis.Get(ctx, key).Int()
	if err != nil {
		return 0
	}
	return count
}

func (s *service) recordFailedAttempt(ctx context.Context, identifier string) {
	if s.redis == nil {
		return
	}
	key := fmt.Sprintf("failed:%s", identifier)
	s.redis.Incr(ctx, key)
	s.redis.Expire(ctx, key, 15*time.Minute)
}

func (s *service) clearFailedAttempts(ctx context.Context, identifier string) {
	if s.redis == nil {
		return
	}
	s.redis.Del(ctx, fmt.Sprintf("failed:%s", identifier))
}
