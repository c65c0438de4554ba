package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/supportly/backend/internal/config"
	"github.com/supportly/backend/internal/models"
	"golang.org/x/crypto/argon2"
)

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"fan@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"password123"`
}

// RegisterRequest represents the registration request payload
// @Description Registration request structure
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum" example:"budi"`
	Email    string `json:"email" validate:"required,email" example:"budi@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"password123"`
	FullName string `json:"fullName" validate:"required,min=2,max=100" example:"Budi Santoso"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=fan creator" example:"creator"`
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  *models.User `json:"user"`
}

// Claims carried by every access token.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	accounts *AccountService
	redis    *redis.Client
	jwtCfg   config.JWTConfig
	argonCfg config.Argon2Config
	log      zerolog.Logger
}

func NewAuthService(accounts *AccountService, redisClient *redis.Client, jwtCfg config.JWTConfig, argonCfg config.Argon2Config, log zerolog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		redis:    redisClient,
		jwtCfg:   jwtCfg,
		argonCfg: argonCfg,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// Register creates a fan or creator account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.RoleFan
	}
	if role != models.RoleFan && role != models.RoleCreator {
		return nil, fmt.Errorf("%w: role must be fan or creator", ErrInvalidInput)
	}

	hashed, err := hashPassword(req.Password, s.argonCfg)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.accounts.Create(ctx, NewAccount{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		FullName:     req.FullName,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("Registration successful")
	return &AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials. Unknown email, wrong password and deactivated
// accounts all produce the same ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Warn().Msg("Login failed: unknown email")
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}

	if !user.IsActive || !verifyPassword(req.Password, user.Password, s.argonCfg) {
		s.log.Warn().Str("user_id", user.ID).Msg("Login failed: bad password or inactive account")
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	if err := s.accounts.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// Logout blacklists the token until it would have expired anyway.
// Without redis it is a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.redis == nil || token == "" {
		return nil
	}

	ttl := s.jwtCfg.Expiry()
	if claims, err := s.ParseToken(token); err == nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, blacklistKey(token), "1", ttl).Err(); err != nil {
		s.log.Error().Err(err).Msg("Failed to blacklist token")
		return fmt.Errorf("%w: blacklist token", ErrUnavailable)
	}
	return nil
}

// IsRevoked reports whether the token was logged out. Redis errors fail open.
func (s *AuthService) IsRevoked(ctx context.Context, token string) bool {
	if s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		s.log.Error().Err(err).Msg("Blacklist lookup failed")
		return false
	}
	return n > 0
}

// ParseToken validates signature, algorithm and expiry.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiry())),
		},
	})
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

func hashPassword(password string, cfg config.Argon2Config) (string, error) {
	salt := make([]byte, cfg.SaltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, cfg.Time, cfg.Memory, cfg.Threads, cfg.KeyLength)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, hashedPassword string, cfg config.Argon2Config) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, cfg.Time, cfg.Memory, cfg.Threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computed) == 1
}
