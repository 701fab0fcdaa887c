package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	// GetAccountByEmail and GetAccountByID return nil without error when nothing matches.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetAccountByID(ctx context.Context, id int64) (*Account, error)
}

type TokenGenerator interface {
	GenerateAccessToken(acc *Account) (string, error)
	GenerateRefreshToken(acc *Account) (string, error)
	ValidateToken(tokenString, tokenType string) (*Claims, error)
}

type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate checks credentials and issues an access and refresh token pair.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	acc, err := s.repo.GetAccountByEmail(ctx, dto.Email)
	if err != nil {
		return AuthTokens{}, err
	}
	if acc == nil {
		return AuthTokens{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	s.logger.Info("login succeeded", "user_id", acc.ID, "role", acc.Role)
	return s.issue(acc)
}

func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return AuthTokens{}, err
	}

	acc, err := s.accountFromClaims(ctx, claims)
	if err != nil {
		return AuthTokens{}, err
	}
	return s.issue(acc)
}

// Logout only verifies the token; tokens are stateless and expire on their own.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokenGenerator.ValidateToken(accessToken, TokenTypeAccess)
	if err != nil {
		return err
	}
	s.logger.Info("logout", "user_id", claims.UserID)
	return nil
}

// CurrentUser resolves an access token to an active principal with its permissions.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*internal.User, error) {
	claims, err := s.tokenGenerator.ValidateToken(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	acc, err := s.accountFromClaims(ctx, claims)
	if err != nil {
		return nil, err
	}
	return ToUser(acc), nil
}

func (s *Service) accountFromClaims(ctx context.Context, claims *Claims) (*Account, error) {
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	acc, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, ErrInvalidToken
	}
	if !acc.IsActive {
		return nil, ErrUserInactive
	}
	return acc, nil
}

func (s *Service) issue(acc *Account) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(acc)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(acc)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}

	tokens := AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}
	if gen, ok := s.tokenGenerator.(*JWTTokenGenerator); ok {
		tokens.ExpiresIn = int64(gen.AccessTokenTTL.Seconds())
	}
	return tokens, nil
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(acc *Account) (string, error) {
	return j.sign(acc, TokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(acc *Account) (string, error) {
	return j.sign(acc, TokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(acc *Account, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	id, err := GenerateRandomToken()
	if err != nil {
		return "", err
	}
	userID := strconv.FormatInt(acc.ID, 10)

	claims := &Claims{
		UserID:    userID,
		Email:     acc.Email,
		Role:      acc.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateToken verifies signature, expiry and that the token is of tokenType.
func (j *JWTTokenGenerator) ValidateToken(tokenString, tokenType string) (*Claims, error) {
	secret := j.AccessTokenSecret
	if tokenType == TokenTypeRefresh {
		secret = j.RefreshTokenSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateRandomToken returns 32 random bytes hex encoded.
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
