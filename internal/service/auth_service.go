package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"robot_dashboard/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL   = time.Hour
	minPasswordLength = 6
	tokenIssuer       = "robot-dashboard"
)

var (
	ErrInvalidUsername = errors.New("username must be 3-32 characters of letters, digits, '.', '_' or '-'")
	ErrWeakPassword    = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	// ErrBadCredentials covers both an unknown operator and a wrong password.
	ErrBadCredentials = errors.New("invalid credentials")
	ErrInvalidToken   = errors.New("invalid token")
	// ErrUsernameTaken is the repository error, re-exported for handlers.
	ErrUsernameTaken = repository.ErrUsernameTaken
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)

// AuthService signs operators in to the dashboard API.
type AuthService struct {
	operators  repository.Operators
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewAuthService(operators repository.Operators, signingKey string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{operators: operators, signingKey: []byte(signingKey), tokenTTL: tokenTTL, now: time.Now}
}

// OperatorClaims is the JWT body. Subject carries the operator ID as a string.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// SignUp registers an operator with a bcrypt hash of password.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (int, error) {
	if !usernamePattern.MatchString(username) {
		return 0, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return 0, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.operators.Create(ctx, username, string(hash))
}

func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (string, error) {
	op, err := s.operators.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)) != nil {
		return "", ErrBadCredentials
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.Itoa(op.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		Username: op.Username,
	})
	return token.SignedString(s.signingKey)
}

// ParseToken returns the operator ID of a valid HS256 token issued by this service.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	var claims OperatorClaims
	_, err := jwt.ParseWithClaims(accessToken, &claims,
		func(*jwt.Token) (interface{}, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return id, nil
}
