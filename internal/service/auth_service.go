package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/weatherwatch/backend/internal/domain"
)

// ErrInvalidCredentials is returned when login or token verification fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles registration, login, and bearer-token verification.
type AuthService struct {
	users    domain.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthService creates a new auth service. secret signs HS256 tokens.
func NewAuthService(users domain.UserRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if in.Username == "" || in.Password == "" {
		return domain.User{}, domain.NewValidationError("username and password are required")
	}

	_, err := s.users.GetUserByUsername(ctx, in.Username)
	if err == nil {
		return domain.User{}, domain.NewValidationError("username already registered")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("auth: failed to check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("auth: failed to hash password: %w", err)
	}

	return s.users.CreateUser(ctx, domain.User{
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: string(hashed),
	})
}

// Login verifies credentials and issues a signed bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("auth: failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token back to its account.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (domain.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.User{}, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin seeds the administrator account at startup if absent.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("auth: failed to check admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: failed to hash admin password: %w", err)
	}

	_, err = s.users.CreateUser(ctx, domain.User{
		Username:       username,
		Email:          email,
		FullName:       "Administrator",
		HashedPassword: string(hashed),
	})
	if err != nil {
		return fmt.Errorf("auth: failed to create admin: %w", err)
	}
	log.Println("Admin user created")
	return nil
}
