package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/repository/ports"
	"github.com/traveltales/api/internal/util"
)

var (
	ErrUserValidation     = errors.New("user validation failed")
	ErrEmailInUse         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService struct {
	users  ports.UserRepository
	tokens *util.JWTManager
}

func NewAuthService(users ports.UserRepository, tokens *util.JWTManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	AvatarURL *string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" {
		return nil, "", fmt.Errorf("%w: username is required", ErrUserValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: a valid email is required", ErrUserValidation)
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUserValidation, err)
	}

	hash, salt, err := util.DerivePassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		AvatarURL:    input.AvatarURL,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", err
	}

	token, _, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a bearer token to its user. It is the required-auth
// entry point used by the middleware; optional-auth routes treat any error
// from it as an anonymous caller.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
