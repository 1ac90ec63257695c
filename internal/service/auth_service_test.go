package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/traveltales/api/internal/domain"
	"github.com/traveltales/api/internal/util"
)

type fakeUserRepo struct {
	createInput  *domain.User
	createResult *domain.User
	createErr    error

	findByEmailInput  string
	findByEmailResult *domain.User
	findByEmailErr    error

	findByIDInput  uuid.UUID
	findByIDResult *domain.User
	findByIDErr    error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	f.createInput = user
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createResult != nil {
		return f.createResult, nil
	}
	created := *user
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	return &created, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.findByEmailInput = email
	return f.findByEmailResult, f.findByEmailErr
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.findByIDInput = id
	return f.findByIDResult, f.findByIDErr
}

func newTestTokens() *util.JWTManager {
	return util.NewJWTManager("test-secret", time.Hour)
}

func TestRegisterSuccess(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewAuthService(repo, newTestTokens())

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Username: " wanderer ",
		Email:    "Trips@Example.com ",
		Password: "super-secret",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user == nil || user.ID == uuid.Nil {
		t.Fatalf("expected created user with id, got %+v", user)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if repo.createInput.Username != "wanderer" {
		t.Fatalf("username should be trimmed, got %q", repo.createInput.Username)
	}
	if repo.createInput.Email != "trips@example.com" {
		t.Fatalf("email should be normalized, got %q", repo.createInput.Email)
	}
	if len(repo.createInput.PasswordHash) == 0 || len(repo.createInput.PasswordSalt) == 0 {
		t.Fatal("expected password hash and salt to be derived")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, newTestTokens())

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing username", RegisterInput{Email: "a@b.com", Password: "long-enough"}},
		{"missing email", RegisterInput{Username: "x", Password: "long-enough"}},
		{"malformed email", RegisterInput{Username: "x", Email: "not-an-email", Password: "long-enough"}},
		{"short password", RegisterInput{Username: "x", Email: "a@b.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Register(context.Background(), tc.input); !errors.Is(err, ErrUserValidation) {
				t.Fatalf("expected ErrUserValidation, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{createErr: &pgconn.PgError{Code: "23505"}}
	svc := NewAuthService(repo, newTestTokens())

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "dup", Email: "dup@example.com", Password: "super-secret",
	})
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		repo := &fakeUserRepo{findByEmailErr: sql.ErrNoRows}
		svc := NewAuthService(repo, newTestTokens())

		_, _, err := svc.Login(context.Background(), "none@example.com", "password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("password mismatch", func(t *testing.T) {
		hash, salt, _ := util.DerivePassword("different-password")
		repo := &fakeUserRepo{findByEmailResult: &domain.User{
			ID: uuid.New(), Email: "u@example.com", PasswordHash: hash, PasswordSalt: salt,
		}}
		svc := NewAuthService(repo, newTestTokens())

		_, _, err := svc.Login(context.Background(), "u@example.com", "wrong-password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestLoginSuccess(t *testing.T) {
	hash, salt, _ := util.DerivePassword("right-password")
	user := &domain.User{ID: uuid.New(), Username: "wanderer", Email: "u@example.com", PasswordHash: hash, PasswordSalt: salt}
	repo := &fakeUserRepo{findByEmailResult: user}
	svc := NewAuthService(repo, newTestTokens())

	got, token, err := svc.Login(context.Background(), " U@Example.com", "right-password")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("unexpected user in result: %+v", got)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	if repo.findByEmailInput != "u@example.com" {
		t.Fatalf("email should be normalized before lookup, got %q", repo.findByEmailInput)
	}
}

func TestAuthenticate(t *testing.T) {
	tokens := newTestTokens()
	user := &domain.User{ID: uuid.New(), Username: "wanderer"}
	repo := &fakeUserRepo{findByIDResult: user}
	svc := NewAuthService(repo, tokens)

	token, _, err := tokens.Generate(user.ID, user.Username)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	got, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("unexpected user: %+v", got)
	}
	if repo.findByIDInput != user.ID {
		t.Fatalf("expected lookup by the token's subject")
	}
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, newTestTokens())

	if _, err := svc.Authenticate(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	tokens := newTestTokens()
	repo := &fakeUserRepo{findByIDErr: sql.ErrNoRows}
	svc := NewAuthService(repo, tokens)

	token, _, err := tokens.Generate(uuid.New(), "ghost")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for deleted user, got %v", err)
	}
}
