// Package identity signs users up and in and issues the session tokens the
// API authenticates with.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ROAMMATE_BACK-END/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// Credential is the result of a successful sign-in or sign-up.
type Credential struct {
	UserID    string
	Email     string
	Name      string
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// Provider is the identity collaborator used by the HTTP layer.
type Provider interface {
	SignUp(ctx context.Context, email, password, name string) (Credential, error)
	SignIn(ctx context.Context, email, password string) (Credential, error)
	// SignInFederated signs in a user already verified by an external provider,
	// creating the account on first use.
	SignInFederated(ctx context.Context, email, name, provider string) (Credential, error)
	VerifyToken(token string) (Claims, error)
	// DeleteUser removes an account. Deleting a missing account is not an error.
	DeleteUser(ctx context.Context, userID string) error
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u models.User) error
	// GetUserByEmail returns ErrUserNotFound when no account matches.
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// Service implements Provider over a UserStore with bcrypt passwords.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
	cost   int
	log    *zap.Logger
}

func NewService(users UserStore, tokens *TokenIssuer, bcryptCost int, log *zap.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, tokens: tokens, cost: bcryptCost, log: log}
}

func (s *Service) SignUp(ctx context.Context, email, password, name string) (Credential, error) {
	email = normalizeEmail(email)
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return Credential{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return Credential{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Credential{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	u := models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashed),
		Provider:     models.ProviderPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return Credential{}, err
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID.String()))
	return s.issue(u)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Credential, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return Credential{}, ErrInvalidCredentials
	}
	if err != nil {
		return Credential{}, err
	}
	if u.PasswordHash == "" {
		// federated-only account
		return Credential{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Credential{}, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *Service) SignInFederated(ctx context.Context, email, name, provider string) (Credential, error) {
	email = normalizeEmail(email)
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		now := time.Now()
		u = models.User{
			ID:        uuid.New(),
			Email:     email,
			Name:      strings.TrimSpace(name),
			Provider:  provider,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.users.CreateUser(ctx, u); err != nil {
			return Credential{}, err
		}
		s.log.Info("federated user created", zap.String("user_id", u.ID.String()), zap.String("provider", provider))
	} else if err != nil {
		return Credential{}, err
	}
	return s.issue(u)
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user_id", userID))
	return nil
}

func (s *Service) VerifyToken(token string) (Claims, error) {
	return s.tokens.Verify(token)
}

func (s *Service) issue(u models.User) (Credential, error) {
	sessionID := uuid.NewString()
	token, exp, err := s.tokens.Issue(u.ID.String(), u.Email, u.Name, sessionID)
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		UserID:    u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: exp,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
