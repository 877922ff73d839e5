package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/repository"
	"github.com/poofware/cinema-api/internal/security"
)

var (
	// ErrInvalidCredentials covers unknown username, inactive account and
	// wrong password alike so the response never reveals which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingJTI         = errors.New("token id (jti) not found in token")
	ErrInvalidExpiry      = errors.New("invalid token expiration claim")
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuthService struct {
	users      repository.UserRepository
	jwtMgr     *security.JWTManager
	blacklist  TokenBlacklist
	tokenTTL   time.Duration
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, jwtMgr *security.JWTManager, blacklist TokenBlacklist, tokenTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		jwtMgr:     jwtMgr,
		blacklist:  blacklist,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	token, err := s.jwtMgr.Sign(user, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, "", repository.ErrDuplicateUser
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, "", repository.ErrDuplicateUser
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", fmt.Errorf("lookup email: %w", err)
	}

	hash, err := security.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
	}
	// Unique indexes are the backstop for concurrent registrations that
	// pass the pre-checks above.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := s.jwtMgr.Sign(user, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// Logout blacklists the presented token for the remainder of its lifetime.
// An already-expired token is a no-op success: there is nothing left to
// revoke. A store failure surfaces as an error so a logged-out token can
// never silently stay valid.
func (s *AuthService) Logout(ctx context.Context, claims *security.Claims) error {
	if claims == nil || claims.ID == "" {
		return ErrMissingJTI
	}
	if claims.ExpiresAt == nil {
		return ErrInvalidExpiry
	}
	exp := claims.ExpiresAt.Time
	if exp.Unix() <= 0 {
		return ErrInvalidExpiry
	}
	remaining := exp.Sub(time.Now().UTC())
	if remaining <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, RevokedMarker, remaining); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}
