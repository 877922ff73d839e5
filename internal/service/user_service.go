package service

import (
	"context"
	"fmt"

	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/repository"
	"github.com/poofware/cinema-api/internal/security"
)

type UserInput struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

func (s *UserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.User], error) {
	return s.users.ListPaged(ctx, req)
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	hash, err := security.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Username = in.Username
	user.Email = in.Email
	if in.Role != "" {
		user.Role = in.Role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != "" {
		hash, err := security.HashPassword(in.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.users.Delete(ctx, id)
}
