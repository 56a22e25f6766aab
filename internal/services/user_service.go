package services

import (
	"context"
	"errors"
	"strings"

	"ecanteen/internal/models"
	"ecanteen/internal/repositories"
)

type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.User, error)
}

type userService struct {
	repo repositories.UserRepository
}

func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, persistence(err)
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.User, error) {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(upd.Fullname)
	trim(upd.Phone)
	trim(upd.Address)
	trim(upd.Avatar)

	if upd.Fullname != nil && len([]rune(*upd.Fullname)) < minFullnameLen {
		return nil, invalid("fullname", "full name must be at least 2 characters")
	}

	u, err := s.repo.UpdateProfile(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, persistence(err)
	}
	return u, nil
}
