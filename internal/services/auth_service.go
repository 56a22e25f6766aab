package services

import (
	"golang.org/x/crypto/bcrypt"
)

const PasswordHashCost = 12

type AuthService interface {
	HashPassword(password string) (string, error)
	ComparePassword(hash, password string) error
}

type authService struct {
	cost int
}

func NewAuthService() AuthService {
	return &authService{cost: PasswordHashCost}
}

func (s *authService) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *authService) ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
