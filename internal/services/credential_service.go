package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ecanteen/internal/authz"
	"ecanteen/internal/logger"
	"ecanteen/internal/models"
	"ecanteen/internal/repositories"
)

const (
	minPasswordLen = 6
	minFullnameLen = 2
)

type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	OTP      string `json:"otp"`
}

// RegisterResult is either a pending verification (RequiresOTP) or a new session.
type RegisterResult struct {
	RequiresOTP bool
	Email       string
	Auth        *AuthResult
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// CredentialService runs the account flows that are gated on an emailed passcode.
type CredentialService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error)
	ResendVerification(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	CheckResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	Login(ctx context.Context, email, password, role string) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
}

type credentialService struct {
	users     repositories.UserRepository
	passcodes PasscodeService
	hasher    AuthService
	tokens    TokenIssuer
	validate  *validator.Validate
	log       *zap.Logger
}

func NewCredentialService(users repositories.UserRepository, passcodes PasscodeService, hasher AuthService, tokens TokenIssuer) CredentialService {
	return &credentialService{
		users:     users,
		passcodes: passcodes,
		hasher:    hasher,
		tokens:    tokens,
		validate:  validator.New(),
		log:       logger.WithModule("credentials"),
	}
}

func (s *credentialService) checkEmail(email string) error {
	if email == "" {
		return invalid("email", "email is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return invalid("email", "please provide a valid email")
	}
	return nil
}

func checkPassword(field, password string) error {
	if len(password) < minPasswordLen {
		return invalid(field, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	return nil
}

// lookup maps a missing identity onto ErrIdentityNotFound and anything else onto a store failure.
func (s *credentialService) lookup(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, repositories.ErrNotFound):
		return nil, ErrIdentityNotFound
	default:
		s.log.Error("user lookup failed", zap.String("email", email), zap.Error(err))
		return nil, persistence(err)
	}
}

func (s *credentialService) session(u *models.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		s.log.Error("issue session failed", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// finish consumes a ticket after the guarded write committed. The write stands
// even if the consume fails; the code then lapses with its TTL.
func (s *credentialService) finish(ctx context.Context, t *Ticket) {
	if err := s.passcodes.Consume(ctx, t); err != nil {
		s.log.Error("consume after commit failed",
			zap.String("email", t.Email), zap.String("purpose", string(t.Purpose)), zap.Error(err))
	}
}

func (s *credentialService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := normalizeEmail(in.Email)
	fullname := strings.TrimSpace(in.Fullname)
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = authz.RoleUser
	}

	if len([]rune(fullname)) < minFullnameLen {
		return nil, invalid("fullname", "full name must be at least 2 characters")
	}
	if err := s.checkEmail(email); err != nil {
		return nil, err
	}
	if err := checkPassword("password", in.Password); err != nil {
		return nil, err
	}
	if !authz.SelfAssignable(role) {
		return nil, invalid("role", "role must be user or seller")
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrIdentityExists
	case !errors.Is(err, repositories.ErrNotFound):
		s.log.Error("user lookup failed", zap.String("email", email), zap.Error(err))
		return nil, persistence(err)
	}

	code := strings.TrimSpace(in.OTP)
	if code == "" {
		// phase one writes nothing to the user store
		if _, err := s.passcodes.Issue(ctx, email, models.PurposeEmailVerification); err != nil {
			return nil, err
		}
		return &RegisterResult{RequiresOTP: true, Email: email}, nil
	}

	ticket, err := s.passcodes.Validate(ctx, email, code, models.PurposeEmailVerification)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Fullname:      fullname,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		EmailVerified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrIdentityExists
		}
		s.log.Error("create user failed", zap.String("email", email), zap.Error(err))
		return nil, persistence(err)
	}
	s.finish(ctx, ticket)

	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", role))
	auth, err := s.session(user)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Email: email, Auth: auth}, nil
}

func (s *credentialService) VerifyEmail(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return nil, err
	}

	ticket, err := s.passcodes.Validate(ctx, email, code, models.PurposeEmailVerification)
	if err != nil {
		return nil, err
	}

	user, err := s.users.MarkVerified(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		s.log.Error("mark verified failed", zap.String("email", email), zap.Error(err))
		return nil, persistence(err)
	}
	s.finish(ctx, ticket)

	return s.session(user)
}

func (s *credentialService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	user, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return invalid("email", "email is already verified")
	}
	_, err = s.passcodes.Issue(ctx, email, models.PurposeEmailVerification)
	return err
}

func (s *credentialService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	if _, err := s.lookup(ctx, email); err != nil {
		return err
	}
	_, err := s.passcodes.Issue(ctx, email, models.PurposePasswordReset)
	return err
}

func (s *credentialService) CheckResetCode(ctx context.Context, email, code string) error {
	_, err := s.passcodes.Validate(ctx, email, code, models.PurposePasswordReset)
	return err
}

// ResetPassword consumes the code only once the new hash is stored, so a
// failed write leaves the same code usable for a retry.
func (s *credentialService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	if err := checkPassword("newPassword", newPassword); err != nil {
		return err
	}

	ticket, err := s.passcodes.Validate(ctx, email, code, models.PurposePasswordReset)
	if err != nil {
		return err
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrIdentityNotFound
		}
		s.log.Error("store new password failed", zap.String("email", email), zap.Error(err))
		return persistence(err)
	}
	s.finish(ctx, ticket)

	s.log.Info("password reset", zap.String("email", email))
	return nil
}

func (s *credentialService) Login(ctx context.Context, email, password, role string) (*AuthResult, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.log.Error("user lookup failed", zap.String("email", email), zap.Error(err))
		return nil, persistence(err)
	}

	if role = strings.TrimSpace(role); role != "" && user.Role != role {
		return nil, invalid("role", fmt.Sprintf("invalid role selection, your role is %s", user.Role))
	}
	if err := s.hasher.ComparePassword(user.PasswordHash, password); err != nil {
		s.log.Info("login rejected", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *credentialService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if err := checkPassword("newPassword", next); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrIdentityNotFound
		}
		return persistence(err)
	}
	if err := s.hasher.ComparePassword(user.PasswordHash, current); err != nil {
		return invalid("currentPassword", "current password is incorrect")
	}

	hash, err := s.hasher.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.Email, hash); err != nil {
		s.log.Error("change password failed", zap.Int64("user_id", userID), zap.Error(err))
		return persistence(err)
	}
	return nil
}
