package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ecanteen/internal/logger"
	"ecanteen/internal/metrics"
	"ecanteen/internal/models"
	"ecanteen/internal/repositories"
	"ecanteen/internal/utils"
)

const DefaultPasscodeTTL = 10 * time.Minute

// Ticket is a passcode that passed validation and is not consumed yet. Flows
// that mutate an account hold it until the mutation is committed.
type Ticket struct {
	PasscodeID  int64
	Email       string
	Purpose     models.PasscodePurpose
	ValidatedAt time.Time
}

type PasscodeService interface {
	Issue(ctx context.Context, email string, purpose models.PasscodePurpose) (*models.Passcode, error)
	Validate(ctx context.Context, email, code string, purpose models.PasscodePurpose) (*Ticket, error)
	Consume(ctx context.Context, t *Ticket) error
	ConsumeCode(ctx context.Context, email, code string, purpose models.PasscodePurpose) error
}

type passcodeService struct {
	repo        repositories.PasscodeRepository
	mailer      EmailService
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
	newCode     func() (string, error)
	log         *zap.Logger
}

type PasscodeOption func(*passcodeService)

func WithPasscodeTTL(ttl time.Duration) PasscodeOption {
	return func(s *passcodeService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxAttempts burns the active passcode after n failed checks. 0 disables it.
func WithMaxAttempts(n int) PasscodeOption {
	return func(s *passcodeService) {
		if n >= 0 {
			s.maxAttempts = n
		}
	}
}

func WithPasscodeClock(now func() time.Time) PasscodeOption {
	return func(s *passcodeService) {
		if now != nil {
			s.now = now
		}
	}
}

func withCodeSource(gen func() (string, error)) PasscodeOption {
	return func(s *passcodeService) { s.newCode = gen }
}

func NewPasscodeService(repo repositories.PasscodeRepository, mailer EmailService, opts ...PasscodeOption) PasscodeService {
	s := &passcodeService{
		repo:    repo,
		mailer:  mailer,
		ttl:     DefaultPasscodeTTL,
		now:     time.Now,
		newCode: utils.NewNumericCode,
		log:     logger.WithModule("passcode"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *passcodeService) Issue(ctx context.Context, email string, purpose models.PasscodePurpose) (*models.Passcode, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid("email", "email is required")
	}
	if !purpose.Valid() {
		return nil, invalid("purpose", "unknown passcode purpose")
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate passcode: %w", err)
	}
	now := s.now()
	p := &models.Passcode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.repo.Supersede(ctx, p); err != nil {
		s.log.Error("store passcode failed",
			zap.String("email", email), zap.String("purpose", string(purpose)), zap.Error(err))
		metrics.PasscodesIssued.WithLabelValues(string(purpose), "store_failed").Inc()
		return nil, persistence(err)
	}

	body, err := renderPasscodeMail(purpose, code, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("render passcode mail: %w", err)
	}
	if err := s.mailer.Send(email, passcodeSubject(purpose), body); err != nil {
		// the stored code stays valid but undelivered until the next Issue supersedes it
		s.log.Error("send passcode failed",
			zap.String("email", email), zap.String("purpose", string(purpose)),
			zap.Int64("passcode_id", p.ID), zap.Error(err))
		metrics.PasscodesIssued.WithLabelValues(string(purpose), "send_failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrDispatchFailure, err)
	}

	metrics.PasscodesIssued.WithLabelValues(string(purpose), "ok").Inc()
	s.log.Info("passcode issued",
		zap.String("email", email), zap.String("purpose", string(purpose)),
		zap.Int64("passcode_id", p.ID), zap.Time("expires_at", p.ExpiresAt))
	return p, nil
}

func (s *passcodeService) Validate(ctx context.Context, email, code string, purpose models.PasscodePurpose) (*Ticket, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if !purpose.Valid() {
		return nil, invalid("purpose", "unknown passcode purpose")
	}
	now := s.now()

	if !utils.IsNumericCode(code) {
		s.reject(ctx, email, purpose, "malformed", now)
		return nil, ErrInvalidOrExpiredCode
	}

	p, err := s.repo.FindActive(ctx, email, code, purpose, now)
	if err != nil {
		s.log.Error("passcode lookup failed",
			zap.String("email", email), zap.String("purpose", string(purpose)), zap.Error(err))
		return nil, persistence(err)
	}
	if p == nil {
		s.reject(ctx, email, purpose, s.diagnose(ctx, email, code, purpose, now), now)
		return nil, ErrInvalidOrExpiredCode
	}

	metrics.PasscodeChecks.WithLabelValues(string(purpose), "ok").Inc()
	return &Ticket{
		PasscodeID:  p.ID,
		Email:       email,
		Purpose:     purpose,
		ValidatedAt: now,
	}, nil
}

// diagnose explains a failed lookup for the logs only.
func (s *passcodeService) diagnose(ctx context.Context, email, code string, purpose models.PasscodePurpose, now time.Time) string {
	latest, err := s.repo.FindLatest(ctx, email, code, purpose)
	if err != nil || latest == nil {
		return "wrong_code"
	}
	return string(latest.State(now))
}

func (s *passcodeService) reject(ctx context.Context, email string, purpose models.PasscodePurpose, cause string, now time.Time) {
	metrics.PasscodeChecks.WithLabelValues(string(purpose), cause).Inc()
	s.log.Warn("passcode rejected",
		zap.String("email", email), zap.String("purpose", string(purpose)), zap.String("cause", cause))

	attempts, err := s.repo.IncrementAttempts(ctx, email, purpose, now)
	if err != nil {
		s.log.Warn("passcode attempts not recorded", zap.String("email", email), zap.Error(err))
		return
	}
	if s.maxAttempts > 0 && attempts >= s.maxAttempts {
		if err := s.repo.ConsumeActive(ctx, email, purpose); err != nil {
			s.log.Error("burn passcode failed", zap.String("email", email), zap.Error(err))
			return
		}
		s.log.Warn("passcode burned after too many attempts",
			zap.String("email", email), zap.String("purpose", string(purpose)), zap.Int("attempts", attempts))
	}
}

func (s *passcodeService) Consume(ctx context.Context, t *Ticket) error {
	if t == nil {
		return errors.New("consume: nil ticket")
	}
	if err := s.repo.MarkConsumed(ctx, t.PasscodeID); err != nil {
		s.log.Error("consume passcode failed", zap.Int64("passcode_id", t.PasscodeID), zap.Error(err))
		return persistence(err)
	}
	return nil
}

func (s *passcodeService) ConsumeCode(ctx context.Context, email, code string, purpose models.PasscodePurpose) error {
	if err := s.repo.MarkConsumedByCode(ctx, normalizeEmail(email), strings.TrimSpace(code), purpose); err != nil {
		return persistence(err)
	}
	return nil
}
