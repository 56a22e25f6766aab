package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailService is the outbound mail channel.
type EmailService interface {
	Send(to, subject, htmlBody string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	dialer.SSL = smtpPort == 465
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
