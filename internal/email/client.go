package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"oitivas-pro/internal/config"
)

// dialer é a parte do gomail.Dialer usada pelo serviço.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	fromName  string
	fromEmail string
	dialer    dialer
}

// NewEmailService cria uma nova instância do serviço de email
func NewEmailService(cfg *config.Config) (*EmailService, error) {
	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		return nil, fmt.Errorf("SMTP credentials not configured")
	}

	d := gomail.NewDialer(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUsername,
		cfg.SMTPPassword,
	)

	return &EmailService{
		fromName:  cfg.SMTPFromName,
		fromEmail: cfg.SMTPFromEmail,
		dialer:    d,
	}, nil
}

// SendEmail envia um email com HTML
func (s *EmailService) SendEmail(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromEmail, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
