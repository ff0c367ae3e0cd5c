package email

import (
	"fmt"
	"time"

	"oitivas-pro/internal/views"
)

// SendDailyDigest envia a agenda do dia para a unidade
func (s *EmailService) SendDailyDigest(to, unit string, day time.Time, agenda views.Agenda) error {
	subject := fmt.Sprintf("📋 Oitivas de %s - %s", day.Format("02/01/2006"), unit)
	htmlBody := DailyDigestTemplate(unit, day, agenda)

	if err := s.SendEmail(to, subject, htmlBody); err != nil {
		return err
	}
	return nil
}
