package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"oitivas-pro/internal/views"
	"oitivas-pro/pkg/models"
)

// Recipient é uma unidade logada que recebe o resumo.
type Recipient struct {
	Email string
	Unit  string
	Items []models.Appointment
}

// Mailer envia a agenda do dia.
type Mailer interface {
	SendDailyDigest(to, unit string, day time.Time, agenda views.Agenda) error
}

// Scheduler dispara o resumo diário no horário configurado.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	mailer     Mailer
	recipients func() []Recipient
	loc        *time.Location
	log        *logrus.Entry
	now        func() time.Time
}

func NewScheduler(spec string, loc *time.Location, mailer Mailer, recipients func() []Recipient, log *logrus.Entry) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid DIGEST_CRON %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		spec:       spec,
		mailer:     mailer,
		recipients: recipients,
		loc:        loc,
		log:        log,
		now:        time.Now,
	}, nil
}

// Start registra o job e inicia o cron. Stop é chamado quando ctx termina.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.SendDigests() }); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}
	s.cron.Start()
	s.log.WithField("cron", s.spec).Info("⏰ Scheduler iniciado")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop aguarda o job em execução terminar.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// SendDigests envia a agenda de hoje para cada unidade com oitivas no dia.
// Retorna quantos emails foram enviados.
func (s *Scheduler) SendDigests() int {
	today := s.now().In(s.loc)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	window := views.Window{Start: day, End: day.AddDate(0, 0, 1)}

	sent := 0
	for _, r := range s.recipients() {
		agenda := views.DayAgenda(r.Items, window)
		if len(agenda.Items) == 0 || r.Email == "" {
			continue
		}
		if err := s.mailer.SendDailyDigest(r.Email, r.Unit, day, agenda); err != nil {
			s.log.WithError(err).WithField("unit", r.Unit).Error("❌ Erro ao enviar resumo diário")
			continue
		}
		sent++
	}

	s.log.WithField("sent", sent).Info("📧 Resumos diários enviados")
	return sent
}
