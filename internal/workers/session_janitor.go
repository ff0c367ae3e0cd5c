package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Expirer remove sessões ociosas e informa quantas removeu.
type Expirer interface {
	Expire(idle time.Duration) int
}

// SessionJanitor encerra sessões ociosas. Encerrar passa pelo mesmo
// caminho do logout: a unidade é limpa e o cache esvaziado.
type SessionJanitor struct {
	sessions Expirer
	idle     time.Duration
	log      *logrus.Entry
}

func NewSessionJanitor(sessions Expirer, idle time.Duration, log *logrus.Entry) *SessionJanitor {
	return &SessionJanitor{sessions: sessions, idle: idle, log: log}
}

func (j *SessionJanitor) Name() string { return "session_janitor" }

// Interval verifica com frequência suficiente para que nenhuma sessão
// sobreviva muito além do limite.
func (j *SessionJanitor) Interval() time.Duration {
	iv := j.idle / 4
	if iv < time.Minute {
		iv = time.Minute
	}
	return iv
}

func (j *SessionJanitor) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n := j.sessions.Expire(j.idle); n > 0 {
		j.log.WithField("expired", n).Info("🧹 Sessões ociosas encerradas")
	}
	return nil
}
