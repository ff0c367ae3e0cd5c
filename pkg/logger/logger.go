package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const maxRecent = 100

// Logger envolve o logrus.Logger e guarda as linhas mais recentes em
// memória para o endpoint /api/logs.
type Logger struct {
	*logrus.Logger
	recent *recentHook
}

// New cria um logger. format é "json" ou "text"; nível desconhecido vira
// info.
func New(level, format string) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}
	log.SetOutput(os.Stdout)

	hook := &recentHook{}
	log.AddHook(hook)

	return &Logger{Logger: log, recent: hook}
}

// Discard retorna um logger que não escreve nada. Usado nos testes.
func Discard() *Logger {
	l := New("debug", "text")
	l.SetOutput(io.Discard)
	return l
}

// WithComponent cria uma entry marcada com o nome do componente.
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.Logger.WithField("component", component)
}

// WithSession cria uma entry marcada com o prefixo do token da sessão.
func (l *Logger) WithSession(token string) *logrus.Entry {
	if len(token) > 8 {
		token = token[:8]
	}
	return l.Logger.WithField("session", token)
}

// WithTenant cria uma entry marcada com o identificador da unidade.
func (l *Logger) WithTenant(tenantID string) *logrus.Entry {
	return l.Logger.WithField("tenant", tenantID)
}

// Recent retorna uma cópia das linhas guardadas, da mais antiga à mais nova.
func (l *Logger) Recent() []string {
	return l.recent.lines()
}

type recentHook struct {
	mu      sync.RWMutex
	entries []string
}

func (h *recentHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *recentHook) Fire(e *logrus.Entry) error {
	line := fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), strings.TrimRight(e.Message, "\n"))
	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for k, v := range e.Data {
			keys = append(keys, fmt.Sprintf("%s=%v", k, v))
		}
		sort.Strings(keys)
		line += " " + strings.Join(keys, " ")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, line)
	if len(h.entries) > maxRecent {
		h.entries = h.entries[len(h.entries)-maxRecent:]
	}
	return nil
}

func (h *recentHook) lines() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Since formata a duração decorrida em milissegundos para campos de log.
func Since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
