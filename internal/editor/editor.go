// Package editor cuida do formulário de oitiva: valores padrão, validação
// e envio único ao store.
package editor

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"oitivas-pro/pkg/apperr"
	"oitivas-pro/pkg/models"
)

const SavedMessage = "Salvo com sucesso!"

// Form é o estado editável de uma oitiva. ID vazio significa criação.
type Form struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Type     string `json:"type"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Mode     string `json:"mode"`
	Proc     string `json:"proc"`
	Delegate string `json:"delegate"`
	Agent    string `json:"agent"`
	Obs      string `json:"obs"`
	Done     bool   `json:"done"`
}

// NewForm retorna um formulário vazio em date, ou hoje se date for vazio.
func NewForm(date, today string) Form {
	if date == "" {
		date = today
	}
	return Form{
		Date: date,
		Time: models.DefaultTime,
		Mode: models.ModePresencial,
	}
}

// FormFrom carrega um registro existente no formulário.
func FormFrom(a models.Appointment) Form {
	mode := a.Mode
	if mode == "" {
		mode = models.ModePresencial
	}
	return Form{
		ID:       a.ID,
		Name:     a.Name,
		Phone:    a.Phone,
		Type:     a.Type,
		Date:     a.Date,
		Time:     a.Time,
		Mode:     mode,
		Proc:     a.Proc,
		Delegate: a.Delegate,
		Agent:    a.Agent,
		Obs:      a.Obs,
		Done:     a.IsDone(),
	}
}

// IsEdit indica se o envio atualiza um registro existente.
func (f Form) IsEdit() bool { return f.ID != "" }

// Trimmed retorna f sem espaços nas pontas de todos os campos, exceto
// as observações.
func (f Form) Trimmed() Form {
	for _, s := range []*string{&f.ID, &f.Name, &f.Phone, &f.Type, &f.Date, &f.Time, &f.Mode, &f.Proc, &f.Delegate, &f.Agent} {
		*s = strings.TrimSpace(*s)
	}
	return f
}

// Validate confere os campos obrigatórios e o formato de data e hora.
func (f Form) Validate() error {
	var problems []string
	if f.Name == "" {
		problems = append(problems, "nome obrigatório")
	}
	if f.Type == "" {
		problems = append(problems, "tipo obrigatório")
	}
	switch {
	case f.Date == "":
		problems = append(problems, "data obrigatória")
	case !validLayout("2006-01-02", f.Date):
		problems = append(problems, "data inválida")
	}
	switch {
	case f.Time == "":
		problems = append(problems, "horário obrigatório")
	case !validLayout("15:04", f.Time):
		problems = append(problems, "horário inválido")
	}

	if len(problems) > 0 {
		return apperr.ErrValidation.WithDetails(strings.Join(problems, ", "))
	}
	return nil
}

func validLayout(layout, value string) bool {
	_, err := time.Parse(layout, value)
	return err == nil
}

func (f Form) status() string {
	if f.Done {
		return models.StatusRealizada
	}
	return models.StatusPendente
}

// Appointment converte o formulário num registro sem autoria.
func (f Form) Appointment() models.Appointment {
	return models.Appointment{
		ID:       f.ID,
		Name:     f.Name,
		Phone:    f.Phone,
		Type:     f.Type,
		Date:     f.Date,
		Time:     f.Time,
		Mode:     f.Mode,
		Proc:     f.Proc,
		Delegate: f.Delegate,
		Agent:    f.Agent,
		Obs:      f.Obs,
		Status:   f.status(),
	}
}

// Fields é o valor parcial gravado na edição: só os campos do usuário.
func (f Form) Fields() map[string]interface{} {
	return f.Appointment().Fields()
}

// Writer é a parte do store usada pelo editor para gravar.
type Writer interface {
	Create(ctx context.Context, a models.Appointment) (models.Appointment, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

// Result de um envio bem-sucedido.
type Result struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// Editor é o modal. Guarda o formulário aberto e garante uma gravação
// por vez.
type Editor struct {
	store Writer
	log   *logrus.Entry
	busy  atomic.Bool

	mu   sync.Mutex
	form *Form
}

func New(store Writer, log *logrus.Entry) *Editor {
	return &Editor{store: store, log: log}
}

// Open mostra f no editor.
func (e *Editor) Open(f Form) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = &f
}

// Close esconde o editor e descarta o formulário.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = nil
}

// Current retorna o formulário aberto.
func (e *Editor) Current() (Form, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.form == nil {
		return Form{}, false
	}
	return *e.form, true
}

// Busy indica se há envio em andamento.
func (e *Editor) Busy() bool { return e.busy.Load() }

// Submit valida f e grava. Uma segunda chamada durante o envio falha com
// ErrBusy. Com sucesso o editor fecha; com falha continua aberto com f
// intacto.
func (e *Editor) Submit(ctx context.Context, f Form) (Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return Result{}, apperr.ErrBusy
	}
	defer e.busy.Store(false)

	f = f.Trimmed()
	e.Open(f)

	if err := f.Validate(); err != nil {
		return Result{}, err
	}

	var res Result
	if f.IsEdit() {
		if err := e.store.Update(ctx, f.ID, f.Fields()); err != nil {
			e.log.WithError(err).WithField("id", f.ID).Warn("⚠️ Falha ao salvar oitiva")
			return Result{}, err
		}
		res = Result{ID: f.ID, Message: SavedMessage}
	} else {
		created, err := e.store.Create(ctx, f.Appointment())
		if err != nil {
			e.log.WithError(err).Warn("⚠️ Falha ao salvar oitiva")
			return Result{}, err
		}
		res = Result{ID: created.ID, Created: true, Message: SavedMessage}
	}

	e.Close()
	return res, nil
}
