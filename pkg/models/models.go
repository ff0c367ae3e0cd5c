package models

import (
	"sort"
	"strings"
)

// Tipos de oitiva conhecidos. O conjunto é aberto: valores desconhecidos
// continuam válidos e recebem o estilo padrão na apresentação.
const (
	TypeInvestigado = "Investigado"
	TypeVitima      = "Vítima"
	TypeTestemunha  = "Testemunha"
	TypeDenunciante = "Denunciante"
)

const (
	StatusPendente  = "pendente"
	StatusRealizada = "realizada"
)

const (
	ModePresencial = "Presencial"
	DefaultTime    = "10:00"
	// MissingTime é usado na ordenação quando o horário está ausente.
	MissingTime = "00:00"
)

// KnownTypes lista os tipos oferecidos no formulário.
var KnownTypes = []string{TypeInvestigado, TypeVitima, TypeTestemunha, TypeDenunciante}

// Appointment é uma oitiva agendada. ID é a chave do documento no store
// remoto e nunca é gravado dentro do valor.
type Appointment struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Mode      string `json:"mode,omitempty"`
	Proc      string `json:"proc,omitempty"`
	Delegate  string `json:"delegate,omitempty"`
	Agent     string `json:"agent,omitempty"`
	Obs       string `json:"obs,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
	Unit      string `json:"unit,omitempty"`
}

// IsDone indica se a oitiva já foi realizada.
func (a Appointment) IsDone() bool {
	return a.Status == StatusRealizada
}

// SortTime devolve o horário usado para ordenação.
func (a Appointment) SortTime() string {
	if a.Time == "" {
		return MissingTime
	}
	return a.Time
}

// MonthKey devolve o prefixo YYYY-MM da data, ou "" se a data não tiver
// tamanho suficiente.
func (a Appointment) MonthKey() string {
	if len(a.Date) < 7 {
		return ""
	}
	return a.Date[:7]
}

// Fields devolve o valor a ser persistido, sem o ID.
func (a Appointment) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"name":     a.Name,
		"phone":    a.Phone,
		"type":     a.Type,
		"date":     a.Date,
		"time":     a.Time,
		"mode":     a.Mode,
		"proc":     a.Proc,
		"delegate": a.Delegate,
		"agent":    a.Agent,
		"obs":      a.Obs,
		"status":   a.Status,
	}
	for key, value := range map[string]string{
		"createdAt": a.CreatedAt,
		"updatedAt": a.UpdatedAt,
		"createdBy": a.CreatedBy,
		"unit":      a.Unit,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

// Before indica se a vem antes de b na ordem (data, hora).
func Before(a, b Appointment) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.SortTime() < b.SortTime()
}

// SortChronologically ordena items no lugar por (data, hora). Empates
// mantêm a ordem de entrada.
func SortChronologically(items []Appointment) {
	sort.SliceStable(items, func(i, j int) bool {
		return Before(items[i], items[j])
	})
}

// Sorted retorna uma cópia de items em ordem cronológica.
func Sorted(items []Appointment) []Appointment {
	out := make([]Appointment, len(items))
	copy(out, items)
	SortChronologically(out)
	return out
}

// UnitName é o nome de exibição da unidade: a parte local do e-mail.
func UnitName(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// DisplayDate formata uma data YYYY-MM-DD como DD/MM/YYYY. Outras entradas
// voltam sem alteração.
func DisplayDate(date string) string {
	if len(date) != 10 || date[4] != '-' || date[7] != '-' {
		return date
	}
	return date[8:10] + "/" + date[5:7] + "/" + date[0:4]
}
