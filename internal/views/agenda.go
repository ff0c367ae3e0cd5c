package views

import (
	"oitivas-pro/pkg/models"
)

const (
	NoProc     = "S/N"
	NoTime     = "--:--"
	NoName     = "Sem nome"
	NoType     = "Sem tipo"
	NoSchedule = "Sem agendamentos."
)

// Cores de destaque da borda esquerda de cada linha.
const (
	AccentDefault     = "slate"
	AccentInvestigado = "rose"
	AccentVitima      = "amber"
	AccentDone        = "emerald"
)

// Accent define o destaque da linha. Realizada vence o tipo; tipos
// desconhecidos recebem o padrão.
func Accent(a models.Appointment) string {
	if a.IsDone() {
		return AccentDone
	}
	switch a.Type {
	case models.TypeInvestigado:
		return AccentInvestigado
	case models.TypeVitima:
		return AccentVitima
	default:
		return AccentDefault
	}
}

// AgendaItem é uma linha da lista lateral.
type AgendaItem struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Day    int    `json:"day"`
	Month  string `json:"month"`
	Name   string `json:"name"`
	Time   string `json:"time"`
	Proc   string `json:"proc"`
	Done   bool   `json:"done"`
	Accent string `json:"accent"`
}

// Agenda é o modelo de renderização da lista lateral.
type Agenda struct {
	Items   []AgendaItem `json:"items"`
	Message string       `json:"message,omitempty"`
}

// DayAgenda seleciona os itens dentro de w, ordenados por (data, hora). O
// status não afeta a seleção.
func DayAgenda(items []models.Appointment, w Window) Agenda {
	var selected []models.Appointment
	for _, a := range items {
		if w.Contains(a.Date) {
			selected = append(selected, a)
		}
	}
	models.SortChronologically(selected)

	agenda := Agenda{Items: make([]AgendaItem, 0, len(selected))}
	for _, a := range selected {
		d, _ := ParseDate(a.Date)
		proc := a.Proc
		if proc == "" {
			proc = NoProc
		}
		agenda.Items = append(agenda.Items, AgendaItem{
			ID:     a.ID,
			Date:   a.Date,
			Day:    d.Day(),
			Month:  ShortMonth(d.Month()),
			Name:   a.Name,
			Time:   a.Time,
			Proc:   proc,
			Done:   a.IsDone(),
			Accent: Accent(a),
		})
	}
	if len(agenda.Items) == 0 {
		agenda.Message = NoSchedule
	}
	return agenda
}
