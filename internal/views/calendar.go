// Package views deriva das oitivas do cache os modelos de renderização do
// calendário, da agenda, do popover do dia e do relatório mensal. Toda
// projeção é função pura das entradas.
package views

import (
	"time"

	"oitivas-pro/pkg/models"
)

// FullThreshold é a capacidade diária assumida.
const FullThreshold = 8

// Density classifica um dia pelo número de oitivas.
type Density string

const (
	Neutral Density = "neutral"
	Busy    Density = "busy"
	Full    Density = "full"
)

// Classify converte a contagem do dia em densidade.
func Classify(count int) Density {
	switch {
	case count >= FullThreshold:
		return Full
	case count > 0:
		return Busy
	default:
		return Neutral
	}
}

// CountByDate conta os itens por data. Itens sem data são ignorados.
func CountByDate(items []models.Appointment) map[string]int {
	counts := make(map[string]int)
	for _, a := range items {
		if a.Date != "" {
			counts[a.Date]++
		}
	}
	return counts
}

// Window é um intervalo semiaberto de dias [Start, End).
type Window struct {
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

// NewWindow monta uma janela a partir de limites YYYY-MM-DD.
func NewWindow(start, end string) (Window, bool) {
	s, ok := ParseDate(start)
	if !ok {
		return Window{}, false
	}
	e, ok := ParseDate(end)
	if !ok || !s.Before(e) {
		return Window{}, false
	}
	return Window{Start: s, End: e}, true
}

// Contains indica se date cai dentro da janela.
func (w Window) Contains(date string) bool {
	d, ok := ParseDate(date)
	if !ok {
		return false
	}
	return !d.Before(w.Start) && d.Before(w.End)
}

// Days retorna todos os dias da janela em ordem.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MonthCursor é o mês mostrado no calendário.
type MonthCursor struct {
	Year  int
	Month time.Month
}

// CursorFor retorna o cursor do mês que contém t.
func CursorFor(t time.Time) MonthCursor {
	return MonthCursor{Year: t.Year(), Month: t.Month()}
}

// ParseMonth lê YYYY-MM.
func ParseMonth(s string) (MonthCursor, bool) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthCursor{}, false
	}
	return CursorFor(t), true
}

func (c MonthCursor) first() time.Time {
	return time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (c MonthCursor) Prev() MonthCursor { return CursorFor(c.first().AddDate(0, -1, 0)) }
func (c MonthCursor) Next() MonthCursor { return CursorFor(c.first().AddDate(0, 1, 0)) }

// Key gera YYYY-MM.
func (c MonthCursor) Key() string { return c.first().Format("2006-01") }

// Title gera o título do mês em pt-BR com inicial maiúscula.
func (c MonthCursor) Title() string { return MonthTitle(c.Year, c.Month) }

// Window é a grade visível de seis semanas, começando no domingo igual ou
// anterior ao primeiro dia do mês.
func (c MonthCursor) Window() Window {
	first := c.first()
	start := first.AddDate(0, 0, -int(first.Weekday()))
	return Window{Start: start, End: start.AddDate(0, 0, 42)}
}

// DayCell é uma célula da grade do mês.
type DayCell struct {
	Date    string  `json:"date"`
	Day     int     `json:"day"`
	InMonth bool    `json:"inMonth"`
	Today   bool    `json:"today"`
	Count   int     `json:"count"`
	Density Density `json:"density"`
}

// Calendar é o modelo de renderização da grade do mês.
type Calendar struct {
	Month string      `json:"month"`
	Title string      `json:"title"`
	Start string      `json:"start"`
	End   string      `json:"end"`
	Weeks [][]DayCell `json:"weeks"`
}

// MonthGrid monta a grade colorida por densidade para cursor. today é uma
// data YYYY-MM-DD.
func MonthGrid(items []models.Appointment, cursor MonthCursor, today string) Calendar {
	counts := CountByDate(items)
	w := cursor.Window()

	cal := Calendar{
		Month: cursor.Key(),
		Title: cursor.Title(),
		Start: w.Start.Format(DateLayout),
		End:   w.End.Format(DateLayout),
	}

	var week []DayCell
	for _, d := range w.Days() {
		date := d.Format(DateLayout)
		week = append(week, DayCell{
			Date:    date,
			Day:     d.Day(),
			InMonth: d.Month() == cursor.Month,
			Today:   date == today,
			Count:   counts[date],
			Density: Classify(counts[date]),
		})
		if len(week) == 7 {
			cal.Weeks = append(cal.Weeks, week)
			week = nil
		}
	}
	return cal
}
