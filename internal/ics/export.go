// Package ics exporta as oitivas da unidade como feed iCalendar.
package ics

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"oitivas-pro/pkg/models"
)

// DefaultDuration é a duração dada a toda oitiva exportada.
const DefaultDuration = time.Hour

const productID = "-//OitivasPro//Agenda de Oitivas//PT-BR"

// Export gera items como VCALENDAR, com horários em loc. Itens sem data
// válida são ignorados; horário ausente ou inválido vira meia-noite.
func Export(items []models.Appointment, unit string, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Oitivas - " + unit)
	cal.SetXWRTimezone(loc.String())

	for _, a := range models.Sorted(items) {
		start, ok := startOf(a, loc)
		if !ok {
			continue
		}

		ev := cal.AddEvent(a.ID + "@oitivas-pro")
		ev.SetDtStampTime(now)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(DefaultDuration))
		ev.SetSummary(summary(a))
		ev.SetDescription(description(a))
		if a.Mode != "" {
			ev.SetLocation(a.Mode)
		}
		ev.SetStatus(ical.ObjectStatusConfirmed)
		if t, err := time.Parse(time.RFC3339, a.UpdatedAt); err == nil {
			ev.SetModifiedAt(t)
		}
	}

	return cal.Serialize()
}

func startOf(a models.Appointment, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation("2006-01-02", a.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", a.SortTime())
	if err != nil {
		return day, true
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), true
}

func summary(a models.Appointment) string {
	s := "Oitiva: " + a.Name
	if a.Type != "" {
		s += " (" + a.Type + ")"
	}
	if a.IsDone() {
		s += " ✔"
	}
	return s
}

func description(a models.Appointment) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	proc := a.Proc
	if proc == "" {
		proc = "S/N"
	}
	add("Procedimento", proc)
	add("Telefone", a.Phone)
	add("Delegado", a.Delegate)
	add("Agente", a.Agent)
	add("Status", a.Status)
	add("Obs", a.Obs)
	return strings.Join(lines, "\n")
}
