package views

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oitivas-pro/pkg/models"
)

func appts(date string, n int) []models.Appointment {
	out := make([]models.Appointment, n)
	for i := range out {
		out[i] = models.Appointment{ID: fmt.Sprintf("%s-%d", date, i), Name: "X", Date: date}
	}
	return out
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Neutral, Classify(0))
	assert.Equal(t, Busy, Classify(1))
	assert.Equal(t, Busy, Classify(7))
	assert.Equal(t, Full, Classify(8))
	assert.Equal(t, Full, Classify(12))
}

func TestMonthGrid(t *testing.T) {
	items := append(appts("2025-03-10", 1), appts("2025-03-11", 8)...)
	items = append(items, appts("2025-03-12", 7)...)
	items = append(items, models.Appointment{ID: "nodate"})

	cal := MonthGrid(items, MonthCursor{Year: 2025, Month: time.March}, "2025-03-11")

	assert.Equal(t, "Março de 2025", cal.Title)
	assert.Equal(t, "2025-03", cal.Month)
	assert.Equal(t, "2025-02-23", cal.Start)
	assert.Equal(t, "2025-04-06", cal.End)
	require.Len(t, cal.Weeks, 6)
	for _, w := range cal.Weeks {
		require.Len(t, w, 7)
	}

	first := cal.Weeks[0][0]
	assert.Equal(t, "2025-02-23", first.Date)
	assert.False(t, first.InMonth)

	cells := map[string]DayCell{}
	for _, w := range cal.Weeks {
		for _, c := range w {
			cells[c.Date] = c
		}
	}
	assert.Equal(t, Busy, cells["2025-03-10"].Density)
	assert.Equal(t, 1, cells["2025-03-10"].Count)
	assert.Equal(t, Full, cells["2025-03-11"].Density)
	assert.True(t, cells["2025-03-11"].Today)
	assert.Equal(t, Busy, cells["2025-03-12"].Density)
	assert.Equal(t, Neutral, cells["2025-03-13"].Density)
}

func TestMonthCursorNavigation(t *testing.T) {
	c := MonthCursor{Year: 2025, Month: time.January}
	assert.Equal(t, MonthCursor{Year: 2024, Month: time.December}, c.Prev())
	assert.Equal(t, MonthCursor{Year: 2025, Month: time.February}, c.Next())
	assert.Equal(t, "Dezembro de 2024", c.Prev().Title())

	parsed, ok := ParseMonth("2025-11")
	require.True(t, ok)
	assert.Equal(t, "2025-12", parsed.Next().Key())

	_, ok = ParseMonth("2025-13")
	assert.False(t, ok)
}

func TestDayAgenda(t *testing.T) {
	items := []models.Appointment{
		{ID: "late", Name: "B", Date: "2025-03-10", Time: "15:00", Type: models.TypeInvestigado},
		{ID: "notime", Name: "A", Date: "2025-03-10"},
		{ID: "done", Name: "C", Date: "2025-03-09", Time: "09:00", Type: models.TypeVitima, Status: models.StatusRealizada, Proc: "123"},
		{ID: "out", Name: "D", Date: "2025-04-06"},
		{ID: "bad", Name: "E", Date: "10/03/2025"},
	}
	w, ok := NewWindow("2025-02-23", "2025-04-06")
	require.True(t, ok)

	agenda := DayAgenda(items, w)
	require.Len(t, agenda.Items, 3)
	assert.Equal(t, []string{"done", "notime", "late"}, []string{agenda.Items[0].ID, agenda.Items[1].ID, agenda.Items[2].ID})

	assert.Equal(t, 9, agenda.Items[0].Day)
	assert.Equal(t, "mar", agenda.Items[0].Month)
	assert.Equal(t, AccentDone, agenda.Items[0].Accent)
	assert.True(t, agenda.Items[0].Done)
	assert.Equal(t, "123", agenda.Items[0].Proc)
	assert.Equal(t, NoProc, agenda.Items[1].Proc)
	assert.Equal(t, AccentDefault, agenda.Items[1].Accent)
	assert.Equal(t, AccentInvestigado, agenda.Items[2].Accent)

	empty := DayAgenda(nil, w)
	assert.Empty(t, empty.Items)
	assert.Equal(t, NoSchedule, empty.Message)
}

func TestAccentUnknownType(t *testing.T) {
	assert.Equal(t, AccentDefault, Accent(models.Appointment{Type: "Perito"}))
	assert.Equal(t, AccentVitima, Accent(models.Appointment{Type: models.TypeVitima}))
}

func TestNewWindowRejectsInvalid(t *testing.T) {
	_, ok := NewWindow("2025-03-10", "2025-03-10")
	assert.False(t, ok)
	_, ok = NewWindow("x", "2025-03-10")
	assert.False(t, ok)
}

func TestPlace(t *testing.T) {
	vp := Viewport{Width: 1280, Height: 800}
	assert.Equal(t, Point{X: 110, Y: 110}, Place(Point{X: 100, Y: 100}, vp))
	assert.Equal(t, Point{X: 870, Y: 490}, Place(Point{X: 1200, Y: 700}, vp))
	assert.Equal(t, Point{X: 0, Y: 0}, Place(Point{X: 50, Y: 50}, Viewport{Width: 300, Height: 150}))
}

func TestPopoverStateMachine(t *testing.T) {
	items := []models.Appointment{
		{ID: "b", Name: "Bia", Date: "2025-03-10", Time: "14:00", Type: models.TypeVitima},
		{ID: "a", Date: "2025-03-10", Time: "09:00"},
		{ID: "c", Name: "Caio", Date: "2025-03-11", Status: models.StatusRealizada},
	}
	vp := Viewport{Width: 1280, Height: 800}
	p := NewPopover()
	assert.Equal(t, PopoverClosed, p.State())

	view, ok := p.Open(items, "2025-03-10", Point{X: 10, Y: 10}, vp)
	require.True(t, ok)
	assert.Equal(t, PopoverOpen, view.State)
	assert.Equal(t, "Segunda-feira, 10 de março", view.Content.Title)
	require.Len(t, view.Content.Rows, 2)
	assert.Equal(t, "a", view.Content.Rows[0].ID)
	assert.Equal(t, NoName, view.Content.Rows[0].Name)
	assert.Equal(t, NoType, view.Content.Rows[0].Type)

	// Clicar em outro dia com o popover aberto troca a data em vez de fechar.
	view, ok = p.Open(items, "2025-03-11", Point{X: 10, Y: 10}, vp)
	require.True(t, ok)
	assert.Equal(t, PopoverOpen, view.State)
	require.Len(t, view.Content.Rows, 1)
	assert.Equal(t, NoTime, view.Content.Rows[0].Time)
	assert.True(t, view.Content.Rows[0].Done)

	p.ClickOutside(true)
	assert.Equal(t, PopoverOpen, p.State())
	p.ClickOutside(false)
	assert.Equal(t, PopoverClosed, p.State())

	_, ok = p.Select("c")
	assert.False(t, ok, "select needs an open popover")

	p.Open(items, "2025-03-12", Point{}, vp)
	assert.True(t, p.View(items).Content.Empty)
	date, ok := p.AddOnDate()
	require.True(t, ok)
	assert.Equal(t, "2025-03-12", date)
	assert.Equal(t, PopoverClosed, p.State())

	p.Open(items, "2025-03-10", Point{}, vp)
	id, ok := p.Select("b")
	require.True(t, ok)
	assert.Equal(t, "b", id)
	assert.Equal(t, PopoverClosed, p.View(items).State)

	_, ok = p.Open(items, "not-a-date", Point{}, vp)
	assert.False(t, ok)
	assert.Equal(t, PopoverClosed, p.State())
}

func TestMonthlyReportGroupingAndExpansion(t *testing.T) {
	items := []models.Appointment{
		{ID: "apr", Name: "Ana", Date: "2025-04-01", Time: "10:00"},
		{ID: "mar2", Name: "Bia", Date: "2025-03-10", Time: "14:00", Status: models.StatusRealizada},
		{ID: "mar1", Name: "Caio", Date: "2025-03-10", Time: "09:00", Proc: "IP 123/45"},
		{ID: "nodate", Name: "Davi"},
	}

	r := MonthlyReport(items, "", false)
	require.Len(t, r.Groups, 3)
	assert.Equal(t, "2025-03", r.Groups[0].Key)
	assert.Equal(t, "Março de 2025", r.Groups[0].Title)
	assert.Equal(t, 2, r.Groups[0].Count)
	assert.True(t, r.Groups[0].Expanded)
	assert.False(t, r.Groups[1].Expanded)
	assert.Equal(t, NoDateTitle, r.Groups[2].Title)

	mar := r.Groups[0].Rows
	assert.Equal(t, "mar1", mar[0].ID)
	assert.Equal(t, "10/03/2025", mar[0].Date)
	assert.Equal(t, "IP 123/45", mar[0].Proc)
	assert.Equal(t, NoProc, mar[1].Proc)
	assert.True(t, mar[1].Done)

	searched := MonthlyReport(items, "a", true)
	for _, g := range searched.Groups {
		assert.True(t, g.Expanded)
		assert.True(t, g.Searched)
	}
}

func TestMonthlyReportIsPartition(t *testing.T) {
	var items []models.Appointment
	for i := 0; i < 40; i++ {
		items = append(items, models.Appointment{
			ID:   fmt.Sprintf("id-%d", i),
			Date: fmt.Sprintf("2025-%02d-%02d", i%12+1, i%28+1),
			Time: fmt.Sprintf("%02d:00", (i*7)%24),
		})
	}

	rows := MonthlyReport(items, "", false).Rows()
	require.Len(t, rows, len(items))

	seen := map[string]int{}
	for _, row := range rows {
		seen[row.ID]++
	}
	for _, a := range items {
		assert.Equal(t, 1, seen[a.ID])
	}

	for i := 1; i < len(rows); i++ {
		assert.False(t, models.Before(rows[i].Appointment(), rows[i-1].Appointment()), "rows out of order at %d", i)
	}
}

func TestMonthlyReportEmpty(t *testing.T) {
	r := MonthlyReport(nil, "", false)
	assert.Empty(t, r.Groups)
	assert.Equal(t, NoRecords, r.Message)
}

func TestLongDateAndCapitalize(t *testing.T) {
	d, ok := ParseDate("2025-03-15")
	require.True(t, ok)
	assert.Equal(t, "Sábado, 15 de março", LongDate(d))
	assert.Equal(t, "Ébano", Capitalize("ébano"))
	assert.Equal(t, "", Capitalize(""))
}
