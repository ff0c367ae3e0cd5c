package views

import (
	"sort"

	"oitivas-pro/internal/search"
	"oitivas-pro/pkg/models"
)

const (
	NoRecords    = "Nenhum registro encontrado."
	NoDateTitle  = "Sem data"
	noDateBucket = ""
)

// ReportRow é uma linha de uma seção do mês.
type ReportRow struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Proc     string `json:"proc"`
	Delegate string `json:"delegate"`
	Done     bool   `json:"done"`

	appt models.Appointment
}

// Appointment retorna o registro da linha.
func (r ReportRow) Appointment() models.Appointment { return r.appt }

// ReportGroup é uma seção de mês recolhível.
type ReportGroup struct {
	Key      string      `json:"key"`
	Title    string      `json:"title"`
	Count    int         `json:"count"`
	Expanded bool        `json:"expanded"`
	Searched bool        `json:"searched"`
	Rows     []ReportRow `json:"rows"`
}

// Report é o modelo de renderização do acordeão.
type Report struct {
	Query   string        `json:"query"`
	Groups  []ReportGroup `json:"groups"`
	Message string        `json:"message,omitempty"`
}

// MonthlyReport separa os itens por YYYY-MM. Os grupos seguem a ordem
// cronológica e as linhas de cada grupo são ordenadas por (data, hora).
// Só o primeiro grupo vem aberto, a não ser que searched seja true, quando
// todos vêm. query só afeta o destaque. Itens sem data utilizável ficam
// num grupo final "Sem data", para que todo item apareça uma única vez.
func MonthlyReport(items []models.Appointment, query string, searched bool) Report {
	report := Report{Query: query, Groups: []ReportGroup{}}
	if len(items) == 0 {
		report.Message = NoRecords
		return report
	}

	buckets := make(map[string][]models.Appointment)
	for _, a := range items {
		key := noDateBucket
		if _, ok := ParseMonth(a.MonthKey()); ok {
			key = a.MonthKey()
		}
		buckets[key] = append(buckets[key], a)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		if k != noDateBucket {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := buckets[noDateBucket]; ok {
		keys = append(keys, noDateBucket)
	}

	for i, key := range keys {
		list := models.Sorted(buckets[key])
		g := ReportGroup{
			Key:      key,
			Title:    groupTitle(key),
			Count:    len(list),
			Expanded: searched || i == 0,
			Searched: searched,
			Rows:     make([]ReportRow, 0, len(list)),
		}
		for _, a := range list {
			g.Rows = append(g.Rows, reportRow(a, query))
		}
		report.Groups = append(report.Groups, g)
	}
	return report
}

func groupTitle(key string) string {
	c, ok := ParseMonth(key)
	if !ok {
		return NoDateTitle
	}
	return c.Title()
}

func reportRow(a models.Appointment, query string) ReportRow {
	row := ReportRow{
		ID:   a.ID,
		Date: models.DisplayDate(a.Date),
		Time: a.Time,
		Name: search.Highlight(a.Name, query),
		Proc: search.Highlight(orDefault(a.Proc, NoProc), query),
		Done: a.IsDone(),
		appt: a,
	}
	if a.Phone != "" {
		row.Phone = search.Highlight(a.Phone, query)
	}
	if a.Delegate != "" {
		row.Delegate = search.Highlight(a.Delegate, query)
	}
	return row
}

// Rows achata o relatório na ordem de exibição.
func (r Report) Rows() []ReportRow {
	var rows []ReportRow
	for _, g := range r.Groups {
		rows = append(rows, g.Rows...)
	}
	return rows
}

