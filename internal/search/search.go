// Package search filtra as oitivas do cache por texto livre e monta as
// sugestões mostradas sob a caixa de busca.
package search

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"oitivas-pro/pkg/models"
)

const (
	// MinLiveLength é o menor termo que filtra durante a digitação.
	MinLiveLength = 2
	// MaxSuggestions limita a lista de sugestões.
	MaxSuggestions = 5

	NoProc        = "Sem IP"
	NothingFound  = "Nada encontrado."
	HighlightOpen = `<mark class="highlight-term">`
	HighlightEnd  = `</mark>`
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]`)
	nonDigit = regexp.MustCompile(`[^0-9]`)
)

// Normalize passa o termo para minúsculas e tira os espaços das pontas.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Matches indica se a casa com query. Termo vazio não casa com nada; para
// mostrar tudo use Clear.
func Matches(a models.Appointment, query string) bool {
	term := Normalize(query)
	if term == "" {
		return false
	}

	if strings.Contains(strings.ToLower(a.Name), term) ||
		strings.Contains(strings.ToLower(a.Delegate), term) {
		return true
	}

	// procedimento compara só letras e dígitos, telefone só dígitos
	if clean := nonAlnum.ReplaceAllString(term, ""); clean != "" {
		proc := nonAlnum.ReplaceAllString(strings.ToLower(a.Proc), "")
		if strings.Contains(proc, clean) {
			return true
		}
	}
	if digits := nonDigit.ReplaceAllString(term, ""); digits != "" {
		phone := nonDigit.ReplaceAllString(a.Phone, "")
		if strings.Contains(phone, digits) {
			return true
		}
	}
	return false
}

// Filter retorna os itens que casam com query, na ordem de entrada.
func Filter(items []models.Appointment, query string) []models.Appointment {
	out := make([]models.Appointment, 0)
	for _, a := range items {
		if Matches(a, query) {
			out = append(out, a)
		}
	}
	return out
}

// Suggestion é uma linha da lista de sugestões.
type Suggestion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Proc        string `json:"proc"`
	Done        bool   `json:"done"`
	PickedQuery string `json:"pickedQuery"`
}

// Result é o que o relatório e a lista de sugestões mostram após a busca.
type Result struct {
	Query       string               `json:"query"`
	Items       []models.Appointment `json:"-"`
	Active      bool                 `json:"active"`
	Dropdown    bool                 `json:"dropdown"`
	Suggestions []Suggestion         `json:"suggestions"`
	Message     string               `json:"message,omitempty"`
	ClearButton bool                 `json:"clearButton"`
}

// Live trata uma tecla. Termos menores que MinLiveLength mantêm o dataset
// inteiro na tela e escondem as sugestões.
func Live(items []models.Appointment, raw string) Result {
	term := Normalize(raw)
	if utf8.RuneCountInString(term) < MinLiveLength {
		r := Clear(items)
		r.Query = term
		r.ClearButton = term != ""
		return r
	}

	matches := Filter(items, term)
	r := Result{
		Query:       term,
		Items:       matches,
		Active:      true,
		Dropdown:    true,
		Suggestions: Suggestions(matches, term),
		ClearButton: true,
	}
	if len(matches) == 0 {
		r.Message = NothingFound
	}
	return r
}

// Submit trata o enter: qualquer termo não vazio filtra e as sugestões
// fecham.
func Submit(items []models.Appointment, raw string) Result {
	term := Normalize(raw)
	if term == "" {
		return Clear(items)
	}
	return Result{
		Query:       term,
		Items:       Filter(items, term),
		Active:      true,
		Suggestions: []Suggestion{},
		ClearButton: true,
	}
}

// Clear é o único caminho em que o termo vazio mostra todos os itens.
func Clear(items []models.Appointment) Result {
	all := make([]models.Appointment, len(items))
	copy(all, items)
	return Result{Items: all, Suggestions: []Suggestion{}}
}

// Pick restringe o resultado à sugestão escolhida, com o termo igual ao
// nome dela em minúsculas.
func Pick(a models.Appointment) Result {
	return Result{
		Query:       strings.ToLower(a.Name),
		Items:       []models.Appointment{a},
		Active:      true,
		Suggestions: []Suggestion{},
		ClearButton: true,
	}
}

// Suggestions monta no máximo MaxSuggestions linhas para matches.
func Suggestions(matches []models.Appointment, query string) []Suggestion {
	n := len(matches)
	if n > MaxSuggestions {
		n = MaxSuggestions
	}
	out := make([]Suggestion, 0, n)
	for _, a := range matches[:n] {
		proc := NoProc
		if a.Proc != "" {
			proc = "IP: " + Highlight(a.Proc, query)
		}
		out = append(out, Suggestion{
			ID:          a.ID,
			Name:        Highlight(a.Name, query),
			Date:        models.DisplayDate(a.Date),
			Proc:        proc,
			Done:        a.IsDone(),
			PickedQuery: strings.ToLower(a.Name),
		})
	}
	return out
}

// Highlight marca toda ocorrência de query em text, sem diferenciar
// maiúsculas, com o marcador padrão. O texto sai com escape HTML.
func Highlight(text, query string) string {
	return HighlightWith(text, query, HighlightOpen, HighlightEnd, html.EscapeString)
}

// HighlightWith é Highlight com marcadores e escape explícitos. O termo é
// casado literalmente. escape pode ser nil.
func HighlightWith(text, query, open, end string, escape func(string) string) string {
	if escape == nil {
		escape = func(s string) string { return s }
	}
	if text == "" || query == "" {
		return escape(text)
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return escape(text)
	}

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		if m[0] == m[1] {
			continue
		}
		b.WriteString(escape(text[last:m[0]]))
		b.WriteString(open)
		b.WriteString(escape(text[m[0]:m[1]]))
		b.WriteString(end)
		last = m[1]
	}
	b.WriteString(escape(text[last:]))
	return b.String()
}
