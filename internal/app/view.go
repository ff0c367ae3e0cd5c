package app

import (
	"context"

	"oitivas-pro/internal/editor"
	"oitivas-pro/internal/search"
	"oitivas-pro/internal/views"
	"oitivas-pro/pkg/apperr"
	"oitivas-pro/pkg/models"
)

var errHearingNotFound = apperr.ErrNotFound.WithDetails("Oitiva não encontrada.")

// SessionInfo descreve a unidade logada.
type SessionInfo struct {
	SignedIn bool   `json:"signedIn"`
	Email    string `json:"email,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Tenant   string `json:"tenant,omitempty"`
}

// View é tudo que a tela principal renderiza.
type View struct {
	Session  SessionInfo       `json:"session"`
	Revision uint64            `json:"revision"`
	Total    int               `json:"total"`
	Calendar views.Calendar    `json:"calendar"`
	Agenda   views.Agenda      `json:"agenda"`
	Report   views.Report      `json:"report"`
	Search   search.Result     `json:"search"`
	Popover  views.PopoverView `json:"popover"`
}

// Session retorna os dados do cabeçalho da unidade.
func (a *App) Session() SessionInfo {
	p, ok := a.session.Principal()
	if !ok {
		return SessionInfo{}
	}
	return SessionInfo{
		SignedIn: a.SignedIn(),
		Email:    p.Email,
		Unit:     models.UnitName(p.Email),
		Tenant:   a.tenants.ID(),
	}
}

// View retorna os modelos de renderização atuais.
func (a *App) View() View {
	a.Touch()
	info := a.Session()

	a.mu.Lock()
	v := View{
		Session:  info,
		Revision: a.revision,
		Total:    len(a.items),
		Calendar: a.calendar,
		Agenda:   a.agenda,
		Report:   a.report,
		Search:   a.result,
	}
	items := a.items
	a.mu.Unlock()

	v.Popover = a.popover.View(items)
	return v
}

// Calendar retorna a grade do mês atual.
func (a *App) Calendar() views.Calendar {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calendar
}

// ShowMonth leva o calendário para c sem buscar de novo.
func (a *App) ShowMonth(c views.MonthCursor) View {
	a.mu.Lock()
	a.cursor = c
	a.recompute()
	a.mu.Unlock()
	return a.View()
}

// Navigate move o calendário: "prev", "next" ou "today".
func (a *App) Navigate(dir string) (View, error) {
	a.mu.Lock()
	switch dir {
	case "prev":
		a.cursor = a.cursor.Prev()
	case "next":
		a.cursor = a.cursor.Next()
	case "today":
		a.cursor = views.CursorFor(a.today())
	default:
		a.mu.Unlock()
		return View{}, apperr.ErrValidation.WithDetails("direção inválida")
	}
	a.recompute()
	a.mu.Unlock()
	return a.View(), nil
}

// Agenda lista as oitivas de uma janela qualquer.
func (a *App) Agenda(w views.Window) views.Agenda {
	return views.DayAgenda(a.Items(), w)
}

// Report monta o acordeão para o estado atual da busca.
func (a *App) Report() views.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.report
}

// Search executa a busca ao vivo (tecla) ou ao enviar (enter).
func (a *App) Search(query string, submit bool) search.Result {
	a.Touch()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode, a.query, a.picked = searchLive, query, ""
	if submit {
		a.mode = searchSubmit
	}
	a.recompute()
	return a.result
}

// ClearSearch volta a mostrar todas as oitivas.
func (a *App) ClearSearch() search.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mode, a.query, a.picked = searchNone, "", ""
	a.recompute()
	return a.result
}

// PickSuggestion restringe o relatório a uma oitiva.
func (a *App) PickSuggestion(id string) (search.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, it := range a.items {
		if it.ID == id {
			a.mode, a.query, a.picked = searchPick, "", id
			a.recompute()
			return a.result, nil
		}
	}
	return search.Result{}, errHearingNotFound
}

// OpenPopover abre o popover do dia date.
func (a *App) OpenPopover(date string, click views.Point, vp views.Viewport) (views.PopoverView, error) {
	a.Touch()
	view, ok := a.popover.Open(a.Items(), date, click, vp)
	if !ok {
		return view, apperr.ErrValidation.WithDetails("data inválida")
	}
	return view, nil
}

// ClosePopover fecha o popover explicitamente.
func (a *App) ClosePopover() views.PopoverView {
	a.popover.Close()
	return a.popover.View(nil)
}

// PopoverOutside trata um clique fora do popover.
func (a *App) PopoverOutside(onDayCell bool) views.PopoverView {
	a.popover.ClickOutside(onDayCell)
	return a.popover.View(a.Items())
}

// PopoverSelect fecha o popover e abre o editor em id.
func (a *App) PopoverSelect(id string) (editor.Form, error) {
	if _, ok := a.popover.Select(id); !ok {
		return editor.Form{}, apperr.ErrValidation.WithDetails("popover fechado")
	}
	return a.EditForm(id)
}

// PopoverAdd fecha o popover e abre um formulário vazio na data dele.
func (a *App) PopoverAdd() (editor.Form, error) {
	date, ok := a.popover.AddOnDate()
	if !ok {
		return editor.Form{}, apperr.ErrValidation.WithDetails("popover fechado")
	}
	return a.NewForm(date), nil
}

// NewForm abre o editor vazio, em date ou hoje.
func (a *App) NewForm(date string) editor.Form {
	f := editor.NewForm(date, a.todayKey())
	a.editor.Open(f)
	return f
}

// EditForm abre o editor numa oitiva do cache.
func (a *App) EditForm(id string) (editor.Form, error) {
	it, ok := a.store.Find(id)
	if !ok {
		return editor.Form{}, errHearingNotFound
	}
	f := editor.FormFrom(it)
	a.editor.Open(f)
	return f, nil
}

// Submit salva f pelo editor. O cache é recarregado antes do retorno,
// então a tela já mostra a gravação.
func (a *App) Submit(ctx context.Context, f editor.Form) (editor.Result, error) {
	a.Touch()
	return a.editor.Submit(ctx, f)
}

// EditorState retorna o formulário aberto, se houver.
func (a *App) EditorState() (editor.Form, bool) {
	return a.editor.Current()
}

// CloseEditor descarta o formulário aberto.
func (a *App) CloseEditor() { a.editor.Close() }

// Delete remove uma oitiva. Id inexistente não é erro.
func (a *App) Delete(ctx context.Context, id string) error {
	a.Touch()
	return a.store.Delete(ctx, id)
}
