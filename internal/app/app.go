// Package app é o contexto de aplicação de uma sessão do navegador. Ele
// guarda a unidade, o cache, o editor e o estado das telas, e mantém
// todas as projeções alinhadas ao cache por uma única notificação de
// dataset alterado.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"oitivas-pro/internal/auth"
	"oitivas-pro/internal/docstore"
	"oitivas-pro/internal/editor"
	"oitivas-pro/internal/hearings"
	"oitivas-pro/internal/search"
	"oitivas-pro/internal/tenant"
	"oitivas-pro/internal/views"
	"oitivas-pro/pkg/apperr"
	"oitivas-pro/pkg/models"
)

// EventDatasetChanged é o único evento enviado ao navegador.
const EventDatasetChanged = "dataset_changed"

// Event é publicado após cada troca do cache.
type Event struct {
	Type     string `json:"type"`
	Total    int    `json:"total"`
	Revision uint64 `json:"revision"`
}

// Deps são as dependências compartilhadas por todos os contextos.
type Deps struct {
	Docs     docstore.Store
	Auth     auth.Authenticator
	Resolver tenant.Resolver
	Root     string
	Location *time.Location
}

type searchMode int

const (
	searchNone searchMode = iota
	searchLive
	searchSubmit
	searchPick
)

// App é o contexto de aplicação de uma sessão.
type App struct {
	token   string
	session *auth.Session
	tenants *tenant.Context
	store   *hearings.Store
	editor  *editor.Editor
	popover *views.Popover
	log     *logrus.Entry
	loc     *time.Location
	now     func() time.Time

	mu         sync.Mutex
	items      []models.Appointment
	revision   uint64
	cursor     views.MonthCursor
	mode       searchMode
	query      string
	picked     string
	result     search.Result
	calendar   views.Calendar
	agenda     views.Agenda
	report     views.Report
	resolveErr error
	lastActive time.Time

	subsMu sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// New monta o contexto e liga seu ciclo de vida. Mudança de sessão
// resolve ou limpa a unidade; cada troca do cache recalcula as projeções
// antes de avisar os assinantes.
func New(token string, deps Deps, log *logrus.Entry) *App {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	tenants := tenant.NewContext(deps.Resolver)
	store := hearings.NewStore(deps.Docs, tenants, deps.Root, log.WithField("component", "hearings"))

	a := &App{
		token:   token,
		session: auth.NewSession(deps.Auth),
		tenants: tenants,
		store:   store,
		editor:  editor.New(store, log.WithField("component", "editor")),
		popover: views.NewPopover(),
		log:     log,
		loc:     loc,
		now:     time.Now,
		subs:    make(map[int]func(Event)),
	}
	a.cursor = views.CursorFor(a.today())
	a.lastActive = a.now()
	a.recompute()

	a.session.OnSessionChange(func(p *tenant.Principal) {
		if p == nil {
			a.onSessionEnd()
			return
		}
		a.onSessionStart(*p)
	})
	store.Subscribe(a.onDatasetChanged)
	return a
}

// Token é o bearer token da sessão.
func (a *App) Token() string { return a.token }

func (a *App) onSessionStart(p tenant.Principal) {
	id, err := a.tenants.Resolve(p)

	a.mu.Lock()
	a.resolveErr = err
	a.mode, a.query, a.picked = searchNone, "", ""
	a.mu.Unlock()

	if err != nil {
		a.log.WithError(err).Error("❌ Unidade não resolvida")
		return
	}
	a.log.WithField("tenant", id).Info("✅ Sessão iniciada")
}

func (a *App) onSessionEnd() {
	a.tenants.Clear()
	a.store.Clear()
	a.popover.Close()
	a.editor.Close()

	a.mu.Lock()
	a.mode, a.query, a.picked = searchNone, "", ""
	a.mu.Unlock()

	a.log.Info("👋 Sessão encerrada")
}

func (a *App) onDatasetChanged(snap hearings.Snapshot) {
	a.mu.Lock()
	a.items = snap.Items
	a.revision = snap.Revision
	a.recompute()
	a.mu.Unlock()

	a.publish(Event{Type: EventDatasetChanged, Total: len(snap.Items), Revision: snap.Revision})
}

// recompute refaz todas as projeções a partir dos itens atuais. Chamar
// com mu travado.
func (a *App) recompute() {
	a.result = a.applySearch()
	a.calendar = views.MonthGrid(a.items, a.cursor, a.todayKey())
	w := a.cursor.Window()
	a.agenda = views.DayAgenda(a.items, w)
	a.report = views.MonthlyReport(a.result.Items, a.result.Query, a.result.Active)
}

func (a *App) applySearch() search.Result {
	switch a.mode {
	case searchLive:
		return search.Live(a.items, a.query)
	case searchSubmit:
		return search.Submit(a.items, a.query)
	case searchPick:
		for _, it := range a.items {
			if it.ID == a.picked {
				return search.Pick(it)
			}
		}
	}
	a.mode, a.query, a.picked = searchNone, "", ""
	return search.Clear(a.items)
}

// Subscribe registra fn para eventos de dataset alterado.
func (a *App) Subscribe(fn func(Event)) func() {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	return func() {
		a.subsMu.Lock()
		defer a.subsMu.Unlock()
		delete(a.subs, id)
	}
}

func (a *App) publish(ev Event) {
	a.subsMu.Lock()
	fns := make([]func(Event), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// SignIn autentica e carrega as oitivas da unidade. Se a carga falhar a
// sessão fica logada com dataset vazio e o aviso retornado traz a
// mensagem para o usuário.
func (a *App) SignIn(ctx context.Context, email, password string) (notice string, err error) {
	a.Touch()
	if _, err := a.session.SignIn(ctx, email, password); err != nil {
		return "", err
	}
	return a.start(ctx)
}

// Adopt loga um principal já verificado.
func (a *App) Adopt(ctx context.Context, p tenant.Principal) (notice string, err error) {
	a.Touch()
	a.session.Adopt(p)
	return a.start(ctx)
}

func (a *App) start(ctx context.Context) (string, error) {
	a.mu.Lock()
	resolveErr := a.resolveErr
	a.mu.Unlock()

	if resolveErr != nil {
		a.session.SignOut()
		return "", apperr.Wrap(resolveErr, apperr.CodeUnresolvedTenant, "unidade não resolvida")
	}

	if _, err := a.store.Reload(ctx); err != nil {
		if errors.Is(err, apperr.ErrSessionChanged) {
			return "", err
		}
		return apperr.From(err).UserMessage(), nil
	}
	return "", nil
}

// SignOut encerra a sessão. Resultados de chamadas em andamento são
// descartados.
func (a *App) SignOut() {
	a.session.SignOut()
}

// Principal retorna o principal logado.
func (a *App) Principal() (tenant.Principal, bool) {
	return a.session.Principal()
}

// SignedIn indica se há unidade ativa.
func (a *App) SignedIn() bool {
	return a.tenants.ID() != ""
}

// Reload busca o dataset de novo.
func (a *App) Reload(ctx context.Context) error {
	a.Touch()
	_, err := a.store.Reload(ctx)
	return err
}

// Items retorna o dataset atual.
func (a *App) Items() []models.Appointment {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Appointment, len(a.items))
	copy(out, a.items)
	return out
}

// Touch registra atividade para o janitor de ociosidade.
func (a *App) Touch() {
	a.mu.Lock()
	a.lastActive = a.now()
	a.mu.Unlock()
}

// LastActive retorna o horário da última requisição.
func (a *App) LastActive() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastActive
}

func (a *App) today() time.Time {
	return a.now().In(a.loc)
}

func (a *App) todayKey() string {
	return a.today().Format(views.DateLayout)
}

// Today retorna a data de hoje no fuso configurado.
func (a *App) Today() string { return a.todayKey() }
