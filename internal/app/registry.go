package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"oitivas-pro/pkg/logger"
)

// Registry mapeia tokens de sessão para contextos de aplicação.
type Registry struct {
	deps Deps
	log  *logger.Logger
	now  func() time.Time

	mu       sync.RWMutex
	apps     map[string]*App
	onRemove []func(token string)
}

func NewRegistry(deps Deps, log *logger.Logger) *Registry {
	return &Registry{
		deps: deps,
		log:  log,
		now:  time.Now,
		apps: make(map[string]*App),
	}
}

// OnRemove registra fn para toda sessão removida, por logout ou por
// expiração. Usado para fechar os websockets da sessão.
func (r *Registry) OnRemove(fn func(token string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRemove = append(r.onRemove, fn)
}

func (r *Registry) removed(tokens ...string) {
	r.mu.RLock()
	hooks := append([]func(string){}, r.onRemove...)
	r.mu.RUnlock()

	for _, token := range tokens {
		for _, fn := range hooks {
			fn(token)
		}
	}
}

// Create abre uma sessão nova, deslogada.
func (r *Registry) Create() *App {
	token := uuid.NewString()
	a := New(token, r.deps, r.log.WithSession(token))
	a.now = r.now
	a.Touch()

	r.mu.Lock()
	r.apps[token] = a
	r.mu.Unlock()
	return a
}

// Get busca uma sessão.
func (r *Registry) Get(token string) (*App, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[token]
	return a, ok
}

// Remove desloga a sessão e a descarta.
func (r *Registry) Remove(token string) {
	r.mu.Lock()
	a, ok := r.apps[token]
	delete(r.apps, token)
	r.mu.Unlock()

	if ok {
		a.SignOut()
		r.removed(token)
	}
}

// Active retorna todas as sessões logadas.
func (r *Registry) Active() []*App {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*App, 0, len(r.apps))
	for _, a := range r.apps {
		if a.SignedIn() {
			out = append(out, a)
		}
	}
	return out
}

// Len retorna o número de sessões.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

// Expire desloga e remove as sessões ociosas há mais de idle. Retorna
// quantas foram removidas.
func (r *Registry) Expire(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*App
	for token, a := range r.apps {
		if a.LastActive().Before(cutoff) {
			stale = append(stale, a)
			delete(r.apps, token)
		}
	}
	r.mu.Unlock()

	tokens := make([]string, 0, len(stale))
	for _, a := range stale {
		a.SignOut()
		tokens = append(tokens, a.Token())
	}
	r.removed(tokens...)
	return len(stale)
}
