// Package auth faz login e logout das unidades e avisa o contexto de
// aplicação quando o principal logado muda.
package auth

import (
	"context"
	"strings"
	"sync"

	"oitivas-pro/internal/tenant"
	"oitivas-pro/pkg/apperr"
)

// Authenticator valida credenciais de e-mail e senha.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (tenant.Principal, error)
}

// ChangeFunc recebe o novo principal, ou nil após o logout. Não pode
// chamar SignIn, Adopt nem SignOut.
type ChangeFunc func(p *tenant.Principal)

// Session é o estado de login de uma sessão do navegador. Os listeners são
// chamados uma vez por transição, na ordem de registro, nunca em paralelo
// entre si.
type Session struct {
	auth Authenticator

	notifyMu  sync.Mutex
	mu        sync.Mutex
	principal *tenant.Principal
	listeners []ChangeFunc
}

func NewSession(a Authenticator) *Session {
	return &Session{auth: a}
}

// OnSessionChange registra fn. Não é chamado para o estado atual.
func (s *Session) OnSessionChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SignIn autentica e, se o principal mudou, avisa os listeners.
func (s *Session) SignIn(ctx context.Context, email, password string) (tenant.Principal, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return tenant.Principal{}, apperr.ErrInvalidCredentials
	}

	p, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return tenant.Principal{}, err
	}
	s.transition(&p)
	return p, nil
}

// Adopt instala um principal já verificado, por exemplo vindo de ID token.
func (s *Session) Adopt(p tenant.Principal) {
	s.transition(&p)
}

// SignOut limpa o principal. Dois logouts seguidos avisam uma vez só.
func (s *Session) SignOut() {
	s.transition(nil)
}

// Principal retorna o principal logado.
func (s *Session) Principal() (tenant.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return tenant.Principal{}, false
	}
	return *s.principal, true
}

func (s *Session) transition(next *tenant.Principal) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	cur := s.principal
	if samePrincipal(cur, next) {
		s.mu.Unlock()
		return
	}
	s.principal = next
	listeners := append([]ChangeFunc(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		if next == nil {
			fn(nil)
			continue
		}
		p := *next
		fn(&p)
	}
}

func samePrincipal(a, b *tenant.Principal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
