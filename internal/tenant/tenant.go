// Package tenant resolve e guarda o identificador que delimita todos os
// caminhos de armazenamento de uma sessão.
package tenant

import (
	"strings"
	"sync"

	"oitivas-pro/pkg/apperr"
)

// Principal é o usuário autenticado entregue pela camada de auth.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Scheme define como o identificador da unidade sai do principal.
type Scheme string

const (
	SchemeEmail Scheme = "email"
	SchemeUID   Scheme = "uid"
)

// Resolver deriva o identificador da unidade a partir do principal.
type Resolver func(Principal) (string, error)

// NewResolver retorna o resolver de scheme.
func NewResolver(scheme Scheme) (Resolver, error) {
	switch scheme {
	case SchemeEmail:
		return resolveEmail, nil
	case SchemeUID:
		return resolveUID, nil
	default:
		return nil, apperr.ErrUnresolvedTenant.WithDetails("esquema desconhecido: " + string(scheme))
	}
}

// FromEmail converte um e-mail em token seguro para caminho: minúsculas,
// '@' e '.' viram '_', e o resto fora de [a-z0-9] é removido.
func FromEmail(email string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(email)) {
		switch {
		case r == '@' || r == '.':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func resolveEmail(p Principal) (string, error) {
	id := FromEmail(p.Email)
	if strings.Trim(id, "_") == "" {
		return "", apperr.ErrUnresolvedTenant.WithDetails("principal sem e-mail")
	}
	return id, nil
}

func resolveUID(p Principal) (string, error) {
	if p.UID == "" || strings.ContainsAny(p.UID, ".$#[]/") {
		return "", apperr.ErrUnresolvedTenant.WithDetails("uid inválido")
	}
	return p.UID, nil
}

// Lease é uma foto da unidade ativa. Um lease tirado antes de um logout
// (ou antes de outro principal logar) deixa de valer.
type Lease struct {
	Tenant     string
	Principal  Principal
	generation uint64
}

// Context guarda a unidade da sessão atual. Unidade vazia significa
// "nenhuma resolvida"; cada transição incrementa a geração para descartar
// resultados de chamadas iniciadas com lease antigo.
type Context struct {
	mu         sync.RWMutex
	resolve    Resolver
	tenant     string
	principal  Principal
	generation uint64
}

// NewContext cria um contexto vazio que usa resolve.
func NewContext(resolve Resolver) *Context {
	return &Context{resolve: resolve}
}

// Resolve define a unidade de p. Resolver o mesmo principal de novo não
// muda nada e retorna a unidade atual.
func (c *Context) Resolve(p Principal) (string, error) {
	id, err := c.resolve(p)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tenant == id && c.principal == p {
		return id, nil
	}
	c.tenant = id
	c.principal = p
	c.generation++
	return id, nil
}

// Clear invalida a unidade. Leases pendentes ficam vencidos.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tenant == "" {
		return
	}
	c.tenant = ""
	c.principal = Principal{}
	c.generation++
}

// Current retorna um lease da unidade ativa, ou ErrNoTenant.
func (c *Context) Current() (Lease, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tenant == "" {
		return Lease{}, apperr.ErrNoTenant
	}
	return Lease{Tenant: c.tenant, Principal: c.principal, generation: c.generation}, nil
}

// Valid indica se l ainda aponta para a unidade ativa.
func (c *Context) Valid(l Lease) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tenant != "" && c.tenant == l.Tenant && c.generation == l.generation
}

// ID retorna a unidade ativa ou "".
func (c *Context) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tenant
}
