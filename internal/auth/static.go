package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"oitivas-pro/internal/tenant"
	"oitivas-pro/pkg/apperr"
)

// StaticAuthenticator valida credenciais contra uma lista fixa. Atende os
// backends postgres e memory, onde não há projeto Firebase.
type StaticAuthenticator struct {
	users map[string]staticUser
}

type staticUser struct {
	password string
	uid      string
}

// ParseUsers lê pares "email:senha" separados por vírgula. Os UIDs saem do
// e-mail, então são estáveis entre reinícios.
func ParseUsers(spec string) (*StaticAuthenticator, error) {
	a := &StaticAuthenticator{users: make(map[string]staticUser)}
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		email, password, ok := strings.Cut(pair, ":")
		email = strings.ToLower(strings.TrimSpace(email))
		if !ok || email == "" || password == "" {
			return nil, fmt.Errorf("invalid AUTH_USERS entry %q", pair)
		}
		a.users[email] = staticUser{
			password: password,
			uid:      uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		}
	}
	return a, nil
}

func (a *StaticAuthenticator) SignIn(ctx context.Context, email, password string) (tenant.Principal, error) {
	if err := ctx.Err(); err != nil {
		return tenant.Principal{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	u, ok := a.users[email]
	if !ok {
		return tenant.Principal{}, apperr.ErrNotFound
	}
	if subtle.ConstantTimeCompare([]byte(u.password), []byte(password)) != 1 {
		return tenant.Principal{}, apperr.ErrInvalidCredentials
	}
	return tenant.Principal{UID: u.uid, Email: email}, nil
}

// Len retorna o número de usuários configurados.
func (a *StaticAuthenticator) Len() int { return len(a.users) }
