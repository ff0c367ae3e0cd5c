package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"oitivas-pro/internal/app"
	"oitivas-pro/pkg/apperr"
)

// CookieName é o cookie de sessão gravado no login.
const CookieName = "oitivas_session"

type ctxKey struct{}

// Sessions busca um contexto de aplicação pelo token.
type Sessions interface {
	Get(token string) (*app.App, bool)
}

// TokenFrom extrai o token da sessão do header Authorization, do cookie
// ou do parâmetro token, nessa ordem. O parâmetro existe para clientes
// websocket, que não conseguem enviar headers.
func TokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

// RequireSession rejeita requisições sem sessão válida e coloca o
// contexto da sessão no request.
func RequireSession(sessions Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFrom(r)
			if token == "" {
				Unauthorized(w)
				return
			}
			a, ok := sessions.Get(token)
			if !ok {
				Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithApp(r.Context(), a)))
		})
	}
}

// WithApp guarda a em ctx.
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext retorna a sessão guardada por RequireSession.
func FromContext(ctx context.Context) (*app.App, bool) {
	a, ok := ctx.Value(ctxKey{}).(*app.App)
	return a, ok
}

// Unauthorized escreve o corpo JSON do 401.
func Unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   string(apperr.CodeUnauthorized),
		"message": apperr.ErrUnauthorized.UserMessage(),
	})
}
