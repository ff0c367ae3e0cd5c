package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oitivas-pro/internal/app"
	"oitivas-pro/internal/auth"
	"oitivas-pro/internal/docstore"
	"oitivas-pro/internal/tenant"
	"oitivas-pro/pkg/logger"
)

func newRegistry(t *testing.T) *app.Registry {
	t.Helper()
	users, err := auth.ParseUsers("unidade@pc.br:segredo")
	require.NoError(t, err)
	resolver, err := tenant.NewResolver(tenant.SchemeEmail)
	require.NoError(t, err)
	return app.NewRegistry(app.Deps{
		Docs:     docstore.NewMemoryStore(),
		Auth:     users,
		Resolver: resolver,
		Root:     "units",
		Location: time.UTC,
	}, logger.Discard())
}

func TestTokenFrom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/view?token=q", nil)
	assert.Equal(t, "q", TokenFrom(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "c"})
	assert.Equal(t, "c", TokenFrom(r))

	r.Header.Set("Authorization", "Bearer h")
	assert.Equal(t, "h", TokenFrom(r))
}

func TestRequireSession(t *testing.T) {
	reg := newRegistry(t)
	sess := reg.Create()

	var got *app.App
	h := RequireSession(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer desconhecido")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token())
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, sess, got)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/view", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)
}

func TestLoggingRecordsStatus(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	h := Logging(logrus.NewEntry(log))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/hearings/x/form", nil))

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, http.StatusNotFound, hook.LastEntry().Data["status"])
}
