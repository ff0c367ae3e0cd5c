// Package api expõe os contextos de aplicação via HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"oitivas-pro/internal/app"
	"oitivas-pro/internal/docstore"
	"oitivas-pro/internal/middleware"
	"oitivas-pro/internal/signaling"
	"oitivas-pro/internal/tenant"
	"oitivas-pro/internal/workers"
	"oitivas-pro/pkg/apperr"
	"oitivas-pro/pkg/logger"
)

// TokenVerifier valida um ID token emitido pelo provedor de identidade.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (tenant.Principal, error)
}

// Options reúne as dependências do servidor HTTP.
type Options struct {
	Registry  *app.Registry
	Hub       *signaling.Hub
	Verifier  TokenVerifier
	Docs      docstore.Store
	Logger    *logger.Logger
	Location  *time.Location
	Backend   string
	Workers   *workers.WorkerManager
	StaticDir string
}

// Server agrupa os handlers.
type Server struct {
	registry  *app.Registry
	hub       *signaling.Hub
	verifier  TokenVerifier
	health    docstore.Pinger
	logs      *logger.Logger
	log       *logrus.Entry
	loc       *time.Location
	backend   string
	workers   *workers.WorkerManager
	staticDir string
	startTime time.Time
	now       func() time.Time
}

func NewServer(opts Options) *Server {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	health, _ := opts.Docs.(docstore.Pinger)
	// logout e expiração fecham os websockets da sessão
	opts.Registry.OnRemove(opts.Hub.CloseSession)
	return &Server{
		health:    health,
		registry:  opts.Registry,
		hub:       opts.Hub,
		verifier:  opts.Verifier,
		logs:      opts.Logger,
		log:       opts.Logger.WithComponent("api"),
		loc:       loc,
		backend:   opts.Backend,
		workers:   opts.Workers,
		staticDir: opts.StaticDir,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Router monta o handler completo, com CORS e log de requisições.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Logging(s.log))

	authed := middleware.RequireSession(s.registry)

	router.Handle("/ws", authed(http.HandlerFunc(s.hub.HandleWebSocket)))

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", s.statsHandler).Methods("GET")
	api.HandleFunc("/health", s.healthCheckHandler).Methods("GET")
	api.HandleFunc("/logs", s.logsHandler).Methods("GET")
	api.HandleFunc("/login", s.loginHandler).Methods("POST")

	sess := api.NewRoute().Subrouter()
	sess.Use(authed)
	sess.HandleFunc("/logout", s.logoutHandler).Methods("POST")
	sess.HandleFunc("/session", s.sessionHandler).Methods("GET")
	sess.HandleFunc("/view", s.viewHandler).Methods("GET")
	sess.HandleFunc("/reload", s.reloadHandler).Methods("POST")

	sess.HandleFunc("/calendar", s.calendarHandler).Methods("GET")
	sess.HandleFunc("/calendar/{dir:prev|next|today}", s.navigateHandler).Methods("POST")
	sess.HandleFunc("/agenda", s.agendaHandler).Methods("GET")
	sess.HandleFunc("/report", s.reportHandler).Methods("GET")

	sess.HandleFunc("/search", s.searchHandler).Methods("GET")
	sess.HandleFunc("/search", s.clearSearchHandler).Methods("DELETE")
	sess.HandleFunc("/search/pick/{id}", s.pickHandler).Methods("POST")

	sess.HandleFunc("/popover", s.openPopoverHandler).Methods("POST")
	sess.HandleFunc("/popover/close", s.closePopoverHandler).Methods("POST")
	sess.HandleFunc("/popover/outside", s.outsidePopoverHandler).Methods("POST")
	sess.HandleFunc("/popover/select/{id}", s.selectPopoverHandler).Methods("POST")
	sess.HandleFunc("/popover/add", s.addPopoverHandler).Methods("POST")

	sess.HandleFunc("/hearings", s.listHandler).Methods("GET")
	sess.HandleFunc("/hearings", s.saveHandler).Methods("POST")
	sess.HandleFunc("/hearings/{id}/form", s.editFormHandler).Methods("GET")
	sess.HandleFunc("/hearings/{id}", s.deleteHandler).Methods("DELETE")
	sess.HandleFunc("/form/new", s.newFormHandler).Methods("GET")
	sess.HandleFunc("/form", s.closeFormHandler).Methods("DELETE")

	sess.HandleFunc("/export.ics", s.exportHandler).Methods("GET")

	if s.staticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}

	return middleware.CORS(router)
}

func session(r *http.Request) *app.App {
	a, _ := middleware.FromContext(r.Context())
	return a
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody é o formato JSON de toda requisição com falha.
type errorBody struct {
	Error   apperr.Code `json:"error"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	e := apperr.From(err)
	if e.Code == apperr.CodeInternal {
		s.log.WithError(err).Error("❌ Erro interno")
	}
	writeJSON(w, e.HTTPStatus(), errorBody{Error: e.Code, Message: e.UserMessage()})
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.ErrValidation.WithDetails("corpo inválido")
	}
	return nil
}
