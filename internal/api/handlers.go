package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"oitivas-pro/internal/editor"
	"oitivas-pro/internal/ics"
	"oitivas-pro/internal/middleware"
	"oitivas-pro/internal/views"
	"oitivas-pro/pkg/apperr"
	"oitivas-pro/pkg/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IDToken  string `json:"idToken"`
}

type loginResponse struct {
	Token  string      `json:"token"`
	Notice string      `json:"notice,omitempty"`
	View   interface{} `json:"view"`
}

// loginHandler abre uma sessão nova. Aceita e-mail e senha ou um ID token
// já emitido pelo provedor de identidade.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	a := s.registry.Create()
	var (
		notice string
		err    error
	)
	switch {
	case req.IDToken != "":
		if s.verifier == nil {
			err = apperr.ErrInvalidCredentials
			break
		}
		p, verr := s.verifier.VerifyToken(r.Context(), req.IDToken)
		if verr != nil {
			err = verr
			break
		}
		notice, err = a.Adopt(r.Context(), p)
	default:
		notice, err = a.SignIn(r.Context(), req.Email, req.Password)
	}
	if err != nil {
		s.registry.Remove(a.Token())
		s.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    a.Token(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: a.Token(), Notice: notice, View: a.View()})
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.registry.Remove(session(r).Token())

	http.SetCookie(w, &http.Cookie{Name: middleware.CookieName, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session(r).Session())
}

func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session(r).View())
}

func (s *Server) reloadHandler(w http.ResponseWriter, r *http.Request) {
	a := session(r)
	if err := a.Reload(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.View())
}

func (s *Server) calendarHandler(w http.ResponseWriter, r *http.Request) {
	a := session(r)
	month := r.URL.Query().Get("month")
	if month == "" {
		writeJSON(w, http.StatusOK, a.Calendar())
		return
	}
	cursor, ok := views.ParseMonth(month)
	if !ok {
		s.writeError(w, apperr.ErrValidation.WithDetails("mês"))
		return
	}
	writeJSON(w, http.StatusOK, a.ShowMonth(cursor).Calendar)
}

func (s *Server) navigateHandler(w http.ResponseWriter, r *http.Request) {
	v, err := session(r).Navigate(mux.Vars(r)["dir"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) agendaHandler(w http.ResponseWriter, r *http.Request) {
	a := session(r)
	q := r.URL.Query()
	if q.Get("start") == "" && q.Get("end") == "" {
		writeJSON(w, http.StatusOK, a.View().Agenda)
		return
	}
	win, ok := views.NewWindow(q.Get("start"), q.Get("end"))
	if !ok {
		s.writeError(w, apperr.ErrValidation.WithDetails("período"))
		return
	}
	writeJSON(w, http.StatusOK, a.Agenda(win))
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	a := session(r)
	if q, ok := r.URL.Query()["q"]; ok {
		a.Search(strings.Join(q, " "), true)
	}
	writeJSON(w, http.StatusOK, a.Report())
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	submit := q.Get("mode") == "submit"
	writeJSON(w, http.StatusOK, session(r).Search(q.Get("q"), submit))
}

func (s *Server) clearSearchHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session(r).ClearSearch())
}

func (s *Server) pickHandler(w http.ResponseWriter, r *http.Request) {
	res, err := session(r).PickSuggestion(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type popoverRequest struct {
	Date     string         `json:"date"`
	Click    views.Point    `json:"click"`
	Viewport views.Viewport `json:"viewport"`
}

func (s *Server) openPopoverHandler(w http.ResponseWriter, r *http.Request) {
	var req popoverRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	v, err := session(r).OpenPopover(req.Date, req.Click, req.Viewport)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) closePopoverHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session(r).ClosePopover())
}

type outsideRequest struct {
	OnDayCell bool `json:"onDayCell"`
}

func (s *Server) outsidePopoverHandler(w http.ResponseWriter, r *http.Request) {
	var req outsideRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session(r).PopoverOutside(req.OnDayCell))
}

func (s *Server) selectPopoverHandler(w http.ResponseWriter, r *http.Request) {
	f, err := session(r).PopoverSelect(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) addPopoverHandler(w http.ResponseWriter, r *http.Request) {
	f, err := session(r).PopoverAdd()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	items := session(r).Items()
	if items == nil {
		items = []models.Appointment{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) editFormHandler(w http.ResponseWriter, r *http.Request) {
	f, err := session(r).EditForm(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) newFormHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, session(r).NewForm(r.URL.Query().Get("date")))
}

func (s *Server) closeFormHandler(w http.ResponseWriter, r *http.Request) {
	session(r).CloseEditor()
	w.WriteHeader(http.StatusNoContent)
}

// saveHandler cria ou edita conforme o formulário tenha id.
func (s *Server) saveHandler(w http.ResponseWriter, r *http.Request) {
	var f editor.Form
	if err := decode(r, &f); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := session(r).Submit(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (s *Server) deleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := session(r).Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	a := session(r)
	info := a.Session()
	if !info.SignedIn {
		s.writeError(w, apperr.ErrNoTenant)
		return
	}
	body := ics.Export(a.Items(), info.Unit, s.loc, s.now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="oitivas-`+info.Tenant+`.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
