// Package hearings mantém o espelho em memória das oitivas da unidade e
// faz todas as gravações no armazenamento remoto.
package hearings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"oitivas-pro/internal/docstore"
	"oitivas-pro/internal/tenant"
	"oitivas-pro/pkg/apperr"
	"oitivas-pro/pkg/models"
)

// TimestampLayout segue o formato ISO 8601 em UTC com milissegundos.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Snapshot é uma visão imutável do cache após uma troca.
type Snapshot struct {
	Items    []models.Appointment
	Revision uint64
}

// Listener é avisado após cada troca do cache. Roda na goroutine que
// trocou o cache e não pode chamar Reload nem gravar.
type Listener func(Snapshot)

// Store é o AppointmentStore. O cache só é trocado por inteiro, via Reload
// ou Clear; gravações nunca mexem nele direto.
type Store struct {
	docs    docstore.Store
	tenants *tenant.Context
	root    string
	log     *logrus.Entry
	now     func() time.Time

	seq atomic.Uint64

	// notifyMu serializa troca e aviso, então os listeners veem as revisões em ordem.
	notifyMu sync.Mutex

	mu       sync.RWMutex
	items    []models.Appointment
	revision uint64
	applied  uint64

	listenersMu sync.Mutex
	listeners   []subscription
	nextID      int
}

type subscription struct {
	id int
	fn Listener
}

// NewStore cria um store para a unidade guardada em tenants.
func NewStore(docs docstore.Store, tenants *tenant.Context, root string, log *logrus.Entry) *Store {
	return &Store{
		docs:    docs,
		tenants: tenants,
		root:    root,
		log:     log,
		now:     time.Now,
	}
}

// Subscribe registra fn e retorna a função que o remove.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot retorna uma cópia do cache atual.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Items: copyItems(s.items), Revision: s.revision}
}

// Find busca uma oitiva no cache.
func (s *Store) Find(id string) (models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.items {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

// Reload busca a coleção inteira da unidade ativa e troca o cache. Em
// falha de transporte o cache volta a vazio. Se a sessão mudou durante a
// busca o resultado é descartado e retorna ErrSessionChanged.
func (s *Store) Reload(ctx context.Context) ([]models.Appointment, error) {
	lease, err := s.tenants.Current()
	if err != nil {
		return nil, err
	}

	seq := s.seq.Add(1)
	start := time.Now()
	docs, fetchErr := s.docs.ReadAll(ctx, docstore.HearingsPath(s.root, lease.Tenant))

	if fetchErr != nil {
		s.log.WithError(fetchErr).WithField("tenant", lease.Tenant).Error("❌ Erro ao ler banco")
		if _, ok := s.replace(lease, seq, nil); !ok {
			return nil, apperr.ErrSessionChanged
		}
		return nil, apperr.Wrap(fetchErr, apperr.CodeFetch, "falha ao carregar oitivas")
	}

	items := s.decode(docs)
	models.SortChronologically(items)
	current, ok := s.replace(lease, seq, items)
	if !ok {
		s.log.WithField("tenant", lease.Tenant).Warn("⚠️ Resultado de leitura descartado: sessão alterada")
		return nil, apperr.ErrSessionChanged
	}

	s.log.WithFields(logrus.Fields{
		"tenant":      lease.Tenant,
		"total":       len(items),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("✅ Oitivas carregadas")

	return current, nil
}

// Clear esvazia o cache. Chamado no fim da sessão.
func (s *Store) Clear() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.items = nil
	s.applied = s.seq.Load()
	s.revision++
	snap := Snapshot{Revision: s.revision}
	s.mu.Unlock()

	s.notify(snap)
}

// Create grava uma oitiva nova e recarrega. O store gera o ID e preenche
// createdAt, updatedAt, createdBy e unit.
func (s *Store) Create(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	lease, err := s.tenants.Current()
	if err != nil {
		return models.Appointment{}, err
	}

	stamp := s.timestamp()
	author := attribution(lease.Principal)
	a.ID = ""
	a.CreatedAt = stamp
	a.UpdatedAt = stamp
	a.CreatedBy = author
	a.Unit = author

	key, err := s.docs.Create(ctx, docstore.HearingsPath(s.root, lease.Tenant), a.Fields())
	if err != nil {
		s.log.WithError(err).WithField("tenant", lease.Tenant).Error("❌ Erro ao criar oitiva")
		return models.Appointment{}, apperr.Wrap(err, apperr.CodeWrite, "falha ao criar oitiva")
	}
	a.ID = key

	s.log.WithFields(logrus.Fields{"tenant": lease.Tenant, "id": key}).Info("✅ Oitiva criada")
	s.reloadAfterWrite(ctx)
	return a, nil
}

// Update faz merge dos campos na oitiva id e recarrega. Identidade e
// autoria da criação não mudam; updatedAt e unit são preenchidos.
func (s *Store) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	lease, err := s.tenants.Current()
	if err != nil {
		return err
	}
	if !docstore.ValidKey(id) {
		return apperr.Wrap(apperr.ErrNotFound, apperr.CodeWrite, "oitiva não encontrada")
	}

	patch := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		switch k {
		case "id", "createdAt", "createdBy":
			continue
		}
		patch[k] = v
	}
	patch["updatedAt"] = s.timestamp()
	patch["unit"] = attribution(lease.Principal)

	collection := docstore.HearingsPath(s.root, lease.Tenant)
	err = s.docs.Update(ctx, docstore.Child(collection, id), patch)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		s.log.WithFields(logrus.Fields{"tenant": lease.Tenant, "id": id}).Warn("⚠️ Oitiva não encontrada para atualização")
		return apperr.Wrap(apperr.ErrNotFound, apperr.CodeWrite, "oitiva não encontrada")
	case err != nil:
		s.log.WithError(err).WithField("tenant", lease.Tenant).Error("❌ Erro ao atualizar oitiva")
		return apperr.Wrap(err, apperr.CodeWrite, "falha ao atualizar oitiva")
	}

	s.log.WithFields(logrus.Fields{"tenant": lease.Tenant, "id": id}).Info("✅ Oitiva atualizada")
	s.reloadAfterWrite(ctx)
	return nil
}

// Delete remove a oitiva id e recarrega. Excluir id inexistente não é erro.
func (s *Store) Delete(ctx context.Context, id string) error {
	lease, err := s.tenants.Current()
	if err != nil {
		return err
	}

	if docstore.ValidKey(id) {
		collection := docstore.HearingsPath(s.root, lease.Tenant)
		err = s.docs.Delete(ctx, docstore.Child(collection, id))
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			s.log.WithError(err).WithField("tenant", lease.Tenant).Error("❌ Erro ao excluir oitiva")
			return apperr.Wrap(err, apperr.CodeWrite, "falha ao excluir oitiva").WithDetails("Erro ao excluir")
		}
	}

	s.log.WithFields(logrus.Fields{"tenant": lease.Tenant, "id": id}).Info("🗑️ Registro excluído")
	s.reloadAfterWrite(ctx)
	return nil
}

// reloadAfterWrite mantém o cache como espelho após uma gravação. Um
// reload com falha já zerou o cache e a gravação continua valendo, então
// o erro só vai para o log.
func (s *Store) reloadAfterWrite(ctx context.Context) {
	if _, err := s.Reload(ctx); err != nil {
		s.log.WithError(err).Warn("⚠️ Recarga após gravação falhou")
	}
}

// replace instala items se o lease ainda vale e seq não é mais antigo que
// a leitura já aplicada. Devolve o conteúdo do cache após a operação; uma
// leitura mais antiga não altera nada e devolve o cache atual. ok é false
// só quando o lease expirou.
func (s *Store) replace(lease tenant.Lease, seq uint64, items []models.Appointment) (current []models.Appointment, ok bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !s.tenants.Valid(lease) {
		s.mu.Unlock()
		return nil, false
	}
	if seq < s.applied {
		current = copyItems(s.items)
		s.mu.Unlock()
		return current, true
	}
	s.items = items
	s.applied = seq
	s.revision++
	snap := Snapshot{Items: copyItems(items), Revision: s.revision}
	s.mu.Unlock()

	s.notify(snap)
	return copyItems(items), true
}

func (s *Store) notify(snap Snapshot) {
	s.listenersMu.Lock()
	subs := append([]subscription(nil), s.listeners...)
	s.listenersMu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

func (s *Store) decode(docs []docstore.Document) []models.Appointment {
	items := make([]models.Appointment, 0, len(docs))
	for _, d := range docs {
		var a models.Appointment
		if err := json.Unmarshal(d.Value, &a); err != nil {
			s.log.WithError(err).WithField("id", d.Key).Warn("⚠️ Documento ignorado: formato inválido")
			continue
		}
		a.ID = d.Key
		items = append(items, a)
	}
	return items
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

func attribution(p tenant.Principal) string {
	if p.Email != "" {
		return p.Email
	}
	return p.UID
}

func copyItems(in []models.Appointment) []models.Appointment {
	if in == nil {
		return []models.Appointment{}
	}
	out := make([]models.Appointment, len(in))
	copy(out, in)
	return out
}
