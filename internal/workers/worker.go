package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Worker interface que todos os workers devem implementar
type Worker interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// WorkerManager gerencia múltiplos workers
type WorkerManager struct {
	workers  []Worker
	log      *logrus.Entry
	timeout  time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewWorkerManager cria um novo gerenciador de workers
func NewWorkerManager(log *logrus.Entry) *WorkerManager {
	return &WorkerManager{
		workers:  []Worker{},
		log:      log,
		timeout:  time.Minute,
		stopChan: make(chan struct{}),
	}
}

// RegisterWorker registra um novo worker
func (wm *WorkerManager) RegisterWorker(w Worker) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wm.workers = append(wm.workers, w)
	wm.log.WithFields(logrus.Fields{"worker": w.Name(), "interval": w.Interval().String()}).Info("✅ Worker registrado")
}

// Start inicia todos os workers registrados
func (wm *WorkerManager) Start() {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, worker := range wm.workers {
		wm.wg.Add(1)
		go wm.runWorker(worker)
	}

	wm.log.WithField("total", len(wm.workers)).Info("🚀 Workers iniciados")
}

// runWorker executa um worker específico
func (wm *WorkerManager) runWorker(w Worker) {
	defer wm.wg.Done()

	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wm.executeWorker(w)

		case <-wm.stopChan:
			wm.log.WithField("worker", w.Name()).Info("🛑 Worker parado")
			return
		}
	}
}

// executeWorker executa um worker com timeout e tratamento de erros
func (wm *WorkerManager) executeWorker(w Worker) {
	ctx, cancel := context.WithTimeout(context.Background(), wm.timeout)
	defer cancel()

	startTime := time.Now()

	if err := w.Run(ctx); err != nil {
		wm.log.WithError(err).WithField("worker", w.Name()).Error("❌ Erro no worker")
		return
	}
	wm.log.WithFields(logrus.Fields{
		"worker":      w.Name(),
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Debug("✅ Worker executado")
}

// Stop para todos os workers
func (wm *WorkerManager) Stop() {
	close(wm.stopChan)
	wm.wg.Wait()

	wm.log.Info("✅ Todos os workers parados")
}

// WorkerStats retorna estatísticas dos workers
type WorkerStats struct {
	TotalWorkers int      `json:"total_workers"`
	WorkerNames  []string `json:"worker_names"`
}

// GetStats retorna estatísticas dos workers
func (wm *WorkerManager) GetStats() WorkerStats {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	names := make([]string, len(wm.workers))
	for i, w := range wm.workers {
		names[i] = w.Name()
	}

	return WorkerStats{
		TotalWorkers: len(wm.workers),
		WorkerNames:  names,
	}
}
