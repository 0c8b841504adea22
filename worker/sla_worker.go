package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"complaintdesk/service"
)

// SLAWorker periodically runs the SLA escalation sweeps in the background.
type SLAWorker struct {
	slaService *service.SLAService
	interval   time.Duration
	log        *zap.SugaredLogger
	stopChan   chan struct{}
	running    bool
}

// NewSLAWorker creates a new SLA worker
func NewSLAWorker(slaService *service.SLAService, interval time.Duration, log *zap.SugaredLogger) *SLAWorker {
	return &SLAWorker{
		slaService: slaService,
		interval:   interval,
		log:        log,
		stopChan:   make(chan struct{}),
	}
}

// Start starts the SLA worker in a separate goroutine
func (w *SLAWorker) Start() {
	if w.running {
		w.log.Warn("SLA worker is already running")
		return
	}

	w.running = true
	w.log.Infow("SLA worker started", "interval", w.interval)

	go w.run()
}

// Stop stops the SLA worker
func (w *SLAWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	w.log.Info("SLA worker stopped")
}

func (w *SLAWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Process immediately on start
	w.runSweeps()

	for {
		select {
		case <-ticker.C:
			w.runSweeps()
		case <-w.stopChan:
			return
		}
	}
}

// runSweeps executes all sweeps once. Sweeps are idempotent within their
// dedup windows, so overlapping triggers are harmless.
func (w *SLAWorker) runSweeps() {
	start := time.Now()
	reports := w.slaService.RunAll(context.Background())

	for _, report := range reports {
		if report.Matched > 0 || report.Processed > 0 {
			w.log.Infow("sweep results",
				"kind", report.Kind, "matched", report.Matched, "processed", report.Processed)
		}
	}
	w.log.Infow("SLA sweeps completed", "duration", time.Since(start))
}
