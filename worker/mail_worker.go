package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"complaintdesk/service"
)

// MailWorker periodically drains the email outbox in the background.
type MailWorker struct {
	mailer   *service.MailerService
	interval time.Duration
	log      *zap.SugaredLogger
	stopChan chan struct{}
	running  bool
}

// NewMailWorker creates a new mail worker
func NewMailWorker(mailer *service.MailerService, interval time.Duration, log *zap.SugaredLogger) *MailWorker {
	return &MailWorker{
		mailer:   mailer,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start starts the mail worker in a separate goroutine
func (w *MailWorker) Start() {
	if w.running {
		w.log.Warn("mail worker is already running")
		return
	}

	w.running = true
	w.log.Infow("mail worker started", "interval", w.interval)

	go w.run()
}

// Stop stops the mail worker
func (w *MailWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	w.log.Info("mail worker stopped")
}

func (w *MailWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Process immediately on start
	w.drain()

	for {
		select {
		case <-ticker.C:
			w.drain()
		case <-w.stopChan:
			return
		}
	}
}

func (w *MailWorker) drain() {
	sent, err := w.mailer.ProcessOutbox(context.Background())
	if err != nil {
		w.log.Errorw("outbox processing failed", "error", err)
		return
	}
	if sent > 0 {
		w.log.Infow("outbox drained", "sent", sent)
	}
}
