package notify

import (
	"context"
	"sync"
	"time"

	"github.com/bwise1/reportnow/internal/metrics"
	"github.com/bwise1/reportnow/internal/model"
	"github.com/rs/zerolog/log"
)

// Dispatcher sends status emails in the background. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	sender  Sender
	from    string
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher returns a dispatcher. A nil sender disables delivery; every
// eligible notification is then logged as skipped.
func NewDispatcher(sender Sender, from string, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{sender: sender, from: from, timeout: timeout}
}

// Dispatch queues a status email for report when it opted in and carries an
// address. It reports whether a notification was attempted.
func (d *Dispatcher) Dispatch(report model.Report) bool {
	if !report.ShouldNotify() {
		return false
	}

	if d.sender == nil {
		log.Warn().Str("report_id", report.ReportID).Msg("RESEND_API_KEY is missing, skipping email notification")
		metrics.Notifications.WithLabelValues("skipped").Inc()
		return false
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(report)
	}()
	return true
}

func (d *Dispatcher) send(report model.Report) {
	logger := log.With().Str("report_id", report.ReportID).Str("status", report.Status).Logger()

	email, err := StatusUpdateEmail(d.from, report)
	if err != nil {
		logger.Error().Err(err).Msg("error building email notification")
		metrics.Notifications.WithLabelValues("failed").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, email); err != nil {
		logger.Error().Err(err).Msg("error sending email notification")
		metrics.Notifications.WithLabelValues("failed").Inc()
		return
	}

	logger.Info().Msg("email notification sent")
	metrics.Notifications.WithLabelValues("sent").Inc()
}

// Wait blocks until every queued notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
