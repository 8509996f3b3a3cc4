package workers

import (
	"context"
	"log/slog"

	"katalog/internal/jobs"
	"katalog/internal/mail"

	"golang.org/x/time/rate"
)

// MailRate is the number of notification emails sent per second.
const MailRate = 5

// ProductWorker handles the product queue.
type ProductWorker struct {
	users   UserDirectory
	mailer  mail.Mailer
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewProductWorker creates a ProductWorker sending at most perSecond emails
// per second.
func NewProductWorker(users UserDirectory, mailer mail.Mailer, perSecond float64, logger *slog.Logger) *ProductWorker {
	return &ProductWorker{
		users:   users,
		mailer:  mailer,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  logger.With("worker", jobs.QueueProduct),
	}
}

// Handle implements jobs.Handler.
func (w *ProductWorker) Handle(ctx context.Context, job jobs.Job, progress jobs.Progress) error {
	j, ok := job.(jobs.ProductCreated)
	if !ok {
		w.logger.Warn("Unhandled job kind", "kind", job.Kind())
		return nil
	}

	users, err := w.users.All(ctx)
	if err != nil {
		return err
	}

	var sent, failed int
	for i, u := range users {
		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := w.mailer.Send(ctx, mail.NewProductMessage(u.Email, j.Name)); err != nil {
			failed++
			w.logger.Error("Failed to send new product email", "to", u.Email, "error", err)
		} else {
			sent++
		}
		progress((i + 1) * 100 / len(users))
	}
	w.logger.Info("New product notifications finished",
		"productId", j.ProductID, "sent", sent, "failed", failed, "recipients", len(users))
	return nil
}
