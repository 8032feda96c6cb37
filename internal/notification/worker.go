package notification

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/holidaytable/holidaytable/internal/auth/domain"
	"github.com/holidaytable/holidaytable/internal/clock"
	"github.com/holidaytable/holidaytable/internal/notification/domain"
	"github.com/holidaytable/holidaytable/internal/observability/metrics"
	"github.com/holidaytable/holidaytable/internal/providers/email"
	"github.com/holidaytable/holidaytable/internal/ratelimit"
	referencedomain "github.com/holidaytable/holidaytable/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	pollInterval = 5 * time.Second
	batchSize    = 50
	maxAttempts  = 5
)

type WorkerParams struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Users     authdomain.Repository
	Reference referencedomain.Repository
	Email     email.Provider
	Limiter   *ratelimit.InviteLimiter `optional:"true"`
	Metrics   *metrics.Metrics         `optional:"true"`
	Clock     clock.Clock
}

// Worker drains the notification_events outbox: renders each event, sends
// the email, inserts the in-app notification row, and marks the event
// published. Failures are logged and retried on the next poll.
type Worker struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	users     authdomain.Repository
	reference referencedomain.Repository
	email     email.Provider
	limiter   *ratelimit.InviteLimiter
	metrics   *metrics.Metrics
	clock     clock.Clock
}

func NewWorker(p WorkerParams) *Worker {
	return &Worker{
		db:        p.DB,
		log:       p.Log.Named("notification.worker"),
		genID:     p.GenID,
		repo:      p.Repo,
		users:     p.Users,
		reference: p.Reference,
		email:     p.Email,
		limiter:   p.Limiter,
		metrics:   p.Metrics,
		clock:     p.Clock,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Drain(ctx); err != nil {
				w.log.Error("failed to drain notification outbox", zap.Error(err))
			}
		}
	}
}

// Drain processes one batch of unpublished events. Only one instance drains
// at a time when a redis lease is available.
func (w *Worker) Drain(ctx context.Context) error {
	token, ok, err := w.limiter.TryWorkerLease(ctx)
	if err != nil {
		w.log.Warn("worker lease unavailable, draining anyway", zap.Error(err))
	} else if !ok {
		return nil
	}
	if token != "" {
		defer func() {
			if err := w.limiter.ReleaseWorkerLease(ctx, token); err != nil {
				w.log.Warn("failed to release worker lease", zap.Error(err))
			}
		}()
	}

	events, err := w.repo.FetchUnpublished(ctx, w.db, batchSize)
	if err != nil {
		return err
	}

	for _, ev := range events {
		if err := w.process(ctx, ev); err != nil {
			w.metrics.RecordNotificationFailed(ctx, ev.EventType)
			w.log.Error("failed to process notification event",
				zap.String("event_id", ev.ID.String()),
				zap.String("event_type", ev.EventType),
				zap.String("correlation_id", ev.CorrelationID),
				zap.Error(err),
			)
			if err := w.repo.IncrementAttempts(ctx, w.db, ev.ID); err != nil {
				w.log.Error("failed to record attempt", zap.String("event_id", ev.ID.String()), zap.Error(err))
			}
		}
	}
	return nil
}

func (w *Worker) process(ctx context.Context, ev *domain.NotificationEvent) error {
	out, err := renderEvent(ev.EventType, ev.Payload, w.dateName(ctx, ev))
	if err != nil {
		// Malformed payloads never succeed; drop them after logging.
		w.log.Error("dropping malformed notification event",
			zap.String("event_id", ev.ID.String()),
			zap.Error(err),
		)
		return w.repo.MarkPublished(ctx, w.db, ev.ID, w.clock.Now().UTC())
	}

	// Deliverability is best effort: after maxAttempts the in-app row still
	// lands and the event is retired.
	if err := w.sendEmail(ctx, ev.RecipientID, out); err != nil && ev.Attempts+1 < maxAttempts {
		return err
	}

	now := w.clock.Now().UTC()
	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		notification := &domain.Notification{
			ID:        w.genID.Generate(),
			UserID:    ev.RecipientID,
			EventType: ev.EventType,
			Title:     out.Title,
			Body:      out.Body,
			CreatedAt: now,
		}
		if err := w.repo.InsertNotification(ctx, tx, notification); err != nil {
			return err
		}
		return w.repo.MarkPublished(ctx, tx, ev.ID, now)
	})
	if err != nil {
		return err
	}

	w.metrics.RecordNotificationEmitted(ctx, ev.EventType)
	return nil
}

func (w *Worker) sendEmail(ctx context.Context, recipientID snowflake.ID, out *rendered) error {
	user, err := w.users.FindByID(ctx, recipientID)
	if err != nil {
		return err
	}
	return w.email.Send(ctx, []string{user.Email}, out.Subject, out.HTMLBody)
}

func (w *Worker) dateName(ctx context.Context, ev *domain.NotificationEvent) string {
	var payload invitationPayload
	if err := payload.decode(ev.Payload); err != nil {
		return ""
	}
	dates, err := w.reference.ListHolidayDates(ctx)
	if err != nil {
		return payload.Date
	}
	for _, d := range dates {
		if d.Code == payload.Date {
			return d.Name
		}
	}
	return payload.Date
}
