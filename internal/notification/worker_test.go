package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/holidaytable/holidaytable/internal/auth/domain"
	authrepository "github.com/holidaytable/holidaytable/internal/auth/repository"
	"github.com/holidaytable/holidaytable/internal/clock"
	"github.com/holidaytable/holidaytable/internal/connection/event"
	"github.com/holidaytable/holidaytable/internal/notification/domain"
	"github.com/holidaytable/holidaytable/internal/notification/repository"
	"github.com/holidaytable/holidaytable/internal/notification/service"
	"github.com/holidaytable/holidaytable/internal/reference"
	referencedomain "github.com/holidaytable/holidaytable/internal/reference/domain"
	"github.com/holidaytable/holidaytable/pkg/db"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type capturingEmail struct {
	to       []string
	subjects []string
	bodies   []string
}

func (c *capturingEmail) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	c.to = append(c.to, to...)
	c.subjects = append(c.subjects, subject)
	c.bodies = append(c.bodies, htmlBody)
	return nil
}

type workerEnv struct {
	db        *gorm.DB
	worker    *Worker
	svc       domain.Service
	email     *capturingEmail
	publisher event.Publisher
	clock     *clock.FakeClock
}

func newWorkerEnv(t *testing.T) *workerEnv {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&domain.NotificationEvent{},
		&domain.Notification{},
		&authdomain.User{},
		&referencedomain.HolidayDate{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	user := &authdomain.User{ID: 1, Email: "alice@example.com", DisplayName: "Alice"}
	if err := dbConn.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	date := &referencedomain.HolidayDate{Code: "dec-24", Name: "Christmas Eve", Month: 12, Day: 24, SortOrder: 1}
	if err := dbConn.Create(date).Error; err != nil {
		t.Fatalf("failed to seed holiday date: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	users, _ := authrepository.New(dbConn)
	mail := &capturingEmail{}
	clk := clock.NewFakeClock(time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC))
	repo := repository.Provide()

	worker := NewWorker(WorkerParams{
		DB:        dbConn,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repo,
		Users:     users,
		Reference: reference.NewRepository(dbConn),
		Email:     mail,
		Clock:     clk,
	})
	svc := service.New(service.Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		Repo:  repo,
		Clock: clk,
	})

	return &workerEnv{
		db:        dbConn,
		worker:    worker,
		svc:       svc,
		email:     mail,
		publisher: event.NewOutboxPublisher(dbConn, node),
		clock:     clk,
	}
}

func TestDrainDeliversEvent(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()

	err := env.publisher.Publish(ctx, event.TopicInvitationReceived, 1, event.InvitationPayload{
		InvitationID:    "10",
		FromUserID:      "2",
		ToUserID:        "1",
		FromDisplayName: "Bob",
		Date:            "dec-24",
	})
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	if err := env.worker.Drain(ctx); err != nil {
		t.Fatalf("failed to drain: %v", err)
	}

	if len(env.email.to) != 1 || env.email.to[0] != "alice@example.com" {
		t.Fatalf("expected email to alice, got %v", env.email.to)
	}
	if !strings.Contains(env.email.subjects[0], "Bob") {
		t.Fatalf("expected sender name in subject, got %q", env.email.subjects[0])
	}
	if !strings.Contains(env.email.bodies[0], "Christmas Eve") {
		t.Fatalf("expected holiday name in body, got %q", env.email.bodies[0])
	}

	count, err := env.svc.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread notification, got %d", count)
	}

	var ev domain.NotificationEvent
	if err := env.db.First(&ev).Error; err != nil {
		t.Fatalf("failed to load event: %v", err)
	}
	if !ev.Published || ev.PublishedAt == nil {
		t.Fatal("expected event to be marked published")
	}
}

func TestDrainIsIdempotentOncePublished(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()

	err := env.publisher.Publish(ctx, event.TopicInvitationAccepted, 1, event.InvitationPayload{
		InvitationID:    "10",
		FromUserID:      "1",
		ToUserID:        "2",
		FromDisplayName: "Bob",
		Date:            "dec-24",
	})
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	if err := env.worker.Drain(ctx); err != nil {
		t.Fatalf("failed to drain: %v", err)
	}
	if err := env.worker.Drain(ctx); err != nil {
		t.Fatalf("failed to drain again: %v", err)
	}

	var count int64
	if err := env.db.Model(&domain.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count notifications: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 notification after double drain, got %d", count)
	}
}

func TestDrainDropsMalformedPayload(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()

	ev := &domain.NotificationEvent{
		ID:            99,
		EventType:     "invitation.received",
		RecipientID:   1,
		Payload:       datatypes.JSON("{not json"),
		CorrelationID: "test",
		CreatedAt:     env.clock.Now(),
	}
	if err := env.db.Create(ev).Error; err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}

	if err := env.worker.Drain(ctx); err != nil {
		t.Fatalf("failed to drain: %v", err)
	}

	var reloaded domain.NotificationEvent
	if err := env.db.First(&reloaded, "id = ?", 99).Error; err != nil {
		t.Fatalf("failed to reload event: %v", err)
	}
	if !reloaded.Published {
		t.Fatal("expected malformed event to be retired")
	}
	if len(env.email.to) != 0 {
		t.Fatalf("expected no email for malformed event, got %v", env.email.to)
	}
}

func TestMarkReadFlow(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()

	err := env.publisher.Publish(ctx, event.TopicInvitationDeclined, 1, event.InvitationPayload{
		InvitationID: "10",
		FromUserID:   "2",
		ToUserID:     "1",
		Date:         "dec-24",
	})
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
	if err := env.worker.Drain(ctx); err != nil {
		t.Fatalf("failed to drain: %v", err)
	}

	resp, err := env.svc.List(ctx, domain.ListNotificationsRequest{UserID: 1})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(resp.Notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(resp.Notifications))
	}

	if err := env.svc.MarkRead(ctx, 1, resp.Notifications[0].ID); err != nil {
		t.Fatalf("failed to mark read: %v", err)
	}

	count, err := env.svc.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread after mark read, got %d", count)
	}

	if err := env.svc.MarkRead(ctx, 2, resp.Notifications[0].ID); err != domain.ErrNotificationNotFound {
		t.Fatalf("expected ErrNotificationNotFound for other user, got %v", err)
	}
}
