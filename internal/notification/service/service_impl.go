package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/clock"
	"github.com/holidaytable/holidaytable/internal/notification/domain"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) UnreadCount(ctx context.Context, userID snowflake.ID) (int64, error) {
	return s.repo.CountUnread(ctx, s.db, userID)
}

func (s *Service) List(ctx context.Context, req domain.ListNotificationsRequest) (domain.ListNotificationsResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	items, err := s.repo.ListByUser(ctx, s.db, req.UserID, page)
	if err != nil {
		return domain.ListNotificationsResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Limit(), func(n *domain.Notification) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        n.ID.String(),
			CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	notifications := make([]domain.Notification, 0, len(items))
	for _, item := range items {
		notifications = append(notifications, *item)
	}

	resp := domain.ListNotificationsResponse{Notifications: notifications}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID snowflake.ID) error {
	ok, err := s.repo.MarkRead(ctx, s.db, userID, notificationID, s.clock.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID snowflake.ID) error {
	return s.repo.MarkAllRead(ctx, s.db, userID, s.clock.Now().UTC())
}
