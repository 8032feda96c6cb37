package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
)

var ErrNotificationNotFound = errors.New("notification_not_found")

type ListNotificationsRequest struct {
	UserID    snowflake.ID
	PageToken string
	PageSize  int
}

type ListNotificationsResponse struct {
	pagination.PageInfo
	Notifications []Notification `json:"notifications"`
}

type Service interface {
	UnreadCount(ctx context.Context, userID snowflake.ID) (int64, error)
	List(ctx context.Context, req ListNotificationsRequest) (ListNotificationsResponse, error)
	MarkRead(ctx context.Context, userID, notificationID snowflake.ID) error
	MarkAllRead(ctx context.Context, userID snowflake.ID) error
}
