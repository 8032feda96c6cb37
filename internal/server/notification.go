package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	notificationdomain "github.com/holidaytable/holidaytable/internal/notification/domain"
)

func (s *Server) ListNotifications(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	resp, err := s.notificationSvc.List(c.Request.Context(), notificationdomain.ListNotificationsRequest{
		UserID:    userID,
		PageToken: c.Query("page_token"),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UnreadNotificationCount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	count, err := s.notificationSvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := s.notificationSvc.MarkAllRead(c.Request.Context(), userID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	notificationID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, notificationdomain.ErrNotificationNotFound)
		return
	}

	if err := s.notificationSvc.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
