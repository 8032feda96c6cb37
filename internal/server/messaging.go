package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	messagingdomain "github.com/holidaytable/holidaytable/internal/messaging/domain"
)

type SendMessageRequest struct {
	Body string `json:"body"`
}

func (s *Server) SendMessage(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	otherID, err := snowflake.ParseString(c.Param("userId"))
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_id", "invalid user id"))
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	msg, err := s.messagingSvc.SendMessage(c.Request.Context(), actorID, otherID, strings.TrimSpace(req.Body))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (s *Server) ListMessages(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	otherID, err := snowflake.ParseString(c.Param("userId"))
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_id", "invalid user id"))
		return
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	resp, err := s.messagingSvc.ListMessages(c.Request.Context(), messagingdomain.ListMessagesRequest{
		ActorID:     actorID,
		OtherUserID: otherID,
		PageToken:   c.Query("page_token"),
		PageSize:    pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UnreadMessageCount(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	count, err := s.messagingSvc.UnreadCount(c.Request.Context(), actorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
