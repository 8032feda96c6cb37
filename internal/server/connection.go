package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	connectiondomain "github.com/holidaytable/holidaytable/internal/connection/domain"
)

type SendInvitationRequest struct {
	ToUserID string `json:"to_user_id"`
	Date     string `json:"date"`
}

func (s *Server) SendInvitation(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SendInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	toUserID, err := snowflake.ParseString(req.ToUserID)
	if err != nil {
		AbortWithError(c, newValidationError("to_user_id", "invalid_id", "invalid user id"))
		return
	}

	id, err := s.connectionSvc.Send(c.Request.Context(), actorID, toUserID, req.Date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"invitation_id": id.String(),
		"status":        connectiondomain.StatusPending,
	})
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	s.respondInvitation(c, true)
}

func (s *Server) DeclineInvitation(c *gin.Context) {
	s.respondInvitation(c, false)
}

func (s *Server) respondInvitation(c *gin.Context, accept bool) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	invitationID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, connectiondomain.ErrInvitationNotFound)
		return
	}

	if err := s.connectionSvc.Respond(c.Request.Context(), actorID, invitationID, accept); err != nil {
		AbortWithError(c, err)
		return
	}

	status := connectiondomain.StatusDeclined
	if accept {
		status = connectiondomain.StatusAccepted
	}
	c.JSON(http.StatusOK, gin.H{
		"invitation_id": invitationID.String(),
		"status":        status,
	})
}

func (s *Server) GetConnectionStatus(c *gin.Context) {
	viewerID, ok := requireUserID(c)
	if !ok {
		return
	}

	otherID, err := snowflake.ParseString(c.Param("userId"))
	if err != nil {
		AbortWithError(c, newValidationError("user_id", "invalid_id", "invalid user id"))
		return
	}

	status, err := s.connectionSvc.ConnectionStatus(c.Request.Context(), viewerID, otherID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (s *Server) PendingInvitationCount(c *gin.Context) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	count, err := s.connectionSvc.PendingCount(c.Request.Context(), actorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) ListReceivedInvitations(c *gin.Context) {
	s.listInvitations(c, s.connectionSvc.ListReceived)
}

func (s *Server) ListSentInvitations(c *gin.Context) {
	s.listInvitations(c, s.connectionSvc.ListSent)
}

func (s *Server) listInvitations(c *gin.Context, list func(context.Context, connectiondomain.ListInvitationsRequest) (connectiondomain.ListInvitationsResponse, error)) {
	actorID, ok := requireUserID(c)
	if !ok {
		return
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	resp, err := list(c.Request.Context(), connectiondomain.ListInvitationsRequest{
		ActorID:   actorID,
		PageToken: c.Query("page_token"),
		PageSize:  pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
