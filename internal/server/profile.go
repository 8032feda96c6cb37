package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	connectiondomain "github.com/holidaytable/holidaytable/internal/connection/domain"
	profiledomain "github.com/holidaytable/holidaytable/internal/profile/domain"
)

type CreateProfileRequest struct {
	DisplayName    string   `json:"display_name"`
	Role           string   `json:"role"`
	AvailableDates []string `json:"available_dates"`
	Headline       string   `json:"headline"`
	Bio            string   `json:"bio"`
	City           string   `json:"city"`
	PhotoURL       string   `json:"photo_url"`
	Visible        *bool    `json:"visible"`
}

type UpdateProfileRequest struct {
	DisplayName    *string  `json:"display_name"`
	Role           *string  `json:"role"`
	AvailableDates []string `json:"available_dates"`
	Headline       *string  `json:"headline"`
	Bio            *string  `json:"bio"`
	City           *string  `json:"city"`
	PhotoURL       *string  `json:"photo_url"`
	Visible        *bool    `json:"visible"`
}

// profileView decorates a profile with the viewer-relative connection
// status so cards can render a contextual action button.
type profileView struct {
	profiledomain.Profile
	ConnectionStatus string `json:"connection_status,omitempty"`
}

func (s *Server) CreateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profile, err := s.profileSvc.Create(c.Request.Context(), profiledomain.CreateProfileRequest{
		UserID:         userID,
		DisplayName:    strings.TrimSpace(req.DisplayName),
		Role:           req.Role,
		AvailableDates: req.AvailableDates,
		Headline:       strings.TrimSpace(req.Headline),
		Bio:            req.Bio,
		City:           strings.TrimSpace(req.City),
		PhotoURL:       strings.TrimSpace(req.PhotoURL),
		Visible:        req.Visible,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (s *Server) UpdateMyProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profile, err := s.profileSvc.Update(c.Request.Context(), profiledomain.UpdateProfileRequest{
		UserID:         userID,
		ActorID:        userID,
		DisplayName:    req.DisplayName,
		Role:           req.Role,
		AvailableDates: req.AvailableDates,
		Headline:       req.Headline,
		Bio:            req.Bio,
		City:           req.City,
		PhotoURL:       req.PhotoURL,
		Visible:        req.Visible,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (s *Server) ListProfiles(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	resp, err := s.profileSvc.List(c.Request.Context(), profiledomain.ListProfileRequest{
		PageToken:    c.Query("page_token"),
		PageSize:     pageSize,
		Role:         c.Query("role"),
		Date:         c.Query("date"),
		City:         c.Query("city"),
		VerifiedOnly: c.Query("verified") == "true",
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProfileByUsername(c *gin.Context) {
	viewerID, ok := requireUserID(c)
	if !ok {
		return
	}

	username := strings.TrimSpace(c.Param("username"))
	profile, err := s.profileSvc.GetByUsername(c.Request.Context(), viewerID, username)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.renderProfile(c, viewerID, profile)
}

func (s *Server) GetProfileByID(c *gin.Context) {
	viewerID, ok := requireUserID(c)
	if !ok {
		return
	}

	userID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid user id"))
		return
	}

	profile, err := s.profileSvc.Get(c.Request.Context(), viewerID, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.renderProfile(c, viewerID, profile)
}

func (s *Server) renderProfile(c *gin.Context, viewerID snowflake.ID, profile *profiledomain.Profile) {
	view := profileView{Profile: *profile}
	if profile.UserID != viewerID {
		status, err := s.connectionSvc.ConnectionStatus(c.Request.Context(), viewerID, profile.UserID)
		if err == nil && status != connectiondomain.ConnectionNone {
			view.ConnectionStatus = string(status)
		}
	}
	c.JSON(http.StatusOK, view)
}
