package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
)

var (
	ErrProfileNotFound = errors.New("profile_not_found")
	ErrProfileExists   = errors.New("profile_exists")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrInvalidDates    = errors.New("invalid_dates")
	ErrNotOwner        = errors.New("not_owner")
)

type CreateProfileRequest struct {
	UserID         snowflake.ID
	DisplayName    string
	Role           string
	AvailableDates []string
	Headline       string
	Bio            string
	City           string
	PhotoURL       string
	Visible        *bool
}

// UpdateProfileRequest carries the mutable fields; nil pointers leave the
// stored value untouched.
type UpdateProfileRequest struct {
	UserID         snowflake.ID
	ActorID        snowflake.ID
	DisplayName    *string
	Role           *string
	AvailableDates []string
	Headline       *string
	Bio            *string
	City           *string
	PhotoURL       *string
	Visible        *bool
}

type ListProfileRequest struct {
	PageToken    string
	PageSize     int
	Role         string
	Date         string
	City         string
	VerifiedOnly bool
}

type ListProfileFilter struct {
	Role         Role
	Date         string
	City         string
	VerifiedOnly bool
}

type ListProfileResponse struct {
	pagination.PageInfo
	Profiles []Profile `json:"profiles"`
}

type Service interface {
	Create(ctx context.Context, req CreateProfileRequest) (*Profile, error)
	Update(ctx context.Context, req UpdateProfileRequest) (*Profile, error)
	// Get returns the profile for userID. Invisible profiles are hidden
	// unless the viewer owns them.
	Get(ctx context.Context, viewerID, userID snowflake.ID) (*Profile, error)
	GetByUsername(ctx context.Context, viewerID snowflake.ID, username string) (*Profile, error)
	List(ctx context.Context, req ListProfileRequest) (ListProfileResponse, error)
}
