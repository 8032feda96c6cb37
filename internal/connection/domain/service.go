package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
)

var (
	ErrSelfInvitation      = errors.New("self_invitation")
	ErrProfileNotFound     = errors.New("profile_not_found")
	ErrDateNotAvailable    = errors.New("date_not_available")
	ErrDuplicateConnection = errors.New("duplicate_connection")
	ErrInvitationNotFound  = errors.New("invitation_not_found")
	ErrNotAuthorized       = errors.New("not_authorized")
	ErrAlreadyResponded    = errors.New("already_responded")
	ErrRateLimited         = errors.New("rate_limited")
)

// InvitationView pairs an invitation with a summary of the counterpart
// profile for dashboard rendering.
type InvitationView struct {
	Invitation
	CounterpartUserID      snowflake.ID `json:"counterpart_user_id"`
	CounterpartUsername    string       `json:"counterpart_username"`
	CounterpartDisplayName string       `json:"counterpart_display_name"`
	CounterpartPhotoURL    string       `json:"counterpart_photo_url,omitempty"`
}

type ListInvitationsRequest struct {
	ActorID   snowflake.ID
	PageToken string
	PageSize  int
}

type ListInvitationsResponse struct {
	pagination.PageInfo
	Invitations []InvitationView `json:"invitations"`
}

type Service interface {
	// Send creates a pending invitation from actorID to toUserID for the
	// given holiday date. Precondition failures abort before any write.
	Send(ctx context.Context, actorID, toUserID snowflake.ID, date string) (snowflake.ID, error)

	// Respond accepts or declines a pending invitation. Only the recipient
	// may respond, and only once.
	Respond(ctx context.Context, actorID, invitationID snowflake.ID, accept bool) error

	// ConnectionStatus derives the viewer-relative relationship with another
	// user from the most recent invitation between them.
	ConnectionStatus(ctx context.Context, viewerID, otherID snowflake.ID) (ConnectionStatus, error)

	// PendingCount reports how many pending invitations are addressed to
	// the actor.
	PendingCount(ctx context.Context, actorID snowflake.ID) (int64, error)

	ListReceived(ctx context.Context, req ListInvitationsRequest) (ListInvitationsResponse, error)
	ListSent(ctx context.Context, req ListInvitationsRequest) (ListInvitationsResponse, error)
}
