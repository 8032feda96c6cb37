package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/clock"
	"github.com/holidaytable/holidaytable/internal/config"
	"github.com/holidaytable/holidaytable/internal/connection/domain"
	"github.com/holidaytable/holidaytable/internal/connection/event"
	"github.com/holidaytable/holidaytable/internal/observability/metrics"
	profiledomain "github.com/holidaytable/holidaytable/internal/profile/domain"
	"github.com/holidaytable/holidaytable/internal/ratelimit"
	referencedomain "github.com/holidaytable/holidaytable/internal/reference/domain"
	"github.com/holidaytable/holidaytable/pkg/db"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Profiles  profiledomain.Repository
	Reference referencedomain.Repository
	Matching  *config.MatchingConfigHolder
	Limiter   *ratelimit.InviteLimiter `optional:"true"`
	Publisher event.Publisher
	Metrics   *metrics.Metrics `optional:"true"`
	Clock     clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	profiles  profiledomain.Repository
	reference referencedomain.Repository
	matching  *config.MatchingConfigHolder
	limiter   *ratelimit.InviteLimiter
	publisher event.Publisher
	metrics   *metrics.Metrics
	clock     clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("connection.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		profiles:  p.Profiles,
		reference: p.Reference,
		matching:  p.Matching,
		limiter:   p.Limiter,
		publisher: p.Publisher,
		metrics:   p.Metrics,
		clock:     p.Clock,
	}
}

func (s *Service) Send(ctx context.Context, actorID, toUserID snowflake.ID, date string) (snowflake.ID, error) {
	if actorID == 0 || actorID == toUserID {
		return 0, domain.ErrSelfInvitation
	}

	allowed, err := s.limiter.AllowSend(ctx, actorID)
	if err != nil {
		// Open on limiter failure: matchmaking should not depend on redis.
		s.log.Warn("invite rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		s.metrics.RecordRateLimitDenied(ctx, "connections.send")
		return 0, domain.ErrRateLimited
	}

	target, err := s.profiles.FindByUserID(ctx, s.db, toUserID)
	if err != nil {
		if err == profiledomain.ErrProfileNotFound {
			return 0, domain.ErrProfileNotFound
		}
		return 0, err
	}
	if !target.Visible {
		return 0, domain.ErrProfileNotFound
	}

	date = strings.ToLower(strings.TrimSpace(date))
	if err := s.checkDate(ctx, target, date); err != nil {
		return 0, err
	}

	pairKey := domain.PairKeyFor(actorID, toUserID)
	invitation := &domain.Invitation{
		ID:         s.genID.Generate(),
		FromUserID: actorID,
		ToUserID:   toUserID,
		PairKey:    pairKey,
		Date:       date,
		Status:     domain.StatusPending,
		CreatedAt:  s.clock.Now().UTC(),
	}

	// The duplicate re-check and insert share one transaction; the partial
	// unique index on (pair_key) WHERE status <> 'declined' is the backstop
	// for concurrent sends that both pass the read.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindActiveByPair(ctx, tx, pairKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateConnection
		}
		return s.repo.Insert(ctx, tx, invitation)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return 0, domain.ErrDuplicateConnection
		}
		return 0, err
	}

	s.metrics.RecordInvitationSent(ctx, date)
	s.emit(ctx, event.TopicInvitationReceived, toUserID, invitation, actorID)

	return invitation.ID, nil
}

func (s *Service) Respond(ctx context.Context, actorID, invitationID snowflake.ID, accept bool) error {
	status := domain.StatusDeclined
	if accept {
		status = domain.StatusAccepted
	}

	var invitation *domain.Invitation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.FindByID(ctx, tx, invitationID)
		if err != nil {
			return err
		}
		if found.ToUserID != actorID {
			return domain.ErrNotAuthorized
		}
		if found.Status != domain.StatusPending {
			return domain.ErrAlreadyResponded
		}

		respondedAt := s.clock.Now().UTC()
		ok, err := s.repo.MarkResponded(ctx, tx, found.ID, status, respondedAt)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyResponded
		}

		found.Status = status
		found.RespondedAt = &respondedAt
		invitation = found
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordInvitationResponded(ctx, string(status))

	topic := event.TopicInvitationDeclined
	if accept {
		topic = event.TopicInvitationAccepted
	}
	s.emit(ctx, topic, invitation.FromUserID, invitation, actorID)

	return nil
}

func (s *Service) ConnectionStatus(ctx context.Context, viewerID, otherID snowflake.ID) (domain.ConnectionStatus, error) {
	if viewerID == otherID {
		return domain.ConnectionSelf, nil
	}

	latest, err := s.repo.LatestByPair(ctx, s.db, domain.PairKeyFor(viewerID, otherID))
	if err != nil {
		return "", err
	}
	if latest == nil {
		return domain.ConnectionNone, nil
	}

	switch latest.Status {
	case domain.StatusAccepted:
		return domain.ConnectionMatched, nil
	case domain.StatusPending:
		if latest.FromUserID == viewerID {
			return domain.ConnectionPendingSent, nil
		}
		return domain.ConnectionPendingReceived, nil
	default:
		// Only recipients respond, so the decliner is always ToUserID.
		if latest.ToUserID == viewerID {
			return domain.ConnectionDeclinedByMe, nil
		}
		return domain.ConnectionDeclinedByThem, nil
	}
}

func (s *Service) PendingCount(ctx context.Context, actorID snowflake.ID) (int64, error) {
	return s.repo.CountPendingTo(ctx, s.db, actorID)
}

func (s *Service) ListReceived(ctx context.Context, req domain.ListInvitationsRequest) (domain.ListInvitationsResponse, error) {
	return s.list(ctx, req, s.repo.ListPendingReceived, func(inv *domain.Invitation) snowflake.ID {
		return inv.FromUserID
	})
}

func (s *Service) ListSent(ctx context.Context, req domain.ListInvitationsRequest) (domain.ListInvitationsResponse, error) {
	return s.list(ctx, req, s.repo.ListPendingSent, func(inv *domain.Invitation) snowflake.ID {
		return inv.ToUserID
	})
}

type listFn func(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*domain.Invitation, error)

func (s *Service) list(ctx context.Context, req domain.ListInvitationsRequest, fetch listFn, counterpart func(*domain.Invitation) snowflake.ID) (domain.ListInvitationsResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	items, err := fetch(ctx, s.db, req.ActorID, page)
	if err != nil {
		return domain.ListInvitationsResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Limit(), func(inv *domain.Invitation) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID.String(),
			CreatedAt: inv.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	views := make([]domain.InvitationView, 0, len(items))
	for _, inv := range items {
		view := domain.InvitationView{
			Invitation:        *inv,
			CounterpartUserID: counterpart(inv),
		}
		if profile, err := s.profiles.FindByUserID(ctx, s.db, view.CounterpartUserID); err == nil {
			view.CounterpartUsername = profile.Username
			view.CounterpartDisplayName = profile.DisplayName
			view.CounterpartPhotoURL = profile.PhotoURL
		}
		views = append(views, view)
	}

	resp := domain.ListInvitationsResponse{Invitations: views}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) checkDate(ctx context.Context, target *profiledomain.Profile, date string) error {
	if date == "" {
		return domain.ErrDateNotAvailable
	}
	ok, err := s.reference.IsHolidayDate(ctx, date)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrDateNotAvailable
	}
	if !s.matching.Get().EnforceDateAvailability {
		return nil
	}
	if !target.HostsOn(date) {
		return domain.ErrDateNotAvailable
	}
	return nil
}

// emit publishes a notification event after the mutation has committed.
// Dispatch is fire-and-forget: a publish failure is logged, never returned.
func (s *Service) emit(ctx context.Context, topic string, recipientID snowflake.ID, invitation *domain.Invitation, actorID snowflake.ID) {
	payload := event.InvitationPayload{
		InvitationID: invitation.ID.String(),
		FromUserID:   invitation.FromUserID.String(),
		ToUserID:     invitation.ToUserID.String(),
		Date:         invitation.Date,
	}
	if profile, err := s.profiles.FindByUserID(ctx, s.db, actorID); err == nil {
		payload.FromDisplayName = profile.DisplayName
	}

	if err := s.publisher.Publish(ctx, topic, recipientID, payload); err != nil {
		s.metrics.RecordNotificationFailed(ctx, topic)
		s.log.Error("failed to publish notification event",
			zap.String("topic", topic),
			zap.String("invitation_id", invitation.ID.String()),
			zap.Error(err),
		)
	}
}
