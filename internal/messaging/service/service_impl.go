package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/clock"
	connectiondomain "github.com/holidaytable/holidaytable/internal/connection/domain"
	"github.com/holidaytable/holidaytable/internal/messaging/domain"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Connections connectiondomain.Service
	Clock       clock.Clock
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	connections connectiondomain.Service
	clock       clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("messaging.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		connections: p.Connections,
		clock:       p.Clock,
	}
}

func (s *Service) SendMessage(ctx context.Context, actorID, otherUserID snowflake.ID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > domain.MaxBodyLength() {
		return nil, domain.ErrBodyTooLong
	}

	if err := s.requireMatched(ctx, actorID, otherUserID); err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:          s.genID.Generate(),
		PairKey:     connectiondomain.PairKeyFor(actorID, otherUserID),
		SenderID:    actorID,
		RecipientID: otherUserID,
		Body:        body,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *Service) ListMessages(ctx context.Context, req domain.ListMessagesRequest) (domain.ListMessagesResponse, error) {
	if err := s.requireMatched(ctx, req.ActorID, req.OtherUserID); err != nil {
		return domain.ListMessagesResponse{}, err
	}

	pairKey := connectiondomain.PairKeyFor(req.ActorID, req.OtherUserID)
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	items, err := s.repo.ListByPair(ctx, s.db, pairKey, page)
	if err != nil {
		return domain.ListMessagesResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Limit(), func(m *domain.Message) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        m.ID.String(),
			CreatedAt: m.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	// Reading the conversation clears the actor's unread flags for it.
	if err := s.repo.MarkPairRead(ctx, s.db, pairKey, req.ActorID, s.clock.Now().UTC()); err != nil {
		s.log.Warn("failed to mark conversation read",
			zap.String("pair_key", pairKey),
			zap.Error(err),
		)
	}

	messages := make([]domain.Message, 0, len(items))
	for _, item := range items {
		messages = append(messages, *item)
	}

	resp := domain.ListMessagesResponse{Messages: messages}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) UnreadCount(ctx context.Context, actorID snowflake.ID) (int64, error) {
	return s.repo.CountUnread(ctx, s.db, actorID)
}

func (s *Service) requireMatched(ctx context.Context, actorID, otherUserID snowflake.ID) error {
	status, err := s.connections.ConnectionStatus(ctx, actorID, otherUserID)
	if err != nil {
		return err
	}
	if status != connectiondomain.ConnectionMatched {
		return domain.ErrNotMatched
	}
	return nil
}
