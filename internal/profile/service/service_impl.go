package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/holidaytable/holidaytable/internal/clock"
	"github.com/holidaytable/holidaytable/internal/profile/domain"
	referencedomain "github.com/holidaytable/holidaytable/internal/reference/domain"
	"github.com/holidaytable/holidaytable/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bwmarrin/snowflake"
)

const maxAvailableDates = 16

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	Reference referencedomain.Repository
	Clock     clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	reference referencedomain.Repository
	clock     clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("profile.service"),
		repo:      p.Repo,
		reference: p.Reference,
		clock:     p.Clock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProfileRequest) (*domain.Profile, error) {
	if req.UserID == 0 {
		return nil, domain.ErrNotOwner
	}

	role := domain.Role(strings.TrimSpace(req.Role))
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	dates, err := s.normalizeDates(ctx, req.AvailableDates)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUserID(ctx, s.db, req.UserID); err == nil {
		return nil, domain.ErrProfileExists
	} else if err != domain.ErrProfileNotFound {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = "Guest"
	}

	username, err := s.generateUsername(ctx, displayName)
	if err != nil {
		return nil, err
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	now := s.clock.Now().UTC()
	profile := &domain.Profile{
		UserID:         req.UserID,
		Username:       username,
		DisplayName:    displayName,
		Role:           role,
		AvailableDates: datatypes.NewJSONSlice(dates),
		Headline:       strings.TrimSpace(req.Headline),
		Bio:            strings.TrimSpace(req.Bio),
		City:           strings.TrimSpace(req.City),
		PhotoURL:       strings.TrimSpace(req.PhotoURL),
		Visible:        visible,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, profile); err != nil {
		return nil, err
	}

	s.log.Info("profile created",
		zap.String("user_id", profile.UserID.String()),
		zap.String("username", profile.Username),
		zap.String("role", string(profile.Role)),
	)

	return profile, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	if req.ActorID == 0 || req.ActorID != req.UserID {
		return nil, domain.ErrNotOwner
	}

	profile, err := s.repo.FindByUserID(ctx, s.db, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name != "" {
			profile.DisplayName = name
		}
	}
	if req.Role != nil {
		role := domain.Role(strings.TrimSpace(*req.Role))
		if !role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		profile.Role = role
	}
	if req.AvailableDates != nil {
		dates, err := s.normalizeDates(ctx, req.AvailableDates)
		if err != nil {
			return nil, err
		}
		profile.AvailableDates = datatypes.NewJSONSlice(dates)
	}
	if req.Headline != nil {
		profile.Headline = strings.TrimSpace(*req.Headline)
	}
	if req.Bio != nil {
		profile.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.City != nil {
		profile.City = strings.TrimSpace(*req.City)
	}
	if req.PhotoURL != nil {
		profile.PhotoURL = strings.TrimSpace(*req.PhotoURL)
	}
	if req.Visible != nil {
		profile.Visible = *req.Visible
	}
	profile.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *Service) Get(ctx context.Context, viewerID, userID snowflake.ID) (*domain.Profile, error) {
	profile, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if !profile.Visible && profile.UserID != viewerID {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Service) GetByUsername(ctx context.Context, viewerID snowflake.ID, username string) (*domain.Profile, error) {
	profile, err := s.repo.FindByUsername(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if !profile.Visible && profile.UserID != viewerID {
		return nil, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProfileRequest) (domain.ListProfileResponse, error) {
	filter := domain.ListProfileFilter{
		Date:         strings.TrimSpace(req.Date),
		City:         strings.TrimSpace(req.City),
		VerifiedOnly: req.VerifiedOnly,
	}
	if role := domain.Role(strings.TrimSpace(req.Role)); role != "" {
		if !role.Valid() {
			return domain.ListProfileResponse{}, domain.ErrInvalidRole
		}
		filter.Role = role
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListProfileResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, page.Limit(), func(p *domain.Profile) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        p.UserID.String(),
			CreatedAt: p.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	profiles := make([]domain.Profile, 0, len(items))
	for _, item := range items {
		profiles = append(profiles, *item)
	}

	resp := domain.ListProfileResponse{Profiles: profiles}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// normalizeDates trims, dedupes, and validates holiday-date codes against the
// reference table.
func (s *Service) normalizeDates(ctx context.Context, raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	dates := make([]string, 0, len(raw))
	for _, code := range raw {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		dates = append(dates, code)
	}
	if len(dates) == 0 || len(dates) > maxAvailableDates {
		return nil, domain.ErrInvalidDates
	}
	for _, code := range dates {
		ok, err := s.reference.IsHolidayDate(ctx, code)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrInvalidDates
		}
	}
	return dates, nil
}

func (s *Service) generateUsername(ctx context.Context, displayName string) (string, error) {
	base := slug.Make(displayName)
	if base == "" {
		base = "guest"
	}
	count, err := s.repo.CountUsernamePrefix(ctx, s.db, base)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, count+1), nil
}
