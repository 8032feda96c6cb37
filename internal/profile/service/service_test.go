package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/clock"
	"github.com/holidaytable/holidaytable/internal/profile/domain"
	"github.com/holidaytable/holidaytable/internal/profile/repository"
	"github.com/holidaytable/holidaytable/internal/reference"
	referencedomain "github.com/holidaytable/holidaytable/internal/reference/domain"
	"github.com/holidaytable/holidaytable/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Profile{}, &referencedomain.HolidayDate{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	seedHolidayDates(t, dbConn)

	clk := clock.NewFakeClock(time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:        dbConn,
		Log:       zap.NewNop(),
		Repo:      repository.Provide(),
		Reference: reference.NewRepository(dbConn),
		Clock:     clk,
	})
	return svc, clk
}

func seedHolidayDates(t *testing.T, dbConn *gorm.DB) {
	t.Helper()
	dates := []referencedomain.HolidayDate{
		{Code: "dec-24", Name: "Christmas Eve", Month: 12, Day: 24, SortOrder: 1},
		{Code: "dec-25", Name: "Christmas Day", Month: 12, Day: 25, SortOrder: 2},
		{Code: "dec-31", Name: "New Year's Eve", Month: 12, Day: 31, SortOrder: 3},
	}
	if err := dbConn.Create(&dates).Error; err != nil {
		t.Fatalf("failed to seed holiday dates: %v", err)
	}
}

func createProfile(t *testing.T, svc domain.Service, userID snowflake.ID, name, role string, dates []string) *domain.Profile {
	t.Helper()
	profile, err := svc.Create(context.Background(), domain.CreateProfileRequest{
		UserID:         userID,
		DisplayName:    name,
		Role:           role,
		AvailableDates: dates,
	})
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return profile
}

func TestCreateProfileGeneratesUsername(t *testing.T) {
	svc, _ := newTestService(t)

	first := createProfile(t, svc, 1, "Maria López", "host", []string{"dec-24"})
	if first.Username != "maria-lopez" {
		t.Fatalf("expected username maria-lopez, got %s", first.Username)
	}

	second := createProfile(t, svc, 2, "Maria Lopez", "guest", []string{"dec-25"})
	if second.Username != "maria-lopez-2" {
		t.Fatalf("expected username maria-lopez-2, got %s", second.Username)
	}
}

func TestCreateProfileTwiceRejected(t *testing.T) {
	svc, _ := newTestService(t)

	createProfile(t, svc, 1, "Alice", "host", []string{"dec-24"})

	_, err := svc.Create(context.Background(), domain.CreateProfileRequest{
		UserID:         1,
		DisplayName:    "Alice Again",
		Role:           "guest",
		AvailableDates: []string{"dec-25"},
	})
	if err != domain.ErrProfileExists {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
}

func TestCreateProfileInvalidRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateProfileRequest{
		UserID:         1,
		DisplayName:    "Alice",
		Role:           "admin",
		AvailableDates: []string{"dec-24"},
	})
	if err != domain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestCreateProfileInvalidDates(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateProfileRequest{
		UserID:         1,
		DisplayName:    "Alice",
		Role:           "host",
		AvailableDates: []string{"jul-04"},
	})
	if err != domain.ErrInvalidDates {
		t.Fatalf("expected ErrInvalidDates for unknown code, got %v", err)
	}

	_, err = svc.Create(context.Background(), domain.CreateProfileRequest{
		UserID:         1,
		DisplayName:    "Alice",
		Role:           "host",
		AvailableDates: []string{},
	})
	if err != domain.ErrInvalidDates {
		t.Fatalf("expected ErrInvalidDates for empty list, got %v", err)
	}
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	svc, _ := newTestService(t)

	createProfile(t, svc, 1, "Alice", "host", []string{"dec-24"})

	headline := "Open table this year"
	_, err := svc.Update(context.Background(), domain.UpdateProfileRequest{
		UserID:   1,
		ActorID:  2,
		Headline: &headline,
	})
	if err != domain.ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	updated, err := svc.Update(context.Background(), domain.UpdateProfileRequest{
		UserID:   1,
		ActorID:  1,
		Headline: &headline,
	})
	if err != nil {
		t.Fatalf("failed to update profile: %v", err)
	}
	if updated.Headline != headline {
		t.Fatalf("expected headline %q, got %q", headline, updated.Headline)
	}
}

func TestInvisibleProfileHiddenFromOthers(t *testing.T) {
	svc, _ := newTestService(t)

	profile := createProfile(t, svc, 1, "Alice", "host", []string{"dec-24"})

	visible := false
	if _, err := svc.Update(context.Background(), domain.UpdateProfileRequest{
		UserID:  1,
		ActorID: 1,
		Visible: &visible,
	}); err != nil {
		t.Fatalf("failed to hide profile: %v", err)
	}

	if _, err := svc.Get(context.Background(), 2, 1); err != domain.ErrProfileNotFound {
		t.Fatalf("expected ErrProfileNotFound for other viewer, got %v", err)
	}
	if _, err := svc.GetByUsername(context.Background(), 2, profile.Username); err != domain.ErrProfileNotFound {
		t.Fatalf("expected ErrProfileNotFound by username, got %v", err)
	}

	own, err := svc.Get(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("owner should still see the profile: %v", err)
	}
	if own.Visible {
		t.Fatal("expected profile to be invisible")
	}
}

func TestListProfilesFilters(t *testing.T) {
	svc, clk := newTestService(t)

	createProfile(t, svc, 1, "Host One", "host", []string{"dec-24", "dec-31"})
	clk.Advance(time.Second)
	createProfile(t, svc, 2, "Guest Two", "guest", []string{"dec-24"})
	clk.Advance(time.Second)
	createProfile(t, svc, 3, "Both Three", "both", []string{"dec-25"})

	resp, err := svc.List(context.Background(), domain.ListProfileRequest{Role: "host"})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(resp.Profiles) != 2 {
		t.Fatalf("expected 2 profiles for role host, got %d", len(resp.Profiles))
	}

	resp, err = svc.List(context.Background(), domain.ListProfileRequest{Date: "dec-25"})
	if err != nil {
		t.Fatalf("failed to list by date: %v", err)
	}
	if len(resp.Profiles) != 1 || resp.Profiles[0].UserID != 3 {
		t.Fatalf("expected only profile 3 for dec-25, got %+v", resp.Profiles)
	}
}

func TestListProfilesPagination(t *testing.T) {
	svc, clk := newTestService(t)

	for i := 1; i <= 5; i++ {
		createProfile(t, svc, snowflake.ID(i), "Host", "host", []string{"dec-24"})
		clk.Advance(time.Second)
	}

	resp, err := svc.List(context.Background(), domain.ListProfileRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("failed to list first page: %v", err)
	}
	if len(resp.Profiles) != 2 || !resp.HasMore {
		t.Fatalf("expected 2 profiles and more pages, got %d (has_more=%v)", len(resp.Profiles), resp.HasMore)
	}

	second, err := svc.List(context.Background(), domain.ListProfileRequest{PageSize: 2, PageToken: resp.NextPageToken})
	if err != nil {
		t.Fatalf("failed to list second page: %v", err)
	}
	if len(second.Profiles) != 2 {
		t.Fatalf("expected 2 profiles on second page, got %d", len(second.Profiles))
	}
	if second.Profiles[0].UserID == resp.Profiles[0].UserID {
		t.Fatal("expected second page to advance past the first")
	}
}
