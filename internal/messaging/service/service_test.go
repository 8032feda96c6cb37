package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/clock"
	connectiondomain "github.com/holidaytable/holidaytable/internal/connection/domain"
	"github.com/holidaytable/holidaytable/internal/messaging/domain"
	"github.com/holidaytable/holidaytable/internal/messaging/repository"
	"github.com/holidaytable/holidaytable/pkg/db"
	"go.uber.org/zap"
)

type fakeConnections struct {
	connectiondomain.Service
	matched map[string]bool
}

func (f *fakeConnections) ConnectionStatus(ctx context.Context, viewerID, otherID snowflake.ID) (connectiondomain.ConnectionStatus, error) {
	if viewerID == otherID {
		return connectiondomain.ConnectionSelf, nil
	}
	if f.matched[connectiondomain.PairKeyFor(viewerID, otherID)] {
		return connectiondomain.ConnectionMatched, nil
	}
	return connectiondomain.ConnectionNone, nil
}

func newTestService(t *testing.T) (domain.Service, *fakeConnections, *clock.FakeClock) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Message{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	connections := &fakeConnections{matched: map[string]bool{}}
	clk := clock.NewFakeClock(time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:          dbConn,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        repository.Provide(),
		Connections: connections,
		Clock:       clk,
	})
	return svc, connections, clk
}

func (f *fakeConnections) match(a, b snowflake.ID) {
	f.matched[connectiondomain.PairKeyFor(a, b)] = true
}

func TestSendMessageRequiresMatch(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SendMessage(context.Background(), 1, 2, "hello")
	if err != domain.ErrNotMatched {
		t.Fatalf("expected ErrNotMatched, got %v", err)
	}
}

func TestSendMessageEmptyBody(t *testing.T) {
	svc, connections, _ := newTestService(t)
	connections.match(1, 2)

	_, err := svc.SendMessage(context.Background(), 1, 2, "   ")
	if err != domain.ErrEmptyBody {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestSendMessageBodyTooLong(t *testing.T) {
	svc, connections, _ := newTestService(t)
	connections.match(1, 2)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, 1, 2, strings.Repeat("€", domain.MaxBodyLength()+1))
	if err != domain.ErrBodyTooLong {
		t.Fatalf("expected ErrBodyTooLong, got %v", err)
	}

	// The cap counts runes, so a body of exactly MaxBodyLength multi-byte
	// runes goes through intact.
	msg, err := svc.SendMessage(ctx, 1, 2, strings.Repeat("€", domain.MaxBodyLength()))
	if err != nil {
		t.Fatalf("failed to send max-length body: %v", err)
	}
	if !utf8.ValidString(msg.Body) {
		t.Fatal("stored body is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(msg.Body); got != domain.MaxBodyLength() {
		t.Fatalf("expected %d runes, got %d", domain.MaxBodyLength(), got)
	}
}

func TestListMessagesPagesAcrossSubSecondTimestamps(t *testing.T) {
	svc, connections, clk := newTestService(t)
	connections.match(1, 2)
	ctx := context.Background()

	for _, body := range []string{"first", "second", "third"} {
		if _, err := svc.SendMessage(ctx, 1, 2, body); err != nil {
			t.Fatalf("failed to send %q: %v", body, err)
		}
		clk.Advance(300 * time.Millisecond)
	}

	var seen []string
	token := ""
	for {
		resp, err := svc.ListMessages(ctx, domain.ListMessagesRequest{
			ActorID:     1,
			OtherUserID: 2,
			PageToken:   token,
			PageSize:    1,
		})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		for _, m := range resp.Messages {
			seen = append(seen, m.Body)
		}
		if !resp.HasMore {
			break
		}
		token = resp.NextPageToken
	}

	if len(seen) != 3 {
		t.Fatalf("expected to page through 3 messages, got %d: %v", len(seen), seen)
	}
	if seen[0] != "third" || seen[1] != "second" || seen[2] != "first" {
		t.Fatalf("expected newest-first order, got %v", seen)
	}
}

func TestConversationRoundTrip(t *testing.T) {
	svc, connections, clk := newTestService(t)
	connections.match(1, 2)
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, 1, 2, "hello"); err != nil {
		t.Fatalf("failed to send: %v", err)
	}
	clk.Advance(time.Second)
	if _, err := svc.SendMessage(ctx, 2, 1, "hi back"); err != nil {
		t.Fatalf("failed to reply: %v", err)
	}

	count, err := svc.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread for user 1, got %d", count)
	}

	resp, err := svc.ListMessages(ctx, domain.ListMessagesRequest{ActorID: 1, OtherUserID: 2})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}
	if resp.Messages[0].Body != "hi back" {
		t.Fatalf("expected newest first, got %q", resp.Messages[0].Body)
	}

	// Listing clears the unread flags.
	count, err = svc.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread after listing, got %d", count)
	}
}

func TestListMessagesRequiresMatch(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ListMessages(context.Background(), domain.ListMessagesRequest{ActorID: 1, OtherUserID: 2})
	if err != domain.ErrNotMatched {
		t.Fatalf("expected ErrNotMatched, got %v", err)
	}
}
