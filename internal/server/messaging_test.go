package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	messagingdomain "github.com/holidaytable/holidaytable/internal/messaging/domain"
)

type fakeMessagingService struct {
	sendErr error
	unread  int64

	lastBody string
}

func (f *fakeMessagingService) SendMessage(ctx context.Context, actorID, otherUserID snowflake.ID, body string) (*messagingdomain.Message, error) {
	_ = ctx
	_ = actorID
	_ = otherUserID
	f.lastBody = body
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &messagingdomain.Message{
		ID:          snowflake.ID(700),
		SenderID:    actorID,
		RecipientID: otherUserID,
		Body:        body,
	}, nil
}

func (f *fakeMessagingService) ListMessages(ctx context.Context, req messagingdomain.ListMessagesRequest) (messagingdomain.ListMessagesResponse, error) {
	_ = ctx
	_ = req
	return messagingdomain.ListMessagesResponse{Messages: []messagingdomain.Message{}}, nil
}

func (f *fakeMessagingService) UnreadCount(ctx context.Context, actorID snowflake.ID) (int64, error) {
	_ = ctx
	_ = actorID
	return f.unread, nil
}

func newMessagingRouter(svc messagingdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := &Server{messagingSvc: svc}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(contextUserIDKey, snowflake.ID(1).String())
		c.Next()
	})
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/messages/:userId", srv.SendMessage)
	router.GET("/api/messages/unread-count", srv.UnreadMessageCount)
	router.GET("/api/messages/:userId", srv.ListMessages)
	return router
}

func TestSendMessageCreated(t *testing.T) {
	svc := &fakeMessagingService{}
	router := newMessagingRouter(svc)

	resp := doJSON(t, router, http.MethodPost, "/api/messages/2", `{"body":"see you on the 24th"}`)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastBody != "see you on the 24th" {
		t.Fatalf("unexpected body: %q", svc.lastBody)
	}
}

func TestSendMessageNotMatchedForbidden(t *testing.T) {
	svc := &fakeMessagingService{sendErr: messagingdomain.ErrNotMatched}
	router := newMessagingRouter(svc)

	resp := doJSON(t, router, http.MethodPost, "/api/messages/2", `{"body":"hello"}`)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestSendMessageEmptyBodyValidation(t *testing.T) {
	svc := &fakeMessagingService{sendErr: messagingdomain.ErrEmptyBody}
	router := newMessagingRouter(svc)

	resp := doJSON(t, router, http.MethodPost, "/api/messages/2", `{"body":"   "}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Field != "body" {
		t.Fatalf("expected body validation error, got %+v", body.Error)
	}
}

func TestSendMessageBodyTooLongValidation(t *testing.T) {
	svc := &fakeMessagingService{sendErr: messagingdomain.ErrBodyTooLong}
	router := newMessagingRouter(svc)

	resp := doJSON(t, router, http.MethodPost, "/api/messages/2", `{"body":"hello"}`)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Code != "body_too_long" {
		t.Fatalf("expected body_too_long validation error, got %+v", body.Error)
	}
}

func TestUnreadMessageCount(t *testing.T) {
	svc := &fakeMessagingService{unread: 5}
	router := newMessagingRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/messages/unread-count", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body map[string]float64
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["count"] != 5 {
		t.Fatalf("unexpected count: %v", body["count"])
	}
}
