package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/holidaytable/holidaytable/internal/auth/domain"
	"github.com/holidaytable/holidaytable/internal/auth/session"
	"github.com/holidaytable/holidaytable/internal/config"
	profiledomain "github.com/holidaytable/holidaytable/internal/profile/domain"
)

type fakeAuthService struct {
	createUserErr error
	loginErr      error
	authErr       error

	createUserCalls int
	loginCalls      int
	logoutCalls     int
	lastToken       string
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	_ = ctx
	f.createUserCalls++
	if f.createUserErr != nil {
		return nil, f.createUserErr
	}
	return &authdomain.User{
		ID:          snowflake.ID(200),
		Email:       req.Email,
		DisplayName: req.DisplayName,
	}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	_ = ctx
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authdomain.LoginResult{
		UserID:      snowflake.ID(200),
		Email:       req.Email,
		DisplayName: "Alice",
		RawToken:    "session-token",
		ExpiresAt:   time.Now().Add(time.Hour),
		SessionID:   snowflake.ID(300),
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	f.logoutCalls++
	f.lastToken = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, error) {
	_ = ctx
	f.lastToken = rawToken
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &authdomain.Session{
		ID:     snowflake.ID(300),
		UserID: snowflake.ID(200),
	}, nil
}

type fakeProfileService struct {
	profile *profiledomain.Profile
}

func (f *fakeProfileService) Create(ctx context.Context, req profiledomain.CreateProfileRequest) (*profiledomain.Profile, error) {
	_ = ctx
	_ = req
	return nil, profiledomain.ErrProfileExists
}

func (f *fakeProfileService) Update(ctx context.Context, req profiledomain.UpdateProfileRequest) (*profiledomain.Profile, error) {
	_ = ctx
	_ = req
	return nil, profiledomain.ErrProfileNotFound
}

func (f *fakeProfileService) Get(ctx context.Context, viewerID, userID snowflake.ID) (*profiledomain.Profile, error) {
	_ = ctx
	_ = viewerID
	_ = userID
	if f.profile == nil {
		return nil, profiledomain.ErrProfileNotFound
	}
	return f.profile, nil
}

func (f *fakeProfileService) GetByUsername(ctx context.Context, viewerID snowflake.ID, username string) (*profiledomain.Profile, error) {
	_ = ctx
	_ = viewerID
	_ = username
	if f.profile == nil {
		return nil, profiledomain.ErrProfileNotFound
	}
	return f.profile, nil
}

func (f *fakeProfileService) List(ctx context.Context, req profiledomain.ListProfileRequest) (profiledomain.ListProfileResponse, error) {
	_ = ctx
	_ = req
	return profiledomain.ListProfileResponse{}, nil
}

func newAuthRouter(authSvc authdomain.Service) (*gin.Engine, *Server) {
	gin.SetMode(gin.TestMode)
	srv := &Server{
		cfg:        config.Config{Environment: "test"},
		sessions:   session.NewManager(config.Config{}),
		authSvc:    authSvc,
		profileSvc: &fakeProfileService{},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/auth/signup", srv.Signup)
	router.POST("/auth/login", srv.Login)
	router.POST("/auth/logout", srv.Logout)
	return router, srv
}

func TestLoginSetsSessionCookie(t *testing.T) {
	authSvc := &fakeAuthService{}
	router, _ := newAuthRouter(authSvc)

	resp := doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"hunter22"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if authSvc.loginCalls != 1 {
		t.Fatalf("expected one login call, got %d", authSvc.loginCalls)
	}

	cookie := resp.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, session.DefaultCookieName+"=session-token") {
		t.Fatalf("expected session cookie, got %q", cookie)
	}
	if !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("expected HttpOnly cookie, got %q", cookie)
	}
}

func TestLoginInvalidCredentialsUnauthorized(t *testing.T) {
	authSvc := &fakeAuthService{loginErr: authdomain.ErrInvalidCredentials}
	router, _ := newAuthRouter(authSvc)

	resp := doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"wrong"}`)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestSignupCreatesUserAndLogsIn(t *testing.T) {
	authSvc := &fakeAuthService{}
	router, _ := newAuthRouter(authSvc)

	resp := doJSON(t, router, http.MethodPost, "/auth/signup", `{"email":"alice@example.com","password":"hunter22","display_name":"Alice"}`)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if authSvc.createUserCalls != 1 || authSvc.loginCalls != 1 {
		t.Fatalf("expected signup to create then login, got create=%d login=%d", authSvc.createUserCalls, authSvc.loginCalls)
	}
}

func TestSignupDuplicateEmailConflict(t *testing.T) {
	authSvc := &fakeAuthService{createUserErr: authdomain.ErrUserExists}
	router, _ := newAuthRouter(authSvc)

	resp := doJSON(t, router, http.MethodPost, "/auth/signup", `{"email":"alice@example.com","password":"hunter22"}`)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
	if authSvc.loginCalls != 0 {
		t.Fatal("expected no login attempt after failed signup")
	}
}

func TestLogoutWithoutCookieUnauthorized(t *testing.T) {
	authSvc := &fakeAuthService{}
	router, _ := newAuthRouter(authSvc)

	resp := doJSON(t, router, http.MethodPost, "/auth/logout", ``)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if authSvc.logoutCalls != 0 {
		t.Fatal("expected logout service not to be called")
	}
}

func TestLogoutRevokesAndClearsCookie(t *testing.T) {
	authSvc := &fakeAuthService{}
	router, _ := newAuthRouter(authSvc)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "session-token"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
	if authSvc.logoutCalls != 1 || authSvc.lastToken != "session-token" {
		t.Fatalf("expected logout with the cookie token, got calls=%d token=%q", authSvc.logoutCalls, authSvc.lastToken)
	}

	cookie := resp.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "Max-Age=0") {
		t.Fatalf("expected cleared cookie, got %q", cookie)
	}
}
