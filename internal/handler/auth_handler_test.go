package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/service"
	"github.com/AnnaNajafiH/SabaStudio/pkg/auth"
)

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	mock := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*service.LoginResult, error) {
			if email != "admin@saba.studio" || password != "s3cret-pass" {
				return nil, service.ErrUnauthorized
			}
			return &service.LoginResult{Token: "tok", ExpiresAt: expires, User: &model.User{ID: "u1", Role: model.RoleAdmin}}, nil
		},
	}
	h := NewAuthHandler(mock, true, Responder{})

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(`{"email":"admin@saba.studio","password":"s3cret-pass"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != auth.CookieName || c.Value != "tok" || !c.HttpOnly || !c.Secure {
		t.Errorf("unexpected cookie: %+v", c)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, false, Responder{})
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.c","password":"nope"}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Invalid email or password" {
		t.Errorf("unexpected message %q", env.Message)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not set a cookie")
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	NewAuthHandler(&mockAuthService{}, false, Responder{}).Logout(rec, httptest.NewRequest("POST", "/api/v1/auth/logout", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
		t.Errorf("expected an expiring empty cookie, got %+v", cookies)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	mock := &mockAuthService{
		meFunc: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{ID: userID, Email: "admin@saba.studio", PasswordHash: "secret-hash"}, nil
		},
	}
	h := NewAuthHandler(mock, false, Responder{})

	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest("GET", "/api/v1/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Me(rec, asAdmin(httptest.NewRequest("GET", "/api/v1/auth/me", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Error("password hash must never be serialised")
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	var gotUser, gotCurrent, gotNext string
	mock := &mockAuthService{
		changePasswordFunc: func(ctx context.Context, userID, current, next string) error {
			gotUser, gotCurrent, gotNext = userID, current, next
			return nil
		},
	}
	h := NewAuthHandler(mock, false, Responder{})

	req := asAdmin(httptest.NewRequest("PUT", "/api/v1/auth/password", strings.NewReader(`{"currentPassword":"old-pass-1","newPassword":"new-pass-22"}`)))
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUser != "admin-1" || gotCurrent != "old-pass-1" || gotNext != "new-pass-22" {
		t.Errorf("user=%q current=%q next=%q", gotUser, gotCurrent, gotNext)
	}
}

func TestAuthHandler_ChangePassword_WrongCurrent(t *testing.T) {
	mock := &mockAuthService{
		changePasswordFunc: func(ctx context.Context, userID, current, next string) error {
			return service.NewValidationError("currentPassword", "is incorrect")
		},
	}
	h := NewAuthHandler(mock, false, Responder{})

	req := asAdmin(httptest.NewRequest("PUT", "/api/v1/auth/password", strings.NewReader(`{"currentPassword":"x","newPassword":"new-pass-22"}`)))
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_ChangePassword_Anonymous(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, false, Responder{})
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, httptest.NewRequest("PUT", "/api/v1/auth/password", strings.NewReader(`{}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Signup_Created(t *testing.T) {
	var got service.SignupInput
	mock := &mockAuthService{
		signupFunc: func(_ context.Context, in service.SignupInput) (*service.LoginResult, error) {
			got = in
			return &service.LoginResult{Token: "tok", ExpiresAt: time.Now().Add(time.Hour), User: &model.User{ID: "u9", Role: model.RoleViewer}}, nil
		},
	}
	h := NewAuthHandler(mock, false, Responder{})

	rec := httptest.NewRecorder()
	body := `{"name":"Sara","email":"sara@example.com","password":"correct horse","confirmPassword":"correct horse"}`
	h.Signup(rec, httptest.NewRequest("POST", "/api/v1/auth/signup", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Email != "sara@example.com" || got.ConfirmPassword != "correct horse" {
		t.Errorf("unexpected input: %+v", got)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != auth.CookieName || cookies[0].Value != "tok" {
		t.Errorf("unexpected cookies: %+v", cookies)
	}
}

func TestAuthHandler_Signup_EmailTaken(t *testing.T) {
	mock := &mockAuthService{
		signupFunc: func(context.Context, service.SignupInput) (*service.LoginResult, error) {
			return nil, fmt.Errorf("%w: email address is already registered", service.ErrConflict)
		},
	}
	h := NewAuthHandler(mock, false, Responder{})

	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest("POST", "/api/v1/auth/signup", strings.NewReader(`{"email":"sara@example.com"}`)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Message != "email address is already registered" {
		t.Errorf("unexpected message %q", env.Message)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed signup must not set a cookie")
	}
}
