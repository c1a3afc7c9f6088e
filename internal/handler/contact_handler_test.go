package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/AnnaNajafiH/SabaStudio/internal/notify"
	"github.com/AnnaNajafiH/SabaStudio/internal/service"
)

// ---------------------------------------------------------------------------
// POST /api/v1/contact
// ---------------------------------------------------------------------------

func TestContactHandler_Submit_Success(t *testing.T) {
	var captured service.ContactInput
	var client service.ClientContext
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, in service.ContactInput, c service.ClientContext) (*model.ContactReceipt, error) {
			captured, client = in, c
			return &model.ContactReceipt{ID: "msg-1", SubmittedAt: time.Now()}, nil
		},
	}
	h := NewContactHandler(mock, 1, Responder{})

	body := `{"name":"Jane Doe","email":"jane@x.com","subject":"Kitchen remodel inquiry","message":"I would like a quote for a full kitchen remodel.","projectType":"Renovation/Addition"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Name != "Jane Doe" || captured.ProjectType != "Renovation/Addition" {
		t.Errorf("unexpected input: %+v", captured)
	}
	if client.IP != "203.0.113.7" || client.UserAgent != "test-agent" {
		t.Errorf("unexpected client context: %+v", client)
	}

	env := decodeEnvelope(t, rec)
	var receipt model.ContactReceipt
	decodeData(t, env, &receipt)
	if env.Status != "success" || receipt.ID != "msg-1" {
		t.Errorf("unexpected response: %+v", env)
	}
}

func TestContactHandler_Submit_InvalidJSON(t *testing.T) {
	h := NewContactHandler(&mockContactService{}, 0, Responder{})
	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestContactHandler_Submit_ValidationError(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, in service.ContactInput, c service.ClientContext) (*model.ContactReceipt, error) {
			return nil, service.NewValidationError("message", "must be between 10 and 2000 characters")
		},
	}
	rec := httptest.NewRecorder()
	NewContactHandler(mock, 0, Responder{}).Submit(rec, httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "fail" || len(env.Errors) != 1 || env.Errors[0].Field != "message" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestContactHandler_Submit_RateLimited(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(ctx context.Context, in service.ContactInput, c service.ClientContext) (*model.ContactReceipt, error) {
			return nil, &service.RateLimitError{RetryAfter: 14 * time.Minute}
		},
	}
	rec := httptest.NewRecorder()
	NewContactHandler(mock, 0, Responder{}).Submit(rec, httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(`{}`)))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "840" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

// ---------------------------------------------------------------------------
// 管理者向け受信箱
// ---------------------------------------------------------------------------

func TestContactHandler_List(t *testing.T) {
	var got service.ContactListParams
	mock := &mockContactService{
		listFunc: func(ctx context.Context, params service.ContactListParams) (*model.Page[*model.ContactMessage], error) {
			got = params
			return model.NewPage([]*model.ContactMessage{{ID: "m1", IPAddress: "10.1.1.1", UserAgent: "ua"}}, 1, 1, 10), nil
		},
	}
	rec := httptest.NewRecorder()
	NewContactHandler(mock, 0, Responder{}).List(rec, httptest.NewRequest("GET", "/api/v1/contact?status=unread&page=1&limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Status != "unread" || got.Limit != 5 {
		t.Errorf("unexpected params: %+v", got)
	}
	if body := rec.Body.String(); strings.Contains(body, "10.1.1.1") || strings.Contains(body, `"ua"`) {
		t.Errorf("ip address and user agent must never be serialised: %s", body)
	}
}

func TestContactHandler_List_InvalidPage(t *testing.T) {
	rec := httptest.NewRecorder()
	NewContactHandler(&mockContactService{}, 0, Responder{}).List(rec, httptest.NewRequest("GET", "/api/v1/contact?page=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestContactHandler_Get(t *testing.T) {
	mock := &mockContactService{
		getFunc: func(ctx context.Context, id string) (*model.ContactMessage, error) {
			if id != "m1" {
				return nil, service.ErrNotFound
			}
			return &model.ContactMessage{ID: "m1", Status: model.ContactStatusRead}, nil
		},
	}
	h := NewContactHandler(mock, 0, Responder{})

	req := httptest.NewRequest("GET", "/api/v1/contact/m1", nil)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	var msg model.ContactMessage
	decodeData(t, decodeEnvelope(t, rec), &msg)
	if rec.Code != http.StatusOK || msg.Status != "read" {
		t.Errorf("got %d %+v", rec.Code, msg)
	}

	req = httptest.NewRequest("GET", "/api/v1/contact/zzz", nil)
	req.SetPathValue("id", "zzz")
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestContactHandler_SetStatus(t *testing.T) {
	var gotID, gotStatus string
	mock := &mockContactService{
		setStatusFunc: func(ctx context.Context, id, status string) (*model.ContactMessage, error) {
			gotID, gotStatus = id, status
			return &model.ContactMessage{ID: id, Status: model.ContactStatusArchived}, nil
		},
	}
	req := httptest.NewRequest("PUT", "/api/v1/contact/m1/status", strings.NewReader(`{"status":"closed"}`))
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	NewContactHandler(mock, 0, Responder{}).SetStatus(rec, req)

	if rec.Code != http.StatusOK || gotID != "m1" || gotStatus != "closed" {
		t.Errorf("got %d id=%q status=%q", rec.Code, gotID, gotStatus)
	}
}

func TestContactHandler_Delete(t *testing.T) {
	deleted := ""
	mock := &mockContactService{
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	req := httptest.NewRequest("DELETE", "/api/v1/contact/m1", nil)
	req.SetPathValue("id", "m1")
	rec := httptest.NewRecorder()
	NewContactHandler(mock, 0, Responder{}).Delete(rec, req)

	if rec.Code != http.StatusOK || deleted != "m1" {
		t.Errorf("got %d deleted=%q", rec.Code, deleted)
	}
}

func TestContactHandler_TestEmail_Disabled(t *testing.T) {
	mock := &mockContactService{
		testEmailFunc: func(ctx context.Context, to string) error {
			return notify.ErrDisabled
		},
	}
	rec := httptest.NewRecorder()
	NewContactHandler(mock, 0, Responder{}).TestEmail(rec, httptest.NewRequest("POST", "/api/v1/contact/test-email", strings.NewReader(`{"email":"me@x.com"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
