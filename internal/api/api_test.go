package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/status"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIssueStatusToken(t *testing.T) {
	h := NewHandler(Config{
		Tokens: status.NewTokenIssuer(0),
		Logger: testLogger(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/status/token", strings.NewReader(`{"nodeType": "HTTP_REQUEST"}`))
	rec := httptest.NewRecorder()

	h.IssueStatusToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Data StatusTokenResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data.Token == "" {
		t.Error("expected a token")
	}
	if resp.Data.Channel != "flowgrid.http_request.status" {
		t.Errorf("unexpected channel: %q", resp.Data.Channel)
	}
}

func TestIssueStatusToken_UnknownNodeType(t *testing.T) {
	h := NewHandler(Config{
		Tokens: status.NewTokenIssuer(0),
		Logger: testLogger(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/status/token", strings.NewReader(`{"nodeType": "WEBHOOK"}`))
	rec := httptest.NewRecorder()

	h.IssueStatusToken(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGoogleFormWebhook_MissingWorkflowID(t *testing.T) {
	h := NewHandler(Config{Logger: testLogger()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/google-form", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.GoogleFormWebhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Error.Code != ErrCodeBadRequest {
		t.Errorf("unexpected error code: %s", resp.Error.Code)
	}
}

func TestGoogleFormWebhook_InvalidBody(t *testing.T) {
	h := NewHandler(Config{Logger: testLogger()})

	url := "/api/v1/webhooks/google-form?workflowId=" + uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(`not json`))
	rec := httptest.NewRecorder()

	h.GoogleFormWebhook(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTriggerExecution_InvalidWorkflowID(t *testing.T) {
	h := NewHandler(Config{Logger: testLogger()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workflows/not-a-uuid/executions", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()

	h.TriggerExecution(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUserID(t *testing.T) {
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", id.String())

	got, ok := userID(req)
	if !ok || got != id {
		t.Errorf("expected %s, got %s (ok=%v)", id, got, ok)
	}

	// Без заголовка и с мусором — отказ.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := userID(req); ok {
		t.Error("expected failure without header")
	}
	req.Header.Set("X-User-ID", "garbage")
	if _, ok := userID(req); ok {
		t.Error("expected failure for invalid uuid")
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=20", 10, 20},
		{"?limit=0", 50, 0},
		{"?limit=500", 50, 0},
		{"?limit=abc&offset=-5", 50, 0},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		limit, offset := pagination(req)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("pagination(%q) = (%d, %d), want (%d, %d)", tt.query, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestExecutionFromDomain_HidesErrorStack(t *testing.T) {
	exec := domain.NewExecution(uuid.New(), "corr-1")
	exec.MarkFailed("node failed", "goroutine 1 [running]: ...")

	resp := ExecutionFromDomain(*exec)
	if resp.Error != "node failed" {
		t.Errorf("unexpected error: %q", resp.Error)
	}

	// Стек не попадает в JSON ответа.
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(raw), "goroutine") {
		t.Error("error stack must not leak into the API response")
	}
}

func TestCredentialFromDomain_HidesValue(t *testing.T) {
	cred := domain.Credential{
		ID:        uuid.New(),
		Type:      domain.CredentialTypeOpenAI,
		Name:      "my key",
		Value:     "encrypted-secret",
		CreatedAt: time.Now(),
	}

	raw, err := json.Marshal(CredentialFromDomain(cred))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(raw), "encrypted-secret") {
		t.Error("credential value must not leak into the API response")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	handler := Recovery(testLogger())(panicking)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	var captured int

	logging := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			captured = rw.status
		})
	}

	handler := logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if captured != http.StatusTeapot {
		t.Errorf("expected 418 captured, got %d", captured)
	}
}

func TestChain_Order(t *testing.T) {
	var calls []string

	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(mw("first"), mw("second"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"first", "second", "handler"}
	for i, name := range want {
		if calls[i] != name {
			t.Fatalf("unexpected call order: %v", calls)
		}
	}
}
