package executor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/engine"
	"github.com/shaiso/Flowgrid/internal/status"
	"github.com/shaiso/Flowgrid/internal/steps"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func httpRequest(config map[string]any, ctx engine.Context) *Request {
	return &Request{
		NodeID:   uuid.New(),
		NodeType: domain.NodeTypeHTTPRequest,
		Config:   config,
		Context:  ctx,
		Steps:    steps.NewMemoryRunner(),
		Status:   status.NewRecorder(),
	}
}

func TestHTTPExecutor_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": 42})
	}))
	defer server.Close()

	exec := &httpExecutor{logger: testLogger()}
	req := httpRequest(map[string]any{
		"variableName": "apiResult",
		"endpoint":     server.URL,
		"method":       "GET",
	}, engine.NewContext(nil))

	result, err := exec.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Проверяем форму результата в контексте.
	wrapped, ok := result["apiResult"].(map[string]any)
	if !ok {
		t.Fatalf("expected apiResult in context, got %v", result)
	}
	resp, ok := wrapped["httpResponse"].(map[string]any)
	if !ok {
		t.Fatalf("expected httpResponse, got %v", wrapped)
	}
	if resp["status"] != 200 {
		t.Errorf("expected status 200, got %v", resp["status"])
	}
	if resp["statusText"] != "OK" {
		t.Errorf("expected statusText OK, got %v", resp["statusText"])
	}
	data, ok := resp["data"].(map[string]any)
	if !ok || data["id"] != float64(42) {
		t.Errorf("unexpected data: %v", resp["data"])
	}
}

func TestHTTPExecutor_SameTypeNodesDoNotShareSteps(t *testing.T) {
	var firstHits, secondHits int

	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firstHits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"from": "first"}`))
	}))
	defer first.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondHits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"from": "second"}`))
	}))
	defer second.Close()

	exec := &httpExecutor{logger: testLogger()}

	// Оба узла делят журнал шагов одного execution.
	runner := steps.NewMemoryRunner()

	reqA := httpRequest(map[string]any{
		"variableName": "a",
		"endpoint":     first.URL,
		"method":       "GET",
	}, engine.NewContext(nil))
	reqA.Steps = runner

	ctxA, err := exec.Execute(context.Background(), reqA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqB := httpRequest(map[string]any{
		"variableName": "b",
		"endpoint":     second.URL,
		"method":       "GET",
	}, ctxA)
	reqB.Steps = runner

	ctxB, err := exec.Execute(context.Background(), reqB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Второй узел выполняет собственный запрос, а не воспроизводит
	// результат первого.
	if firstHits != 1 || secondHits != 1 {
		t.Fatalf("expected one hit per server, got %d and %d", firstHits, secondHits)
	}
	dataB := ctxB["b"].(map[string]any)["httpResponse"].(map[string]any)["data"].(map[string]any)
	if dataB["from"] != "second" {
		t.Errorf("second node replayed foreign result: %v", dataB)
	}
}

func TestHTTPExecutor_PostWithTemplatedBody(t *testing.T) {
	var gotMethod, gotBody, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	exec := &httpExecutor{logger: testLogger()}
	ctx := engine.NewContext(map[string]any{"email": "user@example.com"})
	req := httpRequest(map[string]any{
		"variableName": "result",
		"endpoint":     server.URL,
		"method":       "POST",
		"body":         `{"email": "{{ .email }}"}`,
	}, ctx)

	result, err := exec.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("unexpected content type: %q", gotContentType)
	}
	if gotBody != `{"email": "user@example.com"}` {
		t.Errorf("unexpected body: %q", gotBody)
	}

	// Входной контекст сохраняется.
	if result["email"] != "user@example.com" {
		t.Error("input context entries must survive")
	}
}

func TestHTTPExecutor_BodyIgnoredForGet(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
	}))
	defer server.Close()

	exec := &httpExecutor{logger: testLogger()}
	req := httpRequest(map[string]any{
		"variableName": "result",
		"endpoint":     server.URL,
		"method":       "GET",
		"body":         `{"ignored": true}`,
	}, engine.NewContext(nil))

	if _, err := exec.Execute(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody != "" {
		t.Errorf("GET must not send a body, got %q", gotBody)
	}
}

func TestHTTPExecutor_MissingConfig(t *testing.T) {
	exec := &httpExecutor{logger: testLogger()}

	tests := []struct {
		name   string
		config map[string]any
	}{
		{"no variableName", map[string]any{"endpoint": "http://example.com", "method": "GET"}},
		{"no endpoint", map[string]any{"variableName": "result", "method": "GET"}},
		{"no method", map[string]any{"variableName": "result", "endpoint": "http://example.com"}},
		{"bad method", map[string]any{"variableName": "result", "endpoint": "http://example.com", "method": "TRACE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httpRequest(tt.config, engine.NewContext(nil))
			_, err := exec.Execute(context.Background(), req)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}

			// Статусы: loading, затем error.
			events := req.Status.(*status.Recorder).Events()
			if len(events) != 2 || events[0].Event.Status != status.StatusLoading || events[1].Event.Status != status.StatusError {
				t.Errorf("unexpected status sequence: %v", events)
			}
		})
	}
}

func TestHTTPExecutor_InvalidRenderedBody(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	exec := &httpExecutor{logger: testLogger()}
	req := httpRequest(map[string]any{
		"variableName": "result",
		"endpoint":     server.URL,
		"method":       "POST",
		"body":         `{"broken": }`,
	}, engine.NewContext(nil))

	_, err := exec.Execute(context.Background(), req)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	// Битое тело отсеивается до сети.
	if hits != 0 {
		t.Errorf("expected no requests, got %d", hits)
	}
}

func TestHTTPExecutor_NonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("plain text"))
	}))
	defer server.Close()

	exec := &httpExecutor{logger: testLogger()}
	req := httpRequest(map[string]any{
		"variableName": "result",
		"endpoint":     server.URL,
		"method":       "GET",
	}, engine.NewContext(nil))

	result, err := exec.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := result["result"].(map[string]any)["httpResponse"].(map[string]any)
	if resp["data"] != "plain text" {
		t.Errorf("expected raw string data, got %v", resp["data"])
	}
}

func TestHTTPExecutor_StatusSequenceOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	exec := &httpExecutor{logger: testLogger()}
	req := httpRequest(map[string]any{
		"variableName": "result",
		"endpoint":     server.URL,
		"method":       "GET",
	}, engine.NewContext(nil))

	if _, err := exec.Execute(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := req.Status.(*status.Recorder).Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Event.Status != status.StatusLoading || events[1].Event.Status != status.StatusSuccess {
		t.Errorf("unexpected sequence: %v", events)
	}
	if events[0].Event.NodeID != req.NodeID {
		t.Errorf("event for wrong node: %s", events[0].Event.NodeID)
	}
}
