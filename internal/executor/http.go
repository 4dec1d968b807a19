package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/Flowgrid/internal/engine"
	"github.com/shaiso/Flowgrid/internal/status"
	"github.com/shaiso/Flowgrid/internal/steps"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
)

// httpResponse — результат HTTP узла в контексте выполнения.
//
// Кладётся в контекст под именем переменной пользователя:
//
//	{ "<variableName>": { "httpResponse": { "status": 200, ... } } }
type httpResponse struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Data       any    `json:"data"`
}

// httpExecutor — исполнитель узла HTTP_REQUEST.
//
// Конфигурация узла:
//
//	variableName — имя переменной результата в контексте (обязательно)
//	endpoint     — URL запроса, поддерживает шаблоны (обязательно)
//	method       — HTTP метод (обязательно)
//	body         — тело запроса для PUT/POST/DELETE, поддерживает шаблоны
type httpExecutor struct {
	client *http.Client
	logger *slog.Logger
}

// bodyAllowed возвращает true для методов, с которыми отправляется тело.
func bodyAllowed(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Execute реализует NodeExecutor.
func (h *httpExecutor) Execute(ctx context.Context, req *Request) (engine.Context, error) {
	req.Status.Publish(ctx, req.NodeType, status.Event{NodeID: req.NodeID, Status: status.StatusLoading})

	result, err := h.execute(ctx, req)
	if err != nil {
		req.Status.Publish(ctx, req.NodeType, status.Event{NodeID: req.NodeID, Status: status.StatusError})
		return nil, err
	}

	req.Status.Publish(ctx, req.NodeType, status.Event{NodeID: req.NodeID, Status: status.StatusSuccess})
	return result, nil
}

func (h *httpExecutor) execute(ctx context.Context, req *Request) (engine.Context, error) {
	variableName, err := requireConfigString(req, "variableName")
	if err != nil {
		return nil, err
	}
	rawEndpoint, err := requireConfigString(req, "endpoint")
	if err != nil {
		return nil, err
	}

	rawMethod, err := requireConfigString(req, "method")
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(rawMethod)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, &ConfigError{
			NodeID:  req.NodeID,
			Field:   "method",
			Message: fmt.Sprintf("unsupported method %q", method),
		}
	}

	endpoint, err := engine.Render(rawEndpoint, req.Context)
	if err != nil {
		return nil, &ConfigError{
			NodeID:  req.NodeID,
			Field:   "endpoint",
			Message: err.Error(),
		}
	}

	var body string
	if rawBody := configString(req, "body"); rawBody != "" && bodyAllowed(method) {
		body, err = engine.Render(rawBody, req.Context)
		if err != nil {
			return nil, &ConfigError{
				NodeID:  req.NodeID,
				Field:   "body",
				Message: err.Error(),
			}
		}
		// Тело валидируется до сети: битый JSON — ошибка конфигурации,
		// а не ошибка запроса.
		if !json.Valid([]byte(body)) {
			return nil, &ConfigError{
				NodeID:  req.NodeID,
				Field:   "body",
				Message: "rendered body is not valid JSON",
			}
		}
	}

	response, err := steps.RunAs[httpResponse](ctx, req.Steps, req.stepName("http-request"), func(stepCtx context.Context) (any, error) {
		return h.doRequest(stepCtx, method, endpoint, body)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Debug("http request node completed",
		"node_id", req.NodeID,
		"method", method,
		"status", response.Status,
	)

	return req.Context.With(variableName, map[string]any{
		"httpResponse": map[string]any{
			"status":     response.Status,
			"statusText": response.StatusText,
			"data":       response.Data,
		},
	}), nil
}

// doRequest выполняет сам HTTP запрос. Вызывается внутри durable step.
func (h *httpExecutor) doRequest(ctx context.Context, method, endpoint, body string) (*httpResponse, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	client := h.client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// JSON ответы парсим в структуру, остальное возвращаем строкой.
	var data any
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") && len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			data = string(raw)
		}
	} else {
		data = string(raw)
	}

	return &httpResponse{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Data:       data,
	}, nil
}
