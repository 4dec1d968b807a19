package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// WorkflowResponse — workflow из API.
type WorkflowResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NodeResponse — узел workflow из API.
type NodeResponse struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// ConnectionResponse — соединение из API.
type ConnectionResponse struct {
	ID           string `json:"id"`
	SourceNodeID string `json:"source_node_id"`
	TargetNodeID string `json:"target_node_id"`
}

// WorkflowGraphResponse — workflow с графом из API.
type WorkflowGraphResponse struct {
	WorkflowResponse
	Nodes       []NodeResponse       `json:"nodes"`
	Connections []ConnectionResponse `json:"connections"`
}

// ExecutionResponse — execution из API.
type ExecutionResponse struct {
	ID            string         `json:"id"`
	WorkflowID    string         `json:"workflow_id"`
	CorrelationID string         `json:"correlation_id"`
	Status        string         `json:"status"`
	StartedAt     string         `json:"started_at"`
	CompletedAt   string         `json:"completed_at,omitempty"`
	Output        map[string]any `json:"output,omitempty"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     string         `json:"created_at"`
}

// TriggerResponse — подтверждение запуска из API.
type TriggerResponse struct {
	WorkflowID    string `json:"workflowId"`
	CorrelationID string `json:"correlationId"`
}

// CredentialResponse — credential из API (без значения).
type CredentialResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// --- Request types ---

// TriggerExecutionRequest — ручной запуск workflow.
type TriggerExecutionRequest struct {
	InitialData   map[string]any `json:"initialData,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// CreateCredentialRequest — создание credential.
type CreateCredentialRequest struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Flowgrid API.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// NewClient создаёт клиент для API. userID передаётся в заголовке
// X-User-ID каждого запроса.
func NewClient(baseURL, userID string) *Client {
	return &Client{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Workflows ---

// ListWorkflows возвращает workflows пользователя.
func (c *Client) ListWorkflows() ([]WorkflowResponse, error) {
	var workflows []WorkflowResponse
	err := c.list("/api/v1/workflows", nil, &workflows)
	return workflows, err
}

// GetWorkflow возвращает workflow с графом.
func (c *Client) GetWorkflow(id string) (*WorkflowGraphResponse, error) {
	var wf WorkflowGraphResponse
	err := c.get("/api/v1/workflows/"+id, &wf)
	return &wf, err
}

// --- Executions ---

// TriggerExecution запускает workflow.
func (c *Client) TriggerExecution(workflowID string, req TriggerExecutionRequest) (*TriggerResponse, error) {
	var trigger TriggerResponse
	err := c.post("/api/v1/workflows/"+workflowID+"/executions", req, &trigger)
	return &trigger, err
}

// ListExecutions возвращает executions workflow.
func (c *Client) ListExecutions(workflowID string, limit int) ([]ExecutionResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	var execs []ExecutionResponse
	err := c.list("/api/v1/workflows/"+workflowID+"/executions", params, &execs)
	return execs, err
}

// GetExecution возвращает execution по ID.
func (c *Client) GetExecution(id string) (*ExecutionResponse, error) {
	var exec ExecutionResponse
	err := c.get("/api/v1/executions/"+id, &exec)
	return &exec, err
}

// --- Credentials ---

// ListCredentials возвращает credentials пользователя.
func (c *Client) ListCredentials() ([]CredentialResponse, error) {
	var creds []CredentialResponse
	err := c.list("/api/v1/credentials", nil, &creds)
	return creds, err
}

// CreateCredential создаёт credential.
func (c *Client) CreateCredential(req CreateCredentialRequest) (*CredentialResponse, error) {
	var cred CredentialResponse
	err := c.post("/api/v1/credentials", req, &cred)
	return &cred, err
}

// DeleteCredential удаляет credential.
func (c *Client) DeleteCredential(id string) error {
	return c.delete("/api/v1/credentials/" + id)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
