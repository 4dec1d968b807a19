package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// Workflow DTOs

// WorkflowResponse — ответ с workflow.
type WorkflowResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkflowFromDomain конвертирует domain.Workflow в WorkflowResponse.
func WorkflowFromDomain(wf domain.Workflow) WorkflowResponse {
	return WorkflowResponse{
		ID:        wf.ID,
		Name:      wf.Name,
		CreatedAt: wf.CreatedAt,
		UpdatedAt: wf.UpdatedAt,
	}
}

// WorkflowGraphResponse — ответ с workflow и его графом.
type WorkflowGraphResponse struct {
	WorkflowResponse
	Nodes       []NodeResponse       `json:"nodes"`
	Connections []ConnectionResponse `json:"connections"`
}

// NodeResponse — ответ с узлом.
type NodeResponse struct {
	ID       uuid.UUID       `json:"id"`
	Type     domain.NodeType `json:"type"`
	Config   map[string]any  `json:"config,omitempty"`
	Position domain.Position `json:"position"`
}

// NodeFromDomain конвертирует domain.Node в NodeResponse.
func NodeFromDomain(n domain.Node) NodeResponse {
	return NodeResponse{
		ID:       n.ID,
		Type:     n.Type,
		Config:   n.Config,
		Position: n.Position,
	}
}

// ConnectionResponse — ответ с соединением.
type ConnectionResponse struct {
	ID           uuid.UUID `json:"id"`
	SourceNodeID uuid.UUID `json:"source_node_id"`
	TargetNodeID uuid.UUID `json:"target_node_id"`
}

// ConnectionFromDomain конвертирует domain.Connection в ConnectionResponse.
func ConnectionFromDomain(c domain.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:           c.ID,
		SourceNodeID: c.SourceNodeID,
		TargetNodeID: c.TargetNodeID,
	}
}

// Execution DTOs

// TriggerExecutionRequest — запрос на ручной запуск workflow.
type TriggerExecutionRequest struct {
	InitialData   map[string]any `json:"initialData,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// TriggerExecutionResponse — подтверждение приёма триггер-события.
type TriggerExecutionResponse struct {
	WorkflowID    uuid.UUID `json:"workflowId"`
	CorrelationID string    `json:"correlationId"`
}

// ExecutionResponse — ответ с execution.
type ExecutionResponse struct {
	ID            uuid.UUID      `json:"id"`
	WorkflowID    uuid.UUID      `json:"workflow_id"`
	CorrelationID string         `json:"correlation_id"`
	Status        string         `json:"status"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	Output        map[string]any `json:"output,omitempty"`
	Error         string         `json:"error,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ExecutionFromDomain конвертирует domain.Execution в ExecutionResponse.
// Стек ошибки наружу не отдаётся.
func ExecutionFromDomain(e domain.Execution) ExecutionResponse {
	return ExecutionResponse{
		ID:            e.ID,
		WorkflowID:    e.WorkflowID,
		CorrelationID: e.CorrelationID,
		Status:        string(e.Status),
		StartedAt:     e.StartedAt,
		CompletedAt:   e.CompletedAt,
		Output:        e.Output,
		Error:         e.Error,
		CreatedAt:     e.CreatedAt,
	}
}

// Credential DTOs

// CreateCredentialRequest — запрос на создание credential.
type CreateCredentialRequest struct {
	Type  domain.CredentialType `json:"type"`
	Name  string                `json:"name"`
	Value string                `json:"value"`
}

// CredentialResponse — ответ с credential. Значение не отдаётся.
type CredentialResponse struct {
	ID        uuid.UUID             `json:"id"`
	Type      domain.CredentialType `json:"type"`
	Name      string                `json:"name"`
	CreatedAt time.Time             `json:"created_at"`
}

// CredentialFromDomain конвертирует domain.Credential в CredentialResponse.
func CredentialFromDomain(c domain.Credential) CredentialResponse {
	return CredentialResponse{
		ID:        c.ID,
		Type:      c.Type,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}

// Status DTOs

// StatusTokenRequest — запрос токена на подписку к каналу статусов.
type StatusTokenRequest struct {
	NodeType domain.NodeType `json:"nodeType"`
}

// StatusTokenResponse — выписанный токен и канал.
type StatusTokenResponse struct {
	Token   string `json:"token"`
	Channel string `json:"channel"`
}
