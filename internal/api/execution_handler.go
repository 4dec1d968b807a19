package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// TriggerExecution принимает ручной запуск workflow и публикует
// триггер-событие в очередь.
// POST /api/v1/workflows/{id}/executions
//
// Запуск асинхронный: ответ 202 подтверждает приём события, статус
// выполнения доступен по correlation id через GET /executions.
func (h *Handler) TriggerExecution(w http.ResponseWriter, r *http.Request) {
	workflowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	var req TriggerExecutionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	// Проверяем, что workflow существует
	if _, err := h.workflowRepo.GetByID(r.Context(), workflowID); HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	event := domain.TriggerEvent{
		WorkflowID:    workflowID,
		InitialData:   req.InitialData,
		CorrelationID: correlationID,
	}

	if err := h.publisher.PublishExecutionRequested(r.Context(), event); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	JSON(w, http.StatusAccepted, DataResponse{Data: TriggerExecutionResponse{
		WorkflowID:    workflowID,
		CorrelationID: correlationID,
	}})
}

// ListExecutions возвращает executions workflow, новые первыми.
// GET /api/v1/workflows/{id}/executions?limit=...&offset=...
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	workflowID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	limit, offset := pagination(r)

	execs, err := h.executionRepo.ListByWorkflow(r.Context(), workflowID, limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ExecutionResponse, len(execs))
	for i, e := range execs {
		result[i] = ExecutionFromDomain(e)
	}

	List(w, result, len(result))
}

// GetExecution возвращает execution по ID.
// GET /api/v1/executions/{id}
func (h *Handler) GetExecution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid execution id")
		return
	}

	exec, err := h.executionRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "execution not found") {
		return
	}

	Success(w, ExecutionFromDomain(*exec))
}
