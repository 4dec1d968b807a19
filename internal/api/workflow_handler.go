package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// userID извлекает идентификатор пользователя из заголовка X-User-ID.
// Аутентификацией занимается внешний шлюз, API доверяет заголовку.
func userID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// pagination парсит limit/offset из query параметров.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// ListWorkflows возвращает workflows пользователя.
// GET /api/v1/workflows?limit=...&offset=...
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		BadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	limit, offset := pagination(r)

	workflows, err := h.workflowRepo.List(r.Context(), uid, limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]WorkflowResponse, len(workflows))
	for i, wf := range workflows {
		result[i] = WorkflowFromDomain(wf)
	}

	List(w, result, len(result))
}

// GetWorkflow возвращает workflow с графом узлов и соединений.
// GET /api/v1/workflows/{id}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid workflow id")
		return
	}

	wf, nodes, conns, err := h.workflowRepo.GetGraph(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	resp := WorkflowGraphResponse{
		WorkflowResponse: WorkflowFromDomain(*wf),
		Nodes:            make([]NodeResponse, len(nodes)),
		Connections:      make([]ConnectionResponse, len(conns)),
	}
	for i, n := range nodes {
		resp.Nodes[i] = NodeFromDomain(n)
	}
	for i, c := range conns {
		resp.Connections[i] = ConnectionFromDomain(c)
	}

	Success(w, resp)
}
