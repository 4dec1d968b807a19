package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Flowgrid/internal/status"
)

// IssueStatusToken выписывает токен на подписку к realtime-каналу
// статусов узлов данного типа.
// POST /api/v1/status/token
func (h *Handler) IssueStatusToken(w http.ResponseWriter, r *http.Request) {
	var req StatusTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if !req.NodeType.Valid() {
		BadRequest(w, "unknown node type")
		return
	}

	token, err := h.tokens.Issue(req.NodeType)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, StatusTokenResponse{
		Token:   token,
		Channel: status.Channel(req.NodeType),
	})
}
