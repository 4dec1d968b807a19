package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// ListCredentials возвращает credentials пользователя без значений.
// GET /api/v1/credentials
func (h *Handler) ListCredentials(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		BadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	creds, err := h.credentialRepo.ListByUser(r.Context(), uid)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]CredentialResponse, len(creds))
	for i, c := range creds {
		result[i] = CredentialFromDomain(c)
	}

	List(w, result, len(result))
}

// CreateCredential создаёт credential. Значение шифруется до записи
// и никогда не возвращается обратно.
// POST /api/v1/credentials
func (h *Handler) CreateCredential(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		BadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	var req CreateCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	switch req.Type {
	case domain.CredentialTypeGemini, domain.CredentialTypeOpenAI, domain.CredentialTypeAnthropic:
	default:
		BadRequest(w, "unknown credential type")
		return
	}
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}
	if req.Value == "" {
		BadRequest(w, "value is required")
		return
	}

	encrypted, err := h.secrets.Encrypt(req.Value)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	now := time.Now()
	cred := &domain.Credential{
		ID:        uuid.New(),
		UserID:    uid,
		Type:      req.Type,
		Name:      req.Name,
		Value:     encrypted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.credentialRepo.Create(r.Context(), cred); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, CredentialFromDomain(*cred))
}

// DeleteCredential удаляет credential пользователя.
// DELETE /api/v1/credentials/{id}
func (h *Handler) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		BadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid credential id")
		return
	}

	if err := h.credentialRepo.Delete(r.Context(), id, uid); HandleRepoError(w, h.logger, err, "credential not found") {
		return
	}

	NoContent(w)
}
