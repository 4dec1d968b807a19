package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// googleFormPayload — сырой payload webhook от Google Forms.
type googleFormPayload struct {
	FormID          string         `json:"formId"`
	Title           string         `json:"title"`
	ResponseID      string         `json:"responseId"`
	Timestamp       string         `json:"timestamp"`
	RespondentEmail string         `json:"respondentEmail"`
	Responses       map[string]any `json:"responses"`
}

// GoogleFormWebhook принимает ответ формы и запускает workflow.
// POST /api/v1/webhooks/google-form?workflowId=...
//
// Payload нормализуется и попадает в начальный контекст выполнения
// под ключом googleForm. Идентификатор ответа формы используется как
// correlation id: повторная доставка webhook не создаёт второй
// execution.
func (h *Handler) GoogleFormWebhook(w http.ResponseWriter, r *http.Request) {
	workflowID, err := uuid.Parse(r.URL.Query().Get("workflowId"))
	if err != nil {
		BadRequest(w, "missing or invalid workflowId")
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Повторный парсинг в типизированную форму для нормализации.
	rawBytes, _ := json.Marshal(raw)
	var payload googleFormPayload
	_ = json.Unmarshal(rawBytes, &payload)

	correlationID := "google-form-" + payload.ResponseID
	if payload.ResponseID == "" {
		correlationID = uuid.New().String()
	}

	event := domain.TriggerEvent{
		WorkflowID: workflowID,
		InitialData: map[string]any{
			"googleForm": map[string]any{
				"formId":          payload.FormID,
				"title":           payload.Title,
				"responseId":      payload.ResponseID,
				"timestamp":       payload.Timestamp,
				"respondentEmail": payload.RespondentEmail,
				"responses":       payload.Responses,
				"raw":             raw,
			},
		},
		CorrelationID: correlationID,
	}

	h.acceptWebhook(w, r, event)
}

// stripePayload — сырой payload webhook от Stripe.
type stripePayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// StripeWebhook принимает событие Stripe и запускает workflow.
// POST /api/v1/webhooks/stripe?workflowId=...
//
// Событие целиком попадает в начальный контекст под ключом stripe.
// Идентификатор события Stripe используется как correlation id.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	workflowID, err := uuid.Parse(r.URL.Query().Get("workflowId"))
	if err != nil {
		BadRequest(w, "missing or invalid workflowId")
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	rawBytes, _ := json.Marshal(raw)
	var payload stripePayload
	_ = json.Unmarshal(rawBytes, &payload)

	correlationID := "stripe-" + payload.ID
	if payload.ID == "" {
		correlationID = uuid.New().String()
	}

	event := domain.TriggerEvent{
		WorkflowID: workflowID,
		InitialData: map[string]any{
			"stripe": raw,
		},
		CorrelationID: correlationID,
	}

	h.acceptWebhook(w, r, event)
}

// acceptWebhook публикует триггер-событие и отвечает 202.
func (h *Handler) acceptWebhook(w http.ResponseWriter, r *http.Request, event domain.TriggerEvent) {
	if _, err := h.workflowRepo.GetByID(r.Context(), event.WorkflowID); HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	if err := h.publisher.PublishExecutionRequested(r.Context(), event); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	JSON(w, http.StatusAccepted, DataResponse{Data: TriggerExecutionResponse{
		WorkflowID:    event.WorkflowID,
		CorrelationID: event.CorrelationID,
	}})
}
