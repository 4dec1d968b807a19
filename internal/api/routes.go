package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Workflows
	mux.Handle("GET /api/v1/workflows", chain(http.HandlerFunc(h.ListWorkflows)))
	mux.Handle("GET /api/v1/workflows/{id}", chain(http.HandlerFunc(h.GetWorkflow)))

	// Executions
	mux.Handle("POST /api/v1/workflows/{id}/executions", chain(http.HandlerFunc(h.TriggerExecution)))
	mux.Handle("GET /api/v1/workflows/{id}/executions", chain(http.HandlerFunc(h.ListExecutions)))
	mux.Handle("GET /api/v1/executions/{id}", chain(http.HandlerFunc(h.GetExecution)))

	// Webhooks (внешние системы, без аутентификации пользователя)
	mux.Handle("POST /api/v1/webhooks/google-form", chain(http.HandlerFunc(h.GoogleFormWebhook)))
	mux.Handle("POST /api/v1/webhooks/stripe", chain(http.HandlerFunc(h.StripeWebhook)))

	// Credentials
	mux.Handle("GET /api/v1/credentials", chain(http.HandlerFunc(h.ListCredentials)))
	mux.Handle("POST /api/v1/credentials", chain(http.HandlerFunc(h.CreateCredential)))
	mux.Handle("DELETE /api/v1/credentials/{id}", chain(http.HandlerFunc(h.DeleteCredential)))

	// Realtime status
	mux.Handle("POST /api/v1/status/token", chain(http.HandlerFunc(h.IssueStatusToken)))
}
