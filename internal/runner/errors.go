package runner

import "errors"

// Ошибки обработки триггер-событий.
var (
	// ErrMissingWorkflowID — событие без workflowId.
	ErrMissingWorkflowID = errors.New("trigger event has no workflow id")

	// ErrMissingCorrelationID — событие без correlationId.
	ErrMissingCorrelationID = errors.New("trigger event has no correlation id")

	// ErrWorkflowNotFound — workflow из события не существует.
	ErrWorkflowNotFound = errors.New("workflow not found")
)
