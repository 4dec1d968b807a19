package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionStatus — статус выполнения workflow.
//
// Жизненный цикл:
//
//	RUNNING → SUCCESS
//	        ↘ FAILED
type ExecutionStatus string

const (
	// ExecutionStatusRunning — execution создан и выполняется.
	ExecutionStatusRunning ExecutionStatus = "RUNNING"

	// ExecutionStatusSuccess — все узлы выполнены успешно.
	ExecutionStatusSuccess ExecutionStatus = "SUCCESS"

	// ExecutionStatusFailed — выполнение прервано ошибкой.
	ExecutionStatusFailed ExecutionStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusSuccess || s == ExecutionStatusFailed
}

// Execution — один запуск workflow.
//
// Создаётся при получении триггер-события и ровно один раз переводится
// в терминальное состояние: либо SUCCESS с итоговым контекстом, либо
// FAILED с текстом ошибки и стеком.
//
// На одно триггер-событие (correlation id) существует ровно один execution —
// повторная доставка события не создаёт дубликатов.
type Execution struct {
	// ID — уникальный идентификатор execution.
	ID uuid.UUID `json:"id"`

	// WorkflowID — ссылка на workflow, который выполняется.
	WorkflowID uuid.UUID `json:"workflow_id"`

	// CorrelationID — идентификатор исходного триггер-события.
	// Уникален среди всех executions.
	CorrelationID string `json:"correlation_id"`

	// Status — текущий статус выполнения.
	Status ExecutionStatus `json:"status"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения. Nil, пока execution выполняется.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Output — итоговый контекст выполнения. Заполняется только при SUCCESS.
	Output map[string]any `json:"output,omitempty"`

	// Error — текст ошибки. Заполняется только при FAILED.
	Error string `json:"error,omitempty"`

	// ErrorStack — стек вызовов на момент ошибки. Заполняется только при FAILED.
	ErrorStack string `json:"error_stack,omitempty"`

	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"created_at"`
}

// NewExecution создаёт execution в статусе RUNNING.
func NewExecution(workflowID uuid.UUID, correlationID string) *Execution {
	now := time.Now()
	return &Execution{
		ID:            uuid.New(),
		WorkflowID:    workflowID,
		CorrelationID: correlationID,
		Status:        ExecutionStatusRunning,
		StartedAt:     now,
		CreatedAt:     now,
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если execution ещё не завершён.
func (e *Execution) Duration() time.Duration {
	if e.CompletedAt == nil {
		return 0
	}
	return e.CompletedAt.Sub(e.StartedAt)
}

// IsFinished возвращает true, если execution завершён.
func (e *Execution) IsFinished() bool {
	return e.Status.IsTerminal()
}

// MarkSucceeded переводит execution в SUCCESS с итоговым контекстом.
func (e *Execution) MarkSucceeded(output map[string]any) {
	now := time.Now()
	e.Status = ExecutionStatusSuccess
	e.CompletedAt = &now
	e.Output = output
}

// MarkFailed переводит execution в FAILED с ошибкой и стеком.
func (e *Execution) MarkFailed(errMsg, stack string) {
	now := time.Now()
	e.Status = ExecutionStatusFailed
	e.CompletedAt = &now
	e.Error = errMsg
	e.ErrorStack = stack
}

// TriggerEvent — входящее событие запуска workflow.
//
// Производители: ручной запуск из редактора, webhook-обработчики
// (Google Forms, Stripe), CLI.
type TriggerEvent struct {
	// WorkflowID — workflow, который нужно запустить.
	WorkflowID uuid.UUID `json:"workflowId"`

	// InitialData — начальный контекст выполнения.
	// Для webhook-триггеров содержит нормализованный payload
	// под именем триггера (например, initialData.googleForm).
	InitialData map[string]any `json:"initialData,omitempty"`

	// CorrelationID — идентификатор события. Связывает событие
	// ровно с одним execution.
	CorrelationID string `json:"correlationId"`
}
