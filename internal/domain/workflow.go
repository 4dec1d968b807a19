package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workflow — сценарий автоматизации, построенный пользователем в визуальном
// редакторе.
//
// Workflow владеет набором узлов (Node) и соединений (Connection) между ними.
// Удаление workflow каскадно удаляет его узлы, соединения и executions.
type Workflow struct {
	// ID — уникальный идентификатор workflow.
	ID uuid.UUID `json:"id"`

	// UserID — владелец workflow.
	UserID uuid.UUID `json:"user_id"`

	// Name — имя workflow, заданное пользователем.
	Name string `json:"name"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения в редакторе.
	UpdatedAt time.Time `json:"updated_at"`
}

// NodeType — тип узла workflow.
//
// Набор типов закрытый и фиксируется на этапе компиляции: добавление нового
// типа требует расширения executor.Registry. Узел с типом, неизвестным
// текущей сборке, — признак рассинхронизации данных и версии кода.
type NodeType string

const (
	// NodeTypeInitial — стартовый узел-заглушка, создаётся вместе с workflow.
	// Не имеет поведения и пропускается при выполнении.
	NodeTypeInitial NodeType = "INITIAL"

	// NodeTypeManualTrigger — ручной запуск из редактора.
	NodeTypeManualTrigger NodeType = "MANUAL_TRIGGER"

	// NodeTypeHTTPRequest — HTTP запрос к внешнему API.
	NodeTypeHTTPRequest NodeType = "HTTP_REQUEST"

	// NodeTypeGoogleFormTrigger — запуск по webhook от Google Forms.
	NodeTypeGoogleFormTrigger NodeType = "GOOGLE_FORM_TRIGGER"

	// NodeTypeStripeTrigger — запуск по webhook от Stripe.
	NodeTypeStripeTrigger NodeType = "STRIPE_TRIGGER"

	// NodeTypeGemini — генерация текста через Google Gemini.
	NodeTypeGemini NodeType = "GEMINI"

	// NodeTypeOpenAI — генерация текста через OpenAI.
	NodeTypeOpenAI NodeType = "OPENAI"

	// NodeTypeAnthropic — генерация текста через Anthropic.
	NodeTypeAnthropic NodeType = "ANTHROPIC"
)

// IsTrigger возвращает true для типов, которые могут быть точкой входа
// workflow (не имеют входящих соединений).
func (t NodeType) IsTrigger() bool {
	switch t {
	case NodeTypeInitial, NodeTypeManualTrigger, NodeTypeGoogleFormTrigger, NodeTypeStripeTrigger:
		return true
	default:
		return false
	}
}

// Valid проверяет, известен ли тип текущей сборке.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeInitial, NodeTypeManualTrigger, NodeTypeHTTPRequest,
		NodeTypeGoogleFormTrigger, NodeTypeStripeTrigger,
		NodeTypeGemini, NodeTypeOpenAI, NodeTypeAnthropic:
		return true
	default:
		return false
	}
}

// Node — один шаг workflow: триггер (точка входа) или действие.
type Node struct {
	// ID — уникальный идентификатор узла.
	ID uuid.UUID `json:"id"`

	// WorkflowID — ссылка на родительский workflow.
	WorkflowID uuid.UUID `json:"workflow_id"`

	// Type — тип узла.
	Type NodeType `json:"type"`

	// Config — типоспецифичная конфигурация узла.
	// Для HTTP_REQUEST: endpoint, method, body, variableName.
	// Для AI узлов: credentialId, model, systemPrompt, userPrompt, variableName.
	Config map[string]any `json:"config,omitempty"`

	// Position — координаты узла на холсте редактора.
	// На выполнение не влияет.
	Position Position `json:"position"`

	// CreatedAt — время создания узла. Порядок создания используется
	// как детерминированный tie-break при линеаризации графа.
	CreatedAt time.Time `json:"created_at"`
}

// Position — 2D координаты узла в редакторе.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Connection — направленное ребро между узлами одного workflow.
//
// В этой модели у узла не больше одного входного и одного выходного
// execution-порта: ветвления нет, граф выполняется линейно.
type Connection struct {
	// ID — уникальный идентификатор соединения.
	ID uuid.UUID `json:"id"`

	// WorkflowID — ссылка на родительский workflow.
	// Соединения никогда не пересекают границы workflow.
	WorkflowID uuid.UUID `json:"workflow_id"`

	// SourceNodeID — узел-источник.
	SourceNodeID uuid.UUID `json:"source_node_id"`

	// TargetNodeID — узел-приёмник.
	TargetNodeID uuid.UUID `json:"target_node_id"`

	// SourcePort — идентификатор выходного порта источника (опционально).
	SourcePort string `json:"source_port,omitempty"`

	// TargetPort — идентификатор входного порта приёмника (опционально).
	TargetPort string `json:"target_port,omitempty"`

	// CreatedAt — время создания соединения.
	CreatedAt time.Time `json:"created_at"`
}
