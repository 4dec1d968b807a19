package engine

import "errors"

// Ошибки линеаризации графа.
var (
	// ErrCycle — в графе соединений обнаружен цикл.
	ErrCycle = errors.New("cycle detected in workflow graph")

	// ErrUnknownNode — соединение ссылается на несуществующий узел.
	ErrUnknownNode = errors.New("connection references unknown node")

	// ErrNoEntryNode — в workflow нет узла-триггера без входящих соединений.
	ErrNoEntryNode = errors.New("workflow has no entry node")
)

// Ошибки рендеринга шаблонов.
var (
	// ErrTemplateParse — ошибка парсинга шаблона.
	ErrTemplateParse = errors.New("template parse failed")

	// ErrTemplateRender — ошибка рендеринга шаблона.
	ErrTemplateRender = errors.New("template render failed")
)

// GraphError — ошибка структуры графа с контекстом.
type GraphError struct {
	NodeID  string // ID узла, где обнаружена проблема
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *GraphError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *GraphError) Unwrap() error {
	return e.Err
}
