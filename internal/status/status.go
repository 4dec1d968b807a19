// Package status публикует realtime-события о ходе выполнения узлов.
//
// Каждый executor перед работой публикует loading, после — success или
// error. Редактор подписывается на канал своего типа узла и подсвечивает
// узлы по мере выполнения. Публикация — fire-and-forget: недоставленное
// событие логируется и не влияет на execution.
package status

import (
	"context"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// Status — состояние узла с точки зрения редактора.
type Status string

const (
	// StatusLoading — узел начал выполняться.
	StatusLoading Status = "loading"

	// StatusSuccess — узел выполнен успешно.
	StatusSuccess Status = "success"

	// StatusError — узел завершился ошибкой.
	StatusError Status = "error"
)

// Event — событие смены статуса узла.
type Event struct {
	// NodeID — узел, о котором событие.
	NodeID uuid.UUID `json:"nodeId"`

	// Status — новое состояние узла.
	Status Status `json:"status"`
}

// Publisher публикует события статуса узлов.
//
// Публикация не возвращает ошибку: статусные события — вспомогательный
// канал, его сбои не должны прерывать выполнение workflow.
type Publisher interface {
	Publish(ctx context.Context, nodeType domain.NodeType, ev Event)
}

// NopPublisher отбрасывает все события. Используется, когда realtime
// не сконфигурирован.
type NopPublisher struct{}

// Publish реализует Publisher.
func (NopPublisher) Publish(context.Context, domain.NodeType, Event) {}
