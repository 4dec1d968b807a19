package status

import (
	"context"
	"sync"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// Recorder накапливает опубликованные события. Используется в тестах
// для проверки последовательности статусов.
type Recorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// RecordedEvent — событие вместе с типом узла, для которого оно
// опубликовано.
type RecordedEvent struct {
	NodeType domain.NodeType
	Event    Event
}

// NewRecorder создаёт пустой Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish реализует Publisher.
func (r *Recorder) Publish(_ context.Context, nodeType domain.NodeType, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{NodeType: nodeType, Event: ev})
}

// Events возвращает копию накопленных событий.
func (r *Recorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedEvent, len(r.events))
	copy(out, r.events)
	return out
}
