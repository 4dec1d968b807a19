package executor

import (
	"context"

	"github.com/shaiso/Flowgrid/internal/engine"
	"github.com/shaiso/Flowgrid/internal/status"
	"github.com/shaiso/Flowgrid/internal/steps"
)

// triggerExecutor — исполнитель триггер-узлов.
//
// Данные триггера уже лежат в начальном контексте execution (их туда
// кладёт обработчик события), поэтому триггер-узел лишь подтверждает
// запуск: публикует статусы и возвращает контекст без изменений.
// Durable step нужен, чтобы повторная доставка события воспроизводила
// тот же контекст.
type triggerExecutor struct {
	stepName string
}

// Execute реализует NodeExecutor.
func (t *triggerExecutor) Execute(ctx context.Context, req *Request) (engine.Context, error) {
	req.Status.Publish(ctx, req.NodeType, status.Event{NodeID: req.NodeID, Status: status.StatusLoading})

	result, err := steps.RunAs[map[string]any](ctx, req.Steps, req.stepName(t.stepName), func(context.Context) (any, error) {
		return req.Context.AsMap(), nil
	})
	if err != nil {
		req.Status.Publish(ctx, req.NodeType, status.Event{NodeID: req.NodeID, Status: status.StatusError})
		return nil, err
	}

	req.Status.Publish(ctx, req.NodeType, status.Event{NodeID: req.NodeID, Status: status.StatusSuccess})
	return engine.NewContext(result), nil
}
