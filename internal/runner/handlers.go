package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/mq"
)

// handleExecutionRequested обрабатывает триггер-событие из очереди.
//
// Ошибка возвращается только при сбое инфраструктуры — такое сообщение
// вернётся в очередь. Ошибки workflow фиксируются в execution, событие
// подтверждается: верхнеуровневых ретраев выполнения нет. Событие без
// обязательных полей не сможет выполниться никогда, оно подтверждается
// с логированием.
func (s *Service) handleExecutionRequested(ctx context.Context, msg *mq.Delivery) error {
	event, err := mq.ParsePayload[domain.TriggerEvent](&msg.Message)
	if err != nil {
		s.logger.Error("invalid trigger event payload",
			"message_id", msg.Message.ID,
			"error", err,
		)
		return nil
	}

	exec, err := s.Execute(ctx, event)
	if err != nil {
		if errors.Is(err, ErrMissingWorkflowID) || errors.Is(err, ErrMissingCorrelationID) {
			s.logger.Error("malformed trigger event",
				"message_id", msg.Message.ID,
				"error", err,
			)
			return nil
		}
		return fmt.Errorf("execute workflow: %w", err)
	}

	s.logger.Info("trigger event processed",
		"message_id", msg.Message.ID,
		"execution_id", exec.ID,
		"status", exec.Status,
	)
	return nil
}
