package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/engine"
	"github.com/shaiso/Flowgrid/internal/executor"
	"github.com/shaiso/Flowgrid/internal/repo"
	"github.com/shaiso/Flowgrid/internal/telemetry"
)

// Execute выполняет workflow по триггер-событию.
//
// На одно событие (correlation id) создаётся ровно один execution:
// повторный вызов с тем же событием возвращает уже завершённый
// execution или продолжает незавершённый, воспроизводя выполненные
// durable steps из журнала.
//
// Ошибка возвращается только при сбое инфраструктуры (БД недоступна).
// Ошибки самого workflow — неизвестный workflow, цикл в графе, упавший
// узел — фиксируются в execution со статусом FAILED, и Execute
// возвращает его без ошибки.
func (s *Service) Execute(ctx context.Context, event domain.TriggerEvent) (*domain.Execution, error) {
	if event.WorkflowID == uuid.Nil {
		return nil, ErrMissingWorkflowID
	}
	if event.CorrelationID == "" {
		return nil, ErrMissingCorrelationID
	}

	exec, err := s.claimExecution(ctx, event)
	if err != nil {
		return nil, err
	}
	if exec.IsFinished() {
		s.logger.Info("execution already finished, returning as is",
			"execution_id", exec.ID,
			"correlation_id", exec.CorrelationID,
			"status", exec.Status,
		)
		return exec, nil
	}

	logger := telemetry.WithExecutionID(s.logger, exec.ID.String())
	logger = telemetry.WithWorkflowID(logger, event.WorkflowID.String())
	logger.Info("execution started")
	telemetry.ExecutionsStarted.Inc()

	// Сбой хранилища при загрузке графа — инфраструктурная ошибка:
	// execution не проваливается, событие вернётся в очередь.
	var runErr error
	wf, nodes, conns, err := s.workflows.GetGraph(ctx, event.WorkflowID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		runErr = fmt.Errorf("%w: %s", ErrWorkflowNotFound, event.WorkflowID)
	case err != nil:
		return nil, fmt.Errorf("load workflow graph: %w", err)
	default:
		runErr = s.run(ctx, exec, wf, nodes, conns, event, logger)
	}

	if runErr != nil {
		if failErr := s.failExecution(ctx, exec, runErr); failErr != nil {
			return nil, failErr
		}
		logger.Error("execution failed", "error", runErr)
	} else {
		logger.Info("execution succeeded")
	}

	telemetry.ExecutionsCompleted.WithLabelValues(string(exec.Status)).Inc()
	return exec, nil
}

// claimExecution возвращает execution для события: существующий, если
// событие уже доставлялось, иначе создаёт новый.
func (s *Service) claimExecution(ctx context.Context, event domain.TriggerEvent) (*domain.Execution, error) {
	existing, err := s.executions.GetByCorrelationID(ctx, event.CorrelationID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup execution: %w", err)
	}

	exec := domain.NewExecution(event.WorkflowID, event.CorrelationID)
	if err := s.executions.Create(ctx, exec); err != nil {
		// Гонка с параллельной доставкой того же события: уникальный
		// индекс по correlation_id оставляет ровно одну запись.
		if errors.Is(err, repo.ErrAlreadyExists) {
			return s.executions.GetByCorrelationID(ctx, event.CorrelationID)
		}
		return nil, fmt.Errorf("create execution: %w", err)
	}
	return exec, nil
}

// run прогоняет контекст через узлы workflow. Возвращённая ошибка
// означает провал execution.
func (s *Service) run(ctx context.Context, exec *domain.Execution, wf *domain.Workflow, nodes []domain.Node, conns []domain.Connection, event domain.TriggerEvent, logger *slog.Logger) error {
	entry, err := engine.FindEntry(nodes, conns)
	if err != nil {
		return err
	}

	order, err := engine.Linearize(nodes, conns)
	if err != nil {
		return err
	}

	reachable := engine.Reachable(entry.ID, conns)
	execCtx := engine.NewContext(event.InitialData)
	stepRunner := s.stepsFor.ForExecution(exec.ID)

	for i := range order {
		node := &order[i]

		// INITIAL — заглушка редактора, осиротевшие узлы не выполняются.
		if node.Type == domain.NodeTypeInitial || !reachable[node.ID] {
			continue
		}

		// Кооперативная отмена между узлами.
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("execution cancelled: %w", err)
		}

		nodeExec, err := s.registry.Get(node.Type)
		if err != nil {
			return err
		}

		nodeLogger := telemetry.WithNodeID(logger, node.ID.String())
		nodeLogger.Debug("executing node", "type", node.Type)
		started := time.Now()

		execCtx, err = nodeExec.Execute(ctx, &executor.Request{
			NodeID:   node.ID,
			NodeType: node.Type,
			Config:   node.Config,
			Context:  execCtx,
			UserID:   wf.UserID,
			Steps:    stepRunner,
			Status:   s.statusPub,
		})

		telemetry.NodeDuration.WithLabelValues(string(node.Type)).Observe(time.Since(started).Seconds())
		if err != nil {
			telemetry.NodeErrors.WithLabelValues(string(node.Type)).Inc()
			return fmt.Errorf("node %s (%s): %w", node.ID, node.Type, err)
		}
	}

	exec.MarkSucceeded(execCtx.AsMap())
	if err := s.executions.Update(ctx, exec); err != nil {
		return fmt.Errorf("persist execution result: %w", err)
	}
	return nil
}

// failExecution фиксирует провал execution в хранилище.
func (s *Service) failExecution(ctx context.Context, exec *domain.Execution, cause error) error {
	exec.MarkFailed(cause.Error(), string(debug.Stack()))
	if err := s.executions.Update(ctx, exec); err != nil {
		return fmt.Errorf("persist execution failure: %w", err)
	}
	return nil
}
