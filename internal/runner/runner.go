package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/executor"
	"github.com/shaiso/Flowgrid/internal/mq"
	"github.com/shaiso/Flowgrid/internal/status"
	"github.com/shaiso/Flowgrid/internal/steps"
)

// WorkflowStore читает графы workflows.
type WorkflowStore interface {
	GetGraph(ctx context.Context, id uuid.UUID) (*domain.Workflow, []domain.Node, []domain.Connection, error)
}

// ExecutionStore хранит executions.
type ExecutionStore interface {
	Create(ctx context.Context, exec *domain.Execution) error
	GetByCorrelationID(ctx context.Context, correlationID string) (*domain.Execution, error)
	Update(ctx context.Context, exec *domain.Execution) error
}

// StepFactory выдаёт durable steps для конкретного execution.
type StepFactory interface {
	ForExecution(executionID uuid.UUID) steps.Runner
}

// Service выполняет workflows по событиям из очереди.
type Service struct {
	workflows  WorkflowStore
	executions ExecutionStore
	registry   *executor.Registry
	stepsFor   StepFactory
	statusPub  status.Publisher

	conn     *mq.Connection
	consumer *mq.Consumer

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Service.
type Config struct {
	// Workflows — хранилище графов workflows.
	Workflows WorkflowStore

	// Executions — хранилище executions.
	Executions ExecutionStore

	// Registry — исполнители узлов.
	Registry *executor.Registry

	// Steps — фабрика durable steps.
	Steps StepFactory

	// Status — канал статусных событий. Nil — события отбрасываются.
	Status status.Publisher

	// Conn — соединение с RabbitMQ. Nil допустим для тестов,
	// которые вызывают Execute напрямую.
	Conn *mq.Connection

	// Logger — логгер сервиса.
	Logger *slog.Logger
}

// New создаёт новый Service.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	statusPub := cfg.Status
	if statusPub == nil {
		statusPub = status.NopPublisher{}
	}

	return &Service{
		workflows:  cfg.Workflows,
		executions: cfg.Executions,
		registry:   cfg.Registry,
		stepsFor:   cfg.Steps,
		statusPub:  statusPub,
		conn:       cfg.Conn,
		logger:     logger,
	}
}

// Start запускает потребление триггер-событий из executions.pending.
func (s *Service) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	s.logger.Info("starting runner")

	s.consumer = mq.NewConsumer(s.conn, s.logger, mq.ConsumerConfig{
		Queue:    string(mq.QueueExecutionsPending),
		Handler:  s.handleExecutionRequested,
		Prefetch: 10,
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("execution consumer error", "error", err)
		}
	}()

	s.logger.Info("runner started")
	return nil
}

// Stop останавливает Service.
func (s *Service) Stop() {
	s.logger.Info("stopping runner...")

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	if s.consumer != nil {
		s.consumer.Stop()
	}

	s.wg.Wait()

	s.logger.Info("runner stopped")
}
