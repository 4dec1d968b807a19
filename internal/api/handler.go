package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/repo"
	"github.com/shaiso/Flowgrid/internal/secret"
	"github.com/shaiso/Flowgrid/internal/status"
)

// EventPublisher публикует триггер-события в очередь.
type EventPublisher interface {
	PublishExecutionRequested(ctx context.Context, event domain.TriggerEvent) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	workflowRepo   *repo.WorkflowRepo
	executionRepo  *repo.ExecutionRepo
	credentialRepo *repo.CredentialRepo
	publisher      EventPublisher
	secrets        *secret.Codec
	tokens         *status.TokenIssuer
	logger         *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	WorkflowRepo   *repo.WorkflowRepo
	ExecutionRepo  *repo.ExecutionRepo
	CredentialRepo *repo.CredentialRepo
	Publisher      EventPublisher
	Secrets        *secret.Codec
	Tokens         *status.TokenIssuer
	Logger         *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		workflowRepo:   cfg.WorkflowRepo,
		executionRepo:  cfg.ExecutionRepo,
		credentialRepo: cfg.CredentialRepo,
		publisher:      cfg.Publisher,
		secrets:        cfg.Secrets,
		tokens:         cfg.Tokens,
		logger:         cfg.Logger,
	}
}
