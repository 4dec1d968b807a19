package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// ExecutionRepo — репозиторий для работы с executions.
type ExecutionRepo struct {
	pool *pgxpool.Pool
}

// NewExecutionRepo создаёт новый ExecutionRepo.
func NewExecutionRepo(pool *pgxpool.Pool) *ExecutionRepo {
	return &ExecutionRepo{pool: pool}
}

// Create создаёт новый execution.
//
// На correlation_id стоит уникальный индекс: повторная вставка для того
// же триггер-события возвращает ErrAlreadyExists.
func (r *ExecutionRepo) Create(ctx context.Context, exec *domain.Execution) error {
	query := `
		INSERT INTO executions (id, workflow_id, correlation_id, status, started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		exec.ID,
		exec.WorkflowID,
		exec.CorrelationID,
		exec.Status,
		exec.StartedAt,
		exec.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// GetByID возвращает execution по ID.
func (r *ExecutionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Execution, error) {
	query := executionSelect + ` WHERE id = $1`
	return r.scanExecution(r.pool.QueryRow(ctx, query, id))
}

// GetByCorrelationID возвращает execution по идентификатору триггер-события.
func (r *ExecutionRepo) GetByCorrelationID(ctx context.Context, correlationID string) (*domain.Execution, error) {
	query := executionSelect + ` WHERE correlation_id = $1`
	return r.scanExecution(r.pool.QueryRow(ctx, query, correlationID))
}

// ListByWorkflow возвращает executions одного workflow, новые первыми.
func (r *ExecutionRepo) ListByWorkflow(ctx context.Context, workflowID uuid.UUID, limit, offset int) ([]domain.Execution, error) {
	query := executionSelect + `
		WHERE workflow_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, workflowID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var execs []domain.Execution
	for rows.Next() {
		exec, err := r.scanExecution(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, *exec)
	}
	return execs, rows.Err()
}

// Update записывает терминальное состояние execution.
func (r *ExecutionRepo) Update(ctx context.Context, exec *domain.Execution) error {
	var outputJSON []byte
	if exec.Output != nil {
		var err error
		outputJSON, err = json.Marshal(exec.Output)
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
	}

	query := `
		UPDATE executions
		SET status = $2, completed_at = $3, output = $4, error = $5, error_stack = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		exec.ID,
		exec.Status,
		exec.CompletedAt,
		outputJSON,
		nullString(exec.Error),
		nullString(exec.ErrorStack),
	)
	if err != nil {
		return fmt.Errorf("update execution: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

const executionSelect = `
	SELECT id, workflow_id, correlation_id, status, started_at, completed_at,
	       output, error, error_stack, created_at
	FROM executions
`

// scanExecution сканирует одну строку в Execution.
func (r *ExecutionRepo) scanExecution(row pgx.Row) (*domain.Execution, error) {
	var exec domain.Execution
	var outputJSON []byte
	var execError *string
	var execStack *string

	err := row.Scan(
		&exec.ID,
		&exec.WorkflowID,
		&exec.CorrelationID,
		&exec.Status,
		&exec.StartedAt,
		&exec.CompletedAt,
		&outputJSON,
		&execError,
		&execStack,
		&exec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan execution: %w", err)
	}

	if outputJSON != nil {
		if err := json.Unmarshal(outputJSON, &exec.Output); err != nil {
			return nil, fmt.Errorf("unmarshal output: %w", err)
		}
	}
	if execError != nil {
		exec.Error = *execError
	}
	if execStack != nil {
		exec.ErrorStack = *execStack
	}

	return &exec, nil
}

// isUniqueViolation возвращает true для ошибки нарушения уникальности.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
