package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Ledger — журнал результатов durable-шагов в PostgreSQL.
//
// Один Ledger обслуживает все executions; для конкретного execution
// получают Runner через ForExecution.
type Ledger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLedger создаёт Ledger поверх пула соединений.
func NewLedger(pool *pgxpool.Pool, logger *slog.Logger) *Ledger {
	return &Ledger{pool: pool, logger: logger}
}

// ForExecution возвращает Runner, привязанный к execution.
func (l *Ledger) ForExecution(executionID uuid.UUID) Runner {
	return &ledgerRunner{
		ledger:      l,
		executionID: executionID,
	}
}

// ledgerRunner — Runner одного execution поверх Ledger.
type ledgerRunner struct {
	ledger      *Ledger
	executionID uuid.UUID
}

// Run реализует Runner.
//
// Сначала проверяет журнал: сохранённый результат воспроизводится без
// вызова fn. Иначе fn выполняется с ретраями (кроме неповторяемых
// ошибок) и результат записывается в журнал.
func (r *ledgerRunner) Run(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (json.RawMessage, error) {
	if raw, ok, err := r.ledger.lookup(ctx, r.executionID, name); err != nil {
		return nil, err
	} else if ok {
		r.ledger.logger.Debug("step replayed from ledger",
			"execution_id", r.executionID,
			"step", name,
		)
		return raw, nil
	}

	value, err := r.execute(ctx, name, fn)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("step %q: marshal result: %w", name, err)
	}

	if err := r.ledger.record(ctx, r.executionID, name, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// execute вызывает fn с ретраями и экспоненциальной паузой.
func (r *ledgerRunner) execute(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	var lastErr error
	backoff := retryBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if isNonRetriable(err) {
			return nil, fmt.Errorf("step %q: %w", name, err)
		}
		if attempt == maxAttempts {
			break
		}

		r.ledger.logger.Warn("step failed, retrying",
			"execution_id", r.executionID,
			"step", name,
			"attempt", attempt,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("step %q: %d attempts: %w", name, maxAttempts, lastErr)
}

// lookup читает сохранённый результат шага из журнала.
func (l *Ledger) lookup(ctx context.Context, executionID uuid.UUID, name string) (json.RawMessage, bool, error) {
	query := `
		SELECT result
		FROM step_results
		WHERE execution_id = $1 AND step_name = $2
	`
	var raw json.RawMessage
	err := l.pool.QueryRow(ctx, query, executionID, name).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup step %q: %w", name, err)
	}
	return raw, true, nil
}

// record записывает результат шага. Конфликт по (execution, шаг)
// игнорируется: первый записанный результат побеждает.
func (l *Ledger) record(ctx context.Context, executionID uuid.UUID, name string, raw json.RawMessage) error {
	query := `
		INSERT INTO step_results (execution_id, step_name, result, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (execution_id, step_name) DO NOTHING
	`
	_, err := l.pool.Exec(ctx, query, executionID, name, raw, time.Now())
	if err != nil {
		return fmt.Errorf("record step %q: %w", name, err)
	}
	return nil
}
