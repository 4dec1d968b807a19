package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNilResult — шаг вернул nil; декодировать нечего.
var ErrNilResult = errors.New("step returned nil result")

// Runner выполняет именованные durable-шаги одного execution.
//
// Имя шага должно быть уникальным внутри execution: два вызова Run с
// одним именем вернут один и тот же результат, fn при повторе не
// вызывается.
type Runner interface {
	// Run выполняет шаг name, если он ещё не выполнялся в этом
	// execution, и возвращает его результат в виде JSON.
	// Для уже выполненного шага возвращает сохранённый результат.
	Run(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (json.RawMessage, error)
}

// RunAs выполняет шаг и декодирует результат в T.
func RunAs[T any](ctx context.Context, r Runner, name string, fn func(ctx context.Context) (any, error)) (T, error) {
	var result T

	raw, err := r.Run(ctx, name, fn)
	if err != nil {
		return result, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return result, fmt.Errorf("step %q: %w", name, ErrNilResult)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("step %q: decode result: %w", name, err)
	}
	return result, nil
}

// nonRetriable — ошибки конфигурации и другие ошибки, повтор которых
// бессмыслен. Реализуется через метод NonRetriable() bool.
type nonRetriable interface {
	NonRetriable() bool
}

// isNonRetriable возвращает true, если err (или любая обёрнутая ошибка)
// помечена как неповторяемая.
func isNonRetriable(err error) bool {
	var nr nonRetriable
	return errors.As(err, &nr) && nr.NonRetriable()
}
