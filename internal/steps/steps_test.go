package steps

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemoryRunner_RunsOnce(t *testing.T) {
	runner := NewMemoryRunner()
	calls := 0

	fn := func(ctx context.Context) (any, error) {
		calls++
		return map[string]any{"value": calls}, nil
	}

	first, err := runner.Run(context.Background(), "step", fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := runner.Run(context.Background(), "step", fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Повторный вызов возвращает сохранённый результат, fn не вызывается.
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if string(first) != string(second) {
		t.Errorf("expected identical results: %s vs %s", first, second)
	}
	if runner.Calls("step") != 1 {
		t.Errorf("expected Calls=1, got %d", runner.Calls("step"))
	}
}

func TestMemoryRunner_DifferentNamesRunSeparately(t *testing.T) {
	runner := NewMemoryRunner()

	for _, name := range []string{"a", "b"} {
		_, err := runner.Run(context.Background(), name, func(ctx context.Context) (any, error) {
			return name, nil
		})
		if err != nil {
			t.Fatalf("step %q: unexpected error: %v", name, err)
		}
	}

	if runner.Calls("a") != 1 || runner.Calls("b") != 1 {
		t.Errorf("expected one call each, got a=%d b=%d", runner.Calls("a"), runner.Calls("b"))
	}
}

func TestMemoryRunner_ErrorIsNotRecorded(t *testing.T) {
	runner := NewMemoryRunner()
	stepErr := errors.New("boom")
	calls := 0

	fn := func(ctx context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, stepErr
		}
		return "ok", nil
	}

	if _, err := runner.Run(context.Background(), "step", fn); !errors.Is(err, stepErr) {
		t.Fatalf("expected boom, got %v", err)
	}

	// Неудачный шаг можно повторить.
	raw, err := runner.Run(context.Background(), "step", fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `"ok"` {
		t.Errorf("unexpected result: %s", raw)
	}
}

func TestRunAs_DecodesResult(t *testing.T) {
	runner := NewMemoryRunner()

	type payload struct {
		Text string `json:"text"`
	}

	got, err := RunAs[payload](context.Background(), runner, "step", func(ctx context.Context) (any, error) {
		return payload{Text: "hello"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "hello" {
		t.Errorf("expected hello, got %q", got.Text)
	}
}

func TestRunAs_SeededResult(t *testing.T) {
	runner := NewMemoryRunner()
	if err := runner.Seed("step", map[string]any{"text": "replayed"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := RunAs[map[string]any](context.Background(), runner, "step", func(ctx context.Context) (any, error) {
		t.Fatal("fn must not run for a seeded step")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["text"] != "replayed" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestRunAs_NilResult(t *testing.T) {
	runner := NewMemoryRunner()

	_, err := RunAs[map[string]any](context.Background(), runner, "step", func(ctx context.Context) (any, error) {
		return nil, nil
	})
	if !errors.Is(err, ErrNilResult) {
		t.Fatalf("expected ErrNilResult, got %v", err)
	}
}

// configError имитирует неповторяемую ошибку исполнителя.
type configError struct{ msg string }

func (e *configError) Error() string      { return e.msg }
func (e *configError) NonRetriable() bool { return true }

func TestIsNonRetriable(t *testing.T) {
	cfgErr := &configError{msg: "missing endpoint"}

	if !isNonRetriable(cfgErr) {
		t.Error("expected config error to be non-retriable")
	}
	// Обёртка сохраняет маркер.
	if !isNonRetriable(fmt.Errorf("node failed: %w", cfgErr)) {
		t.Error("expected wrapped config error to be non-retriable")
	}
	if isNonRetriable(errors.New("network timeout")) {
		t.Error("plain errors must be retriable")
	}
	if isNonRetriable(nil) {
		t.Error("nil is not an error")
	}
}
