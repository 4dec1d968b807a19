package engine

import "testing"

func TestNewContext_CopiesInitialData(t *testing.T) {
	initial := map[string]any{"a": 1}
	ctx := NewContext(initial)

	// Мутация исходной карты не видна в контексте.
	initial["a"] = 2
	initial["b"] = 3

	if ctx["a"] != 1 {
		t.Errorf("expected a=1, got %v", ctx["a"])
	}
	if _, ok := ctx["b"]; ok {
		t.Error("context should not see keys added after NewContext")
	}
}

func TestNewContext_Nil(t *testing.T) {
	ctx := NewContext(nil)
	if len(ctx) != 0 {
		t.Errorf("expected empty context, got %d entries", len(ctx))
	}
}

func TestContext_WithDoesNotMutate(t *testing.T) {
	base := NewContext(map[string]any{"a": 1})
	next := base.With("b", 2)

	// Проверяем копию.
	if _, ok := base["b"]; ok {
		t.Error("With must not mutate the receiver")
	}
	if next["a"] != 1 || next["b"] != 2 {
		t.Errorf("unexpected next context: %v", next)
	}
}

func TestContext_WithOverwrites(t *testing.T) {
	base := NewContext(map[string]any{"a": 1})
	next := base.With("a", 2)

	if base["a"] != 1 {
		t.Errorf("receiver changed: %v", base["a"])
	}
	if next["a"] != 2 {
		t.Errorf("expected a=2, got %v", next["a"])
	}
}

func TestContext_Merge(t *testing.T) {
	base := NewContext(map[string]any{"a": 1, "b": 1})
	next := base.Merge(map[string]any{"b": 2, "c": 3})

	if base["b"] != 1 {
		t.Error("Merge must not mutate the receiver")
	}
	// Значения из other имеют приоритет.
	if next["a"] != 1 || next["b"] != 2 || next["c"] != 3 {
		t.Errorf("unexpected merged context: %v", next)
	}
}
