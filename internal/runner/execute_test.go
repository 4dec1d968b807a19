package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/executor"
	"github.com/shaiso/Flowgrid/internal/repo"
	"github.com/shaiso/Flowgrid/internal/status"
	"github.com/shaiso/Flowgrid/internal/steps"
)

// fakeWorkflowStore — WorkflowStore на одном workflow.
type fakeWorkflowStore struct {
	workflow *domain.Workflow
	nodes    []domain.Node
	conns    []domain.Connection
	err      error
}

func (f *fakeWorkflowStore) GetGraph(_ context.Context, id uuid.UUID) (*domain.Workflow, []domain.Node, []domain.Connection, error) {
	if f.err != nil {
		return nil, nil, nil, f.err
	}
	if f.workflow == nil || f.workflow.ID != id {
		return nil, nil, nil, repo.ErrNotFound
	}
	return f.workflow, f.nodes, f.conns, nil
}

// fakeExecutionStore — ExecutionStore на карте с уникальностью по
// correlation id.
type fakeExecutionStore struct {
	mu            sync.Mutex
	byCorrelation map[string]*domain.Execution
	createErr     error

	// missFirstLookup имитирует гонку: запись появляется между первой
	// проверкой и вставкой.
	missFirstLookup bool
}

func newFakeExecutionStore() *fakeExecutionStore {
	return &fakeExecutionStore{byCorrelation: make(map[string]*domain.Execution)}
}

func (f *fakeExecutionStore) Create(_ context.Context, exec *domain.Execution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byCorrelation[exec.CorrelationID]; ok {
		return repo.ErrAlreadyExists
	}
	copied := *exec
	f.byCorrelation[exec.CorrelationID] = &copied
	return nil
}

func (f *fakeExecutionStore) GetByCorrelationID(_ context.Context, correlationID string) (*domain.Execution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missFirstLookup {
		f.missFirstLookup = false
		return nil, repo.ErrNotFound
	}
	exec, ok := f.byCorrelation[correlationID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *exec
	return &copied, nil
}

func (f *fakeExecutionStore) Update(_ context.Context, exec *domain.Execution) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *exec
	f.byCorrelation[exec.CorrelationID] = &copied
	return nil
}

// memoryStepFactory выдаёт общий MemoryRunner на каждый execution.
type memoryStepFactory struct {
	mu      sync.Mutex
	runners map[uuid.UUID]*steps.MemoryRunner
}

func newMemoryStepFactory() *memoryStepFactory {
	return &memoryStepFactory{runners: make(map[uuid.UUID]*steps.MemoryRunner)}
}

func (m *memoryStepFactory) ForExecution(executionID uuid.UUID) steps.Runner {
	m.mu.Lock()
	defer m.mu.Unlock()
	runner, ok := m.runners[executionID]
	if !ok {
		runner = steps.NewMemoryRunner()
		m.runners[executionID] = runner
	}
	return runner
}

type fixture struct {
	service    *Service
	workflows  *fakeWorkflowStore
	executions *fakeExecutionStore
	statusRec  *status.Recorder
	workflowID uuid.UUID
	userID     uuid.UUID
}

func newFixture(t *testing.T, deps executor.Deps) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if deps.Logger == nil {
		deps.Logger = logger
	}

	workflows := &fakeWorkflowStore{}
	executions := newFakeExecutionStore()
	statusRec := status.NewRecorder()

	svc := New(Config{
		Workflows:  workflows,
		Executions: executions,
		Registry:   executor.NewRegistry(deps),
		Steps:      newMemoryStepFactory(),
		Status:     statusRec,
		Logger:     logger,
	})

	return &fixture{
		service:    svc,
		workflows:  workflows,
		executions: executions,
		statusRec:  statusRec,
		workflowID: uuid.New(),
		userID:     uuid.New(),
	}
}

// setGraph наполняет fakeWorkflowStore линейным графом из переданных узлов.
func (f *fixture) setGraph(nodes []domain.Node, conns []domain.Connection) {
	f.workflows.workflow = &domain.Workflow{
		ID:     f.workflowID,
		UserID: f.userID,
		Name:   "test workflow",
	}
	f.workflows.nodes = nodes
	f.workflows.conns = conns
}

func makeNode(workflowID uuid.UUID, nodeType domain.NodeType, config map[string]any, seq int) domain.Node {
	return domain.Node{
		ID:         uuid.New(),
		WorkflowID: workflowID,
		Type:       nodeType,
		Config:     config,
		CreatedAt:  time.Unix(int64(seq), 0),
	}
}

func connect(workflowID uuid.UUID, from, to domain.Node) domain.Connection {
	return domain.Connection{
		ID:           uuid.New(),
		WorkflowID:   workflowID,
		SourceNodeID: from.ID,
		TargetNodeID: to.ID,
	}
}

func TestExecute_TwoNodeWorkflow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	f := newFixture(t, executor.Deps{})

	trigger := makeNode(f.workflowID, domain.NodeTypeManualTrigger, nil, 0)
	httpNode := makeNode(f.workflowID, domain.NodeTypeHTTPRequest, map[string]any{
		"variableName": "apiResult",
		"endpoint":     server.URL,
		"method":       "GET",
	}, 1)
	f.setGraph(
		[]domain.Node{trigger, httpNode},
		[]domain.Connection{connect(f.workflowID, trigger, httpNode)},
	)

	exec, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID:    f.workflowID,
		CorrelationID: "manual-1",
		InitialData:   map[string]any{"manual": true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.Status != domain.ExecutionStatusSuccess {
		t.Fatalf("expected SUCCESS, got %s (error: %s)", exec.Status, exec.Error)
	}
	if exec.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}

	// Итоговый контекст содержит данные триггера и результат HTTP узла.
	stored, err := f.executions.GetByCorrelationID(context.Background(), "manual-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Output["manual"] != true {
		t.Errorf("expected trigger data in output, got %v", stored.Output)
	}
	wrapped, ok := stored.Output["apiResult"].(map[string]any)
	if !ok {
		t.Fatalf("expected apiResult in output, got %v", stored.Output)
	}
	resp := wrapped["httpResponse"].(map[string]any)
	if resp["status"] != 200 {
		t.Errorf("expected status 200, got %v", resp["status"])
	}

	// Каждый выполненный узел публикует loading и success.
	events := f.statusRec.Events()
	if len(events) != 4 {
		t.Fatalf("expected 4 status events, got %d", len(events))
	}
}

func TestExecute_SameTypeNodesKeepOwnResults(t *testing.T) {
	var firstHits, secondHits int

	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firstHits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"from": "first"}`))
	}))
	defer first.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondHits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"from": "second"}`))
	}))
	defer second.Close()

	f := newFixture(t, executor.Deps{})

	trigger := makeNode(f.workflowID, domain.NodeTypeManualTrigger, nil, 0)
	nodeA := makeNode(f.workflowID, domain.NodeTypeHTTPRequest, map[string]any{
		"variableName": "a",
		"endpoint":     first.URL,
		"method":       "GET",
	}, 1)
	nodeB := makeNode(f.workflowID, domain.NodeTypeHTTPRequest, map[string]any{
		"variableName": "b",
		"endpoint":     second.URL,
		"method":       "GET",
	}, 2)
	f.setGraph(
		[]domain.Node{trigger, nodeA, nodeB},
		[]domain.Connection{
			connect(f.workflowID, trigger, nodeA),
			connect(f.workflowID, nodeA, nodeB),
		},
	)

	exec, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID:    f.workflowID,
		CorrelationID: "manual-10",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.Status != domain.ExecutionStatusSuccess {
		t.Fatalf("expected SUCCESS, got %s (error: %s)", exec.Status, exec.Error)
	}

	// Два узла одного типа не делят записи журнала шагов: каждый
	// выполняет собственный запрос и хранит собственный результат.
	if firstHits != 1 || secondHits != 1 {
		t.Fatalf("expected one hit per server, got %d and %d", firstHits, secondHits)
	}
	dataOf := func(name string) map[string]any {
		t.Helper()
		wrapped, ok := exec.Output[name].(map[string]any)
		if !ok {
			t.Fatalf("expected %s in output, got %v", name, exec.Output)
		}
		return wrapped["httpResponse"].(map[string]any)["data"].(map[string]any)
	}
	if dataOf("a")["from"] != "first" {
		t.Errorf("unexpected data for a: %v", dataOf("a"))
	}
	if dataOf("b")["from"] != "second" {
		t.Errorf("unexpected data for b: %v", dataOf("b"))
	}
}

func TestExecute_NodeConfigErrorFailsExecution(t *testing.T) {
	f := newFixture(t, executor.Deps{})

	trigger := makeNode(f.workflowID, domain.NodeTypeManualTrigger, nil, 0)
	// endpoint отсутствует.
	httpNode := makeNode(f.workflowID, domain.NodeTypeHTTPRequest, map[string]any{
		"variableName": "apiResult",
	}, 1)
	f.setGraph(
		[]domain.Node{trigger, httpNode},
		[]domain.Connection{connect(f.workflowID, trigger, httpNode)},
	)

	exec, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID:    f.workflowID,
		CorrelationID: "manual-2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ошибка узла — провал execution, не ошибка вызова.
	if exec.Status != domain.ExecutionStatusFailed {
		t.Fatalf("expected FAILED, got %s", exec.Status)
	}
	if exec.Error == "" {
		t.Error("expected error message")
	}
	if exec.ErrorStack == "" {
		t.Error("expected error stack")
	}
	if exec.Output != nil {
		t.Errorf("failed execution must not have output, got %v", exec.Output)
	}
}

func TestExecute_FinishedExecutionIsNotRerun(t *testing.T) {
	f := newFixture(t, executor.Deps{})

	trigger := makeNode(f.workflowID, domain.NodeTypeManualTrigger, nil, 0)
	f.setGraph([]domain.Node{trigger}, nil)

	event := domain.TriggerEvent{WorkflowID: f.workflowID, CorrelationID: "manual-3"}

	first, err := f.service.Execute(context.Background(), event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != domain.ExecutionStatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", first.Status)
	}

	eventsBefore := len(f.statusRec.Events())

	// Повторная доставка того же события.
	second, err := f.service.Execute(context.Background(), event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the same execution, got %s and %s", first.ID, second.ID)
	}
	// Узлы не выполнялись повторно.
	if len(f.statusRec.Events()) != eventsBefore {
		t.Error("finished execution must not re-run nodes")
	}
}

func TestExecute_WorkflowNotFound(t *testing.T) {
	f := newFixture(t, executor.Deps{})

	exec, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID:    uuid.New(),
		CorrelationID: "manual-4",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Несуществующий workflow — провал execution, событие не вернётся
	// в очередь.
	if exec.Status != domain.ExecutionStatusFailed {
		t.Fatalf("expected FAILED, got %s", exec.Status)
	}
}

func TestExecute_CycleFailsBeforeAnyNode(t *testing.T) {
	f := newFixture(t, executor.Deps{})

	trigger := makeNode(f.workflowID, domain.NodeTypeManualTrigger, nil, 0)
	a := makeNode(f.workflowID, domain.NodeTypeHTTPRequest, map[string]any{"variableName": "a", "endpoint": "http://example.com", "method": "GET"}, 1)
	b := makeNode(f.workflowID, domain.NodeTypeHTTPRequest, map[string]any{"variableName": "b", "endpoint": "http://example.com", "method": "GET"}, 2)
	f.setGraph(
		[]domain.Node{trigger, a, b},
		[]domain.Connection{
			connect(f.workflowID, trigger, a),
			connect(f.workflowID, a, b),
			connect(f.workflowID, b, a),
		},
	)

	exec, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID:    f.workflowID,
		CorrelationID: "manual-5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.Status != domain.ExecutionStatusFailed {
		t.Fatalf("expected FAILED, got %s", exec.Status)
	}
	// Ни один узел не стартовал.
	if len(f.statusRec.Events()) != 0 {
		t.Errorf("expected no status events, got %d", len(f.statusRec.Events()))
	}
}

func TestExecute_SkipsInitialAndUnreachableNodes(t *testing.T) {
	f := newFixture(t, executor.Deps{})

	initial := makeNode(f.workflowID, domain.NodeTypeInitial, nil, 0)
	trigger := makeNode(f.workflowID, domain.NodeTypeManualTrigger, nil, 1)
	orphan := makeNode(f.workflowID, domain.NodeTypeHTTPRequest, map[string]any{
		"variableName": "orphan",
		"endpoint":     "http://localhost:1/unreachable",
		"method":       "GET",
	}, 2)
	f.setGraph([]domain.Node{initial, trigger, orphan}, nil)

	exec, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID:    f.workflowID,
		CorrelationID: "manual-6",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// INITIAL выбирается как entry, осиротевшие узлы пропускаются,
	// execution завершается успешно.
	if exec.Status != domain.ExecutionStatusSuccess {
		t.Fatalf("expected SUCCESS, got %s (error: %s)", exec.Status, exec.Error)
	}
	if len(f.statusRec.Events()) != 0 {
		t.Errorf("expected no status events, got %d", len(f.statusRec.Events()))
	}
}

func TestExecute_MissingIdentifiers(t *testing.T) {
	f := newFixture(t, executor.Deps{})

	_, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		CorrelationID: "manual-7",
	})
	if !errors.Is(err, ErrMissingWorkflowID) {
		t.Fatalf("expected ErrMissingWorkflowID, got %v", err)
	}

	_, err = f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID: uuid.New(),
	})
	if !errors.Is(err, ErrMissingCorrelationID) {
		t.Fatalf("expected ErrMissingCorrelationID, got %v", err)
	}
}

func TestExecute_CreateRaceFallsBackToExisting(t *testing.T) {
	f := newFixture(t, executor.Deps{})

	trigger := makeNode(f.workflowID, domain.NodeTypeManualTrigger, nil, 0)
	f.setGraph([]domain.Node{trigger}, nil)

	// Другой runner уже создал и завершил execution для этого события,
	// но первая проверка его ещё не видит: вставка упрётся в уникальный
	// индекс и claim перечитает запись.
	existing := domain.NewExecution(f.workflowID, "manual-8")
	existing.MarkSucceeded(map[string]any{"winner": "other"})
	if err := f.executions.Update(context.Background(), existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.executions.missFirstLookup = true

	exec, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID:    f.workflowID,
		CorrelationID: "manual-8",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.ID != existing.ID {
		t.Errorf("expected existing execution, got %s", exec.ID)
	}
	if exec.Output["winner"] != "other" {
		t.Errorf("unexpected output: %v", exec.Output)
	}
}

func TestExecute_InfraErrorIsReturned(t *testing.T) {
	f := newFixture(t, executor.Deps{})
	f.executions.createErr = errors.New("connection refused")

	trigger := makeNode(f.workflowID, domain.NodeTypeManualTrigger, nil, 0)
	f.setGraph([]domain.Node{trigger}, nil)

	_, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID:    f.workflowID,
		CorrelationID: "manual-9",
	})
	if err == nil {
		t.Fatal("expected infrastructure error to propagate")
	}
}

func TestExecute_GraphLoadErrorDoesNotFailExecution(t *testing.T) {
	f := newFixture(t, executor.Deps{})

	trigger := makeNode(f.workflowID, domain.NodeTypeManualTrigger, nil, 0)
	f.setGraph([]domain.Node{trigger}, nil)
	f.workflows.err = errors.New("connection refused")

	// Сбой БД при загрузке графа — инфраструктурная ошибка: событие
	// вернётся в очередь, execution не проваливается.
	_, err := f.service.Execute(context.Background(), domain.TriggerEvent{
		WorkflowID:    f.workflowID,
		CorrelationID: "manual-11",
	})
	if err == nil {
		t.Fatal("expected infrastructure error to propagate")
	}

	stored, err := f.executions.GetByCorrelationID(context.Background(), "manual-11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != domain.ExecutionStatusRunning {
		t.Errorf("expected RUNNING, got %s", stored.Status)
	}
}
