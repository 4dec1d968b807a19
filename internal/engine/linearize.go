package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// Linearize превращает набор узлов и соединений в единый детерминированный
// порядок выполнения (алгоритм Кана).
//
// Порядок гарантирует, что источник каждого соединения стоит раньше его
// приёмника. Когда несколько узлов готовы одновременно, tie-break —
// порядок узлов во входном срезе (порядок загрузки из хранилища, то есть
// порядок создания): один и тот же граф линеаризуется одинаково при
// каждом запуске.
//
// Возвращает ErrCycle, если соединения образуют цикл, и ErrUnknownNode,
// если соединение ссылается на узел вне переданного набора.
func Linearize(nodes []domain.Node, conns []domain.Connection) ([]domain.Node, error) {
	index := make(map[uuid.UUID]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	inDegree := make([]int, len(nodes))
	successors := make([][]int, len(nodes))
	seen := make(map[[2]int]bool, len(conns))

	for _, c := range conns {
		from, ok := index[c.SourceNodeID]
		if !ok {
			return nil, &GraphError{
				NodeID:  c.SourceNodeID.String(),
				Message: fmt.Sprintf("connection %s has unknown source", c.ID),
				Err:     ErrUnknownNode,
			}
		}
		to, ok := index[c.TargetNodeID]
		if !ok {
			return nil, &GraphError{
				NodeID:  c.TargetNodeID.String(),
				Message: fmt.Sprintf("connection %s has unknown target", c.ID),
				Err:     ErrUnknownNode,
			}
		}

		// Дубликаты рёбер не учитываем дважды.
		edge := [2]int{from, to}
		if seen[edge] {
			continue
		}
		seen[edge] = true

		successors[from] = append(successors[from], to)
		inDegree[to]++
	}

	// Очередь узлов с inDegree = 0, в порядке загрузки.
	queue := make([]int, 0, len(nodes))
	for i := range nodes {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]domain.Node, 0, len(nodes))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, nodes[i])

		for _, succ := range successors[i] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	// Если обработаны не все узлы — среди оставшихся есть цикл.
	if len(order) != len(nodes) {
		return nil, fmt.Errorf("%w: %d of %d nodes unreachable from ready queue",
			ErrCycle, len(nodes)-len(order), len(nodes))
	}

	return order, nil
}

// FindEntry возвращает точку входа workflow: узел-триггер без входящих
// соединений. Возвращает ErrNoEntryNode, если такого узла нет.
func FindEntry(nodes []domain.Node, conns []domain.Connection) (*domain.Node, error) {
	hasIncoming := make(map[uuid.UUID]bool, len(conns))
	for _, c := range conns {
		hasIncoming[c.TargetNodeID] = true
	}

	for i := range nodes {
		n := &nodes[i]
		if n.Type.IsTrigger() && !hasIncoming[n.ID] {
			return n, nil
		}
	}

	return nil, ErrNoEntryNode
}

// Reachable возвращает множество узлов, достижимых из entry по соединениям
// (включая сам entry).
//
// Узлы вне этого множества — осиротевшие фрагменты редактора; они попадают
// в линеаризованный порядок (циклы среди них всё равно ошибка), но не
// выполняются.
func Reachable(entry uuid.UUID, conns []domain.Connection) map[uuid.UUID]bool {
	successors := make(map[uuid.UUID][]uuid.UUID, len(conns))
	for _, c := range conns {
		successors[c.SourceNodeID] = append(successors[c.SourceNodeID], c.TargetNodeID)
	}

	reachable := map[uuid.UUID]bool{entry: true}
	stack := []uuid.UUID{entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range successors[id] {
			if !reachable[next] {
				reachable[next] = true
				stack = append(stack, next)
			}
		}
	}

	return reachable
}
