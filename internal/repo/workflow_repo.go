package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// WorkflowRepo — репозиторий для работы с workflows, nodes и connections.
type WorkflowRepo struct {
	pool *pgxpool.Pool
}

// NewWorkflowRepo создаёт новый WorkflowRepo.
func NewWorkflowRepo(pool *pgxpool.Pool) *WorkflowRepo {
	return &WorkflowRepo{pool: pool}
}

// GetByID возвращает workflow по ID.
func (r *WorkflowRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`
	var wf domain.Workflow
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&wf.ID,
		&wf.UserID,
		&wf.Name,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow by id: %w", err)
	}
	return &wf, nil
}

// List возвращает workflows пользователя.
func (r *WorkflowRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Workflow, error) {
	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM workflows
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []domain.Workflow
	for rows.Next() {
		var wf domain.Workflow
		if err := rows.Scan(&wf.ID, &wf.UserID, &wf.Name, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// GetGraph возвращает workflow вместе с узлами и соединениями.
//
// Узлы и соединения сортируются по времени создания: этот порядок —
// детерминированный tie-break линеаризации графа.
func (r *WorkflowRepo) GetGraph(ctx context.Context, id uuid.UUID) (*domain.Workflow, []domain.Node, []domain.Connection, error) {
	wf, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	nodes, err := r.listNodes(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	conns, err := r.listConnections(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	return wf, nodes, conns, nil
}

// listNodes возвращает узлы workflow в порядке создания.
func (r *WorkflowRepo) listNodes(ctx context.Context, workflowID uuid.UUID) ([]domain.Node, error) {
	query := `
		SELECT id, workflow_id, type, config, position_x, position_y, created_at
		FROM nodes
		WHERE workflow_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		var node domain.Node
		var configJSON []byte

		err := rows.Scan(
			&node.ID,
			&node.WorkflowID,
			&node.Type,
			&configJSON,
			&node.Position.X,
			&node.Position.Y,
			&node.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}

		if configJSON != nil {
			if err := json.Unmarshal(configJSON, &node.Config); err != nil {
				return nil, fmt.Errorf("unmarshal node config: %w", err)
			}
		}

		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// listConnections возвращает соединения workflow в порядке создания.
func (r *WorkflowRepo) listConnections(ctx context.Context, workflowID uuid.UUID) ([]domain.Connection, error) {
	query := `
		SELECT id, workflow_id, source_node_id, target_node_id, source_port, target_port, created_at
		FROM connections
		WHERE workflow_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		var conn domain.Connection
		var sourcePort, targetPort *string

		err := rows.Scan(
			&conn.ID,
			&conn.WorkflowID,
			&conn.SourceNodeID,
			&conn.TargetNodeID,
			&sourcePort,
			&targetPort,
			&conn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}

		if sourcePort != nil {
			conn.SourcePort = *sourcePort
		}
		if targetPort != nil {
			conn.TargetPort = *targetPort
		}

		conns = append(conns, conn)
	}
	return conns, rows.Err()
}
