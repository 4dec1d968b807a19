package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// CredentialRepo — репозиторий для работы с credentials.
//
// Значения хранятся только в зашифрованном виде; репозиторий шифрованием
// не занимается, это ответственность вызывающего.
type CredentialRepo struct {
	pool *pgxpool.Pool
}

// NewCredentialRepo создаёт новый CredentialRepo.
func NewCredentialRepo(pool *pgxpool.Pool) *CredentialRepo {
	return &CredentialRepo{pool: pool}
}

// Create создаёт новый credential.
func (r *CredentialRepo) Create(ctx context.Context, cred *domain.Credential) error {
	query := `
		INSERT INTO credentials (id, user_id, type, name, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		cred.ID,
		cred.UserID,
		cred.Type,
		cred.Name,
		cred.Value,
		cred.CreatedAt,
		cred.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// GetByIDAndUser возвращает credential по ID, если он принадлежит userID.
func (r *CredentialRepo) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Credential, error) {
	query := `
		SELECT id, user_id, type, name, value, created_at, updated_at
		FROM credentials
		WHERE id = $1 AND user_id = $2
	`
	var cred domain.Credential
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&cred.ID,
		&cred.UserID,
		&cred.Type,
		&cred.Name,
		&cred.Value,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &cred, nil
}

// ListByUser возвращает credentials пользователя без значений.
func (r *CredentialRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Credential, error) {
	query := `
		SELECT id, user_id, type, name, created_at, updated_at
		FROM credentials
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []domain.Credential
	for rows.Next() {
		var cred domain.Credential
		err := rows.Scan(
			&cred.ID,
			&cred.UserID,
			&cred.Type,
			&cred.Name,
			&cred.CreatedAt,
			&cred.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

// Delete удаляет credential пользователя.
func (r *CredentialRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM credentials WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
