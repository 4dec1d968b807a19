package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/engine"
	"github.com/shaiso/Flowgrid/internal/status"
	"github.com/shaiso/Flowgrid/internal/steps"
)

// Ошибки выполнения узлов.
var (
	// ErrUnknownNodeType — для типа узла нет зарегистрированного исполнителя.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrInvalidConfig — конфигурация узла неполна или некорректна.
	ErrInvalidConfig = errors.New("invalid node config")

	// ErrCredentialNotFound — credential из конфигурации узла не существует
	// или принадлежит другому пользователю.
	ErrCredentialNotFound = errors.New("credential not found")
)

// ConfigError — ошибка конфигурации конкретного узла.
//
// Такие ошибки неповторяемы: пока пользователь не исправит узел в
// редакторе, повторный запуск даст тот же результат.
type ConfigError struct {
	NodeID  uuid.UUID // узел с некорректной конфигурацией
	Field   string    // поле конфигурации
	Message string    // описание проблемы
}

// Error реализует интерфейс error.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("node %s: config field %q: %s", e.NodeID, e.Field, e.Message)
	}
	return fmt.Sprintf("node %s: %s", e.NodeID, e.Message)
}

// Unwrap возвращает ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NonRetriable помечает ошибку как неповторяемую для durable steps.
func (e *ConfigError) NonRetriable() bool {
	return true
}

// Request — один вызов исполнителя узла.
type Request struct {
	// NodeID — выполняемый узел.
	NodeID uuid.UUID

	// NodeType — тип узла.
	NodeType domain.NodeType

	// Config — конфигурация узла.
	Config map[string]any

	// Context — контекст выполнения с результатами предыдущих узлов.
	Context engine.Context

	// UserID — владелец workflow. Ограничивает доступ к credentials.
	UserID uuid.UUID

	// Steps — durable steps текущего execution.
	Steps steps.Runner

	// Status — канал статусных событий.
	Status status.Publisher
}

// stepName возвращает имя durable step с привязкой к узлу.
//
// Журнал шагов ключуется парой (execution, имя шага), поэтому два узла
// одного типа в одном workflow без привязки делили бы одну запись:
// второй узел воспроизводил бы результат первого вместо собственного.
func (r *Request) stepName(suffix string) string {
	return r.NodeID.String() + ":" + suffix
}

// NodeExecutor выполняет узел одного типа.
//
// Возвращённый контекст замещает входной; исполнитель обязан включить
// в него все записи входного контекста.
type NodeExecutor interface {
	Execute(ctx context.Context, req *Request) (engine.Context, error)
}

// configString достаёт строковое поле конфигурации узла.
func configString(req *Request, field string) string {
	v, ok := req.Config[field]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// requireConfigString достаёт обязательное строковое поле конфигурации.
func requireConfigString(req *Request, field string) (string, error) {
	s := configString(req, field)
	if s == "" {
		return "", &ConfigError{
			NodeID:  req.NodeID,
			Field:   field,
			Message: "is required",
		}
	}
	return s, nil
}
