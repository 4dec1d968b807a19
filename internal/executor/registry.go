package executor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/llm"
	"github.com/shaiso/Flowgrid/internal/secret"
)

// CredentialStore читает credentials пользователей.
type CredentialStore interface {
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Credential, error)
}

// Deps — зависимости исполнителей узлов.
type Deps struct {
	// Credentials — хранилище credentials для AI узлов.
	Credentials CredentialStore

	// Secrets расшифровывает значения credentials.
	Secrets secret.Decrypter

	// HTTPClient — транспорт узла HTTP_REQUEST. Nil — клиент по умолчанию.
	HTTPClient *http.Client

	// Gemini, OpenAI, Anthropic — клиенты провайдеров. Nil заменяется
	// продакшн-клиентом.
	Gemini    llm.TextGenerator
	OpenAI    llm.TextGenerator
	Anthropic llm.TextGenerator

	// Logger — логгер исполнителей.
	Logger *slog.Logger
}

// Registry — закрытый набор исполнителей узлов по типу.
type Registry struct {
	executors map[domain.NodeType]NodeExecutor
}

// NewRegistry создаёт Registry со всеми поддерживаемыми типами узлов.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Gemini == nil {
		deps.Gemini = &llm.GeminiClient{}
	}
	if deps.OpenAI == nil {
		deps.OpenAI = &llm.OpenAIClient{}
	}
	if deps.Anthropic == nil {
		deps.Anthropic = &llm.AnthropicClient{}
	}

	r := &Registry{executors: make(map[domain.NodeType]NodeExecutor)}

	r.executors[domain.NodeTypeManualTrigger] = &triggerExecutor{stepName: "manual-trigger"}
	r.executors[domain.NodeTypeGoogleFormTrigger] = &triggerExecutor{stepName: "google-form-trigger"}
	r.executors[domain.NodeTypeStripeTrigger] = &triggerExecutor{stepName: "stripe-trigger"}

	r.executors[domain.NodeTypeHTTPRequest] = &httpExecutor{
		client: deps.HTTPClient,
		logger: deps.Logger,
	}

	r.executors[domain.NodeTypeGemini] = &aiExecutor{
		provider:       "gemini",
		credentialType: domain.CredentialTypeGemini,
		defaultModel:   "gemini-2.0-flash",
		models:         geminiModels,
		generator:      deps.Gemini,
		credentials:    deps.Credentials,
		secrets:        deps.Secrets,
		logger:         deps.Logger,
	}
	r.executors[domain.NodeTypeOpenAI] = &aiExecutor{
		provider:       "openai",
		credentialType: domain.CredentialTypeOpenAI,
		defaultModel:   "gpt-4o",
		models:         openAIModels,
		generator:      deps.OpenAI,
		credentials:    deps.Credentials,
		secrets:        deps.Secrets,
		logger:         deps.Logger,
	}
	r.executors[domain.NodeTypeAnthropic] = &aiExecutor{
		provider:       "anthropic",
		credentialType: domain.CredentialTypeAnthropic,
		defaultModel:   "claude-3-7-sonnet-latest",
		models:         anthropicModels,
		generator:      deps.Anthropic,
		credentials:    deps.Credentials,
		secrets:        deps.Secrets,
		logger:         deps.Logger,
	}

	return r
}

// Get возвращает исполнителя для типа узла.
func (r *Registry) Get(nodeType domain.NodeType) (NodeExecutor, error) {
	exec, ok := r.executors[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, nodeType)
	}
	return exec, nil
}

// Types возвращает зарегистрированные типы узлов.
func (r *Registry) Types() []domain.NodeType {
	types := make([]domain.NodeType, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	return types
}
