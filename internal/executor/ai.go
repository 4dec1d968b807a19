package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Flowgrid/internal/domain"
	"github.com/shaiso/Flowgrid/internal/engine"
	"github.com/shaiso/Flowgrid/internal/llm"
	"github.com/shaiso/Flowgrid/internal/repo"
	"github.com/shaiso/Flowgrid/internal/secret"
	"github.com/shaiso/Flowgrid/internal/status"
	"github.com/shaiso/Flowgrid/internal/steps"
)

// defaultSystemPrompt используется, когда пользователь не задал свой.
const defaultSystemPrompt = "You are a helpful assistant."

// Поддерживаемые модели провайдеров. Первая в списке — не обязательно
// модель по умолчанию, умолчание задаётся в Registry.
var (
	geminiModels = []string{
		"gemini-2.5-pro",
		"gemini-2.5-flash-lite",
		"gemini-2.0-flash",
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gemini-1.5-flash-8b",
	}
	openAIModels = []string{
		"gpt-4.1-mini",
		"gpt-4.1",
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-4",
		"gpt-3.5-turbo",
		"o1",
		"o3-mini",
		"o3",
	}
	anthropicModels = []string{
		"claude-sonnet-4-0",
		"claude-3-7-sonnet-latest",
		"claude-3-5-haiku-latest",
		"claude-opus-4-0",
	}
)

// aiExecutor — общий исполнитель AI узлов (GEMINI, OPENAI, ANTHROPIC).
//
// Конфигурация узла:
//
//	variableName — имя переменной результата в контексте (обязательно)
//	credentialId — credential с ключом API провайдера (обязательно)
//	userPrompt   — промпт пользователя, поддерживает шаблоны (обязательно)
//	systemPrompt — system-промпт, поддерживает шаблоны (опционально)
//	model        — модель провайдера (опционально, есть умолчание)
//
// Результат в контексте: { "<variableName>": { "text": "..." } }.
type aiExecutor struct {
	provider       string
	credentialType domain.CredentialType
	defaultModel   string
	models         []string
	generator      llm.TextGenerator
	credentials    CredentialStore
	secrets        secret.Decrypter
	logger         *slog.Logger
}

// Execute реализует NodeExecutor.
func (a *aiExecutor) Execute(ctx context.Context, req *Request) (engine.Context, error) {
	req.Status.Publish(ctx, req.NodeType, status.Event{NodeID: req.NodeID, Status: status.StatusLoading})

	result, err := a.execute(ctx, req)
	if err != nil {
		req.Status.Publish(ctx, req.NodeType, status.Event{NodeID: req.NodeID, Status: status.StatusError})
		return nil, err
	}

	req.Status.Publish(ctx, req.NodeType, status.Event{NodeID: req.NodeID, Status: status.StatusSuccess})
	return result, nil
}

func (a *aiExecutor) execute(ctx context.Context, req *Request) (engine.Context, error) {
	variableName, err := requireConfigString(req, "variableName")
	if err != nil {
		return nil, err
	}
	rawUserPrompt, err := requireConfigString(req, "userPrompt")
	if err != nil {
		return nil, err
	}
	credentialID, err := requireConfigString(req, "credentialId")
	if err != nil {
		return nil, err
	}
	credUUID, err := uuid.Parse(credentialID)
	if err != nil {
		return nil, &ConfigError{
			NodeID:  req.NodeID,
			Field:   "credentialId",
			Message: "is not a valid uuid",
		}
	}

	model := configString(req, "model")
	if model == "" {
		model = a.defaultModel
	} else if !a.modelSupported(model) {
		return nil, &ConfigError{
			NodeID:  req.NodeID,
			Field:   "model",
			Message: fmt.Sprintf("model %q is not supported by %s", model, a.provider),
		}
	}

	systemPrompt := defaultSystemPrompt
	if raw := configString(req, "systemPrompt"); raw != "" {
		systemPrompt, err = engine.Render(raw, req.Context)
		if err != nil {
			return nil, &ConfigError{
				NodeID:  req.NodeID,
				Field:   "systemPrompt",
				Message: err.Error(),
			}
		}
	}

	userPrompt, err := engine.Render(rawUserPrompt, req.Context)
	if err != nil {
		return nil, &ConfigError{
			NodeID:  req.NodeID,
			Field:   "userPrompt",
			Message: err.Error(),
		}
	}

	// Чтение credential — durable step: при повторе execution credential
	// воспроизводится из журнала, даже если его успели удалить.
	// Credential.Value скрыт от JSON API, поэтому в журнал пишется
	// отдельная форма с зашифрованным значением.
	credential, err := steps.RunAs[storedCredential](ctx, req.Steps, req.stepName("get-credential"), func(stepCtx context.Context) (any, error) {
		cred, err := a.credentials.GetByIDAndUser(stepCtx, credUUID, req.UserID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, &ConfigError{
				NodeID:  req.NodeID,
				Field:   "credentialId",
				Message: ErrCredentialNotFound.Error(),
			}
		}
		if err != nil {
			return nil, err
		}
		return storedCredential{ID: cred.ID, Type: cred.Type, Value: cred.Value}, nil
	})
	if err != nil {
		return nil, err
	}

	if credential.Type != a.credentialType {
		return nil, &ConfigError{
			NodeID:  req.NodeID,
			Field:   "credentialId",
			Message: fmt.Sprintf("credential type %s does not match node provider %s", credential.Type, a.provider),
		}
	}

	apiKey, err := a.secrets.Decrypt(credential.Value)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential %s: %w", credential.ID, err)
	}

	text, err := steps.RunAs[string](ctx, req.Steps, req.stepName(a.provider+"-generate-text"), func(stepCtx context.Context) (any, error) {
		return a.generator.GenerateText(stepCtx, llm.GenerateRequest{
			APIKey: apiKey,
			Model:  model,
			System: systemPrompt,
			Prompt: userPrompt,
		})
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("ai node completed",
		"node_id", req.NodeID,
		"provider", a.provider,
		"model", model,
	)

	return req.Context.With(variableName, map[string]any{"text": text}), nil
}

// storedCredential — форма credential в журнале durable steps.
// Значение остаётся зашифрованным.
type storedCredential struct {
	ID    uuid.UUID             `json:"id"`
	Type  domain.CredentialType `json:"type"`
	Value string                `json:"value"`
}

// modelSupported проверяет модель по списку провайдера.
func (a *aiExecutor) modelSupported(model string) bool {
	for _, m := range a.models {
		if m == model {
			return true
		}
	}
	return false
}
