package domain

import (
	"time"

	"github.com/google/uuid"
)

// CredentialType — провайдер, которому принадлежит секрет.
type CredentialType string

const (
	CredentialTypeGemini    CredentialType = "GEMINI"
	CredentialTypeOpenAI    CredentialType = "OPENAI"
	CredentialTypeAnthropic CredentialType = "ANTHROPIC"
)

// Credential — секрет пользователя (API ключ провайдера).
//
// Value хранится только в зашифрованном виде. Расшифровка происходит
// непосредственно перед вызовом провайдера; открытый текст никогда
// не сохраняется и не попадает в контекст выполнения.
type Credential struct {
	// ID — уникальный идентификатор credential.
	ID uuid.UUID `json:"id"`

	// UserID — владелец. Credential доступен только своему владельцу.
	UserID uuid.UUID `json:"user_id"`

	// Type — провайдер секрета.
	Type CredentialType `json:"type"`

	// Name — имя, заданное пользователем.
	Name string `json:"name"`

	// Value — зашифрованное значение секрета.
	Value string `json:"-"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}
