package status

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/shaiso/Flowgrid/internal/domain"
)

// ErrTokenInvalid — токен неизвестен, истёк или выписан на другой канал.
var ErrTokenInvalid = errors.New("subscription token invalid")

// DefaultTokenTTL — срок жизни подписочного токена.
const DefaultTokenTTL = 10 * time.Minute

// TokenIssuer выписывает короткоживущие токены на подписку к каналам
// статусов. Редактор запрашивает токен через API и предъявляет его
// при подключении к realtime-каналу.
type TokenIssuer struct {
	mu     sync.Mutex
	ttl    time.Duration
	tokens map[string]issuedToken
	now    func() time.Time
}

type issuedToken struct {
	channel   string
	expiresAt time.Time
}

// NewTokenIssuer создаёт TokenIssuer с заданным TTL.
// Нулевой ttl заменяется на DefaultTokenTTL.
func NewTokenIssuer(ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		ttl:    ttl,
		tokens: make(map[string]issuedToken),
		now:    time.Now,
	}
}

// Issue выписывает токен на канал статусов узлов данного типа.
func (i *TokenIssuer) Issue(nodeType domain.NodeType) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	i.mu.Lock()
	defer i.mu.Unlock()

	i.evictExpired()
	i.tokens[token] = issuedToken{
		channel:   Channel(nodeType),
		expiresAt: i.now().Add(i.ttl),
	}
	return token, nil
}

// Validate проверяет токен и возвращает канал, на который он выписан.
func (i *TokenIssuer) Validate(token string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	issued, ok := i.tokens[token]
	if !ok || i.now().After(issued.expiresAt) {
		delete(i.tokens, token)
		return "", ErrTokenInvalid
	}
	return issued.channel, nil
}

// evictExpired удаляет истёкшие токены. Вызывается под mu.
func (i *TokenIssuer) evictExpired() {
	now := i.now()
	for token, issued := range i.tokens {
		if now.After(issued.expiresAt) {
			delete(i.tokens, token)
		}
	}
}
