// Package secret шифрует значения credentials перед записью в БД.
//
// Используется AES-256-GCM с ключом, выведенным из ENCRYPTION_KEY через
// SHA-256. Шифротекст хранится как base64(nonce || ciphertext).
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
)

// Ошибки шифрования.
var (
	// ErrMissingKey — ENCRYPTION_KEY не задан.
	ErrMissingKey = errors.New("encryption key is not configured")

	// ErrInvalidCiphertext — шифротекст повреждён или зашифрован
	// другим ключом.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// Decrypter расшифровывает сохранённые значения credentials.
type Decrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// Codec шифрует и расшифровывает строки одним симметричным ключом.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec создаёт Codec из парольной фразы.
func NewCodec(key string) (*Codec, error) {
	if key == "" {
		return nil, ErrMissingKey
	}

	derived := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(derived[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// FromEnv создаёт Codec из переменной окружения ENCRYPTION_KEY.
func FromEnv() (*Codec, error) {
	return NewCodec(os.Getenv("ENCRYPTION_KEY"))
}

// Encrypt шифрует plaintext и возвращает base64-строку.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt расшифровывает строку, полученную из Encrypt.
func (c *Codec) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}
