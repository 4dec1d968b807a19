// Package llm содержит клиенты провайдеров генерации текста.
//
// Все клиенты ходят в HTTP API провайдеров напрямую и реализуют общий
// интерфейс TextGenerator: system-промпт, пользовательский промпт и
// модель на входе, текст на выходе. Ключ API передаётся в каждом
// запросе — он принадлежит credential пользователя, а не процессу.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrEmptyResponse — провайдер ответил без единого текстового блока.
var ErrEmptyResponse = errors.New("llm provider returned empty response")

// DefaultTimeout — таймаут одного запроса к провайдеру.
const DefaultTimeout = 120 * time.Second

// GenerateRequest — запрос на генерацию текста.
type GenerateRequest struct {
	// APIKey — ключ API провайдера.
	APIKey string

	// Model — идентификатор модели у провайдера.
	Model string

	// System — system-промпт.
	System string

	// Prompt — пользовательский промпт.
	Prompt string
}

// TextGenerator генерирует текст по промпту.
type TextGenerator interface {
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
}

// apiError строит ошибку из не-2xx ответа провайдера.
func apiError(provider string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s api: status %d: %s", provider, resp.StatusCode, string(body))
}

// newHTTPClient возвращает клиент с таймаутом по умолчанию.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}
