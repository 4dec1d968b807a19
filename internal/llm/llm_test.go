package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIClient_GenerateText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody openAIRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "generated text"}},
			},
		})
	}))
	defer server.Close()

	client := &OpenAIClient{BaseURL: server.URL}
	text, err := client.GenerateText(context.Background(), GenerateRequest{
		APIKey: "sk-test",
		Model:  "gpt-4o",
		System: "You are a helpful assistant.",
		Prompt: "Say hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "generated text" {
		t.Errorf("unexpected text: %q", text)
	}

	// Проверяем протокол.
	if gotPath != "/v1/chat/completions" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", gotBody.Messages)
	}
	if gotBody.Model != "gpt-4o" {
		t.Errorf("unexpected model: %q", gotBody.Model)
	}
}

func TestOpenAIClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	client := &OpenAIClient{BaseURL: server.URL}
	_, err := client.GenerateText(context.Background(), GenerateRequest{APIKey: "bad", Model: "gpt-4o", Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("expected status in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}

func TestOpenAIClient_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := &OpenAIClient{BaseURL: server.URL}
	_, err := client.GenerateText(context.Background(), GenerateRequest{Model: "gpt-4o", Prompt: "hi"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestAnthropicClient_GenerateText(t *testing.T) {
	var gotAPIKey, gotVersion string
	var gotBody anthropicRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "claude says hi"},
			},
		})
	}))
	defer server.Close()

	client := &AnthropicClient{BaseURL: server.URL}
	text, err := client.GenerateText(context.Background(), GenerateRequest{
		APIKey: "sk-ant-test",
		Model:  "claude-3-7-sonnet-latest",
		System: "Be brief.",
		Prompt: "Say hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "claude says hi" {
		t.Errorf("unexpected text: %q", text)
	}

	// Аутентификация через x-api-key, system отдельным полем.
	if gotAPIKey != "sk-ant-test" {
		t.Errorf("unexpected x-api-key: %q", gotAPIKey)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("unexpected anthropic-version: %q", gotVersion)
	}
	if gotBody.System != "Be brief." {
		t.Errorf("unexpected system: %q", gotBody.System)
	}
	if gotBody.MaxTokens == 0 {
		t.Error("max_tokens must be set")
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" {
		t.Errorf("unexpected messages: %+v", gotBody.Messages)
	}
}

func TestAnthropicClient_SkipsNonTextBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "thinking", "text": ""},
				{"type": "text", "text": "actual answer"},
			},
		})
	}))
	defer server.Close()

	client := &AnthropicClient{BaseURL: server.URL}
	text, err := client.GenerateText(context.Background(), GenerateRequest{Model: "claude-3-7-sonnet-latest", Prompt: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "actual answer" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestGeminiClient_GenerateText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": "gemini says hi"}}}},
			},
		})
	}))
	defer server.Close()

	client := &GeminiClient{BaseURL: server.URL}
	text, err := client.GenerateText(context.Background(), GenerateRequest{
		APIKey: "gemini-key",
		Model:  "gemini-2.0-flash",
		System: "Be brief.",
		Prompt: "Say hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "gemini says hi" {
		t.Errorf("unexpected text: %q", text)
	}

	// Ключ передаётся query-параметром, модель — в пути.
	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if gotKey != "gemini-key" {
		t.Errorf("unexpected key: %q", gotKey)
	}
	if gotBody.SystemInstruction == nil || gotBody.SystemInstruction.Parts[0].Text != "Be brief." {
		t.Errorf("unexpected system instruction: %+v", gotBody.SystemInstruction)
	}
}

func TestGeminiClient_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	client := &GeminiClient{BaseURL: server.URL}
	_, err := client.GenerateText(context.Background(), GenerateRequest{Model: "gemini-2.0-flash", Prompt: "hi"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
