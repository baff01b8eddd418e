package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient_MissingKey(t *testing.T) {
	if _, err := NewClient("", ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := NewClient("   ", ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey for blank key, got %v", err)
	}
}

func TestChatOnce_Success(t *testing.T) {
	var seenAuth, seenPath string
	var seenBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		seenPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&seenBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Привет, юнга!"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient("or-key", server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	messages := []Message{
		{Role: "system", Content: "Ты — пират."},
		{Role: "user", Content: "Привет"},
	}
	text, latency, err := client.ChatOnce(context.Background(), messages, "model/x", 0.7, 1000)
	if err != nil {
		t.Fatalf("chat once: %v", err)
	}
	if text != "Привет, юнга!" {
		t.Fatalf("unexpected reply %q", text)
	}
	if latency < 0 {
		t.Fatalf("latency must be non-negative, got %d", latency)
	}

	if seenAuth != "Bearer or-key" {
		t.Fatalf("expected bearer auth, got %q", seenAuth)
	}
	if seenPath != "/chat/completions" {
		t.Fatalf("expected /chat/completions path, got %q", seenPath)
	}
	if got := seenBody["model"]; got != "model/x" {
		t.Fatalf("expected model model/x, got %v", got)
	}
	if got := seenBody["temperature"]; got != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", got)
	}
	if got := seenBody["max_tokens"]; got != float64(1000) {
		t.Fatalf("expected max_tokens 1000, got %v", got)
	}
	msgs, ok := seenBody["messages"].([]interface{})
	if !ok || len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %v", seenBody["messages"])
	}
}

func TestChatOnce_StatusTable(t *testing.T) {
	cases := []struct {
		status  int
		message string
	}{
		{400, "Неверный формат запроса."},
		{401, "Ключ OpenRouter отклонён. Проверьте OPENROUTER_API_KEY."},
		{403, "Нет прав доступа к модели."},
		{404, "Эндпоинт не найден. Проверьте URL /api/v1/chat/completions."},
		{405, "Превышен лимит бесплатной модели. Попробуйте позднее."},
		{500, "Внутренняя ошибка сервера OpenRouter. Попробуйте позже."},
		{502, "Плохой шлюз. Сервер OpenRouter временно недоступен."},
		{503, "Сервис OpenRouter временно недоступен. Попробуйте позже."},
		{504, "Таймаут шлюза. Сервер OpenRouter не ответил вовремя."},
		{418, "Сервис недоступен. Повторите попытку позже."},
		{429, "Сервис недоступен. Повторите попытку позже."},
	}

	for _, tc := range cases {
		status := tc.status
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client, err := NewClient("or-key", server.URL)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		_, _, err = client.ChatOnce(context.Background(), []Message{{Role: "user", Content: "hi"}}, "m", 0.7, 100)
		server.Close()

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected APIError, got %v", status, err)
		}
		if apiErr.Status != status {
			t.Fatalf("status %d: got status %d", status, apiErr.Status)
		}
		if apiErr.Message != tc.message {
			t.Fatalf("status %d: got message %q, want %q", status, apiErr.Message, tc.message)
		}
	}
}

func TestChatOnce_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient("or-key", server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.httpClient.Timeout = 50 * time.Millisecond

	_, _, err = client.ChatOnce(context.Background(), []Message{{Role: "user", Content: "hi"}}, "m", 0.7, 100)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 504 {
		t.Fatalf("expected status 504 for timeout, got %d", apiErr.Status)
	}
	if apiErr.Message != "Таймаут запроса к OpenRouter" {
		t.Fatalf("unexpected timeout message %q", apiErr.Message)
	}
}

func TestChatOnce_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens here any more

	client, err := NewClient("or-key", server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, _, err = client.ChatOnce(context.Background(), []Message{{Role: "user", Content: "hi"}}, "m", 0.7, 100)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 503 {
		t.Fatalf("expected status 503 for connection failure, got %d", apiErr.Status)
	}
	if apiErr.Message != "Ошибка соединения с OpenRouter" {
		t.Fatalf("unexpected connection message %q", apiErr.Message)
	}
}

func TestChatOnce_EmptyChoices(t *testing.T) {
	bodies := []string{`{"choices":[]}`, `{"id":"x"}`}
	for _, body := range bodies {
		payload := body
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(payload))
		}))

		client, err := NewClient("or-key", server.URL)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		_, _, err = client.ChatOnce(context.Background(), []Message{{Role: "user", Content: "hi"}}, "m", 0.7, 100)
		server.Close()

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("body %q: expected APIError, got %v", payload, err)
		}
		if apiErr.Status != 500 {
			t.Fatalf("body %q: expected status 500, got %d", payload, apiErr.Status)
		}
		if apiErr.Message != "Пустой ответ от модели" {
			t.Fatalf("body %q: unexpected message %q", payload, apiErr.Message)
		}
	}
}

func TestChatOnce_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client, err := NewClient("or-key", server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, _, err = client.ChatOnce(context.Background(), []Message{{Role: "user", Content: "hi"}}, "m", 0.7, 100)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 500 {
		t.Fatalf("expected status 500 for malformed body, got %d", apiErr.Status)
	}
}
