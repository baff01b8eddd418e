package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://openrouter.ai/api/v1"
	requestTimeout = 30 * time.Second
)

// ErrMissingAPIKey is returned by NewClient when no credential is
// configured. Callers treat it as "chat unavailable", not a crash.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY is not set")

// APIError is the single error type every failure of the upstream
// exchange collapses into: HTTP error statuses, timeouts, connection
// failures, malformed success bodies.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// friendlyStatus maps an upstream HTTP status to the user-facing text.
func friendlyStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Неверный формат запроса."
	case http.StatusUnauthorized:
		return "Ключ OpenRouter отклонён. Проверьте OPENROUTER_API_KEY."
	case http.StatusForbidden:
		return "Нет прав доступа к модели."
	case http.StatusNotFound:
		return "Эндпоинт не найден. Проверьте URL /api/v1/chat/completions."
	case http.StatusMethodNotAllowed:
		return "Превышен лимит бесплатной модели. Попробуйте позднее."
	case http.StatusInternalServerError:
		return "Внутренняя ошибка сервера OpenRouter. Попробуйте позже."
	case http.StatusBadGateway:
		return "Плохой шлюз. Сервер OpenRouter временно недоступен."
	case http.StatusServiceUnavailable:
		return "Сервис OpenRouter временно недоступен. Попробуйте позже."
	case http.StatusGatewayTimeout:
		return "Таймаут шлюза. Сервер OpenRouter не ответил вовремя."
	default:
		return "Сервис недоступен. Повторите попытку позже."
	}
}

// Client performs one-shot synchronous exchanges with the OpenRouter
// chat-completions endpoint. No retry, no streaming, no session state.
type Client struct {
	apiKey     string
	apiBase    string
	httpClient *http.Client
}

// NewClient fails fast with ErrMissingAPIKey when the credential is
// absent. An empty apiBase falls back to the public endpoint.
func NewClient(apiKey, apiBase string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	apiBase = strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Client{
		apiKey:     apiKey,
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

// ChatOnce sends one completion request and returns the first choice's
// content verbatim plus the wall-clock latency of the exchange in whole
// milliseconds. Every failure is an *APIError.
func (c *Client) ChatOnce(ctx context.Context, messages []Message, model string, temperature float64, maxTokens int) (string, int64, error) {
	payload := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", 0, &APIError{Status: 500, Message: "Неизвестная ошибка: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", 0, &APIError{Status: 500, Message: "Неизвестная ошибка: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return "", 0, classifyTransportError(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", 0, &APIError{Status: resp.StatusCode, Message: friendlyStatus(resp.StatusCode)}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, &APIError{Status: 500, Message: "Неизвестная ошибка: " + err.Error()}
	}
	if len(parsed.Choices) == 0 {
		return "", 0, &APIError{Status: 500, Message: "Пустой ответ от модели"}
	}

	return parsed.Choices[0].Message.Content, latency, nil
}

func classifyTransportError(err error) *APIError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{Status: http.StatusGatewayTimeout, Message: "Таймаут запроса к OpenRouter"}
	}
	return &APIError{Status: http.StatusServiceUnavailable, Message: "Ошибка соединения с OpenRouter"}
}
