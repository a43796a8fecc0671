package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rep-admin/internal/integrations"
)

// Provider - клиент REST-бэкенда. Токен оператора берётся из сессии в контексте.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	logger     *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) integrations.Backend {
	return &Provider{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		timeout:    timeout,
		logger:     logger.Named("backend_provider"),
	}
}

func (p *Provider) Name() string {
	return "backend"
}

// decodeInto разбирает тело ответа в T. Пустое тело даёт nil.
func decodeInto[T any](p *Provider, endpoint string, raw json.RawMessage) (*T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		p.logger.Warn("Не удалось разобрать ответ бэкенда", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("ошибка парсинга JSON для эндпоинта %s: %w", endpoint, err)
	}
	return &out, nil
}

// decodeList понимает и голый массив, и объект с полем results.
func decodeList[T any](p *Provider, endpoint string, raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("ошибка парсинга списка для эндпоинта %s: %w", endpoint, err)
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	p.logger.Debug("Успешно получено и распарсено",
		zap.String("endpoint", endpoint),
		zap.Int("count", len(page.Results)),
	)
	return page.Results, nil
}

// messageOf достаёт поле message из ответа на действие.
func messageOf(raw json.RawMessage) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &body) != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Detail
}
