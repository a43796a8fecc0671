package integrations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "rep-admin/pkg/errors"
)

// APIError - ответ бэкенда с кодом 4xx/5xx.
// Data заполнен, только если тело - JSON-объект; Keys хранит порядок его ключей.
type APIError struct {
	StatusCode int
	Data       map[string]interface{}
	Keys       []string
	Raw        string
}

func NewAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Raw: string(body)}
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err == nil && data != nil {
		apiErr.Data = data
		apiErr.Keys = topLevelKeys(body)
	}
	return apiErr
}

func (e *APIError) Error() string {
	if msg := e.Message(""); msg != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// FieldErrors - ошибки по полям (поле -> список сообщений). "message" и "detail"
// полями не считаются.
func (e *APIError) FieldErrors() apperrors.FieldErrors {
	if e.Data == nil {
		return nil
	}
	fields := make(apperrors.FieldErrors)
	for _, key := range e.Keys {
		if key == "message" || key == "detail" {
			continue
		}
		if msgs := stringList(e.Data[key]); len(msgs) > 0 {
			fields[key] = msgs
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Message выбирает самое конкретное сообщение: ошибка расписания, message,
// detail, первое сообщение любого поля, иначе fallback.
func (e *APIError) Message(fallback string) string {
	if e.Data == nil {
		return fallback
	}
	if msgs := stringList(e.Data["schedule"]); len(msgs) > 0 {
		return msgs[0]
	}
	if msg, ok := e.Data["message"].(string); ok && msg != "" {
		return msg
	}
	if msg, ok := e.Data["detail"].(string); ok && msg != "" {
		return msg
	}
	for _, key := range e.Keys {
		if msgs := stringList(e.Data[key]); len(msgs) > 0 {
			return msgs[0]
		}
	}
	return fallback
}

// ToAppError переводит ошибку вызова бэкенда в ошибку для ответа клиенту.
// Ошибки по полям (любой 4xx) становятся ValidationError, остальное - HttpError с сообщением.
func ToAppError(err error, fallback string) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, apperrors.ErrUpstream) {
			return apperrors.NewHttpError(http.StatusBadGateway, fallback, err, nil)
		}
		return err
	}

	if apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
		if fields := apiErr.FieldErrors(); len(fields) > 0 {
			return apperrors.NewServerValidationError(fields)
		}
	}

	code := apiErr.StatusCode
	if code < http.StatusBadRequest || code >= http.StatusInternalServerError {
		code = http.StatusBadGateway
	}
	return apperrors.NewHttpError(code, apiErr.Message(fallback), err, nil)
}

// stringList понимает и список строк, и одиночную строку.
func stringList(v interface{}) []string {
	switch val := v.(type) {
	case string:
		if val != "" {
			return []string{val}
		}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// topLevelKeys возвращает ключи JSON-объекта в порядке следования.
func topLevelKeys(body []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}

// UserMessage - текст ошибки для показа рядом с карточкой или строкой списка.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}

// ToActionError - ошибка действия из списка или диалога: одно сообщение по
// приоритету Message, ошибки полей уходят в Details.
func ToActionError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return ToAppError(err, fallback)
	}

	code := apiErr.StatusCode
	if code < http.StatusBadRequest || code >= http.StatusInternalServerError {
		code = http.StatusBadGateway
	}
	httpErr := apperrors.NewHttpError(code, apiErr.Message(fallback), err, nil)
	if fields := apiErr.FieldErrors(); len(fields) > 0 {
		httpErr.Details = map[string]interface{}{"field_errors": fields.First()}
	}
	return httpErr
}
