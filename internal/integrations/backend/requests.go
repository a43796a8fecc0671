package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"rep-admin/internal/dto"
	"rep-admin/internal/integrations"
	apperrors "rep-admin/pkg/errors"
	"rep-admin/pkg/utils"
)

// do выполняет запрос. Контекст запроса отвязан от отмены: начатая запись
// доходит до бэкенда, даже если браузер ушёл со страницы.
func (p *Provider) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (int, json.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, p.baseURL+endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("ошибка создания %s-запроса: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if session, err := utils.GetSessionFromCtx(ctx); err == nil && session.UpstreamToken != "" {
		req.Header.Set("Authorization", "Token "+session.UpstreamToken)
	}
	if requestID := utils.GetRequestIDFromCtx(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("Бэкенд недоступен",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return 0, nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrUpstream, method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: чтение ответа %s: %v", apperrors.ErrUpstream, endpoint, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		p.logger.Warn("Бэкенд вернул ошибку",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return resp.StatusCode, nil, integrations.NewAPIError(resp.StatusCode, raw)
	}

	return resp.StatusCode, bytes.TrimSpace(raw), nil
}

func (p *Provider) getJSON(ctx context.Context, endpoint string) (json.RawMessage, error) {
	_, raw, err := p.do(ctx, http.MethodGet, endpoint, nil, "")
	return raw, err
}

func (p *Provider) sendJSON(ctx context.Context, method, endpoint string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации тела запроса: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	_, raw, err := p.do(ctx, method, endpoint, reader, "application/json")
	return raw, err
}

// sendPayload отправляет JSON, а при выбранных файлах - multipart/form-data.
func (p *Provider) sendPayload(ctx context.Context, method, endpoint string, payload dto.Payload) (json.RawMessage, error) {
	if !payload.IsMultipart() {
		return p.sendJSON(ctx, method, endpoint, payload.Fields)
	}

	body, contentType, err := encodeMultipart(payload)
	if err != nil {
		return nil, err
	}
	_, raw, err := p.do(ctx, method, endpoint, body, contentType)
	return raw, err
}

func encodeMultipart(payload dto.Payload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(payload.Fields))
	for k := range payload.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		value, err := formValue(payload.Fields[k])
		if err != nil {
			return nil, "", fmt.Errorf("поле %s: %w", k, err)
		}
		if err := w.WriteField(k, value); err != nil {
			return nil, "", err
		}
	}

	for _, file := range payload.Files {
		if file.Open == nil {
			return nil, "", fmt.Errorf("файл для поля %s не привязан к хранилищу", file.Field)
		}
		if err := copyFilePart(w, file); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func copyFilePart(w *multipart.Writer, file dto.FilePart) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("не удалось открыть файл %s: %w", file.FileName, err)
	}
	defer src.Close()

	part, err := w.CreateFormFile(file.Field, file.FileName)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}

// formValue - строковое представление значения для части формы.
// Вложенные структуры уходят JSON-строкой.
func formValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case nil:
		return "", nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
