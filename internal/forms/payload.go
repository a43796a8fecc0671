package forms

import (
	"bytes"
	"encoding/json"
	"sort"

	"rep-admin/internal/dto"
)

// buildPayload превращает запись в тело запроса. В тело не попадают:
// поля только для чтения, файловые поля без нового файла, пустые значения (null),
// поля, которые запись просит опустить (например, пустой пароль).
// null отправляется, только если оператор очистил поле, у которого было значение.
func (e *Editor) buildPayload(rec Record) (dto.Payload, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return dto.Payload{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return dto.Payload{}, err
	}

	for _, f := range e.def.ReadOnly {
		delete(fields, f)
	}
	for _, f := range e.def.FileFields {
		delete(fields, f)
	}
	if o, ok := rec.(omitter); ok {
		for _, f := range o.OmitFields() {
			delete(fields, f)
		}
	}
	cleared := e.clearedFields()
	for k, v := range fields {
		if v == nil && !cleared[k] {
			delete(fields, k)
		}
	}

	payload := dto.Payload{Fields: fields}
	for field, ref := range e.state.Files {
		payload.Files = append(payload.Files, dto.FilePart{Field: field, FileName: ref.FileName, Path: ref.Path})
	}
	sort.Slice(payload.Files, func(i, j int) bool { return payload.Files[i].Field < payload.Files[j].Field })
	return payload, nil
}

// clearedFields - поля, которые в последнем полученном значении были заполнены.
func (e *Editor) clearedFields() map[string]bool {
	if len(e.state.Fetched) == 0 {
		return nil
	}
	var fetched map[string]json.RawMessage
	if err := json.Unmarshal(e.state.Fetched, &fetched); err != nil {
		return nil
	}
	set := make(map[string]bool, len(fetched))
	for k, v := range fetched {
		if !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			set[k] = true
		}
	}
	return set
}
