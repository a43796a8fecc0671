package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"rep-admin/internal/dto"
	"rep-admin/internal/entities"
	apperrors "rep-admin/pkg/errors"
)

// FileRef - выбранный, но ещё не отправленный файл (превью лежит во временном хранилище).
type FileRef struct {
	Handle     string `json:"handle"`
	Path       string `json:"path"`
	FileName   string `json:"file_name"`
	PreviewURL string `json:"preview_url"`
}

// State - сериализуемое состояние редактора одной карточки.
// Fetched - последнее полученное с бэкенда значение (уже наложенное на умолчания),
// Draft - то, что сейчас в форме.
type State struct {
	Kind        entities.Kind      `json:"kind"`
	Loaded      bool               `json:"loaded"`
	LoadError   string             `json:"load_error,omitempty"`
	Fetched     json.RawMessage    `json:"fetched,omitempty"`
	Draft       json.RawMessage    `json:"draft,omitempty"`
	Editing     bool               `json:"editing"`
	Submitting  bool               `json:"submitting"`
	Files       map[string]FileRef `json:"files,omitempty"`
	FieldErrors map[string]string  `json:"field_errors,omitempty"`
}

// Validator - проверка записи; возвращает ошибки по json-именам полей.
type Validator interface {
	FieldErrors(i interface{}) apperrors.FieldErrors
}

type Editor struct {
	def       Definition
	state     *State
	validator Validator
}

func NewEditor(def Definition, state *State, validator Validator) *Editor {
	if state.Kind == "" {
		state.Kind = def.Kind
	}
	return &Editor{def: def, state: state, validator: validator}
}

func (e *Editor) State() *State { return e.state }

// HasData - есть что показать и что редактировать.
func (e *Editor) HasData() bool {
	return e.state.Loaded && len(e.state.Fetched) > 0
}

// Load принимает свежий ответ бэкенда. nil означает "данных нет".
// Вне режима редактирования форма сразу сбрасывается к новому значению.
func (e *Editor) Load(raw json.RawMessage) error {
	e.state.LoadError = ""
	e.state.Loaded = true

	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		e.state.Fetched = nil
		if !e.state.Editing {
			e.state.Draft = nil
		}
		return nil
	}

	rec, err := e.def.Decode(raw)
	if err != nil {
		return err
	}
	present(rec)
	fetched, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	e.state.Fetched = fetched
	if !e.state.Editing {
		e.state.Draft = fetched
	}
	return nil
}

// Fail фиксирует ошибку загрузки. Последнее удачное значение остаётся.
func (e *Editor) Fail(err error) {
	e.state.LoadError = err.Error()
}

func (e *Editor) BeginEdit() error {
	if !e.HasData() {
		return apperrors.ErrCardNotLoaded
	}
	if e.state.Editing {
		return nil
	}
	e.state.Editing = true
	e.state.Draft = append(json.RawMessage(nil), e.state.Fetched...)
	e.state.FieldErrors = nil
	return nil
}

func (e *Editor) ensureEditable() error {
	if !e.state.Editing {
		return apperrors.ErrCardNotEditing
	}
	if e.state.Submitting {
		return apperrors.ErrActionInProgress
	}
	return nil
}

// Apply накладывает изменения полей на черновик. Поля только для чтения
// и файловые поля игнорируются, неизвестные поля отклоняются.
func (e *Editor) Apply(patch json.RawMessage) error {
	if err := e.ensureEditable(); err != nil {
		return err
	}

	var changes map[string]json.RawMessage
	if err := json.Unmarshal(patch, &changes); err != nil {
		return apperrors.NewBadRequestError("Draft changes must be a JSON object.")
	}

	for field := range changes {
		if !e.def.hasField(field) {
			return fmt.Errorf("%w: %s", apperrors.ErrUnknownField, field)
		}
		if e.def.isReadOnly(field) || e.def.IsFileField(field) {
			delete(changes, field)
		}
	}

	rec, err := e.def.Decode(e.state.Draft)
	if err != nil {
		return err
	}
	filtered, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(filtered, rec); err != nil {
		return apperrors.NewBadRequestError(fmt.Sprintf("Invalid field value: %v", err))
	}
	if n, ok := rec.(normalizer); ok {
		n.Normalize()
	}

	if err := e.saveDraft(rec); err != nil {
		return err
	}
	for field := range changes {
		delete(e.state.FieldErrors, field)
	}
	return nil
}

// SetAll - массовое включение/выключение (только для записей, которые это умеют).
func (e *Editor) SetAll(active bool) error {
	if err := e.ensureEditable(); err != nil {
		return err
	}
	rec, err := e.def.Decode(e.state.Draft)
	if err != nil {
		return err
	}
	setter, ok := rec.(bulkSetter)
	if !ok {
		return fmt.Errorf("%w: select-all is not supported by %s", apperrors.ErrUnknownField, e.def.Kind)
	}
	setter.SetAll(active)
	e.state.FieldErrors = nil
	return e.saveDraft(rec)
}

// AttachFile запоминает выбранный файл. Возвращает вытесненный файл,
// который вызывающий обязан освободить.
func (e *Editor) AttachFile(field string, ref FileRef) (*FileRef, error) {
	if err := e.ensureEditable(); err != nil {
		return nil, err
	}
	if !e.def.IsFileField(field) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownField, field)
	}
	if e.state.Files == nil {
		e.state.Files = make(map[string]FileRef)
	}
	var superseded *FileRef
	if old, ok := e.state.Files[field]; ok {
		superseded = &old
	}
	e.state.Files[field] = ref
	delete(e.state.FieldErrors, field)
	return superseded, nil
}

// ClearFile отменяет выбор файла; сохранённый на бэкенде файл не трогается.
func (e *Editor) ClearFile(field string) (*FileRef, error) {
	if err := e.ensureEditable(); err != nil {
		return nil, err
	}
	if !e.def.IsFileField(field) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownField, field)
	}
	old, ok := e.state.Files[field]
	if !ok {
		return nil, nil
	}
	delete(e.state.Files, field)
	return &old, nil
}

// Cancel выходит из редактирования и возвращает форму к последнему
// полученному значению. Возвращает файлы, которые надо освободить.
func (e *Editor) Cancel() []FileRef {
	released := e.takeFiles()
	e.state.Editing = false
	e.state.Submitting = false
	e.state.Draft = e.state.Fetched
	e.state.FieldErrors = nil
	return released
}

// Prepare проверяет черновик и собирает тело запроса. При ошибках валидации
// запрос не собирается, ошибки остаются на полях. После успешного Prepare
// редактор считается отправляющим до вызова Complete.
func (e *Editor) Prepare() (dto.Payload, error) {
	if err := e.ensureEditable(); err != nil {
		return dto.Payload{}, err
	}

	rec, err := e.def.Decode(e.state.Draft)
	if err != nil {
		return dto.Payload{}, err
	}

	if e.validator != nil {
		if fields := e.validator.FieldErrors(rec); len(fields) > 0 {
			e.state.FieldErrors = fields.First()
			return dto.Payload{}, apperrors.NewClientValidationError(fields)
		}
	}

	if s, ok := rec.(stripper); ok {
		s.Strip()
	}

	payload, err := e.buildPayload(rec)
	if err != nil {
		return dto.Payload{}, err
	}

	e.state.Submitting = true
	e.state.FieldErrors = nil
	return payload, nil
}

// ResetSubmitting снимает флаг отправки, оставшийся от прерванной попытки.
// Вызывается только тем, кто держит блокировку отправки этой карточки.
func (e *Editor) ResetSubmitting() {
	e.state.Submitting = false
}

// Complete завершает отправку. При успехе редактор выходит из режима
// редактирования и отдаёт файлы на освобождение; при ошибках бэкенда по полям
// первые сообщения прикрепляются к полям, режим редактирования остаётся.
func (e *Editor) Complete(err error) []FileRef {
	e.state.Submitting = false
	if err == nil {
		e.state.Editing = false
		e.state.FieldErrors = nil
		return e.takeFiles()
	}

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		e.state.FieldErrors = validationErr.Fields.First()
	}
	return nil
}

// Submit - Prepare, один вызов mutate и Complete. Ошибка mutate возвращается как есть.
func (e *Editor) Submit(ctx context.Context, mutate func(ctx context.Context, payload dto.Payload) error) ([]FileRef, error) {
	payload, err := e.Prepare()
	if err != nil {
		return nil, err
	}
	err = mutate(ctx, payload)
	released := e.Complete(err)
	return released, err
}

// Display - то, что показывается в карточке: черновик в режиме редактирования,
// иначе последнее полученное значение.
func (e *Editor) Display() json.RawMessage {
	if e.state.Editing {
		return e.state.Draft
	}
	return e.state.Fetched
}

// Files - выбранные файлы в стабильном порядке.
func (e *Editor) Files() []dto.FileRefDTO {
	if len(e.state.Files) == 0 {
		return nil
	}
	out := make([]dto.FileRefDTO, 0, len(e.state.Files))
	for field, ref := range e.state.Files {
		out = append(out, dto.FileRefDTO{Field: field, FileName: ref.FileName, PreviewURL: ref.PreviewURL})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func (e *Editor) saveDraft(rec Record) error {
	draft, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	e.state.Draft = draft
	return nil
}

func (e *Editor) takeFiles() []FileRef {
	if len(e.state.Files) == 0 {
		e.state.Files = nil
		return nil
	}
	released := make([]FileRef, 0, len(e.state.Files))
	for _, ref := range e.state.Files {
		released = append(released, ref)
	}
	e.state.Files = nil
	return released
}
