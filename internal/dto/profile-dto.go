package dto

import (
	"encoding/json"
	"io"

	"rep-admin/internal/entities"
)

const (
	CardStatusLoading = "loading"
	CardStatusReady   = "ready"
	CardStatusNoData  = "no_data"
	CardStatusError   = "error"
)

type FileRefDTO struct {
	Field      string `json:"field"`
	FileName   string `json:"file_name"`
	PreviewURL string `json:"preview_url"`
}

// CardDTO - состояние одной карточки профиля.
type CardDTO struct {
	Kind        entities.Kind     `json:"kind"`
	Status      string            `json:"status"`
	Message     string            `json:"message,omitempty"`
	Editing     bool              `json:"editing"`
	Submitting  bool              `json:"submitting"`
	CanEdit     bool              `json:"can_edit"`
	Data        json.RawMessage   `json:"data,omitempty"`
	Files       []FileRefDTO      `json:"files,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// ProfileEditDTO - состояние режима "Edit Profile" для всей страницы.
type ProfileEditDTO struct {
	Submitting  bool              `json:"submitting"`
	Data        json.RawMessage   `json:"data,omitempty"`
	Files       []FileRefDTO      `json:"files,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

type ProfileViewDTO struct {
	RepID       string          `json:"rep_id"`
	Monolithic  bool            `json:"monolithic"`
	ProfileEdit *ProfileEditDTO `json:"profile_edit,omitempty"`
	Cards       []CardDTO       `json:"cards"`
}

type SelectAllDTO struct {
	Active bool `json:"active"`
}

// UploadDTO - файл из multipart-запроса браузера.
type UploadDTO struct {
	FileName string
	Size     int64
	File     io.ReadSeeker
}
