// controllers/upload_controller.go

package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"rep-admin/internal/dto"
	apperrors "rep-admin/pkg/errors"
)

// readUpload достаёт файл из multipart-поля "file". Вызывающий закрывает файл.
func readUpload(c echo.Context) (dto.UploadDTO, multipart.File, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return dto.UploadDTO{}, nil, apperrors.NewHttpError(
			http.StatusBadRequest,
			"No file was submitted.",
			apperrors.ErrBadRequest,
			nil,
		)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return dto.UploadDTO{}, nil, apperrors.NewHttpError(
			http.StatusInternalServerError,
			"Failed to process the file.",
			err,
			map[string]interface{}{"file": fileHeader.Filename},
		)
	}

	return dto.UploadDTO{
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		File:     src,
	}, src, nil
}
