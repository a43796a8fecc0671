// pkg/filestorage/local_filestorage.go

package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublicPrefix - под этим URL каталог хранилища раздаётся как статика.
const PublicPrefix = "/uploads/"

type FileStorageInterface interface {
	Save(file io.Reader, originalFileName string, prefix string) (filePath string, err error)
	Open(filePath string) (io.ReadCloser, error)
	Delete(filePath string) error
}

type LocalFileStorage struct {
	basePath string
}

func NewLocalFileStorage(basePath string) (FileStorageInterface, error) {
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию: %w", err)
		}
	}
	return &LocalFileStorage{basePath: basePath}, nil
}

func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	ext := filepath.Ext(originalFileName)
	uniqueFileName := fmt.Sprintf("%s-%s%s", time.Now().Format("2006-01-02"), uuid.New().String(), ext)

	datePath := time.Now().Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)

	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, uniqueFileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join(prefix, datePath, uniqueFileName)), nil
}

func (s *LocalFileStorage) Open(filePath string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// Delete удаляет файл. Отсутствующий файл не считается ошибкой.
func (s *LocalFileStorage) Delete(filePath string) error {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(fullPath)
}

// resolve принимает как относительный путь, так и публичный URL ("/uploads/...").
func (s *LocalFileStorage) resolve(filePath string) (string, error) {
	relativePath := strings.TrimPrefix(filePath, PublicPrefix)
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(relativePath))

	base, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}
	if abs != base && !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		return "", fmt.Errorf("путь %q выходит за пределы хранилища", filePath)
	}
	return fullPath, nil
}
