package validation

import (
	"fmt"
	"io"
	"net/http"
	"slices"

	"rep-admin/config"
)

// ValidateFile проверяет размер и MIME-тип загружаемого файла.
// contextName - ключ из config.UploadContexts (например, "photo", "coming_home_file").
func ValidateFile(size int64, file io.ReadSeeker, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("unknown upload field '%s'", contextName)
	}

	if rules.MaxSizeMB > 0 {
		maxSizeBytes := rules.MaxSizeMB * 1024 * 1024
		if size > maxSizeBytes {
			return fmt.Errorf("file is too large (%.2f MB), the limit is %d MB", float64(size)/1024/1024, rules.MaxSizeMB)
		}
	}

	// Читаем заголовок файла (первые 512 байт)
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("could not read the file")
	}
	buffer = buffer[:n]

	// Возвращаем курсор чтения в начало
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("could not process the file")
	}

	mimeType := http.DetectContentType(buffer)
	if isPossibleXml(mimeType) && isSvgSignature(buffer) {
		mimeType = "image/svg+xml"
	}

	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return fmt.Errorf("file type %s is not allowed", mimeType)
	}

	return nil
}

func isPossibleXml(mime string) bool {
	return mime == "text/plain; charset=utf-8" ||
		mime == "text/xml; charset=utf-8" ||
		mime == "application/octet-stream"
}

func isSvgSignature(buf []byte) bool {
	return len(buf) > 5 && (string(buf[:4]) == "<svg" || string(buf[:5]) == "<?xml")
}
