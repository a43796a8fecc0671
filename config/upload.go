package config

type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
	PathPrefix       string
}

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"}

// UploadContexts - правила для каждого файлового поля карточек.
var UploadContexts = map[string]UploadConfig{
	"photo": {
		AllowedMimeTypes: imageTypes,
		MaxSizeMB:        10,
		PathPrefix:       "previews/photo",
	},
	"logo": {
		AllowedMimeTypes: imageTypes,
		MaxSizeMB:        10,
		PathPrefix:       "previews/logo",
	},
	"company_logo": {
		AllowedMimeTypes: imageTypes,
		MaxSizeMB:        10,
		PathPrefix:       "previews/company_logo",
	},
	"qr_code": {
		AllowedMimeTypes: []string{"image/png", "image/jpeg", "image/svg+xml"},
		MaxSizeMB:        2,
		PathPrefix:       "previews/qr_code",
	},
	"coming_home_file": {
		AllowedMimeTypes: []string{"text/html; charset=utf-8"},
		MaxSizeMB:        5,
		PathPrefix:       "previews/coming_home",
	},
}
