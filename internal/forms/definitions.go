// Package forms - редакторы под-ресурсов профиля без привязки к HTTP.
package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"rep-admin/internal/entities"
)

// Record - запись под-ресурса. Defaults заполняет таблицу значений по умолчанию,
// поверх которой накладывается ответ бэкенда.
type Record interface {
	Defaults()
}

// Необязательные хуки записи.
type (
	normalizer interface{ Normalize() }
	presenter  interface{ Present() }
	stripper   interface{ Strip() }
	omitter    interface{ OmitFields() []string }
	bulkSetter interface{ SetAll(active bool) }
)

// Definition описывает один под-ресурс: какие поля только для чтения,
// какие файловые, как создать запись с умолчаниями.
type Definition struct {
	Kind       entities.Kind
	ReadOnly   []string
	FileFields []string

	newRecord func() Record
	fields    map[string]struct{}
}

func define[T any, PT interface {
	*T
	Record
}](kind entities.Kind, readOnly, fileFields []string) Definition {
	d := Definition{
		Kind:       kind,
		ReadOnly:   readOnly,
		FileFields: fileFields,
		newRecord: func() Record {
			rec := PT(new(T))
			rec.Defaults()
			return rec
		},
	}

	raw, err := json.Marshal(d.newRecord())
	if err != nil {
		panic(fmt.Sprintf("forms: %s: %v", kind, err))
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		panic(fmt.Sprintf("forms: %s: %v", kind, err))
	}
	d.fields = make(map[string]struct{}, len(keys))
	for k := range keys {
		d.fields[k] = struct{}{}
	}
	return d
}

var registry = map[entities.Kind]Definition{
	entities.KindPersonal: define[entities.User](entities.KindPersonal,
		[]string{"id", "rep_id", "work_phone_display"}, []string{"photo", "logo"}),
	entities.KindAccount:       define[entities.AccountSettings](entities.KindAccount, nil, nil),
	entities.KindSocials:       define[entities.Socials](entities.KindSocials, nil, nil),
	entities.KindCompliance:    define[entities.Compliance](entities.KindCompliance, nil, nil),
	entities.KindServices:      define[entities.ServiceSettings](entities.KindServices, nil, []string{"coming_home_file"}),
	entities.KindEmailSettings: define[entities.EmailSettings](entities.KindEmailSettings, nil, nil),
	entities.KindCallToAction:  define[entities.CallToAction](entities.KindCallToAction, nil, nil),
	entities.KindBranding: define[entities.Branding](entities.KindBranding,
		nil, []string{"company_logo", "photo", "logo", "qr_code"}),
}

func Lookup(kind entities.Kind) (Definition, bool) {
	d, ok := registry[kind]
	return d, ok
}

// New возвращает запись, заполненную только умолчаниями.
func (d Definition) New() Record {
	return d.newRecord()
}

// Decode накладывает JSON бэкенда на таблицу умолчаний.
// null и отсутствующие ключи оставляют значение по умолчанию.
func (d Definition) Decode(raw json.RawMessage) (Record, error) {
	rec := d.newRecord()
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("не удалось разобрать %s: %w", d.Kind, err)
		}
	}
	if n, ok := rec.(normalizer); ok {
		n.Normalize()
	}
	return rec, nil
}

func (d Definition) IsFileField(field string) bool {
	return slices.Contains(d.FileFields, field)
}

func (d Definition) isReadOnly(field string) bool {
	return slices.Contains(d.ReadOnly, field)
}

func (d Definition) hasField(field string) bool {
	_, ok := d.fields[field]
	return ok
}

// present готовит запись к показу (форматирование телефонов и т.п.).
func present(rec Record) {
	if p, ok := rec.(presenter); ok {
		p.Present()
	}
}
