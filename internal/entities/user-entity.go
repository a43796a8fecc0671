// Файл: internal/entities/user-entity.go
package entities

import "rep-admin/pkg/utils"

const (
	IndustryMortgage       = "Mortgage"
	IndustryRealEstate     = "Real Estate"
	IndustryTitleInsurance = "Title Insurance"
	IndustryOthers         = "Others"
)

// User - основная запись представителя (карточка "personal").
// Photo и Logo на чтении содержат URL сохранённого файла.
type User struct {
	ID               uint64 `json:"id"`
	RepID            string `json:"rep_id"`
	FirstName        string `json:"first_name" validate:"required,max=150"`
	LastName         string `json:"last_name" validate:"required,max=150"`
	Email            string `json:"email" validate:"required,email"`
	Cellphone        string `json:"cellphone" validate:"us_phone"`
	WorkPhone        string `json:"work_phone" validate:"us_phone"`
	WorkPhoneExt     string `json:"work_phone_ext" validate:"omitempty,numeric,max=6"`
	WorkPhoneDisplay string `json:"work_phone_display"`
	Address          string `json:"address" validate:"max=255"`
	City             string `json:"city" validate:"max=100"`
	State            string `json:"state" validate:"max=50"`
	ZipCode          string `json:"zip_code" validate:"max=20"`
	Company          string `json:"company" validate:"max=255"`
	LicenseNumber    string `json:"license_number" validate:"max=100"`
	NmlsNumber       string `json:"nmls_number" validate:"max=100"`
	IndustryType     string `json:"industry_type" validate:"industry_type"`
	IsActive         bool   `json:"is_active"`
	IsStaff          bool   `json:"is_staff"`
	IsSuperuser      bool   `json:"is_superuser"`
	Photo            string `json:"photo"`
	Logo             string `json:"logo"`
	Disclaimer       string `json:"disclaimer"`
}

func (u *User) Defaults() {
	u.IsActive = true
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Present форматирует телефоны для показа и редактирования.
func (u *User) Present() {
	u.Cellphone = utils.FormatPhone(u.Cellphone, "")
	u.WorkPhone = utils.FormatPhone(u.WorkPhone, "")
	u.WorkPhoneDisplay = utils.FormatPhone(u.WorkPhone, u.WorkPhoneExt)
}

// Strip приводит телефоны к виду, в котором их хранит бэкенд.
func (u *User) Strip() {
	u.Cellphone = utils.NormalizePhone(u.Cellphone)
	u.WorkPhone = utils.NormalizePhone(u.WorkPhone)
}

// NewUser - форма регистрации нового представителя.
type NewUser struct {
	RepID        string `json:"rep_id" validate:"required,max=64"`
	FirstName    string `json:"first_name" validate:"required,max=150"`
	LastName     string `json:"last_name" validate:"required,max=150"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Cellphone    string `json:"cellphone" validate:"required,us_phone"`
	WorkPhone    string `json:"work_phone" validate:"us_phone"`
	WorkPhoneExt string `json:"work_phone_ext" validate:"omitempty,numeric,max=6"`
	Company      string `json:"company" validate:"max=255"`
	IndustryType string `json:"industry_type" validate:"industry_type"`
	IsActive     bool   `json:"is_active"`
	IsStaff      bool   `json:"is_staff"`
}

func (n *NewUser) Strip() {
	n.Cellphone = utils.NormalizePhone(n.Cellphone)
	n.WorkPhone = utils.NormalizePhone(n.WorkPhone)
}
