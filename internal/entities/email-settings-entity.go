package entities

import "github.com/aarondl/null/v8"

const (
	StatusSend     = "send"
	StatusDontSend = "dont_send"

	RecipientContact = "contact"
	RecipientParent  = "parent"
	RecipientBoth    = "both"

	VersionLong  = "long_version"
	VersionShort = "short_version"
	VersionNone  = "none"

	FrequencyWeekly      = "weekly"
	FrequencyEvery2Weeks = "every_2_weeks"
	FrequencyMonthly     = "monthly"
	FrequencyQuarterly   = "quarterly"
	FrequencyNone        = "none"
)

// legacyRecipients - написания из старого редактора профиля.
var legacyRecipients = map[string]string{
	"contacts": RecipientContact,
	"parents":  RecipientParent,
	"all":      RecipientBoth,
}

// EmailSettings - автоматические письма по поводам и две ветки рассылки.
type EmailSettings struct {
	Birthday          bool   `json:"birthday"`
	BirthdayStatus    string `json:"birthday_status" validate:"oneof=send dont_send"`
	BirthdayRecipient string `json:"birthday_recipient" validate:"oneof=contact parent both"`

	SpouseBirthday          bool   `json:"spouse_birthday"`
	SpouseBirthdayStatus    string `json:"spouse_birthday_status" validate:"oneof=send dont_send"`
	SpouseBirthdayRecipient string `json:"spouse_birthday_recipient" validate:"oneof=contact parent both"`

	NewYear          bool   `json:"new_year"`
	NewYearStatus    string `json:"new_year_status" validate:"oneof=send dont_send"`
	NewYearRecipient string `json:"new_year_recipient" validate:"oneof=contact parent both"`

	ValentinesDay          bool   `json:"valentines_day"`
	ValentinesDayStatus    string `json:"valentines_day_status" validate:"oneof=send dont_send"`
	ValentinesDayRecipient string `json:"valentines_day_recipient" validate:"oneof=contact parent both"`

	StPatricksDay          bool   `json:"st_patricks_day"`
	StPatricksDayStatus    string `json:"st_patricks_day_status" validate:"oneof=send dont_send"`
	StPatricksDayRecipient string `json:"st_patricks_day_recipient" validate:"oneof=contact parent both"`

	Easter          bool   `json:"easter"`
	EasterStatus    string `json:"easter_status" validate:"oneof=send dont_send"`
	EasterRecipient string `json:"easter_recipient" validate:"oneof=contact parent both"`

	MothersDay          bool   `json:"mothers_day"`
	MothersDayStatus    string `json:"mothers_day_status" validate:"oneof=send dont_send"`
	MothersDayRecipient string `json:"mothers_day_recipient" validate:"oneof=contact parent both"`

	MemorialDay          bool   `json:"memorial_day"`
	MemorialDayStatus    string `json:"memorial_day_status" validate:"oneof=send dont_send"`
	MemorialDayRecipient string `json:"memorial_day_recipient" validate:"oneof=contact parent both"`

	FathersDay          bool   `json:"fathers_day"`
	FathersDayStatus    string `json:"fathers_day_status" validate:"oneof=send dont_send"`
	FathersDayRecipient string `json:"fathers_day_recipient" validate:"oneof=contact parent both"`

	IndependenceDay          bool   `json:"independence_day"`
	IndependenceDayStatus    string `json:"independence_day_status" validate:"oneof=send dont_send"`
	IndependenceDayRecipient string `json:"independence_day_recipient" validate:"oneof=contact parent both"`

	LaborDay          bool   `json:"labor_day"`
	LaborDayStatus    string `json:"labor_day_status" validate:"oneof=send dont_send"`
	LaborDayRecipient string `json:"labor_day_recipient" validate:"oneof=contact parent both"`

	Halloween          bool   `json:"halloween"`
	HalloweenStatus    string `json:"halloween_status" validate:"oneof=send dont_send"`
	HalloweenRecipient string `json:"halloween_recipient" validate:"oneof=contact parent both"`

	VeteransDay          bool   `json:"veterans_day"`
	VeteransDayStatus    string `json:"veterans_day_status" validate:"oneof=send dont_send"`
	VeteransDayRecipient string `json:"veterans_day_recipient" validate:"oneof=contact parent both"`

	Thanksgiving          bool   `json:"thanksgiving"`
	ThanksgivingStatus    string `json:"thanksgiving_status" validate:"oneof=send dont_send"`
	ThanksgivingRecipient string `json:"thanksgiving_recipient" validate:"oneof=contact parent both"`

	Christmas          bool   `json:"christmas"`
	ChristmasStatus    string `json:"christmas_status" validate:"oneof=send dont_send"`
	ChristmasRecipient string `json:"christmas_recipient" validate:"oneof=contact parent both"`

	ContactsNewsletterStatus    string      `json:"contacts_newsletter_status" validate:"oneof=send dont_send"`
	ContactsNewsletterVersion   string      `json:"contacts_newsletter_version" validate:"oneof=long_version short_version none"`
	ContactsNewsletterFrequency string      `json:"contacts_newsletter_frequency" validate:"oneof=weekly every_2_weeks monthly quarterly none"`
	ContactsNewsletterSendDate  null.String `json:"contacts_newsletter_send_date" validate:"omitempty,datetime=2006-01-02"`

	ParentsNewsletterStatus    string      `json:"parents_newsletter_status" validate:"oneof=send dont_send"`
	ParentsNewsletterVersion   string      `json:"parents_newsletter_version" validate:"oneof=long_version short_version none"`
	ParentsNewsletterFrequency string      `json:"parents_newsletter_frequency" validate:"oneof=weekly every_2_weeks monthly quarterly none"`
	ParentsNewsletterSendDate  null.String `json:"parents_newsletter_send_date" validate:"omitempty,datetime=2006-01-02"`

	// Общий переключатель существует только в форме и на бэкенд не уходит.
	AllActive bool `json:"-"`
}

type occasion struct {
	enabled   *bool
	status    *string
	recipient *string
}

type newsletterTrack struct {
	status    *string
	version   *string
	frequency *string
}

func (e *EmailSettings) occasions() []occasion {
	return []occasion{
		{&e.Birthday, &e.BirthdayStatus, &e.BirthdayRecipient},
		{&e.SpouseBirthday, &e.SpouseBirthdayStatus, &e.SpouseBirthdayRecipient},
		{&e.NewYear, &e.NewYearStatus, &e.NewYearRecipient},
		{&e.ValentinesDay, &e.ValentinesDayStatus, &e.ValentinesDayRecipient},
		{&e.StPatricksDay, &e.StPatricksDayStatus, &e.StPatricksDayRecipient},
		{&e.Easter, &e.EasterStatus, &e.EasterRecipient},
		{&e.MothersDay, &e.MothersDayStatus, &e.MothersDayRecipient},
		{&e.MemorialDay, &e.MemorialDayStatus, &e.MemorialDayRecipient},
		{&e.FathersDay, &e.FathersDayStatus, &e.FathersDayRecipient},
		{&e.IndependenceDay, &e.IndependenceDayStatus, &e.IndependenceDayRecipient},
		{&e.LaborDay, &e.LaborDayStatus, &e.LaborDayRecipient},
		{&e.Halloween, &e.HalloweenStatus, &e.HalloweenRecipient},
		{&e.VeteransDay, &e.VeteransDayStatus, &e.VeteransDayRecipient},
		{&e.Thanksgiving, &e.ThanksgivingStatus, &e.ThanksgivingRecipient},
		{&e.Christmas, &e.ChristmasStatus, &e.ChristmasRecipient},
	}
}

func (e *EmailSettings) newsletters() []newsletterTrack {
	return []newsletterTrack{
		{&e.ContactsNewsletterStatus, &e.ContactsNewsletterVersion, &e.ContactsNewsletterFrequency},
		{&e.ParentsNewsletterStatus, &e.ParentsNewsletterVersion, &e.ParentsNewsletterFrequency},
	}
}

func (e *EmailSettings) Defaults() {
	e.Normalize()
}

// Normalize подставляет значения по умолчанию во все пустые перечисления.
func (e *EmailSettings) Normalize() {
	for _, o := range e.occasions() {
		setIfEmpty(o.status, StatusSend)
		if canonical, ok := legacyRecipients[*o.recipient]; ok {
			*o.recipient = canonical
		}
		setIfEmpty(o.recipient, RecipientBoth)
	}
	for _, n := range e.newsletters() {
		setIfEmpty(n.status, StatusSend)
		setIfEmpty(n.version, VersionLong)
		setIfEmpty(n.frequency, FrequencyMonthly)
	}
	e.AllActive = e.allEnabled()
}

// SetAll - действие общего переключателя "включить/выключить всё".
func (e *EmailSettings) SetAll(active bool) {
	status, version, frequency := StatusSend, VersionLong, FrequencyMonthly
	if !active {
		status, version, frequency = StatusDontSend, VersionNone, FrequencyNone
	}
	for _, o := range e.occasions() {
		*o.enabled = active
		*o.status = status
		*o.recipient = RecipientBoth
	}
	for _, n := range e.newsletters() {
		*n.status = status
		*n.version = version
		*n.frequency = frequency
	}
	e.AllActive = active
}

func (e *EmailSettings) allEnabled() bool {
	for _, o := range e.occasions() {
		if !*o.enabled {
			return false
		}
	}
	return true
}

func setIfEmpty(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
