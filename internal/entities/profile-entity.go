package entities

import "github.com/aarondl/null/v8"

// Socials - ссылки на соцсети, все необязательные.
type Socials struct {
	Facebook  string `json:"facebook" validate:"scheme_url"`
	Linkedin  string `json:"linkedin" validate:"scheme_url"`
	Twitter   string `json:"twitter" validate:"scheme_url"`
	Instagram string `json:"instagram" validate:"scheme_url"`
	Youtube   string `json:"youtube" validate:"scheme_url"`
	Blogr     string `json:"blogr" validate:"scheme_url"`
	Google    string `json:"google" validate:"scheme_url"`
	Yelp      string `json:"yelp" validate:"scheme_url"`
	Vimeo     string `json:"vimeo" validate:"scheme_url"`
	Moneyapp  string `json:"moneyapp" validate:"scheme_url"`
	Socialapp string `json:"socialapp" validate:"scheme_url"`
	Customapp string `json:"customapp" validate:"scheme_url"`
}

func (s *Socials) Defaults() {}

// Compliance - значки соответствия и текст раскрытия для рассылок.
type Compliance struct {
	BBB        bool     `json:"bbb"`
	BBBA       bool     `json:"bbba"`
	EHL        bool     `json:"EHL"`
	EHO        bool     `json:"EHO"`
	FDIC       bool     `json:"fdic"`
	NCUA       bool     `json:"ncua"`
	Realtor    bool     `json:"realtor"`
	HUD        bool     `json:"hud"`
	NoRatePost bool     `json:"no_rate_post"`
	Custom     bool     `json:"custom"`
	Disclosure string   `json:"disclosure"`
	Industry   null.Int `json:"industry" validate:"omitempty,gte=0"`
}

func (c *Compliance) Defaults() {}

// CallToAction - три пары "подпись/ссылка", обратная подпись и хэштеги.
type CallToAction struct {
	Label1       string `json:"label_1" validate:"max=100"`
	URL1         string `json:"url_1" validate:"scheme_url"`
	Label2       string `json:"label_2" validate:"max=100"`
	URL2         string `json:"url_2" validate:"scheme_url"`
	Label3       string `json:"label_3" validate:"max=100"`
	URL3         string `json:"url_3" validate:"scheme_url"`
	ReverseLabel string `json:"reverse_label" validate:"max=100"`
	Hashtags     string `json:"hashtags" validate:"max=500"`
}

func (c *CallToAction) Defaults() {}

// Branding - файлы бренда и переопределения размеров картинок.
// Файловые поля на чтении содержат URL.
type Branding struct {
	CompanyLogo     string   `json:"company_logo"`
	Photo           string   `json:"photo"`
	Logo            string   `json:"logo"`
	QRCode          string   `json:"qr_code"`
	PersonalBio     string   `json:"personal_bio"`
	LegalDisclosure string   `json:"legal_disclosure"`
	LogoWidth       null.Int `json:"logo_width" validate:"omitempty,gte=1,lte=4000"`
	LogoHeight      null.Int `json:"logo_height" validate:"omitempty,gte=1,lte=4000"`
	PhotoWidth      null.Int `json:"photo_width" validate:"omitempty,gte=1,lte=4000"`
	PhotoHeight     null.Int `json:"photo_height" validate:"omitempty,gte=1,lte=4000"`
	CustomBranding  bool     `json:"custom_branding"`
}

func (b *Branding) Defaults() {}

// AccountSettings - учётные настройки. Пароль только на запись.
type AccountSettings struct {
	Name                 string `json:"name" validate:"max=255"`
	Password             string `json:"password" validate:"omitempty,min=8"`
	NoRatePlan           bool   `json:"no_rate_plan"`
	ChangeablePhoneLabel bool   `json:"changeable_phone_label"`
	NameInSubject        bool   `json:"name_in_subject"`
	EmailReport          bool   `json:"email_report"`
}

func (a *AccountSettings) Defaults() {}

// Present скрывает пароль, даже если бэкенд его вернул.
func (a *AccountSettings) Present() {
	a.Password = ""
}

// OmitFields - пустой пароль не отправляется, чтобы не затереть текущий.
func (a *AccountSettings) OmitFields() []string {
	if a.Password == "" {
		return []string{"password"}
	}
	return nil
}
