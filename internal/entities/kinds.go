package entities

// Kind - имя под-ресурса пользователя (карточки профиля).
type Kind string

const (
	KindPersonal      Kind = "personal"
	KindAccount       Kind = "account"
	KindSocials       Kind = "socials"
	KindCompliance    Kind = "compliance"
	KindServices      Kind = "services"
	KindEmailSettings Kind = "email_settings"
	KindCallToAction  Kind = "call_to_action"
	KindBranding      Kind = "branding"
)

// ProfileKinds - порядок карточек на странице профиля.
var ProfileKinds = []Kind{
	KindPersonal,
	KindAccount,
	KindSocials,
	KindCompliance,
	KindServices,
	KindEmailSettings,
	KindCallToAction,
	KindBranding,
}

func ParseKind(raw string) (Kind, bool) {
	for _, k := range ProfileKinds {
		if string(k) == raw {
			return k, true
		}
	}
	return "", false
}
