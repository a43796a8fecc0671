package entities

import "github.com/shopspring/decimal"

// ServiceSettings - платные услуги представителя. Выключенная услуга
// всегда имеет нулевые charge и royalty.
type ServiceSettings struct {
	Email        bool            `json:"email"`
	EmailCharge  decimal.Decimal `json:"email_charge" validate:"gte=0"`
	EmailRoyalty decimal.Decimal `json:"email_royalty" validate:"gte=0"`

	BlazingSocial        bool            `json:"blazing_social"`
	BlazingSocialCharge  decimal.Decimal `json:"blazing_social_charge" validate:"gte=0"`
	BlazingSocialRoyalty decimal.Decimal `json:"blazing_social_royalty" validate:"gte=0"`

	SendPost        bool            `json:"send_post"`
	SendPostCharge  decimal.Decimal `json:"send_post_charge" validate:"gte=0"`
	SendPostRoyalty decimal.Decimal `json:"send_post_royalty" validate:"gte=0"`

	Newsletter        bool            `json:"newsletter"`
	NewsletterCharge  decimal.Decimal `json:"newsletter_charge" validate:"gte=0"`
	NewsletterRoyalty decimal.Decimal `json:"newsletter_royalty" validate:"gte=0"`

	ComingHome        bool            `json:"coming_home"`
	ComingHomeCharge  decimal.Decimal `json:"coming_home_charge" validate:"gte=0"`
	ComingHomeRoyalty decimal.Decimal `json:"coming_home_royalty" validate:"gte=0"`
	ComingHomeFile    string          `json:"coming_home_file"`

	NoBranding bool `json:"no_branding"`
}

type billedService struct {
	enabled *bool
	charge  *decimal.Decimal
	royalty *decimal.Decimal
}

func (s *ServiceSettings) services() []billedService {
	return []billedService{
		{&s.Email, &s.EmailCharge, &s.EmailRoyalty},
		{&s.BlazingSocial, &s.BlazingSocialCharge, &s.BlazingSocialRoyalty},
		{&s.SendPost, &s.SendPostCharge, &s.SendPostRoyalty},
		{&s.Newsletter, &s.NewsletterCharge, &s.NewsletterRoyalty},
		{&s.ComingHome, &s.ComingHomeCharge, &s.ComingHomeRoyalty},
	}
}

func (s *ServiceSettings) Defaults() {}

// Normalize обнуляет суммы выключенных услуг.
func (s *ServiceSettings) Normalize() {
	for _, svc := range s.services() {
		if !*svc.enabled {
			*svc.charge = decimal.Zero
			*svc.royalty = decimal.Zero
		}
	}
}
