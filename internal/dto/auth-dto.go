package dto

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OperatorDTO struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	RepID    string `json:"rep_id"`
	IsStaff  bool   `json:"is_staff"`
}

type AuthResponseDTO struct {
	AccessToken string      `json:"accessToken"`
	ExpiresIn   int64       `json:"expiresIn"`
	Operator    OperatorDTO `json:"operator"`
}
