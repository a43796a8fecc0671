package dto

import "rep-admin/internal/entities"

// CreatedUserDTO - ответ на регистрацию представителя.
type CreatedUserDTO struct {
	ID    uint64 `json:"id"`
	RepID string `json:"rep_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewCreatedUserDTO(u *entities.User) CreatedUserDTO {
	return CreatedUserDTO{ID: u.ID, RepID: u.RepID, Email: u.Email, Name: u.FullName()}
}
