package dto

import "rep-admin/internal/entities"

// LoginResult - ответ бэкенда на вход оператора.
type LoginResult struct {
	Token string
	User  entities.User
}
