package storage

import "produkcja/internal/production"

const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

type User struct {
	ID                 int64                   `json:"id"`
	Code               string                  `json:"code"`
	FirstName          string                  `json:"first_name"`
	LastName           string                  `json:"last_name"`
	Role               string                  `json:"role"`
	AllowedActionTypes []production.ActionType `json:"allowed_action_types"`
}

func (u *User) Name() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanPerform - разрешён ли работнику этап. Администратор может всё.
func (u *User) CanPerform(t production.ActionType) bool {
	if u.IsAdmin() {
		return true
	}
	for _, allowed := range u.AllowedActionTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

type LoginRequest struct {
	Code string `json:"code"`
}

type CreateWorker struct {
	Code               string   `json:"code"`
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	AllowedActionTypes []string `json:"allowed_action_types"`
}

type UpdateWorker struct {
	Code               *string   `json:"code"`
	FirstName          *string   `json:"first_name"`
	LastName           *string   `json:"last_name"`
	AllowedActionTypes *[]string `json:"allowed_action_types"`
}
