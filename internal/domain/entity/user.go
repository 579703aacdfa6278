package entity

// User usuario del sistema tal como lo devuelve /api/users (sin password).
type User struct {
	ID       ID     `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

func (u User) RecordID() ID { return u.ID }

// DisplayName nombre a mostrar: full_name y, si está vacío, el email.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
