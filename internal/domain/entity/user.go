package entity

import "time"

// User es un usuario local de la aplicación. PasswordHash es bcrypt.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
