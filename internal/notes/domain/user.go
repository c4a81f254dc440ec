package domain

import "time"

// User is the identity record. The password field only ever holds a bcrypt
// digest; plaintext never reaches the store.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
