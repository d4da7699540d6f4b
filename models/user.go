package models

import "time"

type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	// PasswordHash is nil until the user completes the first-login flow;
	// such accounts cannot authenticate with a password.
	PasswordHash *string   `json:"-"`
	IsProtected  bool      `json:"is_protected"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasUsablePassword reports whether the account can log in with a password.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
