package domain

import "time"

// User is the credential-store row as the rest of the service sees it.
// PasswordHash never crosses the transport boundary.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}
