package domain

import "time"

// User represents an authenticated user of the system. The ID is assigned by
// the backing store on creation.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
