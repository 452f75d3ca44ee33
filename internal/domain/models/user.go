package models

import "time"

// User represents a registered account. Email and username are stored
// lowercased and are unique across the system.
type User struct {
	ID        string
	Email     string
	Username  string
	FirstName string
	LastName  string
	PassHash  []byte
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
