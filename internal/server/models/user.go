// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account row. PasswordHash must never leave the service layer.
// Nullable columns are pointers.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	Role           Role
	FullName       string
	Phone          string
	City           string
	Address        string
	NationalID     *string
	ProfilePicture *string
	Badge          *string
	IsVerified     bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProfileUpdate holds the user-editable personal fields.
type ProfileUpdate struct {
	FullName   string
	Email      string
	Phone      string
	City       string
	Address    string
	NationalID *string
}
