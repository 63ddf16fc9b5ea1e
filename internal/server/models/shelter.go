package models

import "time"

// Shelter is the one-to-one organisation profile of a shelter user.
type Shelter struct {
	ID               int64
	UserID           int64
	OrganizationName string
	LicenseNumber    *string
	ContactPerson    string
	IsApproved       bool
	CreatedAt        time.Time
}
