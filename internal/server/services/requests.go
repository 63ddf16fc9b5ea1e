package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/dmitrijs2005/petnest/internal/server/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(s string) bool { return emailPattern.MatchString(s) }

func invalid(msg string) error { return common.NewUserError(common.ErrValidation, msg) }

// Column widths of the users and shelters tables, in characters.
const (
	maxUsername    = 50
	maxEmail       = 100
	maxFullName    = 100
	maxPhone       = 20
	maxCity        = 50
	maxNationalID  = 15
	maxShelterName = 100
	maxLicense     = 50
)

type bounded struct {
	name  string
	value string
	max   int
}

func checkLengths(fields ...bounded) error {
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return invalid(fmt.Sprintf("%s must be at most %d characters", f.name, f.max))
		}
	}
	return nil
}

// checkPassword applies the character minimum and bcrypt's byte limit.
func checkPassword(pw, shortMsg string) error {
	if utf8.RuneCountInString(pw) < common.MinPasswordLength {
		return invalid(shortMsg)
	}
	if len(pw) > common.MaxPasswordBytes {
		return invalid(fmt.Sprintf("Password must be at most %d bytes", common.MaxPasswordBytes))
	}
	return nil
}

// RegisterRequest carries a new account. ShelterName and License only
// matter for the shelter role.
type RegisterRequest struct {
	Username    string
	Email       string
	Password    string
	Role        string
	FullName    string
	Phone       string
	City        string
	Address     string
	NationalID  string
	ShelterName string
	License     string
}

func (r *RegisterRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.City = strings.TrimSpace(r.City)
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.ShelterName = strings.TrimSpace(r.ShelterName)
	r.License = strings.TrimSpace(r.License)
}

// Validate checks the required fields in order and reports the first failure.
func (r *RegisterRequest) Validate() error {
	r.normalize()
	required := []struct{ name, value string }{
		{"username", r.Username},
		{"email", r.Email},
		{"password", r.Password},
		{"role", r.Role},
		{"full_name", r.FullName},
		{"phone", r.Phone},
		{"city", r.City},
	}
	for _, f := range required {
		if f.value == "" {
			return invalid(f.name + " is required")
		}
	}
	if err := checkLengths(
		bounded{"username", r.Username, maxUsername},
		bounded{"email", r.Email, maxEmail},
		bounded{"full_name", r.FullName, maxFullName},
		bounded{"phone", r.Phone, maxPhone},
		bounded{"city", r.City, maxCity},
		bounded{"cnic", r.NationalID, maxNationalID},
		bounded{"shelter_name", r.ShelterName, maxShelterName},
		bounded{"license", r.License, maxLicense},
	); err != nil {
		return err
	}
	if !validEmail(r.Email) {
		return invalid("Invalid email")
	}
	if err := checkPassword(r.Password, "Password must be 8+ characters"); err != nil {
		return err
	}
	if _, ok := models.ParseRole(r.Role); !ok {
		return invalid("Invalid role")
	}
	return nil
}

type LoginRequest struct {
	Identifier string
	Password   string
}

func (r *LoginRequest) Validate() error {
	r.Identifier = strings.TrimSpace(r.Identifier)
	if r.Identifier == "" || r.Password == "" {
		return invalid("Identifier and password required")
	}
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" || r.NewPassword == "" || r.ConfirmPassword == "" {
		return invalid("All password fields are required")
	}
	if r.NewPassword != r.ConfirmPassword {
		return invalid("New passwords do not match")
	}
	return checkPassword(r.NewPassword, "New password must be at least 8 characters")
}

type VerifyIdentityRequest struct {
	Username string
	Email    string
	Phone    string
}

func (r *VerifyIdentityRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Username == "" || r.Email == "" || r.Phone == "" {
		return invalid("All fields are required")
	}
	return nil
}

type DirectResetRequest struct {
	UserID   int64
	Password string
}

func (r *DirectResetRequest) Validate() error {
	if r.UserID <= 0 {
		return invalid("User ID is required")
	}
	return checkPassword(r.Password, "Password must be at least 8 characters")
}

// ProfileUpdateRequest is the editable personal information of a user.
// An empty NationalID clears the stored value.
type ProfileUpdateRequest struct {
	FullName   string
	Email      string
	Phone      string
	City       string
	Address    string
	NationalID string
}

func (r *ProfileUpdateRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.City = strings.TrimSpace(r.City)
	r.NationalID = strings.TrimSpace(r.NationalID)

	required := []struct{ name, value string }{
		{"full_name", r.FullName},
		{"email", r.Email},
		{"phone", r.Phone},
	}
	for _, f := range required {
		if f.value == "" {
			return invalid(f.name + " is required")
		}
	}
	if err := checkLengths(
		bounded{"full_name", r.FullName, maxFullName},
		bounded{"email", r.Email, maxEmail},
		bounded{"phone", r.Phone, maxPhone},
		bounded{"city", r.City, maxCity},
		bounded{"cnic", r.NationalID, maxNationalID},
	); err != nil {
		return err
	}
	if !validEmail(r.Email) {
		return invalid("Invalid email format")
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
