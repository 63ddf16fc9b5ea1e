package rest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/services"
)

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	Address     string `json:"address"`
	NationalID  string `json:"cnic"`
	ShelterName string `json:"shelter_name"`
	License     string `json:"license"`
}

func (r registerRequest) toService() services.RegisterRequest {
	return services.RegisterRequest{
		Username:    r.Username,
		Email:       r.Email,
		Password:    r.Password,
		Role:        r.Role,
		FullName:    r.FullName,
		Phone:       r.Phone,
		City:        r.City,
		Address:     r.Address,
		NationalID:  r.NationalID,
		ShelterName: r.ShelterName,
		License:     r.License,
	}
}

// loginRequest carries a username or an email as identifier.
type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type verifyIdentityRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type directResetRequest struct {
	UserID   flexID `json:"user_id"`
	Password string `json:"password"`
}

type usernameRequest struct {
	Username string `json:"username"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type userIDRequest struct {
	UserID flexID `json:"user_id"`
}

type profileUpdateRequest struct {
	PersonalInfo *personalInfoInput `json:"personal_info"`
}

type personalInfoInput struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	Address    string `json:"address"`
	NationalID string `json:"cnic"`
}

// flexID decodes a user id sent either as a JSON number or a numeric string.
// Anything else decodes to zero, which validation rejects.
type flexID int64

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexID(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := n.Int64()
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexID(v)
	return nil
}

// userView is the sanitized user record; the password hash never appears.
type userView struct {
	UserID         int64        `json:"user_id"`
	Username       string       `json:"username"`
	Email          string       `json:"email"`
	Role           models.Role  `json:"role"`
	FullName       string       `json:"full_name"`
	Phone          string       `json:"phone"`
	City           string       `json:"city"`
	ProfilePicture *string      `json:"profile_picture"`
	Badge          *string      `json:"badge"`
	IsVerified     bool         `json:"is_verified"`
	IsActive       bool         `json:"is_active"`
	ShelterInfo    *shelterView `json:"shelter_info,omitempty"`
}

type shelterView struct {
	ShelterID        int64     `json:"shelter_id"`
	UserID           int64     `json:"user_id"`
	OrganizationName string    `json:"organization_name"`
	LicenseNumber    *string   `json:"license_number"`
	ContactPerson    string    `json:"contact_person"`
	IsApproved       bool      `json:"is_approved"`
	CreatedAt        time.Time `json:"created_at"`
}

func newUserView(u *models.User, s *models.Shelter) *userView {
	if u == nil {
		return nil
	}
	v := &userView{
		UserID:         u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		FullName:       u.FullName,
		Phone:          u.Phone,
		City:           u.City,
		ProfilePicture: u.ProfilePicture,
		Badge:          u.Badge,
		IsVerified:     u.IsVerified,
		IsActive:       u.IsActive,
	}
	if s != nil {
		v.ShelterInfo = &shelterView{
			ShelterID:        s.ID,
			UserID:           s.UserID,
			OrganizationName: s.OrganizationName,
			LicenseNumber:    s.LicenseNumber,
			ContactPerson:    s.ContactPerson,
			IsApproved:       s.IsApproved,
			CreatedAt:        s.CreatedAt,
		}
	}
	return v
}

type registerResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    *userView `json:"user"`
	Token   string    `json:"token"`
}

type loginResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	User        *userView `json:"user"`
	RedirectURL string    `json:"redirect_url"`
	Token       string    `json:"token"`
}

type checkResponse struct {
	Success       bool      `json:"success"`
	Authenticated bool      `json:"authenticated"`
	User          *userView `json:"user"`
	RedirectURL   string    `json:"redirect_url"`
}

type verifyIdentityResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	UserID  int64       `json:"user_id"`
	Role    models.Role `json:"role"`
}

type notFoundLookupResponse struct {
	Success bool   `json:"success"`
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}

type usernameLookupResponse struct {
	Success     bool        `json:"success"`
	Exists      bool        `json:"exists"`
	UserID      int64       `json:"user_id"`
	Role        models.Role `json:"role"`
	MaskedEmail string      `json:"masked_email"`
	MaskedPhone string      `json:"masked_phone"`
	EmailHint   string      `json:"email_hint"`
	PhoneHint   string      `json:"phone_hint"`
}

type emailLookupResponse struct {
	Success     bool        `json:"success"`
	Exists      bool        `json:"exists"`
	UserID      int64       `json:"user_id"`
	Username    string      `json:"username"`
	Role        models.Role `json:"role"`
	MaskedPhone string      `json:"masked_phone"`
	PhoneHint   string      `json:"phone_hint"`
}

type rolesResponse struct {
	Success bool          `json:"success"`
	Roles   []models.Role `json:"roles"`
}

type profileResponse struct {
	Success bool        `json:"success"`
	Profile profileView `json:"profile"`
}

type profileView struct {
	PersonalInfo personalInfoView `json:"personal_info"`
}

type personalInfoView struct {
	UserID         int64       `json:"user_id"`
	Username       string      `json:"username"`
	FullName       string      `json:"full_name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	NationalID     *string     `json:"cnic"`
	Role           models.Role `json:"role"`
	Badge          *string     `json:"badge"`
	City           string      `json:"city"`
	Address        string      `json:"address"`
	ProfilePicture *string     `json:"profile_picture"`
	IsVerified     bool        `json:"is_verified"`
	JoinedDate     string      `json:"joined_date"`
}

func newProfileView(u *models.User) profileView {
	return profileView{PersonalInfo: personalInfoView{
		UserID:         u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		Email:          u.Email,
		Phone:          u.Phone,
		NationalID:     u.NationalID,
		Role:           u.Role,
		Badge:          u.Badge,
		City:           u.City,
		Address:        u.Address,
		ProfilePicture: u.ProfilePicture,
		IsVerified:     u.IsVerified,
		JoinedDate:     u.CreatedAt.Format("January 2006"),
	}}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}
