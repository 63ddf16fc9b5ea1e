package rest

import (
	"net/http"

	"github.com/dmitrijs2005/petnest/internal/server/services"
)

const msgNoData = "No data provided"

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}

	res, err := h.identity.Register(r.Context(), req.toService(), metadataFrom(r))
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, registerResponse{
		Success: true,
		Message: "Registration successful",
		User:    newUserView(res.User, res.Shelter),
		Token:   res.Token,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "No data")
		return
	}

	res, err := h.identity.Login(r.Context(), services.LoginRequest{
		Identifier: req.Identifier,
		Password:   req.Password,
	}, metadataFrom(r))
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, loginResponse{
		Success:     true,
		Message:     "Login successful",
		User:        newUserView(res.User, res.Shelter),
		RedirectURL: res.RedirectURL,
		Token:       res.Token,
	})
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	res, err := h.identity.Check(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "check", err)
		return
	}

	writeJSON(w, http.StatusOK, checkResponse{
		Success:       true,
		Authenticated: true,
		User:          newUserView(res.User, res.Shelter),
		RedirectURL:   res.RedirectURL,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.identity.Logout(r.Context(), tokenFromContext(r.Context()))
	h.clearSessionCookie(w)
	writeMessage(w, "Logged out")
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}
	userID, _ := UserIDFromContext(r.Context())

	err := h.identity.ChangePassword(r.Context(), userID, services.ChangePasswordRequest{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}, metadataFrom(r))
	if err != nil {
		h.fail(w, r, "change_password", err)
		return
	}
	writeMessage(w, "Password changed successfully")
}

func (h *Handler) verifyIdentity(w http.ResponseWriter, r *http.Request) {
	var req verifyIdentityRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}

	user, err := h.identity.VerifyIdentity(r.Context(), services.VerifyIdentityRequest{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		h.fail(w, r, "verify_identity", err)
		return
	}

	writeJSON(w, http.StatusOK, verifyIdentityResponse{
		Success: true,
		Message: "Identity verified successfully",
		UserID:  user.ID,
		Role:    user.Role,
	})
}

func (h *Handler) directReset(w http.ResponseWriter, r *http.Request) {
	var req directResetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}

	err := h.identity.DirectReset(r.Context(), services.DirectResetRequest{
		UserID:   int64(req.UserID),
		Password: req.Password,
	}, metadataFrom(r))
	if err != nil {
		h.fail(w, r, "direct_reset", err)
		return
	}
	writeMessage(w, "Password has been reset successfully")
}

func (h *Handler) checkUsername(w http.ResponseWriter, r *http.Request) {
	var req usernameRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}

	res, err := h.identity.CheckUsername(r.Context(), req.Username)
	if err != nil {
		h.fail(w, r, "check_username", err)
		return
	}
	if !res.Exists {
		writeJSON(w, http.StatusOK, notFoundLookupResponse{Success: true, Message: "Username not found"})
		return
	}

	writeJSON(w, http.StatusOK, usernameLookupResponse{
		Success:     true,
		Exists:      true,
		UserID:      res.UserID,
		Role:        res.Role,
		MaskedEmail: res.MaskedEmail,
		MaskedPhone: res.MaskedPhone,
		EmailHint:   res.EmailHint,
		PhoneHint:   res.PhoneHint,
	})
}

func (h *Handler) getUserByEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}

	res, err := h.identity.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.fail(w, r, "get_user_by_email", err)
		return
	}
	if !res.Exists {
		writeJSON(w, http.StatusOK, notFoundLookupResponse{Success: true, Message: "Email not found"})
		return
	}

	writeJSON(w, http.StatusOK, emailLookupResponse{
		Success:     true,
		Exists:      true,
		UserID:      res.UserID,
		Username:    res.Username,
		Role:        res.Role,
		MaskedPhone: res.MaskedPhone,
		PhoneHint:   res.PhoneHint,
	})
}

func (h *Handler) getUserRoles(w http.ResponseWriter, r *http.Request) {
	var req userIDRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}

	roles, err := h.identity.GetUserRoles(r.Context(), int64(req.UserID))
	if err != nil {
		h.fail(w, r, "get_user_roles", err)
		return
	}
	writeJSON(w, http.StatusOK, rolesResponse{Success: true, Roles: roles})
}
