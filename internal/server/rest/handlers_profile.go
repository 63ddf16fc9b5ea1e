package rest

import (
	"net/http"

	"github.com/dmitrijs2005/petnest/internal/server/services"
)

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := h.profile.Get(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "get_profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Success: true, Profile: newProfileView(user)})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}
	if req.PersonalInfo == nil {
		writeError(w, http.StatusBadRequest, "Personal information required")
		return
	}
	userID, _ := UserIDFromContext(r.Context())
	in := req.PersonalInfo

	err := h.profile.Update(r.Context(), userID, services.ProfileUpdateRequest{
		FullName:   in.FullName,
		Email:      in.Email,
		Phone:      in.Phone,
		City:       in.City,
		Address:    in.Address,
		NationalID: in.NationalID,
	}, metadataFrom(r))
	if err != nil {
		h.fail(w, r, "update_profile", err)
		return
	}
	writeMessage(w, "Profile updated successfully")
}
