// internal/handler/donor_handler.go
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
	"github.com/unclebandit/donorlink-backend/internal/service"
)

// DonorHandler serves donor registration and edits.
type DonorHandler struct {
	Directory *service.DirectoryService
	Validate  *validator.Validate
}

func NewDonorHandler(directory *service.DirectoryService, v *validator.Validate) *DonorHandler {
	return &DonorHandler{Directory: directory, Validate: v}
}

type donorRequest struct {
	Name          string `json:"name" validate:"required,max=120"`
	BloodGroup    string `json:"blood_group" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	City          string `json:"city" validate:"required,max=120"`
	Phone         string `json:"phone" validate:"required,max=32"`
	Email         string `json:"email" validate:"required,email"`
	DonationCount int    `json:"donation_count" validate:"gte=0"`
}

func (h *DonorHandler) decode(r *http.Request) (*model.Donor, error) {
	var req donorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, appErrors.NewBadRequest("invalid request body: " + err.Error())
	}
	if err := h.Validate.Struct(req); err != nil {
		return nil, appErrors.NewBadRequest(err.Error())
	}
	return &model.Donor{
		Name:          req.Name,
		BloodGroup:    model.BloodGroup(req.BloodGroup),
		City:          req.City,
		Phone:         req.Phone,
		Email:         req.Email,
		DonationCount: req.DonationCount,
	}, nil
}

// CreateDonorHandler registers a new donor.
func (h *DonorHandler) CreateDonorHandler(w http.ResponseWriter, r *http.Request) {
	donor, err := h.decode(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.Directory.Register(r.Context(), donor); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, donor)
}

func (h *DonorHandler) UpdateDonorHandler(w http.ResponseWriter, r *http.Request) {
	donor, err := h.decode(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	donor.ID = chi.URLParam(r, "id")
	if err := h.Directory.Update(r.Context(), donor); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, donor)
}

func (h *DonorHandler) DeleteDonorHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Directory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DonorMessagesHandler returns the message audit history of one donor.
func (h *DonorHandler) DonorMessagesHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Directory.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"data": entries})
}
