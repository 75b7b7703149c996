// internal/handler/settings_handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
)

type adminContactSaver interface {
	SaveAdminContact(ctx context.Context, operatorID, number string) (string, error)
}

// SettingsHandler serves the admin settings screen.
type SettingsHandler struct {
	Settings adminContactSaver
}

func NewSettingsHandler(s adminContactSaver) *SettingsHandler {
	return &SettingsHandler{Settings: s}
}

// SaveAdminContactHandler stores the operator's WhatsApp number.
func (h *SettingsHandler) SaveAdminContactHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		WhatsAppNumber string `json:"whatsapp_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, appErrors.NewBadRequest("invalid request body: "+err.Error()))
		return
	}

	saved, err := h.Settings.SaveAdminContact(r.Context(), OperatorID(r), payload.WhatsAppNumber)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"whatsapp_number": saved})
}
