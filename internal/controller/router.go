package controller

import (
	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/donorlink-backend/internal/handler"
)

// Routes mounts every endpoint on r.
func Routes(r chi.Router, selection *SelectionController, outreach *OutreachController, donors *handler.DonorHandler, settings *handler.SettingsHandler) {
	// Donor directory
	r.Get("/donors", selection.ListDonors)
	r.Post("/donors", donors.CreateDonorHandler)
	r.Put("/donors/{id}", donors.UpdateDonorHandler)
	r.Delete("/donors/{id}", donors.DeleteDonorHandler)
	r.Get("/donors/{id}/messages", donors.DonorMessagesHandler)

	// Selection
	r.Get("/selection", selection.GetSelection)
	r.Post("/selection/all", selection.SelectAll)
	r.Post("/selection/{id}/toggle", selection.Toggle)
	r.Delete("/selection", selection.Clear)

	// Bulk outreach
	r.Post("/outreach", outreach.StartOutreach)
	r.Get("/outreach", outreach.GetOutreach)

	r.Put("/settings/admin-contact", settings.SaveAdminContactHandler)
}
