// internal/controller/selection_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/donorlink-backend/internal/handler"
	"github.com/unclebandit/donorlink-backend/internal/model"
	"github.com/unclebandit/donorlink-backend/internal/service"
)

// SelectionController serves the operator's visible donor list and the
// selection made from it.
type SelectionController struct {
	Sessions *service.SessionManager
}

// ListDonors loads the directory for the operator. A new list clears the selection.
func (c *SelectionController) ListDonors(w http.ResponseWriter, r *http.Request) {
	filter := model.DonorFilter{
		BloodGroup: r.URL.Query().Get("blood_group"),
		City:       r.URL.Query().Get("city"),
	}

	session := c.Sessions.Get(handler.OperatorID(r))
	donors, err := session.ListDonors(r.Context(), filter)
	if err != nil {
		handler.WriteError(w, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":     donors,
		"selected": session.Selection.IDs(),
	})
}

func (c *SelectionController) GetSelection(w http.ResponseWriter, r *http.Request) {
	session := c.Sessions.Get(handler.OperatorID(r))
	handler.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"selected": session.Selection.IDs(),
	})
}

func (c *SelectionController) Toggle(w http.ResponseWriter, r *http.Request) {
	session := c.Sessions.Get(handler.OperatorID(r))
	id := chi.URLParam(r, "id")

	selected, err := session.Toggle(id)
	if err != nil {
		handler.WriteError(w, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"donor_id": id,
		"selected": selected,
		"count":    session.Selection.Len(),
	})
}

func (c *SelectionController) SelectAll(w http.ResponseWriter, r *http.Request) {
	session := c.Sessions.Get(handler.OperatorID(r))
	ids := session.SelectAll()
	handler.WriteJSON(w, http.StatusOK, map[string]interface{}{"selected": ids})
}

func (c *SelectionController) Clear(w http.ResponseWriter, r *http.Request) {
	c.Sessions.Get(handler.OperatorID(r)).ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}
