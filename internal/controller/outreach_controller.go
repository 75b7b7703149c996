// internal/controller/outreach_controller.go
package controller

import (
	"net/http"

	"github.com/unclebandit/donorlink-backend/internal/handler"
	"github.com/unclebandit/donorlink-backend/internal/service"
)

type OutreachController struct {
	Sessions *service.SessionManager
}

// StartOutreach triggers a bulk send over the operator's current selection.
// Validation and the audit write happen before the response; the sends
// continue in the background.
func (c *OutreachController) StartOutreach(w http.ResponseWriter, r *http.Request) {
	session := c.Sessions.Get(handler.OperatorID(r))

	jobID, err := session.StartOutreach(r.Context())
	if err != nil {
		handler.WriteError(w, err)
		return
	}

	handler.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": jobID,
		"status": "sending",
	})
}

// GetOutreach reports the dispatcher state and the current or last job.
func (c *OutreachController) GetOutreach(w http.ResponseWriter, r *http.Request) {
	state, job := c.Sessions.Get(handler.OperatorID(r)).Job()
	handler.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"state": state,
		"job":   job,
	})
}
