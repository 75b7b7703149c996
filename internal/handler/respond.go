// internal/handler/respond.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wb-go/wbf/zlog"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/service"
)

// OperatorHeader names the operator whose session a request acts on.
const OperatorHeader = "X-Operator-ID"

func OperatorID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(OperatorHeader)); id != "" {
		return id
	}
	return service.DefaultOperatorID
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

type errorBody struct {
	Code    appErrors.Code `json:"code"`
	Message string         `json:"message"`
}

// WriteError answers with {"error": {"code", "message"}}. Internal errors
// are logged and their details hidden.
func WriteError(w http.ResponseWriter, err error) {
	status := appErrors.HTTPStatus(err)
	body := errorBody{Code: appErrors.CodeOf(err), Message: err.Error()}
	if status == http.StatusInternalServerError {
		zlog.Logger.Error().Err(err).Msg("request failed")
		if body.Code == "" {
			body.Message = "internal server error"
		}
	}
	WriteJSON(w, status, map[string]errorBody{"error": body})
}
