// internal/server/responses.go
package server

import (
	"encoding/json"
	"net/http"
)

type envelope map[string]interface{}

func (app *Application) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.Logger.Error("failed to write response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
