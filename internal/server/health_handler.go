// internal/server/health_handler.go
package server

import "net/http"

func (app *Application) healthHandler(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, envelope{
		"status":       "ok",
		"model_loaded": app.Model.IsLoaded(),
	})
}
