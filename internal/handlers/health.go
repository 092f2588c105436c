package handlers

import "net/http"

// Health confirms liveness for GET /.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "Server is up and running")
}
