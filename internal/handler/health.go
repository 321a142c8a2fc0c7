package handler

import "net/http"

// HealthResponse is the body of GET /api/health. It is deliberately not
// wrapped in an Envelope.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports that the process is up and serving requests.
//
// HTTP: GET /api/health
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "Server is running"})
}
