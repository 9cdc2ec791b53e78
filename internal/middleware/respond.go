package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody matches the API's JSON envelope for failed requests.
type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeError writes a JSON error envelope with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Success: false, Message: message})
}
