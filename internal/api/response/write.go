package response

import (
	"encoding/json"
	"net/http"
)

// Health is the body of a successful health check
type Health struct {
	Status string `json:"status"`
	// DirectoryLoaded is false while edits fall back to free-text club names
	DirectoryLoaded bool `json:"directory_loaded"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
