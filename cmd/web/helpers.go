package main

import (
	"encoding/json"
	"net/http"

	"github.com/EmptySpace206/PHRatings/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		httputil.InternalServerError(w, "Failed to encode response", err)
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
