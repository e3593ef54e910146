package api

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "parkmate/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var httpErr *apperrors.HTTPError
	if apperrors.As(err, &httpErr) {
		writeJSON(w, httpErr.Code, map[string]string{"message": httpErr.Message})
		return
	}
	status := apperrors.StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		writeJSON(w, status, map[string]string{"message": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"message": err.Error()})
}
