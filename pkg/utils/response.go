package utils

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	resultData, err := json.Marshal(payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Error marshalling result", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(resultData)
}

func RespondWithError(w http.ResponseWriter, code int, message string, err error) {
	slog.Error(message, "http_status", code, "error", err)

	response := struct {
		Error string `json:"error"`
	}{
		Error: message,
	}

	RespondWithJSON(w, code, response)
}

func RespondWithString(w http.ResponseWriter, contentType string, code int, msg string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	io.WriteString(w, msg)
}

func RespondWithText(w http.ResponseWriter, code int, msg string) {
	RespondWithString(w, "text/plain; charset=utf-8", code, msg)
}

func RespondWithNoContent(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

func RespondWithRedirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}
