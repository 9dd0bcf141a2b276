package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeDomainError maps the error taxonomy onto HTTP statuses:
// validation 400, conflicts 409, transport 502, anything else 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeError(w, r, http.StatusBadRequest, ve.Error())
		return
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		writeError(w, r, http.StatusConflict, ce.Error())
		return
	}

	var ae *domain.AllocationError
	if errors.As(err, &ae) {
		writeError(w, r, http.StatusConflict, ae.Error())
		return
	}

	var te *domain.TransportError
	if errors.As(err, &te) {
		writeError(w, r, http.StatusBadGateway, te.Error())
		return
	}

	log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}
