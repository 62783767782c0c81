package utils

import (
	"encoding/json"
	"net/http"

	"go-tote-store/errs"
	"go-tote-store/models"
)

// Meta is the session state sent along with every response. CartCount is
// left out of the JSON when nil.
type Meta struct {
	Notices   []models.Notice `json:"notices"`
	CartCount *int            `json:"cart_count,omitempty"`
}

type envelope struct {
	Data interface{} `json:"data"`
	Meta
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Meta
}

// WriteJSON writes data and the session meta as a JSON envelope.
func WriteJSON(w http.ResponseWriter, status int, data interface{}, meta Meta) {
	if meta.Notices == nil {
		meta.Notices = []models.Notice{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data, Meta: meta})
}

// WriteError answers with the status and customer-facing message of err.
func WriteError(w http.ResponseWriter, err error, meta Meta) {
	code := errs.CodeOf(err)
	writeError(w, code.HTTPStatus(), code.String(), errs.MessageOf(err), meta)
}

// WriteStatus answers with an error that has no taxonomy code, such as
// malformed input or a failed authorization.
func WriteStatus(w http.ResponseWriter, status int, message string) {
	writeError(w, status, statusCode(status), message, Meta{})
}

func writeError(w http.ResponseWriter, status int, code, message string, meta Meta) {
	if meta.Notices == nil {
		meta.Notices = []models.Notice{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: code, Message: message, Meta: meta})
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}
