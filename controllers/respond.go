package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go-tote-store/middleware"
	"go-tote-store/storefront"
	"go-tote-store/utils"
)

func session(r *http.Request) *storefront.Session {
	return middleware.SessionFrom(r.Context())
}

// meta drains the session's notices and reads its cart badge count.
func meta(r *http.Request) utils.Meta {
	s := session(r)
	if s == nil {
		return utils.Meta{}
	}
	count := s.CartCount()
	return utils.Meta{Notices: s.DrainNotices(), CartCount: &count}
}

// respond writes data along with every notice queued on the session.
func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	utils.WriteJSON(w, status, data, meta(r))
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	utils.WriteError(w, err, meta(r))
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// currentSession returns the request's session or answers with an error.
func currentSession(w http.ResponseWriter, r *http.Request) (*storefront.Session, bool) {
	s := session(r)
	if s == nil {
		utils.WriteStatus(w, http.StatusInternalServerError, "No session")
		return nil, false
	}
	return s, true
}
