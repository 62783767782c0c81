package controllers

import (
	"net/http"

	"go-tote-store/middleware"
	"go-tote-store/storefront"
	"go-tote-store/utils"
)

// SessionController ends browsing sessions and reports liveness
type SessionController struct {
	Manager *storefront.Manager
}

func NewSessionController(mgr *storefront.Manager) *SessionController {
	return &SessionController{Manager: mgr}
}

// EndSession drops the visitor's cart, design and checkout.
func (sc *SessionController) EndSession(w http.ResponseWriter, r *http.Request) {
	if s := session(r); s != nil {
		sc.Manager.End(s.ID)
	}
	middleware.ExpireSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (sc *SessionController) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": sc.Manager.Len(),
	}, utils.Meta{})
}
