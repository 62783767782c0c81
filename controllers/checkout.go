package controllers

import (
	"context"
	"net/http"

	"go-tote-store/middleware"
	"go-tote-store/models"
	"go-tote-store/utils"
)

// CheckoutController exposes the session's checkout steps
type CheckoutController struct{}

func NewCheckoutController() *CheckoutController {
	return &CheckoutController{}
}

type billingRequest struct {
	SameAsShipping bool            `json:"same_as_shipping"`
	Address        *models.Address `json:"address"`
}

type methodRequest struct {
	MethodID string `json:"method_id"`
}

func (cc *CheckoutController) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	respond(w, r, http.StatusOK, s.Checkout.View())
}

func (cc *CheckoutController) SetShipping(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var addr models.Address
	if err := decode(r, &addr); err != nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := s.Checkout.SetShippingAddress(addr); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, s.Checkout.View())
}

func (cc *CheckoutController) SetBilling(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	in := billingRequest{SameAsShipping: true}
	if err := decode(r, &in); err != nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := s.Checkout.SetBilling(in.SameAsShipping, in.Address); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, s.Checkout.View())
}

func (cc *CheckoutController) SetShippingMethod(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in methodRequest
	if err := decode(r, &in); err != nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := s.Checkout.SetShippingMethod(in.MethodID); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, s.Checkout.View())
}

// ProceedToPayment validates the shipping step and moves on to payment
func (cc *CheckoutController) ProceedToPayment(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := s.Checkout.ProceedToPayment(); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, s.Checkout.View())
}

func (cc *CheckoutController) Review(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := s.Checkout.Review(); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, s.Checkout.View())
}

// PlaceOrder charges the customer and submits the order. The attempt runs
// to completion even if the client disconnects, so a confirmed payment is
// never left without its order submission.
func (cc *CheckoutController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	view, err := s.Checkout.PlaceOrder(context.WithoutCancel(r.Context()), middleware.CustomerFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, view)
}

func (cc *CheckoutController) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	s.Checkout.Reset()
	respond(w, r, http.StatusOK, s.Checkout.View())
}
