// controllers/order.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"go-tote-store/errs"
	"go-tote-store/fulfillment"
	"go-tote-store/middleware"
	"go-tote-store/models"
	"go-tote-store/repository"
	"go-tote-store/utils"
)

// StatusChecker asks the print shop where an order is.
type StatusChecker interface {
	Status(ctx context.Context, orderID string) (fulfillment.Status, error)
}

// StatusNotifier emails a customer about a status change.
type StatusNotifier interface {
	SendOrderStatusEmail(order models.Order) error
}

// OrderController handles order-related requests
type OrderController struct {
	Orders   repository.OrderStore
	Shop     StatusChecker
	Notifier StatusNotifier
	Log      *zap.Logger
}

func NewOrderController(orders repository.OrderStore, shop StatusChecker, notifier StatusNotifier, log *zap.Logger) *OrderController {
	return &OrderController{Orders: orders, Shop: shop, Notifier: notifier, Log: log}
}

type statusUpdateRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
}

// GetOrders lists the signed-in customer's orders, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		utils.WriteStatus(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	orders, err := oc.Orders.FindByOwner(ctx, claims.UserID)
	if err != nil {
		oc.Log.Error("list orders", zap.String("user_id", claims.UserID), zap.Error(err))
		utils.WriteStatus(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respond(w, r, http.StatusOK, orders)
}

// GetOrderStatus reports an order's production status. Once the stored
// status has moved past processing it is authoritative; before that the
// print shop is asked.
func (oc *OrderController) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Orders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, r, errs.Newf(errs.NotFound, "Order %s not found", id))
		return
	}
	if err != nil {
		oc.Log.Error("find order", zap.String("order_id", id), zap.Error(err))
		utils.WriteStatus(w, http.StatusInternalServerError, "Error fetching order")
		return
	}

	if order.Status != "" && order.Status != models.OrderProcessing {
		st := fulfillment.Status{OrderID: order.ID, Status: order.Status, LastUpdated: order.UpdatedAt}
		if order.TrackingNumber != "" {
			number, url := order.TrackingNumber, order.TrackingURL
			st.TrackingNumber = &number
			st.TrackingURL = &url
		}
		respond(w, r, http.StatusOK, st)
		return
	}

	st, err := oc.Shop.Status(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			respondError(w, r, errs.Wrap(errs.GatewayTimeout, "The print shop took too long to respond", err))
			return
		}
		oc.Log.Error("print shop status", zap.String("order_id", id), zap.Error(err))
		utils.WriteStatus(w, http.StatusBadGateway, "Could not reach the print shop")
		return
	}
	respond(w, r, http.StatusOK, st)
}

// UpdateOrderStatus sets an order's status (admin only) and emails the customer
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in statusUpdateRequest
	if err := decode(r, &in); err != nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}
	switch in.Status {
	case models.OrderProcessing, models.OrderPrinting, models.OrderShipped, models.OrderDelivered:
	default:
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	id := mux.Vars(r)["id"]
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	order, err := oc.Orders.UpdateStatus(ctx, id, in.Status, in.TrackingNumber, in.TrackingURL)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(w, r, errs.Newf(errs.NotFound, "Order %s not found", id))
		return
	}
	if err != nil {
		oc.Log.Error("update order status", zap.String("order_id", id), zap.Error(err))
		utils.WriteStatus(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	if oc.Notifier != nil && order.Email != "" {
		if err := oc.Notifier.SendOrderStatusEmail(order); err != nil {
			oc.Log.Warn("failed to send status email", zap.String("order_id", id), zap.Error(err))
		}
	}
	respond(w, r, http.StatusOK, order)
}
