// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-tote-store/controllers"
	"go-tote-store/middleware"
)

// Controllers groups every handler the router exposes.
type Controllers struct {
	User     *controllers.UserController
	Product  *controllers.ProductController
	Design   *controllers.DesignController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Order    *controllers.OrderController
	Session  *controllers.SessionController
}

// RegisterRoutes sets up all the routes for the application. Health and
// metrics are served without a session so health checks don't create one.
func RegisterRoutes(router *mux.Router, c Controllers, sessions mux.MiddlewareFunc, metrics http.Handler) {
	router.HandleFunc("/health", c.Session.Health).Methods("GET")
	if metrics != nil {
		router.Handle("/metrics", metrics).Methods("GET")
	}

	app := router.PathPrefix("/").Subrouter()
	app.Use(middleware.AuthMiddleware)
	app.Use(sessions)

	// Account routes
	app.HandleFunc("/register", c.User.Register).Methods("POST")
	app.HandleFunc("/login", c.User.Login).Methods("POST")
	app.Handle("/profile", middleware.RequireAuth(http.HandlerFunc(c.User.GetProfile))).Methods("GET")

	// Product routes
	app.HandleFunc("/products", c.Product.GetProducts).Methods("GET")
	app.HandleFunc("/products/{id}", c.Product.GetProductByID).Methods("GET")
	app.HandleFunc("/products/{id}/shipping-rates", c.Product.GetShippingRates).Methods("GET")

	// Design routes
	app.HandleFunc("/design", c.Design.GetDesign).Methods("GET")
	app.HandleFunc("/design/prompt", c.Design.SetPrompt).Methods("PUT")
	app.HandleFunc("/design/generate", c.Design.Generate).Methods("POST")

	// Cart routes
	app.HandleFunc("/cart", c.Cart.GetCart).Methods("GET")
	app.HandleFunc("/cart", c.Cart.ClearCart).Methods("DELETE")
	app.HandleFunc("/cart/items", c.Cart.AddToCart).Methods("POST")
	app.HandleFunc("/cart/design", c.Cart.AddDesign).Methods("POST")
	app.HandleFunc("/cart/items/{id}", c.Cart.ChangeQuantity).Methods("PATCH")
	app.HandleFunc("/cart/items/{id}", c.Cart.RemoveFromCart).Methods("DELETE")

	// Checkout routes
	app.HandleFunc("/checkout", c.Checkout.GetCheckout).Methods("GET")
	app.HandleFunc("/checkout/shipping", c.Checkout.SetShipping).Methods("PUT")
	app.HandleFunc("/checkout/billing", c.Checkout.SetBilling).Methods("PUT")
	app.HandleFunc("/checkout/shipping-method", c.Checkout.SetShippingMethod).Methods("PUT")
	app.HandleFunc("/checkout/payment", c.Checkout.ProceedToPayment).Methods("POST")
	app.HandleFunc("/checkout/review", c.Checkout.Review).Methods("POST")
	app.HandleFunc("/checkout/place", c.Checkout.PlaceOrder).Methods("POST")
	app.HandleFunc("/checkout/reset", c.Checkout.Reset).Methods("POST")

	// Order routes
	app.Handle("/orders", middleware.RequireAuth(http.HandlerFunc(c.Order.GetOrders))).Methods("GET")
	app.HandleFunc("/orders/{id}/status", c.Order.GetOrderStatus).Methods("GET")
	app.Handle("/orders/{id}/status", middleware.AdminMiddleware(http.HandlerFunc(c.Order.UpdateOrderStatus))).Methods("PUT")

	app.HandleFunc("/session", c.Session.EndSession).Methods("DELETE")
}
