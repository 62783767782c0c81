package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-tote-store/catalog"
	"go-tote-store/errs"
)

// ProductController serves the tote catalog
type ProductController struct{}

func NewProductController() *ProductController {
	return &ProductController{}
}

// GetProducts retrieves all products
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, catalog.Products())
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	product, ok := catalog.Lookup(id)
	if !ok {
		respondError(w, r, errs.Newf(errs.NotFound, "Product %s not found", id))
		return
	}
	respond(w, r, http.StatusOK, product)
}

// GetShippingRates quotes shipping for a product, optionally for ?region=
func (pc *ProductController) GetShippingRates(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := catalog.Lookup(id); !ok {
		respondError(w, r, errs.Newf(errs.NotFound, "Product %s not found", id))
		return
	}
	respond(w, r, http.StatusOK, catalog.ShippingRates(id, r.URL.Query().Get("region")))
}
