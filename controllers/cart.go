package controllers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"go-tote-store/catalog"
	"go-tote-store/errs"
	"go-tote-store/models"
	"go-tote-store/storefront"
	"go-tote-store/utils"
)

// CartController handles the session cart
type CartController struct{}

func NewCartController() *CartController {
	return &CartController{}
}

type cartView struct {
	Items          []models.LineItem `json:"items"`
	TotalPrice     decimal.Decimal   `json:"total_price"`
	TotalItemCount int               `json:"total_item_count"`
}

type addItemRequest struct {
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id"`
	Quantity       int    `json:"quantity"`
	ImageReference string `json:"image_reference"`
	DesignPrompt   string `json:"design_prompt"`
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

func viewCart(s *storefront.Session) cartView {
	return cartView{
		Items:          s.Cart.Items(),
		TotalPrice:     s.Cart.TotalPrice(),
		TotalItemCount: s.Cart.TotalItemCount(),
	}
}

// GetCart retrieves the session's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	respond(w, r, http.StatusOK, viewCart(s))
}

// AddToCart adds a catalog product printed with a design. The session's
// current design is used unless the request names one.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in addItemRequest
	if err := decode(r, &in); err != nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if in.ProductID == "" {
		in.ProductID = catalog.DefaultProductID
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	cc.add(w, r, s, in)
}

// AddDesign puts the current design on a standard tote into the cart.
func (cc *CartController) AddDesign(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	cc.add(w, r, s, addItemRequest{
		ProductID: catalog.DefaultProductID,
		VariantID: catalog.DefaultVariantID,
		Quantity:  1,
	})
}

func (cc *CartController) add(w http.ResponseWriter, r *http.Request, s *storefront.Session, in addItemRequest) {
	product, ok := catalog.Lookup(in.ProductID)
	if !ok {
		respondError(w, r, errs.Newf(errs.NotFound, "Product %s not found", in.ProductID))
		return
	}
	variant, ok := catalog.LookupVariant(product.ID, in.VariantID)
	if !ok {
		respondError(w, r, errs.Newf(errs.NotFound, "Variant %s not found", in.VariantID))
		return
	}

	image, prompt := in.ImageReference, in.DesignPrompt
	if image == "" {
		ref, ok := s.Design.ImageReference()
		if !ok {
			s.Notify(models.NoticeError, "Please generate a design first")
			respondError(w, r, errs.New(errs.DesignRequired, "Please generate a design first"))
			return
		}
		image, prompt = ref, s.Design.Snapshot().Prompt
	}

	item, err := s.Cart.AddItem(models.LineItem{
		Name:           product.Name,
		ProductID:      product.ID,
		UnitPrice:      product.Price,
		Quantity:       in.Quantity,
		ImageReference: image,
		DesignPrompt:   prompt,
		VariantID:      variant.ID,
		VariantName:    variant.Name,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.Notify(models.NoticeSuccess, fmt.Sprintf("%s added to cart!", item.Name))
	respond(w, r, http.StatusCreated, viewCart(s))
}

// ChangeQuantity adjusts an item's quantity by delta; below one removes it.
func (cc *CartController) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	var in quantityRequest
	if err := decode(r, &in); err != nil {
		utils.WriteStatus(w, http.StatusBadRequest, "Invalid input")
		return
	}
	id := mux.Vars(r)["id"]
	if _, exists := s.Cart.Item(id); !exists {
		respondError(w, r, errs.Newf(errs.NotFound, "Item %s is not in the cart", id))
		return
	}
	if !s.Cart.ChangeQuantity(id, in.Delta) {
		s.Notify(models.NoticeInfo, "Item removed from cart")
	}
	respond(w, r, http.StatusOK, viewCart(s))
}

// RemoveFromCart removes an item from the cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	if s.Cart.RemoveItem(mux.Vars(r)["id"]) {
		s.Notify(models.NoticeInfo, "Item removed from cart")
	}
	respond(w, r, http.StatusOK, viewCart(s))
}

func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	s.Cart.Clear()
	respond(w, r, http.StatusOK, viewCart(s))
}
