package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tote-store/design"
	"go-tote-store/fulfillment"
	"go-tote-store/middleware"
	"go-tote-store/models"
	"go-tote-store/payment"
	"go-tote-store/storefront"
)

func newSession(t *testing.T) *storefront.Session {
	t.Helper()
	mgr := storefront.NewManager(storefront.Options{
		Generator: design.NewPlaceholderGenerator(0),
		Gateway:   payment.NewMockGateway(nil),
		Placer:    fulfillment.NewPrintShop(0, nil),
	})
	return mgr.Start()
}

func serve(s *storefront.Session, h http.HandlerFunc, method, target, body string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.SessionContextKey, s))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

type response struct {
	Data      cartView        `json:"data"`
	Error     string          `json:"error"`
	Notices   []models.Notice `json:"notices"`
	CartCount *int            `json:"cart_count"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var out response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAddToCartUsesSessionDesign(t *testing.T) {
	s := newSession(t)
	cc := NewCartController()

	rec := serve(s, cc.AddToCart, http.MethodPost, "/cart/items", `{"product_id":"tote-bag-premium"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DESIGN_REQUIRED", decodeResponse(t, rec).Error)

	_, err := s.Design.Generate(context.Background(), "sunflower")
	require.NoError(t, err)

	rec = serve(s, cc.AddToCart, http.MethodPost, "/cart/items", `{"product_id":"tote-bag-premium","quantity":2}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	out := decodeResponse(t, rec)
	require.Len(t, out.Data.Items, 1)
	item := out.Data.Items[0]
	assert.Equal(t, "https://picsum.photos/seed/sunflower/400", item.ImageReference)
	assert.Equal(t, "sunflower", item.DesignPrompt)
	assert.Equal(t, "tote-bag-premium-black", item.VariantID)
	assert.True(t, decimal.RequireFromString("89.98").Equal(out.Data.TotalPrice))
	require.Len(t, out.Notices, 1)
	assert.Equal(t, "Premium Tote Bag added to cart!", out.Notices[0].Message)
	assert.Equal(t, 2, s.CartCount())
	require.NotNil(t, out.CartCount)
	assert.Equal(t, 2, *out.CartCount)
}

func TestAddToCartRejectsBadInput(t *testing.T) {
	s := newSession(t)
	cc := NewCartController()
	body := `{"image_reference":"https://example.com/a.png","quantity":-1}`

	rec := serve(s, cc.AddToCart, http.MethodPost, "/cart/items", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_QUANTITY", decodeResponse(t, rec).Error)

	rec = serve(s, cc.AddToCart, http.MethodPost, "/cart/items", `{"product_id":"mug"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, cc.AddToCart, http.MethodPost, "/cart/items", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeQuantityRemovesBelowOne(t *testing.T) {
	s := newSession(t)
	cc := NewCartController()
	item, err := s.Cart.AddItem(models.LineItem{Name: "Tote", UnitPrice: decimal.RequireFromString("34.99"), Quantity: 1})
	require.NoError(t, err)
	vars := map[string]string{"id": item.ID}

	rec := serve(s, cc.ChangeQuantity, http.MethodPatch, "/cart/items/"+item.ID, `{"delta":2}`, vars)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeResponse(t, rec)
	assert.Equal(t, 3, out.Data.TotalItemCount)
	require.NotNil(t, out.CartCount)
	assert.Equal(t, 3, *out.CartCount)

	rec = serve(s, cc.ChangeQuantity, http.MethodPatch, "/cart/items/"+item.ID, `{"delta":-3}`, vars)
	require.Equal(t, http.StatusOK, rec.Code)
	out = decodeResponse(t, rec)
	assert.Empty(t, out.Data.Items)
	assert.Equal(t, 0, *out.CartCount)
	require.Len(t, out.Notices, 1)
	assert.Equal(t, "Item removed from cart", out.Notices[0].Message)

	rec = serve(s, cc.ChangeQuantity, http.MethodPatch, "/cart/items/"+item.ID, `{"delta":1}`, vars)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveFromCartIgnoresUnknownItems(t *testing.T) {
	s := newSession(t)
	cc := NewCartController()

	rec := serve(s, cc.RemoveFromCart, http.MethodDelete, "/cart/items/nope", "", map[string]string{"id": "nope"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeResponse(t, rec).Notices)
}
