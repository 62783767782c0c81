package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupVariantDefaultsToFirst(t *testing.T) {
	v, ok := LookupVariant(DefaultProductID, "")
	require.True(t, ok)
	assert.Equal(t, "tote-bag-standard-black", v.ID)

	v, ok = LookupVariant("tote-bag-premium", "tote-bag-premium-navy")
	require.True(t, ok)
	assert.False(t, v.InStock)

	_, ok = LookupVariant("tote-bag-premium", "tote-bag-standard-black")
	assert.False(t, ok)
}

func TestShippingRatesCaliforniaExpressDiscount(t *testing.T) {
	express, ok := Method(DefaultProductID, "CA", "express")
	require.True(t, ok)
	assert.Equal(t, "8.99", express.Price.StringFixed(2))

	express, ok = Method(DefaultProductID, "NY", "express")
	require.True(t, ok)
	assert.Equal(t, "9.99", express.Price.StringFixed(2))

	standard, ok := Method(DefaultProductID, "CA", "standard")
	require.True(t, ok)
	assert.Equal(t, "4.99", standard.Price.StringFixed(2))
}

func TestShippingRatesDoNotMutateCatalog(t *testing.T) {
	_ = ShippingRates(DefaultProductID, "CA")
	p, _ := Lookup(DefaultProductID)
	assert.Equal(t, "9.99", p.Shipping[1].Price.StringFixed(2))
}

func TestUnknownProduct(t *testing.T) {
	_, ok := Lookup("mug")
	assert.False(t, ok)
	assert.Nil(t, ShippingRates("mug", "CA"))
}
