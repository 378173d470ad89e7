package scraper

import (
	"strings"
	"testing"

	"pricetrack/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticCatalogCurated(t *testing.T) {
	catalog := NewSyntheticCatalog(config.LoadAmazonConfig())

	products := catalog.Products("  Laptops ", 10)

	require.NotEmpty(t, products)
	assert.LessOrEqual(t, len(products), 10)
	assert.Contains(t, products[0].Name, "MacBook")
	for _, p := range products {
		assert.True(t, p.Price.Valid)
		assert.True(t, strings.HasPrefix(p.URL, "https://www.amazon.com/s?k="))
		assert.NotEmpty(t, p.ImageURL)
	}
}

func TestSyntheticCatalogRespectsCap(t *testing.T) {
	catalog := NewSyntheticCatalog(config.LoadAmazonConfig())

	assert.Len(t, catalog.Products("Home & Kitchen", 3), 3)
	assert.Len(t, catalog.Products("garden hoses", 4), 4)
}

func TestSyntheticCatalogPlaceholderSeries(t *testing.T) {
	catalog := NewSyntheticCatalog(config.LoadAmazonConfig())

	products := catalog.Products("garden hoses", 10)

	require.Len(t, products, 10)
	assert.Equal(t, "garden hoses Product 1", products[0].Name)
	assert.Equal(t, "19.99", products[0].Price.Decimal.String())
	assert.Equal(t, "garden hoses Product 10", products[9].Name)
	assert.Equal(t, "109.99", products[9].Price.Decimal.String())
}

func TestSyntheticCatalogNeverEmpty(t *testing.T) {
	catalog := NewSyntheticCatalog(config.LoadAmazonConfig())

	assert.NotEmpty(t, catalog.Products("", 10))
	assert.NotEmpty(t, catalog.Products("books", 0))
}
