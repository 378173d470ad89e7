package scraper

import (
	"testing"

	"pricetrack/models"

	"github.com/stretchr/testify/assert"
)

func TestGenericExtractPrefersOpenGraph(t *testing.T) {
	html := `<html><head>
		<title>Shop | Ceramic Mug</title>
		<meta property="og:title" content="Handmade Ceramic Mug">
		<meta property="og:image" content="/img/mug.jpg">
	</head><body>
		<nav>Home Shop Cart</nav>
		<main><h1>Ceramic Mug</h1><p>Glazed stoneware, 350 ml. $24.00</p></main>
	</body></html>`

	info := NewGenericExtractor().Extract(html, "https://crafts.example.com/p/mug")

	assert.Equal(t, "Handmade Ceramic Mug", info.Name)
	assert.Equal(t, "https://crafts.example.com/img/mug.jpg", info.ImageURL)
	assert.False(t, info.HasPrice(), "generic pages never yield a price")
}

func TestGenericExtractFallsBackToTitleAndFirstImage(t *testing.T) {
	html := `<html><head><title>  Trail Running Shoe  </title></head><body>
		<header><img src="/logo.png"></header>
		<article><p>Lightweight shoe.</p><img src="https://cdn.example.com/shoe.jpg"></article>
	</body></html>`

	info := NewGenericExtractor().Extract(html, "https://run.example.com/shoe")

	assert.Equal(t, "Trail Running Shoe", info.Name)
	assert.Equal(t, "https://cdn.example.com/shoe.jpg", info.ImageURL)
}

func TestGenericExtractUsesHeadingWithoutTitle(t *testing.T) {
	html := `<html><body><div><h1>Desk Lamp</h1><p>LED, dimmable</p></div></body></html>`

	info := NewGenericExtractor().Extract(html, "")

	assert.Equal(t, "Desk Lamp", info.Name)
	assert.Empty(t, info.ImageURL)
}

func TestGenericExtractBoilerplateOnly(t *testing.T) {
	html := `<html><head><title>Loading</title><meta property="og:image" content="x.jpg"></head>
		<body><script>window.app = {}</script><nav>Menu</nav><footer>© 2024</footer></body></html>`

	info := NewGenericExtractor().Extract(html, "https://spa.example.com")

	assert.Equal(t, models.UnknownProductName, info.Name)
	assert.Empty(t, info.ImageURL)
	assert.False(t, info.HasPrice())
}
