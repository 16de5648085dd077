package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameStripsMarketplaceSuffix(t *testing.T) {
	doc := parse(t, `<html><head><title>Wireless Mouse - Amazon.in</title></head><body></body></html>`)
	assert.Equal(t, "Wireless Mouse", NewNameExtractor().Extract(doc, "https://www.amazon.in/dp/B0C1"))
}

func TestNameRejectsNoisePhrase(t *testing.T) {
	doc := parse(t, `<html><head>
<meta property="og:title" content="Buy Online | Cheap Shoes">
<title>Trail Running Shoes | Flipkart</title>
</head><body></body></html>`)
	assert.Equal(t, "Trail Running Shoes", NewNameExtractor().Extract(doc, "https://www.flipkart.com/x"))
}

func TestNameSelectorOrder(t *testing.T) {
	doc := parse(t, `<html><head><meta property="og:title" content="OG Title Product"></head>
<body>
<h1>Generic Heading Here</h1>
<span id="productTitle">
   Logitech   M185
   Wireless Mouse
</span>
</body></html>`)
	assert.Equal(t, "Logitech M185 Wireless Mouse", NewNameExtractor().Extract(doc, "https://example.com/p"))
}

func TestNameStripsBestPriceSuffix(t *testing.T) {
	doc := parse(t, `<html><head><title>Samsung Galaxy M14 5G Online at Best Prices in India.</title></head></html>`)
	assert.Equal(t, "Samsung Galaxy M14 5G", NewNameExtractor().Extract(doc, "https://example.com/p"))
}

func TestNameRejectsShortCandidates(t *testing.T) {
	doc := parse(t, `<html><head><title>Shop</title></head><body><h1>Tee</h1><h1>Organic Cotton Tee</h1></body></html>`)
	assert.Equal(t, "Organic Cotton Tee", NewNameExtractor().Extract(doc, "https://example.com/p"))
}

func TestNameFallsBackToURLSlug(t *testing.T) {
	doc := parse(t, `<html><head><title>Amazon.com</title></head><body><h1>Buy online now</h1></body></html>`)
	got := NewNameExtractor().Extract(doc, "https://shop.example/products/wireless-mouse-2000")
	assert.Equal(t, "Wireless Mouse 2000", got)
}

func TestNameSlugDropsQueryString(t *testing.T) {
	doc := parse(t, `<html></html>`)
	got := NewNameExtractor().Extract(doc, "https://shop.example/p/usb_c__charger-kit?ref=home&x=1")
	assert.Equal(t, "Usb C Charger Kit", got)
}

func TestNameLiteralFallback(t *testing.T) {
	doc := parse(t, `<html><body><p>nothing here</p></body></html>`)
	assert.Equal(t, FallbackName, NewNameExtractor().Extract(doc, "https://shop.example/p/ab"))
	assert.Equal(t, FallbackName, NewNameExtractor().Extract(doc, "https://shop.example/"))
}

func TestCleanName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Wireless Mouse - Amazon.in", "Wireless Mouse"},
		{"Kurta Set | MYNTRA", "Kurta Set"},
		{"Face Wash   -   Tata 1mg ", "Face Wash"},
		{"Mixer Grinder - Croma - Vijay Sales", "Mixer Grinder - Croma"},
		{"Smart Watch online at best price in india", "Smart Watch"},
		{"Amazon Echo Dot", "Amazon Echo Dot"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cleanName(tc.in), tc.in)
	}
}
