package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricealert/packages/document"
	"pricealert/packages/domain"
)

func parse(t *testing.T, html string) document.Document {
	t.Helper()
	doc, err := document.ParseString(html)
	require.NoError(t, err)
	return doc
}

func TestPriceStructuredDataBeatsRegexFallback(t *testing.T) {
	doc := parse(t, `<html><head>
<script type="application/ld+json">{"@type":"Product","offers":{"@type":"Offer","price":"999","priceCurrency":"INR"}}</script>
</head><body><p>Was $499 elsewhere</p></body></html>`)

	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 999.0, c.Value)
	assert.Equal(t, domain.StructuredData, c.Tier)
}

func TestPriceStructuredDataVariants(t *testing.T) {
	cases := []struct {
		name string
		body string
		want float64
	}{
		{"numeric price", `{"offers":{"price":1499.5}}`, 1499.5},
		{"offer list skips invalid", `{"offers":[{"price":"0"},{"price":"2,499"}]}`, 2499},
		{"top level list", `[{"@type":"BreadcrumbList"},{"offers":{"price":"15.99"}}]`, 15.99},
		{"nested graph", `{"@graph":[{"@type":"WebPage"},{"@type":"Product","offers":{"price":"42"}}]}`, 42},
		{"aggregate offer", `{"offers":{"@type":"AggregateOffer","offers":[{"price":"77"}]}}`, 77},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := parse(t, `<html><head><script type="application/ld+json">`+tc.body+`</script></head><body></body></html>`)
			c, ok := NewPriceExtractor().Extract(doc)
			require.True(t, ok)
			assert.InDelta(t, tc.want, c.Value, 1e-9)
			assert.Equal(t, domain.StructuredData, c.Tier)
		})
	}
}

func TestPriceBreadthFirstOrder(t *testing.T) {
	// The shallow offer is visited before the deeper one even though the
	// deeper one comes first in the text.
	doc := parse(t, `<script type="application/ld+json">
{"isVariantOf":{"hasVariant":{"offers":{"price":"300"}}},"offers":{"price":"100"}}
</script>`)
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 100.0, c.Value)
}

func TestPriceMalformedJSONLDIsSkipped(t *testing.T) {
	doc := parse(t, `<html><head>
<script type="application/ld+json">{"offers": {"price": </script>
<script type="application/ld+json">{"offers":{"price":"55"}}</script>
</head></html>`)
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 55.0, c.Value)
}

func TestPriceNonStrictJSONLDFallsThroughToMeta(t *testing.T) {
	doc := parse(t, `<html><head>
<script type="application/ld+json">{"offers":{"price":"120",},}</script>
<meta property="og:price:amount" content="200">
</head></html>`)
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 200.0, c.Value)
	assert.Equal(t, domain.MetaTag, c.Tier)
}

func TestPriceMetaTags(t *testing.T) {
	doc := parse(t, `<html><head>
<meta property="product:price:amount" content="">
<meta property="og:price:amount" content="0">
<meta name="twitter:data1" content="₹ 3,499">
<meta itemprop="price" content="10">
</head></html>`)
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 3499.0, c.Value)
	assert.Equal(t, domain.MetaTag, c.Tier)
}

func TestPriceMetaTagOnlyFirstElementConsidered(t *testing.T) {
	doc := parse(t, `<html><head>
<meta name="price" content="free">
<meta name="price" content="25">
</head><body></body></html>`)
	_, ok := NewPriceExtractor().Extract(doc)
	assert.False(t, ok)
}

func TestPriceSelectorsStopAtFirstHit(t *testing.T) {
	doc := parse(t, `<html><body>
<div class="price">₹ 1,299</div>
<div class="price">₹ 99</div>
<div class="price">₹ 5,000</div>
</body></html>`)
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 1299.0, c.Value)
	assert.Equal(t, domain.Selector, c.Tier)
}

func TestPriceSelectorOrderBeatsDocumentOrder(t *testing.T) {
	doc := parse(t, `<html><body>
<span class="sale-price">$10.00</span>
<span id="priceblock_dealprice">$20.00</span>
</body></html>`)
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 20.0, c.Value)
}

func TestPriceSelectorPrefersContentAttribute(t *testing.T) {
	doc := parse(t, `<html><body>
<span itemprop="price" content="1234.00">Call for price</span>
</body></html>`)
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 1234.0, c.Value)
}

func TestPriceSelectorSkipsInvalidMatches(t *testing.T) {
	doc := parse(t, `<html><body>
<div class="price">Price</div>
<div class="price">99999999999</div>
<div class="product-price-box">€ 45,50</div>
</body></html>`)
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 45.5, c.Value)
}

func TestPriceRegexFallback(t *testing.T) {
	doc := parse(t, `<html><body>
<p>Call 1800 123 4567</p>
<p>Now only $ 0.50 or £12.49 with Rs. 999 in store</p>
</body></html>`)
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	// Rs. is probed before $ and £.
	assert.Equal(t, 999.0, c.Value)
	assert.Equal(t, domain.RegexFallback, c.Tier)
}

func TestPriceRegexFallbackNonBreakingSpace(t *testing.T) {
	doc := parse(t, "<html><body><b>Deal:</b> ₹\u00a02,199</body></html>")
	c, ok := NewPriceExtractor().Extract(doc)
	require.True(t, ok)
	assert.Equal(t, 2199.0, c.Value)
}

func TestPriceOutOfBandRejectedInEveryTier(t *testing.T) {
	doc := parse(t, `<html><head>
<script type="application/ld+json">{"offers":{"price":"0"}}</script>
<meta property="og:price:amount" content="0.5">
</head><body>
<div class="price">25000001</div>
<p>$0</p>
</body></html>`)
	_, ok := NewPriceExtractor().Extract(doc)
	assert.False(t, ok)
}

func TestPriceNothingOnPage(t *testing.T) {
	doc := parse(t, `<html><body><p>Out of stock</p></body></html>`)
	_, ok := NewPriceExtractor().Extract(doc)
	assert.False(t, ok)
}
