// Package extractor finds the displayed price and the product name on a parsed
// product page.
package extractor

import (
	"regexp"
	"slices"
	"strings"

	"pricealert/packages/document"
	"pricealert/packages/domain"
	"pricealert/packages/normalize"
)

const jsonLDType = "application/ld+json"

type MetaProbe struct {
	Selector string
	Attr     string
}

// The probe tables below are matched in order and only ever extended at the
// end; reordering them changes which price wins on already supported sites.
var (
	MetaProbes = []MetaProbe{
		{Selector: `meta[property="product:price:amount"]`, Attr: "content"},
		{Selector: `meta[property="og:price:amount"]`, Attr: "content"},
		{Selector: `meta[name="twitter:data1"]`, Attr: "content"},
		{Selector: `meta[itemprop="price"]`, Attr: "content"},
		{Selector: `meta[name="price"]`, Attr: "content"},
	}

	PriceSelectors = []string{
		"#priceblock_ourprice", "#priceblock_dealprice", ".a-price .a-offscreen",
		// Flipkart variants
		"._30jeq3", "._16Jk6d", ".Nx9bqj", ".CEmiEU",
		".pdp-price", ".product-price", ".price", ".sale-price", ".final-price",
		`[data-testid="price"]`, `[itemprop="price"]`, `[class*="price"]`,
	}

	// \p{Zs} stands in for the non-breaking spaces storefronts put between
	// symbol and amount.
	CurrencyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`₹[\s\p{Zs}]*([0-9][0-9,]*\.?[0-9]{0,2})`),
		regexp.MustCompile(`Rs\.?[\s\p{Zs}]*([0-9][0-9,]*\.?[0-9]{0,2})`),
		regexp.MustCompile(`INR[\s\p{Zs}]*([0-9][0-9,]*\.?[0-9]{0,2})`),
		regexp.MustCompile(`\$[\s\p{Zs}]*([0-9][0-9,]*\.?[0-9]{0,2})`),
		regexp.MustCompile(`£[\s\p{Zs}]*([0-9][0-9,]*\.?[0-9]{0,2})`),
	}
)

type PriceExtractor struct {
	metaProbes []MetaProbe
	selectors  []string
	patterns   []*regexp.Regexp
}

func NewPriceExtractor() *PriceExtractor {
	return &PriceExtractor{
		metaProbes: slices.Clone(MetaProbes),
		selectors:  slices.Clone(PriceSelectors),
		patterns:   slices.Clone(CurrencyPatterns),
	}
}

// Extract returns the first candidate that normalizes into the valid price
// band, searching structured data, meta tags, CSS selectors and finally the
// page text, in that order. Later tiers are never consulted once one yields.
func (e *PriceExtractor) Extract(doc document.Document) (domain.PriceCandidate, bool) {
	tiers := []func(document.Document) (domain.PriceCandidate, bool){
		e.fromStructuredData,
		e.fromMetaTags,
		e.fromSelectors,
		e.fromText,
	}
	for _, tier := range tiers {
		if c, ok := tier(doc); ok {
			return c, true
		}
	}
	return domain.PriceCandidate{}, false
}

func (e *PriceExtractor) fromStructuredData(doc document.Document) (domain.PriceCandidate, bool) {
	for _, body := range doc.Scripts(jsonLDType) {
		if strings.TrimSpace(body) == "" {
			continue
		}
		root, err := parseJSONLD(body)
		if err != nil {
			continue
		}
		for _, raw := range offerPrices(root) {
			if c, ok := candidate(raw, domain.StructuredData); ok {
				return c, true
			}
		}
	}
	return domain.PriceCandidate{}, false
}

func (e *PriceExtractor) fromMetaTags(doc document.Document) (domain.PriceCandidate, bool) {
	for _, probe := range e.metaProbes {
		els := doc.Select(probe.Selector)
		if len(els) == 0 {
			continue
		}
		raw, ok := els[0].Attr(probe.Attr)
		if !ok || raw == "" {
			continue
		}
		if c, ok := candidate(raw, domain.MetaTag); ok {
			return c, true
		}
	}
	return domain.PriceCandidate{}, false
}

func (e *PriceExtractor) fromSelectors(doc document.Document) (domain.PriceCandidate, bool) {
	for _, sel := range e.selectors {
		for _, el := range doc.Select(sel) {
			if c, ok := candidate(contentOrText(el), domain.Selector); ok {
				return c, true
			}
		}
	}
	return domain.PriceCandidate{}, false
}

func (e *PriceExtractor) fromText(doc document.Document) (domain.PriceCandidate, bool) {
	text := doc.Text()
	for _, re := range e.patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if c, ok := candidate(m[1], domain.RegexFallback); ok {
				return c, true
			}
		}
	}
	return domain.PriceCandidate{}, false
}

func candidate(raw string, tier domain.PriceTier) (domain.PriceCandidate, bool) {
	v, ok := normalize.ValidPrice(raw)
	if !ok {
		return domain.PriceCandidate{}, false
	}
	return domain.PriceCandidate{RawText: raw, Tier: tier, Value: v}, true
}

func contentOrText(el document.Element) string {
	if content, ok := el.Attr("content"); ok && content != "" {
		return content
	}
	return el.Text()
}
