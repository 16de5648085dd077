package extractor

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pricealert/packages/document"
	"pricealert/packages/domain"
)

const (
	minNameLength = 6
	FallbackName  = "Product"
)

var (
	NameSelectors = []string{
		"#productTitle", // Amazon
		"h1.B_NuCI",     // Flipkart
		"h1.pdp-name",   // Myntra-like
		`h1[itemprop="name"]`,
		`meta[property="og:title"]`,
		`meta[name="twitter:title"]`,
		`meta[name="title"]`,
		"h1",
	}

	NoisePhrases = []string{
		"add to your order",
		"amazon.in",
		"amazon.com",
		"flipkart.com",
		"shop online",
		"buy online",
		"best prices in india",
	}

	marketplaceSuffixRe = regexp.MustCompile(`(?i)\s*[-|]\s*(?:Amazon|Amazon\.in|Flipkart|Myntra|Ajio|Meesho|Snapdeal|Tata CLiQ|Reliance Digital|Nykaa|Croma|JioMart|Vijay Sales|Shopsy|FirstCry|Pepperfry|Tata 1mg|BigBasket)\s*$`)
	bestPriceSuffixRe   = regexp.MustCompile(`(?i)\s*online\s+at\s+best\s+prices?\s+in\s+india\.?\s*$`)
	slugSeparatorRe     = regexp.MustCompile(`[-_]+`)
	slugQueryRe         = regexp.MustCompile(`\?.*$`)
)

type NameExtractor struct {
	selectors []string
	noise     []string
}

func NewNameExtractor() *NameExtractor {
	return &NameExtractor{selectors: slices.Clone(NameSelectors), noise: slices.Clone(NoisePhrases)}
}

// Extract never returns an empty string: when the page offers nothing usable
// it falls back to the URL slug and then to FallbackName.
func (e *NameExtractor) Extract(doc document.Document, rawURL string) string {
	for _, c := range e.candidates(doc) {
		name := cleanName(c.RawText)
		if e.acceptable(name) {
			return name
		}
	}
	if slug := slugName(rawURL); utf8.RuneCountInString(slug) >= minNameLength {
		return slug
	}
	return FallbackName
}

func (e *NameExtractor) candidates(doc document.Document) []domain.NameCandidate {
	var out []domain.NameCandidate
	for rank, sel := range e.selectors {
		for _, el := range doc.Select(sel) {
			if text := strings.TrimSpace(contentOrText(el)); text != "" {
				out = append(out, domain.NameCandidate{RawText: text, SourceRank: rank})
			}
		}
	}
	if title, ok := doc.Title(); ok {
		out = append(out, domain.NameCandidate{RawText: title, SourceRank: len(e.selectors)})
	}
	return out
}

func (e *NameExtractor) acceptable(name string) bool {
	if utf8.RuneCountInString(name) < minNameLength {
		return false
	}
	lowered := strings.ToLower(name)
	for _, phrase := range e.noise {
		if strings.Contains(lowered, phrase) {
			return false
		}
	}
	return true
}

func cleanName(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	name = strings.TrimSpace(marketplaceSuffixRe.ReplaceAllString(name, ""))
	name = strings.TrimSpace(bestPriceSuffixRe.ReplaceAllString(name, ""))
	return name
}

// slugName turns ".../wireless-mouse-2000?ref=x" into "Wireless Mouse 2000".
func slugName(rawURL string) string {
	segment := rawURL
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		segment = rawURL[i+1:]
	}
	slug := strings.TrimSpace(slugSeparatorRe.ReplaceAllString(segment, " "))
	slug = strings.TrimSpace(slugQueryRe.ReplaceAllString(slug, ""))
	if utf8.RuneCountInString(slug) < minNameLength {
		return slug
	}
	return cases.Title(language.Und).String(slug)
}
