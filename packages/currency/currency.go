// Package currency maps a product URL to the currency its marketplace prices in.
package currency

import (
	"fmt"
	"os"
	"strings"

	"github.com/titanous/json5"

	"pricealert/packages/domain"
)

type Rule struct {
	Domains []string `json:"domains"`
	Code    string   `json:"currency"`
	Symbol  string   `json:"symbol"`
}

// DefaultRules is matched top to bottom; the first rule containing a matching
// domain wins, so entries must only ever be appended.
var DefaultRules = []Rule{
	{
		Domains: []string{
			"amazon.in", "flipkart.com", "myntra.com", "ajio.com", "meesho.com", "snapdeal.com",
			"tatacliq.com", "reliancedigital.in", "jiomart.com", "nykaa.com", "croma.com",
			"vijaysales.com", "shopsy.in", "firstcry.com", "pepperfry.com", "1mg.com",
			"tata1mg.com", "netmeds.com", "bigbasket.com",
		},
		Code:   "INR",
		Symbol: "₹",
	},
	{Domains: []string{"amazon.co.uk"}, Code: "GBP", Symbol: "£"},
	{Domains: []string{"amazon.com", "ebay.com", "walmart.com", "bestbuy.com", "target.com"}, Code: "USD", Symbol: "$"},
}

var Fallback = domain.CurrencyProfile{Code: "USD", Symbol: "$"}

type Classifier struct {
	rules    []Rule
	fallback domain.CurrencyProfile
}

// NewClassifier copies rules so later changes to the caller's slice are not observed.
func NewClassifier(rules []Rule) *Classifier {
	own := make([]Rule, 0, len(rules))
	for _, r := range rules {
		domains := make([]string, 0, len(r.Domains))
		for _, d := range r.Domains {
			d = strings.ToLower(strings.TrimSpace(d))
			if d != "" {
				domains = append(domains, d)
			}
		}
		own = append(own, Rule{Domains: domains, Code: r.Code, Symbol: r.Symbol})
	}
	return &Classifier{rules: own, fallback: Fallback}
}

func Default() *Classifier {
	return NewClassifier(DefaultRules)
}

// Classify matches by substring containment against the lower-cased URL.
func (c *Classifier) Classify(rawURL string) domain.CurrencyProfile {
	lower := strings.ToLower(rawURL)
	for _, rule := range c.rules {
		for _, d := range rule.Domains {
			if strings.Contains(lower, d) {
				return domain.CurrencyProfile{Code: rule.Code, Symbol: rule.Symbol}
			}
		}
	}
	return c.fallback
}

type rulesFile struct {
	Rules []Rule `json:"rules"`
}

// LoadRules reads extra rules from a JSON5 file (comments and trailing commas
// allowed) and returns them appended after DefaultRules, so the built-in
// precedence is preserved.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read currency rules file: %w", err)
	}
	var f rulesFile
	if err := json5.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal currency rules file: %w", err)
	}
	for i, r := range f.Rules {
		if r.Code == "" || len(r.Domains) == 0 {
			return nil, fmt.Errorf("currency rule %d in %s needs a currency and at least one domain", i, path)
		}
	}
	rules := make([]Rule, 0, len(DefaultRules)+len(f.Rules))
	rules = append(rules, DefaultRules...)
	rules = append(rules, f.Rules...)
	return rules, nil
}
