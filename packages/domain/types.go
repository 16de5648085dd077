// Package domain
package domain

import "time"

type PriceTier int

const (
	StructuredData PriceTier = iota
	MetaTag
	Selector
	RegexFallback
)

func (t PriceTier) String() string {
	switch t {
	case StructuredData:
		return "structured_data"
	case MetaTag:
		return "meta_tag"
	case Selector:
		return "selector"
	case RegexFallback:
		return "regex_fallback"
	default:
		return "unknown"
	}
}

type ExtractionRequest struct {
	URL string `json:"url"`
}

type CurrencyProfile struct {
	Code   string
	Symbol string
}

type PriceCandidate struct {
	RawText string
	Tier    PriceTier
	Value   float64
}

type NameCandidate struct {
	RawText    string
	SourceRank int
}

type ExtractionResult struct {
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	CurrencySymbol string  `json:"currencySymbol"`
	ProductName    string  `json:"productName"`
	TestMode       bool    `json:"isTestMode,omitempty"`
}

type FetchedPage struct {
	StatusCode int
	FinalURL   string
	Body       []byte
	// Truncated is set when the body was cut at the fetcher's size cap.
	Truncated bool
}

type Tracker struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"-"`
	URL            string     `db:"url" json:"url"`
	ProductName    string     `db:"product_name" json:"productName"`
	CurrentPrice   float64    `db:"current_price" json:"currentPrice"`
	TargetPrice    float64    `db:"target_price" json:"targetPrice"`
	Currency       string     `db:"currency" json:"currency"`
	CurrencySymbol string     `db:"currency_symbol" json:"currencySymbol"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	CheckedAt      *time.Time `db:"checked_at" json:"checkedAt,omitempty"`
}

type PriceUpdate struct {
	TrackerID      int64
	Price          float64
	ProductName    string
	Currency       string
	CurrencySymbol string
}
