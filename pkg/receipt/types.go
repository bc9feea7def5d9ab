package receipt

import "time"

// Item is one purchased product line. Money fields are cents.
type Item struct {
	Name          string   `json:"name"`
	RawName       string   `json:"raw_name"`
	Qty           float64  `json:"qty"`
	Unit          string   `json:"unit,omitempty"`
	UnitPrice     *int64   `json:"unit_price,omitempty"`
	PriceTotal    int64    `json:"price_total"`
	Category      string   `json:"category,omitempty"`
	NeedsReview   bool     `json:"needs_review"`
	ReviewReasons []string `json:"review_reasons,omitempty"`
}

func (it *Item) flag(reason string) {
	it.NeedsReview = true
	it.ReviewReasons = append(it.ReviewReasons, reason)
}

// Discount is a coupon or markdown line. Amount is always negative cents.
type Discount struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// Parsed is the pipeline's durable output artifact. It is never mutated after
// Parse returns; corrections happen downstream of the review surface.
type Parsed struct {
	Vendor        string     `json:"vendor,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	Items         []Item     `json:"items"`
	Discounts     []Discount `json:"discounts,omitempty"`
	Subtotal      *int64     `json:"subtotal,omitempty"`
	TaxTotal      *int64     `json:"tax_total,omitempty"`
	Total         *int64     `json:"total,omitempty"`
	NeedsReview   bool       `json:"needs_review"`
	ReviewReasons []string   `json:"review_reasons,omitempty"`
	RawText       string     `json:"raw_text"`
}

func (p *Parsed) flag(reason string) {
	p.NeedsReview = true
	p.ReviewReasons = append(p.ReviewReasons, reason)
}
