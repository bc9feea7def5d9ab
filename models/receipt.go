package models

import (
	"strings"
	"time"

	"pantryscan/pkg/pantry"
	"pantryscan/pkg/receipt"
)

// Receipt is a fully parsed scan: header fields plus declared totals. All
// money amounts are in the smallest currency unit (cents).
type Receipt struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Vendor        string     `gorm:"size:255" json:"vendor"`
	PurchasedAt   *time.Time `gorm:"index" json:"purchased_at"`
	Currency      string     `gorm:"size:8" json:"currency"`
	Subtotal      *int64     `json:"subtotal"`
	TaxTotal      *int64     `json:"tax_total"`
	Total         *int64     `json:"total"`
	NeedsReview   bool       `gorm:"default:false;index" json:"needs_review"`
	ReviewReasons string     `gorm:"size:1024" json:"review_reasons,omitempty"`
	OCRConfidence float64    `json:"ocr_confidence"`
	Adjustments   string     `gorm:"size:512" json:"adjustments,omitempty"` // comma-joined preprocessing steps
	RawText       string     `gorm:"type:text" json:"-"`

	Items     []ReceiptItem     `gorm:"foreignKey:ReceiptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Discounts []ReceiptDiscount `gorm:"foreignKey:ReceiptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"discounts"`
}

// ReceiptItem is one purchased line with its categorization result.
type ReceiptItem struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ReceiptID     uint       `gorm:"index;not null" json:"-"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	RawName       string     `gorm:"size:255" json:"raw_name,omitempty"`
	Qty           float64    `gorm:"default:1" json:"qty"`
	Unit          string     `gorm:"size:16" json:"unit,omitempty"`
	UnitPrice     *int64     `json:"unit_price,omitempty"`
	PriceTotal    int64      `gorm:"not null" json:"price_total"`
	Category      string     `gorm:"size:32;index" json:"category"`
	ExpiresOn     *time.Time `gorm:"index" json:"expires_on,omitempty"`
	OCRConfidence float64    `json:"ocr_confidence"`
	NeedsReview   bool       `gorm:"default:false" json:"needs_review"`
	ReviewReasons string     `gorm:"size:512" json:"review_reasons,omitempty"`
}

// ReceiptDiscount is a coupon or markdown line. Amount is always negative.
type ReceiptDiscount struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	ReceiptID uint   `gorm:"index;not null" json:"-"`
	Label     string `gorm:"size:255" json:"label"`
	Amount    int64  `gorm:"not null" json:"amount"`
}

// NewReceipt maps one scan's parsed receipt and categorized items onto the
// persistence model. A single db.Create on the result writes the receipt with
// its items and discounts.
func NewReceipt(parsed *receipt.Parsed, items []pantry.CategorizedItem, conf float64, adjustments []string) *Receipt {
	r := &Receipt{
		Vendor:        parsed.Vendor,
		PurchasedAt:   parsed.Date,
		Currency:      parsed.Currency,
		Subtotal:      parsed.Subtotal,
		TaxTotal:      parsed.TaxTotal,
		Total:         parsed.Total,
		NeedsReview:   parsed.NeedsReview,
		ReviewReasons: strings.Join(parsed.ReviewReasons, "; "),
		OCRConfidence: conf,
		Adjustments:   strings.Join(adjustments, ","),
		RawText:       parsed.RawText,
	}
	for _, it := range items {
		exp := it.ExpiresOn
		row := ReceiptItem{
			Name:          it.Name,
			RawName:       it.RawName,
			Qty:           it.Qty,
			Unit:          it.Unit,
			UnitPrice:     it.UnitPrice,
			PriceTotal:    it.PriceTotal,
			Category:      it.Category,
			ExpiresOn:     &exp,
			OCRConfidence: it.OCRConfidence,
			NeedsReview:   it.Item.NeedsReview,
			ReviewReasons: strings.Join(it.Item.ReviewReasons, "; "),
		}
		if it.Item.NeedsReview {
			r.NeedsReview = true
		}
		r.Items = append(r.Items, row)
	}
	for _, d := range parsed.Discounts {
		r.Discounts = append(r.Discounts, ReceiptDiscount{Label: d.Label, Amount: d.Amount})
	}
	return r
}
