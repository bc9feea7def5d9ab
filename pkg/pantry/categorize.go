package pantry

import (
	"strings"
	"time"

	"pantryscan/pkg/receipt"
)

// CategorizedItem is a parsed item enriched with its grocery category, a
// predicted spoilage date, and a confidence score for the recognized name.
type CategorizedItem struct {
	receipt.Item
	Category      string    `json:"category"`
	ExpiresOn     time.Time `json:"expires_on"`
	OCRConfidence float64   `json:"ocr_confidence"`
}

// Classify resolves a category and shelf life for an item name: the ordered
// specific rules first, then the coarse keyword table, then the pantry
// default.
func Classify(name string) (category string, days int) {
	for _, r := range ShelfLifeRules {
		if r.Pattern.MatchString(name) {
			return r.Category, r.Days
		}
	}
	low := strings.ToLower(name)
	for _, ck := range categoryKeywords {
		for _, w := range ck.Words {
			if strings.Contains(low, w) {
				return ck.Category, ck.Days
			}
		}
	}
	return CategoryPantry, defaultShelfLifeDays
}

// Categorize enriches parsed items with category, expiry and a name
// confidence. A missing or unparsable purchase date falls back to now.
func Categorize(items []receipt.Item, purchased *time.Time) []CategorizedItem {
	base := time.Now()
	if purchased != nil && !purchased.IsZero() {
		base = *purchased
	}
	out := make([]CategorizedItem, 0, len(items))
	for _, it := range items {
		category, days := Classify(it.Name)
		ci := CategorizedItem{
			Item:          it,
			Category:      category,
			ExpiresOn:     base.AddDate(0, 0, days),
			OCRConfidence: NameConfidence(it.Name),
		}
		ci.Item.Category = category
		out = append(out, ci)
	}
	return out
}
