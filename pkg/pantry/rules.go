package pantry

import "regexp"

// Category names used across the pipeline and the coarse keyword fallback.
const (
	CategoryProduce   = "produce"
	CategoryDairy     = "dairy"
	CategoryMeat      = "meat"
	CategoryPantry    = "pantry"
	CategoryHousehold = "household"
	CategoryFrozen    = "frozen"
	CategorySnacks    = "snacks"
)

// householdDays makes paper goods and cleaners effectively never expire.
const householdDays = 36500

// defaultShelfLifeDays applies when nothing matches at all.
const defaultShelfLifeDays = 365

// ShelfLifeRule maps a recognized product pattern to days until spoilage.
// The table is ordered: first match wins, so specific products (ground meat)
// shadow their generic category (meat).
type ShelfLifeRule struct {
	Pattern  *regexp.Regexp
	Days     int
	Category string
}

// ShelfLifeRules is consulted before the coarse keyword table. Specific rules
// encode domain knowledge a keyword list cannot: ground meat spoils much
// faster than "meat" in general.
var ShelfLifeRules = []ShelfLifeRule{
	{regexp.MustCompile(`(?i)\b(ground\s+(beef|pork|turkey|chicken)|mince[d]?|hamburger)\b`), 2, CategoryMeat},
	{regexp.MustCompile(`(?i)\b(fish|salmon|tuna|shrimp|seafood|cod|tilapia)\b`), 2, CategoryMeat},
	{regexp.MustCompile(`(?i)\b(chicken|poultry|turkey\s+breast)\b`), 3, CategoryMeat},
	{regexp.MustCompile(`(?i)\b(berr(y|ies)|strawberr|raspberr|blueberr)\w*`), 3, CategoryProduce},
	{regexp.MustCompile(`(?i)\b(lettuce|spinach|salad|arugula|greens)\b`), 4, CategoryProduce},
	{regexp.MustCompile(`(?i)\b(banana|avocado)s?\b`), 5, CategoryProduce},
	{regexp.MustCompile(`(?i)\b(fresh\s+)?bread|baguette|bun[s]?\b`), 5, CategoryPantry},
	{regexp.MustCompile(`(?i)\bmilk\b`), 7, CategoryDairy},
	{regexp.MustCompile(`(?i)\b(deli|sliced)\s+(ham|turkey|meat)\b`), 5, CategoryMeat},
	{regexp.MustCompile(`(?i)\byogh?urt\b`), 14, CategoryDairy},
	{regexp.MustCompile(`(?i)\beggs?\b`), 28, CategoryDairy},
	{regexp.MustCompile(`(?i)\b(cheddar|parmesan|gouda|hard\s+cheese)\b`), 30, CategoryDairy},
}

// categoryKeywords is the coarse fallback: keyword hit decides category and
// its default shelf life.
var categoryKeywords = []struct {
	Category string
	Days     int
	Words    []string
}{
	{CategoryProduce, 7, []string{"apple", "orange", "grape", "tomato", "onion", "potato", "carrot", "pepper", "broccoli", "fruit", "vegetable", "produce"}},
	{CategoryDairy, 10, []string{"cheese", "butter", "cream", "dairy", "kefir"}},
	{CategoryMeat, 3, []string{"beef", "pork", "steak", "sausage", "bacon", "meat", "lamb"}},
	{CategoryFrozen, 180, []string{"frozen", "ice cream", "pizza", "popsicle"}},
	{CategorySnacks, 90, []string{"chips", "cookie", "candy", "chocolate", "popcorn", "cracker", "snack"}},
	{CategoryHousehold, householdDays, []string{"paper towel", "toilet", "tissue", "detergent", "soap", "shampoo", "cleaner", "bleach", "foil", "bags"}},
	{CategoryPantry, 365, []string{"rice", "pasta", "flour", "sugar", "beans", "cereal", "oil", "sauce", "soup", "can", "coffee", "tea"}},
}
