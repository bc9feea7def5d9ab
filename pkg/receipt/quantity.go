package receipt

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	qtyAtRE     = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{1,3})?)\s*@\s*$`)
	bareAtRE    = regexp.MustCompile(`@\s*$`)
	timesTailRE = regexp.MustCompile(`(?:^|\s)(\d{1,3})\s*[xX]\s*$`)
	timesHeadRE = regexp.MustCompile(`^\s*(\d{1,3})\s*[xX]\s+`)
	timesRevRE  = regexp.MustCompile(`(?:^|\s)[xX]\s*(\d{1,3})\s*$`)
	weightRE    = regexp.MustCompile(`(?i)(\d{1,3}(?:[.,]\d{1,3})?)\s*(kg|g|lb|lbs|oz|ml|l)\.?\s*$`)
)

// quantity holds what was recognized from a line's multiplier annotations.
type quantity struct {
	qty       float64
	unit      string
	unitPrice *int64
}

// extractQuantity inspects the name portion of an item line (the text before
// its first price) together with the line's price tokens. Priority order:
// "N @ price", "Nx"/"xN", "@price", then a weight/volume annotation. Only the
// explicit multiplier forms may set qty > 1 with a derived unit price.
func extractQuantity(namePart string, prices []string, total int64) (quantity, string) {
	q := quantity{qty: 1}

	if m := qtyAtRE.FindStringSubmatch(namePart); m != nil && len(prices) >= 2 {
		q.qty = parseQtyNumber(m[1])
		if up, err := ParseMoney(prices[0]); err == nil {
			q.unitPrice = &up
		}
		return q, strings.TrimSpace(qtyAtRE.ReplaceAllString(namePart, ""))
	}

	for _, re := range []*regexp.Regexp{timesTailRE, timesHeadRE, timesRevRE} {
		if m := re.FindStringSubmatch(namePart); m != nil {
			q.qty = parseQtyNumber(m[1])
			if q.qty > 0 {
				up := int64(math.Round(float64(total) / q.qty))
				q.unitPrice = &up
			}
			return q, strings.TrimSpace(re.ReplaceAllString(namePart, " "))
		}
	}

	if bareAtRE.MatchString(namePart) && len(prices) >= 2 {
		if up, err := ParseMoney(prices[0]); err == nil {
			q.unitPrice = &up
		}
		return q, strings.TrimSpace(bareAtRE.ReplaceAllString(namePart, ""))
	}

	if m := weightRE.FindStringSubmatch(namePart); m != nil {
		q.qty = parseQtyNumber(m[1])
		q.unit = strings.ToLower(m[2])
		return q, strings.TrimSpace(weightRE.ReplaceAllString(namePart, ""))
	}

	return q, namePart
}

func parseQtyNumber(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 1
	}
	return v
}
