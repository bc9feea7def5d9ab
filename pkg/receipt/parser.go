package receipt

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	voidRE        = regexp.MustCompile(`(?i)\bvoid(ed)?\b|\bannul\b|\bstorno\b`)
	discountRE    = regexp.MustCompile(`(?i)^\s*[\d\s]*(discount|coupon|rabais|rabatt|promo|savings?|rebate|cpn|md\b|tpd\b)`)
	subtotalRE    = regexp.MustCompile(`(?i)\bsub\s*-?\s*total\b|\bsous-total\b`)
	taxLabelRE    = regexp.MustCompile(`(?i)^\s*(tax|taxes|hst|gst|pst|qst|tps|tvq|vat|tva|iva)\b`)
	totalLabelRE  = regexp.MustCompile(`(?i)\btotal\b`)
	isoDateRE     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRE   = regexp.MustCompile(`\b(\d{1,2})[/.](\d{1,2})[/.](\d{2,4})\b`)
	letterRunRE = regexp.MustCompile(`[A-Za-z]{3,}`)
)

// Explicit codes win over bare symbols when a line carries both
// (e.g. "CAD $12.99"). Codes require word boundaries so AVOCADO is not CAD.
var (
	currencyCodeRE  = regexp.MustCompile(`\b(CAD|USD|EUR|GBP)\b`)
	currencySymbols = []struct{ marker, code string }{
		{"$", "USD"},
		{"€", "EUR"},
		{"£", "GBP"},
	}
)

// Parse turns line-delimited OCR text into a ParsedReceipt. Line-level
// problems are recovered locally; only a receipt with zero items is fatal.
func Parse(text string) (*Parsed, error) {
	p := &Parsed{RawText: text}

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}

	// Void pass first: a void marker drops its own line and the one before it,
	// before any other classification sees them.
	keep := make([]bool, len(lines))
	for i := range keep {
		keep[i] = true
	}
	for i, l := range lines {
		if voidRE.MatchString(l) {
			keep[i] = false
			if i > 0 {
				keep[i-1] = false
			}
		}
	}

	// lines consumed by a label whose price sits on the following line
	consumed := make(map[int]bool)

	for i, line := range lines {
		if !keep[i] || consumed[i] {
			continue
		}
		line = fixDigitConfusions(line)

		if p.Date == nil {
			if d := parseDate(line); d != nil {
				p.Date = d
			}
		}
		if p.Currency == "" {
			p.Currency = detectCurrency(line)
		}

		prices := priceRE.FindAllString(line, -1)
		loc := priceRE.FindStringIndex(line)

		// a trailing-minus or keyword discount wins over the totals labels so
		// "TOTAL SAVINGS 8.80-" is never read as the declared total
		if disc, ok := parseDiscount(line, prices); ok {
			p.Discounts = append(p.Discounts, disc)
			continue
		}

		// totals labels before item parsing so "TOTAL 274.36" never
		// becomes an item
		if subtotalRE.MatchString(line) {
			if v, next, ok := priceAfter(line, lines, i, subtotalRE); ok {
				if next {
					consumed[i+1] = true
				}
				if p.Subtotal == nil {
					p.Subtotal = &v
				}
			}
			continue
		}
		if taxLabelRE.MatchString(line) {
			if v, next, ok := priceAfter(line, lines, i, taxLabelRE); ok {
				if next {
					consumed[i+1] = true
				}
				if p.TaxTotal == nil {
					p.TaxTotal = &v
				} else {
					sum := *p.TaxTotal + v // multiple tax lines accumulate
					p.TaxTotal = &sum
				}
			}
			continue
		}
		if totalLabelRE.MatchString(line) {
			if v, next, ok := priceAfter(line, lines, i, totalLabelRE); ok {
				if next {
					consumed[i+1] = true
				}
				if p.Total == nil {
					p.Total = &v
				}
			}
			continue
		}

		if len(prices) == 0 {
			// vendor header: first real word line before any item
			if p.Vendor == "" && len(p.Items) == 0 && letterRunRE.MatchString(line) {
				p.Vendor = strings.TrimSpace(line)
			}
			continue
		}

		item, err := parseItem(line, prices, loc[0])
		if err != nil {
			log.Printf("receipt: skipping line %q: %v", line, err)
			continue
		}
		p.Items = append(p.Items, item)
	}

	if len(p.Items) == 0 {
		return nil, fmt.Errorf("parse receipt: %w", ErrNoItems)
	}
	reconcile(p)
	return p, nil
}

// parseItem builds an Item from a line whose rightmost price is the total and
// whose text before the first price is the candidate name.
func parseItem(line string, prices []string, firstPriceIdx int) (Item, error) {
	totalTok := prices[len(prices)-1]
	total, err := ParseMoney(totalTok)
	if err != nil {
		return Item{}, err
	}
	namePart := line[:firstPriceIdx]
	q, namePart := extractQuantity(namePart, prices, total)
	name := cleanName(namePart)

	item := Item{
		Name:       name,
		RawName:    strings.TrimSpace(line),
		Qty:        q.qty,
		Unit:       q.unit,
		UnitPrice:  q.unitPrice,
		PriceTotal: total,
	}
	if len(name) < 2 {
		item.flag("item name too short to trust")
	}
	if total <= 0 {
		item.flag(fmt.Sprintf("non-positive price %s", FormatMoney(total)))
	}
	return item, nil
}

// parseDiscount recognizes a coupon/markdown line by keyword prefix or a
// trailing-minus price, forcing the amount negative.
func parseDiscount(line string, prices []string) (Discount, bool) {
	if len(prices) == 0 {
		return Discount{}, false
	}
	last := prices[len(prices)-1]
	trailingMinus := strings.HasSuffix(last, "-")
	if !trailingMinus && !discountRE.MatchString(line) {
		return Discount{}, false
	}
	amt, err := ParseMoney(last)
	if err != nil {
		return Discount{}, false
	}
	if amt > 0 {
		amt = -amt
	}
	idx := strings.LastIndex(line, last)
	label := cleanName(line[:idx])
	if label == "" {
		label = "discount"
	}
	return Discount{Label: label, Amount: amt}, true
}

// priceAfter finds the nearest price following a label: on the label's own
// line after the match, otherwise on the next line when that line is nothing
// but a price. next reports that the following line was used, so the caller
// must not re-parse it as an item.
func priceAfter(line string, lines []string, i int, label *regexp.Regexp) (v int64, next, ok bool) {
	loc := label.FindStringIndex(line)
	tail := line[loc[1]:]
	if m := priceRE.FindString(tail); m != "" {
		if v, err := ParseMoney(m); err == nil {
			return v, false, true
		}
	}
	if i+1 < len(lines) {
		follow := fixDigitConfusions(lines[i+1])
		// a line with real words is an item line, not the label's amount
		if m := priceRE.FindString(follow); m != "" && !letterRunRE.MatchString(follow) {
			if v, err := ParseMoney(m); err == nil {
				return v, true, true
			}
		}
	}
	return 0, false, false
}

// reconcile checks summed line amounts against the declared subtotal and
// total within a 1% tolerance, flagging the receipt when they disagree.
func reconcile(p *Parsed) {
	var itemSum, discountSum int64
	for _, it := range p.Items {
		itemSum += it.PriceTotal
	}
	for _, d := range p.Discounts {
		discountSum += d.Amount
	}
	tax := int64(0)
	if p.TaxTotal != nil {
		tax = *p.TaxTotal
	}
	if p.Total != nil {
		calc := itemSum + discountSum + tax
		if diff := abs64(calc - *p.Total); diff*100 > abs64(*p.Total) {
			p.flag(fmt.Sprintf("calculated total %s differs from declared %s by %s",
				FormatMoney(calc), FormatMoney(*p.Total), FormatMoney(diff)))
		}
	}
	if p.Subtotal != nil {
		calc := itemSum + discountSum
		if diff := abs64(calc - *p.Subtotal); diff*100 > abs64(*p.Subtotal) {
			p.flag(fmt.Sprintf("calculated subtotal %s differs from declared %s by %s",
				FormatMoney(calc), FormatMoney(*p.Subtotal), FormatMoney(diff)))
		}
	}
}

func parseDate(line string) *time.Time {
	if m := isoDateRE.FindStringSubmatch(line); m != nil {
		if t, err := time.Parse("2006-01-02", m[0]); err == nil {
			return &t
		}
	}
	if m := slashDateRE.FindStringSubmatch(line); m != nil {
		a, b, y := m[1], m[2], m[3]
		if len(y) == 2 {
			y = "20" + y
		}
		// day-first when the leading number cannot be a month
		layout := "1/2/2006"
		if n, err := strconv.Atoi(a); err == nil && n > 12 {
			layout = "2/1/2006"
		}
		if t, err := time.Parse(layout, a+"/"+b+"/"+y); err == nil {
			return &t
		}
	}
	return nil
}

func detectCurrency(line string) string {
	if m := currencyCodeRE.FindString(line); m != "" {
		return m
	}
	for _, s := range currencySymbols {
		if strings.Contains(line, s.marker) {
			return s.code
		}
	}
	return ""
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
