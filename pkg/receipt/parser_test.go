package receipt

import (
	"errors"
	"strings"
	"testing"
)

const warehouseReceipt = `COSTCO WHOLESALE
BIENVENUE / WELCOME
2024-03-15
963525 POULET ROTI CHICKEN 7.99
30669 KS ORG EGGS 24 CT 12.49
LAIT MILK 2L 5.89
BANANES BANANAS 2.18
1893402 SAUMON ATL SALMON 45.99
447283 PAIN BREAD 2x 18.97
YOGOURT GREC YOGURT 9.99
55512 FROMAGE CHEDDAR CHEESE 24.56
889900 PAPER TOWEL BOUNTY 99.99
CAFE COFFEE WHL BEAN 23.45
112233 CHOCOLAT CHOCOLATE 25.59
778899 SODA CASE 12.99
VOID 12.99
TPD/963525 2.80-
RABAIS MEMBRE COUPON 6.00-
SOUS-TOTAL/SUBTOTAL 268.29
TPS/GST 6.29
TOTAL 274.36
MERCI / THANK YOU`

func TestParseWarehouseClubReceipt(t *testing.T) {
	p, err := Parse(warehouseReceipt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Items) != 11 {
		for _, it := range p.Items {
			t.Logf("item: %q total=%d", it.Name, it.PriceTotal)
		}
		t.Fatalf("want 11 items (void block excluded), got %d", len(p.Items))
	}
	if len(p.Discounts) != 2 {
		t.Fatalf("want 2 discounts, got %d: %+v", len(p.Discounts), p.Discounts)
	}
	var discSum int64
	for _, d := range p.Discounts {
		if d.Amount >= 0 {
			t.Fatalf("discount %q amount %d not negative", d.Label, d.Amount)
		}
		discSum += d.Amount
	}
	if discSum != -880 {
		t.Fatalf("discounts sum %d, want -880", discSum)
	}
	if p.Subtotal == nil || *p.Subtotal != 26829 {
		t.Fatalf("subtotal = %v, want 26829", p.Subtotal)
	}
	if p.TaxTotal == nil || *p.TaxTotal != 629 {
		t.Fatalf("tax = %v, want 629", p.TaxTotal)
	}
	if p.Total == nil || *p.Total != 27436 {
		t.Fatalf("total = %v, want 27436", p.Total)
	}
	if p.NeedsReview {
		t.Fatalf("reconciliation within tolerance should not flag review: %v", p.ReviewReasons)
	}
	if p.Vendor != "COSTCO WHOLESALE" {
		t.Fatalf("vendor = %q", p.Vendor)
	}
	if p.Date == nil || p.Date.Format("2006-01-02") != "2024-03-15" {
		t.Fatalf("date = %v", p.Date)
	}
}

func TestVoidedLinesNeverAppear(t *testing.T) {
	p, err := Parse(warehouseReceipt)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, it := range p.Items {
		if voidRE.MatchString(it.Name) || strings.Contains(it.RawName, "SODA CASE") {
			t.Fatalf("voided line leaked into items: %+v", it)
		}
	}
	for _, d := range p.Discounts {
		if voidRE.MatchString(d.Label) {
			t.Fatalf("voided line leaked into discounts: %+v", d)
		}
	}
}

func TestIdenticalLinesStaySeparate(t *testing.T) {
	p, err := Parse("CORNER STORE\nGALA APPLES 8.99\nGALA APPLES 8.99")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Items) != 2 {
		t.Fatalf("identical lines must stay separate items, got %d", len(p.Items))
	}
	for _, it := range p.Items {
		if it.Qty != 1 {
			t.Fatalf("no explicit multiplier, qty must stay 1, got %v", it.Qty)
		}
	}
}

func TestReconciliationMismatchFlagsReview(t *testing.T) {
	text := "SHOP\nWIDGET 10.00\nTOTAL 50.00"
	p, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !p.NeedsReview {
		t.Fatal("40.00 delta on a 50.00 total must set needs_review")
	}
	if len(p.ReviewReasons) == 0 {
		t.Fatal("review reason missing")
	}
}

func TestTotalPriceOnFollowingLine(t *testing.T) {
	p, err := Parse("SHOP\nMILK 5.00\nTOTAL\n5.00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Items) != 1 {
		for _, it := range p.Items {
			t.Logf("item: %q total=%d", it.Name, it.PriceTotal)
		}
		t.Fatalf("price line after a bare TOTAL label must be consumed, got %d items", len(p.Items))
	}
	if p.Total == nil || *p.Total != 500 {
		t.Fatalf("total = %v, want 500", p.Total)
	}
	if p.NeedsReview {
		t.Fatalf("matching totals wrongly flagged: %v", p.ReviewReasons)
	}
}

func TestBareLabelNeverStealsItemLine(t *testing.T) {
	p, err := Parse("SHOP\nTOTAL\nMILK 5.00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Items) != 1 || p.Items[0].Name != "MILK" {
		t.Fatalf("item line after a bare label must stay an item: %+v", p.Items)
	}
	if p.Total != nil {
		t.Fatalf("bare label with no amount set total to %d", *p.Total)
	}
}

func TestDetectCurrencyDeterministic(t *testing.T) {
	if got := detectCurrency("CAD $12.99"); got != "CAD" {
		t.Fatalf("explicit code must win over symbol, got %q", got)
	}
	if got := detectCurrency("$8.99"); got != "USD" {
		t.Fatalf("symbol only: got %q", got)
	}
	if got := detectCurrency("TOTAL 8.99"); got != "" {
		t.Fatalf("no marker: got %q", got)
	}
	if got := detectCurrency("AVOCADO 2.50"); got != "" {
		t.Fatalf("code inside a word is not a marker, got %q", got)
	}
}

func TestMissingTotalSkipsOnlyThatCheck(t *testing.T) {
	p, err := Parse("SHOP\nWIDGET 10.00\nGADGET 5.00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Total != nil || p.NeedsReview {
		t.Fatalf("no declared total: nothing to reconcile, got review=%v", p.ReviewReasons)
	}
}

func TestNoItemsIsFatal(t *testing.T) {
	_, err := Parse("CORNER STORE\nTHANK YOU COME AGAIN")
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestQuantityForms(t *testing.T) {
	p, err := Parse(strings.Join([]string{
		"MARKET",
		"APPLES 3 @ 1.99 5.97",
		"YOGURT 2x 7.98",
		"CHIPS x2 7.98",
		"BANANAS @ 1.99 1.99",
		"SUGAR 500g 3.49",
	}, "\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(p.Items) != 5 {
		t.Fatalf("want 5 items, got %d", len(p.Items))
	}
	at := p.Items[0]
	if at.Qty != 3 || at.UnitPrice == nil || *at.UnitPrice != 199 || at.PriceTotal != 597 {
		t.Fatalf("N@price parsed wrong: %+v", at)
	}
	times := p.Items[1]
	if times.Qty != 2 || times.UnitPrice == nil || *times.UnitPrice != 399 || times.PriceTotal != 798 {
		t.Fatalf("Nx parsed wrong: %+v", times)
	}
	rev := p.Items[2]
	if rev.Qty != 2 || rev.UnitPrice == nil || *rev.UnitPrice != 399 {
		t.Fatalf("xN parsed wrong: %+v", rev)
	}
	bare := p.Items[3]
	if bare.Qty != 1 || bare.UnitPrice == nil || *bare.UnitPrice != 199 {
		t.Fatalf("@price parsed wrong: %+v", bare)
	}
	weight := p.Items[4]
	if weight.Qty != 500 || weight.Unit != "g" || weight.UnitPrice != nil {
		t.Fatalf("weight annotation parsed wrong: %+v", weight)
	}
}

func TestItemValidationFlags(t *testing.T) {
	p, err := Parse("SHOP\nX 5.00\nDECENT THING 5.00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !p.Items[0].NeedsReview {
		t.Fatal("single-character name must be flagged")
	}
	if p.Items[1].NeedsReview {
		t.Fatalf("valid item wrongly flagged: %v", p.Items[1].ReviewReasons)
	}
}

func TestDigitConfusionFixNextToDigits(t *testing.T) {
	if got := fixDigitConfusions("MILK 12,9S"); got != "MILK 12,95" {
		t.Fatalf("confusion next to digits not fixed: %q", got)
	}
	if got := fixDigitConfusions("TOMATO SOUP"); got != "TOMATO SOUP" {
		t.Fatalf("legitimate text corrupted: %q", got)
	}
	if got := fixDigitConfusions("1O.5O"); got != "10.50" {
		t.Fatalf("O-for-zero not fixed: %q", got)
	}
}

func TestNameCleanupStripsCodes(t *testing.T) {
	if got := cleanName("963525 ORG GRND BEEF #12 PROMO"); got != "ORGANIC GROUND BEEF" {
		t.Fatalf("cleanName = %q", got)
	}
}
