package pantry

import (
	"testing"
	"time"

	"pantryscan/pkg/receipt"
)

func TestClassifySpecificRuleShadowsKeyword(t *testing.T) {
	cat, days := Classify("ORGANIC GROUND BEEF")
	if cat != CategoryMeat || days != 2 {
		t.Fatalf("ground beef: got %s/%d, want meat/2", cat, days)
	}
	// plain beef falls through to the coarse keyword table
	cat, days = Classify("BEEF ROAST")
	if cat != CategoryMeat || days != 3 {
		t.Fatalf("beef roast: got %s/%d, want meat/3", cat, days)
	}
}

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		name string
		cat  string
		days int
	}{
		{"WHOLE MILK 2L", CategoryDairy, 7},
		{"GREEK YOGURT", CategoryDairy, 14},
		{"LARGE EGGS 12CT", CategoryDairy, 28},
		{"SOUR CREAM", CategoryDairy, 10},
		{"ATLANTIC SALMON", CategoryMeat, 2},
		{"STRAWBERRIES", CategoryProduce, 3},
		{"BABY SPINACH", CategoryProduce, 4},
		{"BANANAS", CategoryProduce, 5},
		{"FRENCH BAGUETTE", CategoryPantry, 5},
		{"PAPER TOWEL BOUNTY", CategoryHousehold, householdDays},
		{"FROZEN PIZZA", CategoryFrozen, 180},
		{"DARK CHOCOLATE", CategorySnacks, 90},
		{"BASMATI RICE", CategoryPantry, 365},
	}
	for _, tc := range cases {
		cat, days := Classify(tc.name)
		if cat != tc.cat || days != tc.days {
			t.Errorf("%q: got %s/%d, want %s/%d", tc.name, cat, days, tc.cat, tc.days)
		}
	}
}

func TestClassifyUnknownDefaultsToPantry(t *testing.T) {
	cat, days := Classify("UNKNOWN WIDGET")
	if cat != CategoryPantry || days != defaultShelfLifeDays {
		t.Fatalf("got %s/%d, want pantry default", cat, days)
	}
}

func TestCategorizeUsesPurchaseDate(t *testing.T) {
	purchased := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	items := []receipt.Item{{Name: "WHOLE MILK", PriceTotal: 589}}
	out := Categorize(items, &purchased)
	if len(out) != 1 {
		t.Fatalf("got %d items", len(out))
	}
	want := time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)
	if !out[0].ExpiresOn.Equal(want) {
		t.Fatalf("expires %v, want %v", out[0].ExpiresOn, want)
	}
	if out[0].Category != CategoryDairy || out[0].Item.Category != CategoryDairy {
		t.Fatalf("category not propagated: %+v", out[0])
	}
}

func TestCategorizeMissingDateFallsBackToNow(t *testing.T) {
	before := time.Now()
	out := Categorize([]receipt.Item{{Name: "BANANAS"}}, nil)
	if got := out[0].ExpiresOn; got.Before(before.AddDate(0, 0, 4)) {
		t.Fatalf("expiry %v not anchored on now", got)
	}
}

func TestNameConfidenceShapes(t *testing.T) {
	clean := NameConfidence("WHOLE MILK")
	garbage := NameConfidence("%#@!&*")
	digits := NameConfidence("X9834721 Q")
	if clean < 0.9 {
		t.Fatalf("clean grocery name scored %v", clean)
	}
	if garbage >= clean {
		t.Fatalf("garbage %v should score below clean %v", garbage, clean)
	}
	if digits >= clean {
		t.Fatalf("digit-run name %v should score below clean %v", digits, clean)
	}
	if short := NameConfidence("X"); short >= clean {
		t.Fatalf("one-letter name %v should score below clean %v", short, clean)
	}
	for _, n := range []string{"", "#@!1", "WHOLE MILK", "X"} {
		if v := NameConfidence(n); v < 0.1 || v > 1.0 {
			t.Fatalf("%q: confidence %v outside [0.1,1.0]", n, v)
		}
	}
}
