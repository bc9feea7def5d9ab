package receipt

import (
	"regexp"
	"strings"
)

// ConfusionPairs maps characters tesseract commonly misreads for digits.
// The correction applies only next to a digit or decimal separator, so
// legitimate words are left alone. Heuristic and tunable, not a contract.
var ConfusionPairs = map[byte]byte{
	'O': '0', 'o': '0',
	'l': '1', 'I': '1',
	'S': '5', 's': '5',
	'B': '8',
}

// Abbreviations expands common store shorthand in item names.
var Abbreviations = map[string]string{
	"ORG":  "ORGANIC",
	"GRND": "GROUND",
	"CHKN": "CHICKEN",
	"WHL":  "WHOLE",
	"CHS":  "CHEESE",
	"VEG":  "VEGETABLE",
	"YOG":  "YOGURT",
	"BNLS": "BONELESS",
}

var (
	leadingSKURE  = regexp.MustCompile(`^\s*\d{4,}\s+`)
	trailingSKURE = regexp.MustCompile(`\s+\d{5,}\s*$`)
	inlineCodeRE  = regexp.MustCompile(`#\d+|\bPLU\s*\d+\b|\bSKU\s*\d+\b`)
	promoTailRE   = regexp.MustCompile(`(?i)\s+(PROMO|SPECIAL|SALE|CLUB\s*PRICE|MEGA\s*SALE|WAS\s+[\d.,]+)\s*$`)
	junkEdgeRE    = regexp.MustCompile(`^[\s*@#:\-]+|[\s*@#:\-]+$`)
)

// fixDigitConfusions corrects letter/digit OCR confusions, but only where the
// confused character sits immediately next to a digit or next to a decimal
// separator that itself touches a digit. "12,9S" becomes "12,95"; "SOUP"
// stays "SOUP".
func fixDigitConfusions(s string) string {
	b := []byte(s)
	isDigit := func(i int) bool { return i >= 0 && i < len(b) && b[i] >= '0' && b[i] <= '9' }
	isSep := func(i int) bool { return i >= 0 && i < len(b) && (b[i] == '.' || b[i] == ',') }
	digitAdjacent := func(i int) bool {
		if isDigit(i-1) || isDigit(i+1) {
			return true
		}
		if isSep(i-1) && isDigit(i-2) {
			return true
		}
		if isSep(i+1) && isDigit(i+2) {
			return true
		}
		return false
	}
	for i := range b {
		if rep, ok := ConfusionPairs[b[i]]; ok && digitAdjacent(i) {
			b[i] = rep
		}
	}
	return string(b)
}

// cleanName strips SKU/PLU codes and promo suffixes, collapses whitespace and
// expands known abbreviations.
func cleanName(raw string) string {
	s := leadingSKURE.ReplaceAllString(raw, "")
	s = trailingSKURE.ReplaceAllString(s, "")
	s = inlineCodeRE.ReplaceAllString(s, "")
	s = promoTailRE.ReplaceAllString(s, "")
	s = junkEdgeRE.ReplaceAllString(s, "")
	words := strings.Fields(s)
	for i, w := range words {
		if exp, ok := Abbreviations[strings.ToUpper(w)]; ok {
			words[i] = exp
		}
	}
	return strings.Join(words, " ")
}
