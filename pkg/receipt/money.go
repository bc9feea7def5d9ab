package receipt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// priceRE matches price-shaped substrings: 12.99, 1.234,56, $8.99, 8.80-.
var priceRE = regexp.MustCompile(`[\$€£]?\d{1,4}(?:[.,]\d{3})*[.,]\d{2}-?`)

// ParseMoney normalizes a locale-ambiguous money string to cents. Either `.`
// or `,` may be the decimal separator; the other groups thousands:
// "12,99" -> 1299, "1.234,56" -> 123456, "1,234.56" -> 123456.
func ParseMoney(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasSuffix(s, "-") {
		neg = true
		s = strings.TrimSuffix(s, "-")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	}
	s = strings.Trim(s, "$€£ \t")
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrPriceParse)
	}
	lastSep := strings.LastIndexAny(s, ".,")
	var whole, frac string
	if lastSep == -1 {
		whole, frac = s, "00"
	} else {
		tail := s[lastSep+1:]
		switch len(tail) {
		case 1, 2:
			whole, frac = s[:lastSep], tail
			if len(frac) == 1 {
				frac += "0"
			}
		case 3:
			// three digits after the last separator: thousands grouping
			whole, frac = s, "00"
		default:
			return 0, fmt.Errorf("%w: %q", ErrPriceParse, s)
		}
	}
	digits := onlyDigits(whole)
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrPriceParse, s)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrPriceParse, s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrPriceParse, s)
	}
	cents := n*100 + f
	if neg {
		cents = -cents
	}
	return cents, nil
}

// FormatMoney renders cents as a plain decimal string for review reasons.
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
