package pantry

import (
	"strings"
	"unicode"
)

// groceryWords earn a small confidence bonus: a name containing one is very
// unlikely to be OCR garbage.
var groceryWords = []string{
	"milk", "bread", "eggs", "cheese", "chicken", "beef", "apple", "banana",
	"rice", "pasta", "butter", "yogurt", "coffee", "juice", "water", "salad",
}

// NameConfidence scores how trustworthy a recognized item name looks.
// High baseline, penalties for the classic OCR noise shapes, clamped to
// [0.1, 1.0].
func NameConfidence(name string) float64 {
	score := 0.9

	runes := []rune(name)
	if len(runes) < 3 {
		score -= 0.3
	}

	var nonAlnum, letters int
	digitRun, maxDigitRun := 0, 0
	upperRun, maxUpperRun := 0, 0
	for _, r := range runes {
		switch {
		case unicode.IsDigit(r):
			digitRun++
			upperRun = 0
		case unicode.IsLetter(r):
			letters++
			digitRun = 0
			if unicode.IsUpper(r) {
				upperRun++
			} else {
				upperRun = 0
			}
		default:
			if r != ' ' {
				nonAlnum++
			}
			digitRun = 0
			upperRun = 0
		}
		if digitRun > maxDigitRun {
			maxDigitRun = digitRun
		}
		if upperRun > maxUpperRun {
			maxUpperRun = upperRun
		}
	}
	if len(runes) > 0 && float64(nonAlnum)/float64(len(runes)) > 0.2 {
		score -= 0.25
	}
	if maxDigitRun >= 4 {
		score -= 0.2
	}
	if maxUpperRun >= 12 {
		score -= 0.1
	}

	low := strings.ToLower(name)
	for _, w := range groceryWords {
		if strings.Contains(low, w) {
			score += 0.05
			break
		}
	}

	if score < 0.1 {
		return 0.1
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
