// internal/extract/count.go

package extract

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var suffixMultipliers = map[byte]int64{
	'k': 1_000,
	'm': 1_000_000,
	'b': 1_000_000_000,
}

// NormalizeCount parses a human readable magnitude such as "12.3K", "1,234" or
// "Views 2M" into an exact integer. Anything that does not parse is unresolved.
func NormalizeCount(raw string) *int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	// full-width digits become ASCII, then fold case. Casers are not goroutine safe.
	s = cases.Fold().String(norm.NFKC.String(s))

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == 'k', r == 'm', r == 'b':
			return r
		}
		return -1
	}, s)
	// letters left over from words like "likes" or "comments"
	cleaned = strings.TrimLeft(cleaned, "kmb")
	if cleaned == "" {
		return nil
	}

	if mult, ok := suffixMultipliers[cleaned[len(cleaned)-1]]; ok {
		return scaleDecimal(cleaned[:len(cleaned)-1], mult)
	}

	digits, ok := stripGroupDots(cleaned)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// stripGroupDots accepts "1.234.567" style grouping, where every dot is
// followed by exactly three digits. "1.5" is a fraction without a suffix and
// is rejected.
func stripGroupDots(s string) (string, bool) {
	if !strings.Contains(s, ".") {
		return s, true
	}
	groups := strings.Split(s, ".")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

// scaleDecimal multiplies a decimal string by mult, truncating the fraction.
// Integer arithmetic keeps "2.3" * 1e6 exact.
func scaleDecimal(num string, mult int64) *int64 {
	if num == "" {
		return nil
	}
	intPart, fracPart, hasDot := strings.Cut(num, ".")
	if hasDot && strings.Contains(fracPart, ".") {
		return nil
	}
	if intPart == "" && fracPart == "" {
		return nil
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return nil
	}

	var whole int64
	if intPart != "" {
		v, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil || v > math.MaxInt64/mult {
			return nil
		}
		whole = v * mult
	}

	// mult is at most 1e9, so digits past the ninth cannot contribute.
	if len(fracPart) > 9 {
		fracPart = fracPart[:9]
	}
	if fracPart != "" {
		f, _ := strconv.ParseInt(fracPart, 10, 64)
		scale := int64(math.Pow10(len(fracPart)))
		extra := f * mult / scale
		if whole > math.MaxInt64-extra {
			return nil
		}
		whole += extra
	}
	return &whole
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
