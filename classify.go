package gridbook

import (
	"math"
	"strconv"
	"strings"

	"github.com/xuri/nfp"
)

// Class is the recovered numeric meaning of a cell's number-format pattern.
type Class int

const (
	ClassDecimal Class = iota // plain floating point (default)
	ClassInteger
	ClassDate
	ClassPercentage
	ClassCurrency
)

// String returns a human-readable name for the Class.
func (c Class) String() string {
	switch c {
	case ClassDecimal:
		return "decimal"
	case ClassInteger:
		return "integer"
	case ClassDate:
		return "date"
	case ClassPercentage:
		return "percentage"
	case ClassCurrency:
		return "currency"
	default:
		return "unknown"
	}
}

// currencyRunes is the documented set of literal symbols treated as
// currency markers. Locale inference beyond this table is deliberately not
// attempted.
const currencyRunes = "$£€¥¢₩₹₽¤"

// Classify classifies a number-format pattern. It is a pure function of
// the pattern string and carries no cell state. Precedence: date tokens,
// then a currency marker, then a percent token, then integer (no
// decimal-point or grouping token), then decimal.
//
// "General", "@" and the empty pattern classify as decimal so unformatted
// numerics are never truncated.
func Classify(pattern string) Class {
	switch pattern {
	case "", "General", "@":
		return ClassDecimal
	}

	p := nfp.NumberFormatParser()
	sections := p.Parse(pattern)
	if len(sections) == 0 {
		return ClassDecimal
	}

	var hasDate, hasCurrency, hasPercent, hasDecimal, hasGrouping bool
	for _, tok := range sections[0].Items {
		switch tok.TType {
		case nfp.TokenTypeDateTimes, nfp.TokenTypeElapsedDateTimes:
			hasDate = true
		case nfp.TokenTypeCurrencyLanguage:
			hasCurrency = true
		case nfp.TokenTypeLiteral:
			if strings.ContainsAny(tok.TValue, currencyRunes) {
				hasCurrency = true
			}
		case nfp.TokenTypePercent:
			hasPercent = true
		case nfp.TokenTypeDecimalPoint:
			hasDecimal = true
		case nfp.TokenTypeThousandsSeparator:
			hasGrouping = true
		}
	}

	switch {
	case hasDate:
		return ClassDate
	case hasCurrency:
		return ClassCurrency
	case hasPercent:
		return ClassPercentage
	case !hasDecimal && !hasGrouping:
		return ClassInteger
	default:
		return ClassDecimal
	}
}

// CurrencyString renders val per a currency pattern: the currency symbol in
// its literal position and the fixed decimal digits the placeholders imply,
// e.g. ("£0.00", 99.99) → "£99.99".
func CurrencyString(pattern string, val float64) string {
	p := nfp.NumberFormatParser()
	sections := p.Parse(pattern)
	if len(sections) == 0 {
		return strconv.FormatFloat(val, 'f', 2, 64)
	}
	sec := sections[0]
	neg := val < 0
	if neg && len(sections) > 1 {
		sec = sections[1]
	}

	// First pass: decimal places and grouping.
	var decPlaces int
	var grouping, afterDec bool
	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypeDecimalPoint:
			afterDec = true
		case nfp.TokenTypeThousandsSeparator:
			grouping = true
		case nfp.TokenTypeZeroPlaceHolder, nfp.TokenTypeHashPlaceHolder:
			if afterDec {
				decPlaces += len(tok.TValue)
			}
		}
	}

	num := strconv.FormatFloat(math.Abs(val), 'f', decPlaces, 64)
	if grouping {
		if dot := strings.IndexByte(num, '.'); dot >= 0 {
			num = groupThousands(num[:dot]) + num[dot:]
		} else {
			num = groupThousands(num)
		}
	}

	// Second pass: reassemble in token order; the whole number is emitted
	// at the first placeholder.
	var sb strings.Builder
	if neg && len(sections) < 2 {
		sb.WriteByte('-')
	}
	wrote := false
	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypeLiteral:
			sb.WriteString(tok.TValue)
		case nfp.TokenTypeCurrencyLanguage:
			sb.WriteString(currencySymbol(tok.TValue))
		case nfp.TokenTypeZeroPlaceHolder, nfp.TokenTypeHashPlaceHolder:
			if !wrote {
				sb.WriteString(num)
				wrote = true
			}
		}
	}
	if !wrote {
		return num
	}
	return sb.String()
}

// currencySymbol extracts the symbol from a currency-language token. The
// token value keeps the "[$" prefix of the bracketed [$£-809] form, and the
// locale suffix starts at the "-".
func currencySymbol(tval string) string {
	s := strings.TrimPrefix(tval, "[$")
	s = strings.TrimSuffix(s, "]")
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "$"
	}
	return s
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	b.Grow(n + n/3)
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
