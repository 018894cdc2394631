package gridbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		pattern string
		want    Class
	}{
		{"", ClassDecimal},
		{"General", ClassDecimal},
		{"@", ClassDecimal},
		{"0.00", ClassDecimal},
		{"#,##0.00", ClassDecimal},
		{"0", ClassInteger},
		{"000", ClassInteger},
		{"m/d/yy h:mm", ClassDate},
		{"yyyy-mm-dd", ClassDate},
		{"[h]:mm:ss", ClassDate},
		{"0%", ClassPercentage},
		{"0.00%", ClassPercentage},
		{"$#,##0.00", ClassCurrency},
		{"£0.00", ClassCurrency},
		{"€#,##0", ClassCurrency},
		{"[$£-809]#,##0.00", ClassCurrency},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.pattern), "pattern %q", tc.pattern)
	}
}

func TestClassify_CurrencyBeatsPercent(t *testing.T) {
	// Currency precedence sits above percent and integer.
	assert.Equal(t, ClassCurrency, Classify("$0%"))
	assert.Equal(t, ClassCurrency, Classify("$0"))
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "decimal", ClassDecimal.String())
	assert.Equal(t, "currency", ClassCurrency.String())
	assert.Equal(t, "unknown", Class(99).String())
}

func TestCurrencyString(t *testing.T) {
	cases := []struct {
		pattern string
		val     float64
		want    string
	}{
		{"£0.00", 99.99, "£99.99"},
		{"$#,##0.00", 1234567.891, "$1,234,567.89"},
		{"$#,##0", 1234.4, "$1,234"},
		{"€0.00", -5.5, "-€5.50"},
		{"¥0", 42, "¥42"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CurrencyString(tc.pattern, tc.val), "pattern %q", tc.pattern)
	}
}

func TestCurrencyString_LocaleToken(t *testing.T) {
	assert.Equal(t, "£99.99", CurrencyString("[$£-809]0.00", 99.99))
}
