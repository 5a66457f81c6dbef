package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/cuotas/internal/money"
)

func TestFormatter_Format(t *testing.T) {
	es := money.Spanish()
	en := money.NewFormatter(language.English, "")

	amount := decimal.RequireFromString("1234567.5")

	assert.Equal(t, "$ 1.234.567,50", es.Format(amount))
	assert.Equal(t, "1,234,567.50", en.Format(amount))
	assert.Equal(t, "$ 0,00", es.Format(decimal.Zero))
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "300.00", money.Plain(decimal.NewFromInt(300)))
	assert.Equal(t, "33.33", money.Plain(decimal.RequireFromString("33.333")))
}
