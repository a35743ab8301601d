package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoneyAdd(t *testing.T) {
	a := NewMoney(4500, "usd")
	b := NewMoney(1500, "usd")

	sum, err := a.Add(b)
	assert.Nil(t, err)
	assert.Equal(t, int64(6000), sum.Amount)

	_, err = a.Add(NewMoney(100, "eur"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneySub(t *testing.T) {
	gross := NewMoney(27000, "usd")
	fee := NewMoney(813, "usd")

	net, err := gross.Sub(fee)
	assert.Nil(t, err)
	assert.Equal(t, int64(26187), net.Amount)

	_, err = gross.Sub(NewMoney(1, "eur"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneyDivRound(t *testing.T) {
	m := NewMoney(1000, "usd")

	assert.Equal(t, int64(333), m.DivRound(3).Amount)
	assert.Equal(t, int64(500), m.DivRound(2).Amount)
	// half rounds up
	assert.Equal(t, int64(3), NewMoney(5, "usd").DivRound(2).Amount)
	// degenerate divisors collapse to zero
	assert.Equal(t, int64(0), m.DivRound(0).Amount)
	assert.Equal(t, int64(0), m.DivRound(-1).Amount)
}

func TestMoneyPercent(t *testing.T) {
	m := NewMoney(30000, "usd")

	assert.Equal(t, int64(15000), m.Percent(50).Amount)
	assert.Equal(t, int64(30000), m.Percent(100).Amount)
	assert.Equal(t, int64(0), m.Percent(0).Amount)
	// 33% of 101 cents is 33.33, rounds to 33
	assert.Equal(t, int64(33), NewMoney(101, "usd").Percent(33).Amount)
	// half cent rounds up
	assert.Equal(t, int64(51), NewMoney(101, "usd").Percent(50).Amount)
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "270.00 usd", NewMoney(27000, "usd").String())
	assert.Equal(t, "4.05 usd", NewMoney(405, "usd").String())
	assert.Equal(t, "-1.50 usd", NewMoney(-150, "usd").String())
}
