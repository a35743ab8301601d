package types

import (
	"errors"
	"fmt"
)

// Money is an exact currency amount expressed in the currency's minor unit
// (cents for USD). All booking and ledger arithmetic goes through Money so
// that totals never drift the way float math does.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

var ErrCurrencyMismatch = errors.New("currency mismatch")

func NewMoney(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

func ZeroMoney(currency string) Money {
	return Money{Amount: 0, Currency: currency}
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

func (m Money) MulInt(n int64) Money {
	return Money{Amount: m.Amount * n, Currency: m.Currency}
}

// DivRound divides the amount by n rounding half up to the minor unit.
// A zero or negative divisor yields a zero amount instead of an error so
// that degenerate unit-price computations (0 nights, 0 guests) stay safe.
func (m Money) DivRound(n int64) Money {
	if n <= 0 {
		return Money{Amount: 0, Currency: m.Currency}
	}
	return Money{Amount: divRoundHalfUp(m.Amount, n), Currency: m.Currency}
}

// Percent returns p percent of the amount, rounded half up.
func (m Money) Percent(p int) Money {
	if p <= 0 {
		return Money{Amount: 0, Currency: m.Currency}
	}
	return Money{Amount: divRoundHalfUp(m.Amount*int64(p), 100), Currency: m.Currency}
}

func divRoundHalfUp(a, n int64) int64 {
	if n <= 0 {
		return 0
	}
	neg := a < 0
	if neg {
		a = -a
	}
	q := (a + n/2) / n
	if neg {
		return -q
	}
	return q
}

func (m Money) String() string {
	whole := m.Amount / 100
	frac := m.Amount % 100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%02d %s", whole, frac, m.Currency)
}
