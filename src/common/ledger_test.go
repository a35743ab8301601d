package common

import (
	"testing"

	"cabins/src/models"

	"github.com/stretchr/testify/assert"
)

func TestEntriesBalanced(t *testing.T) {
	// gross 27000, fee 813
	entries := []models.LedgerEntry{
		{Account: ACCOUNT_CLEARING, Debit: 26187, Currency: "usd"},
		{Account: ACCOUNT_FEES, Debit: 813, Currency: "usd"},
		{Account: ACCOUNT_REVENUE, Credit: 27000, Currency: "usd"},
	}
	assert.True(t, EntriesBalanced(entries))

	entries[1].Debit = 812
	assert.False(t, EntriesBalanced(entries))
}

func TestEntriesBalancedRefund(t *testing.T) {
	entries := []models.LedgerEntry{
		{Account: ACCOUNT_REVENUE, Debit: 15000, Currency: "usd"},
		{Account: ACCOUNT_CLEARING, Credit: 15000, Currency: "usd"},
	}
	assert.True(t, EntriesBalanced(entries))
}

func TestEntriesBalancedEmpty(t *testing.T) {
	assert.True(t, EntriesBalanced(nil))
}
