// Package aggregator groups transactions by a key and sums their amounts.
package aggregator

import (
	"github.com/shopspring/decimal"

	"coffeeslides/internal/models"
)

// KeyFunc selects the grouping key of a transaction
type KeyFunc func(t models.Transaction) string

// ByCategory groups by coffee name
func ByCategory(t models.Transaction) string { return t.Category }

// ByPaymentType groups by payment type (cash, card, ...)
func ByPaymentType(t models.Transaction) string { return t.PaymentType }

// GroupBy returns one row per distinct key, in order of first appearance.
// Amounts are accumulated as decimals so totals do not depend on the order
// of addition; the float is taken once per row.
func GroupBy(records []models.Transaction, key KeyFunc) []models.AggregateRow {
	index := make(map[string]int)
	var keys []string
	var sums []decimal.Decimal

	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(decimal.NewFromFloat(r.Amount))
	}

	rows := make([]models.AggregateRow, len(keys))
	for i, k := range keys {
		rows[i] = models.AggregateRow{Key: k, Total: sums[i].InexactFloat64()}
	}
	return rows
}

// GroupSet is GroupBy over a TransactionSet
func GroupSet(ts *models.TransactionSet, key KeyFunc) []models.AggregateRow {
	if ts == nil {
		return []models.AggregateRow{}
	}
	return GroupBy(ts.Transactions, key)
}

// GrandTotal sums the totals of the given rows
func GrandTotal(rows []models.AggregateRow) float64 {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(decimal.NewFromFloat(r.Total))
	}
	return sum.InexactFloat64()
}

// Max returns the largest total, 0 for no rows
func Max(rows []models.AggregateRow) float64 {
	var max float64
	for _, r := range rows {
		if r.Total > max {
			max = r.Total
		}
	}
	return max
}

// Keys returns the row keys in order
func Keys(rows []models.AggregateRow) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}
