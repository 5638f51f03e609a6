package models

// Transaction represents a single point-of-sale transaction
type Transaction struct {
	Category    string  `json:"coffee_name"`
	PaymentType string  `json:"cash_type"`
	Amount      float64 `json:"money"`

	// Provenance (not part of the record's identity for charting)
	SourceFile string `json:"source_file,omitempty"`
	Line       int    `json:"line,omitempty"`
}

// AggregateRow is one summary row produced by grouping transactions by a key
type AggregateRow struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// TransactionSet wraps an ordered slice of transactions
type TransactionSet struct {
	Transactions []Transaction
}

// NewTransactionSet creates a new TransactionSet from a slice
func NewTransactionSet(transactions []Transaction) *TransactionSet {
	return &TransactionSet{Transactions: transactions}
}

// Len returns the number of transactions
func (ts *TransactionSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.Transactions)
}

// IsEmpty reports whether the set holds no transactions
func (ts *TransactionSet) IsEmpty() bool {
	return ts == nil || len(ts.Transactions) == 0
}

// MaxAmount returns the largest single transaction amount, 0 when empty
func (ts *TransactionSet) MaxAmount() float64 {
	var max float64
	for _, t := range ts.Transactions {
		if t.Amount > max {
			max = t.Amount
		}
	}
	return max
}

// SumAmount returns the sum of all transaction amounts
func (ts *TransactionSet) SumAmount() float64 {
	var sum float64
	for _, t := range ts.Transactions {
		sum += t.Amount
	}
	return sum
}

// FilterByCategory returns transactions for the coffee. Names match exactly,
// as the aggregator groups them: "Latte" and "latte" are different coffees.
func (ts *TransactionSet) FilterByCategory(category string) *TransactionSet {
	return ts.filter(func(t Transaction) bool { return t.Category == category })
}

// FilterByPaymentType returns transactions paid with the given payment type
func (ts *TransactionSet) FilterByPaymentType(paymentType string) *TransactionSet {
	return ts.filter(func(t Transaction) bool { return t.PaymentType == paymentType })
}

func (ts *TransactionSet) filter(keep func(Transaction) bool) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if keep(t) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// Categories returns distinct coffee names in first-seen order
func (ts *TransactionSet) Categories() []string {
	return ts.distinct(func(t Transaction) string { return t.Category })
}

// PaymentTypes returns distinct payment types in first-seen order
func (ts *TransactionSet) PaymentTypes() []string {
	return ts.distinct(func(t Transaction) string { return t.PaymentType })
}

func (ts *TransactionSet) distinct(key func(Transaction) string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, t := range ts.Transactions {
		k := key(t)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
