package metrics

import (
	"github.com/shopspring/decimal"

	"coffeeslides/internal/models"
	"coffeeslides/internal/services/aggregator"
)

// Service provides metric calculation functionality
type Service struct{}

// New creates a new metrics service
func New() *Service {
	return &Service{}
}

// Summarize computes the headline figures for a transaction set
func (s *Service) Summarize(ts *models.TransactionSet) *models.DatasetSummary {
	if ts.IsEmpty() {
		return &models.DatasetSummary{}
	}

	byItem := aggregator.GroupSet(ts, aggregator.ByCategory)
	grand := aggregator.GrandTotal(byItem)

	summary := &models.DatasetSummary{
		TransactionCount: ts.Len(),
		GrandTotal:       grand,
		AverageTicket:    s.Average(grand, ts.Len()),
		LargestTicket:    ts.MaxAmount(),
		CoffeeCount:      len(ts.Categories()),
		PaymentTypeCount: len(ts.PaymentTypes()),
	}

	if i, ok := s.TopIndex(byItem); ok {
		top := byItem[i]
		summary.TopCoffee = top.Key
		summary.TopCoffeeTotal = top.Total
		summary.TopCoffeeSold = ts.FilterByCategory(top.Key).Len()
		summary.TopCoffeeShare = s.Share(byItem)[i]
	}
	return summary
}

// Average divides total by n, rounded to cents. Zero for n <= 0.
func (s *Service) Average(total float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return decimal.NewFromFloat(total).
		Div(decimal.NewFromInt(int64(n))).
		Round(2).
		InexactFloat64()
}

// TopIndex returns the position of the row with the largest total; ties go
// to the row seen first
func (s *Service) TopIndex(rows []models.AggregateRow) (int, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	top := 0
	for i, r := range rows[1:] {
		if r.Total > rows[top].Total {
			top = i + 1
		}
	}
	return top, true
}

// Share returns each row's percentage of the grand total, in row order
func (s *Service) Share(rows []models.AggregateRow) []float64 {
	grand := decimal.NewFromFloat(aggregator.GrandTotal(rows))
	shares := make([]float64, len(rows))
	if grand.IsZero() {
		return shares
	}
	hundred := decimal.NewFromInt(100)
	for i, r := range rows {
		shares[i] = decimal.NewFromFloat(r.Total).
			Mul(hundred).
			Div(grand).
			Round(1).
			InexactFloat64()
	}
	return shares
}
