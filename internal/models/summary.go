package models

// DatasetSummary contains headline figures shown above the slideshow
type DatasetSummary struct {
	TransactionCount int     `json:"transaction_count"`
	GrandTotal       float64 `json:"grand_total"`
	AverageTicket    float64 `json:"average_ticket"`
	LargestTicket    float64 `json:"largest_ticket"`
	CoffeeCount      int     `json:"coffee_count"`
	PaymentTypeCount int     `json:"payment_type_count"`
	SkippedRows      int     `json:"skipped_rows"`

	TopCoffee      string  `json:"top_coffee,omitempty"`
	TopCoffeeTotal float64 `json:"top_coffee_total,omitempty"`
	TopCoffeeSold  int     `json:"top_coffee_sold,omitempty"`
	TopCoffeeShare float64 `json:"top_coffee_share,omitempty"` // percent of GrandTotal
}
