package models

import (
	"reflect"
	"testing"
)

func sampleSet() *TransactionSet {
	return NewTransactionSet([]Transaction{
		{Category: "Latte", PaymentType: "card", Amount: 38.7},
		{Category: "Americano", PaymentType: "cash", Amount: 28.9},
		{Category: "latte", PaymentType: "Card", Amount: 33.8},
		{Category: "Cortado", PaymentType: "card", Amount: 25.96},
	})
}

func TestTransactionSetNil(t *testing.T) {
	var ts *TransactionSet
	if ts.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ts.Len())
	}
	if !ts.IsEmpty() {
		t.Error("IsEmpty() = false for nil set")
	}
}

func TestSumAndMax(t *testing.T) {
	ts := sampleSet()
	if got := ts.SumAmount(); got < 127.35 || got > 127.37 {
		t.Errorf("SumAmount() = %v, want 127.36", got)
	}
	if got := ts.MaxAmount(); got != 38.7 {
		t.Errorf("MaxAmount() = %v, want 38.7", got)
	}
	if got := NewTransactionSet(nil).MaxAmount(); got != 0 {
		t.Errorf("MaxAmount() on empty = %v, want 0", got)
	}
}

func TestFilters(t *testing.T) {
	ts := sampleSet()

	tests := []struct {
		name string
		got  *TransactionSet
		want int
	}{
		{"category", ts.FilterByCategory("Latte"), 1},
		{"category is case-sensitive", ts.FilterByCategory("LATTE"), 0},
		{"category missing", ts.FilterByCategory("Mocha"), 0},
		{"payment type", ts.FilterByPaymentType("card"), 2},
		{"cash", ts.FilterByPaymentType("cash"), 1},
		{"payment type is case-sensitive", ts.FilterByPaymentType("Cash"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", tt.got.Len(), tt.want)
			}
		})
	}

	if ts.Len() != 4 {
		t.Error("filter modified the source set")
	}
}

func TestDistinctKeepsFirstSeenOrder(t *testing.T) {
	ts := sampleSet()

	wantCategories := []string{"Latte", "Americano", "latte", "Cortado"}
	if got := ts.Categories(); !reflect.DeepEqual(got, wantCategories) {
		t.Errorf("Categories() = %v, want %v", got, wantCategories)
	}

	wantPayments := []string{"card", "cash", "Card"}
	if got := ts.PaymentTypes(); !reflect.DeepEqual(got, wantPayments) {
		t.Errorf("PaymentTypes() = %v, want %v", got, wantPayments)
	}
}
