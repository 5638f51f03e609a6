package charts

import (
	"errors"
	"fmt"

	"coffeeslides/internal/models"
	"coffeeslides/internal/services/aggregator"
	"coffeeslides/internal/slides"
)

// Slide positions in the deck.
const (
	SlideBarByItem = iota
	SlideScatterByTransaction
	SlideLineByItemTotal
	SlideBarByPaymentType

	SlideCount
)

// SlideNames are the slide titles in presentation order.
var SlideNames = []string{
	SlideBarByItem:            "Total spent per coffee",
	SlideScatterByTransaction: "Every transaction by coffee",
	SlideLineByItemTotal:      "Coffee totals",
	SlideBarByPaymentType:     "Total spent per payment type",
}

// ErrNoSlide is returned for a slide index outside the deck.
var ErrNoSlide = errors.New("no such slide")

// Book holds one dataset and everything derived from it that the charts need.
type Book struct {
	records   []models.Transaction
	byItem    []models.AggregateRow
	byPayment []models.AggregateRow
	tip       Tooltip
	opts      Options
}

// NewBook aggregates set once and prepares the four views over it.
func NewBook(set *models.TransactionSet, tip Tooltip, opts Options) *Book {
	var records []models.Transaction
	if set != nil {
		records = set.Transactions
	}
	return &Book{
		records:   records,
		byItem:    aggregator.GroupBy(records, aggregator.ByCategory),
		byPayment: aggregator.GroupBy(records, aggregator.ByPaymentType),
		tip:       tip,
		opts:      opts,
	}
}

// Empty reports whether the book has no transactions to draw.
func (b *Book) Empty() bool {
	return len(b.records) == 0
}

// ByItem returns the per-coffee totals.
func (b *Book) ByItem() []models.AggregateRow { return b.byItem }

// ByPaymentType returns the per-payment-type totals.
func (b *Book) ByPaymentType() []models.AggregateRow { return b.byPayment }

// Views returns the slides in presentation order.
func (b *Book) Views() []slides.View {
	return []slides.View{
		SlideBarByItem:            {Name: SlideNames[SlideBarByItem], Render: BarByItem(b.byItem, b.tip)},
		SlideScatterByTransaction: {Name: SlideNames[SlideScatterByTransaction], Render: ScatterByTransaction(b.records, b.tip)},
		SlideLineByItemTotal:      {Name: SlideNames[SlideLineByItemTotal], Render: LineByItemTotal(b.byItem, b.tip)},
		SlideBarByPaymentType:     {Name: SlideNames[SlideBarByPaymentType], Render: BarByPaymentType(b.byPayment, b.tip, b.opts.PaymentCaptionLift)},
	}
}

func checkIndex(i int) error {
	if i < 0 || i >= SlideCount {
		return fmt.Errorf("slide %d: %w", i, ErrNoSlide)
	}
	return nil
}
