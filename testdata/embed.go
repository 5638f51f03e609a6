// Package testdata bundles the sample sales export used by tests and by
// the "load sample data" action.
package testdata

import "embed"

// SampleFile is the name of the bundled export
const SampleFile = "coffee_sales.csv"

// SampleFS holds the bundled export
//
//go:embed coffee_sales.csv
var SampleFS embed.FS
