// Package dataloader reads point-of-sale exports into transactions.
package dataloader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"coffeeslides/internal/models"
	"coffeeslides/internal/services/storage"
)

// ErrNoTransactions is returned when no input file yields a usable row
var ErrNoTransactions = errors.New("no transactions loaded")

// Standard column names
const (
	ColumnCategory    = "Category"
	ColumnPaymentType = "PaymentType"
	ColumnAmount      = "Amount"
)

// columnMappings maps export column names to our standard names. Matching
// ignores case and surrounding whitespace.
var columnMappings = map[string][]string{
	ColumnCategory: {
		"coffee_name", "coffee name", "coffee",
		"item", "item name", "product", "product name",
		"drink", "category",
	},
	ColumnPaymentType: {
		"cash_type", "cash type",
		"payment", "payment type", "payment_type", "payment method",
		"method", "tender",
	},
	ColumnAmount: {
		"money", "amount", "price", "total",
		"sale", "sales", "value",
	},
}

// DataLoader loads every enabled CSV file in a directory
type DataLoader struct {
	CSVDirectory string

	mu           sync.Mutex
	enabledFiles map[string]bool
	skippedRows  int
	store        *storage.Storage
	log          *zap.SugaredLogger
}

// New creates a DataLoader reading csvDirectory through store
func New(csvDirectory string, store *storage.Storage) *DataLoader {
	return &DataLoader{
		CSVDirectory: csvDirectory,
		enabledFiles: make(map[string]bool),
		store:        store,
		log:          zap.S().Named("dataloader"),
	}
}

// normalizeColumnName maps an export column name to our standard name
func normalizeColumnName(col string) string {
	trimmed := strings.TrimSpace(col)
	for standard, variants := range columnMappings {
		for _, variant := range variants {
			if strings.EqualFold(trimmed, variant) {
				return standard
			}
		}
	}
	return trimmed
}

// buildColumnIndex creates a normalized column index from CSV headers;
// the first matching column wins
func buildColumnIndex(header []string) map[string]int {
	colIndex := make(map[string]int)
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff")
		}
		normalized := normalizeColumnName(col)
		if _, exists := colIndex[normalized]; !exists {
			colIndex[normalized] = i
		}
	}
	return colIndex
}

// SetEnabledFiles restricts loading to the named files. An empty list
// enables everything.
func (dl *DataLoader) SetEnabledFiles(files []string) {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.enabledFiles = make(map[string]bool)
	for _, f := range files {
		dl.enabledFiles[f] = true
	}
}

func (dl *DataLoader) enabled(name string) bool {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	return len(dl.enabledFiles) == 0 || dl.enabledFiles[name]
}

// SkippedRows returns how many rows the last LoadData rejected
func (dl *DataLoader) SkippedRows() int {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	return dl.skippedRows
}

func (dl *DataLoader) csvFiles() ([]string, error) {
	files, err := dl.store.Glob(filepath.Join(dl.CSVDirectory, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("error finding CSV files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// LoadData concatenates the records of every enabled CSV file in filename
// order. It returns ErrNoTransactions when nothing usable was found.
func (dl *DataLoader) LoadData() (*models.TransactionSet, error) {
	files, err := dl.csvFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files in %s: %w", dl.CSVDirectory, ErrNoTransactions)
	}

	dl.log.Debugf("Found %d CSV files in %s", len(files), dl.CSVDirectory)

	var all []models.Transaction
	var skipped int
	var lastErr error
	for _, file := range files {
		name := filepath.Base(file)
		if !dl.enabled(name) {
			dl.log.Debugf("Skipping disabled file: %s", name)
			continue
		}

		transactions, bad, err := dl.loadCSVFile(file)
		if err != nil {
			dl.log.Warnf("Failed to load %s: %v", name, err)
			lastErr = err
			continue
		}
		skipped += bad

		dl.log.Infof("Loaded %d transactions from %s", len(transactions), name)
		all = append(all, transactions...)
	}

	dl.mu.Lock()
	dl.skippedRows = skipped
	dl.mu.Unlock()
	if skipped > 0 {
		dl.log.Warnf("Skipped %d invalid rows", skipped)
	}

	if len(all) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoTransactions, lastErr)
		}
		return nil, ErrNoTransactions
	}

	dl.log.Infof("Total transactions loaded: %d", len(all))
	return models.NewTransactionSet(all), nil
}

// LoadFile reads a single file regardless of the enabled list
func (dl *DataLoader) LoadFile(path string) (*models.TransactionSet, error) {
	transactions, _, err := dl.loadCSVFile(path)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoTransactions)
	}
	return models.NewTransactionSet(transactions), nil
}

// loadCSVFile parses one file, returning its valid records and the number
// of rows it rejected
func (dl *DataLoader) loadCSVFile(filePath string) ([]models.Transaction, int, error) {
	file, err := dl.store.OpenFile(filePath)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()
	return dl.parse(file, filepath.Base(filePath))
}

func (dl *DataLoader) parse(r io.Reader, sourceFile string) ([]models.Transaction, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("error reading header: %w", err)
	}

	colIndex := buildColumnIndex(header)
	for _, required := range []string{ColumnCategory, ColumnPaymentType, ColumnAmount} {
		if _, ok := colIndex[required]; !ok {
			return nil, 0, fmt.Errorf("missing required column: %s (tried: %v)", required, columnMappings[required])
		}
	}

	var transactions []models.Transaction
	skipped := 0
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			dl.log.Warnf("%s: error reading line %d: %v", sourceFile, lineNum, err)
			skipped++
			continue
		}
		if blank(record) {
			continue
		}

		t, err := parseRecord(record, colIndex)
		if err != nil {
			dl.log.Warnf("%s: skipping line %d: %v", sourceFile, lineNum, err)
			skipped++
			continue
		}
		t.SourceFile = sourceFile
		t.Line = lineNum
		transactions = append(transactions, t)
	}

	return transactions, skipped, nil
}

func parseRecord(record []string, colIndex map[string]int) (models.Transaction, error) {
	field := func(name string) string {
		idx := colIndex[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	t := models.Transaction{
		Category:    field(ColumnCategory),
		PaymentType: field(ColumnPaymentType),
	}
	if t.Category == "" {
		return t, errors.New("empty coffee name")
	}

	amount, err := parseAmount(field(ColumnAmount))
	if err != nil {
		return t, err
	}
	t.Amount = amount
	return t, nil
}

// parseAmount parses a money value, tolerating a currency symbol and
// thousands separators. Negative and non-finite amounts are rejected.
func parseAmount(s string) (float64, error) {
	cleaned := strings.ReplaceAll(s, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, errors.New("empty amount")
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("non-finite amount %q", s)
	}
	if amount < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	return amount, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// GetFileInfo describes every CSV file in the directory
func (dl *DataLoader) GetFileInfo() ([]models.FileInfo, error) {
	files, err := dl.csvFiles()
	if err != nil {
		return nil, err
	}

	infos := []models.FileInfo{}
	for _, file := range files {
		info, err := dl.store.Stat(file)
		if err != nil {
			continue
		}
		name := filepath.Base(file)

		fi := models.FileInfo{
			Name:      name,
			Path:      file,
			Size:      info.Size(),
			Enabled:   dl.enabled(name),
			Encrypted: dl.store.IsEncrypted(),
		}
		if transactions, _, err := dl.loadCSVFile(file); err == nil {
			fi.Transactions = len(transactions)
		}
		infos = append(infos, fi)
	}
	return infos, nil
}
