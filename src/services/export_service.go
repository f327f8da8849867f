package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/utils"
)

var csvColumns = []string{"date", "amount", "currency", "category", "kind", "description"}

// ImportResult aggregates the outcome of one import run. Row-level problems
// are collected, never aborting the rest of the file.
type ImportResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ExportTransactionsCSV renders every stored row as CSV, oldest first.
func ExportTransactionsCSV() ([]byte, error) {
	rows, err := database.AllTransactions()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvColumns); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	for _, tx := range rows {
		record := []string{
			tx.Date.UTC().Format(time.RFC3339),
			strconv.FormatFloat(tx.Amount, 'f', -1, 64),
			tx.Currency,
			tx.Category,
			tx.Kind,
			tx.Description,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

type exportRow struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
}

// ExportTransactionsJSON renders every stored row as a JSON array, oldest
// first.
func ExportTransactionsJSON() ([]byte, error) {
	rows, err := database.AllTransactions()
	if err != nil {
		return nil, err
	}
	out := make([]exportRow, 0, len(rows))
	for _, tx := range rows {
		out = append(out, exportRow{
			Date:        tx.Date.UTC().Format(time.RFC3339),
			Amount:      tx.Amount,
			Currency:    tx.Currency,
			Category:    tx.Category,
			Kind:        tx.Kind,
			Description: tx.Description,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshalling transactions: %w", err)
	}
	return data, nil
}

// ImportTransactionsCSV reads a CSV document with the required columns and
// inserts rows not already present. Normalized amounts are left NULL; run a
// backfill pass afterwards.
func ImportTransactionsCSV(r io.Reader) (ImportResult, error) {
	var result ImportResult

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read CSV: %v", err))
		return result, nil
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "CSV file is empty")
		return result, nil
	}

	colIndex := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, col := range csvColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")))
		return result, nil
	}

	for i, record := range records[1:] {
		rowNum := i + 1
		field := func(col string) string {
			idx := colIndex[col]
			if idx >= len(record) {
				return ""
			}
			return record[idx]
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(field("amount")), 64)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid amount -> %s", rowNum, field("amount")))
			result.Skipped++
			continue
		}
		importRow(&result, rowNum, field("date"), amount, field("currency"), field("category"), field("kind"), field("description"))
	}
	return result, nil
}

type importedTransaction struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
}

// ImportTransactionsJSON reads a JSON array of transaction objects and
// inserts rows not already present.
func ImportTransactionsJSON(r io.Reader) (ImportResult, error) {
	var result ImportResult

	var rows []importedTransaction
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read JSON: %v", err))
		return result, nil
	}

	for i, row := range rows {
		importRow(&result, i+1, row.Date, row.Amount, row.Currency, row.Category, row.Kind, row.Description)
	}
	return result, nil
}

// importRow validates, deduplicates and inserts a single imported row.
// Duplicates match on (day, amount, currency, description), the original
// import heuristic.
func importRow(result *ImportResult, rowNum int, dateStr string, amount float64, currencyCode, category, kind, description string) {
	date, err := utils.ParseFlexibleDate(dateStr)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid date -> %s", rowNum, dateStr))
		result.Skipped++
		return
	}

	currencyCode = strings.ToUpper(strings.TrimSpace(currencyCode))
	if currencyCode == "" {
		currencyCode = "USD"
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != models.KindIncome && kind != models.KindExpense {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid kind -> %s", rowNum, kind))
		result.Skipped++
		return
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = models.DefaultCategory
	}

	dup, err := database.HasSimilarTransaction(date, amount, currencyCode, description)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate check failed: %v", rowNum, err))
		result.Skipped++
		return
	}
	if dup {
		result.Skipped++
		return
	}

	_, err = database.InsertTransaction(models.Transaction{
		Date:        date,
		Amount:      amount,
		Currency:    currencyCode,
		Category:    category,
		Kind:        kind,
		Description: description,
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: insert failed: %v", rowNum, err))
		result.Skipped++
		return
	}
	result.Inserted++
}
