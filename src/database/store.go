package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/username/fintrack/backend/src/currency"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
)

const dateFormat = time.RFC3339

// InsertTransaction writes one row and returns its assigned id.
func InsertTransaction(tx models.Transaction) (int64, error) {
	var amountEUR sql.NullFloat64
	if tx.AmountEUR != nil {
		amountEUR = sql.NullFloat64{Float64: *tx.AmountEUR, Valid: true}
	}
	res, err := DB.Exec(`
		INSERT INTO transactions (date, amount, currency, category, kind, description, amount_eur)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.Date.UTC().Format(dateFormat), tx.Amount, tx.Currency, tx.Category, tx.Kind, tx.Description, amountEUR)
	if err != nil {
		return 0, fmt.Errorf("inserting transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted transaction id: %w", err)
	}
	return id, nil
}

// RecentTransactions returns the most recent rows, newest first. This is
// the bounded snapshot the reconciler and the display view work from.
func RecentTransactions(limit int) ([]models.Transaction, error) {
	rows, err := DB.Query(`
		SELECT id, date, amount, currency, category, kind, description, amount_eur
		FROM transactions
		ORDER BY date DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// AllTransactions returns every row, oldest first, for export.
func AllTransactions() ([]models.Transaction, error) {
	rows, err := DB.Query(`
		SELECT id, date, amount, currency, category, kind, description, amount_eur
		FROM transactions
		ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying all transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var out []models.Transaction
	for rows.Next() {
		var (
			tx        models.Transaction
			dateStr   string
			amountEUR sql.NullFloat64
		)
		if err := rows.Scan(&tx.ID, &dateStr, &tx.Amount, &tx.Currency, &tx.Category, &tx.Kind, &tx.Description, &amountEUR); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		parsed, err := time.Parse(dateFormat, dateStr)
		if err != nil {
			if logger.L != nil {
				logger.L.Warn("Skipping transaction with unparseable date", "id", tx.ID, "date", dateStr, "error", err)
			}
			continue
		}
		tx.Date = parsed
		if amountEUR.Valid {
			v := amountEUR.Float64
			tx.AmountEUR = &v
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return out, nil
}

// HasSimilarTransaction reports whether a row with the same day, amount,
// currency and description already exists. Import uses it to skip
// re-inserted rows.
func HasSimilarTransaction(day time.Time, amount float64, currencyCode, description string) (bool, error) {
	var count int
	err := DB.QueryRow(`
		SELECT COUNT(*) FROM transactions
		WHERE amount = ? AND currency = ? AND description = ? AND substr(date, 1, 10) = ?`,
		amount, currencyCode, description, day.UTC().Format("2006-01-02")).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for duplicate transaction: %w", err)
	}
	return count > 0, nil
}

// ClearTransactions deletes all rows but keeps the schema intact.
func ClearTransactions() error {
	if _, err := DB.Exec(`DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clearing transactions: %w", err)
	}
	return nil
}

// Vacuum reclaims space in the database file. Optional maintenance.
func Vacuum() error {
	if _, err := DB.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuuming database: %w", err)
	}
	return nil
}

// BackfillNormalizedAmounts fills amount_eur for rows written while no rate
// was available for their currency. Rows whose currency is still absent
// from the shared table stay NULL for a later pass; a single bad row never
// aborts the backfill. Returns the number of rows updated.
func BackfillNormalizedAmounts(table currency.RateTable) (int, error) {
	rows, err := DB.Query(`SELECT id, amount, currency FROM transactions WHERE amount_eur IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("querying rows missing normalized amount: %w", err)
	}

	type pending struct {
		id     int64
		amount float64
		cur    string
	}
	var missing []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.amount, &p.cur); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning row missing normalized amount: %w", err)
		}
		missing = append(missing, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterating rows missing normalized amount: %w", err)
	}
	rows.Close()

	updated := 0
	for _, p := range missing {
		normalized, ok := currency.ToBase(table.Rates, "EUR", p.amount, p.cur)
		if !ok {
			continue
		}
		if _, err := DB.Exec(`UPDATE transactions SET amount_eur = ? WHERE id = ?`, normalized, p.id); err != nil {
			if logger.L != nil {
				logger.L.Warn("Failed to backfill normalized amount", "id", p.id, "error", err)
			}
			continue
		}
		updated++
	}
	return updated, nil
}
