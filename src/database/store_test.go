package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/fintrack/backend/src/currency"
	"github.com/username/fintrack/backend/src/models"
)

// testDB points the package-level DB at a temporary sqlite file with the
// full schema and returns a cleanup function.
func testDB(t *testing.T) func() {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fintrack-test.db")
	InitDB(path)
	return func() { DB.Close() }
}

func eur(v float64) *float64 { return &v }

func TestInsertAndRecentRoundTrip(t *testing.T) {
	cleanup := testDB(t)
	defer cleanup()

	tx := models.Transaction{
		Date:        time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC),
		Amount:      25.0,
		Currency:    "USD",
		AmountEUR:   eur(23.15),
		Category:    "Transport",
		Kind:        "expense",
		Description: "train ticket",
	}
	id, err := InsertTransaction(tx)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	rows, err := RecentTransactions(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	got := rows[0]
	assert.Equal(t, id, got.ID)
	assert.True(t, tx.Date.Equal(got.Date))
	assert.Equal(t, tx.Amount, got.Amount)
	assert.Equal(t, tx.Currency, got.Currency)
	require.NotNil(t, got.AmountEUR)
	assert.Equal(t, 23.15, *got.AmountEUR)
}

func TestInsertNullNormalizedAmount(t *testing.T) {
	cleanup := testDB(t)
	defer cleanup()

	_, err := InsertTransaction(models.Transaction{
		Date: time.Now().UTC(), Amount: 10, Currency: "XXX", Kind: "expense",
	})
	require.NoError(t, err)

	rows, err := RecentTransactions(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].AmountEUR)
}

func TestRecentTransactionsOrderingAndLimit(t *testing.T) {
	cleanup := testDB(t)
	defer cleanup()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := InsertTransaction(models.Transaction{
			Date: base.AddDate(0, 0, i), Amount: float64(i), Currency: "EUR", Kind: "income",
		})
		require.NoError(t, err)
	}

	rows, err := RecentTransactions(3)
	require.NoError(t, err)
	require.Len(t, rows, 3, "snapshot is bounded")
	assert.Equal(t, 4.0, rows[0].Amount, "newest first")
	assert.Equal(t, 2.0, rows[2].Amount)
}

func TestHasSimilarTransaction(t *testing.T) {
	cleanup := testDB(t)
	defer cleanup()

	day := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	_, err := InsertTransaction(models.Transaction{
		Date: day, Amount: 12.5, Currency: "USD", Kind: "expense", Description: "lunch",
	})
	require.NoError(t, err)

	dup, err := HasSimilarTransaction(day.Add(8*time.Hour), 12.5, "USD", "lunch")
	require.NoError(t, err)
	assert.True(t, dup, "same day matches regardless of time")

	dup, err = HasSimilarTransaction(day.AddDate(0, 0, 1), 12.5, "USD", "lunch")
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestClearTransactions(t *testing.T) {
	cleanup := testDB(t)
	defer cleanup()

	_, err := InsertTransaction(models.Transaction{Date: time.Now().UTC(), Amount: 1, Currency: "EUR", Kind: "income"})
	require.NoError(t, err)
	require.NoError(t, ClearTransactions())

	rows, err := RecentTransactions(10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestResetDatabaseRecreatesFreshSchema(t *testing.T) {
	cleanup := testDB(t)
	defer cleanup()

	_, err := InsertTransaction(models.Transaction{Date: time.Now().UTC(), Amount: 1, Currency: "EUR", Kind: "income"})
	require.NoError(t, err)

	require.NoError(t, ResetDatabase())

	rows, err := RecentTransactions(10)
	require.NoError(t, err)
	assert.Empty(t, rows, "reset starts from an empty table")

	// The fresh schema accepts writes again.
	id, err := InsertTransaction(models.Transaction{Date: time.Now().UTC(), Amount: 2, Currency: "EUR", Kind: "expense"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id, "autoincrement restarts with the new file")
}

func TestVacuumAfterClear(t *testing.T) {
	cleanup := testDB(t)
	defer cleanup()

	_, err := InsertTransaction(models.Transaction{Date: time.Now().UTC(), Amount: 1, Currency: "EUR", Kind: "income"})
	require.NoError(t, err)
	require.NoError(t, ClearTransactions())
	require.NoError(t, Vacuum())

	rows, err := RecentTransactions(10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBackfillNormalizedAmounts(t *testing.T) {
	cleanup := testDB(t)
	defer cleanup()

	now := time.Now().UTC()
	_, err := InsertTransaction(models.Transaction{Date: now, Amount: 108, Currency: "USD", Kind: "expense"})
	require.NoError(t, err)
	_, err = InsertTransaction(models.Transaction{Date: now, Amount: 10, Currency: "XXX", Kind: "expense"})
	require.NoError(t, err)
	_, err = InsertTransaction(models.Transaction{Date: now, Amount: 5, Currency: "EUR", Kind: "income", AmountEUR: eur(5)})
	require.NoError(t, err)

	table := currency.RateTable{
		Base:  "EUR",
		Rates: map[string]float64{"EUR": 1.0, "USD": 1.08},
	}
	updated, err := BackfillNormalizedAmounts(table)
	require.NoError(t, err)
	assert.Equal(t, 1, updated, "only the USD row is resolvable")

	rows, err := AllTransactions()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		switch row.Currency {
		case "USD":
			require.NotNil(t, row.AmountEUR)
			assert.InDelta(t, 100.0, *row.AmountEUR, 1e-9)
		case "XXX":
			assert.Nil(t, row.AmountEUR, "unresolvable currency stays NULL for a later pass")
		case "EUR":
			require.NotNil(t, row.AmountEUR)
			assert.Equal(t, 5.0, *row.AmountEUR, "already-filled rows are untouched")
		}
	}
}
