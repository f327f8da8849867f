// Package optimistic keeps a session-local list of just-written transaction
// rows so they display immediately, before a store read can observe them.
// Rows graduate out of the buffer once an equivalent persisted row appears.
package optimistic

import (
	"strings"
	"sync"

	"github.com/username/fintrack/backend/src/models"
)

// Signature identifies "the same transaction" across the optimistic buffer
// and the durable store. Unconfirmed rows carry no persisted identity, so
// this tuple is an approximation: two genuinely distinct transactions
// sharing day, amount, currency, description, category and kind are
// indistinguishable and collapse into one. That limitation is deliberate
// and pinned down by tests, not a bug to fix here.
type Signature struct {
	Date        string // date-only; time of day is ignored
	Amount      float64
	Currency    string
	Description string
	Category    string
	Kind        string
}

// SignatureOf normalizes a row into its comparable signature.
func SignatureOf(tx models.Transaction) Signature {
	return Signature{
		Date:        tx.Date.Format("2006-01-02"),
		Amount:      tx.Amount,
		Currency:    strings.ToUpper(tx.Currency),
		Description: tx.Description,
		Category:    tx.Category,
		Kind:        strings.ToLower(tx.Kind),
	}
}

// Reconcile returns the buffer entries whose signature does not appear in
// the store snapshot. A row visible in the store no longer needs its
// optimistic stand-in. The snapshot is expected to be a bounded recent
// window, not the whole table.
func Reconcile(buffer, storeRows []models.Transaction) []models.Transaction {
	if len(buffer) == 0 {
		return buffer
	}
	seen := make(map[Signature]struct{}, len(storeRows))
	for _, row := range storeRows {
		seen[SignatureOf(row)] = struct{}{}
	}
	kept := make([]models.Transaction, 0, len(buffer))
	for _, rec := range buffer {
		if _, ok := seen[SignatureOf(rec)]; !ok {
			kept = append(kept, rec)
		}
	}
	return kept
}

// Merge concatenates optimistic rows ahead of stored rows and removes
// signature duplicates keeping the first occurrence, so an optimistic copy
// takes display precedence over a stored duplicate that a reconcile pass
// has not caught yet. The result feeds all downstream totals and charts.
func Merge(opt, stored []models.Transaction) []models.Transaction {
	merged := make([]models.Transaction, 0, len(opt)+len(stored))
	seen := make(map[Signature]struct{}, len(opt)+len(stored))
	for _, rows := range [][]models.Transaction{opt, stored} {
		for _, rec := range rows {
			sig := SignatureOf(rec)
			if _, ok := seen[sig]; ok {
				continue
			}
			seen[sig] = struct{}{}
			merged = append(merged, rec)
		}
	}
	return merged
}

// Buffer is the ordered list of locally-created, not-yet-confirmed rows.
// It is in-memory display state with no persistence across restarts: the
// durable write always happens synchronously before Append, so losing the
// buffer loses nothing but a moment of display latency.
type Buffer struct {
	mu      sync.Mutex
	records []models.Transaction
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a freshly written row for immediate display.
func (b *Buffer) Append(tx models.Transaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, tx)
}

// Snapshot returns a copy of the current entries in insertion order.
func (b *Buffer) Snapshot() []models.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Transaction, len(b.records))
	copy(out, b.records)
	return out
}

// Reconcile drops entries already visible in the store snapshot.
func (b *Buffer) Reconcile(storeRows []models.Transaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = Reconcile(b.records, storeRows)
}

// Clear empties the buffer, e.g. after the store itself was cleared.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = nil
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
