package models

import "time"

// Transaction represents a single money movement, stored in its original
// currency plus a normalized EUR amount computed at write time.
//
// AmountEUR is nullable: rows imported while no rate was available for their
// currency stay NULL until a backfill pass fills them in.
type Transaction struct {
	ID          int64     `json:"id,omitempty"` // 0 means not yet persisted (optimistic row)
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"` // 3-letter uppercase code
	AmountEUR   *float64  `json:"amount_eur"`
	Category    string    `json:"category"`
	Kind        string    `json:"kind"` // "income" or "expense"
	Description string    `json:"description"`
}

// Kinds accepted on write. Anything else is rejected at the boundary.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

const DefaultCategory = "Uncategorized"
