package models

import (
	"time"

	"github.com/dmitrijs2005/pantrykeeper/internal/timex"
)

// LotKey identifies a stock lot for de-duplication. Two reports with the
// same key merge into one lot. ExpirationDate is always a calendar date at
// midnight UTC, so plain == comparison is meaningful.
type LotKey struct {
	UserID         string
	NameNorm       string
	Unit           string
	ExpirationDate time.Time
}

// NewLotKey builds a key, truncating exp to its calendar date.
func NewLotKey(userID, nameNorm, unit string, exp time.Time) LotKey {
	return LotKey{
		UserID:         userID,
		NameNorm:       nameNorm,
		Unit:           unit,
		ExpirationDate: timex.Truncate(exp),
	}
}

// String returns "user|name_norm|unit|YYYY-MM-DD".
func (k LotKey) String() string {
	return k.UserID + "|" + k.NameNorm + "|" + k.Unit + "|" + timex.FormatDate(k.ExpirationDate)
}

// StockLot is a quantity of one food item with a single expiration date.
// Persisted lots always have Quantity > 0.
type StockLot struct {
	ID             string
	UserID         string
	Name           string
	NameNorm       string
	Quantity       float64
	Unit           string
	ExpirationDate time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Key returns the de-duplication key of the lot.
func (l *StockLot) Key() LotKey {
	return NewLotKey(l.UserID, l.NameNorm, l.Unit, l.ExpirationDate)
}

// Action tells whether AddOrMerge created a lot or merged into one.
type Action string

const (
	ActionCreated Action = "created"
	ActionMerged  Action = "merged"
)

// ConsumeResult is the outcome of consuming from a lot: either the updated
// lot or Removed when the quantity dropped to zero or below.
type ConsumeResult struct {
	Lot     *StockLot
	Removed bool
}

// ExpiryCount is a per-user number of lots in an expiry window.
type ExpiryCount struct {
	UserID   string
	UserName string
	Count    int64
}
