package importer

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/ledgerimport/internal/accounts"
)

var (
	// ErrInvalidDate is returned when no configured layout parses a date.
	ErrInvalidDate = errors.New("invalid date format")
	// ErrInvalidAmount is returned for missing or malformed amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidSplit is returned for malformed payee split tags.
	ErrInvalidSplit = errors.New("invalid split tag")
	// ErrMalformedRow is returned for a data row that is not valid CSV.
	ErrMalformedRow = errors.New("malformed row")
	// ErrInvalidHeader is returned when required columns are missing.
	ErrInvalidHeader = errors.New("invalid header")
	// ErrSourceUnavailable is returned when the import file cannot be read.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrUnbalanced is returned when a built transaction does not balance.
	ErrUnbalanced = errors.New("transaction does not balance")
)

// RowError records a data row that could not be converted.
type RowError struct {
	Line int
	Row  string
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Kind returns a short classification for reports and metrics.
func (e RowError) Kind() string {
	switch {
	case errors.Is(e.Err, ErrInvalidDate):
		return "invalid_date"
	case errors.Is(e.Err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(e.Err, ErrInvalidSplit):
		return "invalid_split"
	case errors.Is(e.Err, accounts.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(e.Err, ErrMalformedRow):
		return "malformed_row"
	default:
		return "other"
	}
}
