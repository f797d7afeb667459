package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/ledgerimport/internal/model"
)

const (
	numFields   = 4
	colPath     = 0
	colCurrency = 1
	colScale    = 2
	colDesc     = 3
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_path", "currency", "scale", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colPath] = acct.Path
	row[colCurrency] = acct.Currency
	if acct.Scale != 0 {
		row[colScale] = strconv.Itoa(int(acct.Scale))
	}
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colPath] == "" {
		return model.Account{}, fmt.Errorf("empty account_path")
	}

	var scale int64
	if record[colScale] != "" {
		var err error
		scale, err = strconv.ParseInt(record[colScale], 10, 32)
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing scale %q: %w", record[colScale], err)
		}
	}

	return model.Account{
		Path:        record[colPath],
		Currency:    record[colCurrency],
		Scale:       int32(scale),
		Description: record[colDesc],
	}, nil
}
