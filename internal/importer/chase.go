package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ChaseParser parses Chase bank checking CSV exports into standard records.
// Chase files carry no account column, so every row is booked against Account.
type ChaseParser struct {
	Account string
}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
	chaseColType    = 4
	chaseColCheck   = 6
)

// chaseHeader is the standard schema each Chase row is mapped onto.
var chaseHeader = []string{ColDate, ColAccount, ColAmount, ColCode, ColMemo}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV. Posting dates are rewritten as ISO dates so the
// day-first date policy cannot misread them; unparsable dates pass through
// unchanged and fail at conversion.
func (p *ChaseParser) Parse(r io.Reader) ([]Record, error) {
	cr := newCSVReader(r)
	cr.FieldsPerRecord = chaseNumFields

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chase header: %w", err)
	}

	var records []Record
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if row, ok := malformedRecord(err); ok {
			records = append(records, row)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading chase CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, NewRecord(line, chaseHeader, p.mapRow(rec)))
	}
	return records, nil
}

func (p *ChaseParser) mapRow(rec []string) []string {
	date := strings.TrimSpace(rec[chaseColDate])
	if t, err := time.Parse(chaseDateFormat, date); err == nil {
		date = t.Format(time.DateOnly)
	}
	return []string{
		date,
		p.Account,
		rec[chaseColAmount],
		rec[chaseColCheck],
		rec[chaseColDesc],
	}
}
