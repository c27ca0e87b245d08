package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/payments-engine/internal/ledger"
)

// Supported output formats.
const (
	FormatCSV   = "csv"
	FormatTable = "table"
)

// Places is the number of fractional digits every balance is rendered with.
const Places = 4

// Header is the column layout of the account table.
var Header = []string{"client", "available", "held", "total", "locked"}

// Row is one line of the final account table.
type Row struct {
	Client    ledger.ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// Fields renders the row as strings in Header order.
func (r Row) Fields() []string {
	return []string{
		strconv.FormatUint(uint64(r.Client), 10),
		r.Available.StringFixed(Places),
		r.Held.StringFixed(Places),
		r.Total.StringFixed(Places),
		strconv.FormatBool(r.Locked),
	}
}

// Rows converts accounts into report rows sorted by client id.
func Rows(accounts ledger.Accounts) []Row {
	sorted := accounts.Sorted()
	rows := make([]Row, 0, len(sorted))
	for _, acc := range sorted {
		rows = append(rows, Row{
			Client:    acc.Client,
			Available: acc.Available,
			Held:      acc.Held,
			Total:     acc.Total(),
			Locked:    acc.Locked,
		})
	}
	return rows
}

// Writer renders the account table.
type Writer interface {
	Write(w io.Writer, rows []Row) error
}

// ValidFormat reports whether New accepts format.
func ValidFormat(format string) bool {
	return format == FormatCSV || format == FormatTable
}

// New returns the Writer for a report format. An empty format means CSV.
func New(format string) (Writer, error) {
	switch format {
	case FormatCSV, "":
		return CSVWriter{}, nil
	case FormatTable:
		return TableWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// CSVWriter emits the comma-separated account table.
type CSVWriter struct{}

func (CSVWriter) Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Fields()); err != nil {
			return fmt.Errorf("write client %d: %w", row.Client, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// TableWriter renders an aligned text table for terminals.
type TableWriter struct{}

func (TableWriter) Write(w io.Writer, rows []Row) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(Header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, row := range rows {
		table.Append(row.Fields())
	}
	table.Render()
	return nil
}
