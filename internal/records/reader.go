// Package records decodes the delimited transaction stream into ledger
// transactions, one row at a time.
package records

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/payments-engine/internal/ledger"
)

const (
	columnType   = "type"
	columnClient = "client"
	columnTx     = "tx"
	columnAmount = "amount"
)

var (
	// ErrMalformedRecord matches every per-row decode failure.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMissingColumn is reported for every row when the header lacks a
	// required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrNegativeAmount is returned for amounts below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")
)

const byteOrderMark = "\ufeff"

// DecodeError describes a row that could not be turned into a transaction.
// The stream remains readable after it.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is lets callers match any decode failure with ErrMalformedRecord.
func (e *DecodeError) Is(target error) bool { return target == ErrMalformedRecord }

// Recoverable marks the error as scoped to one record.
func (e *DecodeError) Recoverable() bool { return true }

// Reader yields transactions lazily from a CSV stream with a header row.
// Columns are located by name, so their order does not matter and the amount
// column may be omitted entirely. Each line is parsed on its own, so a broken
// quote costs only the line it appears on.
type Reader struct {
	src     *bufio.Reader
	line    int
	columns map[string]int
	missing string
}

// NewReader wraps r. The header is read on the first call to Next.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(r)}
}

// Next returns the next transaction. It returns io.EOF at the end of the
// stream, including a stream with no header, and a *DecodeError for a row
// that cannot be decoded. Any other error comes from the underlying reader.
func (r *Reader) Next() (ledger.Transaction, error) {
	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			return ledger.Transaction{}, err
		}
	}

	rec, err := r.readRecord()
	if err != nil {
		return ledger.Transaction{}, err
	}
	if r.missing != "" {
		return ledger.Transaction{}, &DecodeError{Line: r.line, Err: fmt.Errorf("%w %q", ErrMissingColumn, r.missing)}
	}

	tx, err := r.decode(rec)
	if err != nil {
		return ledger.Transaction{}, &DecodeError{Line: r.line, Err: err}
	}
	return tx, nil
}

// readHeader maps column names to positions. An unparsable header leaves
// every column missing, so each following row reports ErrMissingColumn.
func (r *Reader) readHeader() error {
	header, err := r.readRecord()
	var derr *DecodeError
	switch {
	case errors.As(err, &derr):
		header = nil
	case err != nil:
		return err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{columnType, columnClient, columnTx} {
		if _, ok := columns[required]; !ok {
			r.missing = required
			break
		}
	}
	r.columns = columns
	if derr != nil {
		return derr
	}
	return nil
}

// readRecord parses the next non-blank line.
func (r *Reader) readRecord() ([]string, error) {
	for {
		text, err := r.src.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if text == "" {
			return nil, io.EOF
		}
		r.line++
		if r.line == 1 {
			text = strings.TrimPrefix(text, byteOrderMark)
		}

		cr := csv.NewReader(strings.NewReader(text))
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		rec, perr := cr.Read()
		if errors.Is(perr, io.EOF) {
			continue
		}
		if perr != nil {
			var parseErr *csv.ParseError
			if errors.As(perr, &parseErr) {
				perr = parseErr.Err
			}
			return nil, &DecodeError{Line: r.line, Err: perr}
		}
		return rec, nil
	}
}

func (r *Reader) field(rec []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (r *Reader) decode(rec []string) (ledger.Transaction, error) {
	kind, err := ledger.ParseKind(r.field(rec, columnType))
	if err != nil {
		return ledger.Transaction{}, err
	}

	client, err := strconv.ParseUint(r.field(rec, columnClient), 10, 16)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid client: %w", err)
	}

	id, err := strconv.ParseUint(r.field(rec, columnTx), 10, 32)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("invalid tx: %w", err)
	}

	tx := ledger.Transaction{Kind: kind, Client: ledger.ClientID(client), ID: ledger.TxID(id)}

	if raw := r.field(rec, columnAmount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("invalid amount: %w", err)
		}
		if amount.IsNegative() {
			return ledger.Transaction{}, fmt.Errorf("invalid amount %s: %w", raw, ErrNegativeAmount)
		}
		tx.Amount = amount
		tx.HasAmount = true
	}

	return tx, nil
}
