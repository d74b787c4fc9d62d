// Package csvfile implements the user table on a single comma-separated
// text file with a Username,Email,Password header row.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kpisystems/credvault/internal/model"
)

var header = []string{"Username", "Email", "Password"}

var _ model.RecordTable = (*Table)(nil)

// Table reads and appends user rows. Every operation opens the backing
// file anew; the table itself holds no state besides the path, so callers
// are responsible for serializing concurrent access.
type Table struct {
	path string
}

// New creates a Table backed by the file at path.
func New(path string) *Table {
	return &Table{path: path}
}

// Init creates the backing file with a header row when it does not exist
// yet. Existing files are left untouched.
func (t *Table) Init(_ context.Context) error {
	_, err := os.Stat(t.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat table file: %w", err)
	}

	row, err := formatRow(header)
	if err != nil {
		return fmt.Errorf("failed to format header: %w", err)
	}
	if err := os.WriteFile(t.path, row, 0o600); err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}

	return nil
}

// ListAll parses the whole table into records, in file order. The first
// row is the header and is skipped. Rows with a field count other than
// three are skipped silently; exact duplicate rows are collapsed into the
// first occurrence. Duplicate usernames with differing fields remain
// visible, uniqueness is enforced at create time only.
func (t *Table) ListAll(_ context.Context) ([]model.UserRecord, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records []model.UserRecord
	seen := make(map[model.UserRecord]struct{})
	first := true

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read table row: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(row) != len(header) {
			continue
		}

		record := model.UserRecord{
			Username:          strings.TrimSpace(row[0]),
			Email:             strings.TrimSpace(row[1]),
			EncryptedPassword: strings.TrimSpace(row[2]),
		}
		if _, ok := seen[record]; ok {
			continue
		}
		seen[record] = struct{}{}
		records = append(records, record)
	}

	return records, nil
}

// Append adds one row at the end of the table as a single contiguous
// write, leaving existing rows untouched.
func (t *Table) Append(_ context.Context, record model.UserRecord) error {
	row, err := formatRow([]string{record.Username, record.Email, record.EncryptedPassword})
	if err != nil {
		return fmt.Errorf("failed to format row: %w", err)
	}

	f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open table file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(row); err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}

	return nil
}

// formatRow renders one CSV row, CRLF-terminated like the files the
// reference system wrote.
func formatRow(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(fields); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
