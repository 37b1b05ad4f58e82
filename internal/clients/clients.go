// Package clients loads the operator's client credential workbook. The
// workbook must carry exactly three named columns; structural problems are
// surfaced as a DataSourceError before any browser session is created.
package clients

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/gstflow/gstflow/internal/logger"
)

// Required column headers, matched exactly after trimming.
const (
	ColumnClientName = "Client Name"
	ColumnUsername   = "GST Username"
	ColumnPassword   = "GST Password"
)

var requiredColumns = []string{ColumnClientName, ColumnUsername, ColumnPassword}

// Record is one client's portal credential.
type Record struct {
	DisplayName string
	Username    string
	Secret      string
}

// DataSourceError reports an invalid credential workbook.
type DataSourceError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client workbook %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("client workbook %s: %s", e.Path, e.Reason)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// Set is the keyed record set: display name to credential, preserving the
// workbook's row order for listing.
type Set struct {
	records map[string]Record
	order   []string
}

func (s *Set) Get(name string) (Record, bool) {
	r, ok := s.records[name]
	return r, ok
}

func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

func (s *Set) Len() int {
	return len(s.order)
}

// Load reads and validates the workbook at path. The first sheet's header
// row must contain the three required columns and nothing else; rows with
// any blank field are skipped with a warning rather than failing the file.
func Load(path string) (*Set, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DataSourceError{Path: path, Reason: "cannot open", Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &DataSourceError{Path: path, Reason: "cannot read rows", Err: err}
	}
	if len(rows) == 0 {
		return nil, &DataSourceError{Path: path, Reason: "workbook is empty"}
	}

	index, err := headerIndex(path, rows[0])
	if err != nil {
		return nil, err
	}

	set := &Set{records: make(map[string]Record)}
	for i, row := range rows[1:] {
		rec := Record{
			DisplayName: cell(row, index[ColumnClientName]),
			Username:    cell(row, index[ColumnUsername]),
			Secret:      cell(row, index[ColumnPassword]),
		}
		if rec.DisplayName == "" && rec.Username == "" && rec.Secret == "" {
			continue
		}
		if rec.DisplayName == "" || rec.Username == "" || rec.Secret == "" {
			logger.Warn("skipping client row with blank fields",
				zap.Int("row", i+2), zap.String("client", rec.DisplayName))
			continue
		}
		if _, dup := set.records[rec.DisplayName]; dup {
			logger.Warn("duplicate client name, keeping the later row",
				zap.String("client", rec.DisplayName))
		} else {
			set.order = append(set.order, rec.DisplayName)
		}
		set.records[rec.DisplayName] = rec
	}

	logger.Info("loaded clients from workbook",
		zap.String("path", path), zap.Int("count", set.Len()))
	return set, nil
}

func headerIndex(path string, header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	var extra []string
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if !isRequired(name) {
			extra = append(extra, name)
			continue
		}
		index[name] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &DataSourceError{Path: path, Reason: fmt.Sprintf(
			"missing required columns: %s (expected: %s)",
			strings.Join(missing, ", "), strings.Join(requiredColumns, ", "))}
	}
	if len(extra) > 0 {
		return nil, &DataSourceError{Path: path, Reason: fmt.Sprintf(
			"unexpected columns: %s (expected exactly: %s)",
			strings.Join(extra, ", "), strings.Join(requiredColumns, ", "))}
	}
	return index, nil
}

func isRequired(name string) bool {
	for _, col := range requiredColumns {
		if name == col {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// WriteSample creates a template workbook with the required header and a
// few placeholder rows, for first-run setup.
func WriteSample(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{ColumnClientName, ColumnUsername, ColumnPassword},
		{"Sample Client 1", "sample_username_1", "sample_password_1"},
		{"Sample Client 2", "sample_username_2", "sample_password_2"},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
